// Package http is the REST layer: routing, JSON (de)serialization and input
// extraction. All mutation logic lives in the storage package's balance
// mutation engine; handlers only translate between the wire and the domain.
package http

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/plusemon/FinTrack/internal/ai"
	"github.com/plusemon/FinTrack/internal/events"
	"github.com/plusemon/FinTrack/internal/storage"
	"github.com/plusemon/FinTrack/web"
)

type Server struct {
	http.Server

	store   *storage.Store
	events  events.Publisher
	ai      *ai.Client
	limiter *rateLimiter

	shutdownOnce sync.Once
}

func NewServer(addr string, store *storage.Store, publisher events.Publisher, aiClient *ai.Client) *Server {
	s := &Server{
		store:   store,
		events:  publisher,
		ai:      aiClient,
		limiter: newRateLimiter(60),
	}
	s.Server = http.Server{
		Addr:           addr,
		Handler:        s.routes(),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   120 * time.Second, // AI proxy calls can be slow
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(requestID)
	r.Use(logRequests)
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.limitMutations)

		r.Get("/summary", s.handleSummary)

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", s.handleListAccounts)
			r.Post("/", s.handleCreateAccount)
			r.Put("/{id}", s.handleUpdateAccount)
			r.Delete("/{id}", s.handleDeleteAccount)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", s.handleListCategories)
			r.Post("/", s.handleCreateCategory)
			r.Put("/{id}", s.handleUpdateCategory)
			r.Delete("/{id}", s.handleDeleteCategory)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", s.handleListTransactions)
			r.Post("/", s.handleCreateTransaction)
			r.Put("/{id}", s.handleUpdateTransaction)
			r.Delete("/{id}", s.handleDeleteTransaction)
		})

		r.Route("/budgets", func(r chi.Router) {
			r.Get("/", s.handleListBudgets)
			r.Post("/", s.handleCreateBudget)
			r.Put("/{id}", s.handleUpdateBudget)
			r.Delete("/{id}", s.handleDeleteBudget)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", s.handleGetSettings)
			r.Post("/", s.handleSetSetting)
		})

		r.Route("/recurring", func(r chi.Router) {
			r.Get("/", s.handleListRecurring)
			r.Post("/", s.handleCreateRecurring)
			r.Delete("/{id}", s.handleDeleteRecurring)
		})

		r.Route("/ai", func(r chi.Router) {
			r.Post("/chat", s.handleAIChat)
			r.Post("/image", s.handleAIImage)
			r.Post("/speech", s.handleAISpeech)
		})
	})

	// Embedded single-page UI.
	if sub, err := fs.Sub(web.StaticFS, "static"); err == nil {
		fileServer := http.FileServer(http.FS(sub))
		r.Handle("/*", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600")
			fileServer.ServeHTTP(w, req)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	return r
}

// Shutdown stops the HTTP server and the limiter's cleanup goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// idParam extracts the numeric {id} path parameter.
func idParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmtValidation("invalid id %q", raw)
	}
	return id, nil
}
