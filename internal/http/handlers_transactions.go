package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/plusemon/FinTrack/internal/core"
	"github.com/plusemon/FinTrack/internal/events"
	"github.com/plusemon/FinTrack/internal/storage"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := transactionFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	transactions, err := s.store.ListTransactions(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, transactions)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var t core.Transaction
	if err := decodeJSON(r, &t); err != nil {
		writeError(w, r, err)
		return
	}
	id, err := s.store.CreateTransaction(r.Context(), &t)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.events.PublishTransaction(r.Context(), events.NewTransactionEvent(id, events.ActionCreated))
	writeJSON(w, http.StatusOK, map[string]int64{"id": id})
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var t core.Transaction
	if err := decodeJSON(r, &t); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.store.UpdateTransaction(r.Context(), id, &t); err != nil {
		writeError(w, r, err)
		return
	}
	s.events.PublishTransaction(r.Context(), events.NewTransactionEvent(id, events.ActionUpdated))
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.store.DeleteTransaction(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	s.events.PublishTransaction(r.Context(), events.NewTransactionEvent(id, events.ActionDeleted))
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.store.Summary(r.Context(), time.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func transactionFilter(r *http.Request) (storage.TransactionFilter, error) {
	q := r.URL.Query()
	f := storage.TransactionFilter{
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
	}
	if f.StartDate != "" && !core.ValidDate(f.StartDate) {
		return f, fmtValidation("startDate must be YYYY-MM-DD")
	}
	if f.EndDate != "" && !core.ValidDate(f.EndDate) {
		return f, fmtValidation("endDate must be YYYY-MM-DD")
	}
	var err error
	if f.CategoryID, err = queryID(q.Get("categoryId")); err != nil {
		return f, fmtValidation("categoryId must be a positive integer")
	}
	if f.AccountID, err = queryID(q.Get("accountId")); err != nil {
		return f, fmtValidation("accountId must be a positive integer")
	}
	return f, nil
}

func queryID(raw string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, strconv.ErrSyntax
	}
	return id, nil
}
