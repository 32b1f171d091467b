package http

import (
	"net/http"
	"strings"
)

// The AI endpoints are a stateless proxy; no ledger data flows through them.

func (s *Server) handleAIChat(w http.ResponseWriter, r *http.Request) {
	if !s.ai.Enabled() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "AI assistant is not configured"})
		return
	}
	var in struct {
		Message string `json:"message"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if strings.TrimSpace(in.Message) == "" {
		writeError(w, r, fmtValidation("message is required"))
		return
	}
	reply, err := s.ai.Chat(r.Context(), in.Message)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

func (s *Server) handleAIImage(w http.ResponseWriter, r *http.Request) {
	if !s.ai.Enabled() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "AI assistant is not configured"})
		return
	}
	var in struct {
		Prompt string `json:"prompt"`
		Size   string `json:"size"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if strings.TrimSpace(in.Prompt) == "" {
		writeError(w, r, fmtValidation("prompt is required"))
		return
	}
	data, mimeType, err := s.ai.GenerateImage(r.Context(), in.Prompt, in.Size)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"image": "data:" + mimeType + ";base64," + data,
	})
}

func (s *Server) handleAISpeech(w http.ResponseWriter, r *http.Request) {
	if !s.ai.Enabled() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "AI assistant is not configured"})
		return
	}
	var in struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if strings.TrimSpace(in.Text) == "" {
		writeError(w, r, fmtValidation("text is required"))
		return
	}
	data, mimeType, err := s.ai.TextToSpeech(r.Context(), in.Text)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"audio": "data:" + mimeType + ";base64," + data,
	})
}
