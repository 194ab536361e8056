package service

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dyike/CortexFin/internal/models"
)

type AskRequest struct {
	Question string `json:"question" validate:"required"`
}

type AskResponse struct {
	Answer string `json:"answer"`
}

type ToolDescriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type ToolResult struct {
	Result string `json:"result"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

const maxBodyBytes = 1 << 20

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAsk answers one question in a fresh session.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	// an unreadable body is treated like a missing question
	_ = json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req)
	req.Question = strings.TrimSpace(req.Question)
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Question is required.")
		return
	}

	session := s.agent.NewSession()
	answer, err := session.Ask(r.Context(), req.Question)
	if err != nil {
		s.logger.Error().Str("session", session.ID()).Err(err).Msg("ask failed")
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, AskResponse{Answer: answer})
}

func (s *Server) handleListTools(w http.ResponseWriter, _ *http.Request) {
	infos := s.agent.Registry().Infos()
	out := make([]ToolDescriptor, 0, len(infos))
	for _, info := range infos {
		out = append(out, ToolDescriptor{Name: info.Name, Description: info.Desc})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleInvokeTool runs one tool directly. Tool failures come back as the
// result text, the same way the model sees them.
func (s *Server) handleInvokeTool(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	out, err := s.agent.Registry().Invoke(r.Context(), name, string(body))
	if errors.Is(err, models.ErrToolNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		out = err.Error()
	}
	writeJSON(w, http.StatusOK, ToolResult{Result: out})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrDataUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
