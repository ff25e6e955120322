package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"dvtboard/internal/lifecycle"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CreateRevisionHandler обрабатывает POST /api/proposals/{proposalId}/revisions/new.
// Ревизия и обновлённый счётчик записываются вместе; журнал при этом не трогается
func (h *Handler) CreateRevisionHandler(w http.ResponseWriter, r *http.Request) {
	proposalID := chi.URLParam(r, "proposalId")
	username := r.URL.Query().Get("username")
	if proposalID == "" || username == "" {
		http.Error(w, "Missing required parameters", http.StatusBadRequest)
		return
	}

	var input struct {
		ReasonType  string `json:"reasonType"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	proposal, err := h.Store.GetProposal(r.Context(), proposalID)
	if err != nil {
		http.Error(w, "Proposal not found", http.StatusNotFound)
		return
	}

	rev, err := lifecycle.ApplyRevision(proposal, input.ReasonType, input.Description, username, time.Now().UTC())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Ревизия и счётчик пишутся одной транзакцией
	if err := h.Store.CreateRevisionWithCounter(r.Context(), rev, proposal); err != nil {
		h.Log.Error("failed to create revision", zap.String("proposal_id", proposalID), zap.Error(err))
		http.Error(w, "Failed to create revision", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, rev)
}

// GetRevisionsHandler возвращает ревизии, свежие первыми
func (h *Handler) GetRevisionsHandler(w http.ResponseWriter, r *http.Request) {
	proposalID := chi.URLParam(r, "proposalId")
	if proposalID == "" {
		http.Error(w, "Invalid proposalId", http.StatusBadRequest)
		return
	}

	revisions, err := h.Store.GetRevisions(r.Context(), proposalID)
	if err != nil {
		h.Log.Error("failed to list revisions", zap.String("proposal_id", proposalID), zap.Error(err))
		http.Error(w, "Failed to get revisions", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, revisions)
}

// GetLogsHandler возвращает журнал действий по предложению
func (h *Handler) GetLogsHandler(w http.ResponseWriter, r *http.Request) {
	proposalID := chi.URLParam(r, "proposalId")
	if proposalID == "" {
		http.Error(w, "Invalid proposalId", http.StatusBadRequest)
		return
	}

	logs, err := h.Store.GetLogs(r.Context(), proposalID)
	if err != nil {
		h.Log.Error("failed to list logs", zap.String("proposal_id", proposalID), zap.Error(err))
		http.Error(w, "Failed to get logs", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, logs)
}
