package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"dvtboard/db"
	"dvtboard/internal/lifecycle"
	"dvtboard/internal/settings"

	"go.uber.org/zap"
)

// Handler оборачивает хранилище и сервис настроек для доступа из роутов
type Handler struct {
	Store    StorageInterface
	Settings *settings.Service
	Log      *zap.Logger
}

// NewHandler создает новый Handler
func NewHandler(store StorageInterface, svc *settings.Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Store: store, Settings: svc, Log: log}
}

// PingHandler отвечает "ok" для проверки сервера
func (h *Handler) PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// checklistRequired — ответ фазы запроса: переход ждёт решения чеклиста,
// никакие данные ещё не изменены
func writeChecklistRequired(w http.ResponseWriter) {
	writeJSON(w, http.StatusConflict, map[string]interface{}{
		"checklistRequired": true,
		"question":          "Is the proposal 100% ready?",
	})
}

// addLog пишет запись журнала; ошибка записи не прерывает основную операцию
func (h *Handler) addLog(ctx context.Context, proposalID, userName, action, details string) {
	if proposalID == "" {
		return
	}
	entry := &db.LogEntry{
		ProposalID: proposalID,
		UserName:   userName,
		Action:     action,
		Details:    details,
	}
	if err := h.Store.CreateLog(ctx, entry); err != nil {
		h.Log.Warn("failed to append log entry",
			zap.String("proposal_id", proposalID),
			zap.String("action", action),
			zap.Error(err))
	}
}

// CreateProposalHandler обрабатывает POST /api/proposals/new
func (h *Handler) CreateProposalHandler(w http.ResponseWriter, r *http.Request) {
	// Ограничение размера тела, чтобы избежать DoS
	r.Body = http.MaxBytesReader(w, r.Body, 1048576)

	username := r.URL.Query().Get("username")
	if username == "" {
		http.Error(w, "Missing username", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var input struct {
		db.Proposal
		ChecklistAnswer string `json:"checklistAnswer"`
	}
	if err := json.Unmarshal(body, &input); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	proposal := input.Proposal
	if proposal.Status == "" {
		proposal.Status = lifecycle.StatusPending
	}

	// Валидация до любой логики переходов
	if err := lifecycle.Validate(&proposal); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if input.ChecklistAnswer != "" &&
		input.ChecklistAnswer != lifecycle.ChecklistYes && input.ChecklistAnswer != lifecycle.ChecklistNo {
		http.Error(w, "Invalid checklist answer", http.StatusBadRequest)
		return
	}

	// Создание сразу в Sent проходит тот же чеклист, что и переход
	if lifecycle.NeedsChecklist("", proposal.Status) && input.ChecklistAnswer == "" {
		writeChecklistRequired(w)
		return
	}

	if input.ChecklistAnswer != "" {
		proposal.ManagerChecklist = input.ChecklistAnswer
	} else if proposal.ManagerChecklist == "" {
		proposal.ManagerChecklist = lifecycle.ChecklistNo
	}

	now := time.Now().UTC()
	proposal.RevisionNumber = 0
	proposal.Revisions = nil
	proposal.UserID = username
	proposal.CreatedAt = now
	proposal.UpdatedAt = now

	if err := h.Store.CreateProposal(r.Context(), &proposal); err != nil {
		h.Log.Error("failed to create proposal", zap.Error(err))
		http.Error(w, "Failed to create proposal", http.StatusInternalServerError)
		return
	}

	h.addLog(r.Context(), proposal.ID, username, lifecycle.ActionCreation,
		"Proposal initialized for client "+proposal.Client+".")

	writeJSON(w, http.StatusOK, proposal)
}
