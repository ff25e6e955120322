package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"dvtboard/db"
	"dvtboard/internal/lifecycle"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type PaginationParams struct {
	Limit  int
	Offset int
}

// parsePaginationParams парсит limit и offset из query, с дефолтами и ограничениями
func parsePaginationParams(r *http.Request) PaginationParams {
	var params PaginationParams
	limitStr := r.URL.Query().Get("limit")
	offsetStr := r.URL.Query().Get("offset")

	params.Limit = 20 // дефолт
	params.Offset = 0

	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			params.Limit = l
		}
	}
	if offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			params.Offset = o
		}
	}
	return params
}

func parseListFilter(r *http.Request) lifecycle.Filter {
	q := r.URL.Query()
	return lifecycle.Filter{
		Search:          q.Get("search"),
		Status:          q.Get("status"),
		Consultant:      q.Get("consultant"),
		TechResponsible: q.Get("tech_responsible"),
		ProposalType:    q.Get("proposal_type"),
	}
}

// GetProposalsHandler возвращает отфильтрованный список предложений
func (h *Handler) GetProposalsHandler(w http.ResponseWriter, r *http.Request) {
	params := parsePaginationParams(r)

	proposals, err := h.Store.GetProposals(r.Context())
	if err != nil {
		h.Log.Error("failed to list proposals", zap.Error(err))
		http.Error(w, "Failed to get proposals", http.StatusInternalServerError)
		return
	}

	filtered := lifecycle.Apply(proposals, parseListFilter(r))

	// Пагинация поверх отфильтрованного среза
	start := params.Offset
	if start > len(filtered) {
		start = len(filtered)
	}
	end := start + params.Limit
	if end > len(filtered) {
		end = len(filtered)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total":     len(filtered),
		"proposals": filtered[start:end],
	})
}

// GetProposalHandler возвращает одно предложение вместе с ревизиями
func (h *Handler) GetProposalHandler(w http.ResponseWriter, r *http.Request) {
	proposalID := chi.URLParam(r, "proposalId")
	if proposalID == "" {
		http.Error(w, "Invalid proposalId", http.StatusBadRequest)
		return
	}

	proposal, err := h.Store.GetProposal(r.Context(), proposalID)
	if err != nil {
		http.Error(w, "Proposal not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, proposal)
}

// editProposalInput — частичное обновление: nil означает "поле не трогать"
type editProposalInput struct {
	DVTNumber            *string          `json:"dvtNumber"`
	Client               *string          `json:"client"`
	ProjectType          *string          `json:"projectType"`
	ProposalType         *string          `json:"proposalType"`
	Status               *string          `json:"status"`
	EstimatedValue       *decimal.Decimal `json:"estimatedValue"`
	SentValue            *decimal.Decimal `json:"sentValue"`
	OpeningDate          *string          `json:"openingDate"`
	StartDate            *string          `json:"startDate"`
	ExpectedTechDate     *string          `json:"expectedTechDate"`
	ExpectedCommDate     *string          `json:"expectedCommDate"`
	ActualTechDate       *string          `json:"actualTechDate"`
	ActualCommDate       *string          `json:"actualCommDate"`
	TechnicalResponsible *string          `json:"technicalResponsible"`
	CommercialConsultant *string          `json:"commercialConsultant"`
	Competitor           *string          `json:"competitor"`
	LossReasonDetails    *string          `json:"lossReasonDetails"`
	ChecklistAnswer      string           `json:"checklistAnswer"`
}

// applyEdit переносит заданные поля формы; статус и чеклист обрабатываются отдельно
func applyEdit(p *db.Proposal, input *editProposalInput) {
	if input.DVTNumber != nil {
		p.DVTNumber = *input.DVTNumber
	}
	if input.Client != nil {
		p.Client = *input.Client
	}
	if input.ProjectType != nil {
		p.ProjectType = *input.ProjectType
	}
	if input.ProposalType != nil {
		p.ProposalType = *input.ProposalType
	}
	if input.EstimatedValue != nil {
		p.EstimatedValue = *input.EstimatedValue
	}
	if input.SentValue != nil {
		p.SentValue = *input.SentValue
	}
	if input.OpeningDate != nil {
		p.OpeningDate = *input.OpeningDate
	}
	if input.StartDate != nil {
		p.StartDate = *input.StartDate
	}
	if input.ExpectedTechDate != nil {
		p.ExpectedTechDate = *input.ExpectedTechDate
	}
	if input.ExpectedCommDate != nil {
		p.ExpectedCommDate = *input.ExpectedCommDate
	}
	if input.ActualTechDate != nil {
		p.ActualTechDate = *input.ActualTechDate
	}
	if input.ActualCommDate != nil {
		p.ActualCommDate = *input.ActualCommDate
	}
	if input.TechnicalResponsible != nil {
		p.TechnicalResponsible = *input.TechnicalResponsible
	}
	if input.CommercialConsultant != nil {
		p.CommercialConsultant = *input.CommercialConsultant
	}
	if input.Competitor != nil {
		p.Competitor = *input.Competitor
	}
	if input.LossReasonDetails != nil {
		p.LossReasonDetails = *input.LossReasonDetails
	}
}

// EditProposalHandler обрабатывает PATCH /api/proposals/{proposalId}/edit —
// сохранение формы: поля, опциональная смена статуса, ответ чеклиста
func (h *Handler) EditProposalHandler(w http.ResponseWriter, r *http.Request) {
	proposalID := chi.URLParam(r, "proposalId")
	if proposalID == "" {
		http.Error(w, "Invalid proposalId", http.StatusBadRequest)
		return
	}

	username := r.URL.Query().Get("username")
	if username == "" {
		http.Error(w, "Missing username", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Cannot read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var input editProposalInput
	if err := json.Unmarshal(body, &input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	current, err := h.Store.GetProposal(r.Context(), proposalID)
	if err != nil {
		http.Error(w, "Proposal not found", http.StatusNotFound)
		return
	}

	// Работаем на копии: до успешной записи состояние не меняется
	updated := *current
	applyEdit(&updated, &input)

	// Валидация обязательных полей до логики переходов
	if err := lifecycle.Validate(&updated); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	now := time.Now().UTC()
	logDetails := ""
	if input.Status != nil {
		logDetails, err = lifecycle.ApplyTransition(&updated, *input.Status, input.ChecklistAnswer, now)
		if errors.Is(err, lifecycle.ErrChecklistRequired) {
			writeChecklistRequired(w)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	} else {
		updated.UpdatedAt = now
	}

	if err := h.Store.UpdateProposal(r.Context(), &updated); err != nil {
		h.Log.Error("failed to update proposal", zap.String("proposal_id", proposalID), zap.Error(err))
		http.Error(w, "Failed to update proposal", http.StatusInternalServerError)
		return
	}

	// Журналируется только дельта статуса, не правки остальных полей
	if logDetails != "" {
		h.addLog(r.Context(), proposalID, username, lifecycle.ActionUpdate, logDetails)
	}

	writeJSON(w, http.StatusOK, updated)
}

// UpdateProposalStatusHandler обрабатывает PUT /api/proposals/{proposalId}/status —
// поверхность канбана; тот же контракт чеклиста, что и у формы
func (h *Handler) UpdateProposalStatusHandler(w http.ResponseWriter, r *http.Request) {
	proposalID := chi.URLParam(r, "proposalId")
	status := r.URL.Query().Get("status")
	username := r.URL.Query().Get("username")
	answer := r.URL.Query().Get("checklist")

	if proposalID == "" || status == "" || username == "" {
		http.Error(w, "Missing required parameters", http.StatusBadRequest)
		return
	}
	if !lifecycle.ValidStatus(status) {
		http.Error(w, "Invalid status value", http.StatusBadRequest)
		return
	}

	proposal, err := h.Store.GetProposal(r.Context(), proposalID)
	if err != nil {
		http.Error(w, "Proposal not found", http.StatusNotFound)
		return
	}

	// Перенос в ту же колонку — no-op, без чеклиста и без записи в журнал
	if proposal.Status == status {
		writeJSON(w, http.StatusOK, proposal)
		return
	}

	logDetails, err := lifecycle.ApplyTransition(proposal, status, answer, time.Now().UTC())
	if errors.Is(err, lifecycle.ErrChecklistRequired) {
		writeChecklistRequired(w)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Store.UpdateProposal(r.Context(), proposal); err != nil {
		h.Log.Error("failed to update proposal status", zap.String("proposal_id", proposalID), zap.Error(err))
		http.Error(w, "Failed to update status", http.StatusInternalServerError)
		return
	}

	if logDetails != "" {
		h.addLog(r.Context(), proposalID, username, lifecycle.ActionUpdate, logDetails)
	}

	writeJSON(w, http.StatusOK, proposal)
}

// DeleteProposalHandler обрабатывает DELETE /api/proposals/{proposalId}
func (h *Handler) DeleteProposalHandler(w http.ResponseWriter, r *http.Request) {
	proposalID := chi.URLParam(r, "proposalId")
	username := r.URL.Query().Get("username")
	if proposalID == "" || username == "" {
		http.Error(w, "Missing required parameters", http.StatusBadRequest)
		return
	}

	proposal, err := h.Store.GetProposal(r.Context(), proposalID)
	if err != nil {
		http.Error(w, "Proposal not found", http.StatusNotFound)
		return
	}

	if err := h.Store.DeleteProposal(r.Context(), proposalID); err != nil {
		h.Log.Error("failed to delete proposal", zap.String("proposal_id", proposalID), zap.Error(err))
		http.Error(w, "Failed to delete proposal", http.StatusInternalServerError)
		return
	}

	h.addLog(r.Context(), proposalID, username, lifecycle.ActionDeletion,
		"Proposal "+proposal.DVTNumber+" removed from the system.")

	writeJSON(w, http.StatusOK, map[string]string{"result": "deleted"})
}

// KanbanHandler возвращает доску: предложения по статусным колонкам с итогами
func (h *Handler) KanbanHandler(w http.ResponseWriter, r *http.Request) {
	proposals, err := h.Store.GetProposals(r.Context())
	if err != nil {
		h.Log.Error("failed to load kanban", zap.Error(err))
		http.Error(w, "Failed to get proposals", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"columns": lifecycle.KanbanColumns(proposals),
	})
}
