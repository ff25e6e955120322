package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"dvtboard/db"
	"dvtboard/internal/settings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Учётка администратора, защищённая от удаления
const protectedAdminEmail = "ea@drivetech.com.br"

type settingsResponse struct {
	SLATarget            int      `json:"slaTarget"`
	NotificationsEnabled bool     `json:"notificationsEnabled"`
	CompactMode          bool     `json:"compactMode"`
	AlertEmails          []string `json:"alertEmails"`
}

func (h *Handler) currentSettings(r *http.Request) settingsResponse {
	ctx := r.Context()
	resp := settingsResponse{
		SLATarget:   h.Settings.SLATarget(ctx),
		AlertEmails: h.Settings.AlertEmails(ctx),
	}
	if v, err := h.Settings.Get(ctx, settings.KeyNotifications); err == nil {
		resp.NotificationsEnabled = v == "true"
	}
	if v, err := h.Settings.Get(ctx, settings.KeyCompactMode); err == nil {
		resp.CompactMode = v == "true"
	}
	return resp
}

// GetSettingsHandler обрабатывает GET /api/settings
func (h *Handler) GetSettingsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.currentSettings(r))
}

// UpdateSettingsHandler обрабатывает PUT /api/settings: частичное обновление
func (h *Handler) UpdateSettingsHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		SLATarget            *int  `json:"slaTarget"`
		NotificationsEnabled *bool `json:"notificationsEnabled"`
		CompactMode          *bool `json:"compactMode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	ctx := r.Context()
	if input.SLATarget != nil {
		if err := h.Settings.SetSLATarget(ctx, *input.SLATarget); err != nil {
			h.Log.Error("failed to save sla target", zap.Error(err))
			http.Error(w, "Failed to save settings", http.StatusInternalServerError)
			return
		}
	}
	if input.NotificationsEnabled != nil {
		if err := h.Settings.Set(ctx, settings.KeyNotifications, boolValue(*input.NotificationsEnabled)); err != nil {
			h.Log.Error("failed to save notifications flag", zap.Error(err))
			http.Error(w, "Failed to save settings", http.StatusInternalServerError)
			return
		}
	}
	if input.CompactMode != nil {
		if err := h.Settings.Set(ctx, settings.KeyCompactMode, boolValue(*input.CompactMode)); err != nil {
			h.Log.Error("failed to save compact mode flag", zap.Error(err))
			http.Error(w, "Failed to save settings", http.StatusInternalServerError)
			return
		}
	}

	writeJSON(w, http.StatusOK, h.currentSettings(r))
}

func boolValue(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// AddAlertEmailHandler обрабатывает POST /api/settings/alert-emails/new
func (h *Handler) AddAlertEmailHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	emails, err := h.Settings.AddAlertEmail(r.Context(), input.Email)
	if errors.Is(err, settings.ErrInvalidEmail) || errors.Is(err, settings.ErrDuplicateEmail) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		h.Log.Error("failed to add alert email", zap.Error(err))
		http.Error(w, "Failed to save settings", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"alertEmails": emails})
}

// RemoveAlertEmailHandler обрабатывает DELETE /api/settings/alert-emails?email=
func (h *Handler) RemoveAlertEmailHandler(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		http.Error(w, "Missing email", http.StatusBadRequest)
		return
	}

	emails, err := h.Settings.RemoveAlertEmail(r.Context(), email)
	if err != nil {
		h.Log.Error("failed to remove alert email", zap.Error(err))
		http.Error(w, "Failed to save settings", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"alertEmails": emails})
}

// GetTeamHandler обрабатывает GET /api/team
func (h *Handler) GetTeamHandler(w http.ResponseWriter, r *http.Request) {
	members, err := h.Store.GetTeamMembers(r.Context())
	if err != nil {
		h.Log.Error("failed to list team members", zap.Error(err))
		http.Error(w, "Failed to get team", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

// AddTeamMemberHandler обрабатывает POST /api/team/new
func (h *Handler) AddTeamMemberHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Name == "" {
		http.Error(w, "Missing name", http.StatusBadRequest)
		return
	}
	if !settings.ValidEmail(input.Email) {
		http.Error(w, "Invalid email address", http.StatusBadRequest)
		return
	}
	if input.Role != "Admin" && input.Role != "User" {
		http.Error(w, "Invalid role, expected Admin or User", http.StatusBadRequest)
		return
	}
	if existing, err := h.Store.GetTeamMemberByEmail(r.Context(), input.Email); err == nil && existing != nil {
		http.Error(w, "Email already registered", http.StatusBadRequest)
		return
	}

	member := &db.TeamMember{
		Name:      input.Name,
		Email:     input.Email,
		Role:      input.Role,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.Store.CreateTeamMember(r.Context(), member); err != nil {
		h.Log.Error("failed to create team member", zap.String("email", input.Email), zap.Error(err))
		http.Error(w, "Failed to create team member", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, member)
}

// DeleteTeamMemberHandler обрабатывает DELETE /api/team/{email}.
// Главный администратор не удаляется
func (h *Handler) DeleteTeamMemberHandler(w http.ResponseWriter, r *http.Request) {
	email := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "email")))
	if email == "" {
		http.Error(w, "Missing email", http.StatusBadRequest)
		return
	}
	if email == protectedAdminEmail {
		http.Error(w, "Cannot remove the primary administrator", http.StatusForbidden)
		return
	}

	if _, err := h.Store.GetTeamMemberByEmail(r.Context(), email); err != nil {
		http.Error(w, "Team member not found", http.StatusNotFound)
		return
	}
	if err := h.Store.DeleteTeamMember(r.Context(), email); err != nil {
		h.Log.Error("failed to delete team member", zap.String("email", email), zap.Error(err))
		http.Error(w, "Failed to delete team member", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"result": "deleted"})
}
