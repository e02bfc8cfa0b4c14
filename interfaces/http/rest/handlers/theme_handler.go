package handlers

import (
	"encoding/json"
	"net/http"

	"okr-backend/domain/core/entities"
	"okr-backend/infrastructure/persistence/repository"
	"okr-backend/pkg/common"
	"okr-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ThemeHandler handles strategic theme HTTP requests
type ThemeHandler struct {
	themes *repository.ThemeRepository
	logger *zap.Logger
}

// NewThemeHandler creates a new strategic theme handler
func NewThemeHandler(themes *repository.ThemeRepository, logger *zap.Logger) *ThemeHandler {
	return &ThemeHandler{themes: themes, logger: logger}
}

// CreateThemeRequest represents the request body for creating a theme
type CreateThemeRequest struct {
	Name         string  `json:"name" validate:"required,min=1,max=200"`
	Description  string  `json:"description" validate:"required"`
	StartDate    string  `json:"startDate" validate:"required"`
	EndDate      string  `json:"endDate" validate:"required"`
	Quarter      string  `json:"quarter,omitempty"`
	CurrentValue float64 `json:"currentValue"`
	StartDateUtc string  `json:"startDateUtc,omitempty"`
	DueDateUtc   string  `json:"dueDateUtc,omitempty"`
}

// UpdateThemeRequest represents the request body for updating a theme
type UpdateThemeRequest struct {
	Name         *string  `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description  *string  `json:"description,omitempty"`
	StartDate    *string  `json:"startDate,omitempty"`
	EndDate      *string  `json:"endDate,omitempty"`
	CurrentValue *float64 `json:"currentValue,omitempty"`
	StartDateUtc *string  `json:"startDateUtc,omitempty"`
	DueDateUtc   *string  `json:"dueDateUtc,omitempty"`
	FinishAtUtc  *string  `json:"finishAtUtc,omitempty"`
}

// CreateTheme handles POST /strategic-themes
func (h *ThemeHandler) CreateTheme(w http.ResponseWriter, r *http.Request) {
	var req CreateThemeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	theme := &entities.StrategicTheme{
		Name:         req.Name,
		Description:  req.Description,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Quarter:      req.Quarter,
		CurrentValue: req.CurrentValue,
		StartDateUtc: req.StartDateUtc,
		DueDateUtc:   req.DueDateUtc,
	}
	if err := h.themes.Create(r.Context(), theme); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, theme)
}

// GetTheme handles GET /strategic-themes/{themeID}
func (h *ThemeHandler) GetTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := h.themes.Get(r.Context(), chi.URLParam(r, "themeID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, theme)
}

// ListThemes handles GET /strategic-themes
func (h *ThemeHandler) ListThemes(w http.ResponseWriter, r *http.Request) {
	themes, err := h.themes.List(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, themes)
}

// UpdateTheme handles PUT /strategic-themes/{themeID}
func (h *ThemeHandler) UpdateTheme(w http.ResponseWriter, r *http.Request) {
	var req UpdateThemeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	theme, err := h.themes.Update(r.Context(), chi.URLParam(r, "themeID"), repository.ThemeUpdate{
		Name:         req.Name,
		Description:  req.Description,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		CurrentValue: req.CurrentValue,
		StartDateUtc: req.StartDateUtc,
		DueDateUtc:   req.DueDateUtc,
		FinishAtUtc:  req.FinishAtUtc,
	})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, theme)
}

// DeleteTheme handles DELETE /strategic-themes/{themeID}
func (h *ThemeHandler) DeleteTheme(w http.ResponseWriter, r *http.Request) {
	if err := h.themes.Delete(r.Context(), chi.URLParam(r, "themeID")); err != nil {
		common.RespondAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
