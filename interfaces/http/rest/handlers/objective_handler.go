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

// ObjectiveHandler handles objective HTTP requests. Mutating item-level
// routes need the owning theme id, carried in the PUT body or as the
// strategicThemeId query parameter; a GET without it falls back to the
// id-only finder.
type ObjectiveHandler struct {
	objectives *repository.ObjectiveRepository
	finder     *repository.Finder
	logger     *zap.Logger
}

// NewObjectiveHandler creates a new objective handler
func NewObjectiveHandler(objectives *repository.ObjectiveRepository, finder *repository.Finder, logger *zap.Logger) *ObjectiveHandler {
	return &ObjectiveHandler{objectives: objectives, finder: finder, logger: logger}
}

// CreateObjectiveRequest represents the request body for creating an objective
type CreateObjectiveRequest struct {
	StrategicThemeID string  `json:"strategicThemeId" validate:"required"`
	Statement        string  `json:"statement" validate:"required,min=1,max=500"`
	StartDate        string  `json:"startDate" validate:"required"`
	EndDate          string  `json:"endDate" validate:"required"`
	CurrentValue     float64 `json:"currentValue"`
	StartDateUtc     string  `json:"startDateUtc,omitempty"`
	DueDateUtc       string  `json:"dueDateUtc,omitempty"`
}

// UpdateObjectiveRequest represents the request body for updating an
// objective. The owning theme id rides in the body; the matching query
// parameter is accepted as an alternative.
type UpdateObjectiveRequest struct {
	StrategicThemeID string   `json:"strategicThemeId,omitempty"`
	Statement        *string  `json:"statement,omitempty" validate:"omitempty,min=1,max=500"`
	StartDate        *string  `json:"startDate,omitempty"`
	EndDate          *string  `json:"endDate,omitempty"`
	CurrentValue     *float64 `json:"currentValue,omitempty"`
	StartDateUtc     *string  `json:"startDateUtc,omitempty"`
	DueDateUtc       *string  `json:"dueDateUtc,omitempty"`
	FinishAtUtc      *string  `json:"finishAtUtc,omitempty"`
}

// CreateObjective handles POST /objectives
func (h *ObjectiveHandler) CreateObjective(w http.ResponseWriter, r *http.Request) {
	var req CreateObjectiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	objective := &entities.Objective{
		StrategicThemeID: req.StrategicThemeID,
		Statement:        req.Statement,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		CurrentValue:     req.CurrentValue,
		StartDateUtc:     req.StartDateUtc,
		DueDateUtc:       req.DueDateUtc,
	}
	if err := h.objectives.Create(r.Context(), objective); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, objective)
}

// GetObjective handles GET /objectives/{objectiveID}. With a
// strategicThemeId query parameter the objective is read by full key;
// without it, resolved by id alone.
func (h *ObjectiveHandler) GetObjective(w http.ResponseWriter, r *http.Request) {
	objectiveID := chi.URLParam(r, "objectiveID")

	var (
		objective *entities.Objective
		err       error
	)
	if themeID := r.URL.Query().Get("strategicThemeId"); themeID != "" {
		objective, err = h.objectives.Get(r.Context(), themeID, objectiveID)
	} else {
		objective, err = h.finder.FindObjectiveByID(r.Context(), objectiveID)
	}
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, objective)
}

// ListObjectives handles GET /objectives. With a strategicThemeId query
// parameter it lists one theme's objectives; without it, all objectives.
func (h *ObjectiveHandler) ListObjectives(w http.ResponseWriter, r *http.Request) {
	var (
		objectives []entities.Objective
		err        error
	)
	if themeID := r.URL.Query().Get("strategicThemeId"); themeID != "" {
		objectives, err = h.objectives.ListByTheme(r.Context(), themeID)
	} else {
		objectives, err = h.objectives.List(r.Context())
	}
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, objectives)
}

// UpdateObjective handles PUT /objectives/{objectiveID}. The owning theme id
// comes from the body, or from the strategicThemeId query parameter.
func (h *ObjectiveHandler) UpdateObjective(w http.ResponseWriter, r *http.Request) {
	var req UpdateObjectiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	themeID := req.StrategicThemeID
	if themeID == "" {
		themeID = r.URL.Query().Get("strategicThemeId")
	}
	if themeID == "" {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "strategicThemeId is required in the request body or query")
		return
	}

	objective, err := h.objectives.Update(r.Context(), themeID, chi.URLParam(r, "objectiveID"), repository.ObjectiveUpdate{
		Statement:    req.Statement,
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
	common.RespondJSON(w, http.StatusOK, objective)
}

// DeleteObjective handles DELETE /objectives/{objectiveID}?strategicThemeId=
func (h *ObjectiveHandler) DeleteObjective(w http.ResponseWriter, r *http.Request) {
	themeID := r.URL.Query().Get("strategicThemeId")
	if themeID == "" {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "strategicThemeId query parameter is required")
		return
	}
	if err := h.objectives.Delete(r.Context(), themeID, chi.URLParam(r, "objectiveID")); err != nil {
		common.RespondAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
