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

// GoalHandler handles goal HTTP requests. Item-level routes take the full
// ancestor chain, carried in the PUT body or as query parameters; a GET
// without them falls back to the id-only finder.
type GoalHandler struct {
	goals  *repository.GoalRepository
	finder *repository.Finder
	logger *zap.Logger
}

// NewGoalHandler creates a new goal handler
func NewGoalHandler(goals *repository.GoalRepository, finder *repository.Finder, logger *zap.Logger) *GoalHandler {
	return &GoalHandler{goals: goals, finder: finder, logger: logger}
}

// CreateGoalRequest represents the request body for creating a goal
type CreateGoalRequest struct {
	StrategicThemeID string  `json:"strategicThemeId" validate:"required"`
	ObjectiveID      string  `json:"objectiveId" validate:"required"`
	KeyResultID      string  `json:"keyResultId" validate:"required"`
	Description      string  `json:"description" validate:"required,min=1,max=500"`
	StartDate        string  `json:"startDate" validate:"required"`
	EndDate          string  `json:"endDate" validate:"required"`
	CurrentValue     float64 `json:"currentValue"`
	TargetValue      float64 `json:"targetValue"`
	UpperTarget      float64 `json:"upperTarget"`
	LowerTarget      float64 `json:"lowerTarget"`
	IsAutomatic      bool    `json:"isAutomatic"`
	AssignedTo       string  `json:"assignedTo" validate:"required"`
	AssigneeType     string  `json:"assigneeType" validate:"required,oneof=PERSON TEAM"`
	ParentGoalID     string  `json:"parentGoalId,omitempty"`
	StartDateUtc     string  `json:"startDateUtc,omitempty"`
	DueDateUtc       string  `json:"dueDateUtc,omitempty"`
}

// UpdateGoalRequest represents the request body for updating a goal. Ancestor
// ids ride in the body, with the matching query parameters accepted as an
// alternative. An empty parentGoalId detaches the goal from its parent.
type UpdateGoalRequest struct {
	StrategicThemeID string   `json:"strategicThemeId,omitempty"`
	ObjectiveID      string   `json:"objectiveId,omitempty"`
	KeyResultID      string   `json:"keyResultId,omitempty"`
	Description      *string  `json:"description,omitempty" validate:"omitempty,min=1,max=500"`
	StartDate        *string  `json:"startDate,omitempty"`
	EndDate          *string  `json:"endDate,omitempty"`
	CurrentValue     *float64 `json:"currentValue,omitempty"`
	TargetValue      *float64 `json:"targetValue,omitempty"`
	UpperTarget      *float64 `json:"upperTarget,omitempty"`
	LowerTarget      *float64 `json:"lowerTarget,omitempty"`
	IsAutomatic      *bool    `json:"isAutomatic,omitempty"`
	AssignedTo       *string  `json:"assignedTo,omitempty"`
	AssigneeType     *string  `json:"assigneeType,omitempty" validate:"omitempty,oneof=PERSON TEAM"`
	ParentGoalID     *string  `json:"parentGoalId,omitempty"`
	StartDateUtc     *string  `json:"startDateUtc,omitempty"`
	DueDateUtc       *string  `json:"dueDateUtc,omitempty"`
	FinishAtUtc      *string  `json:"finishAtUtc,omitempty"`
}

func (h *GoalHandler) ancestorIDs(w http.ResponseWriter, r *http.Request) (string, string, string, bool) {
	themeID := r.URL.Query().Get("strategicThemeId")
	objectiveID := r.URL.Query().Get("objectiveId")
	keyResultID := r.URL.Query().Get("keyResultId")
	if themeID == "" || objectiveID == "" || keyResultID == "" {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "strategicThemeId, objectiveId and keyResultId query parameters are required")
		return "", "", "", false
	}
	return themeID, objectiveID, keyResultID, true
}

// CreateGoal handles POST /goals
func (h *GoalHandler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	var req CreateGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	goal := &entities.Goal{
		StrategicThemeID: req.StrategicThemeID,
		ObjectiveID:      req.ObjectiveID,
		KeyResultID:      req.KeyResultID,
		Description:      req.Description,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		CurrentValue:     req.CurrentValue,
		TargetValue:      req.TargetValue,
		UpperTarget:      req.UpperTarget,
		LowerTarget:      req.LowerTarget,
		IsAutomatic:      req.IsAutomatic,
		AssignedTo:       req.AssignedTo,
		AssigneeType:     entities.AssigneeType(req.AssigneeType),
		ParentGoalID:     req.ParentGoalID,
		StartDateUtc:     req.StartDateUtc,
		DueDateUtc:       req.DueDateUtc,
	}
	if err := h.goals.Create(r.Context(), goal); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, goal)
}

// GetGoal handles GET /goals/{goalID}. With ancestor query parameters the
// goal is read by full key; without them it is resolved by id alone.
func (h *GoalHandler) GetGoal(w http.ResponseWriter, r *http.Request) {
	goalID := chi.URLParam(r, "goalID")
	themeID := r.URL.Query().Get("strategicThemeId")
	objectiveID := r.URL.Query().Get("objectiveId")
	keyResultID := r.URL.Query().Get("keyResultId")

	var (
		goal *entities.Goal
		err  error
	)
	if themeID != "" && objectiveID != "" && keyResultID != "" {
		goal, err = h.goals.Get(r.Context(), themeID, objectiveID, keyResultID, goalID)
	} else {
		goal, err = h.finder.FindGoalByID(r.Context(), goalID)
	}
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, goal)
}

// ListGoals handles GET /goals. With ancestor query parameters it lists one
// key result's goals; without them, all goals.
func (h *GoalHandler) ListGoals(w http.ResponseWriter, r *http.Request) {
	themeID := r.URL.Query().Get("strategicThemeId")
	objectiveID := r.URL.Query().Get("objectiveId")
	keyResultID := r.URL.Query().Get("keyResultId")

	var (
		goals []entities.Goal
		err   error
	)
	switch {
	case themeID != "" && objectiveID != "" && keyResultID != "":
		goals, err = h.goals.ListByKeyResult(r.Context(), themeID, objectiveID, keyResultID)
	case themeID == "" && objectiveID == "" && keyResultID == "":
		goals, err = h.goals.List(r.Context())
	default:
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "strategicThemeId, objectiveId and keyResultId must be provided together")
		return
	}
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, goals)
}

// UpdateGoal handles PUT /goals/{goalID}. Ancestor ids come from the body,
// or from the matching query parameters.
func (h *GoalHandler) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	var req UpdateGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	query := r.URL.Query()
	themeID := req.StrategicThemeID
	if themeID == "" {
		themeID = query.Get("strategicThemeId")
	}
	objectiveID := req.ObjectiveID
	if objectiveID == "" {
		objectiveID = query.Get("objectiveId")
	}
	keyResultID := req.KeyResultID
	if keyResultID == "" {
		keyResultID = query.Get("keyResultId")
	}
	if themeID == "" || objectiveID == "" || keyResultID == "" {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "strategicThemeId, objectiveId and keyResultId are required in the request body or query")
		return
	}

	goal, err := h.goals.Update(r.Context(), themeID, objectiveID, keyResultID, chi.URLParam(r, "goalID"), repository.GoalUpdate{
		Description:  req.Description,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		CurrentValue: req.CurrentValue,
		TargetValue:  req.TargetValue,
		UpperTarget:  req.UpperTarget,
		LowerTarget:  req.LowerTarget,
		IsAutomatic:  req.IsAutomatic,
		AssignedTo:   req.AssignedTo,
		AssigneeType: req.AssigneeType,
		ParentGoalID: req.ParentGoalID,
		StartDateUtc: req.StartDateUtc,
		DueDateUtc:   req.DueDateUtc,
		FinishAtUtc:  req.FinishAtUtc,
	})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, goal)
}

// DeleteGoal handles DELETE /goals/{goalID}
func (h *GoalHandler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	themeID, objectiveID, keyResultID, ok := h.ancestorIDs(w, r)
	if !ok {
		return
	}
	if err := h.goals.Delete(r.Context(), themeID, objectiveID, keyResultID, chi.URLParam(r, "goalID")); err != nil {
		common.RespondAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
