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

// KeyResultHandler handles key result HTTP requests. Mutating item-level
// routes need the owning theme and objective ids, carried in the PUT body or
// as query parameters; a GET without them falls back to the id-only finder.
type KeyResultHandler struct {
	keyResults *repository.KeyResultRepository
	finder     *repository.Finder
	logger     *zap.Logger
}

// NewKeyResultHandler creates a new key result handler
func NewKeyResultHandler(keyResults *repository.KeyResultRepository, finder *repository.Finder, logger *zap.Logger) *KeyResultHandler {
	return &KeyResultHandler{keyResults: keyResults, finder: finder, logger: logger}
}

// CreateKeyResultRequest represents the request body for creating a key result
type CreateKeyResultRequest struct {
	StrategicThemeID string  `json:"strategicThemeId" validate:"required"`
	ObjectiveID      string  `json:"objectiveId" validate:"required"`
	Description      string  `json:"description" validate:"required,min=1,max=500"`
	StartDate        string  `json:"startDate" validate:"required"`
	EndDate          string  `json:"endDate" validate:"required"`
	CurrentValue     float64 `json:"currentValue"`
	StartDateUtc     string  `json:"startDateUtc,omitempty"`
	DueDateUtc       string  `json:"dueDateUtc,omitempty"`
}

// UpdateKeyResultRequest represents the request body for updating a key
// result. Ancestor ids ride in the body; the matching query parameters are
// accepted as an alternative.
type UpdateKeyResultRequest struct {
	StrategicThemeID string   `json:"strategicThemeId,omitempty"`
	ObjectiveID      string   `json:"objectiveId,omitempty"`
	Description      *string  `json:"description,omitempty" validate:"omitempty,min=1,max=500"`
	StartDate        *string  `json:"startDate,omitempty"`
	EndDate          *string  `json:"endDate,omitempty"`
	CurrentValue     *float64 `json:"currentValue,omitempty"`
	StartDateUtc     *string  `json:"startDateUtc,omitempty"`
	DueDateUtc       *string  `json:"dueDateUtc,omitempty"`
	FinishAtUtc      *string  `json:"finishAtUtc,omitempty"`
}

func (h *KeyResultHandler) ancestorIDs(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	themeID := r.URL.Query().Get("strategicThemeId")
	objectiveID := r.URL.Query().Get("objectiveId")
	if themeID == "" || objectiveID == "" {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "strategicThemeId and objectiveId query parameters are required")
		return "", "", false
	}
	return themeID, objectiveID, true
}

// CreateKeyResult handles POST /key-results
func (h *KeyResultHandler) CreateKeyResult(w http.ResponseWriter, r *http.Request) {
	var req CreateKeyResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	keyResult := &entities.KeyResult{
		StrategicThemeID: req.StrategicThemeID,
		ObjectiveID:      req.ObjectiveID,
		Description:      req.Description,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		CurrentValue:     req.CurrentValue,
		StartDateUtc:     req.StartDateUtc,
		DueDateUtc:       req.DueDateUtc,
	}
	if err := h.keyResults.Create(r.Context(), keyResult); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, keyResult)
}

// GetKeyResult handles GET /key-results/{keyResultID}. With ancestor query
// parameters the key result is read by full key; without them, resolved by
// id alone.
func (h *KeyResultHandler) GetKeyResult(w http.ResponseWriter, r *http.Request) {
	keyResultID := chi.URLParam(r, "keyResultID")
	themeID := r.URL.Query().Get("strategicThemeId")
	objectiveID := r.URL.Query().Get("objectiveId")

	var (
		keyResult *entities.KeyResult
		err       error
	)
	if themeID != "" && objectiveID != "" {
		keyResult, err = h.keyResults.Get(r.Context(), themeID, objectiveID, keyResultID)
	} else {
		keyResult, err = h.finder.FindKeyResultByID(r.Context(), keyResultID)
	}
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, keyResult)
}

// ListKeyResults handles GET /key-results. With ancestor query parameters it
// lists one objective's key results; without them, all key results.
func (h *KeyResultHandler) ListKeyResults(w http.ResponseWriter, r *http.Request) {
	themeID := r.URL.Query().Get("strategicThemeId")
	objectiveID := r.URL.Query().Get("objectiveId")

	var (
		keyResults []entities.KeyResult
		err        error
	)
	switch {
	case themeID != "" && objectiveID != "":
		keyResults, err = h.keyResults.ListByObjective(r.Context(), themeID, objectiveID)
	case themeID == "" && objectiveID == "":
		keyResults, err = h.keyResults.List(r.Context())
	default:
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "strategicThemeId and objectiveId must be provided together")
		return
	}
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, keyResults)
}

// UpdateKeyResult handles PUT /key-results/{keyResultID}. Ancestor ids come
// from the body, or from the matching query parameters.
func (h *KeyResultHandler) UpdateKeyResult(w http.ResponseWriter, r *http.Request) {
	var req UpdateKeyResultRequest
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
	objectiveID := req.ObjectiveID
	if objectiveID == "" {
		objectiveID = r.URL.Query().Get("objectiveId")
	}
	if themeID == "" || objectiveID == "" {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "strategicThemeId and objectiveId are required in the request body or query")
		return
	}

	keyResult, err := h.keyResults.Update(r.Context(), themeID, objectiveID, chi.URLParam(r, "keyResultID"), repository.KeyResultUpdate{
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
	common.RespondJSON(w, http.StatusOK, keyResult)
}

// DeleteKeyResult handles DELETE /key-results/{keyResultID}
func (h *KeyResultHandler) DeleteKeyResult(w http.ResponseWriter, r *http.Request) {
	themeID, objectiveID, ok := h.ancestorIDs(w, r)
	if !ok {
		return
	}
	if err := h.keyResults.Delete(r.Context(), themeID, objectiveID, chi.URLParam(r, "keyResultID")); err != nil {
		common.RespondAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
