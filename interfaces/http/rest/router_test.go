package rest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"okr-backend/application/services"
	"okr-backend/domain/core/entities"
	"okr-backend/infrastructure/messaging"
	"okr-backend/infrastructure/persistence/memory"
	"okr-backend/infrastructure/persistence/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHandler() http.Handler {
	logger := zap.NewNop()
	store := memory.NewStore()
	publisher := messaging.NewNoopPublisher(logger)
	references := services.NewReferences(store, logger)
	propagator := services.NewPropagator(store, publisher, logger)
	finder := repository.NewFinder(store, logger)

	return NewRouter(
		repository.NewThemeRepository(store, publisher, logger),
		repository.NewObjectiveRepository(store, references, propagator, publisher, logger),
		repository.NewKeyResultRepository(store, references, propagator, publisher, logger),
		repository.NewGoalRepository(store, references, propagator, finder, publisher, logger),
		finder,
		false,
		logger,
	).Setup()
}

func doRequest(t *testing.T, handler http.Handler, method, path string, body interface{}) (int, json.RawMessage) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	}
	return rec.Code, envelope.Data
}

func createHierarchy(t *testing.T, handler http.Handler) (entities.StrategicTheme, entities.Objective, entities.KeyResult) {
	t.Helper()

	status, data := doRequest(t, handler, http.MethodPost, "/strategic-themes", map[string]interface{}{
		"name":        "Customer retention",
		"description": "Keep customers around",
		"startDate":   "2026-01-01",
		"endDate":     "2026-03-31",
	})
	require.Equal(t, http.StatusCreated, status)
	var theme entities.StrategicTheme
	require.NoError(t, json.Unmarshal(data, &theme))

	status, data = doRequest(t, handler, http.MethodPost, "/objectives", map[string]interface{}{
		"strategicThemeId": theme.ID,
		"statement":        "Reduce churn",
		"startDate":        "2026-01-01",
		"endDate":          "2026-03-31",
	})
	require.Equal(t, http.StatusCreated, status)
	var objective entities.Objective
	require.NoError(t, json.Unmarshal(data, &objective))

	status, data = doRequest(t, handler, http.MethodPost, "/key-results", map[string]interface{}{
		"strategicThemeId": theme.ID,
		"objectiveId":      objective.ID,
		"description":      "Churn below 2%",
		"startDate":        "2026-01-01",
		"endDate":          "2026-03-31",
	})
	require.Equal(t, http.StatusCreated, status)
	var keyResult entities.KeyResult
	require.NoError(t, json.Unmarshal(data, &keyResult))

	return theme, objective, keyResult
}

func TestUpdateObjectiveWithThemeIDInBody(t *testing.T) {
	handler := newTestHandler()
	theme, objective, _ := createHierarchy(t, handler)

	status, data := doRequest(t, handler, http.MethodPut, "/objectives/"+objective.ID, map[string]interface{}{
		"strategicThemeId": theme.ID,
		"statement":        "updated",
	})
	require.Equal(t, http.StatusOK, status)

	var updated entities.Objective
	require.NoError(t, json.Unmarshal(data, &updated))
	assert.Equal(t, "updated", updated.Statement)
}

func TestUpdateObjectiveWithThemeIDInQuery(t *testing.T) {
	handler := newTestHandler()
	theme, objective, _ := createHierarchy(t, handler)

	status, data := doRequest(t, handler, http.MethodPut, "/objectives/"+objective.ID+"?strategicThemeId="+theme.ID, map[string]interface{}{
		"statement": "updated via query",
	})
	require.Equal(t, http.StatusOK, status)

	var updated entities.Objective
	require.NoError(t, json.Unmarshal(data, &updated))
	assert.Equal(t, "updated via query", updated.Statement)
}

func TestUpdateObjectiveWithoutThemeIDIsRejected(t *testing.T) {
	handler := newTestHandler()
	_, objective, _ := createHierarchy(t, handler)

	status, _ := doRequest(t, handler, http.MethodPut, "/objectives/"+objective.ID, map[string]interface{}{
		"statement": "updated",
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestUpdateKeyResultWithAncestorsInBody(t *testing.T) {
	handler := newTestHandler()
	theme, objective, keyResult := createHierarchy(t, handler)

	status, data := doRequest(t, handler, http.MethodPut, "/key-results/"+keyResult.ID, map[string]interface{}{
		"strategicThemeId": theme.ID,
		"objectiveId":      objective.ID,
		"currentValue":     60,
	})
	require.Equal(t, http.StatusOK, status)

	var updated entities.KeyResult
	require.NoError(t, json.Unmarshal(data, &updated))
	assert.InDelta(t, 60.0, updated.CurrentValue, 1e-9)
}

func TestUpdateGoalWithAncestorsInBody(t *testing.T) {
	handler := newTestHandler()
	theme, objective, keyResult := createHierarchy(t, handler)

	status, data := doRequest(t, handler, http.MethodPost, "/goals", map[string]interface{}{
		"strategicThemeId": theme.ID,
		"objectiveId":      objective.ID,
		"keyResultId":      keyResult.ID,
		"description":      "Ship retention emails",
		"startDate":        "2026-01-01",
		"endDate":          "2026-03-31",
		"assignedTo":       "team-growth",
		"assigneeType":     "TEAM",
	})
	require.Equal(t, http.StatusCreated, status)
	var goal entities.Goal
	require.NoError(t, json.Unmarshal(data, &goal))

	status, data = doRequest(t, handler, http.MethodPut, "/goals/"+goal.ID, map[string]interface{}{
		"strategicThemeId": theme.ID,
		"objectiveId":      objective.ID,
		"keyResultId":      keyResult.ID,
		"currentValue":     42,
	})
	require.Equal(t, http.StatusOK, status)

	var updated entities.Goal
	require.NoError(t, json.Unmarshal(data, &updated))
	assert.InDelta(t, 42.0, updated.CurrentValue, 1e-9)
}
