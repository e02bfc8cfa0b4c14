package repository

import (
	"context"
	"testing"

	"okr-backend/application/services"
	"okr-backend/domain/core/entities"
	"okr-backend/infrastructure/messaging"
	"okr-backend/infrastructure/persistence/memory"

	apperrors "okr-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	store      *memory.Store
	themes     *ThemeRepository
	objectives *ObjectiveRepository
	keyResults *KeyResultRepository
	goals      *GoalRepository
	finder     *Finder
}

func newFixture() *fixture {
	logger := zap.NewNop()
	store := memory.NewStore()
	publisher := messaging.NewNoopPublisher(logger)
	references := services.NewReferences(store, logger)
	propagator := services.NewPropagator(store, publisher, logger)
	finder := NewFinder(store, logger)

	return &fixture{
		store:      store,
		themes:     NewThemeRepository(store, publisher, logger),
		objectives: NewObjectiveRepository(store, references, propagator, publisher, logger),
		keyResults: NewKeyResultRepository(store, references, propagator, publisher, logger),
		goals:      NewGoalRepository(store, references, propagator, finder, publisher, logger),
		finder:     finder,
	}
}

func (f *fixture) createTheme(t *testing.T) *entities.StrategicTheme {
	t.Helper()
	theme := &entities.StrategicTheme{
		Name:        "Customer retention",
		Description: "Keep customers around",
		StartDate:   "2026-01-01",
		EndDate:     "2026-03-31",
	}
	require.NoError(t, f.themes.Create(context.Background(), theme))
	return theme
}

func (f *fixture) createObjective(t *testing.T, themeID string) *entities.Objective {
	t.Helper()
	objective := &entities.Objective{
		StrategicThemeID: themeID,
		Statement:        "Reduce churn",
		StartDate:        "2026-01-01",
		EndDate:          "2026-03-31",
	}
	require.NoError(t, f.objectives.Create(context.Background(), objective))
	return objective
}

func (f *fixture) createKeyResult(t *testing.T, themeID, objectiveID string) *entities.KeyResult {
	t.Helper()
	keyResult := &entities.KeyResult{
		StrategicThemeID: themeID,
		ObjectiveID:      objectiveID,
		Description:      "Churn below 2%",
		StartDate:        "2026-01-01",
		EndDate:          "2026-03-31",
	}
	require.NoError(t, f.keyResults.Create(context.Background(), keyResult))
	return keyResult
}

func (f *fixture) createGoal(t *testing.T, themeID, objectiveID, keyResultID, parentID string, value float64) *entities.Goal {
	t.Helper()
	goal := &entities.Goal{
		StrategicThemeID: themeID,
		ObjectiveID:      objectiveID,
		KeyResultID:      keyResultID,
		Description:      "Ship retention emails",
		StartDate:        "2026-01-01",
		EndDate:          "2026-03-31",
		CurrentValue:     value,
		TargetValue:      100,
		AssignedTo:       "team-growth",
		AssigneeType:     entities.AssigneeTeam,
		ParentGoalID:     parentID,
	}
	require.NoError(t, f.goals.Create(context.Background(), goal))
	return goal
}

func strPtr(s string) *string     { return &s }
func floatPtr(v float64) *float64 { return &v }

func TestThemeLifecycle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	theme := f.createTheme(t)
	assert.NotEmpty(t, theme.ID)
	assert.Equal(t, 1, theme.Version)
	assert.Equal(t, "Q1-2026", theme.Quarter)
	assert.NotEmpty(t, theme.CreationDateUtc)

	loaded, err := f.themes.Get(ctx, theme.ID)
	require.NoError(t, err)
	assert.Equal(t, theme.Name, loaded.Name)
	assert.Empty(t, loaded.Objectives)

	updated, err := f.themes.Update(ctx, theme.ID, ThemeUpdate{
		Name:         strPtr("Customer loyalty"),
		CurrentValue: floatPtr(12.5),
	})
	require.NoError(t, err)
	assert.Equal(t, "Customer loyalty", updated.Name)
	assert.InDelta(t, 12.5, updated.CurrentValue, 1e-9)
	assert.Equal(t, 2, updated.Version)

	themes, err := f.themes.List(ctx)
	require.NoError(t, err)
	assert.Len(t, themes, 1)

	require.NoError(t, f.themes.Delete(ctx, theme.ID))
	_, err = f.themes.Get(ctx, theme.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestThemeUpdateMovesQuarterWithStartDate(t *testing.T) {
	f := newFixture()
	theme := f.createTheme(t)

	updated, err := f.themes.Update(context.Background(), theme.ID, ThemeUpdate{
		StartDate: strPtr("2026-07-01"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Q3-2026", updated.Quarter)
}

func TestGetMissingThemeReturnsNotFound(t *testing.T) {
	f := newFixture()
	_, err := f.themes.Get(context.Background(), "nope")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestObjectiveCreateRegistersInTheme(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	theme := f.createTheme(t)

	objective := f.createObjective(t, theme.ID)
	assert.NotEmpty(t, objective.ID)

	loaded, err := f.themes.Get(ctx, theme.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{objective.ID}, loaded.Objectives)
}

func TestObjectiveCardinality(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	theme := f.createTheme(t)

	for i := 0; i < entities.MaxObjectivesPerTheme; i++ {
		f.createObjective(t, theme.ID)
	}

	extra := &entities.Objective{
		StrategicThemeID: theme.ID,
		Statement:        "One too many",
		StartDate:        "2026-01-01",
		EndDate:          "2026-03-31",
	}
	err := f.objectives.Create(ctx, extra)
	assert.True(t, apperrors.IsCardinality(err))
}

func TestObjectiveCreateUnderMissingTheme(t *testing.T) {
	f := newFixture()
	err := f.objectives.Create(context.Background(), &entities.Objective{
		StrategicThemeID: "missing",
		Statement:        "Orphan",
		StartDate:        "2026-01-01",
		EndDate:          "2026-03-31",
	})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestObjectiveDeleteDetachesAndRecomputesTheme(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	theme := f.createTheme(t)
	kept := f.createObjective(t, theme.ID)
	removed := f.createObjective(t, theme.ID)

	_, err := f.objectives.Update(ctx, theme.ID, kept.ID, ObjectiveUpdate{CurrentValue: floatPtr(80)})
	require.NoError(t, err)
	_, err = f.objectives.Update(ctx, theme.ID, removed.ID, ObjectiveUpdate{CurrentValue: floatPtr(20)})
	require.NoError(t, err)

	require.NoError(t, f.objectives.Delete(ctx, theme.ID, removed.ID))

	loaded, err := f.themes.Get(ctx, theme.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{kept.ID}, loaded.Objectives)
	assert.InDelta(t, 80.0, loaded.CurrentValue, 1e-9)
}

func TestKeyResultCardinality(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	theme := f.createTheme(t)
	objective := f.createObjective(t, theme.ID)

	for i := 0; i < entities.MaxKeyResultsPerObjective; i++ {
		f.createKeyResult(t, theme.ID, objective.ID)
	}

	extra := &entities.KeyResult{
		StrategicThemeID: theme.ID,
		ObjectiveID:      objective.ID,
		Description:      "One too many",
		StartDate:        "2026-01-01",
		EndDate:          "2026-03-31",
	}
	err := f.keyResults.Create(ctx, extra)
	assert.True(t, apperrors.IsCardinality(err))
}

func TestFinderResolvesObjectiveAndKeyResultByID(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	theme := f.createTheme(t)
	objective := f.createObjective(t, theme.ID)
	keyResult := f.createKeyResult(t, theme.ID, objective.ID)

	foundObjective, err := f.finder.FindObjectiveByID(ctx, objective.ID)
	require.NoError(t, err)
	assert.Equal(t, theme.ID, foundObjective.StrategicThemeID)

	foundKeyResult, err := f.finder.FindKeyResultByID(ctx, keyResult.ID)
	require.NoError(t, err)
	assert.Equal(t, objective.ID, foundKeyResult.ObjectiveID)

	_, err = f.finder.FindObjectiveByID(ctx, "unknown")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestKeyResultValueEditPropagates(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	theme := f.createTheme(t)
	objective := f.createObjective(t, theme.ID)
	keyResult := f.createKeyResult(t, theme.ID, objective.ID)

	_, err := f.keyResults.Update(ctx, theme.ID, objective.ID, keyResult.ID, KeyResultUpdate{
		CurrentValue: floatPtr(60),
	})
	require.NoError(t, err)

	loadedObjective, err := f.objectives.Get(ctx, theme.ID, objective.ID)
	require.NoError(t, err)
	assert.InDelta(t, 60.0, loadedObjective.CurrentValue, 1e-9)

	loadedTheme, err := f.themes.Get(ctx, theme.ID)
	require.NoError(t, err)
	assert.InDelta(t, 60.0, loadedTheme.CurrentValue, 1e-9)
}
