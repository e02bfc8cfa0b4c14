package repository

import (
	"context"
	"testing"

	"okr-backend/domain/core/entities"
	apperrors "okr-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type goalFixture struct {
	*fixture
	theme     *entities.StrategicTheme
	objective *entities.Objective
	keyResult *entities.KeyResult
}

func newGoalFixture(t *testing.T) *goalFixture {
	f := newFixture()
	theme := f.createTheme(t)
	objective := f.createObjective(t, theme.ID)
	keyResult := f.createKeyResult(t, theme.ID, objective.ID)
	return &goalFixture{fixture: f, theme: theme, objective: objective, keyResult: keyResult}
}

func (f *goalFixture) goal(t *testing.T, parentID string, value float64) *entities.Goal {
	return f.createGoal(t, f.theme.ID, f.objective.ID, f.keyResult.ID, parentID, value)
}

func (f *goalFixture) getGoal(t *testing.T, id string) *entities.Goal {
	t.Helper()
	goal, err := f.goals.Get(context.Background(), f.theme.ID, f.objective.ID, f.keyResult.ID, id)
	require.NoError(t, err)
	return goal
}

func TestGoalCreatePropagatesAggregates(t *testing.T) {
	f := newGoalFixture(t)
	ctx := context.Background()

	f.goal(t, "", 40)
	f.goal(t, "", 60)

	keyResult, err := f.keyResults.Get(ctx, f.theme.ID, f.objective.ID, f.keyResult.ID)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, keyResult.CurrentValue, 1e-9)

	objective, err := f.objectives.Get(ctx, f.theme.ID, f.objective.ID)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, objective.CurrentValue, 1e-9)

	theme, err := f.themes.Get(ctx, f.theme.ID)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, theme.CurrentValue, 1e-9)
}

func TestGoalCreateRegistersReferences(t *testing.T) {
	f := newGoalFixture(t)
	ctx := context.Background()

	parent := f.goal(t, "", 0)
	child := f.goal(t, parent.ID, 30)

	keyResult, err := f.keyResults.Get(ctx, f.theme.ID, f.objective.ID, f.keyResult.ID)
	require.NoError(t, err)
	assert.Contains(t, keyResult.Goals, parent.ID)
	assert.Contains(t, keyResult.Goals, child.ID)

	assert.Equal(t, []string{child.ID}, f.getGoal(t, parent.ID).ChildGoals)
	assert.Equal(t, parent.ID, f.getGoal(t, child.ID).ParentGoalID)
	assert.False(t, f.getGoal(t, parent.ID).IsLeaf())
	assert.True(t, f.getGoal(t, child.ID).IsLeaf())
}

func TestGoalCreateUnderMissingParentIsRejected(t *testing.T) {
	f := newGoalFixture(t)
	err := f.goals.Create(context.Background(), &entities.Goal{
		StrategicThemeID: f.theme.ID,
		ObjectiveID:      f.objective.ID,
		KeyResultID:      f.keyResult.ID,
		Description:      "Dangling",
		StartDate:        "2026-01-01",
		EndDate:          "2026-03-31",
		AssignedTo:       "someone",
		AssigneeType:     entities.AssigneePerson,
		ParentGoalID:     "missing",
	})
	assert.True(t, apperrors.IsNotFound(err))

	keyResult, err := f.keyResults.Get(context.Background(), f.theme.ID, f.objective.ID, f.keyResult.ID)
	require.NoError(t, err)
	assert.Empty(t, keyResult.Goals)
}

func TestGoalCreateUnderMissingKeyResult(t *testing.T) {
	f := newGoalFixture(t)
	err := f.goals.Create(context.Background(), &entities.Goal{
		StrategicThemeID: f.theme.ID,
		ObjectiveID:      f.objective.ID,
		KeyResultID:      "missing",
		Description:      "Orphan",
		StartDate:        "2026-01-01",
		EndDate:          "2026-03-31",
		AssignedTo:       "someone",
		AssigneeType:     entities.AssigneePerson,
	})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestGoalValueEditRecomputesParentChain(t *testing.T) {
	f := newGoalFixture(t)
	ctx := context.Background()

	parent := f.goal(t, "", 0)
	childA := f.goal(t, parent.ID, 20)
	f.goal(t, parent.ID, 40)

	_, err := f.goals.Update(ctx, f.theme.ID, f.objective.ID, f.keyResult.ID, childA.ID, GoalUpdate{
		CurrentValue: floatPtr(80),
	})
	require.NoError(t, err)

	assert.InDelta(t, 60.0, f.getGoal(t, parent.ID).CurrentValue, 1e-9)
}

func TestGoalReparenting(t *testing.T) {
	f := newGoalFixture(t)
	ctx := context.Background()

	oldParent := f.goal(t, "", 0)
	newParent := f.goal(t, "", 0)
	child := f.goal(t, oldParent.ID, 50)

	_, err := f.goals.Update(ctx, f.theme.ID, f.objective.ID, f.keyResult.ID, child.ID, GoalUpdate{
		ParentGoalID: strPtr(newParent.ID),
	})
	require.NoError(t, err)

	assert.Empty(t, f.getGoal(t, oldParent.ID).ChildGoals)
	assert.Equal(t, []string{child.ID}, f.getGoal(t, newParent.ID).ChildGoals)
	assert.Equal(t, newParent.ID, f.getGoal(t, child.ID).ParentGoalID)

	// The old parent lost its only child and falls back to zero; the new
	// parent now averages the child it gained.
	assert.InDelta(t, 0.0, f.getGoal(t, oldParent.ID).CurrentValue, 1e-9)
	assert.InDelta(t, 50.0, f.getGoal(t, newParent.ID).CurrentValue, 1e-9)
}

func TestGoalDetachFromParent(t *testing.T) {
	f := newGoalFixture(t)
	ctx := context.Background()

	parent := f.goal(t, "", 0)
	child := f.goal(t, parent.ID, 50)

	_, err := f.goals.Update(ctx, f.theme.ID, f.objective.ID, f.keyResult.ID, child.ID, GoalUpdate{
		ParentGoalID: strPtr(""),
	})
	require.NoError(t, err)

	assert.Empty(t, f.getGoal(t, parent.ID).ChildGoals)
	assert.Empty(t, f.getGoal(t, child.ID).ParentGoalID)
}

func TestGoalReparentToOwnDescendantIsRejected(t *testing.T) {
	f := newGoalFixture(t)
	ctx := context.Background()

	root := f.goal(t, "", 0)
	middle := f.goal(t, root.ID, 0)
	leaf := f.goal(t, middle.ID, 0)

	_, err := f.goals.Update(ctx, f.theme.ID, f.objective.ID, f.keyResult.ID, root.ID, GoalUpdate{
		ParentGoalID: strPtr(leaf.ID),
	})
	assert.True(t, apperrors.IsValidation(err))
}

func TestGoalReparentToSelfIsRejected(t *testing.T) {
	f := newGoalFixture(t)
	goal := f.goal(t, "", 0)

	_, err := f.goals.Update(context.Background(), f.theme.ID, f.objective.ID, f.keyResult.ID, goal.ID, GoalUpdate{
		ParentGoalID: strPtr(goal.ID),
	})
	assert.True(t, apperrors.IsValidation(err))
}

func TestGoalReparentToMissingParentIsRejected(t *testing.T) {
	f := newGoalFixture(t)
	goal := f.goal(t, "", 0)

	_, err := f.goals.Update(context.Background(), f.theme.ID, f.objective.ID, f.keyResult.ID, goal.ID, GoalUpdate{
		ParentGoalID: strPtr("missing"),
	})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestGoalDeleteOrphansChildren(t *testing.T) {
	f := newGoalFixture(t)
	ctx := context.Background()

	parent := f.goal(t, "", 0)
	childA := f.goal(t, parent.ID, 20)
	childB := f.goal(t, parent.ID, 40)

	require.NoError(t, f.goals.Delete(ctx, f.theme.ID, f.objective.ID, f.keyResult.ID, parent.ID))

	assert.Empty(t, f.getGoal(t, childA.ID).ParentGoalID)
	assert.Empty(t, f.getGoal(t, childB.ID).ParentGoalID)

	keyResult, err := f.keyResults.Get(ctx, f.theme.ID, f.objective.ID, f.keyResult.ID)
	require.NoError(t, err)
	assert.NotContains(t, keyResult.Goals, parent.ID)
	assert.InDelta(t, 30.0, keyResult.CurrentValue, 1e-9)
}

func TestGoalDeleteDetachesFromParent(t *testing.T) {
	f := newGoalFixture(t)
	ctx := context.Background()

	parent := f.goal(t, "", 0)
	child := f.goal(t, parent.ID, 50)

	require.NoError(t, f.goals.Delete(ctx, f.theme.ID, f.objective.ID, f.keyResult.ID, child.ID))

	assert.Empty(t, f.getGoal(t, parent.ID).ChildGoals)
}

func TestFinderResolvesGoalByIDAlone(t *testing.T) {
	f := newGoalFixture(t)
	goal := f.goal(t, "", 25)

	found, err := f.finder.FindGoalByID(context.Background(), goal.ID)
	require.NoError(t, err)
	assert.Equal(t, goal.ID, found.ID)
	assert.Equal(t, f.keyResult.ID, found.KeyResultID)
	assert.Equal(t, f.objective.ID, found.ObjectiveID)
	assert.Equal(t, f.theme.ID, found.StrategicThemeID)
}

func TestFinderReturnsNotFoundForUnknownID(t *testing.T) {
	f := newGoalFixture(t)
	_, err := f.finder.FindGoalByID(context.Background(), "unknown")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestGoalListByKeyResult(t *testing.T) {
	f := newGoalFixture(t)
	f.goal(t, "", 10)
	f.goal(t, "", 20)

	goals, err := f.goals.ListByKeyResult(context.Background(), f.theme.ID, f.objective.ID, f.keyResult.ID)
	require.NoError(t, err)
	assert.Len(t, goals, 2)
}
