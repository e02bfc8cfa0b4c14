package services

import (
	"context"
	"errors"

	"okr-backend/application/ports"
	"okr-backend/domain/core/entities"
	"okr-backend/domain/events"
	"okr-backend/infrastructure/persistence/schema"
	apperrors "okr-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"go.uber.org/zap"
)

const (
	// maxChainDepth bounds the goal-ancestor walk. A chain this deep means a
	// corrupted (cyclic) parent chain; the walk stops rather than spin.
	maxChainDepth = 64

	// maxWriteAttempts bounds the version-conditioned retry per record. On
	// exhaustion the stale value stands; the next mutation in the subtree
	// recomputes it.
	maxWriteAttempts = 3
)

// Propagator recomputes the derived current value up the hierarchy after a
// descendant's authoritative value changes. Each level is an independent
// read-recompute-write; a failure at one level leaves deeper levels written
// and shallower ones stale, which the next mutation corrects.
type Propagator struct {
	store     ports.Store
	publisher ports.EventPublisher
	logger    *zap.Logger
}

// NewPropagator creates a new aggregate propagator
func NewPropagator(store ports.Store, publisher ports.EventPublisher, logger *zap.Logger) *Propagator {
	return &Propagator{store: store, publisher: publisher, logger: logger}
}

// GoalScope names the ancestor chain of a changed goal.
type GoalScope struct {
	ThemeID      string
	ObjectiveID  string
	KeyResultID  string
	ParentGoalID string
}

// PropagateFromGoal walks upward from a changed goal: the parent-goal chain
// first, then the owning key result, objective, and theme. The walk is a
// straight line; sibling subtrees are never touched.
func (p *Propagator) PropagateFromGoal(ctx context.Context, scope GoalScope) error {
	if scope.ParentGoalID != "" {
		if err := p.recomputeGoalChain(ctx, scope); err != nil {
			return err
		}
	}
	if err := p.recomputeKeyResult(ctx, scope.ThemeID, scope.ObjectiveID, scope.KeyResultID); err != nil {
		return err
	}
	return p.PropagateFromKeyResult(ctx, scope.ThemeID, scope.ObjectiveID)
}

// PropagateFromKeyResult recomputes the owning objective, then its theme.
func (p *Propagator) PropagateFromKeyResult(ctx context.Context, themeID, objectiveID string) error {
	if err := p.recomputeObjective(ctx, themeID, objectiveID); err != nil {
		return err
	}
	return p.RecomputeTheme(ctx, themeID)
}

// RecomputeTheme rewrites a theme's current value as the mean of its
// objectives' values.
func (p *Propagator) RecomputeTheme(ctx context.Context, themeID string) error {
	value, err := p.partitionMean(ctx, schema.ObjectivePartition(themeID), schema.SortPrefix(schema.TagObjective))
	if err != nil {
		return err
	}
	return p.persist(ctx, schema.ThemeKey(themeID), schema.TagTheme, themeID, value)
}

// recomputeGoalChain walks the parent-goal chain upward, recomputing each
// ancestor as the mean of its immediate children. Terminates at a goal with
// no parent or at the depth bound.
func (p *Propagator) recomputeGoalChain(ctx context.Context, scope GoalScope) error {
	current := scope.ParentGoalID
	for depth := 0; current != ""; depth++ {
		if depth >= maxChainDepth {
			p.logger.Error("Goal ancestor chain exceeds maximum depth, aborting walk",
				zap.String("keyResultId", scope.KeyResultID),
				zap.String("goalId", current),
			)
			return nil
		}

		key := schema.GoalKey(scope.ThemeID, scope.ObjectiveID, scope.KeyResultID, current)
		item, err := p.store.Get(ctx, key)
		if err != nil {
			return apperrors.NewStoreError("get parent goal", err)
		}
		if item == nil {
			return nil
		}
		var parent entities.Goal
		if err := attributevalue.UnmarshalMap(item, &parent); err != nil {
			return apperrors.NewStoreError("decode parent goal", err)
		}

		// A goal left with no children is a leaf again and falls back to zero.
		var value float64
		if !parent.IsLeaf() {
			value, err = p.childGoalMean(ctx, scope, parent.ChildGoals)
			if err != nil {
				return err
			}
		}
		if err := p.persist(ctx, key, schema.TagGoal, current, value); err != nil {
			return err
		}

		current = parent.ParentGoalID
	}
	return nil
}

// recomputeKeyResult rewrites a key result's value as the mean of every goal
// keyed under it, re-queried fresh.
func (p *Propagator) recomputeKeyResult(ctx context.Context, themeID, objectiveID, keyResultID string) error {
	value, err := p.partitionMean(ctx, schema.GoalPartition(themeID, objectiveID, keyResultID), schema.SortPrefix(schema.TagGoal))
	if err != nil {
		return err
	}
	return p.persist(ctx, schema.KeyResultKey(themeID, objectiveID, keyResultID), schema.TagKeyResult, keyResultID, value)
}

// recomputeObjective rewrites an objective's value as the mean of its key
// results' values.
func (p *Propagator) recomputeObjective(ctx context.Context, themeID, objectiveID string) error {
	value, err := p.partitionMean(ctx, schema.KeyResultPartition(themeID, objectiveID), schema.SortPrefix(schema.TagKeyResult))
	if err != nil {
		return err
	}
	return p.persist(ctx, schema.ObjectiveKey(themeID, objectiveID), schema.TagObjective, objectiveID, value)
}

// childGoalMean averages the current values of a parent goal's immediate
// children. Children live in the same partition as the parent; a missing
// child contributes zero but still counts.
func (p *Propagator) childGoalMean(ctx context.Context, scope GoalScope, childIDs []string) (float64, error) {
	if len(childIDs) == 0 {
		return 0, nil
	}
	var sum float64
	for _, childID := range childIDs {
		item, err := p.store.Get(ctx, schema.GoalKey(scope.ThemeID, scope.ObjectiveID, scope.KeyResultID, childID))
		if err != nil {
			return 0, apperrors.NewStoreError("get child goal", err)
		}
		if item == nil {
			continue
		}
		var child entities.Goal
		if err := attributevalue.UnmarshalMap(item, &child); err != nil {
			return 0, apperrors.NewStoreError("decode child goal", err)
		}
		sum += child.CurrentValue
	}
	return sum / float64(len(childIDs)), nil
}

// partitionMean averages currentValue over every record in a partition with
// the given sort-key prefix. An empty partition yields 0.
func (p *Propagator) partitionMean(ctx context.Context, pk, skPrefix string) (float64, error) {
	items, err := p.store.Query(ctx, pk, skPrefix)
	if err != nil {
		return 0, apperrors.NewStoreError("query children", err)
	}
	if len(items) == 0 {
		return 0, nil
	}
	var sum float64
	for _, item := range items {
		var record struct {
			CurrentValue float64 `dynamodbav:"currentValue"`
		}
		if err := attributevalue.UnmarshalMap(item, &record); err != nil {
			return 0, apperrors.NewStoreError("decode child record", err)
		}
		sum += record.CurrentValue
	}
	return sum / float64(len(items)), nil
}

// persist writes a recomputed value with a version condition and bounded
// retry. When retries are exhausted the write is abandoned; concurrent
// writers were recomputing the same record from fresher reads.
func (p *Propagator) persist(ctx context.Context, key ports.Key, entityType, id string, value float64) error {
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		item, err := p.store.Get(ctx, key)
		if err != nil {
			return apperrors.NewStoreError("get record", err)
		}
		if item == nil {
			return nil
		}
		var record struct {
			Version int `dynamodbav:"version"`
		}
		if err := attributevalue.UnmarshalMap(item, &record); err != nil {
			return apperrors.NewStoreError("decode record version", err)
		}

		attrs := ports.Item{
			"currentValue": numberValue(value),
			"version":      numberValue(record.Version + 1),
		}
		updated, err := p.store.UpdateIfVersion(ctx, key, attrs, record.Version)
		if errors.Is(err, ports.ErrConditionFailed) {
			continue
		}
		if err != nil {
			return apperrors.NewStoreError("write recomputed value", err)
		}
		if updated == nil {
			return nil
		}

		if err := p.publisher.Publish(ctx, events.NewValueRecomputed(entityType, id, value)); err != nil {
			p.logger.Warn("Failed to publish recompute event",
				zap.String("entityType", entityType),
				zap.String("id", id),
				zap.Error(err),
			)
		}
		return nil
	}

	p.logger.Warn("Abandoning recompute after repeated version conflicts",
		zap.String("entityType", entityType),
		zap.String("id", id),
	)
	return nil
}
