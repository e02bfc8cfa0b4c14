package repository

import (
	"context"

	"okr-backend/application/ports"
	"okr-backend/domain/core/entities"
	"okr-backend/infrastructure/persistence/schema"
	apperrors "okr-backend/pkg/errors"

	"go.uber.org/zap"
)

// Finder resolves records from their id alone. Composite keys embed the full
// ancestor chain, so a bare id cannot be turned into a key; the finder scans
// the type partition of the start-date index with an id filter instead. Used
// where only the id is at hand, such as orphaning the children of a deleted
// goal.
type Finder struct {
	store  ports.Store
	logger *zap.Logger
}

// NewFinder creates a new reverse id resolver
func NewFinder(store ports.Store, logger *zap.Logger) *Finder {
	return &Finder{store: store, logger: logger}
}

func (f *Finder) firstMatch(ctx context.Context, tag, resource, id string) (ports.Item, error) {
	items, err := f.store.QueryIndex(ctx, ports.IndexByStartDate, tag, map[string]string{"id": id})
	if err != nil {
		return nil, apperrors.NewStoreError("find "+resource+" by id", err)
	}
	if len(items) == 0 {
		return nil, apperrors.NewNotFoundError(resource)
	}
	if len(items) > 1 {
		f.logger.Warn("Multiple records share an id, using the first match",
			zap.String("type", tag),
			zap.String("id", id),
		)
	}
	return items[0], nil
}

// FindGoalByID returns the goal with the given id, wherever it sits in the
// hierarchy.
func (f *Finder) FindGoalByID(ctx context.Context, id string) (*entities.Goal, error) {
	item, err := f.firstMatch(ctx, schema.TagGoal, "goal", id)
	if err != nil {
		return nil, err
	}
	return unmarshalRecord[entities.Goal](item)
}

// FindKeyResultByID returns the key result with the given id.
func (f *Finder) FindKeyResultByID(ctx context.Context, id string) (*entities.KeyResult, error) {
	item, err := f.firstMatch(ctx, schema.TagKeyResult, "key result", id)
	if err != nil {
		return nil, err
	}
	return unmarshalRecord[entities.KeyResult](item)
}

// FindObjectiveByID returns the objective with the given id.
func (f *Finder) FindObjectiveByID(ctx context.Context, id string) (*entities.Objective, error) {
	item, err := f.firstMatch(ctx, schema.TagObjective, "objective", id)
	if err != nil {
		return nil, err
	}
	return unmarshalRecord[entities.Objective](item)
}
