package repository

import (
	"context"
	"fmt"

	"okr-backend/application/ports"
	"okr-backend/application/services"
	"okr-backend/domain/core/entities"
	"okr-backend/domain/events"
	"okr-backend/infrastructure/persistence/schema"
	apperrors "okr-backend/pkg/errors"
	"okr-backend/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ObjectiveRepository manages objective records under a strategic theme.
type ObjectiveRepository struct {
	store      ports.Store
	references *services.References
	propagator *services.Propagator
	publisher  ports.EventPublisher
	logger     *zap.Logger
}

// NewObjectiveRepository creates a new objective repository
func NewObjectiveRepository(store ports.Store, references *services.References, propagator *services.Propagator, publisher ports.EventPublisher, logger *zap.Logger) *ObjectiveRepository {
	return &ObjectiveRepository{
		store:      store,
		references: references,
		propagator: propagator,
		publisher:  publisher,
		logger:     logger,
	}
}

// ObjectiveUpdate carries the editable objective fields; nil means unchanged.
type ObjectiveUpdate struct {
	Statement    *string
	StartDate    *string
	EndDate      *string
	CurrentValue *float64
	StartDateUtc *string
	DueDateUtc   *string
	FinishAtUtc  *string
}

// Create writes a new objective under its theme, registers it in the theme's
// child list, and recomputes the theme's aggregate. Rejected when the theme
// already holds the maximum number of objectives.
func (r *ObjectiveRepository) Create(ctx context.Context, objective *entities.Objective) error {
	themeID := objective.StrategicThemeID
	themeItem, err := r.store.Get(ctx, schema.ThemeKey(themeID))
	if err != nil {
		return apperrors.NewStoreError("get strategic theme", err)
	}
	if themeItem == nil {
		return apperrors.NewNotFoundError("strategic theme")
	}

	siblings, err := r.store.Query(ctx, schema.ObjectivePartition(themeID), schema.SortPrefix(schema.TagObjective))
	if err != nil {
		return apperrors.NewStoreError("count objectives", err)
	}
	if len(siblings) >= entities.MaxObjectivesPerTheme {
		return apperrors.NewCardinalityError(
			fmt.Sprintf("strategic theme already has %d objectives", entities.MaxObjectivesPerTheme))
	}

	objective.ID = uuid.NewString()
	objective.CreationDateUtc = utils.NowRFC3339()
	objective.Version = 1
	if objective.KeyResults == nil {
		objective.KeyResults = []string{}
	}

	item, err := marshalRecord(objective, schema.ObjectiveKey(themeID, objective.ID), schema.TagObjective, objective.StartDate, objective.EndDate)
	if err != nil {
		return err
	}
	if err := r.store.Put(ctx, item); err != nil {
		return apperrors.NewStoreError("put objective", err)
	}

	if err := r.references.AddChild(ctx, schema.ThemeKey(themeID), "objectives", objective.ID); err != nil {
		return err
	}
	if err := r.propagator.RecomputeTheme(ctx, themeID); err != nil {
		return err
	}

	r.publish(ctx, events.NewEntityCreated(schema.TagObjective, objective.ID))
	r.logger.Info("Created objective",
		zap.String("objectiveId", objective.ID),
		zap.String("themeId", themeID),
	)
	return nil
}

// Get returns the objective with the given id under its theme.
func (r *ObjectiveRepository) Get(ctx context.Context, themeID, id string) (*entities.Objective, error) {
	item, err := r.store.Get(ctx, schema.ObjectiveKey(themeID, id))
	if err != nil {
		return nil, apperrors.NewStoreError("get objective", err)
	}
	if item == nil {
		return nil, apperrors.NewNotFoundError("objective")
	}
	return unmarshalRecord[entities.Objective](item)
}

// ListByTheme returns the objectives under a theme, in key order.
func (r *ObjectiveRepository) ListByTheme(ctx context.Context, themeID string) ([]entities.Objective, error) {
	items, err := r.store.Query(ctx, schema.ObjectivePartition(themeID), schema.SortPrefix(schema.TagObjective))
	if err != nil {
		return nil, apperrors.NewStoreError("list objectives", err)
	}
	return unmarshalRecords[entities.Objective](items)
}

// List returns every objective across all themes, ordered by start date.
func (r *ObjectiveRepository) List(ctx context.Context) ([]entities.Objective, error) {
	items, err := r.store.QueryIndex(ctx, ports.IndexByStartDate, schema.TagObjective, nil)
	if err != nil {
		return nil, apperrors.NewStoreError("list objectives", err)
	}
	return unmarshalRecords[entities.Objective](items)
}

// Update merges the provided fields into the objective. A direct edit of the
// current value triggers recomputation of the owning theme.
func (r *ObjectiveRepository) Update(ctx context.Context, themeID, id string, update ObjectiveUpdate) (*entities.Objective, error) {
	attrs := ports.Item{}
	setString(attrs, "statement", update.Statement)
	setDateRange(attrs, update.StartDate, update.EndDate)
	setFloat(attrs, "currentValue", update.CurrentValue)
	setString(attrs, "startDateUtc", update.StartDateUtc)
	setString(attrs, "dueDateUtc", update.DueDateUtc)
	setString(attrs, "finishAtUtc", update.FinishAtUtc)

	if len(attrs) == 0 {
		return r.Get(ctx, themeID, id)
	}

	item, err := mergeWithVersion(ctx, r.store, schema.ObjectiveKey(themeID, id), attrs)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperrors.NewNotFoundError("objective")
	}

	if update.CurrentValue != nil {
		if err := r.propagator.RecomputeTheme(ctx, themeID); err != nil {
			return nil, err
		}
	}
	return unmarshalRecord[entities.Objective](item)
}

// Delete removes the objective, detaches it from its theme's child list, and
// recomputes the theme over the remaining objectives.
func (r *ObjectiveRepository) Delete(ctx context.Context, themeID, id string) error {
	item, err := r.store.Get(ctx, schema.ObjectiveKey(themeID, id))
	if err != nil {
		return apperrors.NewStoreError("get objective", err)
	}
	if item == nil {
		return apperrors.NewNotFoundError("objective")
	}

	if err := r.store.Delete(ctx, schema.ObjectiveKey(themeID, id)); err != nil {
		return apperrors.NewStoreError("delete objective", err)
	}
	if err := r.references.RemoveChild(ctx, schema.ThemeKey(themeID), "objectives", id); err != nil {
		return err
	}
	if err := r.propagator.RecomputeTheme(ctx, themeID); err != nil {
		return err
	}

	r.publish(ctx, events.NewEntityDeleted(schema.TagObjective, id))
	r.logger.Info("Deleted objective",
		zap.String("objectiveId", id),
		zap.String("themeId", themeID),
	)
	return nil
}

func (r *ObjectiveRepository) publish(ctx context.Context, event events.DomainEvent) {
	if err := r.publisher.Publish(ctx, event); err != nil {
		r.logger.Warn("Failed to publish domain event",
			zap.String("eventType", event.GetEventType()),
			zap.Error(err),
		)
	}
}
