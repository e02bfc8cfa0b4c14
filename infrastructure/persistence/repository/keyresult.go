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

// KeyResultRepository manages key result records under an objective.
type KeyResultRepository struct {
	store      ports.Store
	references *services.References
	propagator *services.Propagator
	publisher  ports.EventPublisher
	logger     *zap.Logger
}

// NewKeyResultRepository creates a new key result repository
func NewKeyResultRepository(store ports.Store, references *services.References, propagator *services.Propagator, publisher ports.EventPublisher, logger *zap.Logger) *KeyResultRepository {
	return &KeyResultRepository{
		store:      store,
		references: references,
		propagator: propagator,
		publisher:  publisher,
		logger:     logger,
	}
}

// KeyResultUpdate carries the editable key result fields; nil means unchanged.
type KeyResultUpdate struct {
	Description  *string
	StartDate    *string
	EndDate      *string
	CurrentValue *float64
	StartDateUtc *string
	DueDateUtc   *string
	FinishAtUtc  *string
}

// Create writes a new key result under its objective, registers it in the
// objective's child list, and propagates the objective and theme aggregates.
// Rejected when the objective already holds the maximum number of key results.
func (r *KeyResultRepository) Create(ctx context.Context, keyResult *entities.KeyResult) error {
	themeID, objectiveID := keyResult.StrategicThemeID, keyResult.ObjectiveID
	objectiveItem, err := r.store.Get(ctx, schema.ObjectiveKey(themeID, objectiveID))
	if err != nil {
		return apperrors.NewStoreError("get objective", err)
	}
	if objectiveItem == nil {
		return apperrors.NewNotFoundError("objective")
	}

	siblings, err := r.store.Query(ctx, schema.KeyResultPartition(themeID, objectiveID), schema.SortPrefix(schema.TagKeyResult))
	if err != nil {
		return apperrors.NewStoreError("count key results", err)
	}
	if len(siblings) >= entities.MaxKeyResultsPerObjective {
		return apperrors.NewCardinalityError(
			fmt.Sprintf("objective already has %d key results", entities.MaxKeyResultsPerObjective))
	}

	keyResult.ID = uuid.NewString()
	keyResult.CreationDateUtc = utils.NowRFC3339()
	keyResult.Version = 1
	if keyResult.Goals == nil {
		keyResult.Goals = []string{}
	}

	item, err := marshalRecord(keyResult, schema.KeyResultKey(themeID, objectiveID, keyResult.ID), schema.TagKeyResult, keyResult.StartDate, keyResult.EndDate)
	if err != nil {
		return err
	}
	if err := r.store.Put(ctx, item); err != nil {
		return apperrors.NewStoreError("put key result", err)
	}

	if err := r.references.AddChild(ctx, schema.ObjectiveKey(themeID, objectiveID), "keyResults", keyResult.ID); err != nil {
		return err
	}
	if err := r.propagator.PropagateFromKeyResult(ctx, themeID, objectiveID); err != nil {
		return err
	}

	r.publish(ctx, events.NewEntityCreated(schema.TagKeyResult, keyResult.ID))
	r.logger.Info("Created key result",
		zap.String("keyResultId", keyResult.ID),
		zap.String("objectiveId", objectiveID),
	)
	return nil
}

// Get returns the key result with the given id under its objective.
func (r *KeyResultRepository) Get(ctx context.Context, themeID, objectiveID, id string) (*entities.KeyResult, error) {
	item, err := r.store.Get(ctx, schema.KeyResultKey(themeID, objectiveID, id))
	if err != nil {
		return nil, apperrors.NewStoreError("get key result", err)
	}
	if item == nil {
		return nil, apperrors.NewNotFoundError("key result")
	}
	return unmarshalRecord[entities.KeyResult](item)
}

// ListByObjective returns the key results under an objective, in key order.
func (r *KeyResultRepository) ListByObjective(ctx context.Context, themeID, objectiveID string) ([]entities.KeyResult, error) {
	items, err := r.store.Query(ctx, schema.KeyResultPartition(themeID, objectiveID), schema.SortPrefix(schema.TagKeyResult))
	if err != nil {
		return nil, apperrors.NewStoreError("list key results", err)
	}
	return unmarshalRecords[entities.KeyResult](items)
}

// List returns every key result across all objectives, ordered by start date.
func (r *KeyResultRepository) List(ctx context.Context) ([]entities.KeyResult, error) {
	items, err := r.store.QueryIndex(ctx, ports.IndexByStartDate, schema.TagKeyResult, nil)
	if err != nil {
		return nil, apperrors.NewStoreError("list key results", err)
	}
	return unmarshalRecords[entities.KeyResult](items)
}

// Update merges the provided fields into the key result. A direct edit of the
// current value propagates up through the objective and theme.
func (r *KeyResultRepository) Update(ctx context.Context, themeID, objectiveID, id string, update KeyResultUpdate) (*entities.KeyResult, error) {
	attrs := ports.Item{}
	setString(attrs, "description", update.Description)
	setDateRange(attrs, update.StartDate, update.EndDate)
	setFloat(attrs, "currentValue", update.CurrentValue)
	setString(attrs, "startDateUtc", update.StartDateUtc)
	setString(attrs, "dueDateUtc", update.DueDateUtc)
	setString(attrs, "finishAtUtc", update.FinishAtUtc)

	if len(attrs) == 0 {
		return r.Get(ctx, themeID, objectiveID, id)
	}

	item, err := mergeWithVersion(ctx, r.store, schema.KeyResultKey(themeID, objectiveID, id), attrs)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperrors.NewNotFoundError("key result")
	}

	if update.CurrentValue != nil {
		if err := r.propagator.PropagateFromKeyResult(ctx, themeID, objectiveID); err != nil {
			return nil, err
		}
	}
	return unmarshalRecord[entities.KeyResult](item)
}

// Delete removes the key result, detaches it from its objective's child list,
// and propagates the objective and theme aggregates over the remainder.
func (r *KeyResultRepository) Delete(ctx context.Context, themeID, objectiveID, id string) error {
	item, err := r.store.Get(ctx, schema.KeyResultKey(themeID, objectiveID, id))
	if err != nil {
		return apperrors.NewStoreError("get key result", err)
	}
	if item == nil {
		return apperrors.NewNotFoundError("key result")
	}

	if err := r.store.Delete(ctx, schema.KeyResultKey(themeID, objectiveID, id)); err != nil {
		return apperrors.NewStoreError("delete key result", err)
	}
	if err := r.references.RemoveChild(ctx, schema.ObjectiveKey(themeID, objectiveID), "keyResults", id); err != nil {
		return err
	}
	if err := r.propagator.PropagateFromKeyResult(ctx, themeID, objectiveID); err != nil {
		return err
	}

	r.publish(ctx, events.NewEntityDeleted(schema.TagKeyResult, id))
	r.logger.Info("Deleted key result",
		zap.String("keyResultId", id),
		zap.String("objectiveId", objectiveID),
	)
	return nil
}

func (r *KeyResultRepository) publish(ctx context.Context, event events.DomainEvent) {
	if err := r.publisher.Publish(ctx, event); err != nil {
		r.logger.Warn("Failed to publish domain event",
			zap.String("eventType", event.GetEventType()),
			zap.Error(err),
		)
	}
}
