package repository

import (
	"context"

	"okr-backend/application/ports"
	"okr-backend/domain/core/entities"
	"okr-backend/domain/events"
	"okr-backend/infrastructure/persistence/schema"
	apperrors "okr-backend/pkg/errors"
	"okr-backend/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ThemeRepository manages strategic theme records. Themes are the hierarchy
// root: no parent list to maintain and no upward propagation.
type ThemeRepository struct {
	store     ports.Store
	publisher ports.EventPublisher
	logger    *zap.Logger
}

// NewThemeRepository creates a new strategic theme repository
func NewThemeRepository(store ports.Store, publisher ports.EventPublisher, logger *zap.Logger) *ThemeRepository {
	return &ThemeRepository{store: store, publisher: publisher, logger: logger}
}

// ThemeUpdate carries the editable theme fields; nil means unchanged.
type ThemeUpdate struct {
	Name         *string
	Description  *string
	StartDate    *string
	EndDate      *string
	CurrentValue *float64
	StartDateUtc *string
	DueDateUtc   *string
	FinishAtUtc  *string
}

// Create assigns identity and bookkeeping fields and writes the theme.
func (r *ThemeRepository) Create(ctx context.Context, theme *entities.StrategicTheme) error {
	theme.ID = uuid.NewString()
	theme.CreationDateUtc = utils.NowRFC3339()
	theme.Version = 1
	if theme.Objectives == nil {
		theme.Objectives = []string{}
	}
	if theme.Quarter == "" {
		if start, ok := parseDate(theme.StartDate); ok {
			theme.Quarter = utils.QuarterOf(start)
		}
	}

	item, err := marshalRecord(theme, schema.ThemeKey(theme.ID), schema.TagTheme, theme.StartDate, theme.EndDate)
	if err != nil {
		return err
	}
	if err := r.store.Put(ctx, item); err != nil {
		return apperrors.NewStoreError("put strategic theme", err)
	}

	r.publish(ctx, events.NewEntityCreated(schema.TagTheme, theme.ID))
	r.logger.Info("Created strategic theme", zap.String("themeId", theme.ID))
	return nil
}

// Get returns the theme with the given id.
func (r *ThemeRepository) Get(ctx context.Context, id string) (*entities.StrategicTheme, error) {
	item, err := r.store.Get(ctx, schema.ThemeKey(id))
	if err != nil {
		return nil, apperrors.NewStoreError("get strategic theme", err)
	}
	if item == nil {
		return nil, apperrors.NewNotFoundError("strategic theme")
	}
	return unmarshalRecord[entities.StrategicTheme](item)
}

// List returns every theme, ordered by start date.
func (r *ThemeRepository) List(ctx context.Context) ([]entities.StrategicTheme, error) {
	items, err := r.store.QueryIndex(ctx, ports.IndexByStartDate, schema.TagTheme, nil)
	if err != nil {
		return nil, apperrors.NewStoreError("list strategic themes", err)
	}
	return unmarshalRecords[entities.StrategicTheme](items)
}

// Update merges the provided fields into the theme.
func (r *ThemeRepository) Update(ctx context.Context, id string, update ThemeUpdate) (*entities.StrategicTheme, error) {
	attrs := ports.Item{}
	setString(attrs, "name", update.Name)
	setString(attrs, "description", update.Description)
	setDateRange(attrs, update.StartDate, update.EndDate)
	setFloat(attrs, "currentValue", update.CurrentValue)
	setString(attrs, "startDateUtc", update.StartDateUtc)
	setString(attrs, "dueDateUtc", update.DueDateUtc)
	setString(attrs, "finishAtUtc", update.FinishAtUtc)
	if update.StartDate != nil {
		if start, ok := parseDate(*update.StartDate); ok {
			attrs["quarter"] = stringValue(utils.QuarterOf(start))
		}
	}

	if len(attrs) == 0 {
		return r.Get(ctx, id)
	}

	item, err := mergeWithVersion(ctx, r.store, schema.ThemeKey(id), attrs)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperrors.NewNotFoundError("strategic theme")
	}
	return unmarshalRecord[entities.StrategicTheme](item)
}

// Delete removes the theme record. Child objectives are left in place; the
// hierarchy below a deleted theme is unreachable through listing but remains
// addressable by full key.
func (r *ThemeRepository) Delete(ctx context.Context, id string) error {
	item, err := r.store.Get(ctx, schema.ThemeKey(id))
	if err != nil {
		return apperrors.NewStoreError("get strategic theme", err)
	}
	if item == nil {
		return apperrors.NewNotFoundError("strategic theme")
	}
	if err := r.store.Delete(ctx, schema.ThemeKey(id)); err != nil {
		return apperrors.NewStoreError("delete strategic theme", err)
	}

	r.publish(ctx, events.NewEntityDeleted(schema.TagTheme, id))
	r.logger.Info("Deleted strategic theme", zap.String("themeId", id))
	return nil
}

func (r *ThemeRepository) publish(ctx context.Context, event events.DomainEvent) {
	if err := r.publisher.Publish(ctx, event); err != nil {
		r.logger.Warn("Failed to publish domain event",
			zap.String("eventType", event.GetEventType()),
			zap.Error(err),
		)
	}
}
