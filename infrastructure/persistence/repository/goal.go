package repository

import (
	"context"

	"okr-backend/application/ports"
	"okr-backend/application/services"
	"okr-backend/domain/core/entities"
	"okr-backend/domain/events"
	"okr-backend/infrastructure/persistence/schema"
	apperrors "okr-backend/pkg/errors"
	"okr-backend/pkg/utils"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxParentDepth bounds the ancestor walk of the cycle check.
const maxParentDepth = 64

// GoalRepository manages goal records under a key result, including the
// parent/child links that form goal sub-trees.
type GoalRepository struct {
	store      ports.Store
	references *services.References
	propagator *services.Propagator
	finder     *Finder
	publisher  ports.EventPublisher
	logger     *zap.Logger
}

// NewGoalRepository creates a new goal repository
func NewGoalRepository(store ports.Store, references *services.References, propagator *services.Propagator, finder *Finder, publisher ports.EventPublisher, logger *zap.Logger) *GoalRepository {
	return &GoalRepository{
		store:      store,
		references: references,
		propagator: propagator,
		finder:     finder,
		publisher:  publisher,
		logger:     logger,
	}
}

// GoalUpdate carries the editable goal fields; nil means unchanged. A
// ParentGoalID pointing at the empty string detaches the goal from its
// parent.
type GoalUpdate struct {
	Description  *string
	StartDate    *string
	EndDate      *string
	CurrentValue *float64
	TargetValue  *float64
	UpperTarget  *float64
	LowerTarget  *float64
	IsAutomatic  *bool
	AssignedTo   *string
	AssigneeType *string
	ParentGoalID *string
	StartDateUtc *string
	DueDateUtc   *string
	FinishAtUtc  *string
}

func scopeOf(goal *entities.Goal) services.GoalScope {
	return services.GoalScope{
		ThemeID:      goal.StrategicThemeID,
		ObjectiveID:  goal.ObjectiveID,
		KeyResultID:  goal.KeyResultID,
		ParentGoalID: goal.ParentGoalID,
	}
}

// Create writes a new goal under its key result, registers it in the key
// result's child list and, when parented, in the parent goal's child list,
// then propagates aggregates up the chain.
func (r *GoalRepository) Create(ctx context.Context, goal *entities.Goal) error {
	themeID, objectiveID, keyResultID := goal.StrategicThemeID, goal.ObjectiveID, goal.KeyResultID
	keyResultItem, err := r.store.Get(ctx, schema.KeyResultKey(themeID, objectiveID, keyResultID))
	if err != nil {
		return apperrors.NewStoreError("get key result", err)
	}
	if keyResultItem == nil {
		return apperrors.NewNotFoundError("key result")
	}
	if goal.ParentGoalID != "" {
		parentItem, err := r.store.Get(ctx, schema.GoalKey(themeID, objectiveID, keyResultID, goal.ParentGoalID))
		if err != nil {
			return apperrors.NewStoreError("get parent goal", err)
		}
		if parentItem == nil {
			return apperrors.NewNotFoundError("parent goal")
		}
	}

	goal.ID = uuid.NewString()
	goal.CreationDateUtc = utils.NowRFC3339()
	goal.Version = 1
	if goal.ChildGoals == nil {
		goal.ChildGoals = []string{}
	}

	item, err := marshalRecord(goal, schema.GoalKey(themeID, objectiveID, keyResultID, goal.ID), schema.TagGoal, goal.StartDate, goal.EndDate)
	if err != nil {
		return err
	}
	if err := r.store.Put(ctx, item); err != nil {
		return apperrors.NewStoreError("put goal", err)
	}

	if err := r.references.AddChild(ctx, schema.KeyResultKey(themeID, objectiveID, keyResultID), "goals", goal.ID); err != nil {
		return err
	}
	if goal.ParentGoalID != "" {
		if err := r.references.AddChild(ctx, schema.GoalKey(themeID, objectiveID, keyResultID, goal.ParentGoalID), "childGoals", goal.ID); err != nil {
			return err
		}
	}
	if err := r.propagator.PropagateFromGoal(ctx, scopeOf(goal)); err != nil {
		return err
	}

	r.publish(ctx, events.NewEntityCreated(schema.TagGoal, goal.ID))
	r.logger.Info("Created goal",
		zap.String("goalId", goal.ID),
		zap.String("keyResultId", keyResultID),
	)
	return nil
}

// Get returns the goal with the given id under its key result.
func (r *GoalRepository) Get(ctx context.Context, themeID, objectiveID, keyResultID, id string) (*entities.Goal, error) {
	item, err := r.store.Get(ctx, schema.GoalKey(themeID, objectiveID, keyResultID, id))
	if err != nil {
		return nil, apperrors.NewStoreError("get goal", err)
	}
	if item == nil {
		return nil, apperrors.NewNotFoundError("goal")
	}
	return unmarshalRecord[entities.Goal](item)
}

// ListByKeyResult returns every goal under a key result, parented or not, in
// key order.
func (r *GoalRepository) ListByKeyResult(ctx context.Context, themeID, objectiveID, keyResultID string) ([]entities.Goal, error) {
	items, err := r.store.Query(ctx, schema.GoalPartition(themeID, objectiveID, keyResultID), schema.SortPrefix(schema.TagGoal))
	if err != nil {
		return nil, apperrors.NewStoreError("list goals", err)
	}
	return unmarshalRecords[entities.Goal](items)
}

// List returns every goal across all key results, ordered by start date.
func (r *GoalRepository) List(ctx context.Context) ([]entities.Goal, error) {
	items, err := r.store.QueryIndex(ctx, ports.IndexByStartDate, schema.TagGoal, nil)
	if err != nil {
		return nil, apperrors.NewStoreError("list goals", err)
	}
	return unmarshalRecords[entities.Goal](items)
}

// Update merges the provided fields into the goal. Re-parenting moves the
// goal between child lists and recomputes both the old and new ancestor
// chains; a current-value edit recomputes the goal's own chain.
func (r *GoalRepository) Update(ctx context.Context, themeID, objectiveID, keyResultID, id string, update GoalUpdate) (*entities.Goal, error) {
	before, err := r.Get(ctx, themeID, objectiveID, keyResultID, id)
	if err != nil {
		return nil, err
	}

	reparented := update.ParentGoalID != nil && *update.ParentGoalID != before.ParentGoalID
	if reparented && *update.ParentGoalID != "" {
		if err := r.ensureNoCycle(ctx, themeID, objectiveID, keyResultID, id, *update.ParentGoalID); err != nil {
			return nil, err
		}
	}

	attrs := ports.Item{}
	setString(attrs, "description", update.Description)
	setDateRange(attrs, update.StartDate, update.EndDate)
	setFloat(attrs, "currentValue", update.CurrentValue)
	setFloat(attrs, "targetValue", update.TargetValue)
	setFloat(attrs, "upperTarget", update.UpperTarget)
	setFloat(attrs, "lowerTarget", update.LowerTarget)
	setBool(attrs, "isAutomatic", update.IsAutomatic)
	setString(attrs, "assignedTo", update.AssignedTo)
	setString(attrs, "assigneeType", update.AssigneeType)
	setString(attrs, "parentGoalId", update.ParentGoalID)
	setString(attrs, "startDateUtc", update.StartDateUtc)
	setString(attrs, "dueDateUtc", update.DueDateUtc)
	setString(attrs, "finishAtUtc", update.FinishAtUtc)

	if len(attrs) == 0 {
		return before, nil
	}

	item, err := mergeWithVersion(ctx, r.store, schema.GoalKey(themeID, objectiveID, keyResultID, id), attrs)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperrors.NewNotFoundError("goal")
	}
	after, err := unmarshalRecord[entities.Goal](item)
	if err != nil {
		return nil, err
	}

	if reparented {
		if before.ParentGoalID != "" {
			if err := r.references.RemoveChild(ctx, schema.GoalKey(themeID, objectiveID, keyResultID, before.ParentGoalID), "childGoals", id); err != nil {
				return nil, err
			}
		}
		if after.ParentGoalID != "" {
			if err := r.references.AddChild(ctx, schema.GoalKey(themeID, objectiveID, keyResultID, after.ParentGoalID), "childGoals", id); err != nil {
				return nil, err
			}
		}
	}

	if update.CurrentValue != nil || reparented {
		// The old chain no longer includes this goal's value; recompute it
		// before the chain the goal now hangs from.
		if reparented && before.ParentGoalID != "" {
			oldScope := scopeOf(before)
			if err := r.propagator.PropagateFromGoal(ctx, oldScope); err != nil {
				return nil, err
			}
		}
		if err := r.propagator.PropagateFromGoal(ctx, scopeOf(after)); err != nil {
			return nil, err
		}
	}
	return after, nil
}

// Delete removes the goal, detaches it from its key result and parent, clears
// the parent reference on each of its children, and propagates aggregates
// over what remains. Children survive as roots of their own sub-trees.
func (r *GoalRepository) Delete(ctx context.Context, themeID, objectiveID, keyResultID, id string) error {
	goal, err := r.Get(ctx, themeID, objectiveID, keyResultID, id)
	if err != nil {
		return err
	}

	if err := r.store.Delete(ctx, schema.GoalKey(themeID, objectiveID, keyResultID, id)); err != nil {
		return apperrors.NewStoreError("delete goal", err)
	}
	if err := r.references.RemoveChild(ctx, schema.KeyResultKey(themeID, objectiveID, keyResultID), "goals", id); err != nil {
		return err
	}
	if goal.ParentGoalID != "" {
		if err := r.references.RemoveChild(ctx, schema.GoalKey(themeID, objectiveID, keyResultID, goal.ParentGoalID), "childGoals", id); err != nil {
			return err
		}
	}

	for _, childID := range goal.ChildGoals {
		if err := r.orphanChild(ctx, childID); err != nil {
			return err
		}
	}

	if err := r.propagator.PropagateFromGoal(ctx, scopeOf(goal)); err != nil {
		return err
	}

	r.publish(ctx, events.NewEntityDeleted(schema.TagGoal, id))
	r.logger.Info("Deleted goal",
		zap.String("goalId", id),
		zap.String("keyResultId", keyResultID),
	)
	return nil
}

// orphanChild clears a child's parent reference. The child is resolved by id
// alone; a child that has since been deleted is skipped.
func (r *GoalRepository) orphanChild(ctx context.Context, childID string) error {
	child, err := r.finder.FindGoalByID(ctx, childID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil
		}
		return err
	}
	key := schema.GoalKey(child.StrategicThemeID, child.ObjectiveID, child.KeyResultID, child.ID)
	_, err = mergeWithVersion(ctx, r.store, key, ports.Item{"parentGoalId": stringValue("")})
	return err
}

// ensureNoCycle rejects a re-parent that would make the goal its own
// ancestor. Walks the candidate parent's ancestor chain; the walk is bounded
// so a pre-existing corrupt chain cannot spin it.
func (r *GoalRepository) ensureNoCycle(ctx context.Context, themeID, objectiveID, keyResultID, goalID, parentID string) error {
	current := parentID
	for depth := 0; current != ""; depth++ {
		if depth >= maxParentDepth {
			return apperrors.NewValidationError("goal parent chain exceeds maximum depth")
		}
		if current == goalID {
			return apperrors.NewValidationError("goal cannot be its own ancestor")
		}
		item, err := r.store.Get(ctx, schema.GoalKey(themeID, objectiveID, keyResultID, current))
		if err != nil {
			return apperrors.NewStoreError("get ancestor goal", err)
		}
		if item == nil {
			return apperrors.NewNotFoundError("parent goal")
		}
		var ancestor entities.Goal
		if err := attributevalue.UnmarshalMap(item, &ancestor); err != nil {
			return apperrors.NewStoreError("decode ancestor goal", err)
		}
		current = ancestor.ParentGoalID
	}
	return nil
}

func (r *GoalRepository) publish(ctx context.Context, event events.DomainEvent) {
	if err := r.publisher.Publish(ctx, event); err != nil {
		r.logger.Warn("Failed to publish domain event",
			zap.String("eventType", event.GetEventType()),
			zap.Error(err),
		)
	}
}
