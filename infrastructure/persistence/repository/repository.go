// Package repository implements the per-level entity repositories over the
// store contract. Keys come from the schema package; linkage and aggregate
// maintenance are delegated to the application services.
package repository

import (
	"context"
	"errors"
	"time"

	"okr-backend/application/ports"
	"okr-backend/infrastructure/persistence/schema"
	apperrors "okr-backend/pkg/errors"
	"okr-backend/pkg/utils"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// mergeAttempts bounds the read-merge-write retry on version conflicts.
const mergeAttempts = 3

// marshalRecord converts an entity into a stored item, stamping the primary
// key and both secondary-index projections.
func marshalRecord(entity interface{}, key ports.Key, tag, startDate, endDate string) (ports.Item, error) {
	item, err := attributevalue.MarshalMap(entity)
	if err != nil {
		return nil, apperrors.NewStoreError("encode record", err)
	}
	item[schema.AttrPK] = stringValue(key.PK)
	item[schema.AttrSK] = stringValue(key.SK)
	item[schema.AttrGSI1PK] = stringValue(tag)
	item[schema.AttrGSI1SK] = stringValue(startDate)
	item[schema.AttrGSI2PK] = stringValue(tag)
	item[schema.AttrGSI2SK] = stringValue(endDate)
	return item, nil
}

func unmarshalRecord[T any](item ports.Item) (*T, error) {
	var entity T
	if err := attributevalue.UnmarshalMap(item, &entity); err != nil {
		return nil, apperrors.NewStoreError("decode record", err)
	}
	return &entity, nil
}

func unmarshalRecords[T any](items []ports.Item) ([]T, error) {
	entities := make([]T, 0, len(items))
	for _, item := range items {
		entity, err := unmarshalRecord[T](item)
		if err != nil {
			return nil, err
		}
		entities = append(entities, *entity)
	}
	return entities, nil
}

// mergeWithVersion merges attrs into the record at key, bumping its version
// under an optimistic condition. Returns nil when the record is absent and a
// conflict error when retries are exhausted.
func mergeWithVersion(ctx context.Context, store ports.Store, key ports.Key, attrs ports.Item) (ports.Item, error) {
	for attempt := 0; attempt < mergeAttempts; attempt++ {
		item, err := store.Get(ctx, key)
		if err != nil {
			return nil, apperrors.NewStoreError("get record", err)
		}
		if item == nil {
			return nil, nil
		}
		var record struct {
			Version int `dynamodbav:"version"`
		}
		if err := attributevalue.UnmarshalMap(item, &record); err != nil {
			return nil, apperrors.NewStoreError("decode record version", err)
		}

		write := make(ports.Item, len(attrs)+1)
		for name, value := range attrs {
			write[name] = value
		}
		write["version"] = numberValue(record.Version + 1)

		updated, err := store.UpdateIfVersion(ctx, key, write, record.Version)
		if errors.Is(err, ports.ErrConditionFailed) {
			continue
		}
		if err != nil {
			return nil, apperrors.NewStoreError("update record", err)
		}
		return updated, nil
	}
	return nil, apperrors.NewConflictError("record was modified concurrently, retries exhausted")
}

func stringValue(v string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: v}
}

func numberValue(v interface{}) types.AttributeValue {
	av, err := attributevalue.Marshal(v)
	if err != nil {
		return &types.AttributeValueMemberNULL{Value: true}
	}
	return av
}

// Partial-update helpers: a nil pointer means "leave the field unchanged".

func setString(attrs ports.Item, name string, v *string) {
	if v != nil {
		attrs[name] = stringValue(*v)
	}
}

func setFloat(attrs ports.Item, name string, v *float64) {
	if v != nil {
		attrs[name] = numberValue(*v)
	}
}

func setBool(attrs ports.Item, name string, v *bool) {
	if v != nil {
		attrs[name] = &types.AttributeValueMemberBOOL{Value: *v}
	}
}

// setDateRange keeps the secondary-index sort keys in step with the period
// bound attributes they project.
func setDateRange(attrs ports.Item, startDate, endDate *string) {
	if startDate != nil {
		attrs["startDate"] = stringValue(*startDate)
		attrs[schema.AttrGSI1SK] = stringValue(*startDate)
	}
	if endDate != nil {
		attrs["endDate"] = stringValue(*endDate)
		attrs[schema.AttrGSI2SK] = stringValue(*endDate)
	}
}

// parseDate accepts the date-only and RFC3339 forms used by period bounds.
func parseDate(s string) (time.Time, bool) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	if t, err := utils.ParseRFC3339(s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
