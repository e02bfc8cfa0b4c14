package services

import (
	"context"

	"okr-backend/application/ports"
	apperrors "okr-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"go.uber.org/zap"
)

// References maintains the child-id list attribute on parent records. Both
// operations are idempotent: adding a present id or removing an absent one
// leaves the stored set unchanged, and the list is de-duplicated on every
// write so a retried add cannot grow it.
type References struct {
	store  ports.Store
	logger *zap.Logger
}

// NewReferences creates a new reference maintainer
func NewReferences(store ports.Store, logger *zap.Logger) *References {
	return &References{store: store, logger: logger}
}

// AddChild appends childID to the parent's listAttr. A missing parent is a
// no-op; the caller may be retrying after a partial failure.
func (r *References) AddChild(ctx context.Context, parentKey ports.Key, listAttr, childID string) error {
	return r.rewrite(ctx, parentKey, listAttr, func(ids []string) []string {
		return append(ids, childID)
	})
}

// RemoveChild filters childID out of the parent's listAttr. A missing parent
// is a no-op.
func (r *References) RemoveChild(ctx context.Context, parentKey ports.Key, listAttr, childID string) error {
	return r.rewrite(ctx, parentKey, listAttr, func(ids []string) []string {
		kept := make([]string, 0, len(ids))
		for _, id := range ids {
			if id != childID {
				kept = append(kept, id)
			}
		}
		return kept
	})
}

func (r *References) rewrite(ctx context.Context, parentKey ports.Key, listAttr string, apply func([]string) []string) error {
	item, err := r.store.Get(ctx, parentKey)
	if err != nil {
		return apperrors.NewStoreError("get parent", err)
	}
	if item == nil {
		r.logger.Warn("Parent record absent during reference maintenance",
			zap.String("pk", parentKey.PK),
			zap.String("sk", parentKey.SK),
			zap.String("attribute", listAttr),
		)
		return nil
	}

	var ids []string
	if raw, ok := item[listAttr]; ok {
		if err := attributevalue.Unmarshal(raw, &ids); err != nil {
			return apperrors.NewStoreError("decode child list", err)
		}
	}

	updated := dedupe(apply(ids))
	if equalIDs(ids, updated) {
		return nil
	}

	value, err := attributevalue.Marshal(updated)
	if err != nil {
		return apperrors.NewStoreError("encode child list", err)
	}
	if _, err := r.store.Update(ctx, parentKey, ports.Item{listAttr: value}); err != nil {
		return apperrors.NewStoreError("update parent", err)
	}
	return nil
}

// dedupe preserves first-seen order
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
