package ports

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ErrConditionFailed is returned by UpdateIfVersion when the stored version
// no longer matches the version the caller read. The caller re-reads and
// retries; it never surfaces past the repository layer.
var ErrConditionFailed = errors.New("conditional check failed")

// Index names the two secondary projections over the table.
type Index string

const (
	// IndexByStartDate is keyed by entity-type tag, sorted by startDate.
	IndexByStartDate Index = "GSI1"
	// IndexByEndDate is keyed by entity-type tag, sorted by endDate.
	IndexByEndDate Index = "GSI2"
)

// Key is the two-part primary key of a record.
type Key struct {
	PK string
	SK string
}

// Item is a stored record in attribute-value form.
type Item = map[string]types.AttributeValue

// Store is the contract over the single logical table. All operations are
// single-item or single-partition; no multi-key atomicity is provided.
// Absence is reported as a nil Item, not an error.
type Store interface {
	// Get returns the record at key, or nil if absent.
	Get(ctx context.Context, key Key) (Item, error)

	// Put unconditionally upserts a full record.
	Put(ctx context.Context, item Item) error

	// Update merges the given attributes into an existing record and returns
	// the new record, or nil if no record exists at key. Attributes absent
	// from attrs are left untouched.
	Update(ctx context.Context, key Key, attrs Item) (Item, error)

	// UpdateIfVersion behaves like Update but only writes when the stored
	// record's version attribute equals expected. Returns ErrConditionFailed
	// on a version mismatch and nil Item when the record is absent.
	UpdateIfVersion(ctx context.Context, key Key, attrs Item, expected int) (Item, error)

	// Delete removes the record at key; deleting an absent record is a no-op.
	Delete(ctx context.Context, key Key) error

	// Query returns the records in the pk partition whose sort key begins
	// with skPrefix, in sort-key order.
	Query(ctx context.Context, pk, skPrefix string) ([]Item, error)

	// QueryIndex returns the records in an index partition, in index
	// sort-key order. A non-nil filter restricts results to records whose
	// string attributes equal the filter values.
	QueryIndex(ctx context.Context, index Index, pk string, filter map[string]string) ([]Item, error)
}
