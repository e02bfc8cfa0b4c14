package memory

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"okr-backend/application/ports"
	"okr-backend/infrastructure/persistence/schema"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Store provides an in-memory implementation of ports.Store. It mirrors the
// DynamoDB adapter's semantics (absence as nil, attribute merge on update,
// sort-key ordered queries) and backs the test suite.
type Store struct {
	mu    sync.RWMutex
	items map[string]ports.Item
}

// NewStore creates a new in-memory store
func NewStore() *Store {
	return &Store{items: make(map[string]ports.Item)}
}

func storageKey(key ports.Key) string {
	return key.PK + "\x00" + key.SK
}

func clone(item ports.Item) ports.Item {
	if item == nil {
		return nil
	}
	out := make(ports.Item, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}

func stringAttr(item ports.Item, name string) (string, bool) {
	if av, ok := item[name].(*types.AttributeValueMemberS); ok {
		return av.Value, true
	}
	return "", false
}

// Get returns the record at key, or nil if absent
func (s *Store) Get(ctx context.Context, key ports.Key) (ports.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.items[storageKey(key)]
	if !exists {
		return nil, nil
	}
	return clone(item), nil
}

// Put unconditionally upserts a full record
func (s *Store) Put(ctx context.Context, item ports.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pk, _ := stringAttr(item, schema.AttrPK)
	sk, _ := stringAttr(item, schema.AttrSK)
	s.items[storageKey(ports.Key{PK: pk, SK: sk})] = clone(item)
	return nil
}

// Update merges attrs into an existing record; nil if the record is absent
func (s *Store) Update(ctx context.Context, key ports.Key, attrs ports.Item) (ports.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.merge(key, attrs)
}

// UpdateIfVersion merges attrs only when the stored version matches expected
func (s *Store) UpdateIfVersion(ctx context.Context, key ports.Key, attrs ports.Item, expected int) (ports.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.items[storageKey(key)]
	if !exists {
		return nil, nil
	}
	if version, ok := existing["version"].(*types.AttributeValueMemberN); !ok || version.Value != strconv.Itoa(expected) {
		return nil, ports.ErrConditionFailed
	}
	return s.merge(key, attrs)
}

func (s *Store) merge(key ports.Key, attrs ports.Item) (ports.Item, error) {
	existing, exists := s.items[storageKey(key)]
	if !exists {
		return nil, nil
	}
	updated := clone(existing)
	for name, value := range attrs {
		updated[name] = value
	}
	s.items[storageKey(key)] = updated
	return clone(updated), nil
}

// Delete removes the record at key; deleting an absent record is a no-op
func (s *Store) Delete(ctx context.Context, key ports.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, storageKey(key))
	return nil
}

// Query returns the records in a partition whose sort key begins with
// skPrefix, in sort-key order.
func (s *Store) Query(ctx context.Context, pk, skPrefix string) ([]ports.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []ports.Item
	for _, item := range s.items {
		itemPK, _ := stringAttr(item, schema.AttrPK)
		itemSK, _ := stringAttr(item, schema.AttrSK)
		if itemPK == pk && strings.HasPrefix(itemSK, skPrefix) {
			matches = append(matches, clone(item))
		}
	}
	sortByAttr(matches, schema.AttrSK)
	return matches, nil
}

// QueryIndex returns the records in an index partition, optionally filtered
// by string-attribute equality, in index sort-key order.
func (s *Store) QueryIndex(ctx context.Context, index ports.Index, pk string, filter map[string]string) ([]ports.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pkAttr, skAttr := schema.AttrGSI1PK, schema.AttrGSI1SK
	if index == ports.IndexByEndDate {
		pkAttr, skAttr = schema.AttrGSI2PK, schema.AttrGSI2SK
	}

	var matches []ports.Item
	for _, item := range s.items {
		itemPK, _ := stringAttr(item, pkAttr)
		if itemPK != pk {
			continue
		}
		if !matchesFilter(item, filter) {
			continue
		}
		matches = append(matches, clone(item))
	}
	sortByAttr(matches, skAttr)
	return matches, nil
}

func matchesFilter(item ports.Item, filter map[string]string) bool {
	for name, want := range filter {
		got, ok := stringAttr(item, name)
		if !ok || got != want {
			return false
		}
	}
	return true
}

func sortByAttr(items []ports.Item, attr string) {
	sort.Slice(items, func(i, j int) bool {
		a, _ := stringAttr(items[i], attr)
		b, _ := stringAttr(items[j], attr)
		return a < b
	})
}
