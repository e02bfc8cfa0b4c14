package memory

import (
	"context"
	"testing"

	"okr-backend/application/ports"
	"okr-backend/infrastructure/persistence/schema"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(pk, sk string, extra ports.Item) ports.Item {
	out := ports.Item{
		schema.AttrPK: &types.AttributeValueMemberS{Value: pk},
		schema.AttrSK: &types.AttributeValueMemberS{Value: sk},
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func TestGetAbsentReturnsNil(t *testing.T) {
	store := NewStore()
	got, err := store.Get(context.Background(), ports.Key{PK: "a", SK: "b"})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpdateAbsentReturnsNil(t *testing.T) {
	store := NewStore()
	got, err := store.Update(context.Background(), ports.Key{PK: "a", SK: "b"}, ports.Item{
		"name": &types.AttributeValueMemberS{Value: "x"},
	})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpdateMergesAttributes(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, item("p", "s", ports.Item{
		"name":  &types.AttributeValueMemberS{Value: "before"},
		"other": &types.AttributeValueMemberS{Value: "kept"},
	})))

	got, err := store.Update(ctx, ports.Key{PK: "p", SK: "s"}, ports.Item{
		"name": &types.AttributeValueMemberS{Value: "after"},
	})
	require.NoError(t, err)
	assert.Equal(t, "after", got["name"].(*types.AttributeValueMemberS).Value)
	assert.Equal(t, "kept", got["other"].(*types.AttributeValueMemberS).Value)
}

func TestUpdateIfVersionMismatchFails(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, item("p", "s", ports.Item{
		"version": &types.AttributeValueMemberN{Value: "2"},
	})))

	_, err := store.UpdateIfVersion(ctx, ports.Key{PK: "p", SK: "s"}, ports.Item{
		"version": &types.AttributeValueMemberN{Value: "2"},
	}, 1)
	assert.ErrorIs(t, err, ports.ErrConditionFailed)

	got, err := store.UpdateIfVersion(ctx, ports.Key{PK: "p", SK: "s"}, ports.Item{
		"version": &types.AttributeValueMemberN{Value: "3"},
	}, 2)
	require.NoError(t, err)
	assert.Equal(t, "3", got["version"].(*types.AttributeValueMemberN).Value)
}

func TestQueryFiltersByPrefixAndSorts(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, item("p", "Goal#b", nil)))
	require.NoError(t, store.Put(ctx, item("p", "Goal#a", nil)))
	require.NoError(t, store.Put(ctx, item("p", "KeyResult#x", nil)))
	require.NoError(t, store.Put(ctx, item("q", "Goal#c", nil)))

	got, err := store.Query(ctx, "p", "Goal#")
	require.NoError(t, err)
	require.Len(t, got, 2)
	sk0, _ := stringAttr(got[0], schema.AttrSK)
	sk1, _ := stringAttr(got[1], schema.AttrSK)
	assert.Equal(t, "Goal#a", sk0)
	assert.Equal(t, "Goal#b", sk1)
}

func TestQueryIndexAppliesFilter(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, item("p", "Goal#a", ports.Item{
		schema.AttrGSI1PK: &types.AttributeValueMemberS{Value: "Goal"},
		schema.AttrGSI1SK: &types.AttributeValueMemberS{Value: "2026-01-01"},
		"id":              &types.AttributeValueMemberS{Value: "a"},
	})))
	require.NoError(t, store.Put(ctx, item("p", "Goal#b", ports.Item{
		schema.AttrGSI1PK: &types.AttributeValueMemberS{Value: "Goal"},
		schema.AttrGSI1SK: &types.AttributeValueMemberS{Value: "2026-01-02"},
		"id":              &types.AttributeValueMemberS{Value: "b"},
	})))

	got, err := store.QueryIndex(ctx, ports.IndexByStartDate, "Goal", map[string]string{"id": "b"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	id, _ := stringAttr(got[0], "id")
	assert.Equal(t, "b", id)
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	key := ports.Key{PK: "p", SK: "s"}
	require.NoError(t, store.Put(ctx, item("p", "s", nil)))

	require.NoError(t, store.Delete(ctx, key))
	require.NoError(t, store.Delete(ctx, key))

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, got)
}
