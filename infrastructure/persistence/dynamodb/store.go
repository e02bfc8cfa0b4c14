package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"okr-backend/application/ports"
	"okr-backend/infrastructure/persistence/schema"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// Store implements the ports.Store contract against a single DynamoDB table
// with two global secondary indexes.
type Store struct {
	client     *dynamodb.Client
	tableName  string
	indexNames map[ports.Index]string
	logger     *zap.Logger
}

// NewStore creates a new DynamoDB-backed store
func NewStore(client *dynamodb.Client, tableName, gsi1Name, gsi2Name string, logger *zap.Logger) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		indexNames: map[ports.Index]string{
			ports.IndexByStartDate: gsi1Name,
			ports.IndexByEndDate:   gsi2Name,
		},
		logger: logger,
	}
}

// Get returns the record at key, or nil if absent
func (s *Store) Get(ctx context.Context, key ports.Key) (ports.Item, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       primaryKey(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	if out.Item == nil {
		return nil, nil
	}
	return out.Item, nil
}

// Put unconditionally upserts a full record
func (s *Store) Put(ctx context.Context, item ports.Item) error {
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("failed to put item: %w", err)
	}
	return nil
}

// Update merges attrs into the record at key and returns the new record, or
// nil if the record is absent.
func (s *Store) Update(ctx context.Context, key ports.Key, attrs ports.Item) (ports.Item, error) {
	return s.update(ctx, key, attrs, nil)
}

// UpdateIfVersion merges attrs only when the stored version matches expected.
func (s *Store) UpdateIfVersion(ctx context.Context, key ports.Key, attrs ports.Item, expected int) (ports.Item, error) {
	return s.update(ctx, key, attrs, &expected)
}

func (s *Store) update(ctx context.Context, key ports.Key, attrs ports.Item, expectedVersion *int) (ports.Item, error) {
	// Deterministic placeholder order keeps the expression stable for
	// logging and tests.
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	exprNames := make(map[string]string, len(attrs)+1)
	exprValues := make(ports.Item, len(attrs)+1)
	clauses := make([]string, 0, len(attrs))
	for i, name := range names {
		nph := fmt.Sprintf("#a%d", i)
		vph := fmt.Sprintf(":v%d", i)
		exprNames[nph] = name
		exprValues[vph] = attrs[name]
		clauses = append(clauses, fmt.Sprintf("%s = %s", nph, vph))
	}

	condition := fmt.Sprintf("attribute_exists(%s)", schema.AttrPK)
	if expectedVersion != nil {
		exprNames["#version"] = "version"
		exprValues[":expectedVersion"] = &types.AttributeValueMemberN{Value: strconv.Itoa(*expectedVersion)}
		condition += " AND #version = :expectedVersion"
	}

	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.tableName),
		Key:                       primaryKey(key),
		UpdateExpression:          aws.String("SET " + strings.Join(clauses, ", ")),
		ConditionExpression:       aws.String(condition),
		ExpressionAttributeNames:  exprNames,
		ExpressionAttributeValues: exprValues,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			if expectedVersion == nil {
				return nil, nil
			}
			// Distinguish a vanished record from a version mismatch.
			existing, getErr := s.Get(ctx, key)
			if getErr != nil {
				return nil, getErr
			}
			if existing == nil {
				return nil, nil
			}
			return nil, ports.ErrConditionFailed
		}
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	return out.Attributes, nil
}

// Delete removes the record at key
func (s *Store) Delete(ctx context.Context, key ports.Key) error {
	if _, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       primaryKey(key),
	}); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}

// Query returns the records in a partition whose sort key begins with skPrefix
func (s *Store) Query(ctx context.Context, pk, skPrefix string) ([]ports.Item, error) {
	keyCond := expression.KeyAnd(
		expression.Key(schema.AttrPK).Equal(expression.Value(pk)),
		expression.Key(schema.AttrSK).BeginsWith(skPrefix),
	)
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query expression: %w", err)
	}

	return s.queryAll(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(s.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
}

// QueryIndex returns the records in an index partition, optionally filtered
// by attribute equality.
func (s *Store) QueryIndex(ctx context.Context, index ports.Index, pk string, filter map[string]string) ([]ports.Item, error) {
	indexName, ok := s.indexNames[index]
	if !ok {
		return nil, fmt.Errorf("unknown index %q", index)
	}
	pkAttr := schema.AttrGSI1PK
	if index == ports.IndexByEndDate {
		pkAttr = schema.AttrGSI2PK
	}

	builder := expression.NewBuilder().
		WithKeyCondition(expression.Key(pkAttr).Equal(expression.Value(pk)))

	if len(filter) > 0 {
		var cond expression.ConditionBuilder
		first := true
		for name, value := range filter {
			eq := expression.Name(name).Equal(expression.Value(value))
			if first {
				cond = eq
				first = false
			} else {
				cond = cond.And(eq)
			}
		}
		builder = builder.WithFilter(cond)
	}

	expr, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build index query expression: %w", err)
	}

	return s.queryAll(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(s.tableName),
		IndexName:                 aws.String(indexName),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
}

// queryAll drains a paginated query
func (s *Store) queryAll(ctx context.Context, input *dynamodb.QueryInput) ([]ports.Item, error) {
	var items []ports.Item
	paginator := dynamodb.NewQueryPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query items: %w", err)
		}
		for _, item := range page.Items {
			items = append(items, item)
		}
	}
	return items, nil
}

func primaryKey(key ports.Key) ports.Item {
	return ports.Item{
		schema.AttrPK: &types.AttributeValueMemberS{Value: key.PK},
		schema.AttrSK: &types.AttributeValueMemberS{Value: key.SK},
	}
}
