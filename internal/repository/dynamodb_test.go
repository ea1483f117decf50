package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"

	"seo-assistant/internal/domain"
)

type fakeDynamo struct {
	getOut       *dynamodb.GetItemOutput
	getErr       error
	updateErr    error
	txErr        error
	lastGetInput *dynamodb.GetItemInput
	lastUpdateIn *dynamodb.UpdateItemInput
	lastTxInput  *dynamodb.TransactWriteItemsInput
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.lastGetInput = in
	return f.getOut, f.getErr
}

func (f *fakeDynamo) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.lastUpdateIn = in
	return &dynamodb.UpdateItemOutput{}, f.updateErr
}

func (f *fakeDynamo) TransactWriteItems(_ context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.lastTxInput = in
	return &dynamodb.TransactWriteItemsOutput{}, f.txErr
}

var fixedNow = time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

func mustNewDynamoStore(t *testing.T, db *fakeDynamo) *DynamoStore {
	t.Helper()
	s, err := NewDynamoStore(db, "test-table")
	require.NoError(t, err)
	s.now = func() time.Time { return fixedNow }
	return s
}

func sAttr(t *testing.T, item map[string]types.AttributeValue, key string) string {
	t.Helper()
	v, err := strAttr(item, key)
	require.NoError(t, err)
	return v
}

func TestNewDynamoStore_Validation(t *testing.T) {
	_, err := NewDynamoStore(nil, "t")
	require.Error(t, err)
	_, err = NewDynamoStore(&fakeDynamo{}, "  ")
	require.Error(t, err)
}

func TestDynamoStore_Get_NotFoundIsIdle(t *testing.T) {
	db := &fakeDynamo{getOut: &dynamodb.GetItemOutput{}}
	s := mustNewDynamoStore(t, db)

	got, err := s.Get(context.Background(), 11)
	require.NoError(t, err)
	require.Equal(t, domain.Session{UserID: 11}, got)

	require.Equal(t, "test-table", *db.lastGetInput.TableName)
	require.True(t, *db.lastGetInput.ConsistentRead)
	require.Equal(t, "USER#11", sAttr(t, db.lastGetInput.Key, "PK"))
	require.Equal(t, skSession, sAttr(t, db.lastGetInput.Key, "SK"))
}

func TestDynamoStore_Get_HappyPath(t *testing.T) {
	db := &fakeDynamo{getOut: &dynamodb.GetItemOutput{Item: map[string]types.AttributeValue{
		"PK":           &types.AttributeValueMemberS{Value: "USER#11"},
		"SK":           &types.AttributeValueMemberS{Value: skSession},
		"state":        &types.AttributeValueMemberS{Value: "awaiting_description"},
		"descriptions": &types.AttributeValueMemberN{Value: "4"},
		"updatedAt":    &types.AttributeValueMemberS{Value: fixedNow.Format(time.RFC3339Nano)},
	}}}
	s := mustNewDynamoStore(t, db)

	got, err := s.Get(context.Background(), 11)
	require.NoError(t, err)
	require.True(t, got.Awaiting())
	require.Equal(t, 4, got.Descriptions)
	require.True(t, got.UpdatedAt.Equal(fixedNow))
}

func TestDynamoStore_Get_Errors(t *testing.T) {
	s := mustNewDynamoStore(t, &fakeDynamo{getErr: errors.New("throttled")})
	_, err := s.Get(context.Background(), 1)
	require.ErrorContains(t, err, "throttled")

	bad := map[string]types.AttributeValue{
		"state":        &types.AttributeValueMemberS{Value: "awaiting_description"},
		"descriptions": &types.AttributeValueMemberS{Value: "four"},
	}
	s = mustNewDynamoStore(t, &fakeDynamo{getOut: &dynamodb.GetItemOutput{Item: bad}})
	_, err = s.Get(context.Background(), 1)
	require.ErrorContains(t, err, "not a number")

	_, err = s.Get(context.Background(), 0)
	require.ErrorIs(t, err, ErrInvalidUserID)
}

func TestDynamoStore_Get_StateWithoutCounter(t *testing.T) {
	db := &fakeDynamo{getOut: &dynamodb.GetItemOutput{Item: map[string]types.AttributeValue{
		"state":     &types.AttributeValueMemberS{Value: "awaiting_description"},
		"updatedAt": &types.AttributeValueMemberS{Value: fixedNow.Format(time.RFC3339Nano)},
	}}}
	s := mustNewDynamoStore(t, db)

	got, err := s.Get(context.Background(), 11)
	require.NoError(t, err)
	require.True(t, got.Awaiting())
	require.Zero(t, got.Descriptions)
}

func TestDynamoStore_SetState(t *testing.T) {
	db := &fakeDynamo{}
	s := mustNewDynamoStore(t, db)

	require.NoError(t, s.SetState(context.Background(), 3, domain.StateAwaitingDescription))
	in := db.lastUpdateIn
	require.Equal(t, "test-table", *in.TableName)
	require.Equal(t, "USER#3", sAttr(t, in.Key, "PK"))
	require.Equal(t, skSession, sAttr(t, in.Key, "SK"))
	require.Equal(t, "SET #state = :state, updatedAt = :now", *in.UpdateExpression)
	require.Equal(t, "state", in.ExpressionAttributeNames["#state"])
	require.Equal(t, "awaiting_description", sAttr(t, in.ExpressionAttributeValues, ":state"))
	require.Equal(t, fixedNow.Format(time.RFC3339Nano), sAttr(t, in.ExpressionAttributeValues, ":now"))
	require.NotContains(t, *in.UpdateExpression, "descriptions")

	db.updateErr = errors.New("boom")
	require.ErrorContains(t, s.SetState(context.Background(), 3, domain.StateIdle), "boom")
	require.ErrorIs(t, s.SetState(context.Background(), 0, domain.StateIdle), ErrInvalidUserID)
}

func TestDynamoStore_SaveTurn_Transaction(t *testing.T) {
	db := &fakeDynamo{}
	s := mustNewDynamoStore(t, db)

	turn := domain.DescriptionTurn{UserID: 9, RequestID: "req-1", Input: "кроссовки", Output: "описание"}
	require.NoError(t, s.SaveTurn(context.Background(), turn))

	items := db.lastTxInput.TransactItems
	require.Len(t, items, 2)

	turnPut := items[0].Put
	require.Equal(t, "USER#9", sAttr(t, turnPut.Item, "PK"))
	require.Equal(t, turnSK(fixedNow), sAttr(t, turnPut.Item, "SK"))
	require.Equal(t, "req-1", sAttr(t, turnPut.Item, "requestId"))
	require.Equal(t, "кроссовки", sAttr(t, turnPut.Item, "input"))
	require.NotNil(t, turnPut.ConditionExpression)
	ttl, err := intAttr(turnPut.Item, "ttl")
	require.NoError(t, err)
	require.Equal(t, int(fixedNow.Add(ttlDuration).Unix()), ttl)

	counter := items[1].Update
	require.NotNil(t, counter)
	require.Nil(t, items[1].Put)
	require.Equal(t, "USER#9", sAttr(t, counter.Key, "PK"))
	require.Equal(t, skSession, sAttr(t, counter.Key, "SK"))
	require.Equal(t, "ADD descriptions :one SET updatedAt = :now", *counter.UpdateExpression)
	one, err := intAttr(counter.ExpressionAttributeValues, ":one")
	require.NoError(t, err)
	require.Equal(t, 1, one)
}

func TestDynamoStore_SaveTurn_Errors(t *testing.T) {
	db := &fakeDynamo{txErr: errors.New("conflict")}
	s := mustNewDynamoStore(t, db)

	err := s.SaveTurn(context.Background(), domain.DescriptionTurn{UserID: 1})
	require.ErrorContains(t, err, "conflict")

	err = s.SaveTurn(context.Background(), domain.DescriptionTurn{UserID: 0})
	require.ErrorIs(t, err, ErrInvalidUserID)
}
