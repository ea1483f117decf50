package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"seo-assistant/internal/domain"
)

const (
	skSession   = "SESSION#"
	skPrefixRun = "DESC#"
	ttlDuration = 30 * 24 * time.Hour // 30-day TTL for description turns
)

// dynamodbAPI is the minimal DynamoDB interface required by DynamoStore.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	TransactWriteItems(ctx context.Context, in *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// DynamoStore keeps sessions and description turns in a single table keyed by
// PK/SK. The session item never expires; turns carry a TTL attribute.
type DynamoStore struct {
	api       dynamodbAPI
	tableName string
	now       func() time.Time
}

func NewDynamoStore(api dynamodbAPI, tableName string) (*DynamoStore, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &DynamoStore{api: api, tableName: tableName, now: time.Now}, nil
}

func userPK(userID int64) string {
	return "USER#" + userKey(userID)
}

func turnSK(ts time.Time) string {
	return skPrefixRun + ts.UTC().Format(time.RFC3339Nano)
}

func (s *DynamoStore) Get(ctx context.Context, userID int64) (domain.Session, error) {
	if err := validUserID(userID); err != nil {
		return domain.Session{}, err
	}

	out, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            sessionKey(userID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return domain.Session{}, fmt.Errorf("repository: Get get item: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return domain.Session{UserID: userID}, nil
	}

	session, err := itemToSession(userID, out.Item)
	if err != nil {
		return domain.Session{}, fmt.Errorf("repository: Get decode: %w", err)
	}
	return session, nil
}

func (s *DynamoStore) SetState(ctx context.Context, userID int64, state domain.ConversationState) error {
	if err := validUserID(userID); err != nil {
		return err
	}

	_, err := s.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(s.tableName),
		Key:              sessionKey(userID),
		UpdateExpression: aws.String("SET #state = :state, updatedAt = :now"),
		ExpressionAttributeNames: map[string]string{
			"#state": "state",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":state": &types.AttributeValueMemberS{Value: string(state)},
			":now":   &types.AttributeValueMemberS{Value: s.now().UTC().Format(time.RFC3339Nano)},
		},
	})
	if err != nil {
		return fmt.Errorf("repository: SetState: %w", err)
	}
	return nil
}

// SaveTurn writes the description turn and increments the session counter in
// one transaction. The counter is updated server-side with ADD.
func (s *DynamoStore) SaveTurn(ctx context.Context, turn domain.DescriptionTurn) error {
	if err := validUserID(turn.UserID); err != nil {
		return err
	}

	now := s.now().UTC()
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = now
	}

	_, err := s.api.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:           aws.String(s.tableName),
					Item:                turnItem(turn, now.Add(ttlDuration).Unix()),
					ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
				},
			},
			{
				Update: &types.Update{
					TableName:        aws.String(s.tableName),
					Key:              sessionKey(turn.UserID),
					UpdateExpression: aws.String("ADD descriptions :one SET updatedAt = :now"),
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":one": &types.AttributeValueMemberN{Value: "1"},
						":now": &types.AttributeValueMemberS{Value: now.Format(time.RFC3339Nano)},
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("repository: SaveTurn: %w", err)
	}
	return nil
}

func sessionKey(userID int64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: userPK(userID)},
		"SK": &types.AttributeValueMemberS{Value: skSession},
	}
}

func turnItem(turn domain.DescriptionTurn, ttl int64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":        &types.AttributeValueMemberS{Value: userPK(turn.UserID)},
		"SK":        &types.AttributeValueMemberS{Value: turnSK(turn.CreatedAt)},
		"requestId": &types.AttributeValueMemberS{Value: turn.RequestID},
		"input":     &types.AttributeValueMemberS{Value: turn.Input},
		"output":    &types.AttributeValueMemberS{Value: turn.Output},
		"ttl":       &types.AttributeValueMemberN{Value: strconv.FormatInt(ttl, 10)},
	}
}

func itemToSession(userID int64, item map[string]types.AttributeValue) (domain.Session, error) {
	state, _ := strAttr(item, "state") // Idle is stored as ""
	var descriptions int
	if _, ok := item["descriptions"]; ok {
		n, err := intAttr(item, "descriptions")
		if err != nil {
			return domain.Session{}, err
		}
		descriptions = n
	}
	session := domain.Session{
		UserID:       userID,
		State:        domain.ConversationState(state),
		Descriptions: descriptions,
	}
	if raw, err := strAttr(item, "updatedAt"); err == nil && raw != "" {
		ts, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return domain.Session{}, fmt.Errorf("repository: parse attribute %q: %w", "updatedAt", err)
		}
		session.UpdatedAt = ts
	}
	return session, nil
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("repository: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}

func intAttr(item map[string]types.AttributeValue, key string) (int, error) {
	v, ok := item[key]
	if !ok {
		return 0, fmt.Errorf("repository: missing attribute %q", key)
	}
	n, ok := v.(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("repository: attribute %q is not a number", key)
	}
	parsed, err := strconv.Atoi(n.Value)
	if err != nil {
		return 0, fmt.Errorf("repository: parse attribute %q: %w", key, err)
	}
	return parsed, nil
}
