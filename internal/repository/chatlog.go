package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"assistiq/internal/domain"
)

// chatlogAPI is the minimal DynamoDB interface required by ChatLogClient.
type chatlogAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// ChatLogClient wraps the append-only DynamoDB table of conversation turns.
type ChatLogClient struct {
	api       chatlogAPI
	tableName string
}

// NewChatLogClient creates a new ChatLogClient.
func NewChatLogClient(api chatlogAPI, tableName string) (*ChatLogClient, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &ChatLogClient{api: api, tableName: tableName}, nil
}

// Append writes one turn record. Records are never updated or deleted.
func (c *ChatLogClient) Append(ctx context.Context, rec domain.TurnRecord) error {
	if rec.ID == "" || rec.SessionID == "" {
		return errors.New("repository: Append: record id and session id are required")
	}
	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item: map[string]types.AttributeValue{
			"id":          &types.AttributeValueMemberS{Value: rec.ID},
			"session_id":  &types.AttributeValueMemberS{Value: rec.SessionID},
			"timestamp":   &types.AttributeValueMemberS{Value: rec.Timestamp},
			"user_text":   &types.AttributeValueMemberS{Value: rec.UserText},
			"intent_name": &types.AttributeValueMemberS{Value: rec.IntentName},
			"confidence":  &types.AttributeValueMemberN{Value: strconv.FormatFloat(rec.Confidence, 'f', -1, 64)},
			"bot_reply":   &types.AttributeValueMemberS{Value: rec.BotReply},
		},
	})
	if err != nil {
		return fmt.Errorf("repository: Append: %w", err)
	}
	return nil
}

// History returns every turn recorded for a session in chronological order.
// The scan follows LastEvaluatedKey across pages.
func (c *ChatLogClient) History(ctx context.Context, sessionID string) ([]domain.TurnRecord, error) {
	var (
		recs     []domain.TurnRecord
		startKey map[string]types.AttributeValue
	)
	for {
		out, err := c.api.Scan(ctx, &dynamodb.ScanInput{
			TableName:        aws.String(c.tableName),
			FilterExpression: aws.String("session_id = :sid"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":sid": &types.AttributeValueMemberS{Value: sessionID},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("repository: History scan: %w", err)
		}
		for _, item := range out.Items {
			recs = append(recs, itemToTurnRecord(item))
		}
		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	sort.Slice(recs, func(i, j int) bool { return recs[i].Timestamp < recs[j].Timestamp })
	return recs, nil
}

// itemToTurnRecord decodes leniently: the engine writes every field, but old
// records (the proxy logged a reduced shape at one point) may miss some.
func itemToTurnRecord(item map[string]types.AttributeValue) domain.TurnRecord {
	return domain.TurnRecord{
		ID:         optStrAttr(item, "id"),
		SessionID:  optStrAttr(item, "session_id"),
		Timestamp:  optStrAttr(item, "timestamp"),
		UserText:   optStrAttr(item, "user_text"),
		IntentName: optStrAttr(item, "intent_name"),
		Confidence: optFloatAttr(item, "confidence"),
		BotReply:   optStrAttr(item, "bot_reply"),
	}
}
