package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"assistiq/internal/domain"
)

// intentsAPI is the minimal DynamoDB interface required by IntentClient.
// Defined here for testability.
type intentsAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// IntentClient wraps the DynamoDB table holding intent definitions. Reads are
// the engine's path; Put exists only for the seeding tool.
type IntentClient struct {
	api       intentsAPI
	tableName string
}

// NewIntentClient creates a new IntentClient.
func NewIntentClient(api intentsAPI, tableName string) (*IntentClient, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &IntentClient{api: api, tableName: tableName}, nil
}

// Get looks up one intent definition by id. An absent record is reported via
// the second return value, not as an error.
func (c *IntentClient) Get(ctx context.Context, id string) (domain.IntentDefinition, bool, error) {
	out, err := c.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return domain.IntentDefinition{}, false, fmt.Errorf("repository: Get intent %q: %w", id, err)
	}
	if out == nil || len(out.Item) == 0 {
		return domain.IntentDefinition{}, false, nil
	}
	def, err := itemToIntent(out.Item)
	if err != nil {
		return domain.IntentDefinition{}, false, fmt.Errorf("repository: Get intent %q: %w", id, err)
	}
	return def, true, nil
}

// FindAnswerByKeyword scans definitions for one whose q_keywords contains a
// case-insensitive substring of the query text. First match wins; the scan is
// unordered and unranked.
func (c *IntentClient) FindAnswerByKeyword(ctx context.Context, text string) (string, bool, error) {
	needle := strings.ToLower(text)
	if needle == "" {
		return "", false, nil
	}

	var startKey map[string]types.AttributeValue
	for {
		out, err := c.api.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(c.tableName),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return "", false, fmt.Errorf("repository: FindAnswerByKeyword scan: %w", err)
		}
		for _, item := range out.Items {
			for _, kw := range optStrListAttr(item, "q_keywords") {
				if kw != "" && strings.Contains(needle, strings.ToLower(kw)) {
					if answer := intentAnswer(item); answer != "" {
						return answer, true, nil
					}
				}
			}
		}
		if out.LastEvaluatedKey == nil {
			return "", false, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// Put writes or replaces an intent definition. Used by the seeding tool; the
// engine never calls it.
func (c *IntentClient) Put(ctx context.Context, def domain.IntentDefinition) error {
	if strings.TrimSpace(def.ID) == "" {
		return errors.New("repository: Put intent: id is required")
	}
	item := map[string]types.AttributeValue{
		"id":               &types.AttributeValueMemberS{Value: def.ID},
		"fulfillment":      &types.AttributeValueMemberS{Value: def.Fulfillment},
		"closing_response": &types.AttributeValueMemberS{Value: def.ClosingResponse},
		"initial_response": &types.AttributeValueMemberS{Value: def.InitialResponse},
		"confirmation":     &types.AttributeValueMemberS{Value: def.Confirmation},
	}
	if len(def.QKeywords) > 0 {
		members := make([]types.AttributeValue, 0, len(def.QKeywords))
		for _, kw := range def.QKeywords {
			members = append(members, &types.AttributeValueMemberS{Value: kw})
		}
		item["q_keywords"] = &types.AttributeValueMemberL{Value: members}
	}
	if _, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("repository: Put intent %q: %w", def.ID, err)
	}
	return nil
}

func itemToIntent(item map[string]types.AttributeValue) (domain.IntentDefinition, error) {
	id, err := strAttr(item, "id")
	if err != nil {
		return domain.IntentDefinition{}, err
	}
	return domain.IntentDefinition{
		ID:              id,
		Fulfillment:     optStrAttr(item, "fulfillment"),
		ClosingResponse: optStrAttr(item, "closing_response"),
		InitialResponse: optStrAttr(item, "initial_response"),
		Confirmation:    optStrAttr(item, "confirmation"),
		QKeywords:       optStrListAttr(item, "q_keywords"),
	}, nil
}

// intentAnswer picks the reply text for a keyword hit: fulfillment text when
// present, otherwise the initial response.
func intentAnswer(item map[string]types.AttributeValue) string {
	if f := optStrAttr(item, "fulfillment"); f != "" {
		return f
	}
	return optStrAttr(item, "initial_response")
}
