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

// sessionsAPI is the minimal DynamoDB interface required by SessionClient.
type sessionsAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// SessionClient wraps the DynamoDB table holding per-conversation state.
// Items are written wholesale and carry only the three session fields;
// unknown attributes on load are ignored.
type SessionClient struct {
	api       sessionsAPI
	tableName string
}

// NewSessionClient creates a new SessionClient.
func NewSessionClient(api sessionsAPI, tableName string) (*SessionClient, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &SessionClient{api: api, tableName: tableName}, nil
}

// Get loads the session state, returning the zero state when no record
// exists.
func (c *SessionClient) Get(ctx context.Context, sessionID string) (domain.SessionState, error) {
	out, err := c.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: sessionID},
		},
	})
	if err != nil {
		return domain.SessionState{}, fmt.Errorf("repository: Get session %q: %w", sessionID, err)
	}
	if out == nil || len(out.Item) == 0 {
		return domain.SessionState{}, nil
	}
	return domain.SessionState{
		AwaitingConfirmation: optBoolAttr(out.Item, "awaiting_confirmation"),
		IntentID:             optStrAttr(out.Item, "intent_id"),
		ConfirmationPrompt:   optStrAttr(out.Item, "confirmation_prompt"),
	}, nil
}

// Put overwrites the session state record.
func (c *SessionClient) Put(ctx context.Context, sessionID string, state domain.SessionState) error {
	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item: map[string]types.AttributeValue{
			"id":                    &types.AttributeValueMemberS{Value: sessionID},
			"awaiting_confirmation": &types.AttributeValueMemberBOOL{Value: state.AwaitingConfirmation},
			"intent_id":             &types.AttributeValueMemberS{Value: state.IntentID},
			"confirmation_prompt":   &types.AttributeValueMemberS{Value: state.ConfirmationPrompt},
		},
	})
	if err != nil {
		return fmt.Errorf("repository: Put session %q: %w", sessionID, err)
	}
	return nil
}

// Delete removes the session state record. Deleting an absent session is not
// an error.
func (c *SessionClient) Delete(ctx context.Context, sessionID string) error {
	_, err := c.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(c.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: sessionID},
		},
	})
	if err != nil {
		return fmt.Errorf("repository: Delete session %q: %w", sessionID, err)
	}
	return nil
}
