package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"

	"assistiq/internal/domain"
)

func mustNewSessionClient(t *testing.T, db *fakeDynamo) *SessionClient {
	t.Helper()
	c, err := NewSessionClient(db, "test-sessions")
	require.NoError(t, err)
	return c
}

func TestSessionGet_HappyPath(t *testing.T) {
	db := &fakeDynamo{getOut: &dynamodb.GetItemOutput{Item: map[string]types.AttributeValue{
		"id":                    str("s1"),
		"awaiting_confirmation": &types.AttributeValueMemberBOOL{Value: true},
		"intent_id":             str("ResetPasswordIntent"),
		"confirmation_prompt":   str("Reset your password?"),
	}}}
	c := mustNewSessionClient(t, db)

	state, err := c.Get(context.Background(), "s1")
	require.NoError(t, err)
	require.Equal(t, domain.SessionState{
		AwaitingConfirmation: true,
		IntentID:             "ResetPasswordIntent",
		ConfirmationPrompt:   "Reset your password?",
	}, state)
}

func TestSessionGet_AbsentReturnsZeroState(t *testing.T) {
	db := &fakeDynamo{getOut: &dynamodb.GetItemOutput{}}
	c := mustNewSessionClient(t, db)

	state, err := c.Get(context.Background(), "s1")
	require.NoError(t, err)
	require.Equal(t, domain.SessionState{}, state)
}

func TestSessionGet_IgnoresUnknownAttributes(t *testing.T) {
	db := &fakeDynamo{getOut: &dynamodb.GetItemOutput{Item: map[string]types.AttributeValue{
		"id":                    str("s1"),
		"awaiting_confirmation": &types.AttributeValueMemberBOOL{Value: true},
		"intent_id":             str("X"),
		"confirmation_prompt":   str("p"),
		"some_future_field":     str("ignored"),
	}}}
	c := mustNewSessionClient(t, db)

	state, err := c.Get(context.Background(), "s1")
	require.NoError(t, err)
	require.True(t, state.AwaitingConfirmation)
	require.Equal(t, "X", state.IntentID)
}

func TestSessionGet_StoreError(t *testing.T) {
	db := &fakeDynamo{getErr: errors.New("boom")}
	c := mustNewSessionClient(t, db)

	_, err := c.Get(context.Background(), "s1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Get session")
}

func TestSessionPut_WritesAllFields(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewSessionClient(t, db)

	err := c.Put(context.Background(), "s1", domain.SessionState{
		AwaitingConfirmation: true,
		IntentID:             "ResetPasswordIntent",
		ConfirmationPrompt:   "Reset your password?",
	})
	require.NoError(t, err)
	item := db.lastPutInput.Item
	require.Equal(t, "s1", item["id"].(*types.AttributeValueMemberS).Value)
	require.True(t, item["awaiting_confirmation"].(*types.AttributeValueMemberBOOL).Value)
	require.Equal(t, "ResetPasswordIntent", item["intent_id"].(*types.AttributeValueMemberS).Value)
	require.Equal(t, "Reset your password?", item["confirmation_prompt"].(*types.AttributeValueMemberS).Value)
}

func TestSessionPut_StoreError(t *testing.T) {
	db := &fakeDynamo{putErr: errors.New("throttled")}
	c := mustNewSessionClient(t, db)

	err := c.Put(context.Background(), "s1", domain.SessionState{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "Put session")
}

func TestSessionDelete_HappyPath(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewSessionClient(t, db)

	// DynamoDB deletes are idempotent: an absent key is not an error, so
	// repeated deletes succeed.
	require.NoError(t, c.Delete(context.Background(), "s1"))
	require.NoError(t, c.Delete(context.Background(), "s1"))
	require.Equal(t, "s1", db.lastDelInput.Key["id"].(*types.AttributeValueMemberS).Value)
}

func TestSessionDelete_StoreError(t *testing.T) {
	db := &fakeDynamo{delErr: errors.New("boom")}
	c := mustNewSessionClient(t, db)

	err := c.Delete(context.Background(), "s1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Delete session")
}

func TestNewSessionClient_Validation(t *testing.T) {
	_, err := NewSessionClient(nil, "t")
	require.Error(t, err)
	_, err = NewSessionClient(&fakeDynamo{}, "")
	require.Error(t, err)
}
