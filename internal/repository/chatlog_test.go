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

func mustNewChatLogClient(t *testing.T, db *fakeDynamo) *ChatLogClient {
	t.Helper()
	c, err := NewChatLogClient(db, "test-logs")
	require.NoError(t, err)
	return c
}

func makeTurnItem(id, sessionID, ts, userText, intentName, confidence, botReply string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id":          str(id),
		"session_id":  str(sessionID),
		"timestamp":   str(ts),
		"user_text":   str(userText),
		"intent_name": str(intentName),
		"confidence":  &types.AttributeValueMemberN{Value: confidence},
		"bot_reply":   str(botReply),
	}
}

func TestAppend_HappyPath(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewChatLogClient(t, db)

	err := c.Append(context.Background(), domain.TurnRecord{
		ID:         "r1",
		SessionID:  "s1",
		Timestamp:  "2026-08-30T10:00:00Z",
		UserText:   "hi",
		IntentName: "GreetingIntent",
		Confidence: 1.0,
		BotReply:   "Hello!",
	})
	require.NoError(t, err)
	item := db.lastPutInput.Item
	require.Equal(t, "r1", item["id"].(*types.AttributeValueMemberS).Value)
	require.Equal(t, "s1", item["session_id"].(*types.AttributeValueMemberS).Value)
	require.Equal(t, "1", item["confidence"].(*types.AttributeValueMemberN).Value)
}

func TestAppend_MissingIDs(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewChatLogClient(t, db)

	err := c.Append(context.Background(), domain.TurnRecord{SessionID: "s1"})
	require.Error(t, err)
	err = c.Append(context.Background(), domain.TurnRecord{ID: "r1"})
	require.Error(t, err)
}

func TestAppend_StoreError(t *testing.T) {
	db := &fakeDynamo{putErr: errors.New("throttled")}
	c := mustNewChatLogClient(t, db)

	err := c.Append(context.Background(), domain.TurnRecord{ID: "r1", SessionID: "s1"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "Append")
}

func TestHistory_SortsChronologically(t *testing.T) {
	db := &fakeDynamo{scanOuts: []*dynamodb.ScanOutput{{
		Items: []map[string]types.AttributeValue{
			makeTurnItem("r2", "s1", "2026-08-30T10:01:00Z", "second", "X", "1", "b2"),
			makeTurnItem("r1", "s1", "2026-08-30T10:00:00Z", "first", "X", "1", "b1"),
		},
	}}}
	c := mustNewChatLogClient(t, db)

	recs, err := c.History(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, "first", recs[0].UserText)
	require.Equal(t, "second", recs[1].UserText)
	require.Equal(t, "session_id = :sid", *db.lastScanInput.FilterExpression)
}

func TestHistory_FollowsPagination(t *testing.T) {
	db := &fakeDynamo{scanOuts: []*dynamodb.ScanOutput{
		{
			Items:            []map[string]types.AttributeValue{makeTurnItem("r1", "s1", "t1", "hi", "X", "1", "b1")},
			LastEvaluatedKey: map[string]types.AttributeValue{"id": str("r1")},
		},
		{
			Items: []map[string]types.AttributeValue{makeTurnItem("r2", "s1", "t2", "bye", "X", "1", "b2")},
		},
	}}
	c := mustNewChatLogClient(t, db)

	recs, err := c.History(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, 2, db.scanCalls)
}

func TestHistory_Empty(t *testing.T) {
	db := &fakeDynamo{scanOuts: []*dynamodb.ScanOutput{{}}}
	c := mustNewChatLogClient(t, db)

	recs, err := c.History(context.Background(), "s1")
	require.NoError(t, err)
	require.Empty(t, recs)
}

func TestHistory_ScanError(t *testing.T) {
	db := &fakeDynamo{scanErr: errors.New("boom")}
	c := mustNewChatLogClient(t, db)

	_, err := c.History(context.Background(), "s1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "History")
}

func TestHistory_DecodesLeniently(t *testing.T) {
	// Old proxy-written records carry only a subset of fields.
	db := &fakeDynamo{scanOuts: []*dynamodb.ScanOutput{{
		Items: []map[string]types.AttributeValue{{
			"session_id": str("s1"),
			"timestamp":  str("t1"),
			"user_text":  str("hi"),
			"bot_reply":  str("Hello!"),
		}},
	}}}
	c := mustNewChatLogClient(t, db)

	recs, err := c.History(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, "hi", recs[0].UserText)
	require.Zero(t, recs[0].Confidence)
}

func TestNewChatLogClient_Validation(t *testing.T) {
	_, err := NewChatLogClient(nil, "t")
	require.Error(t, err)
	_, err = NewChatLogClient(&fakeDynamo{}, " ")
	require.Error(t, err)
}
