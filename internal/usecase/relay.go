package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"assistiq/internal/domain"
)

// LexRecognizer is the NLU front end consumed by the chat proxy.
type LexRecognizer interface {
	Configured() bool
	Recognize(ctx context.Context, sessionID, text string) (string, error)
}

// RelayService is the chat proxy use case: forward raw text to the bot, log
// the exchange, and relay the full conversation history back to the caller.
type RelayService struct {
	lex   LexRecognizer
	turns TurnLog
}

type RelayInput struct {
	Text      string
	SessionID string
}

// HistoryMessage is one side of a logged turn, role-tagged for the frontend.
type HistoryMessage struct {
	Role      string
	Content   string
	Timestamp string
}

type RelayOutput struct {
	SessionID string
	Answer    string
	Messages  []HistoryMessage
}

// NewRelayService creates a RelayService.
func NewRelayService(lex LexRecognizer, turns TurnLog) (*RelayService, error) {
	if lex == nil {
		return nil, errors.New("usecase: lex recognizer must not be nil")
	}
	if turns == nil {
		return nil, errors.New("usecase: turn log must not be nil")
	}
	return &RelayService{lex: lex, turns: turns}, nil
}

// Relay handles one proxied chat exchange. Configuration is checked before
// any side effect so a misconfigured bot produces a clean error and nothing
// else.
func (s *RelayService) Relay(ctx context.Context, in RelayInput) (RelayOutput, error) {
	if !s.lex.Configured() {
		return RelayOutput{}, newError(ErrorNotConfigured, "lex_bot_not_configured", nil)
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return RelayOutput{}, newError(ErrorInvalidInput, "missing_text", nil)
	}

	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		sessionID = newUUID()
	}

	answer, err := s.lex.Recognize(ctx, sessionID, text)
	if err != nil {
		return RelayOutput{}, newError(ErrorUpstream, "lex_error", err)
	}

	// Best effort: a failed log write never fails the exchange.
	rec := domain.TurnRecord{
		ID:        newUUID(),
		SessionID: sessionID,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		UserText:  text,
		BotReply:  answer,
	}
	if err := s.turns.Append(ctx, rec); err != nil {
		slog.Warn("turn log append failed", "session_id", sessionID, "err", err)
	}

	recs, err := s.turns.History(ctx, sessionID)
	if err != nil {
		slog.Warn("history fetch failed", "session_id", sessionID, "err", err)
		recs = nil
	}

	return RelayOutput{
		SessionID: sessionID,
		Answer:    answer,
		Messages:  historyMessages(recs),
	}, nil
}

func historyMessages(recs []domain.TurnRecord) []HistoryMessage {
	msgs := make([]HistoryMessage, 0, 2*len(recs))
	for _, rec := range recs {
		if rec.UserText != "" {
			msgs = append(msgs, HistoryMessage{Role: "user", Content: rec.UserText, Timestamp: rec.Timestamp})
		}
		if rec.BotReply != "" {
			msgs = append(msgs, HistoryMessage{Role: "bot", Content: rec.BotReply, Timestamp: rec.Timestamp})
		}
	}
	return msgs
}
