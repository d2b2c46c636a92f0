// Package handler adapts Lambda invocation payloads to the use cases.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"assistiq/internal/lex"
)

// TurnDecider decides the outcome of one conversation turn.
type TurnDecider interface {
	HandleTurn(ctx context.Context, ev lex.Event) lex.Response
}

// FulfillmentHandler receives raw Lex fulfillment events.
type FulfillmentHandler struct {
	engine TurnDecider
}

// NewFulfillmentHandler creates a FulfillmentHandler.
func NewFulfillmentHandler(engine TurnDecider) (*FulfillmentHandler, error) {
	if engine == nil {
		return nil, errors.New("handler: engine must not be nil")
	}
	return &FulfillmentHandler{engine: engine}, nil
}

// Handle decodes the event and runs the engine. An unparseable payload is
// treated as an empty turn rather than an invocation error; the caller must
// always get a dialog response.
func (h *FulfillmentHandler) Handle(ctx context.Context, raw json.RawMessage) (lex.Response, error) {
	var ev lex.Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		slog.Warn("unparseable fulfillment event", "err", err)
		ev = lex.Event{}
	}
	return h.engine.HandleTurn(ctx, ev), nil
}
