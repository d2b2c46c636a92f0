package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"assistiq/internal/usecase"
)

// Relayer is the chat proxy use case consumed by ChatProxyHandler.
type Relayer interface {
	Relay(ctx context.Context, in usecase.RelayInput) (usecase.RelayOutput, error)
}

// ChatProxyHandler is the HTTP front door: it accepts raw chat text, relays
// it through the bot, and returns the reply plus conversation history.
type ChatProxyHandler struct {
	relay Relayer
}

type chatRequest struct {
	Text      string `json:"text"`
	SessionID string `json:"sessionId"`
}

type chatMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}

type chatResponse struct {
	SessionID string        `json:"sessionId"`
	Answer    string        `json:"answer"`
	Messages  []chatMessage `json:"messages"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewChatProxyHandler creates a ChatProxyHandler.
func NewChatProxyHandler(relay Relayer) (*ChatProxyHandler, error) {
	if relay == nil {
		return nil, errors.New("handler: relayer must not be nil")
	}
	return &ChatProxyHandler{relay: relay}, nil
}

// Handle processes one API Gateway HTTP request.
func (h *ChatProxyHandler) Handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	correlationID := correlationIDFrom(req.Headers)

	if req.RequestContext.HTTP.Method == http.MethodOptions {
		return respond(http.StatusNoContent, nil, correlationID), nil
	}

	var body chatRequest
	// A malformed body decodes to the zero request: the use case rejects the
	// missing text.
	_ = json.Unmarshal([]byte(req.Body), &body)

	out, err := h.relay.Relay(ctx, usecase.RelayInput{Text: body.Text, SessionID: body.SessionID})
	if err != nil {
		status, code := statusFor(err)
		return respond(status, errorResponse{Error: code}, correlationID), nil
	}

	msgs := make([]chatMessage, 0, len(out.Messages))
	for _, m := range out.Messages {
		msgs = append(msgs, chatMessage{Role: m.Role, Content: m.Content, Timestamp: m.Timestamp})
	}
	return respond(http.StatusOK, chatResponse{
		SessionID: out.SessionID,
		Answer:    out.Answer,
		Messages:  msgs,
	}, correlationID), nil
}

func statusFor(err error) (int, string) {
	var ucErr *usecase.Error
	if !errors.As(err, &ucErr) {
		return http.StatusInternalServerError, string(usecase.ErrorInternal)
	}
	switch ucErr.Code {
	case usecase.ErrorInvalidInput:
		return http.StatusBadRequest, string(ucErr.Code)
	case usecase.ErrorNotConfigured:
		return http.StatusInternalServerError, string(ucErr.Code)
	case usecase.ErrorUpstream:
		return http.StatusBadGateway, string(ucErr.Code)
	default:
		return http.StatusInternalServerError, string(usecase.ErrorInternal)
	}
}

func respond(status int, body any, correlationID string) events.APIGatewayV2HTTPResponse {
	headers := map[string]string{
		"Content-Type":                 "application/json",
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Methods": "OPTIONS,GET,POST",
		"Access-Control-Allow-Headers": "*",
		"X-Correlation-Id":             correlationID,
	}
	var encoded string
	if body != nil {
		raw, err := json.Marshal(body)
		if err == nil {
			encoded = string(raw)
		}
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       encoded,
	}
}

func correlationIDFrom(headers map[string]string) string {
	for k, v := range headers {
		if http.CanonicalHeaderKey(k) == "X-Correlation-Id" && v != "" {
			return v
		}
	}
	return uuid.NewString()
}
