// Package lexruntime wraps the Lex V2 runtime for the chat proxy front door.
package lexruntime

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lexruntimev2"
)

// ErrNotConfigured is returned by Recognize when the bot identity was not
// supplied. The proxy maps it to a structured configuration error.
var ErrNotConfigured = errors.New("lexruntime: bot id and alias id must be configured")

const defaultLocaleID = "en_US"

// lexAPI is the minimal Lex runtime interface required by Client.
// *lexruntimev2.Client from aws-sdk-go-v2 satisfies this interface.
type lexAPI interface {
	RecognizeText(ctx context.Context, in *lexruntimev2.RecognizeTextInput, optFns ...func(*lexruntimev2.Options)) (*lexruntimev2.RecognizeTextOutput, error)
}

// Client forwards raw chat text to a Lex bot and returns the bot's reply.
type Client struct {
	api        lexAPI
	botID      string
	botAliasID string
	localeID   string
}

// New creates a Client. Empty bot identifiers are allowed so the proxy can
// boot and report the misconfiguration per request instead of crashing.
func New(api lexAPI, botID, botAliasID, localeID string) (*Client, error) {
	if api == nil {
		return nil, errors.New("lexruntime: api must not be nil")
	}
	if strings.TrimSpace(localeID) == "" {
		localeID = defaultLocaleID
	}
	return &Client{
		api:        api,
		botID:      strings.TrimSpace(botID),
		botAliasID: strings.TrimSpace(botAliasID),
		localeID:   localeID,
	}, nil
}

// Configured reports whether the bot identity was supplied.
func (c *Client) Configured() bool {
	return c.botID != "" && c.botAliasID != ""
}

// Recognize sends one utterance to the bot and returns the concatenated
// message contents from the bot's response.
func (c *Client) Recognize(ctx context.Context, sessionID, text string) (string, error) {
	if c.botID == "" || c.botAliasID == "" {
		return "", ErrNotConfigured
	}

	out, err := c.api.RecognizeText(ctx, &lexruntimev2.RecognizeTextInput{
		BotId:      aws.String(c.botID),
		BotAliasId: aws.String(c.botAliasID),
		LocaleId:   aws.String(c.localeID),
		SessionId:  aws.String(sessionID),
		Text:       aws.String(text),
	})
	if err != nil {
		return "", fmt.Errorf("lexruntime: recognize text: %w", err)
	}

	chunks := make([]string, 0, len(out.Messages))
	for _, msg := range out.Messages {
		if msg.Content != nil && *msg.Content != "" {
			chunks = append(chunks, *msg.Content)
		}
	}
	return strings.Join(chunks, "\n"), nil
}
