package usecase

import (
	"fmt"
	"strings"

	"assistiq/internal/domain"
)

// Small-talk intents never warrant a human handoff.
var escalationExempt = map[string]bool{
	greetingIntentID: true,
	thanksIntentID:   true,
}

// IsEscalationExempt reports whether an intent is excluded from escalation on
// both the fulfillment and fallback paths.
func IsEscalationExempt(intentID string) bool {
	return escalationExempt[intentID]
}

// FormatTranscript renders turn records as the plain-text transcript mailed
// to support. Small-talk turns are filtered out.
func FormatTranscript(recs []domain.TurnRecord) string {
	lines := make([]string, 0, len(recs))
	for _, rec := range recs {
		if IsEscalationExempt(rec.IntentName) {
			continue
		}
		lines = append(lines, fmt.Sprintf("[%s] User: %s | Bot: %s", rec.Timestamp, rec.UserText, rec.BotReply))
	}
	return strings.Join(lines, "\n")
}
