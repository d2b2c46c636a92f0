package domain

// SessionState is the durable per-conversation state. It exists only while a
// confirmation is pending; every terminal transition deletes it.
//
// Invariant: when AwaitingConfirmation is true, IntentID and
// ConfirmationPrompt are both set.
type SessionState struct {
	AwaitingConfirmation bool
	IntentID             string
	ConfirmationPrompt   string
}

// IsAwaitingConfirmation reports whether the session holds a usable pending
// confirmation. A state flagged awaiting but missing its intent id is treated
// as empty rather than trusted.
func (s SessionState) IsAwaitingConfirmation() bool {
	return s.AwaitingConfirmation && s.IntentID != ""
}
