package domain

// TurnRecord is a single persisted conversation turn. Records are append-only
// and never updated.
type TurnRecord struct {
	ID         string
	SessionID  string
	Timestamp  string
	UserText   string
	IntentName string
	Confidence float64
	BotReply   string
}
