package domain

// IntentDefinition is a pre-authored conversational task loaded from the
// knowledge base. The engine treats definitions as read-only; they are
// written only by the seeding tool.
type IntentDefinition struct {
	ID              string   `yaml:"id"`
	Fulfillment     string   `yaml:"fulfillment"`
	ClosingResponse string   `yaml:"closing_response"`
	InitialResponse string   `yaml:"initial_response"`
	Confirmation    string   `yaml:"confirmation"`
	QKeywords       []string `yaml:"q_keywords"`
}

// RequiresConfirmation reports whether the intent must be confirmed before
// fulfillment. An empty confirmation prompt means no gate.
func (d IntentDefinition) RequiresConfirmation() bool {
	return d.Confirmation != ""
}
