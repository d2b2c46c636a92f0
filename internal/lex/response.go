package lex

// Dialog action types on the outbound response.
const (
	DialogActionClose      = "Close"
	DialogActionElicitSlot = "ElicitSlot"
	DialogActionDelegate   = "Delegate"
)

// Intent states on the outbound response.
const (
	IntentStateFulfilled  = "Fulfilled"
	IntentStateInProgress = "InProgress"
)

const contentTypePlainText = "PlainText"

// Response is the outbound dialog response returned to the Lex runtime.
type Response struct {
	SessionState ResponseSessionState `json:"sessionState"`
	Messages     []Message            `json:"messages"`
}

type ResponseSessionState struct {
	DialogAction DialogAction   `json:"dialogAction"`
	Intent       ResponseIntent `json:"intent"`
}

type DialogAction struct {
	Type         string `json:"type"`
	SlotToElicit string `json:"slotToElicit,omitempty"`
}

type ResponseIntent struct {
	Name  string           `json:"name"`
	Slots map[string]*Slot `json:"slots,omitempty"`
	State string           `json:"state"`
}

type Message struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

// Close builds a terminal response under the given intent name.
func Close(intentName, message string) Response {
	return Response{
		SessionState: ResponseSessionState{
			DialogAction: DialogAction{Type: DialogActionClose},
			Intent:       ResponseIntent{Name: intentName, State: IntentStateFulfilled},
		},
		Messages: []Message{{ContentType: contentTypePlainText, Content: message}},
	}
}

// ElicitSlot builds a non-terminal response asking the user to fill a slot,
// carrying the still-open intent and its current slots.
func ElicitSlot(slotToElicit, message, intentName string, slots map[string]*Slot) Response {
	return Response{
		SessionState: ResponseSessionState{
			DialogAction: DialogAction{Type: DialogActionElicitSlot, SlotToElicit: slotToElicit},
			Intent:       ResponseIntent{Name: intentName, Slots: slots, State: IntentStateInProgress},
		},
		Messages: []Message{{ContentType: contentTypePlainText, Content: message}},
	}
}

// Delegate defers the next step to the orchestrator. No decision rule emits
// it today; upstream bot configurations may still request it.
func Delegate(intentName string, slots map[string]*Slot) Response {
	return Response{
		SessionState: ResponseSessionState{
			DialogAction: DialogAction{Type: DialogActionDelegate},
			Intent:       ResponseIntent{Name: intentName, Slots: slots, State: IntentStateInProgress},
		},
	}
}
