// Package lex holds the wire shapes exchanged with the Lex V2 runtime: the
// inbound fulfillment event and the outbound dialog response.
package lex

import "strings"

// Confirmation signals carried on the inbound intent.
const (
	ConfirmationConfirmed = "Confirmed"
	ConfirmationDenied    = "Denied"
)

// Event is the inbound fulfillment event. Only the fields the engine reads
// are modeled; everything else in the payload is ignored.
type Event struct {
	InputTranscript string                `json:"inputTranscript"`
	InputText       string                `json:"inputText"`
	SessionID       string                `json:"sessionId"`
	SessionState    EventSessionState     `json:"sessionState"`
	Interpretations []EventInterpretation `json:"interpretations"`
}

type EventSessionState struct {
	Intent EventIntent `json:"intent"`
}

type EventIntent struct {
	Name              string           `json:"name"`
	Slots             map[string]*Slot `json:"slots"`
	ConfirmationState string           `json:"confirmationState"`
}

// Slot is a filled (or empty) slot on the inbound intent. A nil Slot or nil
// Value means the slot was never filled.
type Slot struct {
	Value *SlotValue `json:"value,omitempty"`
}

type SlotValue struct {
	InterpretedValue string `json:"interpretedValue"`
}

type EventInterpretation struct {
	NLUConfidence *NLUConfidence `json:"nluConfidence,omitempty"`
}

type NLUConfidence struct {
	Score float64 `json:"score"`
}

// Text returns the user utterance, preferring the transcript field, trimmed.
func (e Event) Text() string {
	if t := strings.TrimSpace(e.InputTranscript); t != "" {
		return t
	}
	return strings.TrimSpace(e.InputText)
}

// IntentName returns the interpreted intent name, if any.
func (e Event) IntentName() string {
	return e.SessionState.Intent.Name
}

// ConfirmationState returns the inbound confirmation signal, or "" if absent.
func (e Event) ConfirmationState() string {
	return e.SessionState.Intent.ConfirmationState
}

// Slots returns the inbound slot map (possibly nil).
func (e Event) Slots() map[string]*Slot {
	return e.SessionState.Intent.Slots
}

// SlotValue returns the interpreted value of a named slot and whether the
// slot was filled.
func (e Event) SlotValue(name string) (string, bool) {
	s, ok := e.SessionState.Intent.Slots[name]
	if !ok || s == nil || s.Value == nil {
		return "", false
	}
	return s.Value.InterpretedValue, true
}

// Confidence returns the upstream interpreter's confidence score when one was
// supplied. The engine passes the value through untouched.
func (e Event) Confidence() (float64, bool) {
	if len(e.Interpretations) == 0 || e.Interpretations[0].NLUConfidence == nil {
		return 0, false
	}
	return e.Interpretations[0].NLUConfidence.Score, true
}
