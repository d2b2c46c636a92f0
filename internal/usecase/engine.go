package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"assistiq/internal/domain"
	"assistiq/internal/lex"
)

// Well-known intent ids the engine treats specially.
const (
	greetingIntentID = "GreetingIntent"
	thanksIntentID   = "ThanksIntent"
	fallbackIntentID = "FallbackIntent"

	// unknownIntentName is the sentinel logged when a confirmation arrives
	// with no intent in flight.
	unknownIntentName = "UnknownIntent"

	confirmSlotName = "confirm"
)

// Canned response text.
const (
	msgCancelled       = "Okay — I have cancelled that request. Let me know if you need anything else."
	msgConfirmYesNo    = "Please reply with yes or no."
	msgProcessed       = "I have processed your request."
	msgEmptyInput      = "Sorry, I didn't get that. Could you say it again?"
	msgGreetingDefault = "Hello!"
	msgThanksDefault   = "You're welcome!"
	msgFallbackDefault = "I couldn't understand that. Escalating to IT."

	suffixEscalated        = " Your request has been forwarded to IT."
	suffixEscalationFailed = " (Escalation failed, please contact IT directly.)"
)

var affirmatives = map[string]bool{
	"yes": true, "yeah": true, "yep": true, "sure": true, "ok": true, "okay": true,
}

var negatives = map[string]bool{
	"no": true, "nah": true, "nope": true, "cancel": true, "stop": true,
}

var greetings = map[string]bool{"hi": true, "hello": true, "hey": true}

var thanksPhrases = map[string]bool{"thanks": true, "thank you": true, "thx": true}

// IntentStore is the read-only knowledge base of intent definitions.
type IntentStore interface {
	Get(ctx context.Context, id string) (domain.IntentDefinition, bool, error)
	FindAnswerByKeyword(ctx context.Context, text string) (string, bool, error)
}

// SessionStore holds per-conversation state across turns.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (domain.SessionState, error)
	Put(ctx context.Context, sessionID string, state domain.SessionState) error
	Delete(ctx context.Context, sessionID string) error
}

// TurnLog is the append-only conversation audit trail.
type TurnLog interface {
	Append(ctx context.Context, rec domain.TurnRecord) error
	History(ctx context.Context, sessionID string) ([]domain.TurnRecord, error)
}

// Escalator forwards a transcript to a human channel.
type Escalator interface {
	Send(ctx context.Context, transcript, sessionID, subjectTag string) (bool, error)
}

// Engine decides the outcome of one conversation turn. It is stateless
// between turns; all cross-turn state lives in the session store.
//
// Concurrent turns for the same session id race on the session
// read-modify-write: a pending-confirmation write can be clobbered by a
// rapid double-submit. The store offers no conditional write, so this is an
// accepted risk surface rather than something the engine locks around.
type Engine struct {
	intents   IntentStore
	sessions  SessionStore
	turns     TurnLog
	escalator Escalator

	escalateOnFulfillment bool
	keywordFallback       bool
}

type EngineOption func(*Engine)

// WithEscalateOnFulfillment controls whether every non-exempt fulfillment
// forwards the transcript to support. Defaults to true; the narrower policy
// escalates only on fallback.
func WithEscalateOnFulfillment(enabled bool) EngineOption {
	return func(e *Engine) { e.escalateOnFulfillment = enabled }
}

// WithKeywordFallback enables the legacy keyword scan: before escalating an
// unrecognized utterance, the knowledge base is searched for a q_keywords
// substring hit and its answer returned without escalation.
func WithKeywordFallback(enabled bool) EngineOption {
	return func(e *Engine) { e.keywordFallback = enabled }
}

// NewEngine creates an Engine with its external collaborators injected.
func NewEngine(intents IntentStore, sessions SessionStore, turns TurnLog, escalator Escalator, opts ...EngineOption) (*Engine, error) {
	if intents == nil {
		return nil, errors.New("usecase: intent store must not be nil")
	}
	if sessions == nil {
		return nil, errors.New("usecase: session store must not be nil")
	}
	if turns == nil {
		return nil, errors.New("usecase: turn log must not be nil")
	}
	if escalator == nil {
		return nil, errors.New("usecase: escalator must not be nil")
	}
	e := &Engine{
		intents:               intents,
		sessions:              sessions,
		turns:                 turns,
		escalator:             escalator,
		escalateOnFulfillment: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// HandleTurn evaluates the ordered rule set for one inbound turn and returns
// the dialog response. The rules are tried top to bottom; the first match
// wins. External failures degrade to generic replies, so a response is
// always produced.
func (e *Engine) HandleTurn(ctx context.Context, ev lex.Event) lex.Response {
	userText := ev.Text()
	sessionID := strings.TrimSpace(ev.SessionID)
	if sessionID == "" {
		sessionID = newUUID()
	}
	intentName := ev.IntentName()

	state, err := e.sessions.Get(ctx, sessionID)
	if err != nil {
		slog.Warn("session load failed, proceeding with empty state", "session_id", sessionID, "err", err)
		state = domain.SessionState{}
	}

	// Rule 1: inbound confirmation signal.
	switch ev.ConfirmationState() {
	case lex.ConfirmationDenied:
		return e.cancel(ctx, sessionID, userText, intentName)
	case lex.ConfirmationConfirmed:
		return e.fulfill(ctx, sessionID, userText, intentName)
	}

	// Rule 2: explicit confirm slot from mid-elicitation turns.
	if value, filled := ev.SlotValue(confirmSlotName); filled {
		interpreted := strings.ToLower(strings.TrimSpace(value))
		switch {
		case affirmatives[interpreted]:
			return e.fulfill(ctx, sessionID, userText, intentName)
		case negatives[interpreted]:
			return e.cancel(ctx, sessionID, userText, intentName)
		default:
			e.logTurn(ctx, sessionID, userText, orUnknown(intentName), 0.0, msgConfirmYesNo)
			return lex.ElicitSlot(confirmSlotName, msgConfirmYesNo, intentName, ev.Slots())
		}
	}

	// Rule 3: nothing was said.
	if userText == "" {
		e.logTurn(ctx, sessionID, userText, fallbackIntentID, 0.0, msgEmptyInput)
		return lex.Close(fallbackIntentID, msgEmptyInput)
	}

	// Rule 4: small talk.
	lowered := strings.ToLower(userText)
	if greetings[lowered] {
		return e.smallTalk(ctx, sessionID, userText, greetingIntentID, msgGreetingDefault)
	}
	if thanksPhrases[lowered] {
		return e.smallTalk(ctx, sessionID, userText, thanksIntentID, msgThanksDefault)
	}

	// Rule 5: a confirmation is pending from a previous turn; read the raw
	// text as the answer.
	if state.IsAwaitingConfirmation() {
		switch {
		case affirmatives[lowered]:
			return e.fulfill(ctx, sessionID, userText, state.IntentID)
		case negatives[lowered]:
			e.logTurn(ctx, sessionID, userText, state.IntentID, 1.0, msgCancelled)
			e.clearSession(ctx, sessionID)
			return lex.Close(state.IntentID, msgCancelled)
		default:
			prompt := state.ConfirmationPrompt
			if prompt == "" {
				prompt = msgConfirmYesNo
			}
			// The session is left untouched so the next turn sees it again.
			return lex.Close(fallbackIntentID, prompt)
		}
	}

	// Rule 7: first contact with a known intent.
	if intentName != "" {
		def, found := e.lookupIntent(ctx, intentName)
		if found {
			if def.RequiresConfirmation() {
				err := e.sessions.Put(ctx, sessionID, domain.SessionState{
					AwaitingConfirmation: true,
					IntentID:             def.ID,
					ConfirmationPrompt:   def.Confirmation,
				})
				if err != nil {
					slog.Warn("session write failed", "session_id", sessionID, "err", err)
				}
				e.logTurn(ctx, sessionID, userText, def.ID, 1.0, def.Confirmation)
				return lex.ElicitSlot(confirmSlotName, def.Confirmation, def.ID, ev.Slots())
			}
			return e.fulfill(ctx, sessionID, userText, def.ID)
		}
	}

	// Rule 8: fallback.
	return e.fallback(ctx, sessionID, userText, ev)
}

// fulfill is the shared terminal path for confirmed or confirmation-free
// intents (rule 6).
func (e *Engine) fulfill(ctx context.Context, sessionID, userText, intentID string) lex.Response {
	name := orFallback(intentID)

	reply := msgProcessed
	if def, found := e.lookupIntent(ctx, name); found {
		reply = joinReply(def.Fulfillment, def.ClosingResponse)
	}

	// The turn record must exist before any escalation attempt.
	e.logTurn(ctx, sessionID, userText, name, 1.0, reply)

	if e.escalateOnFulfillment && !IsEscalationExempt(name) {
		e.escalate(ctx, sessionID, name)
	}

	e.clearSession(ctx, sessionID)
	return lex.Close(name, reply)
}

// cancel is the shared terminal path for denied or negative confirmations.
func (e *Engine) cancel(ctx context.Context, sessionID, userText, intentName string) lex.Response {
	e.logTurn(ctx, sessionID, userText, orUnknown(intentName), 1.0, msgCancelled)
	e.clearSession(ctx, sessionID)
	return lex.Close(orFallback(intentName), msgCancelled)
}

func (e *Engine) smallTalk(ctx context.Context, sessionID, userText, intentID, defaultReply string) lex.Response {
	reply := defaultReply
	if def, found := e.lookupIntent(ctx, intentID); found {
		if text := firstNonEmpty(def.Fulfillment, def.InitialResponse); text != "" {
			reply = text
		}
	}
	e.logTurn(ctx, sessionID, userText, intentID, 1.0, reply)
	return lex.Close(intentID, reply)
}

func (e *Engine) fallback(ctx context.Context, sessionID, userText string, ev lex.Event) lex.Response {
	if e.keywordFallback {
		answer, found, err := e.intents.FindAnswerByKeyword(ctx, userText)
		if err != nil {
			slog.Warn("keyword scan failed", "session_id", sessionID, "err", err)
		} else if found {
			confidence, _ := ev.Confidence()
			e.logTurn(ctx, sessionID, userText, orFallback(ev.IntentName()), confidence, answer)
			return lex.Close(orFallback(ev.IntentName()), answer)
		}
	}

	reply := msgFallbackDefault
	if def, found := e.lookupIntent(ctx, fallbackIntentID); found && def.InitialResponse != "" {
		reply = def.InitialResponse
	}

	e.logTurn(ctx, sessionID, userText, fallbackIntentID, 0.0, reply)

	if e.escalate(ctx, sessionID, fallbackIntentID) {
		reply += suffixEscalated
	} else {
		reply += suffixEscalationFailed
	}

	e.clearSession(ctx, sessionID)
	return lex.Close(fallbackIntentID, reply)
}

// lookupIntent treats both an absent record and an unreachable store as "not
// found"; neither surfaces to the user.
func (e *Engine) lookupIntent(ctx context.Context, id string) (domain.IntentDefinition, bool) {
	def, found, err := e.intents.Get(ctx, id)
	if err != nil {
		slog.Warn("intent lookup failed", "intent_id", id, "err", err)
		return domain.IntentDefinition{}, false
	}
	return def, found
}

// escalate fetches the conversation history and forwards it to the human
// channel. Delivery is fire-and-forget; failure only matters to the caller
// as a boolean.
func (e *Engine) escalate(ctx context.Context, sessionID, subjectTag string) bool {
	recs, err := e.turns.History(ctx, sessionID)
	if err != nil {
		slog.Warn("history fetch failed", "session_id", sessionID, "err", err)
	}
	delivered, err := e.escalator.Send(ctx, FormatTranscript(recs), sessionID, subjectTag)
	if err != nil {
		slog.Warn("escalation send failed", "session_id", sessionID, "err", err)
		return false
	}
	return delivered
}

func (e *Engine) logTurn(ctx context.Context, sessionID, userText, intentName string, confidence float64, botReply string) {
	rec := domain.TurnRecord{
		ID:         newUUID(),
		SessionID:  sessionID,
		Timestamp:  time.Now().UTC().Format(time.RFC3339Nano),
		UserText:   userText,
		IntentName: intentName,
		Confidence: confidence,
		BotReply:   botReply,
	}
	if err := e.turns.Append(ctx, rec); err != nil {
		slog.Warn("turn log append failed", "session_id", sessionID, "err", err)
	}
}

func (e *Engine) clearSession(ctx context.Context, sessionID string) {
	if err := e.sessions.Delete(ctx, sessionID); err != nil {
		slog.Warn("session clear failed", "session_id", sessionID, "err", err)
	}
}

// joinReply composes the terminal reply from the definition's fulfillment
// and closing text, either of which may be absent.
func joinReply(fulfillment, closing string) string {
	return strings.TrimSpace(fulfillment + "\n\n" + closing)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// orFallback supplies the fallback id where the protocol requires a
// non-empty intent name.
func orFallback(intentName string) string {
	if intentName == "" {
		return fallbackIntentID
	}
	return intentName
}

func orUnknown(intentName string) string {
	if intentName == "" {
		return unknownIntentName
	}
	return intentName
}

var newUUID = func() string {
	return uuid.NewString()
}
