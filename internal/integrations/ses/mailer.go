// Package ses sends escalation notifications to the support inbox over
// Amazon SES.
package ses

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// sesAPI is the minimal AWS SES interface required by Mailer.
// *sesv2.Client from aws-sdk-go-v2 satisfies this interface.
type sesAPI interface {
	SendEmail(ctx context.Context, in *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

type Getter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// Mailer sends escalation emails. The source and support addresses are
// fetched from SSM on the first Send and reused for the lifetime of the
// process.
type Mailer struct {
	api         sesAPI
	getter      Getter
	paramPrefix string

	cfgOnce sync.Once
	source  string
	support string
	cfgErr  error
}

// NewMailer creates a Mailer backed by the given paramstore Getter for
// address configuration.
func NewMailer(api sesAPI, ps Getter, paramPrefix string) (*Mailer, error) {
	if api == nil {
		return nil, errors.New("ses: api must not be nil")
	}
	if ps == nil {
		return nil, errors.New("ses: paramstore getter must not be nil")
	}
	paramPrefix = strings.TrimRight(strings.TrimSpace(paramPrefix), "/")
	if paramPrefix == "" {
		return nil, errors.New("ses: parameter prefix must not be empty")
	}
	return &Mailer{api: api, getter: ps, paramPrefix: paramPrefix}, nil
}

// Send mails the transcript to the support inbox. It reports delivery as a
// boolean; callers treat a false return and an error the same way.
func (m *Mailer) Send(ctx context.Context, transcript, sessionID, subjectTag string) (bool, error) {
	if err := m.ensureConfig(ctx); err != nil {
		return false, fmt.Errorf("ses: load addresses: %w", err)
	}

	subject := fmt.Sprintf("AssistIQ Escalation: %s (Session %s)", subjectTag, sessionID)
	body := fmt.Sprintf(
		"AssistIQ Escalation Notification\n\n"+
			"Session ID: %s\n"+
			"Timestamp: %s\n"+
			"Issue Type: %s\n\n"+
			"Conversation Transcript:\n%s\n\n"+
			"Please review and take appropriate action.",
		sessionID,
		time.Now().UTC().Format("2006-01-02 15:04:05 UTC"),
		subjectTag,
		transcript,
	)

	out, err := m.api.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.source),
		Destination:      &types.Destination{ToAddresses: []string{m.support}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body:    &types.Body{Text: &types.Content{Data: aws.String(body)}},
			},
		},
	})
	if err != nil {
		return false, fmt.Errorf("ses: send email: %w", err)
	}
	return out != nil && out.MessageId != nil && *out.MessageId != "", nil
}

func (m *Mailer) ensureConfig(ctx context.Context) error {
	m.cfgOnce.Do(func() {
		source, err := m.getter.GetParameter(ctx, m.paramPrefix+"/source_email")
		if err != nil {
			m.cfgErr = err
			return
		}
		support, err := m.getter.GetParameter(ctx, m.paramPrefix+"/support_email")
		if err != nil {
			m.cfgErr = err
			return
		}
		m.source = source
		m.support = support
	})
	return m.cfgErr
}
