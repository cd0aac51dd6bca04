package notify

import (
	"context"
	"errors"

	"github.com/resend/resend-go/v2"
)

// ResendSender delivers messages through the Resend API.
type ResendSender struct {
	client *resend.Client
}

func NewResendSender(apiKey string) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey)}
}

func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	resp, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	if err != nil {
		return err
	}
	if resp == nil || resp.Id == "" {
		return errors.New("resend: empty response")
	}
	return nil
}

// LogSender writes messages to the logger instead of sending them. Used when no API key is configured.
type LogSender struct {
	Logger interface {
		Printf(format string, v ...interface{})
	}
}

func (s LogSender) Send(_ context.Context, msg Message) error {
	if s.Logger != nil {
		s.Logger.Printf("notify: no email provider configured, to=%s subject=%q", msg.To, msg.Subject)
	}
	return nil
}
