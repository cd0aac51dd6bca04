package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"strings"
)

const (
	ActionSignup   = "signup"
	ActionRecovery = "recovery"
)

// ErrUnknownAction is returned for email action types without a template.
var ErrUnknownAction = errors.New("unknown email action type")

// AuthEmail is one identity email request, either from the in-process identity
// service or from the auth webhook.
type AuthEmail struct {
	To         string
	Action     string
	Token      string
	TokenHash  string
	RedirectTo string
}

// Message is a rendered email ready for delivery.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// Sender delivers rendered messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type Service struct {
	sender  Sender
	from    string
	siteURL string
	logger  *log.Logger
}

func New(sender Sender, from, siteURL string, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{sender: sender, from: from, siteURL: strings.TrimRight(siteURL, "/"), logger: logger}
}

// SendAuthEmail renders the template for the action and delivers it.
func (s *Service) SendAuthEmail(ctx context.Context, e AuthEmail) error {
	if strings.TrimSpace(e.To) == "" {
		return errors.New("recipient required")
	}
	msg, err := s.Render(e)
	if err != nil {
		return err
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		s.logger.Printf("notify: send action=%s to=%s error=%v", e.Action, e.To, err)
		return fmt.Errorf("send email: %w", err)
	}
	s.logger.Printf("notify: sent action=%s to=%s", e.Action, e.To)
	return nil
}

// Render builds the message for an auth email without sending it.
func (s *Service) Render(e AuthEmail) (Message, error) {
	tpl, ok := templates[e.Action]
	if !ok {
		return Message{}, fmt.Errorf("%w: %q", ErrUnknownAction, e.Action)
	}
	hash := e.TokenHash
	if hash == "" {
		hash = e.Token
	}
	data := templateData{
		ActionURL: s.actionURL(hash, e.Action, e.RedirectTo),
		Token:     e.Token,
	}
	var buf bytes.Buffer
	if err := tpl.body.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("render %s email: %w", e.Action, err)
	}
	return Message{From: s.from, To: e.To, Subject: tpl.subject, HTML: buf.String()}, nil
}

func (s *Service) actionURL(tokenHash, action, redirectTo string) string {
	q := url.Values{}
	q.Set("token", tokenHash)
	q.Set("type", action)
	if redirectTo != "" {
		q.Set("redirect_to", redirectTo)
	}
	return s.siteURL + "/auth/verify?" + q.Encode()
}
