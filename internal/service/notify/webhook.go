package notify

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	svix "github.com/svix/svix-webhooks/go"
)

// ErrVerification is returned when a webhook signature or timestamp is rejected.
var ErrVerification = errors.New("webhook verification failed")

// Verifier checks Standard Webhooks signatures (webhook-id, webhook-timestamp, webhook-signature).
// Timestamps more than five minutes from now are rejected.
type Verifier struct {
	wh *svix.Webhook
}

// NewVerifier accepts secrets in the "v1,whsec_<base64>" or "whsec_<base64>" form.
func NewVerifier(secret string) (*Verifier, error) {
	s := strings.TrimPrefix(strings.TrimSpace(secret), "v1,")
	s = strings.TrimPrefix(s, "whsec_")
	if s == "" {
		return nil, errors.New("webhook secret required")
	}
	wh, err := svix.NewWebhook(s)
	if err != nil {
		return nil, fmt.Errorf("decode webhook secret: %w", err)
	}
	return &Verifier{wh: wh}, nil
}

// Sign returns the v1 signature header value for the given message.
func (v *Verifier) Sign(id string, ts time.Time, body []byte) (string, error) {
	return v.wh.Sign(id, ts, body)
}

// Verify checks the headers against body. Any listed v1 signature may match.
func (v *Verifier) Verify(h http.Header, body []byte) error {
	if err := v.wh.Verify(body, h); err != nil {
		return fmt.Errorf("%w: %v", ErrVerification, err)
	}
	return nil
}

// HookPayload is the body posted by the identity provider to the auth email hook.
type HookPayload struct {
	User struct {
		Email string `json:"email"`
	} `json:"user"`
	EmailData struct {
		Token           string `json:"token"`
		TokenHash       string `json:"token_hash"`
		RedirectTo      string `json:"redirect_to"`
		EmailActionType string `json:"email_action_type"`
	} `json:"email_data"`
}

// ParseHook verifies and decodes a webhook request body.
func (v *Verifier) ParseHook(h http.Header, body []byte) (AuthEmail, error) {
	if err := v.Verify(h, body); err != nil {
		return AuthEmail{}, err
	}
	var p HookPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return AuthEmail{}, fmt.Errorf("decode hook payload: %w", err)
	}
	return AuthEmail{
		To:         p.User.Email,
		Action:     p.EmailData.EmailActionType,
		Token:      p.EmailData.Token,
		TokenHash:  p.EmailData.TokenHash,
		RedirectTo: p.EmailData.RedirectTo,
	}, nil
}
