package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"figurinha-studio/internal/domain"
	tokenrepo "figurinha-studio/internal/repository/token"
	"figurinha-studio/internal/service/notify"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned when email/password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken indicates the provided token could not be validated.
	ErrInvalidToken = errors.New("invalid token")
	// ErrEmailNotConfirmed is returned on login before the signup email was confirmed.
	ErrEmailNotConfirmed = errors.New("email not confirmed")
)

type userRepo interface {
	Create(ctx context.Context, u domain.User, fullName string) (*domain.User, *domain.Profile, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetProfile(ctx context.Context, id string) (*domain.Profile, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	ConfirmEmail(ctx context.Context, id string) error
}

type mailer interface {
	SendAuthEmail(ctx context.Context, e notify.AuthEmail) error
}

// Service handles signup, login, recovery and request authorization.
type Service struct {
	users       userRepo
	tokens      *tokenManager
	mailer      mailer
	access      *accessTokens
	signupTTL   time.Duration
	recoveryTTL time.Duration
	passwordMin int
}

// New creates a Service with sane defaults.
func New(users userRepo, tokens tokenrepo.Repository, mailer mailer, jwtSecret string) *Service {
	return &Service{
		users:       users,
		tokens:      newTokenManager(tokens),
		mailer:      mailer,
		access:      newAccessTokens([]byte(jwtSecret), 48*time.Hour),
		signupTTL:   24 * time.Hour,
		recoveryTTL: time.Hour,
		passwordMin: 8,
	}
}

type SignupInput struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	FullName   string `json:"fullName"`
	RedirectTo string `json:"redirectTo"`
}

// Session is returned by Login.
type Session struct {
	AccessToken string          `json:"accessToken"`
	TokenType   string          `json:"tokenType"`
	ExpiresIn   int             `json:"expiresIn"`
	Profile     *domain.Profile `json:"profile"`
}

// Signup registers a customer and sends the confirmation email.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*domain.Profile, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" {
		return nil, domain.Invalid("email required")
	}
	if !strings.Contains(email, "@") {
		return nil, domain.Invalid("email invalid")
	}
	password := strings.TrimSpace(in.Password)
	if err := validatePassword(password, s.passwordMin); err != nil {
		return nil, err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u, profile, err := s.users.Create(ctx, domain.User{Email: email, PasswordHash: string(hashed)}, in.FullName)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(ctx, u.ID, tokenrepo.KindSignup, s.signupTTL)
	if err != nil {
		return nil, err
	}
	if err := s.mailer.SendAuthEmail(ctx, notify.AuthEmail{
		To:         u.Email,
		Action:     notify.ActionSignup,
		Token:      token,
		RedirectTo: in.RedirectTo,
	}); err != nil {
		// the account exists; ResendConfirmation retries the email
		return nil, fmt.Errorf("send confirmation email: %w", err)
	}
	return profile, nil
}

// Login validates credentials and returns a signed access token plus the profile.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	password = strings.TrimSpace(password)
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if u.EmailConfirmedAt == nil {
		return nil, ErrEmailNotConfirmed
	}
	profile, err := s.users.GetProfile(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	token, err := s.access.Issue(profile.ID, profile.Role)
	if err != nil {
		return nil, err
	}
	return &Session{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   s.AccessTTLSeconds(),
		Profile:     profile,
	}, nil
}

// ConfirmEmail consumes a signup token.
func (s *Service) ConfirmEmail(ctx context.Context, token string) error {
	userID, err := s.tokens.Consume(ctx, strings.TrimSpace(token), tokenrepo.KindSignup)
	if err != nil {
		return err
	}
	return s.users.ConfirmEmail(ctx, userID)
}

// RequestRecovery sends a reset email when the account exists. Unknown emails succeed silently.
func (s *Service) RequestRecovery(ctx context.Context, email, redirectTo string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return domain.Invalid("email required")
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	token, err := s.tokens.Issue(ctx, u.ID, tokenrepo.KindRecovery, s.recoveryTTL)
	if err != nil {
		return err
	}
	return s.mailer.SendAuthEmail(ctx, notify.AuthEmail{
		To:         u.Email,
		Action:     notify.ActionRecovery,
		Token:      token,
		RedirectTo: redirectTo,
	})
}

// ResendConfirmation issues a fresh signup token for an unconfirmed account. Unknown and
// already confirmed emails succeed silently.
func (s *Service) ResendConfirmation(ctx context.Context, email, redirectTo string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return domain.Invalid("email required")
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	if u.EmailConfirmedAt != nil {
		return nil
	}
	token, err := s.tokens.Issue(ctx, u.ID, tokenrepo.KindSignup, s.signupTTL)
	if err != nil {
		return err
	}
	return s.mailer.SendAuthEmail(ctx, notify.AuthEmail{
		To:         u.Email,
		Action:     notify.ActionSignup,
		Token:      token,
		RedirectTo: redirectTo,
	})
}

// ResetPassword consumes a recovery token and stores the new password.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	password := strings.TrimSpace(newPassword)
	if err := validatePassword(password, s.passwordMin); err != nil {
		return err
	}
	userID, err := s.tokens.Consume(ctx, strings.TrimSpace(token), tokenrepo.KindRecovery)
	if err != nil {
		return err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, string(hashed)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	// the reset link proves mailbox ownership
	return s.users.ConfirmEmail(ctx, userID)
}

// AccessTTLSeconds exposes the access token lifetime in seconds.
func (s *Service) AccessTTLSeconds() int {
	return int(s.access.ttl.Seconds())
}

// maxPasswordBytes is the bcrypt input limit.
const maxPasswordBytes = 72

func validatePassword(p string, min int) error {
	trimmed := strings.TrimSpace(p)
	if len(trimmed) < min {
		return domain.Invalidf("password must be at least %d characters", min)
	}
	if len(trimmed) > maxPasswordBytes {
		return domain.Invalidf("password must be at most %d bytes", maxPasswordBytes)
	}
	hasUpper := false
	hasLower := false
	hasDigit := false
	for _, r := range trimmed {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return domain.Invalid("password must contain at least 1 uppercase letter, 1 lowercase letter, and 1 number")
	}
	return nil
}
