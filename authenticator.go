package pitwall

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// AuthResult is the response envelope for the authentication endpoints.
// On failure errors is non-empty and token absent; on success errors is
// empty and token present only for login.
type AuthResult struct {
	Success bool     `json:"success"`
	Token   string   `json:"token,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// FailureResult translates a service error into the AuthResult envelope
func FailureResult(err error) *AuthResult {
	return &AuthResult{
		Success: false,
		Errors:  messagesForError(err),
	}
}

// SuccessResult wraps an issued token
func SuccessResult(token string) *AuthResult {
	return &AuthResult{
		Success: true,
		Token:   token,
	}
}

// RegistrationRequest is the transient register input
type RegistrationRequest struct {
	Email    string
	Password string
	Name     string
}

// LoginRequest is the transient login input
type LoginRequest struct {
	Email    string
	Password string
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	Register(ctx context.Context, req RegistrationRequest) (string, error)
	ConfirmEmail(ctx context.Context, userID, code string) (string, error)
	Login(ctx context.Context, req LoginRequest) (string, error)
	IssueToken(user *User) (string, error)
}

// Auther implements Authenticator on top of an IdentityStore and a
// best-effort Notifier. It keeps no per-request state; every method is
// safe for concurrent use.
type Auther struct {
	store          IdentityStore
	notifier       Notifier
	tokenService   TokenService
	logger         Logger
	confirmBaseURL string
}

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator returns a new Auther
func NewAuthenticator(store IdentityStore, notifier Notifier, opts Config) *Auther {
	if notifier == nil {
		notifier = noopNotifier{}
	}

	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenExpiration(),
		opts.GetIssuer(),
		opts.GetAudience(),
		defLogger{},
	)

	return &Auther{
		store:        store,
		notifier:     notifier,
		tokenService: tokenService,
		logger:       defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithTokenService swaps the token service, e.g. for externally managed keys
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		s.tokenService = ts
	}
	return s
}

// WithConfirmationBaseURL sets the public base URL used to build the
// confirmation link embedded in the registration email.
func (s *Auther) WithConfirmationBaseURL(base string) *Auther {
	s.confirmBaseURL = strings.TrimRight(base, "/")
	return s
}

// TokenService returns the TokenService instance used by this Auther
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Register creates an unconfirmed user and triggers one confirmation
// email attempt. The returned message depends on whether the email went
// out, but a failed send never fails the registration: the user row is
// already committed by then.
func (s *Auther) Register(ctx context.Context, req RegistrationRequest) (string, error) {
	if req.Email == "" || req.Password == "" {
		return "", ErrInvalidRequest
	}

	existing, err := s.store.FindByEmail(ctx, req.Email)
	if err != nil && !isNotFound(err) {
		s.logger.Error("Register duplicate pre-check failed: %s", err)
		return "", err
	}
	if existing != nil {
		return "", ErrUserExists
	}

	user, err := s.store.CreateUser(ctx, req.Email, req.Name, req.Password)
	if err != nil {
		s.logger.Error("Register create user failed for %s: %s", req.Email, err)
		return "", err
	}

	code, err := s.store.GenerateConfirmationCode(ctx, user)
	if err != nil {
		// the user exists; they can request a fresh link later
		s.logger.Error("Register confirmation code generation failed for %s: %s", user.ID, err)
		return MsgRequestNewLink, nil
	}

	if s.notifier.Send(ctx, s.confirmationEmailBody(user, code), user.Email) {
		return MsgConfirmEmailSent, nil
	}

	s.logger.Warn("Register confirmation email delivery failed for %s", user.ID)
	return MsgRequestNewLink, nil
}

// ConfirmEmail consumes a confirmation code for the given user. Rejected
// codes produce a single generic message regardless of why.
func (s *Auther) ConfirmEmail(ctx context.Context, userID, code string) (string, error) {
	if userID == "" || code == "" {
		return "", ErrInvalidConfirmation
	}

	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return "", ErrUserNotFound
		}
		s.logger.Error("ConfirmEmail lookup failed for %s: %s", userID, err)
		return "", err
	}

	ok, err := s.store.ConfirmEmail(ctx, user, code)
	if err != nil {
		s.logger.Error("ConfirmEmail store confirmation failed for %s: %s", userID, err)
		return "", err
	}

	if !ok {
		return MsgEmailConfirmRejected, nil
	}

	return MsgEmailConfirmed, nil
}

// Login verifies credentials and issues a token. Unknown users and wrong
// passwords collapse into the same error; the confirmation gate is
// checked before the password so unconfirmed users get actionable
// feedback without a credential oracle.
func (s *Auther) Login(ctx context.Context, req LoginRequest) (string, error) {
	if req.Email == "" || req.Password == "" {
		return "", ErrInvalidRequest
	}

	user, err := s.store.FindByEmail(ctx, req.Email)
	if err != nil {
		if isNotFound(err) {
			return "", ErrMismatchedHashAndPassword
		}
		s.logger.Error("Login lookup failed: %s", err)
		return "", err
	}

	if !user.EmailConfirmed {
		return "", ErrEmailNotConfirmed
	}

	if !s.store.CheckPassword(ctx, user, req.Password) {
		return "", ErrMismatchedHashAndPassword
	}

	return s.IssueToken(user)
}

// IssueToken mints a signed token for an already authenticated user
func (s *Auther) IssueToken(user *User) (string, error) {
	token, err := s.tokenService.Generate(user)
	if err != nil {
		s.logger.Error("IssueToken signing failed: %s", err)
		return "", err
	}
	return token, nil
}

func (s *Auther) confirmationEmailBody(user *User, code string) string {
	callback := fmt.Sprintf(
		"%s/Authentication/ConfirmEmail?userId=%s&code=%s",
		s.confirmBaseURL,
		url.QueryEscape(user.ID.String()),
		url.QueryEscape(code),
	)

	return fmt.Sprintf(
		`Please confirm your email by clicking on the link below: <a href=%q>Confirm Email</a>`,
		callback,
	)
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	return goerrors.IsNotFound(err)
}

type noopNotifier struct{}

func (noopNotifier) Send(ctx context.Context, body, toAddress string) bool {
	return false
}
