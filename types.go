package pitwall

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetTokenExpiration() int
	GetIssuer() string
	GetAudience() []string
}

// IdentityStore is the persistence boundary for user records and
// credential verification. Lookups return ErrUserNotFound when no record
// matches; callers never receive a nil user alongside a nil error.
type IdentityStore interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	CreateUser(ctx context.Context, email, name, password string) (*User, error)
	CheckPassword(ctx context.Context, user *User, password string) bool
	GenerateConfirmationCode(ctx context.Context, user *User) (string, error)
	ConfirmEmail(ctx context.Context, user *User, code string) (bool, error)
}

// Notifier delivers the confirmation email out-of-band. Send is
// best-effort; a false return never fails the calling operation.
type Notifier interface {
	Send(ctx context.Context, body, toAddress string) bool
}

// TokenIssuer mints signed tokens for an authenticated user
type TokenIssuer interface {
	Generate(user *User) (string, error)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
