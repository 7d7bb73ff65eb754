package pitwall

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeInvalidRequest      = "INVALID_REQUEST"
	TextCodeUserExists          = "USER_ALREADY_EXISTS"
	TextCodeInvalidCreds        = "INVALID_CREDENTIALS"
	TextCodeEmailNotConfirmed   = "EMAIL_NOT_CONFIRMED"
	TextCodeInvalidConfirmation = "INVALID_CONFIRMATION_URL"
	TextCodeUserNotFound        = "INVALID_EMAIL_PARAMETERS"
	TextCodeEmptyPassword       = "EMPTY_PASSWORD"
	TextCodeTokenExpired        = "TOKEN_EXPIRED"
	TextCodeTokenMalformed      = "TOKEN_MALFORMED"
)

// ErrInvalidRequest is returned for payloads that fail shape validation
var ErrInvalidRequest = goerrors.New("invalid request payload", goerrors.CategoryValidation).
	WithTextCode(TextCodeInvalidRequest)

// ErrUserExists is returned when registering an email that already has an account
var ErrUserExists = goerrors.New("a user with that email already exists", goerrors.CategoryConflict).
	WithTextCode(TextCodeUserExists)

// ErrMismatchedHashAndPassword covers both unknown users and wrong
// passwords; the two must stay indistinguishable to callers.
var ErrMismatchedHashAndPassword = goerrors.New("the credentials provided are invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds)

// ErrEmailNotConfirmed blocks login until the confirmation code is consumed
var ErrEmailNotConfirmed = goerrors.New("email address has not been confirmed", goerrors.CategoryAuth).
	WithTextCode(TextCodeEmailNotConfirmed)

// ErrInvalidConfirmation is returned for malformed confirmation requests
var ErrInvalidConfirmation = goerrors.New("invalid email confirmation url", goerrors.CategoryValidation).
	WithTextCode(TextCodeInvalidConfirmation)

// ErrUserNotFound is the explicit not-found signal for identity lookups
var ErrUserNotFound = goerrors.New("user not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound)

// ErrNoEmptyString rejects empty passwords before they reach bcrypt
var ErrNoEmptyString = goerrors.New("password must not be empty", goerrors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword)

// ErrTokenExpired is returned when validating a token past its expiry
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired)

// ErrTokenMalformed is returned for tokens that fail parsing or signature checks
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed)

// User-facing response strings. These are part of the HTTP contract and
// deliberately collapse failure detail (credential and confirmation
// failures must not leak which check failed).
const (
	MsgInvalidRequest       = "Invalid Request"
	MsgUserExists           = "User Already Exists"
	MsgInvalidCredentials   = "Invalid Credentials"
	MsgConfirmYourEmail     = "Please confirm your email"
	MsgInvalidConfirmation  = "Invalid Email confirmation url"
	MsgInvalidEmailParams   = "Invalid Email parameters"
	MsgConfirmEmailSent     = "Please confirm the email"
	MsgRequestNewLink       = "Please request an email verification link"
	MsgEmailConfirmed       = "Thank you for confirming the email"
	MsgEmailConfirmRejected = "Your email is not confirmed, please try again later"
	MsgInvalidID            = "Invalid Id"
)

// messagesForError flattens the internal error taxonomy into the ordered
// list of user-visible strings carried by an AuthResult. Store creation
// failures surface their reasons verbatim; everything else maps to a
// fixed message.
func messagesForError(err error) []string {
	if err == nil {
		return nil
	}

	if reasons := CreationReasons(err); len(reasons) > 0 {
		return reasons
	}

	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return []string{MsgInvalidRequest}
	}

	switch richErr.TextCode {
	case TextCodeInvalidRequest:
		return []string{MsgInvalidRequest}
	case TextCodeUserExists:
		return []string{MsgUserExists}
	case TextCodeInvalidCreds:
		return []string{MsgInvalidCredentials}
	case TextCodeEmailNotConfirmed:
		return []string{MsgConfirmYourEmail}
	case TextCodeInvalidConfirmation:
		return []string{MsgInvalidConfirmation}
	case TextCodeUserNotFound:
		return []string{MsgInvalidEmailParams}
	default:
		return []string{MsgInvalidRequest}
	}
}

// NewCreationError wraps store-reported rejection reasons so they can be
// surfaced verbatim through Register.
func NewCreationError(reasons ...string) error {
	return goerrors.New("user creation rejected", goerrors.CategoryValidation).
		WithTextCode(TextCodeInvalidRequest).
		WithMetadata(map[string]any{"reasons": reasons})
}

// CreationReasons extracts the verbatim rejection list from a creation
// error, or nil when err carries none.
func CreationReasons(err error) []string {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return nil
	}

	raw, ok := richErr.Metadata["reasons"]
	if !ok {
		return nil
	}

	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}

	return nil
}
