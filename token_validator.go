package pitwall

import (
	"github.com/goliatone/go-router"
	"github.com/pitwall/pitwall/middleware/jwtware"
)

// TokenValidator validates tokens and extracts claims without tying callers
// to a specific signing implementation.
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// TokenValidatorFunc adapts a function into a TokenValidator.
type TokenValidatorFunc func(tokenString string) (AuthClaims, error)

// Validate satisfies the TokenValidator interface.
func (f TokenValidatorFunc) Validate(tokenString string) (AuthClaims, error) {
	if f == nil {
		return nil, ErrTokenMalformed
	}
	return f(tokenString)
}

// MiddlewareTokenValidator bridges a TokenValidator into the contract the
// JWT middleware expects.
type MiddlewareTokenValidator struct {
	validator TokenValidator
}

func NewMiddlewareTokenValidator(validator TokenValidator) *MiddlewareTokenValidator {
	return &MiddlewareTokenValidator{validator: validator}
}

// Validate satisfies the jwtware.TokenValidator interface.
func (m *MiddlewareTokenValidator) Validate(tokenString string) (jwtware.AuthClaims, error) {
	if m.validator == nil {
		return nil, ErrTokenMalformed
	}

	claims, err := m.validator.Validate(tokenString)
	if err != nil {
		return nil, err
	}

	return claims, nil
}

// ProtectedRoute guards a route with bearer token validation. A nil
// errorHandler keeps the middleware defaults: 400 for missing tokens and
// 401 for anything that fails validation.
func ProtectedRoute(cfg Config, validator TokenValidator, errorHandler router.ErrorHandler) router.MiddlewareFunc {
	return jwtware.New(jwtware.Config{
		ErrorHandler: errorHandler,
		SigningKey: jwtware.SigningKey{
			Key:    []byte(cfg.GetSigningKey()),
			JWTAlg: "HS256",
		},
		TokenValidator: NewMiddlewareTokenValidator(validator),
	})
}
