package pitwall

import (
	"context"
	"strings"
	"unicode"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// StoreAdapter implements IdentityStore over the repository layer. It owns
// password hashing and the creation policy; the authentication service
// never touches storage or credentials directly.
type StoreAdapter struct {
	repo   RepositoryManager
	logger Logger
}

var _ IdentityStore = (*StoreAdapter)(nil)

// NewStoreAdapter will create a new StoreAdapter
func NewStoreAdapter(repo RepositoryManager) *StoreAdapter {
	return &StoreAdapter{
		repo:   repo,
		logger: defLogger{},
	}
}

func (s *StoreAdapter) WithLogger(l Logger) *StoreAdapter {
	if l != nil {
		s.logger = l
	}
	return s
}

func (s *StoreAdapter) FindByEmail(ctx context.Context, email string) (*User, error) {
	user, err := s.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user by email")
	}
	return user, nil
}

func (s *StoreAdapter) FindByID(ctx context.Context, id string) (*User, error) {
	user, err := s.repo.Users().GetByID(ctx, id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user by id")
	}
	return user, nil
}

// CreateUser validates the password policy, hashes the credential, and
// persists a new unconfirmed user. Policy rejections carry their reasons
// so Register can surface them verbatim.
func (s *StoreAdapter) CreateUser(ctx context.Context, email, name, password string) (*User, error) {
	if reasons := passwordPolicyViolations(password); len(reasons) > 0 {
		return nil, NewCreationError(reasons...)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	user := &User{
		Name:         name,
		Email:        strings.TrimSpace(email),
		PasswordHash: hash,
	}

	user, err = s.repo.Users().Register(ctx, user)
	if err != nil {
		// a concurrent registration may beat the duplicate pre-check;
		// the unique index is the authoritative guard
		if isUniqueViolation(err) {
			return nil, ErrUserExists
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
	}

	return user, nil
}

// CheckPassword verifies the credential, never comparing plaintext
func (s *StoreAdapter) CheckPassword(ctx context.Context, user *User, password string) bool {
	if user == nil {
		return false
	}
	return ComparePasswordAndHash(password, user.PasswordHash) == nil
}

func (s *StoreAdapter) GenerateConfirmationCode(ctx context.Context, user *User) (string, error) {
	code, err := s.repo.Users().GenerateConfirmationCode(ctx, user)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate confirmation code")
	}
	return code, nil
}

func (s *StoreAdapter) ConfirmEmail(ctx context.Context, user *User, code string) (bool, error) {
	ok, err := s.repo.Users().ConfirmEmail(ctx, user, code)
	if err != nil {
		return false, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to confirm email")
	}
	return ok, nil
}

// passwordPolicyViolations mirrors the registration password policy:
// minimum length plus digit, upper, and lower character classes.
func passwordPolicyViolations(password string) []string {
	var reasons []string

	if len(password) < 6 {
		reasons = append(reasons, "Passwords must be at least 6 characters.")
	}

	var hasDigit, hasUpper, hasLower bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		}
	}

	if !hasDigit {
		reasons = append(reasons, "Passwords must have at least one digit ('0'-'9').")
	}
	if !hasUpper {
		reasons = append(reasons, "Passwords must have at least one uppercase ('A'-'Z').")
	}
	if !hasLower {
		reasons = append(reasons, "Passwords must have at least one lowercase ('a'-'z').")
	}

	return reasons
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique violation")
}
