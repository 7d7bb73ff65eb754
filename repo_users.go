package pitwall

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Users is the user repository. Lookups by email hit the unique index;
// confirmation operations run inside the caller supplied transaction so a
// code is consumed and the flag flipped atomically.
type Users interface {
	repository.Repository[*User]

	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error)

	Register(ctx context.Context, user *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)

	GenerateConfirmationCode(ctx context.Context, user *User) (string, error)
	GenerateConfirmationCodeTx(ctx context.Context, tx bun.IDB, user *User) (string, error)

	ConfirmEmail(ctx context.Context, user *User, code string) (bool, error)
	ConfirmEmailTx(ctx context.Context, tx bun.IDB, user *User, code string) (bool, error)
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users                        = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

func (a *users) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", email).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"email": email})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	prepareUserDefaults(user)
	return a.Repository.CreateTx(ctx, tx, user)
}

func (a *users) GenerateConfirmationCode(ctx context.Context, user *User) (string, error) {
	return a.GenerateConfirmationCodeTx(ctx, a.db, user)
}

func (a *users) GenerateConfirmationCodeTx(ctx context.Context, tx bun.IDB, user *User) (string, error) {
	code, err := randomConfirmationCode()
	if err != nil {
		return "", err
	}

	record := &EmailConfirmation{
		ID:     uuid.New(),
		UserID: user.ID,
		Code:   code,
	}

	if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
		return "", err
	}

	return code, nil
}

func (a *users) ConfirmEmail(ctx context.Context, user *User, code string) (bool, error) {
	ok := false
	err := a.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		ok, err = a.ConfirmEmailTx(ctx, tx, user, code)
		return err
	})
	return ok, err
}

// ConfirmEmailTx consumes the code and flips is_email_verified in one
// transaction. Unknown, mismatched, and already consumed codes all report
// the same false result; the caller must not learn which case it hit.
func (a *users) ConfirmEmailTx(ctx context.Context, tx bun.IDB, user *User, code string) (bool, error) {
	if user == nil || code == "" {
		return false, nil
	}

	record := &EmailConfirmation{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.user_id = ?", user.ID).
		Where("?TableAlias.code = ?", code).
		Where("?TableAlias.consumed_at IS NULL").
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return false, nil
		}
		return false, err
	}

	now := time.Now()
	res, err := tx.NewUpdate().
		Model((*EmailConfirmation)(nil)).
		Set("consumed_at = ?", now).
		Where("id = ?", record.ID).
		Where("consumed_at IS NULL").
		Exec(ctx)
	if err != nil {
		return false, err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// lost the race to a concurrent confirmation
		return false, nil
	}

	_, err = tx.NewUpdate().
		Model((*User)(nil)).
		Set("is_email_verified = TRUE").
		Set("updated_at = ?", now).
		Where("id = ?", user.ID).
		Exec(ctx)
	if err != nil {
		return false, err
	}

	user.EmailConfirmed = true
	return true, nil
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}

func randomConfirmationCode() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
