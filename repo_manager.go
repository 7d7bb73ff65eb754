package pitwall

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	Users() Users
	Teams() Teams
	Confirmations() repository.Repository[*EmailConfirmation]
}

func NewConfirmationsRepository(db *bun.DB) repository.Repository[*EmailConfirmation] {
	handlers := repository.ModelHandlers[*EmailConfirmation]{
		NewRecord: func() *EmailConfirmation {
			return &EmailConfirmation{}
		},
		GetID: func(record *EmailConfirmation) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *EmailConfirmation, id uuid.UUID) {
			record.ID = id
		},
		GetIdentifier: func() string {
			return "code"
		},
	}
	return repository.NewRepository(db, handlers)
}

type mngr struct {
	db            *bun.DB
	users         Users
	teams         Teams
	confirmations repository.Repository[*EmailConfirmation]
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:            db,
		users:         NewUsersRepository(db),
		teams:         NewTeamsRepository(db),
		confirmations: NewConfirmationsRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.teams == nil {
		return errors.New("repository teams should be initialized")
	}

	if m.confirmations == nil {
		return errors.New("repository confirmations should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() Users {
	return m.users
}

func (m mngr) Teams() Teams {
	return m.teams
}

func (m mngr) Confirmations() repository.Repository[*EmailConfirmation] {
	return m.confirmations
}
