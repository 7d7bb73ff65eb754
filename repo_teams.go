package pitwall

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Teams is the repository for the Team resource
type Teams interface {
	List(ctx context.Context) ([]*Team, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Team, error)
	Create(ctx context.Context, team *Team) (*Team, error)
	GetOrCreate(ctx context.Context, team *Team) (*Team, error)
	UpdateTeamPrincipal(ctx context.Context, id uuid.UUID, principal string) (*Team, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ErrTeamNotFound is the explicit not-found signal for team lookups
var ErrTeamNotFound = errors.New("team not found")

type teams struct {
	db *bun.DB
}

var _ Teams = (*teams)(nil)

func NewTeamsRepository(db *bun.DB) Teams {
	return &teams{db: db}
}

func (r *teams) List(ctx context.Context) ([]*Team, error) {
	var records []*Team
	err := r.db.NewSelect().
		Model(&records).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []*Team{}, nil
		}
		return nil, err
	}

	if records == nil {
		records = []*Team{}
	}

	return records, nil
}

func (r *teams) GetByID(ctx context.Context, id uuid.UUID) (*Team, error) {
	record := &Team{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return record, nil
}

func (r *teams) Create(ctx context.Context, team *Team) (*Team, error) {
	prepareTeamDefaults(team)
	if _, err := r.db.NewInsert().Model(team).Exec(ctx); err != nil {
		return nil, err
	}
	return team, nil
}

// GetOrCreate matches on name; missing teams get a deterministic id
// derived from the name so seed runs stay idempotent.
func (r *teams) GetOrCreate(ctx context.Context, team *Team) (*Team, error) {
	record := &Team{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.name = ?", team.Name).
		Limit(1).
		Scan(ctx)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	if team.ID == uuid.Nil {
		if id, err := hashid.NewUUID(team.Name); err == nil {
			team.ID = id
		}
	}

	return r.Create(ctx, team)
}

func (r *teams) UpdateTeamPrincipal(ctx context.Context, id uuid.UUID, principal string) (*Team, error) {
	now := time.Now()
	res, err := r.db.NewUpdate().
		Model((*Team)(nil)).
		Set("team_principal = ?", principal).
		Set("updated_at = ?", now).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrTeamNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *teams) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*Team)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrTeamNotFound
	}

	return nil
}

func prepareTeamDefaults(record *Team) {
	if record == nil {
		return
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}
