package deal

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/dealdocs/pkg/pg"
)

// Migrations holds the goose migrations for the deals table.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations.
const MigrationsDir = "migrations"

// PostgresRepository stores records in the deals table with fields as JSONB.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (p *PostgresRepository) Get(ctx context.Context, id string) (Record, error) {
	var raw []byte
	err := p.pool.QueryRow(ctx, `SELECT fields FROM deals WHERE id = $1`, id).Scan(&raw)
	if pg.IsNotFoundError(err) {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Record{}, errors.Join(ErrStorage, err)
	}

	fields := map[string]any{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return Record{}, errors.Join(ErrInvalidValue, err)
	}
	return FromRaw(id, fields)
}

func (p *PostgresRepository) Save(ctx context.Context, r Record) error {
	if r.ID() == "" {
		return ErrInvalidID
	}
	raw, err := json.Marshal(r.Raw())
	if err != nil {
		return errors.Join(ErrStorage, err)
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO deals (id, fields, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET fields = EXCLUDED.fields, updated_at = now()`,
		r.ID(), raw,
	)
	if err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}
