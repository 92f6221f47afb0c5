package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS players (
	id      TEXT PRIMARY KEY,
	name    TEXT NOT NULL,
	money   BIGINT NOT NULL,
	room_id TEXT NOT NULL DEFAULT ''
)`

// Postgres stores player records in a PostgreSQL database, shared across
// server instances
type Postgres struct {
	db *sql.DB
}

// NewPostgres opens the database and ensures the schema exists
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open directory database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping directory database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure directory schema: %w", err)
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Put(ctx context.Context, rec Record) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO players (id, name, money, room_id) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = $2, money = $3, room_id = $4`,
		rec.ID, rec.Name, rec.Money, rec.RoomID)
	return err
}

func (p *Postgres) Get(ctx context.Context, playerID string) (Record, error) {
	rec := Record{ID: playerID}
	err := p.db.QueryRowContext(ctx,
		`SELECT name, money, room_id FROM players WHERE id = $1`, playerID).
		Scan(&rec.Name, &rec.Money, &rec.RoomID)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (p *Postgres) SetRoom(ctx context.Context, playerID, roomID string) error {
	return p.exec(ctx, `UPDATE players SET room_id = $2 WHERE id = $1`, playerID, roomID)
}

func (p *Postgres) SetMoney(ctx context.Context, playerID string, money int) error {
	return p.exec(ctx, `UPDATE players SET money = $2 WHERE id = $1`, playerID, money)
}

func (p *Postgres) exec(ctx context.Context, query string, args ...any) error {
	res, err := p.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}
