package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is the subset of pgxpool.Pool the store needs. Declared as an
// interface so tests can substitute a pgxmock pool.
type PgxPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// postgresStore keeps every record as one JSONB document in a single
// records(kind, id, doc) table. Equality filters map onto JSONB containment,
// partial updates onto the || merge operator, so per-document atomicity comes
// straight from Postgres row atomicity.
type postgresStore struct {
	db PgxPool
}

// NewPostgresStore wraps an existing connection pool.
func NewPostgresStore(db PgxPool) Store {
	return &postgresStore{db: db}
}

// EnsureSchema creates the records table if it is missing. Called once at
// startup.
func EnsureSchema(ctx context.Context, db PgxPool) error {
	_, err := db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS records (
			kind text NOT NULL,
			id   text NOT NULL,
			doc  jsonb NOT NULL,
			PRIMARY KEY (kind, id)
		)
	`)
	return err
}

func marshalFilter(filter Filter) ([]byte, error) {
	if filter == nil {
		filter = Filter{}
	}
	return json.Marshal(filter)
}

func (s *postgresStore) FindMany(ctx context.Context, kind string, filter Filter, dest any) error {
	filterJSON, err := marshalFilter(filter)
	if err != nil {
		return err
	}

	rows, err := s.db.Query(ctx, `
		SELECT doc FROM records
		WHERE kind = $1 AND doc @> $2::jsonb
		ORDER BY id
	`, kind, filterJSON)
	if err != nil {
		return err
	}
	defer rows.Close()

	var raws [][]byte
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return err
		}
		raws = append(raws, raw)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	return decodeList(raws, dest)
}

func (s *postgresStore) FindOne(ctx context.Context, kind string, filter Filter, dest any) (bool, error) {
	filterJSON, err := marshalFilter(filter)
	if err != nil {
		return false, err
	}

	var raw []byte
	err = s.db.QueryRow(ctx, `
		SELECT doc FROM records
		WHERE kind = $1 AND doc @> $2::jsonb
		ORDER BY id
		LIMIT 1
	`, kind, filterJSON).Scan(&raw)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, json.Unmarshal(raw, dest)
}

func (s *postgresStore) Insert(ctx context.Context, kind, id string, doc any) error {
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO records (kind, id, doc) VALUES ($1, $2, $3)
	`, kind, id, docJSON)
	return err
}

func (s *postgresStore) Update(ctx context.Context, kind, id string, partial map[string]any) error {
	partialJSON, err := json.Marshal(partial)
	if err != nil {
		return err
	}

	tag, err := s.db.Exec(ctx, `
		UPDATE records SET doc = doc || $3::jsonb
		WHERE kind = $1 AND id = $2
	`, kind, id, partialJSON)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s/%s", ErrNoRecord, kind, id)
	}
	return nil
}

func (s *postgresStore) DeleteOne(ctx context.Context, kind, id string) error {
	_, err := s.db.Exec(ctx, `
		DELETE FROM records WHERE kind = $1 AND id = $2
	`, kind, id)
	return err
}

func (s *postgresStore) DeleteMany(ctx context.Context, kind string, filter Filter) error {
	filterJSON, err := marshalFilter(filter)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx, `
		DELETE FROM records WHERE kind = $1 AND doc @> $2::jsonb
	`, kind, filterJSON)
	return err
}

func (s *postgresStore) Count(ctx context.Context, kind string, filter Filter) (int64, error) {
	filterJSON, err := marshalFilter(filter)
	if err != nil {
		return 0, err
	}

	var count int64
	err = s.db.QueryRow(ctx, `
		SELECT count(*) FROM records WHERE kind = $1 AND doc @> $2::jsonb
	`, kind, filterJSON).Scan(&count)
	return count, err
}

func (s *postgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *postgresStore) Close() {
	s.db.Close()
}
