package store

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres backs the Store with a single JSONB documents table. Atomic
// updates use compare-and-swap on a version column, so two concurrent
// mutations of the same document serialize and the loser re-applies against
// the fresh state.
type Postgres struct {
	pool *pgxpool.Pool
}

// updateRetries bounds how often a CAS loser re-reads before giving up.
const updateRetries = 5

// NewPostgres connects to Postgres and ensures the documents table exists.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	p := &Postgres{pool: pool}
	if err := p.ensureDocumentsTable(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	log.Println("Connected to Postgres successfully")
	return p, nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}

// ensureDocumentsTable creates the documents table if it doesn't exist
func (p *Postgres) ensureDocumentsTable(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS documents (
            kind TEXT NOT NULL,
            id TEXT NOT NULL,
            version BIGINT NOT NULL DEFAULT 1,
            data JSONB NOT NULL,
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            PRIMARY KEY (kind, id)
        );
        CREATE INDEX IF NOT EXISTS idx_documents_data ON documents USING GIN (data);
    `)
	return err
}

func (p *Postgres) Get(ctx context.Context, kind Kind, id string, out any) error {
	var raw []byte
	err := p.pool.QueryRow(ctx,
		`SELECT data FROM documents WHERE kind = $1 AND id = $2`, string(kind), id,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return json.Unmarshal(raw, out)
}

func (p *Postgres) Put(ctx context.Context, kind Kind, id string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, `
        INSERT INTO documents (kind, id, version, data)
        VALUES ($1, $2, 1, $3)
        ON CONFLICT (kind, id)
        DO UPDATE SET data = $3, version = documents.version + 1, updated_at = NOW()`,
		string(kind), id, raw,
	)
	return err
}

func (p *Postgres) Update(ctx context.Context, kind Kind, id string, fn func(raw []byte) (any, error)) error {
	for attempt := 0; attempt < updateRetries; attempt++ {
		var raw []byte
		var version int64
		err := p.pool.QueryRow(ctx,
			`SELECT data, version FROM documents WHERE kind = $1 AND id = $2`,
			string(kind), id,
		).Scan(&raw, &version)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}

		next, err := fn(raw)
		if err != nil {
			return err
		}
		nextRaw, err := json.Marshal(next)
		if err != nil {
			return err
		}

		tag, err := p.pool.Exec(ctx, `
            UPDATE documents SET data = $1, version = version + 1, updated_at = NOW()
            WHERE kind = $2 AND id = $3 AND version = $4`,
			nextRaw, string(kind), id, version,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 1 {
			return nil
		}
		// Lost the version race; re-read and re-apply
	}
	return ErrConflict
}

func (p *Postgres) Query(ctx context.Context, kind Kind, filter Filter, out any) error {
	filterRaw, err := json.Marshal(map[string]any(filter))
	if err != nil {
		return err
	}
	rows, err := p.pool.Query(ctx,
		`SELECT data FROM documents WHERE kind = $1 AND data @> $2::jsonb ORDER BY id`,
		string(kind), filterRaw,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	raws := [][]byte{}
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

	arr, err := json.Marshal(rawSlice(raws))
	if err != nil {
		return err
	}
	return json.Unmarshal(arr, out)
}

func (p *Postgres) Count(ctx context.Context, kind Kind, filter Filter) (int, error) {
	filterRaw, err := json.Marshal(map[string]any(filter))
	if err != nil {
		return 0, err
	}
	var n int
	err = p.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM documents WHERE kind = $1 AND data @> $2::jsonb`,
		string(kind), filterRaw,
	).Scan(&n)
	return n, err
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// rawSlice adapts pre-marshaled documents into a JSON array.
type rawSlice [][]byte

func (s rawSlice) MarshalJSON() ([]byte, error) {
	out := []byte{'['}
	for i, raw := range s {
		if i > 0 {
			out = append(out, ',')
		}
		out = append(out, raw...)
	}
	return append(out, ']'), nil
}
