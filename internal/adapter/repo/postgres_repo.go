package repo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/example/presta-export-service/internal/domain"
)

// PostgresMirror runs ad-hoc fetch statements against the relational
// mirror of the shop data. The mirror is owned by the shop platform;
// this service never writes it, enforced by a read-only transaction
// rather than trusting the statement text.
type PostgresMirror struct {
	Pool *pgxpool.Pool
}

func NewPostgresMirror(pool *pgxpool.Pool) *PostgresMirror {
	return &PostgresMirror{Pool: pool}
}

var _ domain.QueryRunner = (*PostgresMirror)(nil)

func (m *PostgresMirror) FetchRows(ctx context.Context, query string) ([]map[string]any, error) {
	tx, err := m.Pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var out []map[string]any
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, err
		}
		rec := make(map[string]any, len(fields))
		for i, fd := range fields {
			rec[string(fd.Name)] = vals[i]
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, tx.Commit(ctx)
}
