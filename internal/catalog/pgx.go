package catalog

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolQuerier runs statements on a pgx connection pool.
type PoolQuerier struct {
	pool *pgxpool.Pool
}

// NewPoolQuerier wraps pool.
func NewPoolQuerier(pool *pgxpool.Pool) *PoolQuerier {
	return &PoolQuerier{pool: pool}
}

// Query implements Querier.
func (q *PoolQuerier) Query(ctx context.Context, query string, args ...any) ([]Row, error) {
	rows, err := q.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, err
	}

	result := make([]Row, len(maps))
	for i, m := range maps {
		result[i] = Row(m)
	}
	return result, nil
}

// Close closes the pool.
func (q *PoolQuerier) Close() error {
	q.pool.Close()
	return nil
}
