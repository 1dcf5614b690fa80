package storage

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/randomPoison/hangry-river-horse/internal/domain"
)

type PostgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresRepo(ctx context.Context, connString string) (*PostgresRepo, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	return &PostgresRepo{pool: pool}, nil
}

func (r *PostgresRepo) Close() {
	r.pool.Close()
}

func (r *PostgresRepo) RecordFinish(ctx context.Context, score domain.FinalScore) error {
	_, err := r.pool.Exec(ctx,
		"INSERT INTO finished_hippos(player_id, name, score, cause, finished_at) VALUES($1, $2, $3, $4, $5)",
		score.PlayerId, score.Name, clampScore(score.Score), string(score.Cause), score.FinishedAt,
	)
	if err != nil {
		return wrapError(err)
	}
	return nil
}

// TopScores returns the best finishes, earliest first among equal scores.
func (r *PostgresRepo) TopScores(ctx context.Context, limit int) ([]domain.FinalScore, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT player_id, name, score, cause, finished_at FROM finished_hippos ORDER BY score DESC, finished_at ASC, id ASC LIMIT $1",
		limit,
	)
	if err != nil {
		return nil, wrapError(err)
	}

	scores, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.FinalScore, error) {
		var (
			s     domain.FinalScore
			score int64
			cause string
		)
		if err := row.Scan(&s.PlayerId, &s.Name, &score, &cause, &s.FinishedAt); err != nil {
			return domain.FinalScore{}, err
		}
		s.Score = uint64(score)
		s.Cause = domain.FinishCause(cause)
		return s, nil
	})
	if err != nil {
		return nil, wrapError(err)
	}
	return scores, nil
}

func clampScore(score uint64) int64 {
	if score > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(score)
}

func wrapError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
}
