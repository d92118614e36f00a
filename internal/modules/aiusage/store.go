package aiusage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store keeps one ai_usage row per client: generations left and the UTC month they belong to.
type Store struct {
	db  *pgxpool.Pool
	now func() time.Time
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) month() string {
	return s.now().UTC().Format("2006-01")
}

// Take spends one generation and returns how many are left this month.
// A row from an earlier month starts over at allowance before the deduction.
// ErrQuotaExceeded covers both an exhausted month and a client with no row yet.
func (s *Store) Take(ctx context.Context, clientID string, allowance int) (int, error) {
	var left int
	err := s.db.QueryRow(ctx, `
		UPDATE ai_usage u SET
			generations_remaining = CASE WHEN u.last_reset_month <> $1 THEN $2 - 1 ELSE u.generations_remaining - 1 END,
			last_reset_month = $1
		WHERE u.client_id = $3 AND (u.last_reset_month <> $1 OR u.generations_remaining > 0)
		RETURNING u.generations_remaining
	`, s.month(), allowance, clientID).Scan(&left)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrQuotaExceeded
	}
	if err != nil {
		return 0, err
	}
	return left, nil
}

// Open creates the client's row for the current month unless one exists.
func (s *Store) Open(ctx context.Context, clientID string, allowance int) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO ai_usage (client_id, generations_remaining, last_reset_month)
		VALUES ($1, $2, $3)
		ON CONFLICT (client_id) DO NOTHING
	`, clientID, allowance, s.month())
	return err
}
