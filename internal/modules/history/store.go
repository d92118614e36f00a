// README: Postgres audit store of generated itineraries (jsonb documents).
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"itinerary/internal/modules/itinerary"
)

// ErrNotFound is returned when no itinerary exists for the requested id.
var ErrNotFound = errors.New("itinerary not found")

const maxListLimit = 100

// Summary is one row of a client's history listing.
type Summary struct {
	ID          string    `json:"id"`
	Destination string    `json:"destination"`
	StartDate   string    `json:"startDate,omitempty"`
	EndDate     string    `json:"endDate,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Store handles itinerary_history persistence.
type Store struct {
	db *pgxpool.Pool
}

// NewStore returns a Store backed by the given connection pool.
func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Save stores it under its own id. Saving the same id twice is a no-op.
func (s *Store) Save(ctx context.Context, it itinerary.Itinerary, clientID string) error {
	id, err := uuid.Parse(it.ID)
	if err != nil {
		return fmt.Errorf("history: invalid itinerary id %q: %w", it.ID, err)
	}
	doc, err := json.Marshal(it)
	if err != nil {
		return fmt.Errorf("history: marshal itinerary: %w", err)
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO itinerary_history (id, destination, start_date, end_date, client_id, document, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`, id.String(), it.Destination, it.StartDate, it.EndDate, clientID, doc, it.CreatedAt)
	if err != nil {
		return fmt.Errorf("history: insert: %w", err)
	}
	return nil
}

// Get loads a stored itinerary. Unknown or malformed ids yield ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (itinerary.Itinerary, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return itinerary.Itinerary{}, ErrNotFound
	}
	var doc []byte
	err = s.db.QueryRow(ctx, `SELECT document FROM itinerary_history WHERE id = $1`, uid.String()).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return itinerary.Itinerary{}, ErrNotFound
	}
	if err != nil {
		return itinerary.Itinerary{}, fmt.Errorf("history: select: %w", err)
	}
	var it itinerary.Itinerary
	if err := json.Unmarshal(doc, &it); err != nil {
		return itinerary.Itinerary{}, fmt.Errorf("history: decode document: %w", err)
	}
	return it, nil
}

// ListByClient returns the newest itineraries saved for clientID.
func (s *Store) ListByClient(ctx context.Context, clientID string, limit int) ([]Summary, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	rows, err := s.db.Query(ctx, `
		SELECT id::text, destination, start_date, end_date, created_at
		FROM itinerary_history
		WHERE client_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, clientID, limit)
	if err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var sum Summary
		if err := rows.Scan(&sum.ID, &sum.Destination, &sum.StartDate, &sum.EndDate, &sum.CreatedAt); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}
