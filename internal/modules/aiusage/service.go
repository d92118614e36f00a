package aiusage

import (
	"context"
	"errors"
	"strings"
)

type usageStore interface {
	Take(ctx context.Context, clientID string, allowance int) (int, error)
	Open(ctx context.Context, clientID string, allowance int) error
}

// Service meters model-invoking requests against a monthly allowance per client.
type Service struct {
	store     usageStore
	allowance int
}

// NewService creates a Service granting perMonth generations to each client.
func NewService(store *Store, perMonth int) *Service {
	return newService(store, perMonth)
}

func newService(store usageStore, perMonth int) *Service {
	if perMonth <= 0 {
		perMonth = DefaultGenerations
	}
	return &Service{store: store, allowance: perMonth}
}

// Consume spends one generation and returns how many remain this month.
// The first request of a new client opens its row. An empty clientID is not
// metered and yields Unmetered.
func (s *Service) Consume(ctx context.Context, clientID string) (int, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return Unmetered, nil
	}
	left, err := s.store.Take(ctx, clientID, s.allowance)
	if !errors.Is(err, ErrQuotaExceeded) {
		return left, err
	}

	if err := s.store.Open(ctx, clientID, s.allowance); err != nil {
		return 0, err
	}
	return s.store.Take(ctx, clientID, s.allowance)
}
