package session

import (
	"context"
	"errors"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExists   = errors.New("session already exists")
)

// Store keeps live session records. Implementations must be safe for
// concurrent use; the in-memory implementation lives under
// infrastructure/store.
type Store interface {
	Create(ctx context.Context, sess *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	List(ctx context.Context) ([]*Session, error)
	ListByUser(ctx context.Context, userID string) ([]*Session, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}
