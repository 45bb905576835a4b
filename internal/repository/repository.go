package repository

import (
	"context"
	"errors"

	"enigma/internal/domain"
)

// ErrNotFound is returned by updates and deletes that match no record
var ErrNotFound = errors.New("not found")

// Repository defines the interface for settings and session persistence.
// Getters return (nil, nil) when the record does not exist.
type Repository interface {
	// Stored settings
	SaveSettings(ctx context.Context, ns *domain.NamedSettings) error
	ImportSettings(ctx context.Context, batch []domain.NamedSettings) error
	GetSettings(ctx context.Context, name string) (*domain.NamedSettings, error)
	ListSettings(ctx context.Context) ([]domain.NamedSettings, error)
	DeleteSettings(ctx context.Context, name string) error

	// Sessions
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	UpdateSessionPositions(ctx context.Context, id string, positions []int) error
	DeleteSession(ctx context.Context, id string) error

	// Message journal
	RecordMessage(ctx context.Context, msg *domain.Message) error
	ListMessages(ctx context.Context, sessionID string) ([]domain.Message, error)

	// Close releases resources
	Close() error
}
