package domain

import (
	"context"
	"errors"
)

// Persistence errors
var (
	// ErrVersionConflict is returned by Save when the aggregate's version no
	// longer matches the stored one. The caller should reload and retry.
	ErrVersionConflict = errors.New("stock location was modified concurrently")

	// ErrLocationNotFound is returned when a referenced location does not exist
	ErrLocationNotFound = errors.New("stock location not found")
)

// StockLocationRepository defines the interface for stock location persistence.
// Save performs an optimistic-concurrency check against the aggregate's
// Version and increments it on success; domain events are stored for
// post-commit publication in the same transaction.
type StockLocationRepository interface {
	Save(ctx context.Context, location *StockLocation) error
	FindByID(ctx context.Context, locationID string) (*StockLocation, error)
	FindByName(ctx context.Context, name string) (*StockLocation, error)
	FindDefault(ctx context.Context) (*StockLocation, error)
	FindActive(ctx context.Context) ([]*StockLocation, error)
	FindShippable(ctx context.Context) ([]*StockLocation, error)
	FindPickup(ctx context.Context) ([]*StockLocation, error)
	FindAll(ctx context.Context, limit, offset int) ([]*StockLocation, error)
}

// EventPublisher defines the interface for publishing domain events after
// the owning transaction has committed
type EventPublisher interface {
	Publish(ctx context.Context, event DomainEvent) error
	PublishAll(ctx context.Context, events []DomainEvent) error
}
