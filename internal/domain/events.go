package domain

import "time"

// DomainEvent is the interface for all domain events. Events accumulate
// in-memory on the aggregate and are published by the caller only after
// the owning transaction commits.
type DomainEvent interface {
	EventType() string
	OccurredAt() time.Time
}

// StockLocationCreatedEvent is published when a stock location is created
type StockLocationCreatedEvent struct {
	LocationID string    `json:"locationId"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (e *StockLocationCreatedEvent) EventType() string     { return "stock.location.created" }
func (e *StockLocationCreatedEvent) OccurredAt() time.Time { return e.CreatedAt }

// StockLocationUpdatedEvent is published when location attributes change
type StockLocationUpdatedEvent struct {
	LocationID string    `json:"locationId"`
	Name       string    `json:"name"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (e *StockLocationUpdatedEvent) EventType() string     { return "stock.location.updated" }
func (e *StockLocationUpdatedEvent) OccurredAt() time.Time { return e.UpdatedAt }

// StockLocationDeletedEvent is published when a location is soft-deleted
type StockLocationDeletedEvent struct {
	LocationID string    `json:"locationId"`
	DeletedBy  string    `json:"deletedBy,omitempty"`
	DeletedAt  time.Time `json:"deletedAt"`
}

func (e *StockLocationDeletedEvent) EventType() string     { return "stock.location.deleted" }
func (e *StockLocationDeletedEvent) OccurredAt() time.Time { return e.DeletedAt }

// StockLocationRestoredEvent is published when a soft-deleted location is restored
type StockLocationRestoredEvent struct {
	LocationID string    `json:"locationId"`
	RestoredAt time.Time `json:"restoredAt"`
}

func (e *StockLocationRestoredEvent) EventType() string     { return "stock.location.restored" }
func (e *StockLocationRestoredEvent) OccurredAt() time.Time { return e.RestoredAt }

// StockLocationMadeDefaultEvent is published when a location becomes the default
type StockLocationMadeDefaultEvent struct {
	LocationID string    `json:"locationId"`
	MadeAt     time.Time `json:"madeAt"`
}

func (e *StockLocationMadeDefaultEvent) EventType() string     { return "stock.location.made-default" }
func (e *StockLocationMadeDefaultEvent) OccurredAt() time.Time { return e.MadeAt }

// ShippingCapabilityChangedEvent is published when shipping is enabled or disabled
type ShippingCapabilityChangedEvent struct {
	LocationID  string    `json:"locationId"`
	ShipEnabled bool      `json:"shipEnabled"`
	ChangedAt   time.Time `json:"changedAt"`
}

func (e *ShippingCapabilityChangedEvent) EventType() string     { return "stock.location.shipping-changed" }
func (e *ShippingCapabilityChangedEvent) OccurredAt() time.Time { return e.ChangedAt }

// PickupCapabilityChangedEvent is published when pickup is enabled or disabled
type PickupCapabilityChangedEvent struct {
	LocationID    string    `json:"locationId"`
	PickupEnabled bool      `json:"pickupEnabled"`
	ChangedAt     time.Time `json:"changedAt"`
}

func (e *PickupCapabilityChangedEvent) EventType() string     { return "stock.location.pickup-changed" }
func (e *PickupCapabilityChangedEvent) OccurredAt() time.Time { return e.ChangedAt }

// LocationCoordinatesUpdatedEvent is published when coordinates change
type LocationCoordinatesUpdatedEvent struct {
	LocationID string    `json:"locationId"`
	Latitude   *float64  `json:"latitude,omitempty"`
	Longitude  *float64  `json:"longitude,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (e *LocationCoordinatesUpdatedEvent) EventType() string {
	return "stock.location.coordinates-updated"
}
func (e *LocationCoordinatesUpdatedEvent) OccurredAt() time.Time { return e.UpdatedAt }

// StockRestockedEvent is published when stock is added for a variant
type StockRestockedEvent struct {
	LocationID  string    `json:"locationId"`
	VariantID   string    `json:"variantId"`
	Quantity    int       `json:"quantity"`
	MovementID  string    `json:"movementId"`
	RestockedAt time.Time `json:"restockedAt"`
}

func (e *StockRestockedEvent) EventType() string     { return "stock.item.restocked" }
func (e *StockRestockedEvent) OccurredAt() time.Time { return e.RestockedAt }

// StockUnstockedEvent is published when stock is removed for a variant
type StockUnstockedEvent struct {
	LocationID  string    `json:"locationId"`
	VariantID   string    `json:"variantId"`
	Quantity    int       `json:"quantity"`
	MovementID  string    `json:"movementId"`
	UnstockedAt time.Time `json:"unstockedAt"`
}

func (e *StockUnstockedEvent) EventType() string     { return "stock.item.unstocked" }
func (e *StockUnstockedEvent) OccurredAt() time.Time { return e.UnstockedAt }
