package application

import "time"

// AddressDTO represents a location address in responses
type AddressDTO struct {
	Address1 string `json:"address1,omitempty"`
	Address2 string `json:"address2,omitempty"`
	City     string `json:"city,omitempty"`
	State    string `json:"state,omitempty"`
	Zipcode  string `json:"zipcode,omitempty"`
	Country  string `json:"country,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// StockLocationDTO represents a stock location in responses
type StockLocationDTO struct {
	LocationID      string            `json:"locationId"`
	Name            string            `json:"name"`
	Presentation    string            `json:"presentation"`
	Type            string            `json:"type"`
	Active          bool              `json:"active"`
	Default         bool              `json:"default"`
	ShipEnabled     bool              `json:"shipEnabled"`
	PickupEnabled   bool              `json:"pickupEnabled"`
	Address         AddressDTO        `json:"address"`
	Latitude        *float64          `json:"latitude,omitempty"`
	Longitude       *float64          `json:"longitude,omitempty"`
	OperatingHours  map[string]string `json:"operatingHours,omitempty"`
	PublicMetadata  map[string]string `json:"publicMetadata,omitempty"`
	PrivateMetadata map[string]string `json:"privateMetadata,omitempty"`
	StockItems      []StockItemDTO    `json:"stockItems"`
	IsDeleted       bool              `json:"isDeleted"`
	DeletedAt       *time.Time        `json:"deletedAt,omitempty"`
	Version         int64             `json:"version"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// StockItemDTO represents the stock of one variant at a location
type StockItemDTO struct {
	VariantID         string             `json:"variantId"`
	SKU               string             `json:"sku"`
	QuantityOnHand    int                `json:"quantityOnHand"`
	QuantityReserved  int                `json:"quantityReserved"`
	QuantityAvailable int                `json:"quantityAvailable"`
	Backorderable     bool               `json:"backorderable"`
	Movements         []StockMovementDTO `json:"movements,omitempty"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

// StockMovementDTO represents a single stock movement
type StockMovementDTO struct {
	MovementID   string    `json:"movementId"`
	VariantID    string    `json:"variantId"`
	Quantity     int       `json:"quantity"`
	Originator   string    `json:"originator"`
	OriginatorID string    `json:"originatorId,omitempty"`
	Reason       string    `json:"reason,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// StockLocationListDTO is a slim location representation for list responses
type StockLocationListDTO struct {
	LocationID    string   `json:"locationId"`
	Name          string   `json:"name"`
	Presentation  string   `json:"presentation"`
	Type          string   `json:"type"`
	Active        bool     `json:"active"`
	Default       bool     `json:"default"`
	ShipEnabled   bool     `json:"shipEnabled"`
	PickupEnabled bool     `json:"pickupEnabled"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
	VariantCount  int      `json:"variantCount"`
	TotalOnHand   int      `json:"totalOnHand"`
}

// AllocationDTO assigns part of an order line to a location
type AllocationDTO struct {
	LocationID string `json:"locationId"`
	Quantity   int    `json:"quantity"`
	Backorder  int    `json:"backorder,omitempty"`
}

// LineAllocationDTO is the planned sourcing for one order line
type LineAllocationDTO struct {
	VariantID   string          `json:"variantId"`
	Quantity    int             `json:"quantity"`
	Allocations []AllocationDTO `json:"allocations"`
}

// FulfillmentPlanDTO represents a computed fulfillment plan
type FulfillmentPlanDTO struct {
	OrderID  string              `json:"orderId"`
	Strategy string              `json:"strategy"`
	Mode     string              `json:"mode"`
	Lines    []LineAllocationDTO `json:"lines"`
}

// ValidationReportDTO reports the invariant check of one location
type ValidationReportDTO struct {
	LocationID string `json:"locationId"`
	Valid      bool   `json:"valid"`
	Error      string `json:"error,omitempty"`
}
