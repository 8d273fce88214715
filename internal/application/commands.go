package application

// AddressInput carries address fields on create and update commands
type AddressInput struct {
	Address1 string
	Address2 string
	City     string
	State    string
	Zipcode  string
	Country  string
	Phone    string
}

// CreateStockLocationCommand represents the command to create a stock location
type CreateStockLocationCommand struct {
	Name            string
	Presentation    string
	Type            string
	Active          *bool
	Default         bool
	ShipEnabled     *bool
	PickupEnabled   *bool
	Address         AddressInput
	Latitude        *float64
	Longitude       *float64
	OperatingHours  map[string]string
	PublicMetadata  map[string]string
	PrivateMetadata map[string]string
}

// UpdateStockLocationCommand carries a partial update. Nil fields are left
// unchanged.
type UpdateStockLocationCommand struct {
	LocationID      string
	Name            *string
	Presentation    *string
	Type            *string
	Active          *bool
	ShipEnabled     *bool
	PickupEnabled   *bool
	Address         *AddressInput
	Latitude        *float64
	Longitude       *float64
	OperatingHours  map[string]string
	PublicMetadata  map[string]string
	PrivateMetadata map[string]string
}

// DeleteStockLocationCommand represents the command to soft-delete a location.
// The guard flags come from the calling service, which knows about shipments
// and transfers.
type DeleteStockLocationCommand struct {
	LocationID                   string
	DeletedBy                    string
	HasPendingShipments          bool
	HasActiveStockTransfers      bool
	HasBackorderedInventoryUnits bool
}

// RestoreStockLocationCommand represents the command to restore a soft-deleted location
type RestoreStockLocationCommand struct {
	LocationID string
}

// SetDefaultCommand represents the command to make a location the default
type SetDefaultCommand struct {
	LocationID string
}

// RestockCommand represents the command to add stock for a variant
type RestockCommand struct {
	LocationID    string
	VariantID     string
	SKU           string
	Backorderable bool
	Quantity      int
	Originator    string
	OriginatorID  string
}

// UnstockCommand represents the command to remove stock for a variant
type UnstockCommand struct {
	LocationID   string
	VariantID    string
	Quantity     int
	Originator   string
	OriginatorID string
}

// GetStockLocationQuery represents the query to get a location by ID
type GetStockLocationQuery struct {
	LocationID string
}

// ListStockLocationsQuery represents the query to list locations
type ListStockLocationsQuery struct {
	Filter string // "", "active", "shippable", "pickup"
	Limit  int
	Offset int
}

// OrderLineInput is one line of a fulfillment planning request
type OrderLineInput struct {
	VariantID string
	Quantity  int
}

// PlanFulfillmentCommand represents the command to compute a fulfillment plan
type PlanFulfillmentCommand struct {
	OrderID              string
	Mode                 string
	Strategy             string
	DestinationLatitude  *float64
	DestinationLongitude *float64
	Lines                []OrderLineInput
}
