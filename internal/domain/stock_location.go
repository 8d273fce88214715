package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StockLocation errors
var (
	ErrVariantRequired       = errors.New("variant is required")
	ErrInvalidQuantity       = errors.New("quantity must be a non-zero amount")
	ErrInvalidCoordinates    = errors.New("latitude and longitude must both be provided and within valid ranges")
	ErrInvalidLocationType   = errors.New("invalid stock location type")
	ErrNameRequired          = errors.New("stock location name is required")
	ErrNameTaken             = errors.New("stock location name is already taken")
	ErrStockItemNotFound     = errors.New("stock item not found for variant at this location")
	ErrInsufficientStock     = errors.New("insufficient unreserved stock")
	ErrNegativeOnHand        = errors.New("on-hand quantity is negative for a non-backorderable item")
	ErrNegativeReserved      = errors.New("reserved quantity is negative")
	ErrReservedExceedsOnHand = errors.New("reserved quantity exceeds on-hand quantity for a non-backorderable item")
	ErrHasReservedStock      = errors.New("stock location has reserved stock")
	ErrHasStockItems         = errors.New("stock location has stock items")
	ErrHasPendingShipments   = errors.New("stock location has pending shipments")
	ErrHasActiveTransfers    = errors.New("stock location has active stock transfers")
	ErrHasBackorderedUnits   = errors.New("stock location has backordered inventory units")
)

// earthRadiusKm is the mean Earth radius used by the haversine formula
const earthRadiusKm = 6371.0

// LocationType represents the kind of site a stock location is
type LocationType string

const (
	LocationTypeWarehouse   LocationType = "warehouse"
	LocationTypeRetailStore LocationType = "retail_store"
	LocationTypeHybrid      LocationType = "hybrid"
)

// IsValid checks if the location type is valid
func (t LocationType) IsValid() bool {
	switch t {
	case LocationTypeWarehouse, LocationTypeRetailStore, LocationTypeHybrid:
		return true
	default:
		return false
	}
}

// Address holds the optional postal address of a stock location
type Address struct {
	Address1 string `bson:"address1,omitempty" json:"address1,omitempty"`
	Address2 string `bson:"address2,omitempty" json:"address2,omitempty"`
	City     string `bson:"city,omitempty" json:"city,omitempty"`
	State    string `bson:"state,omitempty" json:"state,omitempty"`
	Zipcode  string `bson:"zipcode,omitempty" json:"zipcode,omitempty"`
	Country  string `bson:"country,omitempty" json:"country,omitempty"`
	Phone    string `bson:"phone,omitempty" json:"phone,omitempty"`
}

// StockLocation is the aggregate root for a physical or logical site that
// holds inventory. All stock items of one location form a single unit of
// transactional consistency: they are loaded and saved together, guarded
// by the Version token.
type StockLocation struct {
	LocationID      string            `bson:"locationId" json:"locationId"`
	Name            string            `bson:"name" json:"name"`
	Presentation    string            `bson:"presentation" json:"presentation"`
	Type            LocationType      `bson:"type" json:"type"`
	Active          bool              `bson:"active" json:"active"`
	Default         bool              `bson:"default" json:"default"`
	ShipEnabled     bool              `bson:"shipEnabled" json:"shipEnabled"`
	PickupEnabled   bool              `bson:"pickupEnabled" json:"pickupEnabled"`
	Address         Address           `bson:"address" json:"address"`
	Latitude        *float64          `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude       *float64          `bson:"longitude,omitempty" json:"longitude,omitempty"`
	OperatingHours  map[string]string `bson:"operatingHours,omitempty" json:"operatingHours,omitempty"`
	PublicMetadata  map[string]string `bson:"publicMetadata,omitempty" json:"publicMetadata,omitempty"`
	PrivateMetadata map[string]string `bson:"privateMetadata,omitempty" json:"privateMetadata,omitempty"`
	StockItems      []StockItem       `bson:"stockItems" json:"stockItems"`
	IsDeleted       bool              `bson:"isDeleted" json:"isDeleted"`
	DeletedAt       *time.Time        `bson:"deletedAt,omitempty" json:"deletedAt,omitempty"`
	DeletedBy       string            `bson:"deletedBy,omitempty" json:"deletedBy,omitempty"`
	Version         int64             `bson:"version" json:"version"`
	CreatedAt       time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time         `bson:"updatedAt" json:"updatedAt"`
	DomainEvents    []DomainEvent     `bson:"-" json:"-"`
}

// NewStockLocationParams holds creation parameters for a stock location
type NewStockLocationParams struct {
	Name            string
	Presentation    string
	Type            LocationType
	Active          *bool
	Default         bool
	ShipEnabled     *bool
	PickupEnabled   *bool
	Address         Address
	Latitude        *float64
	Longitude       *float64
	OperatingHours  map[string]string
	PublicMetadata  map[string]string
	PrivateMetadata map[string]string
}

// NewStockLocation creates a new StockLocation aggregate
func NewStockLocation(params NewStockLocationParams) (*StockLocation, error) {
	name := slugify(params.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	locType := params.Type
	if locType == "" {
		locType = LocationTypeWarehouse
	}
	if !locType.IsValid() {
		return nil, ErrInvalidLocationType
	}

	if err := validateCoordinates(params.Latitude, params.Longitude); err != nil {
		return nil, err
	}

	presentation := strings.TrimSpace(params.Presentation)
	if presentation == "" {
		presentation = presentationFromSlug(name)
	}

	now := time.Now().UTC()
	location := &StockLocation{
		LocationID:      "SL-" + uuid.New().String(),
		Name:            name,
		Presentation:    presentation,
		Type:            locType,
		Active:          boolOrDefault(params.Active, true),
		Default:         params.Default,
		ShipEnabled:     boolOrDefault(params.ShipEnabled, true),
		PickupEnabled:   boolOrDefault(params.PickupEnabled, false),
		Address:         params.Address,
		Latitude:        params.Latitude,
		Longitude:       params.Longitude,
		OperatingHours:  params.OperatingHours,
		PublicMetadata:  params.PublicMetadata,
		PrivateMetadata: params.PrivateMetadata,
		StockItems:      make([]StockItem, 0),
		CreatedAt:       now,
		UpdatedAt:       now,
		DomainEvents:    make([]DomainEvent, 0),
	}

	location.AddDomainEvent(&StockLocationCreatedEvent{
		LocationID: location.LocationID,
		Name:       location.Name,
		Type:       string(location.Type),
		CreatedAt:  now,
	})

	return location, nil
}

// StockLocationPatch carries selective updates for a stock location. A nil
// field leaves the current value untouched; a non-nil field is applied only
// when it differs from the current value.
type StockLocationPatch struct {
	Name            *string
	Presentation    *string
	Type            *LocationType
	Active          *bool
	ShipEnabled     *bool
	PickupEnabled   *bool
	Address         *Address
	Latitude        *float64
	Longitude       *float64
	OperatingHours  map[string]string
	PublicMetadata  map[string]string
	PrivateMetadata map[string]string
}

// Update applies a patch to the location. UpdatedAt is stamped and an
// Updated event raised only when at least one field actually changed;
// a patch with no effective changes is a successful no-op.
func (sl *StockLocation) Update(patch StockLocationPatch) error {
	changed := false
	coordinatesChanged := false

	if patch.Name != nil {
		name := slugify(*patch.Name)
		if name == "" {
			return ErrNameRequired
		}
		if name != sl.Name {
			sl.Name = name
			changed = true
		}
	}

	if patch.Presentation != nil {
		presentation := strings.TrimSpace(*patch.Presentation)
		if presentation != "" && presentation != sl.Presentation {
			sl.Presentation = presentation
			changed = true
		}
	}

	if patch.Type != nil {
		if !patch.Type.IsValid() {
			return ErrInvalidLocationType
		}
		if *patch.Type != sl.Type {
			sl.Type = *patch.Type
			changed = true
		}
	}

	if patch.Active != nil && *patch.Active != sl.Active {
		sl.Active = *patch.Active
		changed = true
	}

	if patch.ShipEnabled != nil && *patch.ShipEnabled != sl.ShipEnabled {
		sl.ShipEnabled = *patch.ShipEnabled
		changed = true
		sl.AddDomainEvent(&ShippingCapabilityChangedEvent{
			LocationID:  sl.LocationID,
			ShipEnabled: sl.ShipEnabled,
			ChangedAt:   time.Now().UTC(),
		})
	}

	if patch.PickupEnabled != nil && *patch.PickupEnabled != sl.PickupEnabled {
		sl.PickupEnabled = *patch.PickupEnabled
		changed = true
		sl.AddDomainEvent(&PickupCapabilityChangedEvent{
			LocationID:    sl.LocationID,
			PickupEnabled: sl.PickupEnabled,
			ChangedAt:     time.Now().UTC(),
		})
	}

	if patch.Address != nil && *patch.Address != sl.Address {
		sl.Address = *patch.Address
		changed = true
	}

	if patch.Latitude != nil || patch.Longitude != nil {
		newLat := sl.Latitude
		newLon := sl.Longitude
		if patch.Latitude != nil {
			newLat = patch.Latitude
		}
		if patch.Longitude != nil {
			newLon = patch.Longitude
		}
		if err := validateCoordinates(newLat, newLon); err != nil {
			return err
		}
		if !floatPtrEqual(newLat, sl.Latitude) || !floatPtrEqual(newLon, sl.Longitude) {
			sl.Latitude = newLat
			sl.Longitude = newLon
			changed = true
			coordinatesChanged = true
		}
	}

	if patch.OperatingHours != nil && !mapsEqual(patch.OperatingHours, sl.OperatingHours) {
		sl.OperatingHours = patch.OperatingHours
		changed = true
	}

	if patch.PublicMetadata != nil && !mapsEqual(patch.PublicMetadata, sl.PublicMetadata) {
		sl.PublicMetadata = patch.PublicMetadata
		changed = true
	}

	if patch.PrivateMetadata != nil && !mapsEqual(patch.PrivateMetadata, sl.PrivateMetadata) {
		sl.PrivateMetadata = patch.PrivateMetadata
		changed = true
	}

	if !changed {
		return nil
	}

	sl.UpdatedAt = time.Now().UTC()

	if coordinatesChanged {
		sl.AddDomainEvent(&LocationCoordinatesUpdatedEvent{
			LocationID: sl.LocationID,
			Latitude:   sl.Latitude,
			Longitude:  sl.Longitude,
			UpdatedAt:  sl.UpdatedAt,
		})
	}

	sl.AddDomainEvent(&StockLocationUpdatedEvent{
		LocationID: sl.LocationID,
		Name:       sl.Name,
		UpdatedAt:  sl.UpdatedAt,
	})

	return nil
}

// MakeDefault marks this location as the default. Idempotent: a location
// that is already default is returned unchanged with no event. Unsetting
// the previous default is a cross-aggregate concern owned by the caller.
func (sl *StockLocation) MakeDefault() {
	if sl.Default {
		return
	}

	sl.Default = true
	sl.UpdatedAt = time.Now().UTC()

	sl.AddDomainEvent(&StockLocationMadeDefaultEvent{
		LocationID: sl.LocationID,
		MadeAt:     sl.UpdatedAt,
	})
}

// UnsetDefault clears the default flag, used when another location becomes
// the default. No event is raised for the location losing the flag.
func (sl *StockLocation) UnsetDefault() {
	if !sl.Default {
		return
	}
	sl.Default = false
	sl.UpdatedAt = time.Now().UTC()
}

// DeleteGuards carries state owned by other aggregates that blocks deletion.
// The caller computes these before asking for a delete.
type DeleteGuards struct {
	HasPendingShipments          bool
	HasActiveStockTransfers      bool
	HasBackorderedInventoryUnits bool
}

// Delete soft-deletes the location. No-op if already deleted. Deletion is
// blocked, in order, by reserved stock, by any stock item at all, and by
// the caller-supplied shipment/transfer/backorder guards.
func (sl *StockLocation) Delete(deletedBy string, guards DeleteGuards) error {
	if sl.IsDeleted {
		return nil
	}
	for i := range sl.StockItems {
		if sl.StockItems[i].QuantityReserved > 0 {
			return ErrHasReservedStock
		}
	}
	if len(sl.StockItems) > 0 {
		return ErrHasStockItems
	}
	if guards.HasPendingShipments {
		return ErrHasPendingShipments
	}
	if guards.HasActiveStockTransfers {
		return ErrHasActiveTransfers
	}
	if guards.HasBackorderedInventoryUnits {
		return ErrHasBackorderedUnits
	}

	now := time.Now().UTC()
	sl.IsDeleted = true
	sl.DeletedAt = &now
	sl.DeletedBy = deletedBy
	sl.UpdatedAt = now

	sl.AddDomainEvent(&StockLocationDeletedEvent{
		LocationID: sl.LocationID,
		DeletedBy:  deletedBy,
		DeletedAt:  now,
	})

	return nil
}

// Restore clears the soft-delete markers. No-op if the location is not deleted.
func (sl *StockLocation) Restore() {
	if !sl.IsDeleted {
		return
	}

	sl.IsDeleted = false
	sl.DeletedAt = nil
	sl.DeletedBy = ""
	sl.UpdatedAt = time.Now().UTC()

	sl.AddDomainEvent(&StockLocationRestoredEvent{
		LocationID: sl.LocationID,
		RestoredAt: sl.UpdatedAt,
	})
}

// CanShip reports whether the location can source shipments
func (sl *StockLocation) CanShip() bool {
	return sl.ShipEnabled && !sl.IsDeleted
}

// CanPickup reports whether the location supports customer pickup
func (sl *StockLocation) CanPickup() bool {
	return sl.PickupEnabled && !sl.IsDeleted
}

// IsWarehouse reports whether the location is a warehouse
func (sl *StockLocation) IsWarehouse() bool { return sl.Type == LocationTypeWarehouse }

// IsRetailStore reports whether the location is a retail store
func (sl *StockLocation) IsRetailStore() bool { return sl.Type == LocationTypeRetailStore }

// IsHybrid reports whether the location is both warehouse and retail store
func (sl *StockLocation) IsHybrid() bool { return sl.Type == LocationTypeHybrid }

// HasCoordinates reports whether both coordinates are present
func (sl *StockLocation) HasCoordinates() bool {
	return sl.Latitude != nil && sl.Longitude != nil
}

// DistanceTo returns the great-circle distance in kilometers from this
// location to the given point, or false if this location has no coordinates.
// Haversine with mean Earth radius 6371 km.
func (sl *StockLocation) DistanceTo(lat, lon float64) (float64, bool) {
	if !sl.HasCoordinates() {
		return 0, false
	}

	lat1 := *sl.Latitude * math.Pi / 180
	lat2 := lat * math.Pi / 180
	dLat := (lat - *sl.Latitude) * math.Pi / 180
	dLon := (lon - *sl.Longitude) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c, true
}

// FindStockItem returns the stock item for a variant at this location, or nil
func (sl *StockLocation) FindStockItem(variantID string) *StockItem {
	for i := range sl.StockItems {
		if sl.StockItems[i].VariantID == variantID {
			return &sl.StockItems[i]
		}
	}
	return nil
}

// StockItemOrCreate returns the existing stock item for the variant, or
// creates one with zero counts and the variant's backorderable flag.
func (sl *StockLocation) StockItemOrCreate(variant Variant) (*StockItem, error) {
	if variant.VariantID == "" {
		return nil, ErrVariantRequired
	}

	if item := sl.FindStockItem(variant.VariantID); item != nil {
		return item, nil
	}

	item, err := NewStockItem(sl.LocationID, variant)
	if err != nil {
		return nil, err
	}

	sl.StockItems = append(sl.StockItems, *item)
	sl.UpdatedAt = time.Now().UTC()

	return &sl.StockItems[len(sl.StockItems)-1], nil
}

// Restock adds quantity for a variant, creating the stock item on first use
func (sl *StockLocation) Restock(variant Variant, quantity int, originator MovementOriginator, originatorID string) (*StockMovement, error) {
	if variant.VariantID == "" {
		return nil, ErrVariantRequired
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	item, err := sl.StockItemOrCreate(variant)
	if err != nil {
		return nil, err
	}

	movement, err := item.Adjust(quantity, originator, originatorID, "Restock")
	if err != nil {
		return nil, err
	}

	sl.UpdatedAt = time.Now().UTC()
	sl.AddDomainEvent(&StockRestockedEvent{
		LocationID:  sl.LocationID,
		VariantID:   variant.VariantID,
		Quantity:    quantity,
		MovementID:  movement.MovementID.String(),
		RestockedAt: movement.CreatedAt,
	})

	return movement, nil
}

// Unstock removes quantity for a variant. For non-backorderable items the
// removal may not drop on-hand below the reserved count; the error reports
// the exact maximum unstockable quantity. Backorderable items may always be
// unstocked, potentially driving on-hand negative.
func (sl *StockLocation) Unstock(variantID string, quantity int, originator MovementOriginator, originatorID string) (*StockMovement, error) {
	if variantID == "" {
		return nil, ErrVariantRequired
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	item := sl.FindStockItem(variantID)
	if item == nil {
		return nil, ErrStockItemNotFound
	}

	if !item.Backorderable {
		unstockable := item.QuantityOnHand - item.QuantityReserved
		if unstockable < 0 {
			unstockable = 0
		}
		if quantity > unstockable {
			return nil, fmt.Errorf("%w: maximum unstockable quantity is %d", ErrInsufficientStock, unstockable)
		}
	}

	movement, err := item.Adjust(-quantity, originator, originatorID, "Unstock")
	if err != nil {
		return nil, err
	}

	sl.UpdatedAt = time.Now().UTC()
	sl.AddDomainEvent(&StockUnstockedEvent{
		LocationID:  sl.LocationID,
		VariantID:   variantID,
		Quantity:    quantity,
		MovementID:  movement.MovementID.String(),
		UnstockedAt: movement.CreatedAt,
	})

	return movement, nil
}

// ValidateInvariants scans all stock items and returns the first count
// invariant violation found. Intended as a consistency check for tests and
// operational tooling, not part of the mutation path.
func (sl *StockLocation) ValidateInvariants() error {
	for i := range sl.StockItems {
		if err := sl.StockItems[i].checkInvariants(); err != nil {
			return err
		}
	}
	return nil
}

// AddDomainEvent adds a domain event
func (sl *StockLocation) AddDomainEvent(event DomainEvent) {
	sl.DomainEvents = append(sl.DomainEvents, event)
}

// ClearDomainEvents clears all domain events
func (sl *StockLocation) ClearDomainEvents() {
	sl.DomainEvents = make([]DomainEvent, 0)
}

// GetDomainEvents returns all domain events
func (sl *StockLocation) GetDomainEvents() []DomainEvent {
	return sl.DomainEvents
}

func validateCoordinates(lat, lon *float64) error {
	if lat == nil && lon == nil {
		return nil
	}
	if lat == nil || lon == nil {
		return ErrInvalidCoordinates
	}
	if *lat < -90 || *lat > 90 || *lon < -180 || *lon > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}

// slugify normalizes a name to a lowercase URL-safe slug
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastHyphen := true
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case r == ' ', r == '_', r == '-', r == '.', r == '/':
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// presentationFromSlug derives a human-readable name from a slug
func presentationFromSlug(slug string) string {
	words := strings.Split(slug, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func boolOrDefault(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func mapsEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}
