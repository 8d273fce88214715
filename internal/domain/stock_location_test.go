package domain

import (
	"errors"
	"math"
	"testing"
)

func float64Ptr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool          { return &v }
func strPtr(v string) *string       { return &v }

func countEvents(events []DomainEvent, eventType string) int {
	n := 0
	for _, e := range events {
		if e.EventType() == eventType {
			n++
		}
	}
	return n
}

func newTestLocation(t *testing.T, params NewStockLocationParams) *StockLocation {
	t.Helper()
	loc, err := NewStockLocation(params)
	if err != nil {
		t.Fatalf("NewStockLocation() error = %v, want nil", err)
	}
	loc.ClearDomainEvents()
	return loc
}

// =============================================================================
// Type Validation Tests
// =============================================================================

func TestLocationType_IsValid(t *testing.T) {
	tests := []struct {
		name    string
		locType LocationType
		want    bool
	}{
		{"warehouse is valid", LocationTypeWarehouse, true},
		{"retail_store is valid", LocationTypeRetailStore, true},
		{"hybrid is valid", LocationTypeHybrid, true},
		{"unknown type is invalid", LocationType("depot"), false},
		{"empty type is invalid", LocationType(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.locType.IsValid(); got != tt.want {
				t.Errorf("LocationType.IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

// =============================================================================
// NewStockLocation Tests
// =============================================================================

func TestNewStockLocation(t *testing.T) {
	t.Run("creates location with defaults", func(t *testing.T) {
		loc, err := NewStockLocation(NewStockLocationParams{Name: "East Warehouse"})
		if err != nil {
			t.Fatalf("NewStockLocation() error = %v, want nil", err)
		}

		if loc.Name != "east-warehouse" {
			t.Errorf("Name = %q, want %q", loc.Name, "east-warehouse")
		}
		if loc.Presentation != "East Warehouse" {
			t.Errorf("Presentation = %q, want %q", loc.Presentation, "East Warehouse")
		}
		if loc.Type != LocationTypeWarehouse {
			t.Errorf("Type = %v, want %v", loc.Type, LocationTypeWarehouse)
		}
		if !loc.Active {
			t.Error("Active = false, want true")
		}
		if !loc.ShipEnabled {
			t.Error("ShipEnabled = false, want true")
		}
		if loc.PickupEnabled {
			t.Error("PickupEnabled = true, want false")
		}
		if loc.LocationID == "" {
			t.Error("LocationID is empty")
		}
		if loc.Version != 0 {
			t.Errorf("Version = %d, want 0", loc.Version)
		}
		if countEvents(loc.GetDomainEvents(), "stock.location.created") != 1 {
			t.Error("expected exactly one created event")
		}
	})

	t.Run("keeps explicit presentation", func(t *testing.T) {
		loc, err := NewStockLocation(NewStockLocationParams{Name: "wh-1", Presentation: "Main Warehouse"})
		if err != nil {
			t.Fatalf("NewStockLocation() error = %v", err)
		}
		if loc.Presentation != "Main Warehouse" {
			t.Errorf("Presentation = %q, want %q", loc.Presentation, "Main Warehouse")
		}
	})

	t.Run("normalizes messy names", func(t *testing.T) {
		tests := []struct {
			in   string
			want string
		}{
			{"  East Coast / Main  ", "east-coast-main"},
			{"WH_01.annex", "wh-01-annex"},
			{"already-a-slug", "already-a-slug"},
		}
		for _, tt := range tests {
			loc, err := NewStockLocation(NewStockLocationParams{Name: tt.in})
			if err != nil {
				t.Fatalf("NewStockLocation(%q) error = %v", tt.in, err)
			}
			if loc.Name != tt.want {
				t.Errorf("Name for %q = %q, want %q", tt.in, loc.Name, tt.want)
			}
		}
	})

	t.Run("rejects empty name", func(t *testing.T) {
		if _, err := NewStockLocation(NewStockLocationParams{Name: "   "}); !errors.Is(err, ErrNameRequired) {
			t.Errorf("error = %v, want ErrNameRequired", err)
		}
	})

	t.Run("rejects invalid type", func(t *testing.T) {
		if _, err := NewStockLocation(NewStockLocationParams{Name: "wh1", Type: "depot"}); !errors.Is(err, ErrInvalidLocationType) {
			t.Errorf("error = %v, want ErrInvalidLocationType", err)
		}
	})

	t.Run("rejects out-of-range latitude", func(t *testing.T) {
		_, err := NewStockLocation(NewStockLocationParams{
			Name:      "wh1",
			Latitude:  float64Ptr(91),
			Longitude: float64Ptr(0),
		})
		if !errors.Is(err, ErrInvalidCoordinates) {
			t.Errorf("error = %v, want ErrInvalidCoordinates", err)
		}
	})

	t.Run("rejects partial coordinates", func(t *testing.T) {
		_, err := NewStockLocation(NewStockLocationParams{
			Name:     "wh1",
			Latitude: float64Ptr(10),
		})
		if !errors.Is(err, ErrInvalidCoordinates) {
			t.Errorf("error = %v, want ErrInvalidCoordinates", err)
		}
	})
}

// =============================================================================
// Update Tests
// =============================================================================

func TestStockLocation_Update(t *testing.T) {
	t.Run("empty patch is a no-op", func(t *testing.T) {
		loc := newTestLocation(t, NewStockLocationParams{Name: "wh1"})
		before := loc.UpdatedAt

		if err := loc.Update(StockLocationPatch{}); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if len(loc.GetDomainEvents()) != 0 {
			t.Errorf("events = %d, want 0", len(loc.GetDomainEvents()))
		}
		if !loc.UpdatedAt.Equal(before) {
			t.Error("UpdatedAt changed on a no-op update")
		}
	})

	t.Run("patch with same values is a no-op", func(t *testing.T) {
		loc := newTestLocation(t, NewStockLocationParams{Name: "wh1"})

		if err := loc.Update(StockLocationPatch{Name: strPtr("wh1"), Active: boolPtr(true)}); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if len(loc.GetDomainEvents()) != 0 {
			t.Errorf("events = %d, want 0", len(loc.GetDomainEvents()))
		}
	})

	t.Run("raises updated event once per call", func(t *testing.T) {
		loc := newTestLocation(t, NewStockLocationParams{Name: "wh1"})

		presentation := "Eastern Hub"
		active := false
		err := loc.Update(StockLocationPatch{
			Presentation: &presentation,
			Active:       &active,
		})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if got := countEvents(loc.GetDomainEvents(), "stock.location.updated"); got != 1 {
			t.Errorf("updated events = %d, want 1", got)
		}
		if loc.Presentation != "Eastern Hub" || loc.Active {
			t.Error("patch not applied")
		}
	})

	t.Run("capability change raises capability event", func(t *testing.T) {
		loc := newTestLocation(t, NewStockLocationParams{Name: "wh1"})

		if err := loc.Update(StockLocationPatch{ShipEnabled: boolPtr(false), PickupEnabled: boolPtr(true)}); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		events := loc.GetDomainEvents()
		if countEvents(events, "stock.location.shipping-changed") != 1 {
			t.Error("expected shipping-changed event")
		}
		if countEvents(events, "stock.location.pickup-changed") != 1 {
			t.Error("expected pickup-changed event")
		}
		if countEvents(events, "stock.location.updated") != 1 {
			t.Error("expected one updated event")
		}
	})

	t.Run("coordinate change raises coordinates event", func(t *testing.T) {
		loc := newTestLocation(t, NewStockLocationParams{Name: "wh1"})

		err := loc.Update(StockLocationPatch{Latitude: float64Ptr(40.7), Longitude: float64Ptr(-74.0)})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if countEvents(loc.GetDomainEvents(), "stock.location.coordinates-updated") != 1 {
			t.Error("expected coordinates-updated event")
		}
	})

	t.Run("rejects partial coordinate update", func(t *testing.T) {
		loc := newTestLocation(t, NewStockLocationParams{Name: "wh1"})

		if err := loc.Update(StockLocationPatch{Latitude: float64Ptr(40.7)}); !errors.Is(err, ErrInvalidCoordinates) {
			t.Errorf("error = %v, want ErrInvalidCoordinates", err)
		}
	})

	t.Run("completes coordinate pair when one already set", func(t *testing.T) {
		loc := newTestLocation(t, NewStockLocationParams{
			Name:      "wh1",
			Latitude:  float64Ptr(40.7),
			Longitude: float64Ptr(-74.0),
		})

		if err := loc.Update(StockLocationPatch{Latitude: float64Ptr(41.0)}); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if *loc.Latitude != 41.0 || *loc.Longitude != -74.0 {
			t.Errorf("coordinates = (%v, %v), want (41, -74)", *loc.Latitude, *loc.Longitude)
		}
	})
}

// =============================================================================
// Lifecycle Tests
// =============================================================================

func TestStockLocation_MakeDefault(t *testing.T) {
	loc := newTestLocation(t, NewStockLocationParams{Name: "wh1"})

	loc.MakeDefault()
	if !loc.Default {
		t.Error("Default = false, want true")
	}
	loc.MakeDefault()
	if !loc.Default {
		t.Error("Default = false after second call, want true")
	}
	if got := countEvents(loc.GetDomainEvents(), "stock.location.made-default"); got != 1 {
		t.Errorf("made-default events = %d, want 1", got)
	}
}

func TestStockLocation_Delete(t *testing.T) {
	t.Run("blocked by reserved stock", func(t *testing.T) {
		loc := newTestLocation(t, NewStockLocationParams{Name: "wh1"})
		item, _ := loc.StockItemOrCreate(Variant{VariantID: "V1", SKU: "SKU-1"})
		item.QuantityOnHand = 5
		item.QuantityReserved = 2

		if err := loc.Delete("tester", DeleteGuards{}); !errors.Is(err, ErrHasReservedStock) {
			t.Errorf("error = %v, want ErrHasReservedStock", err)
		}
	})

	t.Run("blocked by stock items even with zero reserved", func(t *testing.T) {
		loc := newTestLocation(t, NewStockLocationParams{Name: "wh1"})
		item, _ := loc.StockItemOrCreate(Variant{VariantID: "V1", SKU: "SKU-1"})
		item.QuantityOnHand = 5

		if err := loc.Delete("tester", DeleteGuards{}); !errors.Is(err, ErrHasStockItems) {
			t.Errorf("error = %v, want ErrHasStockItems", err)
		}
	})

	t.Run("blocked by caller-supplied guards in order", func(t *testing.T) {
		tests := []struct {
			name   string
			guards DeleteGuards
			want   error
		}{
			{"pending shipments", DeleteGuards{HasPendingShipments: true, HasActiveStockTransfers: true}, ErrHasPendingShipments},
			{"active transfers", DeleteGuards{HasActiveStockTransfers: true, HasBackorderedInventoryUnits: true}, ErrHasActiveTransfers},
			{"backordered units", DeleteGuards{HasBackorderedInventoryUnits: true}, ErrHasBackorderedUnits},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				loc := newTestLocation(t, NewStockLocationParams{Name: "wh1"})
				if err := loc.Delete("tester", tt.guards); !errors.Is(err, tt.want) {
					t.Errorf("error = %v, want %v", err, tt.want)
				}
			})
		}
	})

	t.Run("soft-deletes and raises event", func(t *testing.T) {
		loc := newTestLocation(t, NewStockLocationParams{Name: "wh1"})

		if err := loc.Delete("tester", DeleteGuards{}); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if !loc.IsDeleted || loc.DeletedAt == nil || loc.DeletedBy != "tester" {
			t.Error("delete markers not set")
		}
		if countEvents(loc.GetDomainEvents(), "stock.location.deleted") != 1 {
			t.Error("expected deleted event")
		}
	})

	t.Run("second delete is a no-op", func(t *testing.T) {
		loc := newTestLocation(t, NewStockLocationParams{Name: "wh1"})

		if err := loc.Delete("tester", DeleteGuards{}); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		firstDeletedAt := loc.DeletedAt

		if err := loc.Delete("someone-else", DeleteGuards{}); err != nil {
			t.Fatalf("second Delete() error = %v", err)
		}
		if loc.DeletedBy != "tester" {
			t.Errorf("DeletedBy = %q, want %q", loc.DeletedBy, "tester")
		}
		if loc.DeletedAt != firstDeletedAt {
			t.Error("DeletedAt re-stamped by second delete")
		}
		if got := countEvents(loc.GetDomainEvents(), "stock.location.deleted"); got != 1 {
			t.Errorf("deleted events = %d, want 1", got)
		}
	})
}

func TestStockLocation_Restore(t *testing.T) {
	t.Run("no-op when not deleted", func(t *testing.T) {
		loc := newTestLocation(t, NewStockLocationParams{Name: "wh1"})

		loc.Restore()
		if len(loc.GetDomainEvents()) != 0 {
			t.Errorf("events = %d, want 0", len(loc.GetDomainEvents()))
		}
	})

	t.Run("clears delete markers", func(t *testing.T) {
		loc := newTestLocation(t, NewStockLocationParams{Name: "wh1"})
		if err := loc.Delete("tester", DeleteGuards{}); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		loc.ClearDomainEvents()

		loc.Restore()
		if loc.IsDeleted || loc.DeletedAt != nil || loc.DeletedBy != "" {
			t.Error("delete markers not cleared")
		}
		if countEvents(loc.GetDomainEvents(), "stock.location.restored") != 1 {
			t.Error("expected restored event")
		}
	})
}

// =============================================================================
// Capability Tests
// =============================================================================

func TestStockLocation_Capabilities(t *testing.T) {
	loc := newTestLocation(t, NewStockLocationParams{
		Name:          "store1",
		Type:          LocationTypeRetailStore,
		PickupEnabled: boolPtr(true),
	})

	if !loc.CanShip() || !loc.CanPickup() {
		t.Error("expected shipping and pickup enabled")
	}
	if !loc.IsRetailStore() || loc.IsWarehouse() || loc.IsHybrid() {
		t.Error("type predicates wrong for retail store")
	}

	if err := loc.Delete("tester", DeleteGuards{}); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if loc.CanShip() || loc.CanPickup() {
		t.Error("deleted location must not ship or pickup")
	}
}

// =============================================================================
// Distance Tests
// =============================================================================

func TestStockLocation_DistanceTo(t *testing.T) {
	t.Run("returns false without coordinates", func(t *testing.T) {
		loc := newTestLocation(t, NewStockLocationParams{Name: "wh1"})
		if _, ok := loc.DistanceTo(40, -74); ok {
			t.Error("expected no distance for a location without coordinates")
		}
	})

	t.Run("new york to los angeles is about 3935 km and symmetric", func(t *testing.T) {
		nyc := newTestLocation(t, NewStockLocationParams{
			Name:      "nyc",
			Latitude:  float64Ptr(40.7128),
			Longitude: float64Ptr(-74.0060),
		})
		la := newTestLocation(t, NewStockLocationParams{
			Name:      "la",
			Latitude:  float64Ptr(34.0522),
			Longitude: float64Ptr(-118.2437),
		})

		d1, ok := nyc.DistanceTo(*la.Latitude, *la.Longitude)
		if !ok {
			t.Fatal("expected a distance")
		}
		d2, ok := la.DistanceTo(*nyc.Latitude, *nyc.Longitude)
		if !ok {
			t.Fatal("expected a distance")
		}

		if math.Abs(d1-3935) > 3935*0.01 {
			t.Errorf("distance = %.1f km, want 3935 km within 1%%", d1)
		}
		if math.Abs(d1-d2) > 1e-6 {
			t.Errorf("distance not symmetric: %v vs %v", d1, d2)
		}
	})

	t.Run("zero distance to itself", func(t *testing.T) {
		loc := newTestLocation(t, NewStockLocationParams{
			Name:      "wh1",
			Latitude:  float64Ptr(51.5),
			Longitude: float64Ptr(-0.12),
		})
		d, ok := loc.DistanceTo(51.5, -0.12)
		if !ok || d > 1e-9 {
			t.Errorf("distance = %v, want 0", d)
		}
	})
}
