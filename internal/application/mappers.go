package application

import (
	"github.com/commerce-platform/stock-service/internal/domain"
)

// ToStockLocationDTO converts a domain StockLocation to its DTO
func ToStockLocationDTO(location *domain.StockLocation) *StockLocationDTO {
	items := make([]StockItemDTO, 0, len(location.StockItems))
	for i := range location.StockItems {
		items = append(items, toStockItemDTO(&location.StockItems[i]))
	}

	return &StockLocationDTO{
		LocationID:      location.LocationID,
		Name:            location.Name,
		Presentation:    location.Presentation,
		Type:            string(location.Type),
		Active:          location.Active,
		Default:         location.Default,
		ShipEnabled:     location.ShipEnabled,
		PickupEnabled:   location.PickupEnabled,
		Address:         toAddressDTO(location.Address),
		Latitude:        location.Latitude,
		Longitude:       location.Longitude,
		OperatingHours:  location.OperatingHours,
		PublicMetadata:  location.PublicMetadata,
		PrivateMetadata: location.PrivateMetadata,
		StockItems:      items,
		IsDeleted:       location.IsDeleted,
		DeletedAt:       location.DeletedAt,
		Version:         location.Version,
		CreatedAt:       location.CreatedAt,
		UpdatedAt:       location.UpdatedAt,
	}
}

func toStockItemDTO(item *domain.StockItem) StockItemDTO {
	movements := make([]StockMovementDTO, 0, len(item.Movements))
	for _, m := range item.Movements {
		movements = append(movements, StockMovementDTO{
			MovementID:   m.MovementID.String(),
			VariantID:    m.VariantID,
			Quantity:     m.Quantity,
			Originator:   string(m.Originator),
			OriginatorID: m.OriginatorID,
			Reason:       m.Reason,
			CreatedAt:    m.CreatedAt,
		})
	}

	return StockItemDTO{
		VariantID:         item.VariantID,
		SKU:               item.SKU,
		QuantityOnHand:    item.QuantityOnHand,
		QuantityReserved:  item.QuantityReserved,
		QuantityAvailable: item.QuantityAvailable(),
		Backorderable:     item.Backorderable,
		Movements:         movements,
		UpdatedAt:         item.UpdatedAt,
	}
}

func toAddressDTO(a domain.Address) AddressDTO {
	return AddressDTO{
		Address1: a.Address1,
		Address2: a.Address2,
		City:     a.City,
		State:    a.State,
		Zipcode:  a.Zipcode,
		Country:  a.Country,
		Phone:    a.Phone,
	}
}

func toDomainAddress(a AddressInput) domain.Address {
	return domain.Address{
		Address1: a.Address1,
		Address2: a.Address2,
		City:     a.City,
		State:    a.State,
		Zipcode:  a.Zipcode,
		Country:  a.Country,
		Phone:    a.Phone,
	}
}

// ToStockLocationListDTOs converts domain locations to slim list DTOs
func ToStockLocationListDTOs(locations []*domain.StockLocation) []StockLocationListDTO {
	dtos := make([]StockLocationListDTO, 0, len(locations))
	for _, location := range locations {
		totalOnHand := 0
		for i := range location.StockItems {
			totalOnHand += location.StockItems[i].QuantityOnHand
		}

		dtos = append(dtos, StockLocationListDTO{
			LocationID:    location.LocationID,
			Name:          location.Name,
			Presentation:  location.Presentation,
			Type:          string(location.Type),
			Active:        location.Active,
			Default:       location.Default,
			ShipEnabled:   location.ShipEnabled,
			PickupEnabled: location.PickupEnabled,
			Latitude:      location.Latitude,
			Longitude:     location.Longitude,
			VariantCount:  len(location.StockItems),
			TotalOnHand:   totalOnHand,
		})
	}
	return dtos
}

// ToFulfillmentPlanDTO converts a domain fulfillment plan to its DTO
func ToFulfillmentPlanDTO(plan *domain.FulfillmentPlan, mode domain.FulfillmentMode) *FulfillmentPlanDTO {
	lines := make([]LineAllocationDTO, 0, len(plan.Lines))
	for _, line := range plan.Lines {
		allocations := make([]AllocationDTO, 0, len(line.Allocations))
		for _, a := range line.Allocations {
			allocations = append(allocations, AllocationDTO{
				LocationID: a.LocationID,
				Quantity:   a.Quantity,
				Backorder:  a.Backorder,
			})
		}
		lines = append(lines, LineAllocationDTO{
			VariantID:   line.VariantID,
			Quantity:    line.Quantity,
			Allocations: allocations,
		})
	}

	return &FulfillmentPlanDTO{
		OrderID:  plan.OrderID,
		Strategy: string(plan.Strategy),
		Mode:     string(mode),
		Lines:    lines,
	}
}
