package domain

import (
	"errors"
	"fmt"
	"sort"
)

// Fulfillment planning errors
var (
	ErrInvalidStrategy    = errors.New("invalid fulfillment strategy")
	ErrInvalidMode        = errors.New("invalid fulfillment mode")
	ErrNoOrderLines       = errors.New("order has no line items")
	ErrMissingDestination = errors.New("destination coordinates are required for the nearest-location strategy")
	ErrUnfulfillable      = errors.New("no combination of locations can satisfy the line item")
)

// FulfillmentStrategy selects the location-ranking policy used by planning
type FulfillmentStrategy string

const (
	StrategyNearestLocation FulfillmentStrategy = "nearest_location"
	StrategyHighestStock    FulfillmentStrategy = "highest_stock"
)

// IsValid checks if the strategy is valid
func (s FulfillmentStrategy) IsValid() bool {
	switch s {
	case StrategyNearestLocation, StrategyHighestStock:
		return true
	default:
		return false
	}
}

// FulfillmentMode determines which location capability qualifies a candidate
type FulfillmentMode string

const (
	ModeShip   FulfillmentMode = "ship"
	ModePickup FulfillmentMode = "pickup"
)

// IsValid checks if the mode is valid
func (m FulfillmentMode) IsValid() bool {
	switch m {
	case ModeShip, ModePickup:
		return true
	default:
		return false
	}
}

// OrderLine is one line item of the order being planned
type OrderLine struct {
	VariantID string
	Quantity  int
}

// FulfillmentOrder is the slice of an order the planner needs: its lines,
// its fulfillment mode and, for distance ranking, its destination.
type FulfillmentOrder struct {
	OrderID              string
	Mode                 FulfillmentMode
	DestinationLatitude  *float64
	DestinationLongitude *float64
	Lines                []OrderLine
}

// Allocation assigns a quantity of one line to one location
type Allocation struct {
	LocationID string `json:"locationId"`
	Quantity   int    `json:"quantity"`
	Backorder  int    `json:"backorder,omitempty"` // units beyond available stock
}

// LineAllocation is the planned sourcing for one order line
type LineAllocation struct {
	VariantID   string       `json:"variantId"`
	Quantity    int          `json:"quantity"`
	Allocations []Allocation `json:"allocations"`
}

// FulfillmentPlan maps order lines to location allocations. Planning never
// mutates stock; the caller performs the actual reservation afterwards and
// must re-validate, since a plan can go stale under concurrent demand.
type FulfillmentPlan struct {
	OrderID  string              `json:"orderId"`
	Strategy FulfillmentStrategy `json:"strategy"`
	Lines    []LineAllocation    `json:"lines"`
}

// candidate pairs a location with its ranking keys for one variant
type candidate struct {
	location    *StockLocation
	item        *StockItem
	available   int
	distance    float64
	hasDistance bool
}

// PlanFulfillment decides which locations should source each order line.
// For every line it considers each location that can ship (or allows pickup,
// per the order's mode) and holds a stock item for the variant, ranks the
// candidates by the chosen strategy, and splits the quantity across them in
// rank order. A location with nothing available and no backorder support is
// never selected.
func PlanFulfillment(order FulfillmentOrder, locations []*StockLocation, strategy FulfillmentStrategy) (*FulfillmentPlan, error) {
	if !strategy.IsValid() {
		return nil, ErrInvalidStrategy
	}
	mode := order.Mode
	if mode == "" {
		mode = ModeShip
	}
	if !mode.IsValid() {
		return nil, ErrInvalidMode
	}
	if len(order.Lines) == 0 {
		return nil, ErrNoOrderLines
	}
	if strategy == StrategyNearestLocation && (order.DestinationLatitude == nil || order.DestinationLongitude == nil) {
		return nil, ErrMissingDestination
	}

	plan := &FulfillmentPlan{
		OrderID:  order.OrderID,
		Strategy: strategy,
		Lines:    make([]LineAllocation, 0, len(order.Lines)),
	}

	for _, line := range order.Lines {
		if line.VariantID == "" {
			return nil, ErrVariantRequired
		}
		if line.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}

		candidates := collectCandidates(order, locations, line.VariantID, mode)
		rankCandidates(candidates, strategy)

		allocation, err := allocateLine(line, candidates)
		if err != nil {
			return nil, err
		}
		plan.Lines = append(plan.Lines, *allocation)
	}

	return plan, nil
}

func collectCandidates(order FulfillmentOrder, locations []*StockLocation, variantID string, mode FulfillmentMode) []candidate {
	candidates := make([]candidate, 0, len(locations))
	for _, loc := range locations {
		if loc == nil {
			continue
		}
		if mode == ModeShip && !loc.CanShip() {
			continue
		}
		if mode == ModePickup && !loc.CanPickup() {
			continue
		}

		item := loc.FindStockItem(variantID)
		if item == nil {
			continue
		}

		available := item.QuantityAvailable()
		if available <= 0 && !item.Backorderable {
			continue
		}

		c := candidate{location: loc, item: item, available: available}
		if order.DestinationLatitude != nil && order.DestinationLongitude != nil {
			c.distance, c.hasDistance = loc.DistanceTo(*order.DestinationLatitude, *order.DestinationLongitude)
		}
		candidates = append(candidates, c)
	}
	return candidates
}

func rankCandidates(candidates []candidate, strategy FulfillmentStrategy) {
	switch strategy {
	case StrategyNearestLocation:
		sort.SliceStable(candidates, func(i, j int) bool {
			// Locations without coordinates sort last
			if candidates[i].hasDistance != candidates[j].hasDistance {
				return candidates[i].hasDistance
			}
			if candidates[i].distance != candidates[j].distance {
				return candidates[i].distance < candidates[j].distance
			}
			return candidates[i].location.LocationID < candidates[j].location.LocationID
		})
	case StrategyHighestStock:
		sort.SliceStable(candidates, func(i, j int) bool {
			if candidates[i].available != candidates[j].available {
				return candidates[i].available > candidates[j].available
			}
			return candidates[i].location.LocationID < candidates[j].location.LocationID
		})
	}
}

func allocateLine(line OrderLine, candidates []candidate) (*LineAllocation, error) {
	result := &LineAllocation{
		VariantID:   line.VariantID,
		Quantity:    line.Quantity,
		Allocations: make([]Allocation, 0, 1),
	}

	remaining := line.Quantity

	// First pass: on-hand availability in rank order
	for _, c := range candidates {
		if remaining == 0 {
			break
		}
		if c.available <= 0 {
			continue
		}
		take := c.available
		if take > remaining {
			take = remaining
		}
		result.Allocations = append(result.Allocations, Allocation{
			LocationID: c.location.LocationID,
			Quantity:   take,
		})
		remaining -= take
	}

	// Second pass: backorder the remainder at the best-ranked backorderable location
	if remaining > 0 {
		for _, c := range candidates {
			if !c.item.Backorderable {
				continue
			}
			merged := false
			for i := range result.Allocations {
				if result.Allocations[i].LocationID == c.location.LocationID {
					result.Allocations[i].Quantity += remaining
					result.Allocations[i].Backorder = remaining
					merged = true
					break
				}
			}
			if !merged {
				result.Allocations = append(result.Allocations, Allocation{
					LocationID: c.location.LocationID,
					Quantity:   remaining,
					Backorder:  remaining,
				})
			}
			remaining = 0
			break
		}
	}

	if remaining > 0 {
		return nil, fmt.Errorf("%w: variant %s short by %d unit(s)", ErrUnfulfillable, line.VariantID, remaining)
	}

	return result, nil
}
