package application

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/commerce-platform/stock-service/internal/domain"
	"github.com/commerce-platform/stock-service/pkg/logging"
	"github.com/commerce-platform/stock-service/pkg/metrics"
)

// FulfillmentService plans order fulfillment across stock locations
type FulfillmentService struct {
	repo    domain.StockLocationRepository
	logger  *logging.Logger
	metrics *metrics.Metrics
}

// NewFulfillmentService creates a new FulfillmentService
func NewFulfillmentService(
	repo domain.StockLocationRepository,
	logger *logging.Logger,
	m *metrics.Metrics,
) *FulfillmentService {
	return &FulfillmentService{
		repo:    repo,
		logger:  logger,
		metrics: m,
	}
}

// Plan computes a fulfillment plan for an order. Planning never mutates
// stock; the caller reserves against the plan afterwards.
func (s *FulfillmentService) Plan(ctx context.Context, cmd PlanFulfillmentCommand) (*FulfillmentPlanDTO, error) {
	mode := domain.FulfillmentMode(cmd.Mode)
	if mode == "" {
		mode = domain.ModeShip
	}

	var (
		locations []*domain.StockLocation
		err       error
	)
	switch mode {
	case domain.ModePickup:
		locations, err = s.repo.FindPickup(ctx)
	default:
		locations, err = s.repo.FindShippable(ctx)
	}
	if err != nil {
		s.logger.Error("Failed to load candidate locations", "orderId", cmd.OrderID, "error", err)
		return nil, fmt.Errorf("failed to load candidate locations: %w", err)
	}

	order := domain.FulfillmentOrder{
		OrderID:              cmd.OrderID,
		Mode:                 domain.FulfillmentMode(cmd.Mode),
		DestinationLatitude:  cmd.DestinationLatitude,
		DestinationLongitude: cmd.DestinationLongitude,
		Lines:                make([]domain.OrderLine, 0, len(cmd.Lines)),
	}
	for _, line := range cmd.Lines {
		order.Lines = append(order.Lines, domain.OrderLine{
			VariantID: line.VariantID,
			Quantity:  line.Quantity,
		})
	}

	strategy := domain.FulfillmentStrategy(cmd.Strategy)
	if cmd.Strategy == "" {
		strategy = domain.StrategyNearestLocation
	}

	plan, err := domain.PlanFulfillment(order, locations, strategy)
	if err != nil {
		if s.metrics != nil && stderrors.Is(err, domain.ErrUnfulfillable) {
			s.metrics.RecordFulfillmentPlan(string(strategy), false)
		}
		return nil, mapDomainError(err)
	}

	if s.metrics != nil {
		s.metrics.RecordFulfillmentPlan(string(strategy), true)
	}

	s.logger.Info("Planned fulfillment",
		"orderId", cmd.OrderID,
		"strategy", string(strategy),
		"mode", string(mode),
		"lines", len(plan.Lines),
		"candidates", len(locations),
	)
	return ToFulfillmentPlanDTO(plan, mode), nil
}
