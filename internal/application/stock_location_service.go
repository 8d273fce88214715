package application

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/commerce-platform/stock-service/internal/domain"
	"github.com/commerce-platform/stock-service/pkg/errors"
	"github.com/commerce-platform/stock-service/pkg/logging"
	"github.com/commerce-platform/stock-service/pkg/metrics"
)

// StockLocationService handles stock location use cases
type StockLocationService struct {
	repo    domain.StockLocationRepository
	logger  *logging.Logger
	metrics *metrics.Metrics
}

// NewStockLocationService creates a new StockLocationService
func NewStockLocationService(
	repo domain.StockLocationRepository,
	logger *logging.Logger,
	m *metrics.Metrics,
) *StockLocationService {
	return &StockLocationService{
		repo:    repo,
		logger:  logger,
		metrics: m,
	}
}

// Create creates a new stock location
func (s *StockLocationService) Create(ctx context.Context, cmd CreateStockLocationCommand) (*StockLocationDTO, error) {
	location, err := domain.NewStockLocation(domain.NewStockLocationParams{
		Name:            cmd.Name,
		Presentation:    cmd.Presentation,
		Type:            domain.LocationType(cmd.Type),
		Active:          cmd.Active,
		Default:         cmd.Default,
		ShipEnabled:     cmd.ShipEnabled,
		PickupEnabled:   cmd.PickupEnabled,
		Address:         toDomainAddress(cmd.Address),
		Latitude:        cmd.Latitude,
		Longitude:       cmd.Longitude,
		OperatingHours:  cmd.OperatingHours,
		PublicMetadata:  cmd.PublicMetadata,
		PrivateMetadata: cmd.PrivateMetadata,
	})
	if err != nil {
		return nil, mapDomainError(err)
	}

	existing, err := s.repo.FindByName(ctx, location.Name)
	if err != nil {
		s.logger.Error("Failed to check name uniqueness", "name", location.Name, "error", err)
		return nil, fmt.Errorf("failed to check name uniqueness: %w", err)
	}
	if existing != nil {
		return nil, errors.ErrConflict(fmt.Sprintf("stock location with name %q already exists", location.Name))
	}

	// A new default displaces the current one
	if location.Default {
		if err := s.unsetCurrentDefault(ctx, location.LocationID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Save(ctx, location); err != nil {
		s.logger.Error("Failed to create stock location", "name", location.Name, "error", err)
		return nil, mapDomainError(err)
	}

	if s.metrics != nil {
		s.metrics.RecordLocationCreated(string(location.Type))
	}

	s.logger.Info("Created stock location", "locationId", location.LocationID, "name", location.Name)
	return ToStockLocationDTO(location), nil
}

// Get retrieves a stock location by ID
func (s *StockLocationService) Get(ctx context.Context, query GetStockLocationQuery) (*StockLocationDTO, error) {
	location, err := s.loadLocation(ctx, query.LocationID)
	if err != nil {
		return nil, err
	}
	return ToStockLocationDTO(location), nil
}

// List lists stock locations, optionally filtered by capability
func (s *StockLocationService) List(ctx context.Context, query ListStockLocationsQuery) ([]StockLocationListDTO, error) {
	var (
		locations []*domain.StockLocation
		err       error
	)

	switch query.Filter {
	case "active":
		locations, err = s.repo.FindActive(ctx)
	case "shippable":
		locations, err = s.repo.FindShippable(ctx)
	case "pickup":
		locations, err = s.repo.FindPickup(ctx)
	case "":
		locations, err = s.repo.FindAll(ctx, query.Limit, query.Offset)
	default:
		return nil, errors.ErrValidation(fmt.Sprintf("unknown filter %q", query.Filter))
	}

	if err != nil {
		s.logger.Error("Failed to list stock locations", "filter", query.Filter, "error", err)
		return nil, fmt.Errorf("failed to list stock locations: %w", err)
	}

	return ToStockLocationListDTOs(locations), nil
}

// Update applies a partial update to a stock location
func (s *StockLocationService) Update(ctx context.Context, cmd UpdateStockLocationCommand) (*StockLocationDTO, error) {
	location, err := s.loadLocation(ctx, cmd.LocationID)
	if err != nil {
		return nil, err
	}

	patch := domain.StockLocationPatch{
		Name:            cmd.Name,
		Presentation:    cmd.Presentation,
		Active:          cmd.Active,
		ShipEnabled:     cmd.ShipEnabled,
		PickupEnabled:   cmd.PickupEnabled,
		Latitude:        cmd.Latitude,
		Longitude:       cmd.Longitude,
		OperatingHours:  cmd.OperatingHours,
		PublicMetadata:  cmd.PublicMetadata,
		PrivateMetadata: cmd.PrivateMetadata,
	}
	if cmd.Type != nil {
		t := domain.LocationType(*cmd.Type)
		patch.Type = &t
	}
	if cmd.Address != nil {
		addr := toDomainAddress(*cmd.Address)
		patch.Address = &addr
	}

	if err := location.Update(patch); err != nil {
		return nil, mapDomainError(err)
	}

	// A rename must not collide with another live location
	if cmd.Name != nil {
		existing, err := s.repo.FindByName(ctx, location.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to check name uniqueness: %w", err)
		}
		if existing != nil && existing.LocationID != location.LocationID {
			return nil, errors.ErrConflict(fmt.Sprintf("stock location with name %q already exists", location.Name))
		}
	}

	if err := s.saveLocation(ctx, location); err != nil {
		return nil, err
	}

	s.logger.Info("Updated stock location", "locationId", location.LocationID)
	return ToStockLocationDTO(location), nil
}

// Delete soft-deletes a stock location
func (s *StockLocationService) Delete(ctx context.Context, cmd DeleteStockLocationCommand) (*StockLocationDTO, error) {
	location, err := s.loadLocation(ctx, cmd.LocationID)
	if err != nil {
		return nil, err
	}

	guards := domain.DeleteGuards{
		HasPendingShipments:          cmd.HasPendingShipments,
		HasActiveStockTransfers:      cmd.HasActiveStockTransfers,
		HasBackorderedInventoryUnits: cmd.HasBackorderedInventoryUnits,
	}

	if err := location.Delete(cmd.DeletedBy, guards); err != nil {
		return nil, mapDomainError(err)
	}

	if err := s.saveLocation(ctx, location); err != nil {
		return nil, err
	}

	s.logger.Info("Deleted stock location", "locationId", location.LocationID, "deletedBy", cmd.DeletedBy)
	return ToStockLocationDTO(location), nil
}

// Restore restores a soft-deleted stock location
func (s *StockLocationService) Restore(ctx context.Context, cmd RestoreStockLocationCommand) (*StockLocationDTO, error) {
	location, err := s.loadLocation(ctx, cmd.LocationID)
	if err != nil {
		return nil, err
	}

	// A restored name must not collide with a live location created since
	if location.IsDeleted {
		existing, err := s.repo.FindByName(ctx, location.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to check name uniqueness: %w", err)
		}
		if existing != nil && existing.LocationID != location.LocationID {
			return nil, errors.ErrConflict(fmt.Sprintf("stock location with name %q already exists", location.Name))
		}
	}

	location.Restore()

	if err := s.saveLocation(ctx, location); err != nil {
		return nil, err
	}

	s.logger.Info("Restored stock location", "locationId", location.LocationID)
	return ToStockLocationDTO(location), nil
}

// SetDefault makes a location the single default, unsetting the previous one.
// The two aggregates are saved separately; if the second save fails the
// system is briefly without a default, never with two.
func (s *StockLocationService) SetDefault(ctx context.Context, cmd SetDefaultCommand) (*StockLocationDTO, error) {
	location, err := s.loadLocation(ctx, cmd.LocationID)
	if err != nil {
		return nil, err
	}

	if location.IsDeleted {
		return nil, errors.ErrValidation("a deleted stock location cannot be the default")
	}

	if location.Default {
		return ToStockLocationDTO(location), nil
	}

	if err := s.unsetCurrentDefault(ctx, location.LocationID); err != nil {
		return nil, err
	}

	location.MakeDefault()

	if err := s.saveLocation(ctx, location); err != nil {
		return nil, err
	}

	s.logger.Info("Set default stock location", "locationId", location.LocationID)
	return ToStockLocationDTO(location), nil
}

// Restock adds stock for a variant at a location
func (s *StockLocationService) Restock(ctx context.Context, cmd RestockCommand) (*StockLocationDTO, error) {
	location, err := s.loadLocation(ctx, cmd.LocationID)
	if err != nil {
		return nil, err
	}

	variant := domain.Variant{
		VariantID:     cmd.VariantID,
		SKU:           cmd.SKU,
		Backorderable: cmd.Backorderable,
	}

	movement, err := location.Restock(variant, cmd.Quantity, domain.MovementOriginator(cmd.Originator), cmd.OriginatorID)
	if err != nil {
		return nil, mapDomainError(err)
	}

	if err := s.saveLocation(ctx, location); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordStockMovement("in", cmd.Originator)
	}

	s.logger.Info("Restocked variant",
		"locationId", location.LocationID,
		"variantId", cmd.VariantID,
		"quantity", cmd.Quantity,
		"movementId", movement.MovementID.String(),
	)
	return ToStockLocationDTO(location), nil
}

// Unstock removes stock for a variant at a location
func (s *StockLocationService) Unstock(ctx context.Context, cmd UnstockCommand) (*StockLocationDTO, error) {
	location, err := s.loadLocation(ctx, cmd.LocationID)
	if err != nil {
		return nil, err
	}

	movement, err := location.Unstock(cmd.VariantID, cmd.Quantity, domain.MovementOriginator(cmd.Originator), cmd.OriginatorID)
	if err != nil {
		return nil, mapDomainError(err)
	}

	if err := s.saveLocation(ctx, location); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordStockMovement("out", cmd.Originator)
	}

	s.logger.Info("Unstocked variant",
		"locationId", location.LocationID,
		"variantId", cmd.VariantID,
		"quantity", cmd.Quantity,
		"movementId", movement.MovementID.String(),
	)
	return ToStockLocationDTO(location), nil
}

// Validate checks the stock invariants of a location
func (s *StockLocationService) Validate(ctx context.Context, query GetStockLocationQuery) (*ValidationReportDTO, error) {
	location, err := s.loadLocation(ctx, query.LocationID)
	if err != nil {
		return nil, err
	}

	report := &ValidationReportDTO{
		LocationID: location.LocationID,
		Valid:      true,
	}
	if err := location.ValidateInvariants(); err != nil {
		report.Valid = false
		report.Error = err.Error()
	}
	return report, nil
}

func (s *StockLocationService) loadLocation(ctx context.Context, locationID string) (*domain.StockLocation, error) {
	if locationID == "" {
		return nil, errors.ErrValidation("locationId is required")
	}

	location, err := s.repo.FindByID(ctx, locationID)
	if err != nil {
		s.logger.Error("Failed to load stock location", "locationId", locationID, "error", err)
		return nil, fmt.Errorf("failed to load stock location: %w", err)
	}
	if location == nil {
		return nil, errors.ErrNotFoundWithID("stock location", locationID)
	}
	return location, nil
}

func (s *StockLocationService) saveLocation(ctx context.Context, location *domain.StockLocation) error {
	if err := s.repo.Save(ctx, location); err != nil {
		if stderrors.Is(err, domain.ErrVersionConflict) && s.metrics != nil {
			s.metrics.RecordVersionConflict()
		}
		s.logger.Error("Failed to save stock location", "locationId", location.LocationID, "error", err)
		return mapDomainError(err)
	}
	return nil
}

func (s *StockLocationService) unsetCurrentDefault(ctx context.Context, exceptID string) error {
	current, err := s.repo.FindDefault(ctx)
	if err != nil {
		return fmt.Errorf("failed to find default stock location: %w", err)
	}
	if current == nil || current.LocationID == exceptID {
		return nil
	}

	current.UnsetDefault()
	return s.saveLocation(ctx, current)
}

// mapDomainError translates domain sentinels into transport-level AppErrors
func mapDomainError(err error) error {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, domain.ErrLocationNotFound),
		stderrors.Is(err, domain.ErrStockItemNotFound):
		return errors.ErrNotFound("resource").Wrap(err)
	case stderrors.Is(err, domain.ErrVersionConflict),
		stderrors.Is(err, domain.ErrNameTaken),
		stderrors.Is(err, domain.ErrHasReservedStock),
		stderrors.Is(err, domain.ErrHasStockItems),
		stderrors.Is(err, domain.ErrHasPendingShipments),
		stderrors.Is(err, domain.ErrHasActiveTransfers),
		stderrors.Is(err, domain.ErrHasBackorderedUnits):
		return errors.ErrConflict(err.Error()).Wrap(err)
	case stderrors.Is(err, domain.ErrUnfulfillable):
		return errors.ErrUnfulfillable(err.Error()).Wrap(err)
	case stderrors.Is(err, domain.ErrNameRequired),
		stderrors.Is(err, domain.ErrVariantRequired),
		stderrors.Is(err, domain.ErrInvalidQuantity),
		stderrors.Is(err, domain.ErrInvalidCoordinates),
		stderrors.Is(err, domain.ErrInvalidLocationType),
		stderrors.Is(err, domain.ErrInsufficientStock),
		stderrors.Is(err, domain.ErrNegativeOnHand),
		stderrors.Is(err, domain.ErrNegativeReserved),
		stderrors.Is(err, domain.ErrReservedExceedsOnHand),
		stderrors.Is(err, domain.ErrInvalidStrategy),
		stderrors.Is(err, domain.ErrInvalidMode),
		stderrors.Is(err, domain.ErrNoOrderLines),
		stderrors.Is(err, domain.ErrMissingDestination):
		return errors.ErrValidation(err.Error()).Wrap(err)
	default:
		return errors.FromError(err)
	}
}
