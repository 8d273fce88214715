package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/commerce-platform/stock-service/internal/application"
	"github.com/commerce-platform/stock-service/pkg/errors"
	"github.com/commerce-platform/stock-service/pkg/logging"
	"github.com/commerce-platform/stock-service/pkg/middleware"
)

// StockLocationHandlers contains handlers for stock location operations
type StockLocationHandlers struct {
	service StockLocationService
	logger  *logging.Logger
}

// NewStockLocationHandlers creates a new StockLocationHandlers
func NewStockLocationHandlers(service StockLocationService, logger *logging.Logger) *StockLocationHandlers {
	return &StockLocationHandlers{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers stock location routes on the router
func (h *StockLocationHandlers) RegisterRoutes(router *gin.RouterGroup) {
	locations := router.Group("/stock-locations")
	{
		locations.POST("", h.CreateStockLocation)
		locations.GET("", h.ListStockLocations)
		locations.GET("/:locationId", h.GetStockLocation)
		locations.PATCH("/:locationId", h.UpdateStockLocation)
		locations.DELETE("/:locationId", h.DeleteStockLocation)
		locations.POST("/:locationId/restore", h.RestoreStockLocation)
		locations.PUT("/:locationId/default", h.SetDefault)
		locations.POST("/:locationId/restock", h.Restock)
		locations.POST("/:locationId/unstock", h.Unstock)
		locations.GET("/:locationId/validate", h.ValidateStockLocation)
	}
}

type addressRequest struct {
	Address1 string `json:"address1"`
	Address2 string `json:"address2"`
	City     string `json:"city"`
	State    string `json:"state"`
	Zipcode  string `json:"zipcode"`
	Country  string `json:"country"`
	Phone    string `json:"phone"`
}

func (a addressRequest) toInput() application.AddressInput {
	return application.AddressInput{
		Address1: a.Address1,
		Address2: a.Address2,
		City:     a.City,
		State:    a.State,
		Zipcode:  a.Zipcode,
		Country:  a.Country,
		Phone:    a.Phone,
	}
}

// CreateStockLocation handles stock location creation
func (h *StockLocationHandlers) CreateStockLocation(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger)

	var req struct {
		Name            string            `json:"name" binding:"required"`
		Presentation    string            `json:"presentation"`
		Type            string            `json:"type"`
		Active          *bool             `json:"active"`
		Default         bool              `json:"default"`
		ShipEnabled     *bool             `json:"shipEnabled"`
		PickupEnabled   *bool             `json:"pickupEnabled"`
		Address         addressRequest    `json:"address"`
		Latitude        *float64          `json:"latitude"`
		Longitude       *float64          `json:"longitude"`
		OperatingHours  map[string]string `json:"operatingHours"`
		PublicMetadata  map[string]string `json:"publicMetadata"`
		PrivateMetadata map[string]string `json:"privateMetadata"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		responder.RespondBadRequest(err.Error())
		return
	}

	cmd := application.CreateStockLocationCommand{
		Name:            req.Name,
		Presentation:    req.Presentation,
		Type:            req.Type,
		Active:          req.Active,
		Default:         req.Default,
		ShipEnabled:     req.ShipEnabled,
		PickupEnabled:   req.PickupEnabled,
		Address:         req.Address.toInput(),
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		OperatingHours:  req.OperatingHours,
		PublicMetadata:  req.PublicMetadata,
		PrivateMetadata: req.PrivateMetadata,
	}

	location, err := h.service.Create(c.Request.Context(), cmd)
	if err != nil {
		h.respondError(responder, err)
		return
	}

	c.JSON(http.StatusCreated, location)
}

// GetStockLocation handles getting a stock location by ID
func (h *StockLocationHandlers) GetStockLocation(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger)

	query := application.GetStockLocationQuery{LocationID: c.Param("locationId")}

	location, err := h.service.Get(c.Request.Context(), query)
	if err != nil {
		h.respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, location)
}

// ListStockLocations handles listing stock locations
func (h *StockLocationHandlers) ListStockLocations(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	query := application.ListStockLocationsQuery{
		Filter: c.Query("filter"),
		Limit:  limit,
		Offset: offset,
	}

	locations, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		h.respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, locations)
}

// UpdateStockLocation handles a partial update of a stock location
func (h *StockLocationHandlers) UpdateStockLocation(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger)

	var req struct {
		Name            *string           `json:"name"`
		Presentation    *string           `json:"presentation"`
		Type            *string           `json:"type"`
		Active          *bool             `json:"active"`
		ShipEnabled     *bool             `json:"shipEnabled"`
		PickupEnabled   *bool             `json:"pickupEnabled"`
		Address         *addressRequest   `json:"address"`
		Latitude        *float64          `json:"latitude"`
		Longitude       *float64          `json:"longitude"`
		OperatingHours  map[string]string `json:"operatingHours"`
		PublicMetadata  map[string]string `json:"publicMetadata"`
		PrivateMetadata map[string]string `json:"privateMetadata"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		responder.RespondBadRequest(err.Error())
		return
	}

	cmd := application.UpdateStockLocationCommand{
		LocationID:      c.Param("locationId"),
		Name:            req.Name,
		Presentation:    req.Presentation,
		Type:            req.Type,
		Active:          req.Active,
		ShipEnabled:     req.ShipEnabled,
		PickupEnabled:   req.PickupEnabled,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		OperatingHours:  req.OperatingHours,
		PublicMetadata:  req.PublicMetadata,
		PrivateMetadata: req.PrivateMetadata,
	}
	if req.Address != nil {
		input := req.Address.toInput()
		cmd.Address = &input
	}

	location, err := h.service.Update(c.Request.Context(), cmd)
	if err != nil {
		h.respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, location)
}

// DeleteStockLocation handles soft-deleting a stock location
func (h *StockLocationHandlers) DeleteStockLocation(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger)

	cmd := application.DeleteStockLocationCommand{
		LocationID: c.Param("locationId"),
		DeletedBy:  c.Query("deletedBy"),
	}

	// The guard flags come from the order and transfer services
	if c.Request.ContentLength > 0 {
		var req struct {
			DeletedBy                    string `json:"deletedBy"`
			HasPendingShipments          bool   `json:"hasPendingShipments"`
			HasActiveStockTransfers      bool   `json:"hasActiveStockTransfers"`
			HasBackorderedInventoryUnits bool   `json:"hasBackorderedInventoryUnits"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}
		if req.DeletedBy != "" {
			cmd.DeletedBy = req.DeletedBy
		}
		cmd.HasPendingShipments = req.HasPendingShipments
		cmd.HasActiveStockTransfers = req.HasActiveStockTransfers
		cmd.HasBackorderedInventoryUnits = req.HasBackorderedInventoryUnits
	}

	location, err := h.service.Delete(c.Request.Context(), cmd)
	if err != nil {
		h.respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, location)
}

// RestoreStockLocation handles restoring a soft-deleted stock location
func (h *StockLocationHandlers) RestoreStockLocation(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger)

	cmd := application.RestoreStockLocationCommand{LocationID: c.Param("locationId")}

	location, err := h.service.Restore(c.Request.Context(), cmd)
	if err != nil {
		h.respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, location)
}

// SetDefault handles making a stock location the default
func (h *StockLocationHandlers) SetDefault(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger)

	cmd := application.SetDefaultCommand{LocationID: c.Param("locationId")}

	location, err := h.service.SetDefault(c.Request.Context(), cmd)
	if err != nil {
		h.respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, location)
}

// Restock handles adding stock for a variant
func (h *StockLocationHandlers) Restock(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger)

	var req struct {
		VariantID     string `json:"variantId" binding:"required"`
		SKU           string `json:"sku"`
		Backorderable bool   `json:"backorderable"`
		Quantity      int    `json:"quantity" binding:"required"`
		Originator    string `json:"originator" binding:"required"`
		OriginatorID  string `json:"originatorId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		responder.RespondBadRequest(err.Error())
		return
	}

	cmd := application.RestockCommand{
		LocationID:    c.Param("locationId"),
		VariantID:     req.VariantID,
		SKU:           req.SKU,
		Backorderable: req.Backorderable,
		Quantity:      req.Quantity,
		Originator:    req.Originator,
		OriginatorID:  req.OriginatorID,
	}

	location, err := h.service.Restock(c.Request.Context(), cmd)
	if err != nil {
		h.respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, location)
}

// Unstock handles removing stock for a variant
func (h *StockLocationHandlers) Unstock(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger)

	var req struct {
		VariantID    string `json:"variantId" binding:"required"`
		Quantity     int    `json:"quantity" binding:"required"`
		Originator   string `json:"originator" binding:"required"`
		OriginatorID string `json:"originatorId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		responder.RespondBadRequest(err.Error())
		return
	}

	cmd := application.UnstockCommand{
		LocationID:   c.Param("locationId"),
		VariantID:    req.VariantID,
		Quantity:     req.Quantity,
		Originator:   req.Originator,
		OriginatorID: req.OriginatorID,
	}

	location, err := h.service.Unstock(c.Request.Context(), cmd)
	if err != nil {
		h.respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, location)
}

// ValidateStockLocation handles checking the invariants of a location
func (h *StockLocationHandlers) ValidateStockLocation(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger)

	query := application.GetStockLocationQuery{LocationID: c.Param("locationId")}

	report, err := h.service.Validate(c.Request.Context(), query)
	if err != nil {
		h.respondError(responder, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *StockLocationHandlers) respondError(responder *middleware.ErrorResponder, err error) {
	if appErr, ok := errors.AsAppError(err); ok {
		responder.RespondWithAppError(appErr)
	} else {
		responder.RespondInternalError(err)
	}
}
