package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/commerce-platform/stock-service/internal/application"
	"github.com/commerce-platform/stock-service/pkg/errors"
	"github.com/commerce-platform/stock-service/pkg/logging"
	"github.com/commerce-platform/stock-service/pkg/middleware"
)

// FulfillmentHandlers contains handlers for fulfillment planning
type FulfillmentHandlers struct {
	service FulfillmentService
	logger  *logging.Logger
}

// NewFulfillmentHandlers creates a new FulfillmentHandlers
func NewFulfillmentHandlers(service FulfillmentService, logger *logging.Logger) *FulfillmentHandlers {
	return &FulfillmentHandlers{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers fulfillment routes on the router
func (h *FulfillmentHandlers) RegisterRoutes(router *gin.RouterGroup) {
	fulfillment := router.Group("/fulfillment")
	{
		fulfillment.POST("/plan", h.PlanFulfillment)
	}
}

// PlanFulfillment handles computing a fulfillment plan for an order
func (h *FulfillmentHandlers) PlanFulfillment(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger)

	var req struct {
		OrderID     string   `json:"orderId" binding:"required"`
		Mode        string   `json:"mode"`
		Strategy    string   `json:"strategy"`
		Destination *struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"destination"`
		Lines []struct {
			VariantID string `json:"variantId"`
			Quantity  int    `json:"quantity"`
		} `json:"lines" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		responder.RespondBadRequest(err.Error())
		return
	}

	cmd := application.PlanFulfillmentCommand{
		OrderID:  req.OrderID,
		Mode:     req.Mode,
		Strategy: req.Strategy,
	}
	if req.Destination != nil {
		cmd.DestinationLatitude = &req.Destination.Latitude
		cmd.DestinationLongitude = &req.Destination.Longitude
	}
	for _, line := range req.Lines {
		cmd.Lines = append(cmd.Lines, application.OrderLineInput{
			VariantID: line.VariantID,
			Quantity:  line.Quantity,
		})
	}

	plan, err := h.service.Plan(c.Request.Context(), cmd)
	if err != nil {
		if appErr, ok := errors.AsAppError(err); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusOK, plan)
}
