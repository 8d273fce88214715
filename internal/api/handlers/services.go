package handlers

import (
	"context"

	"github.com/commerce-platform/stock-service/internal/application"
)

// StockLocationService is the application surface the handlers depend on
type StockLocationService interface {
	Create(ctx context.Context, cmd application.CreateStockLocationCommand) (*application.StockLocationDTO, error)
	Get(ctx context.Context, query application.GetStockLocationQuery) (*application.StockLocationDTO, error)
	List(ctx context.Context, query application.ListStockLocationsQuery) ([]application.StockLocationListDTO, error)
	Update(ctx context.Context, cmd application.UpdateStockLocationCommand) (*application.StockLocationDTO, error)
	Delete(ctx context.Context, cmd application.DeleteStockLocationCommand) (*application.StockLocationDTO, error)
	Restore(ctx context.Context, cmd application.RestoreStockLocationCommand) (*application.StockLocationDTO, error)
	SetDefault(ctx context.Context, cmd application.SetDefaultCommand) (*application.StockLocationDTO, error)
	Restock(ctx context.Context, cmd application.RestockCommand) (*application.StockLocationDTO, error)
	Unstock(ctx context.Context, cmd application.UnstockCommand) (*application.StockLocationDTO, error)
	Validate(ctx context.Context, query application.GetStockLocationQuery) (*application.ValidationReportDTO, error)
}

// FulfillmentService plans order fulfillment
type FulfillmentService interface {
	Plan(ctx context.Context, cmd application.PlanFulfillmentCommand) (*application.FulfillmentPlanDTO, error)
}
