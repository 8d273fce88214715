package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/commerce-platform/stock-service/internal/application"
	"github.com/commerce-platform/stock-service/pkg/errors"
	"github.com/commerce-platform/stock-service/pkg/logging"
)

type mockStockLocationService struct {
	createFn     func(ctx context.Context, cmd application.CreateStockLocationCommand) (*application.StockLocationDTO, error)
	getFn        func(ctx context.Context, query application.GetStockLocationQuery) (*application.StockLocationDTO, error)
	listFn       func(ctx context.Context, query application.ListStockLocationsQuery) ([]application.StockLocationListDTO, error)
	updateFn     func(ctx context.Context, cmd application.UpdateStockLocationCommand) (*application.StockLocationDTO, error)
	deleteFn     func(ctx context.Context, cmd application.DeleteStockLocationCommand) (*application.StockLocationDTO, error)
	restoreFn    func(ctx context.Context, cmd application.RestoreStockLocationCommand) (*application.StockLocationDTO, error)
	setDefaultFn func(ctx context.Context, cmd application.SetDefaultCommand) (*application.StockLocationDTO, error)
	restockFn    func(ctx context.Context, cmd application.RestockCommand) (*application.StockLocationDTO, error)
	unstockFn    func(ctx context.Context, cmd application.UnstockCommand) (*application.StockLocationDTO, error)
	validateFn   func(ctx context.Context, query application.GetStockLocationQuery) (*application.ValidationReportDTO, error)
}

func (m *mockStockLocationService) Create(ctx context.Context, cmd application.CreateStockLocationCommand) (*application.StockLocationDTO, error) {
	if m.createFn == nil {
		panic("Create not implemented")
	}
	return m.createFn(ctx, cmd)
}

func (m *mockStockLocationService) Get(ctx context.Context, query application.GetStockLocationQuery) (*application.StockLocationDTO, error) {
	if m.getFn == nil {
		panic("Get not implemented")
	}
	return m.getFn(ctx, query)
}

func (m *mockStockLocationService) List(ctx context.Context, query application.ListStockLocationsQuery) ([]application.StockLocationListDTO, error) {
	if m.listFn == nil {
		panic("List not implemented")
	}
	return m.listFn(ctx, query)
}

func (m *mockStockLocationService) Update(ctx context.Context, cmd application.UpdateStockLocationCommand) (*application.StockLocationDTO, error) {
	if m.updateFn == nil {
		panic("Update not implemented")
	}
	return m.updateFn(ctx, cmd)
}

func (m *mockStockLocationService) Delete(ctx context.Context, cmd application.DeleteStockLocationCommand) (*application.StockLocationDTO, error) {
	if m.deleteFn == nil {
		panic("Delete not implemented")
	}
	return m.deleteFn(ctx, cmd)
}

func (m *mockStockLocationService) Restore(ctx context.Context, cmd application.RestoreStockLocationCommand) (*application.StockLocationDTO, error) {
	if m.restoreFn == nil {
		panic("Restore not implemented")
	}
	return m.restoreFn(ctx, cmd)
}

func (m *mockStockLocationService) SetDefault(ctx context.Context, cmd application.SetDefaultCommand) (*application.StockLocationDTO, error) {
	if m.setDefaultFn == nil {
		panic("SetDefault not implemented")
	}
	return m.setDefaultFn(ctx, cmd)
}

func (m *mockStockLocationService) Restock(ctx context.Context, cmd application.RestockCommand) (*application.StockLocationDTO, error) {
	if m.restockFn == nil {
		panic("Restock not implemented")
	}
	return m.restockFn(ctx, cmd)
}

func (m *mockStockLocationService) Unstock(ctx context.Context, cmd application.UnstockCommand) (*application.StockLocationDTO, error) {
	if m.unstockFn == nil {
		panic("Unstock not implemented")
	}
	return m.unstockFn(ctx, cmd)
}

func (m *mockStockLocationService) Validate(ctx context.Context, query application.GetStockLocationQuery) (*application.ValidationReportDTO, error) {
	if m.validateFn == nil {
		panic("Validate not implemented")
	}
	return m.validateFn(ctx, query)
}

func newTestRouter(service StockLocationService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	logger := logging.New(logging.DefaultConfig("test"))
	handlers := NewStockLocationHandlers(service, logger)
	handlers.RegisterRoutes(router.Group("/api/v1"))
	return router
}

func performRequest(router *gin.Engine, method, path string, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestStockLocationHandlers_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		service := &mockStockLocationService{
			createFn: func(ctx context.Context, cmd application.CreateStockLocationCommand) (*application.StockLocationDTO, error) {
				if cmd.Name != "East Warehouse" {
					t.Fatalf("Name = %s", cmd.Name)
				}
				if cmd.Latitude == nil || *cmd.Latitude != 40.7 {
					t.Fatalf("Latitude = %v", cmd.Latitude)
				}
				return &application.StockLocationDTO{LocationID: "SL-1", Name: "east-warehouse"}, nil
			},
		}
		router := newTestRouter(service)
		body := `{"name":"East Warehouse","latitude":40.7,"longitude":-74.0,"address":{"city":"Newark","country":"US"}}`
		rec := performRequest(router, http.MethodPost, "/api/v1/stock-locations", body)

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), `"locationId":"SL-1"`) {
			t.Fatalf("unexpected body: %s", rec.Body.String())
		}
	})

	t.Run("bad json", func(t *testing.T) {
		service := &mockStockLocationService{}
		router := newTestRouter(service)
		rec := performRequest(router, http.MethodPost, "/api/v1/stock-locations", `{"name":}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("conflict", func(t *testing.T) {
		service := &mockStockLocationService{
			createFn: func(ctx context.Context, cmd application.CreateStockLocationCommand) (*application.StockLocationDTO, error) {
				return nil, errors.ErrConflict("name taken")
			},
		}
		router := newTestRouter(service)
		rec := performRequest(router, http.MethodPost, "/api/v1/stock-locations", `{"name":"dup"}`)
		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"code":"CONFLICT"`) {
			t.Fatalf("unexpected body: %s", rec.Body.String())
		}
	})
}

func TestStockLocationHandlers_Get(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		service := &mockStockLocationService{
			getFn: func(ctx context.Context, query application.GetStockLocationQuery) (*application.StockLocationDTO, error) {
				if query.LocationID != "SL-2" {
					t.Fatalf("LocationID = %s", query.LocationID)
				}
				return &application.StockLocationDTO{LocationID: query.LocationID}, nil
			},
		}
		router := newTestRouter(service)
		rec := performRequest(router, http.MethodGet, "/api/v1/stock-locations/SL-2", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("not found", func(t *testing.T) {
		service := &mockStockLocationService{
			getFn: func(ctx context.Context, query application.GetStockLocationQuery) (*application.StockLocationDTO, error) {
				return nil, errors.ErrNotFoundWithID("stock location", query.LocationID)
			},
		}
		router := newTestRouter(service)
		rec := performRequest(router, http.MethodGet, "/api/v1/stock-locations/SL-404", "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("internal error", func(t *testing.T) {
		service := &mockStockLocationService{
			getFn: func(ctx context.Context, query application.GetStockLocationQuery) (*application.StockLocationDTO, error) {
				return nil, fmt.Errorf("boom")
			},
		}
		router := newTestRouter(service)
		rec := performRequest(router, http.MethodGet, "/api/v1/stock-locations/SL-500", "")
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d", rec.Code)
		}
	})
}

func TestStockLocationHandlers_List(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		service := &mockStockLocationService{
			listFn: func(ctx context.Context, query application.ListStockLocationsQuery) ([]application.StockLocationListDTO, error) {
				if query.Limit != 50 || query.Offset != 0 || query.Filter != "" {
					t.Fatalf("unexpected query: %+v", query)
				}
				return []application.StockLocationListDTO{{LocationID: "SL-1"}}, nil
			},
		}
		router := newTestRouter(service)
		rec := performRequest(router, http.MethodGet, "/api/v1/stock-locations", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("filter and paging", func(t *testing.T) {
		service := &mockStockLocationService{
			listFn: func(ctx context.Context, query application.ListStockLocationsQuery) ([]application.StockLocationListDTO, error) {
				if query.Filter != "shippable" || query.Limit != 10 || query.Offset != 20 {
					t.Fatalf("unexpected query: %+v", query)
				}
				return nil, nil
			},
		}
		router := newTestRouter(service)
		rec := performRequest(router, http.MethodGet, "/api/v1/stock-locations?filter=shippable&limit=10&offset=20", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("bad filter", func(t *testing.T) {
		service := &mockStockLocationService{
			listFn: func(ctx context.Context, query application.ListStockLocationsQuery) ([]application.StockLocationListDTO, error) {
				return nil, errors.ErrValidation("unknown filter")
			},
		}
		router := newTestRouter(service)
		rec := performRequest(router, http.MethodGet, "/api/v1/stock-locations?filter=bogus", "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}
	})
}

func TestStockLocationHandlers_UpdateDelete(t *testing.T) {
	t.Run("update success", func(t *testing.T) {
		service := &mockStockLocationService{
			updateFn: func(ctx context.Context, cmd application.UpdateStockLocationCommand) (*application.StockLocationDTO, error) {
				if cmd.LocationID != "SL-3" || cmd.Name == nil || *cmd.Name != "renamed" {
					t.Fatalf("unexpected command: %+v", cmd)
				}
				if cmd.Active != nil {
					t.Fatalf("Active should be nil")
				}
				return &application.StockLocationDTO{LocationID: cmd.LocationID}, nil
			},
		}
		router := newTestRouter(service)
		rec := performRequest(router, http.MethodPatch, "/api/v1/stock-locations/SL-3", `{"name":"renamed"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("delete with guards", func(t *testing.T) {
		service := &mockStockLocationService{
			deleteFn: func(ctx context.Context, cmd application.DeleteStockLocationCommand) (*application.StockLocationDTO, error) {
				if cmd.DeletedBy != "ops@example.com" || !cmd.HasPendingShipments {
					t.Fatalf("unexpected command: %+v", cmd)
				}
				return &application.StockLocationDTO{LocationID: cmd.LocationID, IsDeleted: true}, nil
			},
		}
		router := newTestRouter(service)
		body := `{"deletedBy":"ops@example.com","hasPendingShipments":true}`
		rec := performRequest(router, http.MethodDelete, "/api/v1/stock-locations/SL-3", body)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"isDeleted":true`) {
			t.Fatalf("unexpected body: %s", rec.Body.String())
		}
	})

	t.Run("delete guarded", func(t *testing.T) {
		service := &mockStockLocationService{
			deleteFn: func(ctx context.Context, cmd application.DeleteStockLocationCommand) (*application.StockLocationDTO, error) {
				return nil, errors.ErrConflict("stock location has stock items")
			},
		}
		router := newTestRouter(service)
		rec := performRequest(router, http.MethodDelete, "/api/v1/stock-locations/SL-3", "")
		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d", rec.Code)
		}
	})
}

func TestStockLocationHandlers_RestoreAndDefault(t *testing.T) {
	t.Run("restore", func(t *testing.T) {
		service := &mockStockLocationService{
			restoreFn: func(ctx context.Context, cmd application.RestoreStockLocationCommand) (*application.StockLocationDTO, error) {
				return &application.StockLocationDTO{LocationID: cmd.LocationID}, nil
			},
		}
		router := newTestRouter(service)
		rec := performRequest(router, http.MethodPost, "/api/v1/stock-locations/SL-4/restore", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("set default", func(t *testing.T) {
		service := &mockStockLocationService{
			setDefaultFn: func(ctx context.Context, cmd application.SetDefaultCommand) (*application.StockLocationDTO, error) {
				return &application.StockLocationDTO{LocationID: cmd.LocationID, Default: true}, nil
			},
		}
		router := newTestRouter(service)
		rec := performRequest(router, http.MethodPut, "/api/v1/stock-locations/SL-4/default", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"default":true`) {
			t.Fatalf("unexpected body: %s", rec.Body.String())
		}
	})
}

func TestStockLocationHandlers_Stock(t *testing.T) {
	t.Run("restock", func(t *testing.T) {
		service := &mockStockLocationService{
			restockFn: func(ctx context.Context, cmd application.RestockCommand) (*application.StockLocationDTO, error) {
				if cmd.VariantID != "V1" || cmd.Quantity != 10 || cmd.Originator != "supplier" {
					t.Fatalf("unexpected command: %+v", cmd)
				}
				return &application.StockLocationDTO{LocationID: cmd.LocationID}, nil
			},
		}
		router := newTestRouter(service)
		body := `{"variantId":"V1","sku":"SKU-1","quantity":10,"originator":"supplier","originatorId":"PO-42"}`
		rec := performRequest(router, http.MethodPost, "/api/v1/stock-locations/SL-5/restock", body)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("restock missing fields", func(t *testing.T) {
		service := &mockStockLocationService{}
		router := newTestRouter(service)
		rec := performRequest(router, http.MethodPost, "/api/v1/stock-locations/SL-5/restock", `{"variantId":"V1"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("unstock insufficient", func(t *testing.T) {
		service := &mockStockLocationService{
			unstockFn: func(ctx context.Context, cmd application.UnstockCommand) (*application.StockLocationDTO, error) {
				return nil, errors.ErrValidation("insufficient unreserved stock; maximum unstockable quantity is 3")
			},
		}
		router := newTestRouter(service)
		body := `{"variantId":"V1","quantity":5,"originator":"order"}`
		rec := performRequest(router, http.MethodPost, "/api/v1/stock-locations/SL-5/unstock", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "maximum unstockable quantity") {
			t.Fatalf("unexpected body: %s", rec.Body.String())
		}
	})
}

func TestStockLocationHandlers_Validate(t *testing.T) {
	service := &mockStockLocationService{
		validateFn: func(ctx context.Context, query application.GetStockLocationQuery) (*application.ValidationReportDTO, error) {
			return &application.ValidationReportDTO{LocationID: query.LocationID, Valid: true}, nil
		},
	}
	router := newTestRouter(service)
	rec := performRequest(router, http.MethodGet, "/api/v1/stock-locations/SL-6/validate", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"valid":true`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}
