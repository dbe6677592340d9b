package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/altezzai/storefront-backend/api/responses"
	"github.com/altezzai/storefront-backend/api/validators"
	inventorysvc "github.com/altezzai/storefront-backend/internal/inventory"
	"github.com/altezzai/storefront-backend/pkg/db/models"
	pkgerrors "github.com/altezzai/storefront-backend/pkg/errors"
	"github.com/altezzai/storefront-backend/pkg/logger"
)

type increaseStockRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

type stockAdjustmentResponse struct {
	ProductID uuid.UUID `json:"product_id"`
	OldStock  int       `json:"old_stock"`
	AddedQty  int       `json:"added_qty"`
	NewStock  int       `json:"new_stock"`
}

type productStockResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Stock     int       `json:"stock"`
	StockUnit string    `json:"stock_unit"`
	LowStock  bool      `json:"low_stock"`
}

func newProductStockResponses(views []inventorysvc.ProductStockView) []productStockResponse {
	out := make([]productStockResponse, 0, len(views))
	for _, view := range views {
		out = append(out, productStockResponse{
			ID:        view.ID,
			Name:      view.Name,
			Stock:     view.Stock,
			StockUnit: string(view.StockUnit),
			LowStock:  view.LowStock,
		})
	}
	return out
}

// InventoryIncreaseStock adds received quantity to a product and logs it.
func InventoryIncreaseStock(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		staffID, err := actingUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload increaseStockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		adjustment, err := svc.IncreaseStock(r.Context(), staffID, payload.ProductID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, stockAdjustmentResponse{
			ProductID: adjustment.ProductID,
			OldStock:  adjustment.OldStock,
			AddedQty:  adjustment.AddedQty,
			NewStock:  adjustment.NewStock,
		})
	}
}

// InventoryListProducts lists the live catalog with stock counters.
func InventoryListProducts(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		products, err := svc.ListProducts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"products": newProductStockResponses(products)})
	}
}

// InventoryListLowStock lists products below the restock threshold.
func InventoryListLowStock(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		products, err := svc.ListLowStock(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"products": newProductStockResponses(products)})
	}
}

type stockLogResponse struct {
	ID          uuid.UUID `json:"id"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name,omitempty"`
	StaffID     uuid.UUID `json:"staff_id"`
	StaffName   string    `json:"staff_name,omitempty"`
	OldStock    int       `json:"old_stock"`
	AddedQty    int       `json:"added_qty"`
	NewStock    int       `json:"new_stock"`
	CreatedAt   time.Time `json:"created_at"`
}

func newStockLogResponse(log *models.StockLog) stockLogResponse {
	out := stockLogResponse{
		ID:        log.ID,
		ProductID: log.ProductID,
		StaffID:   log.StaffID,
		OldStock:  log.OldStock,
		AddedQty:  log.AddedQty,
		NewStock:  log.NewStock,
		CreatedAt: log.CreatedAt,
	}
	if log.Product != nil {
		out.ProductName = log.Product.Name
	}
	if log.Staff != nil {
		out.StaffName = log.Staff.Name
	}
	return out
}

// AdminListStockLogs pages the append-only restock ledger, newest first.
func AdminListStockLogs(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListStockLogs(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		logs := make([]stockLogResponse, 0, len(page.Logs))
		for i := range page.Logs {
			logs = append(logs, newStockLogResponse(&page.Logs[i]))
		}

		responses.WriteSuccess(w, map[string]any{
			"stock_logs":  logs,
			"next_cursor": page.NextCursor,
		})
	}
}
