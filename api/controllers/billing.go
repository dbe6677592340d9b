package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/altezzai/storefront-backend/api/middleware"
	"github.com/altezzai/storefront-backend/api/responses"
	"github.com/altezzai/storefront-backend/api/validators"
	billingsvc "github.com/altezzai/storefront-backend/internal/billing"
	"github.com/altezzai/storefront-backend/pkg/db/models"
	"github.com/altezzai/storefront-backend/pkg/enums"
	pkgerrors "github.com/altezzai/storefront-backend/pkg/errors"
	"github.com/altezzai/storefront-backend/pkg/logger"
)

type saleLineRequest struct {
	ProductID   uuid.UUID       `json:"product_id" validate:"required"`
	Quantity    int             `json:"quantity" validate:"required,min=1"`
	PriceAtSale decimal.Decimal `json:"price_at_sale" validate:"required"`
}

type createSaleRequest struct {
	PaymentMode string            `json:"payment_mode" validate:"required,oneof=CASH CARD UPI"`
	Discount    *decimal.Decimal  `json:"discount,omitempty"`
	Lines       []saleLineRequest `json:"lines" validate:"required,min=1,dive"`
}

type saleResponse struct {
	SaleID      uuid.UUID       `json:"sale_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	LineCount   int             `json:"line_count"`
}

func (p createSaleRequest) toInput() billingsvc.CreateSaleInput {
	lines := make([]billingsvc.SaleLineInput, 0, len(p.Lines))
	for _, line := range p.Lines {
		lines = append(lines, billingsvc.SaleLineInput{
			ProductID:   line.ProductID,
			Quantity:    line.Quantity,
			PriceAtSale: line.PriceAtSale,
		})
	}
	return billingsvc.CreateSaleInput{
		PaymentMode: enums.PaymentMode(p.PaymentMode),
		Discount:    p.Discount,
		Lines:       lines,
	}
}

// BillingCreateSale records an in-person sale rung up at the till.
func BillingCreateSale(svc billingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}

		staffID, err := actingUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createSaleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.CreateSale(r.Context(), staffID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, saleResponse{
			SaleID:      summary.SaleID,
			TotalAmount: summary.TotalAmount,
			LineCount:   summary.LineCount,
		})
	}
}

type saleLineResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	PriceAtSale decimal.Decimal `json:"price_at_sale"`
}

type saleDetailResponse struct {
	ID          uuid.UUID          `json:"id"`
	StaffID     uuid.UUID          `json:"staff_id"`
	StaffName   string             `json:"staff_name,omitempty"`
	PaymentMode string             `json:"payment_mode"`
	TotalAmount decimal.Decimal    `json:"total_amount"`
	Discount    *decimal.Decimal   `json:"discount,omitempty"`
	Items       []saleLineResponse `json:"items"`
	CreatedAt   time.Time          `json:"created_at"`
}

func newSaleDetailResponse(sale *models.LocalSale) saleDetailResponse {
	items := make([]saleLineResponse, 0, len(sale.Items))
	for _, item := range sale.Items {
		line := saleLineResponse{
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			PriceAtSale: item.PriceAtSale,
		}
		if item.Product != nil {
			line.ProductName = item.Product.Name
		}
		items = append(items, line)
	}
	out := saleDetailResponse{
		ID:          sale.ID,
		StaffID:     sale.StaffID,
		PaymentMode: string(sale.PaymentMode),
		TotalAmount: sale.TotalAmount,
		Discount:    sale.Discount,
		Items:       items,
		CreatedAt:   sale.CreatedAt,
	}
	if sale.Staff != nil {
		out.StaffName = sale.Staff.Name
	}
	return out
}

// AdminListSales pages through recorded sales, newest first.
func AdminListSales(svc billingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListSales(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sales := make([]saleDetailResponse, 0, len(page.Sales))
		for i := range page.Sales {
			sales = append(sales, newSaleDetailResponse(&page.Sales[i]))
		}

		responses.WriteSuccess(w, map[string]any{
			"sales":       sales,
			"next_cursor": page.NextCursor,
		})
	}
}

func actingUserID(r *http.Request) (uuid.UUID, error) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	return id, nil
}
