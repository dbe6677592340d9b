package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/altezzai/storefront-backend/api/middleware"
	"github.com/altezzai/storefront-backend/api/responses"
	"github.com/altezzai/storefront-backend/api/validators"
	checkoutsvc "github.com/altezzai/storefront-backend/internal/checkout"
	pkgerrors "github.com/altezzai/storefront-backend/pkg/errors"
	"github.com/altezzai/storefront-backend/pkg/logger"
)

type checkoutRequest struct {
	AddressID uuid.UUID `json:"address_id" validate:"required"`
}

type checkoutResponse struct {
	OrderID    uuid.UUID `json:"order_id"`
	TotalCents int       `json:"total_cents"`
	LineCount  int       `json:"line_count"`
}

// Checkout converts the authenticated user's cart into a placed order.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}
		uid, err := uuid.Parse(userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		receipt, err := svc.PlaceOrder(r.Context(), uid, payload.AddressID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, checkoutResponse{
			OrderID:    receipt.OrderID,
			TotalCents: receipt.TotalCents,
			LineCount:  receipt.LineCount,
		})
	}
}
