package handler

import (
	"groupbuy-commerce/internal/dto"
	"groupbuy-commerce/internal/service"
	"net/http"

	"github.com/labstack/echo/v4"
)

type SettlementHandler struct {
	settlementService service.SettlementService
}

func NewSettlementHandler(settlementService service.SettlementService) *SettlementHandler {
	return &SettlementHandler{
		settlementService: settlementService,
	}
}

// ApplyPayment is the settlement protocol's callback. The route is gated by
// the protocol-identity middleware; a duplicate payment id is reported as a
// conflict with no state change.
func (h *SettlementHandler) ApplyPayment(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ApplyPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	result, err := h.settlementService.ApplyPayment(ctx, service.ApplyPaymentParams{
		ProductID: req.ProductID,
		Buyer:     req.Buyer,
		Quantity:  req.Quantity,
		Amount:    req.Amount,
		Currency:  req.Currency,
		PaymentID: req.PaymentID,
	})
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, &dto.ApplyPaymentResponse{
		PurchaseID: result.PurchaseID,
		Accepted:   result.Accepted,
		Completed:  result.Completed,
	})
}
