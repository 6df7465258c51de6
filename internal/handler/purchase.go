package handler

import (
	"groupbuy-commerce/internal/dto"
	"groupbuy-commerce/internal/service"
	"net/http"

	"github.com/labstack/echo/v4"
)

type PurchaseHandler struct {
	purchaseService service.PurchaseService
}

func NewPurchaseHandler(purchaseService service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{
		purchaseService: purchaseService,
	}
}

func (h *PurchaseHandler) Buy(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.BuyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	purchaseID, err := h.purchaseService.Buy(ctx, callerID(c), req.ProductID, req.Quantity, req.Payment, req.Currency, service.OriginDirect())
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, &dto.BuyResponse{
		PurchaseID: purchaseID,
	})
}

func (h *PurchaseHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	purchases, err := h.purchaseService.Purchases(ctx, callerID(c))
	if err != nil {
		return httpError(err)
	}

	resp := make([]*dto.PurchaseResponse, len(purchases))
	for i, p := range purchases {
		resp[i] = dto.NewPurchaseResponse(p)
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *PurchaseHandler) MarkReviewed(c echo.Context) error {
	ctx := c.Request().Context()

	err := h.purchaseService.MarkReviewed(ctx, c.Param("id"), callerID(c))
	if err != nil {
		return httpError(err)
	}

	return c.NoContent(http.StatusNoContent)
}
