package handler

import (
	"groupbuy-commerce/internal/dto"
	"groupbuy-commerce/internal/service"
	"net/http"

	"github.com/labstack/echo/v4"
)

type MerchantHandler struct {
	merchantService service.MerchantService
}

func NewMerchantHandler(merchantService service.MerchantService) *MerchantHandler {
	return &MerchantHandler{
		merchantService: merchantService,
	}
}

func (h *MerchantHandler) CreateMerchant(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateMerchantRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	id, err := h.merchantService.CreateMerchant(ctx, req.Name, req.PayoutAccount)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, map[string]string{"merchant_id": id})
}

func (h *MerchantHandler) Revenue(c echo.Context) error {
	ctx := c.Request().Context()

	totals, err := h.merchantService.RevenueTotals(ctx)
	if err != nil {
		return httpError(err)
	}

	entries := make([]*dto.RevenueEntry, len(totals))
	for i, t := range totals {
		entries[i] = &dto.RevenueEntry{
			Currency:     t.Currency,
			Total:        t.Total,
			DisplayTotal: dto.DisplayAmount(t.Total, t.Currency),
		}
	}

	return c.JSON(http.StatusOK, &dto.RevenueResponse{Entries: entries})
}

func (h *MerchantHandler) SetFee(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.SetFeeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	if err := h.merchantService.SetFeeRate(ctx, req.RateBps); err != nil {
		return httpError(err)
	}

	return c.NoContent(http.StatusNoContent)
}
