package handler

import (
	"groupbuy-commerce/internal/dto"
	"groupbuy-commerce/internal/service"
	"net/http"

	"github.com/labstack/echo/v4"
)

type CampaignHandler struct {
	campaignService service.CampaignService
}

func NewCampaignHandler(campaignService service.CampaignService) *CampaignHandler {
	return &CampaignHandler{
		campaignService: campaignService,
	}
}

func (h *CampaignHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	campaign, contributions, err := h.campaignService.Get(ctx, c.Param("productID"))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, dto.NewCampaignResponse(campaign, contributions))
}

func (h *CampaignHandler) Contribute(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ContributeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	result, err := h.campaignService.Contribute(ctx, c.Param("productID"), callerID(c), req.Amount, req.Currency, nil)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, &dto.ContributeResponse{
		Accepted:        result.Accepted,
		DisplayAccepted: dto.DisplayAmount(result.Accepted, req.Currency),
		Completed:       result.Completed,
	})
}

func (h *CampaignHandler) Withdraw(c echo.Context) error {
	ctx := c.Request().Context()
	productID := c.Param("productID")

	refunded, err := h.campaignService.WithdrawContribution(ctx, productID, callerID(c))
	if err != nil {
		return httpError(err)
	}

	campaign, _, err := h.campaignService.Get(ctx, productID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, &dto.WithdrawResponse{
		Refunded:        refunded,
		DisplayRefunded: dto.DisplayAmount(refunded, campaign.Currency),
	})
}

func (h *CampaignHandler) Finalize(c echo.Context) error {
	ctx := c.Request().Context()

	status, err := h.campaignService.Finalize(ctx, c.Param("productID"))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, &dto.FinalizeResponse{
		Status: string(status),
	})
}
