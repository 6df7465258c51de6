package handler

import (
	"errors"
	"groupbuy-commerce/internal/repository"
	"groupbuy-commerce/internal/service"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// httpError maps service errors onto HTTP statuses. Anything unmapped stays a
// 500 through echo's default handler.
func httpError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound),
		errors.Is(err, service.ErrCampaignNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidProduct),
		errors.Is(err, service.ErrInvalidFeeRate),
		errors.Is(err, service.ErrInvalidPaymentID),
		errors.Is(err, service.ErrWrongProductType),
		errors.Is(err, service.ErrCurrencyMismatch),
		errors.Is(err, service.ErrContributionTooSmall),
		errors.Is(err, service.ErrInsufficientPayment):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrCampaignNotActive),
		errors.Is(err, service.ErrCampaignExpired),
		errors.Is(err, service.ErrCampaignFinalized),
		errors.Is(err, service.ErrStillActive),
		errors.Is(err, service.ErrCampaignFull),
		errors.Is(err, service.ErrDuplicateParticipant),
		errors.Is(err, service.ErrDuplicatePayment),
		errors.Is(err, service.ErrNoContribution),
		errors.Is(err, repository.ErrInsufficientStock):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrTransferFailed):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	default:
		return err
	}
}

func callerID(c echo.Context) string {
	id, _ := c.Get("user_id").(string)
	return id
}
