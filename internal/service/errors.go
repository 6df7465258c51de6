package service

import "errors"

var (
	// validation
	ErrInvalidQuantity      = errors.New("quantity must be positive")
	ErrInvalidProduct       = errors.New("invalid product definition")
	ErrInvalidFeeRate       = errors.New("fee rate out of bounds")
	ErrInvalidPaymentID     = errors.New("malformed payment id")
	ErrWrongProductType     = errors.New("operation not supported for product type")
	ErrCurrencyMismatch     = errors.New("currency does not match campaign settlement currency")
	ErrContributionTooSmall = errors.New("contribution amount rounds to zero")

	// state conflicts
	ErrCampaignNotFound     = errors.New("campaign not found")
	ErrCampaignNotActive    = errors.New("campaign is not active")
	ErrCampaignExpired      = errors.New("campaign deadline has passed")
	ErrCampaignFinalized    = errors.New("campaign already finalized")
	ErrStillActive          = errors.New("campaign deadline has not passed")
	ErrCampaignFull         = errors.New("campaign participant limit reached")
	ErrDuplicateParticipant = errors.New("contributor already has a recorded contribution")
	ErrDuplicatePayment     = errors.New("payment id already processed")
	ErrNoContribution       = errors.New("no contribution on record")
	ErrInsufficientPayment  = errors.New("payment below required total")

	// transfer failures that abort the whole operation
	ErrTransferFailed = errors.New("ledger transfer failed")
)
