package crowdfunding

import "errors"

var (
	ErrNotInitialized         = errors.New("crowdfunding: platform not initialized")
	ErrAlreadyInitialized     = errors.New("crowdfunding: platform already initialized")
	ErrInvalidConfig          = errors.New("crowdfunding: invalid configuration")
	ErrInvalidIdentity        = errors.New("crowdfunding: zero identity")
	ErrInvalidAmount          = errors.New("crowdfunding: amount must be positive")
	ErrAmountOverflow         = errors.New("crowdfunding: amount overflow")
	ErrDonorExists            = errors.New("crowdfunding: donor already registered")
	ErrDonorNotFound          = errors.New("crowdfunding: donor not found")
	ErrCampaignNotFound       = errors.New("crowdfunding: campaign not found")
	ErrCampaignClosed         = errors.New("crowdfunding: campaign closed")
	ErrCampaignCapacity       = errors.New("crowdfunding: active campaign capacity exceeded")
	ErrSelfReferral           = errors.New("crowdfunding: referring yourself is not allowed")
	ErrIncentiveCooldown      = errors.New("crowdfunding: incentive cooldown not elapsed")
	ErrInsufficientCollateral = errors.New("crowdfunding: liquidation vault below limit")
	ErrUnauthorized           = errors.New("crowdfunding: unauthorized")

	errNilState    = errors.New("crowdfunding: state not configured")
	errNilTreasury = errors.New("crowdfunding: treasury not configured")
)
