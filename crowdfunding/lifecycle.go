package crowdfunding

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// WithdrawDonations transfers the campaign's outstanding balance from the
// value vault to the campaign authority. Idempotent: with no new donations a
// repeat call moves nothing.
func (e *Engine) WithdrawDonations(campaignID uint16, caller solana.PublicKey) (uint64, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	platform, err := e.platform()
	if err != nil {
		return 0, err
	}
	campaign, ok := e.state.CampaignGet(campaignID)
	if !ok {
		return 0, fmt.Errorf("%w: campaign %d", ErrCampaignNotFound, campaignID)
	}
	if caller != campaign.Authority {
		return 0, ErrUnauthorized
	}
	active := platform.activeIndex(campaignID)
	if campaign.Closed || active < 0 {
		return 0, ErrCampaignClosed
	}

	record := &platform.ActiveCampaigns[active]
	amount, err := checkedSub(record.DonationsSum, record.WithdrawnSum)
	if err != nil {
		return 0, err
	}
	if amount > 0 {
		if err := e.treasury.Transfer(platform.ValueVault, campaign.Authority, amount); err != nil {
			return 0, fmt.Errorf("withdraw donations: %w", err)
		}
	}
	record.WithdrawnSum = record.DonationsSum
	if err := e.state.PlatformPut(platform); err != nil {
		return 0, err
	}
	e.emit(NewDonationsWithdrawnEvent(campaignID, campaign.Authority, amount))
	return amount, nil
}

// StopCampaign terminates a campaign on behalf of its authority: the
// outstanding balance moves to the authority, both reward-token vaults close,
// and the campaign leaves the active set for good.
func (e *Engine) StopCampaign(campaignID uint16, caller solana.PublicKey) error {
	if err := e.ready(); err != nil {
		return err
	}
	platform, err := e.platform()
	if err != nil {
		return err
	}
	campaign, ok := e.state.CampaignGet(campaignID)
	if !ok {
		return fmt.Errorf("%w: campaign %d", ErrCampaignNotFound, campaignID)
	}
	if caller != campaign.Authority {
		return ErrUnauthorized
	}
	active := platform.activeIndex(campaignID)
	if campaign.Closed || active < 0 {
		return ErrCampaignClosed
	}

	record := platform.ActiveCampaigns[active]
	outstanding, err := checkedSub(record.DonationsSum, record.WithdrawnSum)
	if err != nil {
		return err
	}
	remaining, err := checkedSub(platform.SumOfActiveCampaignDonations, record.DonationsSum)
	if err != nil {
		return err
	}

	if outstanding > 0 {
		if err := e.treasury.Transfer(platform.ValueVault, campaign.Authority, outstanding); err != nil {
			return fmt.Errorf("return outstanding donations: %w", err)
		}
	}
	if err := e.closeRewardVaults(campaign); err != nil {
		return err
	}

	platform.SumOfActiveCampaignDonations = remaining
	platform.ActiveCampaigns = append(platform.ActiveCampaigns[:active], platform.ActiveCampaigns[active+1:]...)
	campaign.Closed = true

	if err := e.state.PlatformPut(platform); err != nil {
		return err
	}
	if err := e.state.CampaignPut(campaign); err != nil {
		return err
	}
	e.emit(NewCampaignStoppedEvent(campaignID, outstanding))
	return nil
}

// LiquidateCampaign force-closes a campaign whose liquidation vault holds at
// least the configured reward-token collateral. No caller identity is
// required: the collateral threshold is the only gate. The outstanding
// balance is redistributed across the surviving active campaigns, weighted by
// their donation sums with floor division; the undistributed remainder moves
// to the fee vault so no value is lost.
func (e *Engine) LiquidateCampaign(campaignID uint16) error {
	if err := e.ready(); err != nil {
		return err
	}
	platform, err := e.platform()
	if err != nil {
		return err
	}
	campaign, ok := e.state.CampaignGet(campaignID)
	if !ok {
		return fmt.Errorf("%w: campaign %d", ErrCampaignNotFound, campaignID)
	}
	active := platform.activeIndex(campaignID)
	if campaign.Closed || active < 0 {
		return ErrCampaignClosed
	}
	collateral, err := e.treasury.RewardBalance(campaign.LiquidationVault)
	if err != nil {
		return fmt.Errorf("read liquidation vault: %w", err)
	}
	if collateral < platform.LiquidationLimit {
		return ErrInsufficientCollateral
	}

	record := platform.ActiveCampaigns[active]
	outstanding, err := checkedSub(record.DonationsSum, record.WithdrawnSum)
	if err != nil {
		return err
	}
	platform.ActiveCampaigns = append(platform.ActiveCampaigns[:active], platform.ActiveCampaigns[active+1:]...)

	remainingSum, err := checkedSub(platform.SumOfActiveCampaignDonations, record.DonationsSum)
	if err != nil {
		return err
	}
	var distributed uint64
	if remainingSum > 0 {
		for i := range platform.ActiveCampaigns {
			survivor := &platform.ActiveCampaigns[i]
			share, err := mulDiv(outstanding, survivor.DonationsSum, remainingSum)
			if err != nil {
				return err
			}
			survivor.DonationsSum, err = checkedAdd(survivor.DonationsSum, share)
			if err != nil {
				return err
			}
			distributed += share
		}
	}
	remainder := outstanding - distributed

	// The aggregate tracks the survivors' sums exactly: drop the liquidated
	// campaign's sum, add back what was redistributed.
	activeSum, err := checkedAdd(remainingSum, distributed)
	if err != nil {
		return err
	}
	platform.SumOfActiveCampaignDonations = activeSum
	platform.LiquidationsSum, err = checkedAdd(platform.LiquidationsSum, outstanding)
	if err != nil {
		return err
	}

	if remainder > 0 {
		if err := e.treasury.Transfer(platform.ValueVault, platform.FeeVault, remainder); err != nil {
			return fmt.Errorf("sweep liquidation remainder: %w", err)
		}
	}
	if err := e.closeRewardVaults(campaign); err != nil {
		return err
	}
	campaign.Closed = true

	if err := e.state.PlatformPut(platform); err != nil {
		return err
	}
	if err := e.state.CampaignPut(campaign); err != nil {
		return err
	}
	e.emit(NewCampaignLiquidatedEvent(campaignID, outstanding, distributed, remainder))
	return nil
}

// WithdrawFees drains the entire fee vault to the platform authority.
func (e *Engine) WithdrawFees(caller solana.PublicKey) (uint64, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	platform, err := e.platform()
	if err != nil {
		return 0, err
	}
	if caller != platform.Authority {
		return 0, ErrUnauthorized
	}
	balance, err := e.treasury.Balance(platform.FeeVault)
	if err != nil {
		return 0, fmt.Errorf("read fee vault: %w", err)
	}
	if balance > 0 {
		if err := e.treasury.Transfer(platform.FeeVault, platform.Authority, balance); err != nil {
			return 0, fmt.Errorf("withdraw fees: %w", err)
		}
	}
	e.emit(NewFeesWithdrawnEvent(platform.Authority, balance))
	return balance, nil
}

func (e *Engine) closeRewardVaults(campaign *Campaign) error {
	for _, vault := range []solana.PublicKey{campaign.FeeExemptionVault, campaign.LiquidationVault} {
		if err := e.treasury.CloseRewardVault(vault); err != nil {
			return fmt.Errorf("close reward vault %s: %w", vault, err)
		}
	}
	return nil
}
