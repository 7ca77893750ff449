package crowdfunding

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// donationPlan carries the validated working copies and computed amounts of a
// single donation. Nothing is persisted until every arithmetic step and
// treasury call has succeeded.
type donationPlan struct {
	platform       *Platform
	campaign       *Campaign
	donor          *Donor
	pair           *DonationTotals
	campaignTotals *DonationTotals
	gross          uint64
	fee            uint64
	net            uint64
	exempt         bool
}

// Donate settles a donation: fee split, aggregate counters, pair records, and
// both leaderboards. The donor must be registered and the campaign active.
func (e *Engine) Donate(campaignID uint16, donor solana.PublicKey, amount uint64) error {
	if err := e.ready(); err != nil {
		return err
	}
	plan, err := e.planDonation(campaignID, donor, amount)
	if err != nil {
		return err
	}
	if err := e.settleDonation(plan); err != nil {
		return err
	}
	if err := e.commitDonation(plan); err != nil {
		return err
	}
	e.emit(NewDonationReceivedEvent(campaignID, donor, plan.gross, plan.fee, plan.net, plan.exempt))
	return nil
}

// DonateWithReferral performs Donate and then mints the configured referral
// reward to the referer, proportional to the net amount. The referer must be
// a registered donor distinct from the donor; the reward has no effect on the
// referer's donation totals or ranking.
func (e *Engine) DonateWithReferral(campaignID uint16, donor solana.PublicKey, amount uint64, referer solana.PublicKey) error {
	if err := e.ready(); err != nil {
		return err
	}
	if referer == donor {
		return ErrSelfReferral
	}
	refererRecord, ok := e.state.DonorGet(referer)
	if !ok {
		return fmt.Errorf("%w: referer %s", ErrDonorNotFound, referer)
	}

	plan, err := e.planDonation(campaignID, donor, amount)
	if err != nil {
		return err
	}
	reward, err := mulDiv(plan.net, plan.platform.ReferralRewardNum, plan.platform.ReferralRewardDenom)
	if err != nil {
		return err
	}
	if err := e.settleDonation(plan); err != nil {
		return err
	}
	if reward > 0 {
		if err := e.treasury.MintReward(refererRecord.Authority, reward); err != nil {
			return fmt.Errorf("mint referral reward: %w", err)
		}
	}
	if err := e.commitDonation(plan); err != nil {
		return err
	}
	e.emit(NewDonationReceivedEvent(campaignID, donor, plan.gross, plan.fee, plan.net, plan.exempt))
	e.emit(NewReferralRewardedEvent(campaignID, refererRecord.Authority, reward))
	return nil
}

// planDonation validates the target records and performs every arithmetic
// step on working copies.
func (e *Engine) planDonation(campaignID uint16, donorKey solana.PublicKey, amount uint64) (*donationPlan, error) {
	if amount == 0 {
		return nil, ErrInvalidAmount
	}
	platform, err := e.platform()
	if err != nil {
		return nil, err
	}
	campaign, ok := e.state.CampaignGet(campaignID)
	if !ok {
		return nil, fmt.Errorf("%w: campaign %d", ErrCampaignNotFound, campaignID)
	}
	if campaign.Closed {
		return nil, ErrCampaignClosed
	}
	active := platform.activeIndex(campaignID)
	if active < 0 {
		return nil, ErrCampaignClosed
	}
	donor, ok := e.state.DonorGet(donorKey)
	if !ok {
		return nil, fmt.Errorf("%w: donor %s", ErrDonorNotFound, donorKey)
	}

	plan := &donationPlan{platform: platform, campaign: campaign, donor: donor, gross: amount}
	if err := e.applyFeeSplit(plan); err != nil {
		return nil, err
	}

	pair, ok := e.state.DonationGet(donorKey, campaignID)
	if !ok {
		pair = &DonationTotals{}
	}
	campaignTotals, ok := e.state.CampaignDonationGet(campaignID)
	if !ok {
		campaignTotals = &DonationTotals{}
	}
	plan.pair = pair
	plan.campaignTotals = campaignTotals

	record := &platform.ActiveCampaigns[active]
	for _, step := range []*uint64{
		&platform.SumOfAllDonations,
		&platform.SumOfActiveCampaignDonations,
		&record.DonationsSum,
		&donor.DonationsSum,
		&pair.DonationsSum,
		&campaignTotals.DonationsSum,
	} {
		next, err := checkedAdd(*step, plan.net)
		if err != nil {
			return nil, err
		}
		*step = next
	}
	donor.LastDonationTS = e.clock.Now().Unix()

	platform.Top.Upsert(donorKey, donor.DonationsSum)
	campaign.Top.Upsert(donorKey, pair.DonationsSum)
	return plan, nil
}

// applyFeeSplit computes the fee unless the campaign's fee-exemption vault
// holds enough reward tokens, in which case the waived fee accrues to the
// platform's avoided-fees counter.
func (e *Engine) applyFeeSplit(plan *donationPlan) error {
	fee, err := mulDiv(plan.gross, plan.platform.PlatformFeeNum, plan.platform.PlatformFeeDenom)
	if err != nil {
		return err
	}
	balance, err := e.treasury.RewardBalance(plan.campaign.FeeExemptionVault)
	if err != nil {
		return fmt.Errorf("read fee exemption vault: %w", err)
	}
	if balance >= plan.platform.FeeExemptionLimit {
		avoided, err := checkedAdd(plan.platform.AvoidedFeesSum, fee)
		if err != nil {
			return err
		}
		plan.platform.AvoidedFeesSum = avoided
		plan.exempt = true
		plan.fee = 0
		plan.net = plan.gross
		return nil
	}
	plan.fee = fee
	plan.net = plan.gross - fee
	return nil
}

// settleDonation moves the value through the treasury. Running before
// commitDonation keeps a transfer failure from leaving any record mutated.
func (e *Engine) settleDonation(plan *donationPlan) error {
	if plan.fee > 0 {
		if err := e.treasury.Transfer(plan.donor.Authority, plan.platform.FeeVault, plan.fee); err != nil {
			return fmt.Errorf("transfer fee: %w", err)
		}
	}
	if err := e.treasury.Transfer(plan.donor.Authority, plan.platform.ValueVault, plan.net); err != nil {
		return fmt.Errorf("transfer donation: %w", err)
	}
	return nil
}

func (e *Engine) commitDonation(plan *donationPlan) error {
	if err := e.state.PlatformPut(plan.platform); err != nil {
		return err
	}
	if err := e.state.CampaignPut(plan.campaign); err != nil {
		return err
	}
	if err := e.state.DonorPut(plan.donor); err != nil {
		return err
	}
	if err := e.state.DonationPut(plan.donor.Authority, plan.campaign.ID, plan.pair); err != nil {
		return err
	}
	return e.state.CampaignDonationPut(plan.campaign.ID, plan.campaignTotals)
}
