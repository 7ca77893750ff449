package crowdfunding

import (
	"strconv"

	"github.com/gagliardetto/solana-go"

	"github.com/lincot/solana-crowdfunding/core/types"
)

const (
	EventTypePlatformInitialized  = "crowdfunding.platform.initialized"
	EventTypeDonorRegistered      = "crowdfunding.donor.registered"
	EventTypeCampaignStarted      = "crowdfunding.campaign.started"
	EventTypeDonationReceived     = "crowdfunding.donation.received"
	EventTypeReferralRewarded     = "crowdfunding.referral.rewarded"
	EventTypeIncentiveDistributed = "crowdfunding.incentive.distributed"
	EventTypeDonationsWithdrawn   = "crowdfunding.donations.withdrawn"
	EventTypeCampaignStopped      = "crowdfunding.campaign.stopped"
	EventTypeCampaignLiquidated   = "crowdfunding.campaign.liquidated"
	EventTypeFeesWithdrawn        = "crowdfunding.fees.withdrawn"
)

type ledgerEvent struct {
	evt *types.Event
}

func (e ledgerEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e ledgerEvent) Event() *types.Event { return e.evt }

func formatAmount(v uint64) string { return strconv.FormatUint(v, 10) }

func formatID(id uint16) string { return strconv.FormatUint(uint64(id), 10) }

func newEvent(eventType string, attrs map[string]string) *types.Event {
	return &types.Event{Type: eventType, Attributes: attrs}
}

// NewPlatformInitializedEvent returns the payload emitted once at platform
// creation.
func NewPlatformInitializedEvent(p *Platform) *types.Event {
	return newEvent(EventTypePlatformInitialized, map[string]string{
		"authority":  p.Authority.String(),
		"feeNum":     formatAmount(p.PlatformFeeNum),
		"feeDenom":   formatAmount(p.PlatformFeeDenom),
		"rewardMint": p.RewardMint.String(),
	})
}

// NewDonorRegisteredEvent returns the payload for a newly registered donor.
func NewDonorRegisteredEvent(donor solana.PublicKey) *types.Event {
	return newEvent(EventTypeDonorRegistered, map[string]string{
		"donor": donor.String(),
	})
}

// NewCampaignStartedEvent returns the payload for a newly started campaign.
func NewCampaignStartedEvent(c *Campaign) *types.Event {
	return newEvent(EventTypeCampaignStarted, map[string]string{
		"campaign":  formatID(c.ID),
		"authority": c.Authority.String(),
	})
}

// NewDonationReceivedEvent returns the payload for a settled donation.
func NewDonationReceivedEvent(campaignID uint16, donor solana.PublicKey, gross, fee, net uint64, exempt bool) *types.Event {
	return newEvent(EventTypeDonationReceived, map[string]string{
		"campaign": formatID(campaignID),
		"donor":    donor.String(),
		"gross":    formatAmount(gross),
		"fee":      formatAmount(fee),
		"net":      formatAmount(net),
		"exempt":   strconv.FormatBool(exempt),
	})
}

// NewReferralRewardedEvent returns the payload for a referral reward mint.
func NewReferralRewardedEvent(campaignID uint16, referer solana.PublicKey, reward uint64) *types.Event {
	return newEvent(EventTypeReferralRewarded, map[string]string{
		"campaign": formatID(campaignID),
		"referer":  referer.String(),
		"reward":   formatAmount(reward),
	})
}

// NewIncentiveDistributedEvent returns the payload summarising one incentive
// cycle.
func NewIncentiveDistributedEvent(outcome *IncentiveOutcome) *types.Event {
	return newEvent(EventTypeIncentiveDistributed, map[string]string{
		"recipients": strconv.Itoa(len(outcome.Paid)),
		"skipped":    strconv.Itoa(len(outcome.Skipped)),
		"amountEach": formatAmount(outcome.AmountEach),
	})
}

// NewDonationsWithdrawnEvent returns the payload for a campaign withdrawal.
func NewDonationsWithdrawnEvent(campaignID uint16, authority solana.PublicKey, amount uint64) *types.Event {
	return newEvent(EventTypeDonationsWithdrawn, map[string]string{
		"campaign":  formatID(campaignID),
		"authority": authority.String(),
		"amount":    formatAmount(amount),
	})
}

// NewCampaignStoppedEvent returns the payload for an authority-initiated
// campaign stop.
func NewCampaignStoppedEvent(campaignID uint16, outstanding uint64) *types.Event {
	return newEvent(EventTypeCampaignStopped, map[string]string{
		"campaign":    formatID(campaignID),
		"outstanding": formatAmount(outstanding),
	})
}

// NewCampaignLiquidatedEvent returns the payload for a forced liquidation.
func NewCampaignLiquidatedEvent(campaignID uint16, outstanding, distributed, remainder uint64) *types.Event {
	return newEvent(EventTypeCampaignLiquidated, map[string]string{
		"campaign":    formatID(campaignID),
		"outstanding": formatAmount(outstanding),
		"distributed": formatAmount(distributed),
		"remainder":   formatAmount(remainder),
	})
}

// NewFeesWithdrawnEvent returns the payload for a platform fee drain.
func NewFeesWithdrawnEvent(authority solana.PublicKey, amount uint64) *types.Event {
	return newEvent(EventTypeFeesWithdrawn, map[string]string{
		"authority": authority.String(),
		"amount":    formatAmount(amount),
	})
}
