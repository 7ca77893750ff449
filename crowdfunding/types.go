// Package crowdfunding implements the ledger and accounting engine behind a
// multi-tenant donation platform: campaigns, donors, a reward token, a fee
// split on every contribution, bounded top-contributor rankings,
// cooldown-gated incentive distribution, and forced liquidation of
// under-collateralized campaigns. The engine assumes an external host that
// authenticates callers, resolves record handles, serializes access per
// record, and moves value through the Treasury primitive.
package crowdfunding

import (
	"github.com/gagliardetto/solana-go"

	"github.com/lincot/solana-crowdfunding/leaderboard"
)

const (
	// PlatformTopCapacity bounds the platform-wide contributor ranking.
	PlatformTopCapacity = 128
	// CampaignTopCapacity bounds each campaign's contributor ranking.
	CampaignTopCapacity = 10
	// SeasonalTopCapacity bounds the recipient set of a single incentive
	// distribution.
	SeasonalTopCapacity = 10
	// DefaultActiveCampaignsCapacity is used when the platform is initialized
	// with a zero capacity.
	DefaultActiveCampaignsCapacity = 256
)

// CampaignRecord is a campaign's slot in the platform's active set. The
// per-campaign donation and withdrawal sums live here so lifecycle
// bookkeeping and liquidation redistribution touch a single record.
type CampaignRecord struct {
	ID           uint16
	DonationsSum uint64
	WithdrawnSum uint64
}

// Platform is the singleton configuration and aggregate-counter record.
type Platform struct {
	Authority  solana.PublicKey
	RewardMint solana.PublicKey
	FeeVault   solana.PublicKey
	ValueVault solana.PublicKey

	ActiveCampaignsCapacity uint16
	CampaignsCount          uint16

	IncentiveCooldown   uint32
	IncentiveAmount     uint64
	PlatformFeeNum      uint64
	PlatformFeeDenom    uint64
	FeeExemptionLimit   uint64
	LiquidationLimit    uint64
	ReferralRewardNum   uint64
	ReferralRewardDenom uint64

	LastIncentiveTS              int64
	SumOfAllDonations            uint64
	SumOfActiveCampaignDonations uint64
	AvoidedFeesSum               uint64
	LiquidationsSum              uint64

	// ActiveCampaigns is dense and ordered by ascending id; stopped or
	// liquidated campaigns leave the set.
	ActiveCampaigns []CampaignRecord
	Top             *leaderboard.Board
}

// Clone returns a deep copy of the platform record.
func (p *Platform) Clone() *Platform {
	if p == nil {
		return nil
	}
	clone := *p
	clone.ActiveCampaigns = make([]CampaignRecord, len(p.ActiveCampaigns))
	copy(clone.ActiveCampaigns, p.ActiveCampaigns)
	if p.Top != nil {
		clone.Top = p.Top.Clone()
	}
	return &clone
}

// activeIndex locates a campaign in the active set by id. The set is ordered
// by ascending id, so a linear scan terminates early.
func (p *Platform) activeIndex(id uint16) int {
	for i := range p.ActiveCampaigns {
		if p.ActiveCampaigns[i].ID == id {
			return i
		}
		if p.ActiveCampaigns[i].ID > id {
			break
		}
	}
	return -1
}

// Campaign is a per-campaign record. Monetary sums live in the platform's
// active set; the campaign record carries identity, vault handles, lifecycle
// state, and the campaign-scoped ranking.
type Campaign struct {
	ID                uint16
	Authority         solana.PublicKey
	FeeExemptionVault solana.PublicKey
	LiquidationVault  solana.PublicKey
	Closed            bool
	Top               *leaderboard.Board
}

// Clone returns a deep copy of the campaign record.
func (c *Campaign) Clone() *Campaign {
	if c == nil {
		return nil
	}
	clone := *c
	if c.Top != nil {
		clone.Top = c.Top.Clone()
	}
	return &clone
}

// Donor tracks a donor's lifetime totals. IncentivizedDonationsSum is the
// checkpoint of the lifetime total already rewarded; the unrewarded delta is
// DonationsSum minus the checkpoint and never goes negative.
type Donor struct {
	Authority                solana.PublicKey
	DonationsSum             uint64
	IncentivizedDonationsSum uint64
	LastDonationTS           int64
}

// Clone returns a copy of the donor record.
func (d *Donor) Clone() *Donor {
	if d == nil {
		return nil
	}
	clone := *d
	return &clone
}

// DonationTotals is the itemized contribution tracker scoped either to a
// (donor, campaign) pair or to a campaign aggregate. Created lazily on first
// donation, never deleted.
type DonationTotals struct {
	DonationsSum uint64
}

// Clone returns a copy of the totals record.
func (t *DonationTotals) Clone() *DonationTotals {
	if t == nil {
		return nil
	}
	clone := *t
	return &clone
}

// InitializeParams carries the deploy-time platform configuration.
type InitializeParams struct {
	Authority  solana.PublicKey
	RewardMint solana.PublicKey
	FeeVault   solana.PublicKey
	ValueVault solana.PublicKey

	ActiveCampaignsCapacity uint16
	IncentiveCooldown       uint32
	IncentiveAmount         uint64
	PlatformFeeNum          uint64
	PlatformFeeDenom        uint64
	FeeExemptionLimit       uint64
	LiquidationLimit        uint64
	ReferralRewardNum       uint64
	ReferralRewardDenom     uint64
}
