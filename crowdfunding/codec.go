package crowdfunding

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/lincot/solana-crowdfunding/leaderboard"
)

// Records persist as fixed-size Borsh images compatible with Anchor zero-copy
// account layouts: raw 32-byte keys, little-endian integers, and boards and
// the active set as full-capacity arrays plus an occupied count. Unused board
// slots carry the all-zero sentinel identity and are never reported as
// entries.

type boardEntryLayout struct {
	Identity solana.PublicKey
	Amount   uint64
}

type platformLayout struct {
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

	Top                  [PlatformTopCapacity]boardEntryLayout
	ActiveCampaigns      [DefaultActiveCampaignsCapacity]CampaignRecord
	ActiveCampaignsCount uint16
}

type campaignLayout struct {
	ID                uint16
	Authority         solana.PublicKey
	FeeExemptionVault solana.PublicKey
	LiquidationVault  solana.PublicKey
	Closed            bool
	Top               [CampaignTopCapacity]boardEntryLayout
}

func packBoard(board *leaderboard.Board, out []boardEntryLayout) {
	for i, entry := range board.Entries() {
		out[i] = boardEntryLayout{Identity: entry.Identity, Amount: entry.Amount}
	}
}

func unpackBoard(capacity int, in []boardEntryLayout) (*leaderboard.Board, error) {
	entries := make([]leaderboard.Entry, len(in))
	for i, entry := range in {
		entries[i] = leaderboard.Entry{Identity: entry.Identity, Amount: entry.Amount}
	}
	return leaderboard.Load(capacity, entries)
}

func encode(layout interface{}) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := bin.NewBorshEncoder(buf).Encode(layout); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodePlatform renders the platform record into its fixed-size binary
// image.
func EncodePlatform(p *Platform) ([]byte, error) {
	layout := platformLayout{
		Authority:                    p.Authority,
		RewardMint:                   p.RewardMint,
		FeeVault:                     p.FeeVault,
		ValueVault:                   p.ValueVault,
		ActiveCampaignsCapacity:      p.ActiveCampaignsCapacity,
		CampaignsCount:               p.CampaignsCount,
		IncentiveCooldown:            p.IncentiveCooldown,
		IncentiveAmount:              p.IncentiveAmount,
		PlatformFeeNum:               p.PlatformFeeNum,
		PlatformFeeDenom:             p.PlatformFeeDenom,
		FeeExemptionLimit:            p.FeeExemptionLimit,
		LiquidationLimit:             p.LiquidationLimit,
		ReferralRewardNum:            p.ReferralRewardNum,
		ReferralRewardDenom:          p.ReferralRewardDenom,
		LastIncentiveTS:              p.LastIncentiveTS,
		SumOfAllDonations:            p.SumOfAllDonations,
		SumOfActiveCampaignDonations: p.SumOfActiveCampaignDonations,
		AvoidedFeesSum:               p.AvoidedFeesSum,
		LiquidationsSum:              p.LiquidationsSum,
		ActiveCampaignsCount:         uint16(len(p.ActiveCampaigns)),
	}
	if len(p.ActiveCampaigns) > DefaultActiveCampaignsCapacity {
		return nil, fmt.Errorf("%w: %d active campaigns", ErrCampaignCapacity, len(p.ActiveCampaigns))
	}
	packBoard(p.Top, layout.Top[:])
	copy(layout.ActiveCampaigns[:], p.ActiveCampaigns)
	return encode(&layout)
}

// DecodePlatform rebuilds a platform record from its binary image,
// revalidating board ordering and active-set density.
func DecodePlatform(data []byte) (*Platform, error) {
	var layout platformLayout
	if err := bin.NewBorshDecoder(data).Decode(&layout); err != nil {
		return nil, err
	}
	if int(layout.ActiveCampaignsCount) > len(layout.ActiveCampaigns) {
		return nil, fmt.Errorf("crowdfunding: active campaign count %d out of range", layout.ActiveCampaignsCount)
	}
	top, err := unpackBoard(PlatformTopCapacity, layout.Top[:])
	if err != nil {
		return nil, err
	}
	active := make([]CampaignRecord, layout.ActiveCampaignsCount)
	copy(active, layout.ActiveCampaigns[:layout.ActiveCampaignsCount])
	for i := 1; i < len(active); i++ {
		if active[i-1].ID >= active[i].ID {
			return nil, fmt.Errorf("crowdfunding: active set not ordered at %d", i)
		}
	}
	return &Platform{
		Authority:                    layout.Authority,
		RewardMint:                   layout.RewardMint,
		FeeVault:                     layout.FeeVault,
		ValueVault:                   layout.ValueVault,
		ActiveCampaignsCapacity:      layout.ActiveCampaignsCapacity,
		CampaignsCount:               layout.CampaignsCount,
		IncentiveCooldown:            layout.IncentiveCooldown,
		IncentiveAmount:              layout.IncentiveAmount,
		PlatformFeeNum:               layout.PlatformFeeNum,
		PlatformFeeDenom:             layout.PlatformFeeDenom,
		FeeExemptionLimit:            layout.FeeExemptionLimit,
		LiquidationLimit:             layout.LiquidationLimit,
		ReferralRewardNum:            layout.ReferralRewardNum,
		ReferralRewardDenom:          layout.ReferralRewardDenom,
		LastIncentiveTS:              layout.LastIncentiveTS,
		SumOfAllDonations:            layout.SumOfAllDonations,
		SumOfActiveCampaignDonations: layout.SumOfActiveCampaignDonations,
		AvoidedFeesSum:               layout.AvoidedFeesSum,
		LiquidationsSum:              layout.LiquidationsSum,
		ActiveCampaigns:              active,
		Top:                          top,
	}, nil
}

// EncodeCampaign renders the campaign record into its fixed-size binary
// image.
func EncodeCampaign(c *Campaign) ([]byte, error) {
	layout := campaignLayout{
		ID:                c.ID,
		Authority:         c.Authority,
		FeeExemptionVault: c.FeeExemptionVault,
		LiquidationVault:  c.LiquidationVault,
		Closed:            c.Closed,
	}
	packBoard(c.Top, layout.Top[:])
	return encode(&layout)
}

// DecodeCampaign rebuilds a campaign record from its binary image.
func DecodeCampaign(data []byte) (*Campaign, error) {
	var layout campaignLayout
	if err := bin.NewBorshDecoder(data).Decode(&layout); err != nil {
		return nil, err
	}
	top, err := unpackBoard(CampaignTopCapacity, layout.Top[:])
	if err != nil {
		return nil, err
	}
	return &Campaign{
		ID:                layout.ID,
		Authority:         layout.Authority,
		FeeExemptionVault: layout.FeeExemptionVault,
		LiquidationVault:  layout.LiquidationVault,
		Closed:            layout.Closed,
		Top:               top,
	}, nil
}

// EncodeDonor renders the donor record into its fixed-size binary image.
func EncodeDonor(d *Donor) ([]byte, error) { return encode(d) }

// DecodeDonor rebuilds a donor record from its binary image.
func DecodeDonor(data []byte) (*Donor, error) {
	var donor Donor
	if err := bin.NewBorshDecoder(data).Decode(&donor); err != nil {
		return nil, err
	}
	return &donor, nil
}

// EncodeDonationTotals renders a pair record into its binary image.
func EncodeDonationTotals(t *DonationTotals) ([]byte, error) { return encode(t) }

// DecodeDonationTotals rebuilds a pair record from its binary image.
func DecodeDonationTotals(data []byte) (*DonationTotals, error) {
	var totals DonationTotals
	if err := bin.NewBorshDecoder(data).Decode(&totals); err != nil {
		return nil, err
	}
	return &totals, nil
}
