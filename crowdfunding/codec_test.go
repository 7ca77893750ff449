package crowdfunding

import (
	"reflect"
	"testing"

	"github.com/lincot/solana-crowdfunding/leaderboard"
)

func testPlatform(t *testing.T) *Platform {
	t.Helper()
	top, err := leaderboard.New(PlatformTopCapacity)
	if err != nil {
		t.Fatalf("new board: %v", err)
	}
	for i, amount := range []uint64{500, 300, 100} {
		top.Upsert(key(byte(i+1)), amount)
	}
	return &Platform{
		Authority:                    platformAuthority,
		RewardMint:                   rewardMint,
		FeeVault:                     feeVault,
		ValueVault:                   valueVault,
		ActiveCampaignsCapacity:      DefaultActiveCampaignsCapacity,
		CampaignsCount:               3,
		IncentiveCooldown:            10_000,
		IncentiveAmount:              10_000,
		PlatformFeeNum:               3,
		PlatformFeeDenom:             100,
		FeeExemptionLimit:            1000,
		LiquidationLimit:             2000,
		ReferralRewardNum:            1,
		ReferralRewardDenom:          10_000,
		LastIncentiveTS:              1_700_000_000,
		SumOfAllDonations:            900,
		SumOfActiveCampaignDonations: 600,
		AvoidedFeesSum:               27,
		LiquidationsSum:              300,
		ActiveCampaigns: []CampaignRecord{
			{ID: 0, DonationsSum: 400, WithdrawnSum: 100},
			{ID: 2, DonationsSum: 200},
		},
		Top: top,
	}
}

func TestPlatformRoundTrip(t *testing.T) {
	platform := testPlatform(t)
	data, err := EncodePlatform(platform)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodePlatform(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(decoded.ActiveCampaigns, platform.ActiveCampaigns) {
		t.Fatalf("active set changed: %+v", decoded.ActiveCampaigns)
	}
	if !reflect.DeepEqual(decoded.Top.Entries(), platform.Top.Entries()) {
		t.Fatalf("board changed: %+v", decoded.Top.Entries())
	}
	decoded.ActiveCampaigns, platform.ActiveCampaigns = nil, nil
	decoded.Top, platform.Top = nil, nil
	if !reflect.DeepEqual(decoded, platform) {
		t.Fatalf("scalar fields changed:\n got %+v\nwant %+v", decoded, platform)
	}
}

func TestCampaignRoundTrip(t *testing.T) {
	top, err := leaderboard.New(CampaignTopCapacity)
	if err != nil {
		t.Fatalf("new board: %v", err)
	}
	top.Upsert(key(1), 70)
	top.Upsert(key(2), 90)
	campaign := &Campaign{
		ID:                7,
		Authority:         key(0x10),
		FeeExemptionVault: key(0x11),
		LiquidationVault:  key(0x12),
		Closed:            true,
		Top:               top,
	}
	data, err := EncodeCampaign(campaign)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeCampaign(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.ID != 7 || decoded.Authority != campaign.Authority || !decoded.Closed {
		t.Fatalf("campaign fields changed: %+v", decoded)
	}
	if !reflect.DeepEqual(decoded.Top.Entries(), campaign.Top.Entries()) {
		t.Fatalf("board changed: %+v", decoded.Top.Entries())
	}
}

func TestDecodePlatformRejectsUnorderedActiveSet(t *testing.T) {
	platform := testPlatform(t)
	platform.ActiveCampaigns = []CampaignRecord{{ID: 2}, {ID: 1}}
	data, err := EncodePlatform(platform)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := DecodePlatform(data); err == nil {
		t.Fatalf("expected ordering error")
	}
}

func TestDecodePlatformRejectsCorruptBoard(t *testing.T) {
	platform := testPlatform(t)
	data, err := EncodePlatform(platform)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	// Swap the amounts of the first two board slots so the image is no
	// longer sorted descending. Each slot is a 32-byte key and a u64.
	offset := 32*4 + 2 + 2 + 4 + 8*7 + 8 + 8*4
	copy(data[offset+32:offset+40], []byte{100, 0, 0, 0, 0, 0, 0, 0})
	if _, err := DecodePlatform(data); err == nil {
		t.Fatalf("expected board-order error")
	}
}

func TestDonorRoundTrip(t *testing.T) {
	donor := &Donor{
		Authority:                key(1),
		DonationsSum:             970,
		IncentivizedDonationsSum: 500,
		LastDonationTS:           1_700_000_123,
	}
	data, err := EncodeDonor(donor)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeDonor(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if *decoded != *donor {
		t.Fatalf("donor changed: %+v", decoded)
	}
}
