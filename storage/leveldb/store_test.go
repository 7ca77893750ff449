package leveldb

import (
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/lincot/solana-crowdfunding/crowdfunding"
	"github.com/lincot/solana-crowdfunding/leaderboard"
)

func acct(fill byte) solana.PublicKey {
	var key solana.PublicKey
	for i := range key {
		key[i] = fill
	}
	return key
}

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "ledger"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })
	return store
}

func TestPlatformSurvivesReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ledger")
	store, err := Open(dir)
	require.NoError(t, err)

	top, err := leaderboard.New(crowdfunding.PlatformTopCapacity)
	require.NoError(t, err)
	top.Upsert(acct(1), 500)
	top.Upsert(acct(2), 300)
	platform := &crowdfunding.Platform{
		Authority:                    acct(0xA0),
		RewardMint:                   acct(0xA1),
		FeeVault:                     acct(0xA2),
		ValueVault:                   acct(0xA3),
		ActiveCampaignsCapacity:      crowdfunding.DefaultActiveCampaignsCapacity,
		CampaignsCount:               1,
		PlatformFeeNum:               3,
		PlatformFeeDenom:             100,
		ReferralRewardDenom:          10_000,
		SumOfAllDonations:            800,
		SumOfActiveCampaignDonations: 800,
		ActiveCampaigns:              []crowdfunding.CampaignRecord{{ID: 0, DonationsSum: 800}},
		Top:                          top,
	}
	require.NoError(t, store.PlatformPut(platform))
	require.NoError(t, store.Close())

	store, err = Open(dir)
	require.NoError(t, err)
	defer store.Close()
	loaded, ok := store.PlatformGet()
	require.True(t, ok)
	require.Equal(t, platform.SumOfAllDonations, loaded.SumOfAllDonations)
	require.Equal(t, platform.ActiveCampaigns, loaded.ActiveCampaigns)
	require.Equal(t, platform.Top.Entries(), loaded.Top.Entries())
	require.NoError(t, store.Err())
}

func TestRecordKeysDoNotCollide(t *testing.T) {
	store := openStore(t)

	top, err := leaderboard.New(crowdfunding.CampaignTopCapacity)
	require.NoError(t, err)
	require.NoError(t, store.CampaignPut(&crowdfunding.Campaign{
		ID:                7,
		Authority:         acct(0x10),
		FeeExemptionVault: acct(0x11),
		LiquidationVault:  acct(0x12),
		Top:               top,
	}))
	require.NoError(t, store.DonorPut(&crowdfunding.Donor{Authority: acct(1), DonationsSum: 9}))
	require.NoError(t, store.DonationPut(acct(1), 7, &crowdfunding.DonationTotals{DonationsSum: 5}))
	require.NoError(t, store.CampaignDonationPut(7, &crowdfunding.DonationTotals{DonationsSum: 14}))

	campaign, ok := store.CampaignGet(7)
	require.True(t, ok)
	require.Equal(t, uint16(7), campaign.ID)
	_, ok = store.CampaignGet(8)
	require.False(t, ok)

	pair, ok := store.DonationGet(acct(1), 7)
	require.True(t, ok)
	require.Equal(t, uint64(5), pair.DonationsSum)
	_, ok = store.DonationGet(acct(1), 8)
	require.False(t, ok)

	sum, ok := store.CampaignDonationGet(7)
	require.True(t, ok)
	require.Equal(t, uint64(14), sum.DonationsSum)
}

func TestDonorList(t *testing.T) {
	store := openStore(t)
	for fill := byte(1); fill <= 3; fill++ {
		require.NoError(t, store.DonorPut(&crowdfunding.Donor{
			Authority:    acct(fill),
			DonationsSum: uint64(fill) * 100,
		}))
	}
	donors := store.DonorList()
	require.Len(t, donors, 3)
	seen := make(map[solana.PublicKey]uint64, len(donors))
	for _, donor := range donors {
		seen[donor.Authority] = donor.DonationsSum
	}
	require.Equal(t, uint64(200), seen[acct(2)])
}
