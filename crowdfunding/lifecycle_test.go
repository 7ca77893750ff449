package crowdfunding

import (
	"errors"
	"testing"
)

func TestWithdrawDonations(t *testing.T) {
	engine, state, treasury, _ := newInitializedEngine(t)
	authority := key(0x10)
	id := startTestCampaign(t, engine, authority)
	registerAndDonate(t, engine, id, key(1), 100)

	amount, err := engine.WithdrawDonations(id, authority)
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if amount != 97 {
		t.Fatalf("withdrew %d, want 97", amount)
	}
	if treasury.native[valueVault] != 0 {
		t.Fatalf("value vault = %d, want 0", treasury.native[valueVault])
	}
	platform, _ := state.PlatformGet()
	record := platform.ActiveCampaigns[0]
	if record.WithdrawnSum != record.DonationsSum {
		t.Fatalf("withdrawn sum not settled: %+v", record)
	}

	// Nothing new to withdraw: the repeat call moves nothing.
	transfers := treasury.transfers
	amount, err = engine.WithdrawDonations(id, authority)
	if err != nil || amount != 0 {
		t.Fatalf("repeat withdraw = %d/%v, want 0", amount, err)
	}
	if treasury.transfers != transfers {
		t.Fatalf("idempotent withdraw moved value")
	}
}

func TestWithdrawDonationsUnauthorized(t *testing.T) {
	engine, _, _, _ := newInitializedEngine(t)
	id := startTestCampaign(t, engine, key(0x10))
	if _, err := engine.WithdrawDonations(id, key(0x99)); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestStopCampaign(t *testing.T) {
	engine, state, treasury, _ := newInitializedEngine(t)
	authority := key(0x10)
	id := startTestCampaign(t, engine, authority)
	registerAndDonate(t, engine, id, key(1), 100)

	if err := engine.StopCampaign(id, authority); err != nil {
		t.Fatalf("stop: %v", err)
	}
	platform, _ := state.PlatformGet()
	if len(platform.ActiveCampaigns) != 0 {
		t.Fatalf("stopped campaign still active")
	}
	if platform.SumOfActiveCampaignDonations != 0 {
		t.Fatalf("active sum = %d, want 0", platform.SumOfActiveCampaignDonations)
	}
	if platform.SumOfAllDonations != 97 {
		t.Fatalf("lifetime sum must survive the stop, got %d", platform.SumOfAllDonations)
	}
	// The outstanding balance went to the authority.
	if treasury.native[authority] != 97 {
		t.Fatalf("authority received %d, want 97", treasury.native[authority])
	}
	campaign, _ := state.CampaignGet(id)
	if !campaign.Closed {
		t.Fatalf("campaign not marked closed")
	}

	if err := engine.StopCampaign(id, authority); !errors.Is(err, ErrCampaignClosed) {
		t.Fatalf("expected ErrCampaignClosed on repeat stop, got %v", err)
	}
}

func TestStopCampaignUnauthorized(t *testing.T) {
	engine, _, _, _ := newInitializedEngine(t)
	id := startTestCampaign(t, engine, key(0x10))
	if err := engine.StopCampaign(id, key(0x99)); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func liquidationFixture(t *testing.T) (*Engine, *mockState, *mockTreasury, [3]uint16) {
	t.Helper()
	engine, state, treasury, _ := newInitializedEngine(t)
	var ids [3]uint16
	for i := range ids {
		ids[i] = startTestCampaign(t, engine, key(byte(0x10+i*0x10)))
	}
	donor := key(1)
	if err := engine.RegisterDonor(donor); err != nil {
		t.Fatalf("register: %v", err)
	}

	// Campaign 0 collects 100000 net fee-free; campaigns 1 and 2 hold 1 and 9.
	campaign, _ := state.CampaignGet(ids[0])
	treasury.reward[campaign.FeeExemptionVault] = 1000
	if err := engine.Donate(ids[0], donor, 100_000); err != nil {
		t.Fatalf("donate: %v", err)
	}
	for i, amount := range map[int]uint64{1: 1, 2: 9} {
		c, _ := state.CampaignGet(ids[i])
		treasury.reward[c.FeeExemptionVault] = 1000
		if err := engine.Donate(ids[i], donor, amount); err != nil {
			t.Fatalf("donate: %v", err)
		}
	}
	return engine, state, treasury, ids
}

func TestLiquidateCampaignRequiresCollateral(t *testing.T) {
	engine, state, treasury, ids := liquidationFixture(t)
	before, _ := state.PlatformGet()

	if err := engine.LiquidateCampaign(ids[0]); !errors.Is(err, ErrInsufficientCollateral) {
		t.Fatalf("expected ErrInsufficientCollateral, got %v", err)
	}
	after, _ := state.PlatformGet()
	if len(after.ActiveCampaigns) != len(before.ActiveCampaigns) {
		t.Fatalf("failed liquidation mutated the active set")
	}

	campaign, _ := state.CampaignGet(ids[0])
	treasury.reward[campaign.LiquidationVault] = 2000
	if err := engine.LiquidateCampaign(ids[0]); err != nil {
		t.Fatalf("liquidate: %v", err)
	}
}

func TestLiquidateCampaignRedistributesProportionally(t *testing.T) {
	engine, state, treasury, ids := liquidationFixture(t)
	campaign, _ := state.CampaignGet(ids[0])
	treasury.reward[campaign.LiquidationVault] = 2000

	if err := engine.LiquidateCampaign(ids[0]); err != nil {
		t.Fatalf("liquidate: %v", err)
	}

	platform, _ := state.PlatformGet()
	if len(platform.ActiveCampaigns) != 2 {
		t.Fatalf("expected 2 survivors, got %d", len(platform.ActiveCampaigns))
	}
	if got := platform.ActiveCampaigns[0].DonationsSum; got != 1+10_000 {
		t.Fatalf("survivor 1 sum = %d, want 10001", got)
	}
	if got := platform.ActiveCampaigns[1].DonationsSum; got != 9+90_000 {
		t.Fatalf("survivor 2 sum = %d, want 90009", got)
	}
	if platform.ActiveCampaigns[0].WithdrawnSum != 0 || platform.ActiveCampaigns[1].WithdrawnSum != 0 {
		t.Fatalf("liquidation must not touch withdrawn sums")
	}
	if platform.SumOfActiveCampaignDonations != 1+10_000+9+90_000 {
		t.Fatalf("active sum = %d, want survivors' total", platform.SumOfActiveCampaignDonations)
	}
	if platform.LiquidationsSum != 100_000 {
		t.Fatalf("liquidations sum = %d, want 100000", platform.LiquidationsSum)
	}

	stored, _ := state.CampaignGet(ids[0])
	if !stored.Closed {
		t.Fatalf("liquidated campaign not closed")
	}
	if err := engine.LiquidateCampaign(ids[0]); !errors.Is(err, ErrCampaignClosed) {
		t.Fatalf("expected ErrCampaignClosed on repeat, got %v", err)
	}
}

func TestLiquidateCampaignSweepsRemainderToFeeVault(t *testing.T) {
	engine, state, treasury, _ := newInitializedEngine(t)
	var ids [3]uint16
	for i := range ids {
		ids[i] = startTestCampaign(t, engine, key(byte(0x10+i*0x10)))
	}
	donor := key(1)
	if err := engine.RegisterDonor(donor); err != nil {
		t.Fatalf("register: %v", err)
	}
	for i, amount := range map[int]uint64{0: 100, 1: 3, 2: 6} {
		c, _ := state.CampaignGet(ids[i])
		treasury.reward[c.FeeExemptionVault] = 1000
		if err := engine.Donate(ids[i], donor, amount); err != nil {
			t.Fatalf("donate: %v", err)
		}
	}
	campaign, _ := state.CampaignGet(ids[0])
	treasury.reward[campaign.LiquidationVault] = 2000
	feesBefore := treasury.native[feeVault]

	// outstanding 100 over weights 3:6 -> shares 33 and 66, remainder 1.
	if err := engine.LiquidateCampaign(ids[0]); err != nil {
		t.Fatalf("liquidate: %v", err)
	}
	platform, _ := state.PlatformGet()
	if got := platform.ActiveCampaigns[0].DonationsSum; got != 3+33 {
		t.Fatalf("survivor 1 sum = %d, want 36", got)
	}
	if got := platform.ActiveCampaigns[1].DonationsSum; got != 6+66 {
		t.Fatalf("survivor 2 sum = %d, want 72", got)
	}
	if got := treasury.native[feeVault] - feesBefore; got != 1 {
		t.Fatalf("fee vault gained %d, want the remainder 1", got)
	}
	if platform.SumOfActiveCampaignDonations != 36+72 {
		t.Fatalf("active sum = %d, want 108", platform.SumOfActiveCampaignDonations)
	}
}

func TestLiquidateLastCampaignSweepsEverything(t *testing.T) {
	engine, state, treasury, _ := newInitializedEngine(t)
	id := startTestCampaign(t, engine, key(0x10))
	donor := key(1)
	if err := engine.RegisterDonor(donor); err != nil {
		t.Fatalf("register: %v", err)
	}
	c, _ := state.CampaignGet(id)
	treasury.reward[c.FeeExemptionVault] = 1000
	treasury.reward[c.LiquidationVault] = 2000
	if err := engine.Donate(id, donor, 100); err != nil {
		t.Fatalf("donate: %v", err)
	}

	if err := engine.LiquidateCampaign(id); err != nil {
		t.Fatalf("liquidate: %v", err)
	}
	platform, _ := state.PlatformGet()
	if platform.SumOfActiveCampaignDonations != 0 {
		t.Fatalf("active sum = %d, want 0", platform.SumOfActiveCampaignDonations)
	}
	// With no survivors the whole outstanding balance is the remainder.
	if treasury.native[feeVault] != 100 {
		t.Fatalf("fee vault = %d, want 100", treasury.native[feeVault])
	}
}

func TestWithdrawFees(t *testing.T) {
	engine, _, treasury, _ := newInitializedEngine(t)
	id := startTestCampaign(t, engine, key(0x10))
	registerAndDonate(t, engine, id, key(1), 100)

	if _, err := engine.WithdrawFees(key(0x99)); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	amount, err := engine.WithdrawFees(platformAuthority)
	if err != nil {
		t.Fatalf("withdraw fees: %v", err)
	}
	if amount != 3 {
		t.Fatalf("withdrew %d, want 3", amount)
	}
	if treasury.native[feeVault] != 0 {
		t.Fatalf("fee vault not drained")
	}
}
