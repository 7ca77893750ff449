package crowdfunding

import (
	"sort"

	"github.com/gagliardetto/solana-go"
)

// RecipientSelector picks the donors to reward in one incentive cycle, in
// payout order. Two interchangeable strategies exist: the default walks the
// platform's bounded leaderboard, the full-scan variant ranks every donor by
// unrewarded delta. Both only return donors whose lifetime sum exceeds their
// incentivization checkpoint.
type RecipientSelector interface {
	Select(state State, platform *Platform, limit int) ([]solana.PublicKey, error)
}

// TopBoardSelector selects eligible donors from the platform leaderboard in
// rank order. This is the on-line strategy: the board is maintained per
// donation, so selection is O(capacity).
type TopBoardSelector struct{}

// Select implements RecipientSelector.
func (TopBoardSelector) Select(state State, platform *Platform, limit int) ([]solana.PublicKey, error) {
	recipients := make([]solana.PublicKey, 0, limit)
	for _, entry := range platform.Top.Entries() {
		if len(recipients) == limit {
			break
		}
		donor, ok := state.DonorGet(entry.Identity)
		if !ok {
			continue
		}
		if donor.DonationsSum > donor.IncentivizedDonationsSum {
			recipients = append(recipients, entry.Identity)
		}
	}
	return recipients, nil
}

// DonorLister is an optional State extension that enumerates every donor
// record. The full-scan selector requires it.
type DonorLister interface {
	DonorList() []*Donor
}

// DeltaScanSelector ranks all donors by their unrewarded delta, descending,
// with the donor identity as a deterministic tie break. This is the off-line
// strategy: it needs no per-donation bookkeeping but scans every donor record
// at distribution time.
type DeltaScanSelector struct{}

// Select implements RecipientSelector. The state must implement DonorLister.
func (DeltaScanSelector) Select(state State, _ *Platform, limit int) ([]solana.PublicKey, error) {
	lister, ok := state.(DonorLister)
	if !ok {
		return nil, errNilState
	}
	type ranked struct {
		key   solana.PublicKey
		delta uint64
	}
	eligible := make([]ranked, 0, limit)
	for _, donor := range lister.DonorList() {
		if donor.DonationsSum > donor.IncentivizedDonationsSum {
			eligible = append(eligible, ranked{key: donor.Authority, delta: donor.DonationsSum - donor.IncentivizedDonationsSum})
		}
	}
	sort.Slice(eligible, func(i, j int) bool {
		if eligible[i].delta != eligible[j].delta {
			return eligible[i].delta > eligible[j].delta
		}
		return eligible[i].key.String() < eligible[j].key.String()
	})
	if len(eligible) > limit {
		eligible = eligible[:limit]
	}
	recipients := make([]solana.PublicKey, len(eligible))
	for i, r := range eligible {
		recipients[i] = r.key
	}
	return recipients, nil
}

// IncentiveOutcome summarises a single incentive distribution.
type IncentiveOutcome struct {
	// Paid lists the donors whose reward minted and whose checkpoint
	// advanced.
	Paid []solana.PublicKey
	// Skipped lists the donors whose mint failed; their checkpoint is left
	// untouched so they stay eligible for the next cycle.
	Skipped []solana.PublicKey
	// AmountEach is the reward-token amount minted per paid donor.
	AmountEach uint64
	// Timestamp is the cycle timestamp recorded on the platform.
	Timestamp int64
}

// Incentivize distributes the configured reward amount to the eligible top
// contributors, at most once per cooldown period. The cooldown timestamp
// advances as soon as selection runs, so retries cannot double-distribute; a
// failed per-donor mint skips that donor without blocking the rest.
func (e *Engine) Incentivize() (*IncentiveOutcome, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	platform, err := e.platform()
	if err != nil {
		return nil, err
	}
	now := e.clock.Now().Unix()
	if now-platform.LastIncentiveTS < int64(platform.IncentiveCooldown) {
		return nil, ErrIncentiveCooldown
	}

	recipients, err := e.selector.Select(e.state, platform, SeasonalTopCapacity)
	if err != nil {
		return nil, err
	}
	platform.LastIncentiveTS = now
	if err := e.state.PlatformPut(platform); err != nil {
		return nil, err
	}

	outcome := &IncentiveOutcome{
		Paid:       make([]solana.PublicKey, 0, len(recipients)),
		Skipped:    []solana.PublicKey{},
		AmountEach: platform.IncentiveAmount,
		Timestamp:  now,
	}
	for _, key := range recipients {
		donor, ok := e.state.DonorGet(key)
		if !ok {
			outcome.Skipped = append(outcome.Skipped, key)
			continue
		}
		if err := e.treasury.MintReward(donor.Authority, platform.IncentiveAmount); err != nil {
			outcome.Skipped = append(outcome.Skipped, key)
			continue
		}
		// The checkpoint marks the full lifetime total as rewarded, not just
		// the delta.
		donor.IncentivizedDonationsSum = donor.DonationsSum
		if err := e.state.DonorPut(donor); err != nil {
			return nil, err
		}
		outcome.Paid = append(outcome.Paid, key)
	}
	e.emit(NewIncentiveDistributedEvent(outcome))
	return outcome, nil
}
