package crowdfunding

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/jonboulle/clockwork"

	"github.com/lincot/solana-crowdfunding/core/events"
	"github.com/lincot/solana-crowdfunding/core/types"
	"github.com/lincot/solana-crowdfunding/leaderboard"
)

// State is the record store the engine reads and mutates. Implementations
// must return records the engine may mutate freely without affecting the
// stored copy until the matching Put; the in-memory store under
// storage/memory does this by cloning on both sides.
type State interface {
	PlatformGet() (*Platform, bool)
	PlatformPut(*Platform) error
	CampaignGet(id uint16) (*Campaign, bool)
	CampaignPut(*Campaign) error
	DonorGet(authority solana.PublicKey) (*Donor, bool)
	DonorPut(*Donor) error
	DonationGet(donor solana.PublicKey, campaignID uint16) (*DonationTotals, bool)
	DonationPut(donor solana.PublicKey, campaignID uint16, totals *DonationTotals) error
	CampaignDonationGet(campaignID uint16) (*DonationTotals, bool)
	CampaignDonationPut(campaignID uint16, totals *DonationTotals) error
}

// Treasury is the trusted value-movement primitive. The engine never touches
// balances directly: native value moves with Transfer, reward tokens are
// minted with MintReward, and reward-token vault balances gate the fee
// exemption and the liquidation trigger. The host commits treasury effects
// together with the record mutations of the surrounding operation.
type Treasury interface {
	// Transfer moves native value between accounts.
	Transfer(from, to solana.PublicKey, amount uint64) error
	// Balance reports an account's native value balance.
	Balance(account solana.PublicKey) (uint64, error)
	// MintReward mints reward tokens to the account.
	MintReward(to solana.PublicKey, amount uint64) error
	// RewardBalance reports an account's reward-token balance.
	RewardBalance(account solana.PublicKey) (uint64, error)
	// CloseRewardVault burns the vault's remaining reward tokens and
	// releases the account.
	CloseRewardVault(vault solana.PublicKey) error
}

// Engine wires the ledger logic to external state, the treasury, and event
// consumers. Operations run synchronously to completion; the host serializes
// invocations that touch overlapping records.
type Engine struct {
	state    State
	treasury Treasury
	emitter  events.Emitter
	clock    clockwork.Clock
	selector RecipientSelector
}

// NewEngine creates an engine with a no-op emitter, a real clock, and the
// default incentive recipient selector.
func NewEngine() *Engine {
	return &Engine{
		emitter:  events.NoopEmitter{},
		clock:    clockwork.NewRealClock(),
		selector: TopBoardSelector{},
	}
}

// SetState configures the record store used by the engine.
func (e *Engine) SetState(state State) { e.state = state }

// SetTreasury configures the value-movement primitive.
func (e *Engine) SetTreasury(treasury Treasury) { e.treasury = treasury }

// SetEmitter configures the event emitter. Passing nil resets it to a no-op
// implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetClock overrides the time source consulted by the incentive cooldown.
// Tests pass a fake clock; nil restores the real one.
func (e *Engine) SetClock(clock clockwork.Clock) {
	if clock == nil {
		e.clock = clockwork.NewRealClock()
		return
	}
	e.clock = clock
}

// SetRecipientSelector overrides the incentive recipient strategy. Nil
// restores the default board-backed selector.
func (e *Engine) SetRecipientSelector(selector RecipientSelector) {
	if selector == nil {
		e.selector = TopBoardSelector{}
		return
	}
	e.selector = selector
}

func (e *Engine) emit(event *types.Event) {
	if e == nil || e.emitter == nil || event == nil {
		return
	}
	e.emitter.Emit(ledgerEvent{evt: event})
}

func (e *Engine) ready() error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if e.treasury == nil {
		return errNilTreasury
	}
	return nil
}

func (e *Engine) platform() (*Platform, error) {
	platform, ok := e.state.PlatformGet()
	if !ok {
		return nil, ErrNotInitialized
	}
	return platform, nil
}

// Initialize creates the singleton platform record. It fails if the platform
// already exists or the configuration is inconsistent.
func (e *Engine) Initialize(params InitializeParams) error {
	if err := e.ready(); err != nil {
		return err
	}
	if _, ok := e.state.PlatformGet(); ok {
		return ErrAlreadyInitialized
	}
	if err := validateInitializeParams(params); err != nil {
		return err
	}

	capacity := params.ActiveCampaignsCapacity
	if capacity == 0 {
		capacity = DefaultActiveCampaignsCapacity
	}
	top, err := leaderboard.New(PlatformTopCapacity)
	if err != nil {
		return err
	}
	platform := &Platform{
		Authority:               params.Authority,
		RewardMint:              params.RewardMint,
		FeeVault:                params.FeeVault,
		ValueVault:              params.ValueVault,
		ActiveCampaignsCapacity: capacity,
		IncentiveCooldown:       params.IncentiveCooldown,
		IncentiveAmount:         params.IncentiveAmount,
		PlatformFeeNum:          params.PlatformFeeNum,
		PlatformFeeDenom:        params.PlatformFeeDenom,
		FeeExemptionLimit:       params.FeeExemptionLimit,
		LiquidationLimit:        params.LiquidationLimit,
		ReferralRewardNum:       params.ReferralRewardNum,
		ReferralRewardDenom:     params.ReferralRewardDenom,
		ActiveCampaigns:         []CampaignRecord{},
		Top:                     top,
	}
	if err := e.state.PlatformPut(platform); err != nil {
		return err
	}
	e.emit(NewPlatformInitializedEvent(platform))
	return nil
}

func validateInitializeParams(params InitializeParams) error {
	if params.Authority.IsZero() || params.RewardMint.IsZero() ||
		params.FeeVault.IsZero() || params.ValueVault.IsZero() {
		return fmt.Errorf("%w: zero handle", ErrInvalidConfig)
	}
	if params.PlatformFeeDenom == 0 {
		return fmt.Errorf("%w: zero fee denominator", ErrInvalidConfig)
	}
	if params.PlatformFeeNum > params.PlatformFeeDenom {
		return fmt.Errorf("%w: fee above 100%%", ErrInvalidConfig)
	}
	if params.ReferralRewardDenom == 0 {
		return fmt.Errorf("%w: zero referral denominator", ErrInvalidConfig)
	}
	if params.ReferralRewardNum > params.ReferralRewardDenom {
		return fmt.Errorf("%w: referral reward above donation", ErrInvalidConfig)
	}
	if params.ActiveCampaignsCapacity > DefaultActiveCampaignsCapacity {
		return fmt.Errorf("%w: active campaign capacity above %d", ErrInvalidConfig, DefaultActiveCampaignsCapacity)
	}
	return nil
}

// RegisterDonor creates a donor record for the authority.
func (e *Engine) RegisterDonor(authority solana.PublicKey) error {
	if err := e.ready(); err != nil {
		return err
	}
	if authority.IsZero() {
		return ErrInvalidIdentity
	}
	if _, err := e.platform(); err != nil {
		return err
	}
	if _, ok := e.state.DonorGet(authority); ok {
		return ErrDonorExists
	}
	if err := e.state.DonorPut(&Donor{Authority: authority}); err != nil {
		return err
	}
	e.emit(NewDonorRegisteredEvent(authority))
	return nil
}

// StartCampaign creates a campaign with the next dense id and registers it in
// the platform's active set. The vault handles are resolved by the host.
func (e *Engine) StartCampaign(authority, feeExemptionVault, liquidationVault solana.PublicKey) (uint16, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	if authority.IsZero() || feeExemptionVault.IsZero() || liquidationVault.IsZero() {
		return 0, ErrInvalidIdentity
	}
	platform, err := e.platform()
	if err != nil {
		return 0, err
	}
	if len(platform.ActiveCampaigns) >= int(platform.ActiveCampaignsCapacity) {
		return 0, ErrCampaignCapacity
	}
	id := platform.CampaignsCount
	if platform.CampaignsCount+1 < platform.CampaignsCount {
		return 0, fmt.Errorf("%w: campaign id space exhausted", ErrCampaignCapacity)
	}

	top, err := leaderboard.New(CampaignTopCapacity)
	if err != nil {
		return 0, err
	}
	campaign := &Campaign{
		ID:                id,
		Authority:         authority,
		FeeExemptionVault: feeExemptionVault,
		LiquidationVault:  liquidationVault,
		Top:               top,
	}
	platform.CampaignsCount++
	platform.ActiveCampaigns = append(platform.ActiveCampaigns, CampaignRecord{ID: id})

	if err := e.state.CampaignPut(campaign); err != nil {
		return 0, err
	}
	if err := e.state.PlatformPut(platform); err != nil {
		return 0, err
	}
	e.emit(NewCampaignStartedEvent(campaign))
	return id, nil
}
