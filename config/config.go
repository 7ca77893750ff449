// Package config loads the deploy-time platform configuration from a TOML
// file. The leaderboard capacities are compile-time constants and do not
// appear here; everything that the initialize operation takes as a parameter
// does.
package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gagliardetto/solana-go"

	"github.com/lincot/solana-crowdfunding/crowdfunding"
)

// Defaults applied when the file omits a value. The fee defaults mirror the
// production split of 3/100; the referral default mints one reward-token base
// unit per 10000 units of net donation.
const (
	DefaultPlatformFeeNum      = 3
	DefaultPlatformFeeDenom    = 100
	DefaultReferralRewardNum   = 1
	DefaultReferralRewardDenom = 10000
)

// Platform mirrors the TOML layout of a deploy configuration. Key handles are
// base58 strings and resolved to public keys during conversion.
type Platform struct {
	Authority  string `toml:"Authority"`
	RewardMint string `toml:"RewardMint"`
	FeeVault   string `toml:"FeeVault"`
	ValueVault string `toml:"ValueVault"`

	ActiveCampaignsCapacity uint16 `toml:"ActiveCampaignsCapacity"`
	IncentiveCooldown       uint32 `toml:"IncentiveCooldown"`
	IncentiveAmount         uint64 `toml:"IncentiveAmount"`
	PlatformFeeNum          uint64 `toml:"PlatformFeeNum"`
	PlatformFeeDenom        uint64 `toml:"PlatformFeeDenom"`
	FeeExemptionLimit       uint64 `toml:"FeeExemptionLimit"`
	LiquidationLimit        uint64 `toml:"LiquidationLimit"`
	ReferralRewardNum       uint64 `toml:"ReferralRewardNum"`
	ReferralRewardDenom     uint64 `toml:"ReferralRewardDenom"`
}

// Load reads and validates a platform configuration file.
func Load(path string) (*Platform, error) {
	cfg := &Platform{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Platform) applyDefaults() {
	if c.PlatformFeeDenom == 0 && c.PlatformFeeNum == 0 {
		c.PlatformFeeNum = DefaultPlatformFeeNum
		c.PlatformFeeDenom = DefaultPlatformFeeDenom
	}
	if c.ReferralRewardDenom == 0 && c.ReferralRewardNum == 0 {
		c.ReferralRewardNum = DefaultReferralRewardNum
		c.ReferralRewardDenom = DefaultReferralRewardDenom
	}
}

// Validate checks the configuration for internal consistency without
// resolving key handles.
func (c *Platform) Validate() error {
	if c.PlatformFeeDenom == 0 {
		return fmt.Errorf("config: PlatformFeeDenom must be positive")
	}
	if c.PlatformFeeNum > c.PlatformFeeDenom {
		return fmt.Errorf("config: PlatformFeeNum %d exceeds PlatformFeeDenom %d", c.PlatformFeeNum, c.PlatformFeeDenom)
	}
	if c.ReferralRewardDenom == 0 {
		return fmt.Errorf("config: ReferralRewardDenom must be positive")
	}
	if c.ReferralRewardNum > c.ReferralRewardDenom {
		return fmt.Errorf("config: ReferralRewardNum %d exceeds ReferralRewardDenom %d", c.ReferralRewardNum, c.ReferralRewardDenom)
	}
	for name, value := range map[string]string{
		"Authority":  c.Authority,
		"RewardMint": c.RewardMint,
		"FeeVault":   c.FeeVault,
		"ValueVault": c.ValueVault,
	} {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("config: %s is required", name)
		}
		if _, err := solana.PublicKeyFromBase58(value); err != nil {
			return fmt.Errorf("config: invalid %s: %w", name, err)
		}
	}
	return nil
}

// InitializeParams converts the configuration into the engine's initialize
// parameters.
func (c *Platform) InitializeParams() (crowdfunding.InitializeParams, error) {
	if err := c.Validate(); err != nil {
		return crowdfunding.InitializeParams{}, err
	}
	authority, err := solana.PublicKeyFromBase58(c.Authority)
	if err != nil {
		return crowdfunding.InitializeParams{}, err
	}
	rewardMint, err := solana.PublicKeyFromBase58(c.RewardMint)
	if err != nil {
		return crowdfunding.InitializeParams{}, err
	}
	feeVault, err := solana.PublicKeyFromBase58(c.FeeVault)
	if err != nil {
		return crowdfunding.InitializeParams{}, err
	}
	valueVault, err := solana.PublicKeyFromBase58(c.ValueVault)
	if err != nil {
		return crowdfunding.InitializeParams{}, err
	}
	return crowdfunding.InitializeParams{
		Authority:               authority,
		RewardMint:              rewardMint,
		FeeVault:                feeVault,
		ValueVault:              valueVault,
		ActiveCampaignsCapacity: c.ActiveCampaignsCapacity,
		IncentiveCooldown:       c.IncentiveCooldown,
		IncentiveAmount:         c.IncentiveAmount,
		PlatformFeeNum:          c.PlatformFeeNum,
		PlatformFeeDenom:        c.PlatformFeeDenom,
		FeeExemptionLimit:       c.FeeExemptionLimit,
		LiquidationLimit:        c.LiquidationLimit,
		ReferralRewardNum:       c.ReferralRewardNum,
		ReferralRewardDenom:     c.ReferralRewardDenom,
	}, nil
}
