// Package memory provides an in-memory crowdfunding.State for tests and for
// hosts that manage durability themselves. Records are cloned on both reads
// and writes so callers can mutate working copies without leaking partial
// state into the store.
package memory

import (
	"sync"

	"github.com/gagliardetto/solana-go"

	"github.com/lincot/solana-crowdfunding/crowdfunding"
)

type pairKey struct {
	donor    solana.PublicKey
	campaign uint16
}

// Store is an in-memory record store. Safe for concurrent use; the engine's
// single-writer-per-record guarantee is provided by the host, the mutex here
// only protects the maps themselves.
type Store struct {
	mu            sync.RWMutex
	platform      *crowdfunding.Platform
	campaigns     map[uint16]*crowdfunding.Campaign
	donors        map[solana.PublicKey]*crowdfunding.Donor
	pairs         map[pairKey]*crowdfunding.DonationTotals
	campaignPairs map[uint16]*crowdfunding.DonationTotals
}

// New returns an empty store.
func New() *Store {
	return &Store{
		campaigns:     make(map[uint16]*crowdfunding.Campaign),
		donors:        make(map[solana.PublicKey]*crowdfunding.Donor),
		pairs:         make(map[pairKey]*crowdfunding.DonationTotals),
		campaignPairs: make(map[uint16]*crowdfunding.DonationTotals),
	}
}

// PlatformGet implements crowdfunding.State.
func (s *Store) PlatformGet() (*crowdfunding.Platform, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.platform == nil {
		return nil, false
	}
	return s.platform.Clone(), true
}

// PlatformPut implements crowdfunding.State.
func (s *Store) PlatformPut(p *crowdfunding.Platform) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.platform = p.Clone()
	return nil
}

// CampaignGet implements crowdfunding.State.
func (s *Store) CampaignGet(id uint16) (*crowdfunding.Campaign, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	campaign, ok := s.campaigns[id]
	if !ok {
		return nil, false
	}
	return campaign.Clone(), true
}

// CampaignPut implements crowdfunding.State.
func (s *Store) CampaignPut(c *crowdfunding.Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.campaigns[c.ID] = c.Clone()
	return nil
}

// DonorGet implements crowdfunding.State.
func (s *Store) DonorGet(authority solana.PublicKey) (*crowdfunding.Donor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	donor, ok := s.donors[authority]
	if !ok {
		return nil, false
	}
	return donor.Clone(), true
}

// DonorPut implements crowdfunding.State.
func (s *Store) DonorPut(d *crowdfunding.Donor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.donors[d.Authority] = d.Clone()
	return nil
}

// DonorList implements crowdfunding.DonorLister for the full-scan incentive
// selector.
func (s *Store) DonorList() []*crowdfunding.Donor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	donors := make([]*crowdfunding.Donor, 0, len(s.donors))
	for _, donor := range s.donors {
		donors = append(donors, donor.Clone())
	}
	return donors
}

// DonationGet implements crowdfunding.State.
func (s *Store) DonationGet(donor solana.PublicKey, campaignID uint16) (*crowdfunding.DonationTotals, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	totals, ok := s.pairs[pairKey{donor: donor, campaign: campaignID}]
	if !ok {
		return nil, false
	}
	return totals.Clone(), true
}

// DonationPut implements crowdfunding.State.
func (s *Store) DonationPut(donor solana.PublicKey, campaignID uint16, totals *crowdfunding.DonationTotals) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pairs[pairKey{donor: donor, campaign: campaignID}] = totals.Clone()
	return nil
}

// CampaignDonationGet implements crowdfunding.State.
func (s *Store) CampaignDonationGet(campaignID uint16) (*crowdfunding.DonationTotals, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	totals, ok := s.campaignPairs[campaignID]
	if !ok {
		return nil, false
	}
	return totals.Clone(), true
}

// CampaignDonationPut implements crowdfunding.State.
func (s *Store) CampaignDonationPut(campaignID uint16, totals *crowdfunding.DonationTotals) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.campaignPairs[campaignID] = totals.Clone()
	return nil
}
