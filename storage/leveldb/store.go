// Package leveldb provides a LevelDB-backed crowdfunding.State. Records are
// stored as their fixed-size binary images under short prefixed keys, so a
// store written by one process can be reopened by another.
package leveldb

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/lincot/solana-crowdfunding/crowdfunding"
)

var (
	platformKey    = []byte("p")
	campaignPrefix = []byte("c/")
	donorPrefix    = []byte("d/")
	pairPrefix     = []byte("x/")
	campaignSum    = []byte("s/")
)

// Store persists ledger records in a LevelDB database. The State interface
// reports reads as present or absent, so read and decode failures surface as
// absence; the most recent one is kept and available through Err.
type Store struct {
	db      *leveldb.DB
	lastErr error
}

// Open opens or creates a database at path.
func Open(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open ledger db: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

// Err returns the last read or decode failure, if any.
func (s *Store) Err() error { return s.lastErr }

func campaignKey(id uint16) []byte {
	key := make([]byte, len(campaignPrefix)+2)
	copy(key, campaignPrefix)
	binary.BigEndian.PutUint16(key[len(campaignPrefix):], id)
	return key
}

func donorKey(authority solana.PublicKey) []byte {
	return append(append([]byte{}, donorPrefix...), authority[:]...)
}

func pairKey(donor solana.PublicKey, campaignID uint16) []byte {
	key := make([]byte, 0, len(pairPrefix)+34)
	key = append(key, pairPrefix...)
	key = append(key, donor[:]...)
	return binary.BigEndian.AppendUint16(key, campaignID)
}

func campaignSumKey(campaignID uint16) []byte {
	key := make([]byte, len(campaignSum)+2)
	copy(key, campaignSum)
	binary.BigEndian.PutUint16(key[len(campaignSum):], campaignID)
	return key
}

func (s *Store) get(key []byte, decode func([]byte) error) bool {
	data, err := s.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return false
	}
	if err != nil {
		s.lastErr = err
		return false
	}
	if err := decode(data); err != nil {
		s.lastErr = err
		return false
	}
	return true
}

func (s *Store) put(key []byte, data []byte, err error) error {
	if err != nil {
		return err
	}
	return s.db.Put(key, data, nil)
}

// PlatformGet implements crowdfunding.State.
func (s *Store) PlatformGet() (*crowdfunding.Platform, bool) {
	var platform *crowdfunding.Platform
	ok := s.get(platformKey, func(data []byte) error {
		var err error
		platform, err = crowdfunding.DecodePlatform(data)
		return err
	})
	return platform, ok
}

// PlatformPut implements crowdfunding.State.
func (s *Store) PlatformPut(p *crowdfunding.Platform) error {
	data, err := crowdfunding.EncodePlatform(p)
	return s.put(platformKey, data, err)
}

// CampaignGet implements crowdfunding.State.
func (s *Store) CampaignGet(id uint16) (*crowdfunding.Campaign, bool) {
	var campaign *crowdfunding.Campaign
	ok := s.get(campaignKey(id), func(data []byte) error {
		var err error
		campaign, err = crowdfunding.DecodeCampaign(data)
		return err
	})
	return campaign, ok
}

// CampaignPut implements crowdfunding.State.
func (s *Store) CampaignPut(c *crowdfunding.Campaign) error {
	data, err := crowdfunding.EncodeCampaign(c)
	return s.put(campaignKey(c.ID), data, err)
}

// DonorGet implements crowdfunding.State.
func (s *Store) DonorGet(authority solana.PublicKey) (*crowdfunding.Donor, bool) {
	var donor *crowdfunding.Donor
	ok := s.get(donorKey(authority), func(data []byte) error {
		var err error
		donor, err = crowdfunding.DecodeDonor(data)
		return err
	})
	return donor, ok
}

// DonorPut implements crowdfunding.State.
func (s *Store) DonorPut(d *crowdfunding.Donor) error {
	data, err := crowdfunding.EncodeDonor(d)
	return s.put(donorKey(d.Authority), data, err)
}

// DonorList implements crowdfunding.DonorLister for the full-scan incentive
// selector.
func (s *Store) DonorList() []*crowdfunding.Donor {
	iter := s.db.NewIterator(util.BytesPrefix(donorPrefix), nil)
	defer iter.Release()
	var donors []*crowdfunding.Donor
	for iter.Next() {
		donor, err := crowdfunding.DecodeDonor(iter.Value())
		if err != nil {
			s.lastErr = err
			continue
		}
		donors = append(donors, donor)
	}
	if err := iter.Error(); err != nil {
		s.lastErr = err
	}
	return donors
}

// DonationGet implements crowdfunding.State.
func (s *Store) DonationGet(donor solana.PublicKey, campaignID uint16) (*crowdfunding.DonationTotals, bool) {
	var totals *crowdfunding.DonationTotals
	ok := s.get(pairKey(donor, campaignID), func(data []byte) error {
		var err error
		totals, err = crowdfunding.DecodeDonationTotals(data)
		return err
	})
	return totals, ok
}

// DonationPut implements crowdfunding.State.
func (s *Store) DonationPut(donor solana.PublicKey, campaignID uint16, totals *crowdfunding.DonationTotals) error {
	data, err := crowdfunding.EncodeDonationTotals(totals)
	return s.put(pairKey(donor, campaignID), data, err)
}

// CampaignDonationGet implements crowdfunding.State.
func (s *Store) CampaignDonationGet(campaignID uint16) (*crowdfunding.DonationTotals, bool) {
	var totals *crowdfunding.DonationTotals
	ok := s.get(campaignSumKey(campaignID), func(data []byte) error {
		var err error
		totals, err = crowdfunding.DecodeDonationTotals(data)
		return err
	})
	return totals, ok
}

// CampaignDonationPut implements crowdfunding.State.
func (s *Store) CampaignDonationPut(campaignID uint16, totals *crowdfunding.DonationTotals) error {
	data, err := crowdfunding.EncodeDonationTotals(totals)
	return s.put(campaignSumKey(campaignID), data, err)
}
