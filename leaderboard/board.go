// Package leaderboard implements a fixed-capacity, rank-ordered collection of
// (identity, amount) pairs. The platform-wide and per-campaign contributor
// rankings are both instances of this board; record storage is size-bounded,
// so the board never grows past its capacity and evicts the minimum entry on
// overflow.
package leaderboard

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var (
	// ErrInvalidCapacity is returned when constructing a board with a
	// non-positive capacity.
	ErrInvalidCapacity = errors.New("leaderboard: capacity must be positive")
	// ErrCorruptOrder is returned when loading persisted entries that are not
	// sorted descending by amount.
	ErrCorruptOrder = errors.New("leaderboard: entries not sorted")
	// ErrDuplicateIdentity is returned when loading persisted entries that
	// contain the same identity twice.
	ErrDuplicateIdentity = errors.New("leaderboard: duplicate identity")
)

// Entry is a single ranked pair. Amount is the cumulative contribution the
// identity is ranked by.
type Entry struct {
	Identity solana.PublicKey
	Amount   uint64
}

// Board holds up to capacity entries sorted descending by amount. Ties keep
// the earlier insertion ahead: a later equal amount never displaces an
// earlier one.
type Board struct {
	capacity int
	entries  []Entry
}

// New returns an empty board with the given fixed capacity.
func New(capacity int) (*Board, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	return &Board{capacity: capacity, entries: make([]Entry, 0, capacity)}, nil
}

// Load rebuilds a board from persisted entries, validating the invariants the
// in-memory board maintains. Zero-identity slots mark unused capacity and are
// skipped.
func Load(capacity int, entries []Entry) (*Board, error) {
	board, err := New(capacity)
	if err != nil {
		return nil, err
	}
	seen := make(map[solana.PublicKey]struct{}, len(entries))
	for i, entry := range entries {
		if entry.Identity.IsZero() {
			continue
		}
		if len(board.entries) == capacity {
			return nil, fmt.Errorf("leaderboard: %d entries exceed capacity %d", len(entries), capacity)
		}
		if _, ok := seen[entry.Identity]; ok {
			return nil, ErrDuplicateIdentity
		}
		seen[entry.Identity] = struct{}{}
		if i > 0 && entries[i-1].Amount < entry.Amount {
			return nil, ErrCorruptOrder
		}
		board.entries = append(board.entries, entry)
	}
	return board, nil
}

// Capacity returns the fixed capacity of the board.
func (b *Board) Capacity() int { return b.capacity }

// Len returns the number of occupied slots.
func (b *Board) Len() int { return len(b.entries) }

// Entries returns the ranked entries in descending order. The slice is a copy
// and safe to retain.
func (b *Board) Entries() []Entry {
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Upsert records the identity's new cumulative amount and returns the
// resulting ranking. An existing identity is moved to its new position; a new
// identity is inserted while spare capacity remains, or evicts the current
// minimum when its amount strictly exceeds it, and is dropped otherwise.
// All-zero identities are rejected as sentinel values and leave the board
// untouched.
func (b *Board) Upsert(identity solana.PublicKey, amount uint64) []Entry {
	if identity.IsZero() {
		return b.Entries()
	}
	if i := b.index(identity); i >= 0 {
		b.entries = append(b.entries[:i], b.entries[i+1:]...)
		b.insert(Entry{Identity: identity, Amount: amount})
		return b.Entries()
	}
	if len(b.entries) < b.capacity {
		b.insert(Entry{Identity: identity, Amount: amount})
		return b.Entries()
	}
	if amount > b.entries[len(b.entries)-1].Amount {
		b.entries = b.entries[:len(b.entries)-1]
		b.insert(Entry{Identity: identity, Amount: amount})
	}
	return b.Entries()
}

// Clone returns a deep copy of the board.
func (b *Board) Clone() *Board {
	clone := &Board{capacity: b.capacity, entries: make([]Entry, len(b.entries), b.capacity)}
	copy(clone.entries, b.entries)
	return clone
}

func (b *Board) index(identity solana.PublicKey) int {
	for i := range b.entries {
		if b.entries[i].Identity == identity {
			return i
		}
	}
	return -1
}

// insert places the entry after every existing entry with an equal or greater
// amount, preserving earliest-inserted-wins ordering on ties.
func (b *Board) insert(entry Entry) {
	i := len(b.entries)
	for i > 0 && b.entries[i-1].Amount < entry.Amount {
		i--
	}
	b.entries = append(b.entries, Entry{})
	copy(b.entries[i+1:], b.entries[i:])
	b.entries[i] = entry
}
