// Package session implements the in-memory store for in-progress category
// selections. Records are volatile: they live for one selection flow and are
// evicted after a TTL if the user walks away.
package session

import (
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"lotsweep/internal/common"
	"lotsweep/internal/model"
)

// Default lifetime for an abandoned selection record.
const (
	DefaultTTL             = 30 * time.Minute
	DefaultCleanupInterval = 10 * time.Minute
)

// Record is the ephemeral state for one in-progress category selection.
// Categories is fixed at creation and defines the universe of selectable
// category IDs; Chosen is always a duplicate-free subset of that universe,
// kept in the order categories were chosen.
type Record struct {
	Categories []model.Category
	Chosen     []int64
	ID         int64
	ShowBack   bool
}

// HasChosen reports whether categoryID is in the chosen set.
func (r Record) HasChosen(categoryID int64) bool {
	for _, id := range r.Chosen {
		if id == categoryID {
			return true
		}
	}
	return false
}

// inUniverse reports whether categoryID is one of the record's categories.
func (r Record) inUniverse(categoryID int64) bool {
	for _, cat := range r.Categories {
		if cat.ID == categoryID {
			return true
		}
	}
	return false
}

func (r Record) clone() Record {
	out := r
	out.Categories = make([]model.Category, len(r.Categories))
	copy(out.Categories, r.Categories)
	out.Chosen = make([]int64, len(r.Chosen))
	copy(out.Chosen, r.Chosen)
	return out
}

// Store is an in-memory repository of selection records keyed by a
// monotonically increasing identifier. IDs are never reused within a process
// lifetime, even after a record expires.
//
// Reads never error; mutations on an unknown ID signal ErrRecordNotFound.
// Downstream recovery at the interaction boundary depends on that asymmetry.
type Store struct {
	cache  *gocache.Cache
	ttl    time.Duration
	nextID atomic.Int64
	mu     sync.Mutex
}

// NewStore creates a store whose records expire ttl after their last access.
func NewStore(ttl, cleanupInterval time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if cleanupInterval <= 0 {
		cleanupInterval = DefaultCleanupInterval
	}
	return &Store{
		cache: gocache.New(ttl, cleanupInterval),
		ttl:   ttl,
	}
}

// Create stores an immutable snapshot of the given selection state and returns
// its new ID. The chosen set is sanitized against the category universe so the
// subset invariant holds from the start. Empty category sets are accepted here;
// callers reject them upstream.
func (s *Store) Create(categories []model.Category, chosen []int64, showBack bool) int64 {
	rec := Record{
		ID:         s.nextID.Add(1),
		Categories: make([]model.Category, len(categories)),
		ShowBack:   showBack,
	}
	copy(rec.Categories, categories)

	for _, id := range chosen {
		if rec.inUniverse(id) && !rec.HasChosen(id) {
			rec.Chosen = append(rec.Chosen, id)
		}
	}
	if rec.Chosen == nil {
		rec.Chosen = []int64{}
	}

	s.mu.Lock()
	s.cache.Set(s.key(rec.ID), rec, s.ttl)
	s.mu.Unlock()

	slog.Debug("created selection record",
		"record_id", rec.ID,
		"categories", len(rec.Categories),
		"chosen", len(rec.Chosen))
	return rec.ID
}

// Get returns a defensive copy of the record, or false if the ID is unknown or
// the record has expired. Access refreshes the record's TTL.
func (s *Store) Get(id int64) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.lookup(id)
	if !ok {
		return Record{}, false
	}
	// Refresh the TTL so an active selection flow never expires mid-use.
	s.cache.Set(s.key(id), rec, s.ttl)
	return rec.clone(), true
}

// AddChosen inserts categoryID into the record's chosen set. Adding an
// already-chosen category, or an ID outside the record's universe, is a no-op.
// Unknown record IDs signal ErrRecordNotFound.
func (s *Store) AddChosen(id, categoryID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.lookup(id)
	if !ok {
		return common.ErrRecordNotFound
	}
	if !rec.inUniverse(categoryID) || rec.HasChosen(categoryID) {
		s.cache.Set(s.key(id), rec, s.ttl)
		return nil
	}

	rec = rec.clone()
	rec.Chosen = append(rec.Chosen, categoryID)
	s.cache.Set(s.key(id), rec, s.ttl)
	return nil
}

// RemoveChosen removes categoryID from the record's chosen set. Removing an
// absent category is a no-op. Unknown record IDs signal ErrRecordNotFound.
func (s *Store) RemoveChosen(id, categoryID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.lookup(id)
	if !ok {
		return common.ErrRecordNotFound
	}
	if !rec.HasChosen(categoryID) {
		s.cache.Set(s.key(id), rec, s.ttl)
		return nil
	}

	updated := rec.clone()
	updated.Chosen = updated.Chosen[:0]
	for _, chosen := range rec.Chosen {
		if chosen != categoryID {
			updated.Chosen = append(updated.Chosen, chosen)
		}
	}
	s.cache.Set(s.key(id), updated, s.ttl)
	return nil
}

// Toggle atomically flips membership of categoryID in the chosen set and
// reports whether the category ended up chosen. The membership check and the
// mutation happen under one lock, so concurrent toggles on the same record
// cannot lose updates.
func (s *Store) Toggle(id, categoryID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.lookup(id)
	if !ok {
		return false, common.ErrRecordNotFound
	}

	updated := rec.clone()
	if rec.HasChosen(categoryID) {
		updated.Chosen = updated.Chosen[:0]
		for _, chosen := range rec.Chosen {
			if chosen != categoryID {
				updated.Chosen = append(updated.Chosen, chosen)
			}
		}
		s.cache.Set(s.key(id), updated, s.ttl)
		return false, nil
	}

	if updated.inUniverse(categoryID) {
		updated.Chosen = append(updated.Chosen, categoryID)
	}
	s.cache.Set(s.key(id), updated, s.ttl)
	return updated.HasChosen(categoryID), nil
}

// Delete removes the record if present. Deleting an unknown ID is a no-op.
func (s *Store) Delete(id int64) {
	s.mu.Lock()
	s.cache.Delete(s.key(id))
	s.mu.Unlock()

	slog.Debug("deleted selection record", "record_id", id)
}

// Len returns the number of live records, including expired ones not yet
// swept by the cleanup janitor.
func (s *Store) Len() int {
	return s.cache.ItemCount()
}

func (s *Store) key(id int64) string {
	return strconv.FormatInt(id, 10)
}

// lookup must be called with s.mu held.
func (s *Store) lookup(id int64) (Record, bool) {
	value, found := s.cache.Get(s.key(id))
	if !found {
		return Record{}, false
	}
	rec, ok := value.(Record)
	if !ok {
		slog.Error("wrong type in session cache", "record_id", id)
		return Record{}, false
	}
	return rec, true
}
