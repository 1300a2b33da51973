// Package cache holds fetched GitHub data in memory for a bounded time.
//
// Entries expire after their TTL. Expired entries are dropped lazily on Get
// and periodically by a sweep job, so a slow sweep never serves stale data.
// There is no size bound: the number of keys grows with the number of
// repositories of a single profile.
package cache

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

type entry struct {
	value      any
	insertedAt time.Time
	ttl        time.Duration
}

func (e entry) expired(now time.Time) bool {
	return now.Sub(e.insertedAt) >= e.ttl
}

// Store is a concurrency-safe key/value store with per-entry expiry
type Store struct {
	mu         sync.RWMutex
	entries    map[string]entry
	defaultTTL time.Duration
	period     time.Duration
	now        func() time.Time
	logger     log.FieldLogger
	scheduler  *cron.Cron
}

type Option func(*Store)

// WithClock replaces time.Now, used by tests to simulate expiry
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithLogger sets the sink for hit/miss traces
func WithLogger(logger log.FieldLogger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates a store, Start must be called to enable the periodic sweep
func New(defaultTTL, checkPeriod time.Duration, opts ...Option) *Store {
	s := &Store{
		entries:    make(map[string]entry),
		defaultTTL: defaultTTL,
		period:     checkPeriod,
		now:        time.Now,
		logger:     log.StandardLogger(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Get returns the value stored under key if it has not expired
func (s *Store) Get(key string) (any, bool) {
	now := s.now()

	s.mu.RLock()
	e, found := s.entries[key]
	s.mu.RUnlock()

	if !found {
		s.logger.WithField("key", key).Debug("cache miss")
		return nil, false
	}

	if e.expired(now) {
		s.mu.Lock()
		// the entry may have been replaced between the two locks
		if current, ok := s.entries[key]; ok && current.expired(now) {
			delete(s.entries, key)
		}
		s.mu.Unlock()

		s.logger.WithField("key", key).Debug("cache miss (expired)")
		return nil, false
	}

	s.logger.WithField("key", key).Debug("cache hit")
	return e.value, true
}

// Set stores value with the default TTL
func (s *Store) Set(key string, value any) {
	s.SetWithTTL(key, value, s.defaultTTL)
}

// SetWithTTL stores value with a specific TTL, replacing any previous entry
func (s *Store) SetWithTTL(key string, value any, ttl time.Duration) {
	s.mu.Lock()
	s.entries[key] = entry{value: value, insertedAt: s.now(), ttl: ttl}
	s.mu.Unlock()

	s.logger.WithFields(log.Fields{
		"key": key,
		"ttl": ttl,
	}).Debug("cache set")
}

func (s *Store) Delete(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// Clear drops every entry
func (s *Store) Clear() {
	s.mu.Lock()
	s.entries = make(map[string]entry)
	s.mu.Unlock()

	s.logger.Debug("cache cleared")
}

// Keys returns the sorted keys of the entries that have not expired
func (s *Store) Keys() []string {
	now := s.now()

	s.mu.RLock()
	keys := make([]string, 0, len(s.entries))
	for key, e := range s.entries {
		if !e.expired(now) {
			keys = append(keys, key)
		}
	}
	s.mu.RUnlock()

	sort.Strings(keys)
	return keys
}

// Len counts the entries that have not expired
func (s *Store) Len() int {
	now := s.now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, e := range s.entries {
		if !e.expired(now) {
			count++
		}
	}
	return count
}

// Sweep removes expired entries and returns how many were removed
func (s *Store) Sweep() int {
	now := s.now()
	removed := 0

	s.mu.Lock()
	for key, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, key)
			removed++
		}
	}
	s.mu.Unlock()

	if removed > 0 {
		s.logger.WithField("removed", removed).Debug("cache sweep")
	}

	return removed
}

// Start schedules Sweep every check period
func (s *Store) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scheduler != nil {
		return nil
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(fmt.Sprintf("@every %s", s.period), func() { s.Sweep() }); err != nil {
		return fmt.Errorf("unable to schedule cache sweep every %s: %w", s.period, err)
	}

	scheduler.Start()
	s.scheduler = scheduler

	return nil
}

// Stop halts the sweep job and waits for a running sweep to finish
func (s *Store) Stop() {
	s.mu.Lock()
	scheduler := s.scheduler
	s.scheduler = nil
	s.mu.Unlock()

	if scheduler != nil {
		<-scheduler.Stop().Done()
	}
}
