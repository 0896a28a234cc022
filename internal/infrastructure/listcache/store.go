package listcache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/booknest/catalog-service/internal/core/domain/book"
	"github.com/booknest/catalog-service/internal/core/ports"
)

const (
	DefaultCapacity = 10
	DefaultTTL      = time.Minute
)

// ErrKeyNotFound is returned by Get for a key that is absent or expired.
// It signals a caller that skipped Contains or lost a race with eviction.
var ErrKeyNotFound = errors.New("list cache: key not found")

// Config controls capacity, expiry and background maintenance.
//
//   - Capacity <= 0 falls back to DefaultCapacity
//   - DefaultTTL is used by Put calls with a non-positive ttl
//   - SweepInterval <= 0 disables the sweeper (lazy expiry still applies)
//   - SnapshotInterval <= 0 disables the periodic state dump
type Config struct {
	Capacity         int
	DefaultTTL       time.Duration
	SweepInterval    time.Duration
	SnapshotInterval time.Duration
	Eviction         EvictionPolicy
	// Registerer receives the cache metrics; nil keeps them private.
	Registerer prometheus.Registerer
	// Now overrides the clock, mainly for tests.
	Now func() time.Time
}

// Store is a bounded, TTL-aware cache of book list results.
//
// entries, order and byItem are co-mutated and guarded by mu. The background
// goroutines are owned by the Store and stopped by Close.
type Store struct {
	mu sync.RWMutex

	capacity   int
	defaultTTL time.Duration
	entries    map[string]*entry
	order      evictionOrder
	// byItem maps a book id to the keys whose lists contain it.
	byItem map[int]map[string]struct{}

	now     func() time.Time
	logger  *logrus.Logger
	metrics *metrics

	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	sweepEvery    time.Duration
	snapshotEvery time.Duration
	closeOnce     sync.Once
}

var (
	_ ports.BookListCache  = (*Store)(nil)
	_ ports.CacheInspector = (*Store)(nil)
)

// New constructs a store and starts its background loops (if enabled).
//
// New never returns a nil Store.
func New(cfg Config, logger *logrus.Logger) *Store {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = DefaultTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		capacity:      cfg.Capacity,
		defaultTTL:    cfg.DefaultTTL,
		entries:       make(map[string]*entry, cfg.Capacity),
		order:         newEvictionOrder(cfg.Eviction),
		byItem:        make(map[int]map[string]struct{}),
		now:           cfg.Now,
		logger:        logger,
		metrics:       newMetrics(cfg.Registerer),
		ctx:           ctx,
		cancel:        cancel,
		sweepEvery:    cfg.SweepInterval,
		snapshotEvery: cfg.SnapshotInterval,
	}

	if s.sweepEvery > 0 {
		s.wg.Add(1)
		go s.sweepLoop()
	}
	if s.snapshotEvery > 0 {
		s.wg.Add(1)
		go s.snapshotLoop()
	}
	return s
}

// Close stops the background goroutines. Cached data stays usable.
//
// Close is safe to call multiple times.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		s.wg.Wait()
	})
	return nil
}

// Running reports whether the store has not been closed yet.
func (s *Store) Running() bool {
	return s.ctx.Err() == nil
}

// Contains reports whether key holds a fresh entry. An expired entry is
// removed before returning false.
func (s *Store) Contains(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		s.metrics.misses.Inc()
		return false
	}
	if e.expired(s.now()) {
		s.removeLocked(key, reasonExpired)
		s.metrics.misses.Inc()
		return false
	}
	s.order.touched(key)
	s.metrics.hits.Inc()
	return true
}

// Get returns a copy of the list stored under key.
func (s *Store) Get(key string) ([]book.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	if e.expired(s.now()) {
		s.removeLocked(key, reasonExpired)
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	s.order.touched(key)

	s.logger.WithFields(logrus.Fields{"key": key, "size": len(e.value)}).Trace("list cache: get")
	// Callers may modify the result while the mutator patches ours.
	return book.CloneSummaries(e.value), nil
}

// Put stores value under key. Overwriting an existing key keeps its place in
// the eviction order; inserting into a full store evicts the oldest key first.
func (s *Store) Put(key string, value []book.Summary, ttl time.Duration) {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	stored := book.CloneSummaries(value)
	if stored == nil {
		stored = []book.Summary{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e := &entry{value: stored, createdAt: s.now(), ttl: ttl}

	if old, ok := s.entries[key]; ok {
		s.unindexLocked(key, old.value)
		s.entries[key] = e
		s.indexLocked(key, stored)
		s.order.replaced(key)
		return
	}

	for len(s.entries) >= s.capacity {
		victim, ok := s.order.oldest()
		if !ok {
			break
		}
		s.removeLocked(victim, reasonCapacity)
		s.logger.WithFields(logrus.Fields{"evicted": victim, "inserted": key}).Debug("list cache: capacity eviction")
	}

	s.entries[key] = e
	s.order.pushed(key)
	s.indexLocked(key, stored)
	s.metrics.entries.Set(float64(len(s.entries)))

	s.logger.WithFields(logrus.Fields{"key": key, "size": len(stored), "ttl": ttl}).Trace("list cache: put")
}

// Invalidate removes key if present.
func (s *Store) Invalidate(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; ok {
		s.removeLocked(key, reasonInvalidated)
	}
}

// Len returns the number of stored entries, including expired ones not yet removed.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Keys returns keys in eviction order, next victim first.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.order.keys()
}

// removeLocked drops key from every structure. mu must be held for writing.
func (s *Store) removeLocked(key, reason string) {
	e, ok := s.entries[key]
	if !ok {
		return
	}
	delete(s.entries, key)
	s.order.remove(key)
	s.unindexLocked(key, e.value)
	s.metrics.removals.WithLabelValues(reason).Inc()
	s.metrics.entries.Set(float64(len(s.entries)))
}

func (s *Store) indexLocked(key string, items []book.Summary) {
	for i := range items {
		keys, ok := s.byItem[items[i].ID]
		if !ok {
			keys = make(map[string]struct{})
			s.byItem[items[i].ID] = keys
		}
		keys[key] = struct{}{}
	}
}

func (s *Store) unindexLocked(key string, items []book.Summary) {
	for i := range items {
		id := items[i].ID
		keys, ok := s.byItem[id]
		if !ok {
			continue
		}
		delete(keys, key)
		if len(keys) == 0 {
			delete(s.byItem, id)
		}
	}
}
