package listcache

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/booknest/catalog-service/internal/core/ports"
)

// Sweep removes every expired entry and returns how many were dropped.
// A second call at the same instant removes nothing.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for _, key := range s.order.keys() {
		if e := s.entries[key]; e != nil && e.expired(now) {
			s.removeLocked(key, reasonSwept)
			removed++
		}
	}
	if removed > 0 {
		s.logger.WithField("removed", removed).Debug("list cache: swept expired lists")
	}
	return removed
}

// Snapshot describes every stored entry, next eviction victim first.
// It never modifies the store; expired entries are reported, not removed.
func (s *Store) Snapshot() []ports.CacheEntryInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	keys := s.order.keys()
	out := make([]ports.CacheEntryInfo, 0, len(keys))
	for _, key := range keys {
		e := s.entries[key]
		if e == nil {
			continue
		}
		out = append(out, ports.CacheEntryInfo{
			Key:       key,
			CreatedAt: e.createdAt,
			Age:       now.Sub(e.createdAt),
			TTL:       e.ttl,
			Size:      len(e.value),
			Expired:   e.expired(now),
		})
	}
	return out
}

func (s *Store) sweepLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *Store) snapshotLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.snapshotEvery)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.logSnapshot()
		}
	}
}

func (s *Store) logSnapshot() {
	snap := s.Snapshot()
	s.logger.WithField("entries", len(snap)).Info("list cache: state")
	for _, info := range snap {
		s.logger.WithFields(logrus.Fields{
			"key":     info.Key,
			"age":     info.Age.Round(time.Millisecond),
			"ttl":     info.TTL,
			"size":    info.Size,
			"expired": info.Expired,
		}).Info("list cache: entry")
	}
}
