package listcache

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/booknest/catalog-service/internal/core/domain/book"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestStore(t *testing.T, capacity int) (*Store, *fakeClock) {
	t.Helper()
	clk := newFakeClock()
	s := New(Config{Capacity: capacity, DefaultTTL: time.Minute, Now: clk.Now}, nil)
	t.Cleanup(func() { _ = s.Close() })
	return s, clk
}

func summaries(ids ...int) []book.Summary {
	out := make([]book.Summary, 0, len(ids))
	for _, id := range ids {
		out = append(out, book.Summary{
			ID:     id,
			Name:   fmt.Sprintf("book-%d", id),
			Rating: float64(id),
			Genres: []string{"Horror"},
		})
	}
	return out
}

func ids(items []book.Summary) []int {
	out := make([]int, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

// checkConsistent asserts that the entry map, the eviction order and the item index agree.
func checkConsistent(t *testing.T, s *Store) {
	t.Helper()
	s.mu.RLock()
	defer s.mu.RUnlock()

	require.LessOrEqual(t, len(s.entries), s.capacity)
	require.Equal(t, len(s.entries), s.order.len())
	for _, k := range s.order.keys() {
		_, ok := s.entries[k]
		require.True(t, ok, "order holds unknown key %q", k)
	}
	for key, e := range s.entries {
		for _, it := range e.value {
			_, ok := s.byItem[it.ID][key]
			require.True(t, ok, "item %d of %q missing from index", it.ID, key)
		}
	}
	for id, keys := range s.byItem {
		require.NotEmpty(t, keys)
		for key := range keys {
			e, ok := s.entries[key]
			require.True(t, ok, "index points at removed key %q", key)
			require.GreaterOrEqual(t, indexOfItem(e.value, id), 0)
		}
	}
}

func TestPut_NeverExceedsCapacity(t *testing.T) {
	s, _ := newTestStore(t, 3)
	for i := 0; i < 10; i++ {
		s.Put(fmt.Sprintf("k%d", i), summaries(i, i+1), 0)
		checkConsistent(t, s)
	}
	require.Equal(t, 3, s.Len())
}

func TestPut_EvictsFirstInsertedKey(t *testing.T) {
	s, _ := newTestStore(t, 3)
	s.Put("a", summaries(1), 0)
	s.Put("b", summaries(2), 0)
	s.Put("c", summaries(3), 0)

	// Reads do not protect a key under FIFO.
	require.True(t, s.Contains("a"))

	s.Put("d", summaries(4), 0)
	require.False(t, s.Contains("a"))
	for _, k := range []string{"b", "c", "d"} {
		require.True(t, s.Contains(k), k)
	}
	require.Equal(t, []string{"b", "c", "d"}, s.Keys())
}

func TestPut_OverwriteKeepsPositionAndSize(t *testing.T) {
	s, _ := newTestStore(t, 2)
	s.Put("a", summaries(1), 0)
	s.Put("b", summaries(2), 0)
	s.Put("a", summaries(5, 6), 0)
	require.Equal(t, 2, s.Len())
	require.Equal(t, []string{"a", "b"}, s.Keys())

	got, err := s.Get("a")
	require.NoError(t, err)
	require.Equal(t, []int{5, 6}, ids(got))

	s.NotifyItemDeleted(1)
	checkConsistent(t, s)

	s.Put("c", summaries(3), 0)
	require.False(t, s.Contains("a"))
	checkConsistent(t, s)
}

func TestContains_ExpiresAfterTTL(t *testing.T) {
	s, clk := newTestStore(t, 5)
	s.Put("k", summaries(1), time.Millisecond)

	clk.Advance(time.Millisecond)
	require.True(t, s.Contains("k"), "expiry is strictly after createdAt+ttl")

	clk.Advance(time.Millisecond)
	require.False(t, s.Contains("k"))
	require.Equal(t, 0, s.Len())
	checkConsistent(t, s)
}

func TestContains_RealClockShortTTL(t *testing.T) {
	s := New(Config{Capacity: 5}, nil)
	defer s.Close()

	s.Put("k", summaries(1), time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	require.False(t, s.Contains("k"))
}

func TestGet_NoPrematureExpiry(t *testing.T) {
	s, clk := newTestStore(t, 5)
	value := summaries(1, 2, 3)
	s.Put("k", value, 10*time.Second)

	clk.Advance(9 * time.Second)
	require.True(t, s.Contains("k"))
	got, err := s.Get("k")
	require.NoError(t, err)
	require.Equal(t, value, got)
}

func TestGet_MissingAndExpiredKeys(t *testing.T) {
	s, clk := newTestStore(t, 5)

	_, err := s.Get("nope")
	require.True(t, errors.Is(err, ErrKeyNotFound))

	s.Put("k", summaries(1), time.Second)
	clk.Advance(2 * time.Second)
	_, err = s.Get("k")
	require.True(t, errors.Is(err, ErrKeyNotFound))
	require.Equal(t, 0, s.Len())
}

func TestGet_ReturnsIsolatedCopies(t *testing.T) {
	s, _ := newTestStore(t, 5)
	in := summaries(1)
	s.Put("k", in, 0)
	in[0].Name = "mutated by caller"

	got, err := s.Get("k")
	require.NoError(t, err)
	require.Equal(t, "book-1", got[0].Name)

	got[0].Genres[0] = "changed"
	again, err := s.Get("k")
	require.NoError(t, err)
	require.Equal(t, "Horror", again[0].Genres[0])
}

func TestPut_EmptyListIsCached(t *testing.T) {
	s, _ := newTestStore(t, 5)
	s.Put("empty", nil, 0)
	require.True(t, s.Contains("empty"))
	got, err := s.Get("empty")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestPut_NonPositiveTTLUsesDefault(t *testing.T) {
	s, clk := newTestStore(t, 5)
	s.Put("k", summaries(1), 0)
	s.Put("n", summaries(1), -time.Second)

	clk.Advance(59 * time.Second)
	require.True(t, s.Contains("k"))
	require.True(t, s.Contains("n"))

	clk.Advance(2 * time.Second)
	require.False(t, s.Contains("k"))
	require.False(t, s.Contains("n"))
}

func TestNotifyItemDeleted_OnlyTouchesListsHoldingItem(t *testing.T) {
	s, _ := newTestStore(t, 5)
	s.Put("with", summaries(1, 2, 3), 0)
	s.Put("without", summaries(4, 5), 0)

	s.NotifyItemDeleted(2)

	with, err := s.Get("with")
	require.NoError(t, err)
	require.Equal(t, []int{1, 3}, ids(with))

	without, err := s.Get("without")
	require.NoError(t, err)
	require.Len(t, without, 2)
	checkConsistent(t, s)
}

func TestNotifyItemDeleted_UnknownItemIsNoop(t *testing.T) {
	s, _ := newTestStore(t, 5)
	s.Put("k", summaries(1), 0)
	s.NotifyItemDeleted(42)
	got, err := s.Get("k")
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestNotifyItemDeleted_RemovesFirstMatchOnly(t *testing.T) {
	s, _ := newTestStore(t, 5)
	dup := append(summaries(7), summaries(8, 7)...)
	s.Put("dup", dup, 0)

	s.NotifyItemDeleted(7)
	got, err := s.Get("dup")
	require.NoError(t, err)
	require.Equal(t, []int{8, 7}, ids(got))
	checkConsistent(t, s)

	s.NotifyItemDeleted(7)
	got, err = s.Get("dup")
	require.NoError(t, err)
	require.Equal(t, []int{8}, ids(got))
	checkConsistent(t, s)
}

func TestNotifyItemUpdated_PatchesNameAndGenresInPlace(t *testing.T) {
	s, _ := newTestStore(t, 5)
	s.Put("a", summaries(1, 2, 3), 0)
	s.Put("b", summaries(2, 9), 0)
	s.Put("c", summaries(5), 0)

	genres := []string{"Drama", "Fantasy"}
	s.NotifyItemUpdated(2, "New", genres)
	genres[0] = "mutated by caller"

	a, err := s.Get("a")
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, ids(a))
	require.Equal(t, "New", a[1].Name)
	require.Equal(t, []string{"Drama", "Fantasy"}, a[1].Genres)
	require.InDelta(t, 2.0, a[1].Rating, 1e-9)
	require.Equal(t, "book-1", a[0].Name)

	b, err := s.Get("b")
	require.NoError(t, err)
	require.Equal(t, "New", b[0].Name)

	c, err := s.Get("c")
	require.NoError(t, err)
	require.Equal(t, "book-5", c[0].Name)
}

func TestNotifyItem_DoesNotResetTTL(t *testing.T) {
	s, clk := newTestStore(t, 5)
	s.Put("k", summaries(1, 2), time.Second)
	clk.Advance(900 * time.Millisecond)
	s.NotifyItemUpdated(1, "x", nil)
	s.NotifyItemDeleted(2)
	clk.Advance(200 * time.Millisecond)
	require.False(t, s.Contains("k"))
}

func TestInvalidate_IsExact(t *testing.T) {
	s, _ := newTestStore(t, 5)
	s.Put("a", summaries(1), 0)
	s.Put("b", summaries(1), 0)
	s.Put("c", summaries(2), 0)

	s.Invalidate("b")
	s.Invalidate("missing")

	require.False(t, s.Contains("b"))
	require.True(t, s.Contains("a"))
	require.True(t, s.Contains("c"))
	checkConsistent(t, s)
}

func TestPut_AfterEvictionCreatesFreshEntry(t *testing.T) {
	s, clk := newTestStore(t, 5)
	s.Put("k", summaries(1), time.Second)
	clk.Advance(2 * time.Second)
	require.False(t, s.Contains("k"))

	s.Put("k", summaries(2), time.Second)
	got, err := s.Get("k")
	require.NoError(t, err)
	require.Equal(t, []int{2}, ids(got))
}

func TestSweep_IsIdempotent(t *testing.T) {
	s, clk := newTestStore(t, 5)
	s.Put("short1", summaries(1), time.Second)
	s.Put("long", summaries(2), time.Hour)
	s.Put("short2", summaries(3), time.Second)
	clk.Advance(2 * time.Second)

	require.Equal(t, 2, s.Sweep())
	require.Equal(t, 0, s.Sweep())
	require.Equal(t, []string{"long"}, s.Keys())
	checkConsistent(t, s)
}

func TestSnapshot_ReportsWithoutMutating(t *testing.T) {
	s, clk := newTestStore(t, 5)
	s.Put("a", summaries(1, 2), time.Second)
	s.Put("b", summaries(3), time.Hour)
	clk.Advance(2 * time.Second)

	snap := s.Snapshot()
	require.Len(t, snap, 2)
	require.Equal(t, "a", snap[0].Key)
	require.Equal(t, 2, snap[0].Size)
	require.True(t, snap[0].Expired)
	require.Equal(t, 2*time.Second, snap[0].Age)
	require.False(t, snap[1].Expired)
	require.Equal(t, 2, s.Len())
}

func TestLRU_ReadsProtectKeys(t *testing.T) {
	clk := newFakeClock()
	s := New(Config{Capacity: 3, Eviction: EvictLRU, Now: clk.Now}, nil)
	defer s.Close()

	s.Put("a", summaries(1), 0)
	s.Put("b", summaries(2), 0)
	s.Put("c", summaries(3), 0)
	require.True(t, s.Contains("a"))

	s.Put("d", summaries(4), 0)
	require.True(t, s.Contains("a"))
	require.False(t, s.Contains("b"))
	checkConsistent(t, s)
}

func TestParseEvictionPolicy(t *testing.T) {
	p, err := ParseEvictionPolicy("")
	require.NoError(t, err)
	require.Equal(t, EvictFIFO, p)

	p, err = ParseEvictionPolicy(" LRU ")
	require.NoError(t, err)
	require.Equal(t, EvictLRU, p)

	_, err = ParseEvictionPolicy("random")
	require.Error(t, err)
}

func TestMetrics_CountHitsMissesAndRemovals(t *testing.T) {
	reg := prometheus.NewRegistry()
	clk := newFakeClock()
	s := New(Config{Capacity: 1, Registerer: reg, Now: clk.Now}, nil)
	defer s.Close()

	s.Put("a", summaries(1), 0)
	require.True(t, s.Contains("a"))
	require.False(t, s.Contains("x"))
	s.Put("b", summaries(1), 0)
	s.NotifyItemUpdated(1, "n", nil)
	s.Invalidate("b")

	require.InDelta(t, 1, testutil.ToFloat64(s.metrics.hits), 1e-9)
	require.InDelta(t, 1, testutil.ToFloat64(s.metrics.misses), 1e-9)
	require.InDelta(t, 1, testutil.ToFloat64(s.metrics.removals.WithLabelValues(reasonCapacity)), 1e-9)
	require.InDelta(t, 1, testutil.ToFloat64(s.metrics.removals.WithLabelValues(reasonInvalidated)), 1e-9)
	require.InDelta(t, 1, testutil.ToFloat64(s.metrics.mutations.WithLabelValues("update")), 1e-9)
	require.InDelta(t, 0, testutil.ToFloat64(s.metrics.entries), 1e-9)

	n, err := testutil.GatherAndCount(reg, "catalog_list_cache_hits_total")
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestBackgroundSweeperRemovesExpiredEntries(t *testing.T) {
	s := New(Config{Capacity: 5, SweepInterval: 5 * time.Millisecond, SnapshotInterval: 5 * time.Millisecond}, nil)
	defer s.Close()

	s.Put("k", summaries(1), time.Millisecond)
	require.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestClose_IsIdempotent(t *testing.T) {
	s := New(Config{SweepInterval: time.Millisecond}, nil)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	s.Put("k", summaries(1), 0)
	require.True(t, s.Contains("k"))
}

func TestConcurrentAccessStaysConsistent(t *testing.T) {
	s := New(Config{Capacity: 4, SweepInterval: time.Millisecond}, nil)
	defer s.Close()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", (w+i)%7)
				switch i % 6 {
				case 0:
					s.Put(key, summaries(i%5, (i+1)%5), time.Duration(i%3)*time.Millisecond)
				case 1:
					if s.Contains(key) {
						_, _ = s.Get(key)
					}
				case 2:
					s.NotifyItemDeleted(i % 5)
				case 3:
					s.NotifyItemUpdated(i%5, "n", []string{"g"})
				case 4:
					s.Invalidate(key)
				default:
					_ = s.Snapshot()
				}
			}
		}(w)
	}
	wg.Wait()
	checkConsistent(t, s)
}
