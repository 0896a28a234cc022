package ports

import (
	"time"

	"github.com/booknest/catalog-service/internal/core/domain/book"
)

// BookListCache memoizes book list query results in process, keyed by the
// normalized request signature. All operations are in-memory and never block
// on I/O; Get is the only one that reports a condition (absent/expired key).
type BookListCache interface {
	// Contains reports whether a fresh entry exists, evicting it first if it expired.
	Contains(key string) bool
	// Get returns a copy of the cached list. Callers are expected to check Contains
	// first; an absent or expired key yields an error.
	Get(key string) ([]book.Summary, error)
	// Put stores value under key for ttl. A non-positive ttl uses the store default.
	Put(key string, value []book.Summary, ttl time.Duration)
	// Invalidate drops key; absence is not an error.
	Invalidate(key string)
	// NotifyItemDeleted removes the item from every cached list containing it.
	NotifyItemDeleted(itemID int)
	// NotifyItemUpdated patches the display fields of the item in every cached list.
	NotifyItemUpdated(itemID int, name string, tags []string)
}

// CacheEntryInfo is a read-only diagnostic view of one cached list.
type CacheEntryInfo struct {
	Key       string        `json:"key"`
	CreatedAt time.Time     `json:"created_at"`
	Age       time.Duration `json:"age"`
	TTL       time.Duration `json:"ttl"`
	Size      int           `json:"size"`
	Expired   bool          `json:"expired"`
}

// CacheInspector exposes diagnostics and manual invalidation for operators.
type CacheInspector interface {
	Snapshot() []CacheEntryInfo
	Invalidate(key string)
	Len() int
}
