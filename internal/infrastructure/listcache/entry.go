package listcache

import (
	"time"

	"github.com/booknest/catalog-service/internal/core/domain/book"
)

// entry is one cached list. value is owned by the store; callers only ever see copies.
type entry struct {
	value     []book.Summary
	createdAt time.Time
	ttl       time.Duration
}

func (e *entry) expiresAt() time.Time {
	return e.createdAt.Add(e.ttl)
}

// expired reports whether createdAt+ttl lies strictly before now.
func (e *entry) expired(now time.Time) bool {
	return now.After(e.expiresAt())
}

func indexOfItem(items []book.Summary, itemID int) int {
	for i := range items {
		if items[i].ID == itemID {
			return i
		}
	}
	return -1
}
