package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/booknest/catalog-service/internal/core/domain/book"
	"github.com/booknest/catalog-service/internal/core/ports"
)

// CachingBookRepository decorates a BookRepository with the in-process list cache.
// Search results are cached per normalized request; writes patch cached lists in
// place rather than invalidating them. Lookups by id are never cached.
type CachingBookRepository struct {
	inner  ports.BookRepository
	cache  ports.BookListCache
	ttl    time.Duration
	sf     singleflight.Group
	logger *logrus.Logger
}

func NewCachingBookRepository(inner ports.BookRepository, cache ports.BookListCache, ttl time.Duration, logger *logrus.Logger) *CachingBookRepository {
	return &CachingBookRepository{inner: inner, cache: cache, ttl: ttl, logger: logger}
}

func (c *CachingBookRepository) cached(key string) ([]book.Summary, bool) {
	if c.cache == nil || !c.cache.Contains(key) {
		return nil, false
	}
	v, err := c.cache.Get(key)
	if err != nil {
		// Lost a race with eviction or expiry; treat as a miss.
		return nil, false
	}
	return v, true
}

// Search serves a page from the cache or loads it once for all concurrent callers
// asking for the same key.
func (c *CachingBookRepository) Search(ctx context.Context, criteria *book.SearchCriteria, page *book.Page) ([]book.Summary, error) {
	key := book.ListKey(criteria, page)
	if v, ok := c.cached(key); ok {
		if c.logger != nil {
			c.logger.WithFields(logrus.Fields{"key": key, "size": len(v)}).Debug("list cache hit")
		}
		return v, nil
	}

	res, err, shared := c.sf.Do(key, func() (any, error) {
		if v, ok := c.cached(key); ok {
			return v, nil
		}
		all, err := c.inner.Search(ctx, criteria, page)
		if err != nil {
			return nil, err
		}
		if c.cache != nil {
			c.cache.Put(key, all, c.ttl)
		}
		if c.logger != nil {
			c.logger.WithFields(logrus.Fields{"key": key, "size": len(all)}).Debug("list cache miss, stored result")
		}
		return all, nil
	})
	if err != nil {
		return nil, err
	}
	all, ok := res.([]book.Summary)
	if !ok {
		return nil, fmt.Errorf("unexpected type from singleflight result")
	}
	if shared {
		return book.CloneSummaries(all), nil
	}
	return all, nil
}

func (c *CachingBookRepository) Create(ctx context.Context, b *book.Book) error {
	// New books show up in cached lists once those expire.
	return c.inner.Create(ctx, b)
}

func (c *CachingBookRepository) GetByID(ctx context.Context, id int) (*book.Book, error) {
	return c.inner.GetByID(ctx, id)
}

func (c *CachingBookRepository) Update(ctx context.Context, b *book.Book) error {
	if err := c.inner.Update(ctx, b); err != nil {
		return err
	}
	if c.cache != nil {
		c.cache.NotifyItemUpdated(b.ID, b.Name, b.Genres)
	}
	return nil
}

func (c *CachingBookRepository) Delete(ctx context.Context, id int) error {
	if err := c.inner.Delete(ctx, id); err != nil {
		// A row that is already gone must not linger in cached lists either.
		if errors.Is(err, book.ErrNotFound) && c.cache != nil {
			c.cache.NotifyItemDeleted(id)
		}
		return err
	}
	if c.cache != nil {
		c.cache.NotifyItemDeleted(id)
	}
	return nil
}
