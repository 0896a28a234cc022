package listcache

import (
	"slices"

	"github.com/sirupsen/logrus"
)

// NotifyItemDeleted removes the book from every cached list that holds it.
// Lists that never contained it are left alone.
func (s *Store) NotifyItemDeleted(itemID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, ok := s.byItem[itemID]
	if !ok {
		return
	}
	patched := 0
	for key := range keys {
		e, ok := s.entries[key]
		if !ok {
			continue
		}
		i := indexOfItem(e.value, itemID)
		if i < 0 {
			continue
		}
		e.value = slices.Delete(e.value, i, i+1)
		patched++
		if indexOfItem(e.value, itemID) < 0 {
			delete(keys, key)
		}
	}
	if len(keys) == 0 {
		delete(s.byItem, itemID)
	}

	s.metrics.mutations.WithLabelValues("delete").Add(float64(patched))
	s.logger.WithFields(logrus.Fields{"book_id": itemID, "lists": patched}).Debug("list cache: book removed from cached lists")
}

// NotifyItemUpdated rewrites the name and genres of the book inside every
// cached list that holds it. Position, rating and other fields stay as cached.
func (s *Store) NotifyItemUpdated(itemID int, name string, genres []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, ok := s.byItem[itemID]
	if !ok {
		return
	}
	patched := 0
	for key := range keys {
		e, ok := s.entries[key]
		if !ok {
			continue
		}
		i := indexOfItem(e.value, itemID)
		if i < 0 {
			continue
		}
		e.value[i].Name = name
		e.value[i].Genres = slices.Clone(genres)
		patched++
	}

	s.metrics.mutations.WithLabelValues("update").Add(float64(patched))
	s.logger.WithFields(logrus.Fields{"book_id": itemID, "lists": patched}).Debug("list cache: book updated in cached lists")
}
