package listcache

import (
	"container/list"
	"fmt"
	"strings"
)

// EvictionPolicy selects which key Put drops when the store is full.
type EvictionPolicy string

const (
	// EvictFIFO drops the oldest inserted key regardless of access.
	EvictFIFO EvictionPolicy = "fifo"
	// EvictLRU drops the key that was least recently read or written.
	EvictLRU EvictionPolicy = "lru"
)

// ParseEvictionPolicy maps a config value to a policy; empty means FIFO.
func ParseEvictionPolicy(s string) (EvictionPolicy, error) {
	switch EvictionPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", EvictFIFO:
		return EvictFIFO, nil
	case EvictLRU:
		return EvictLRU, nil
	default:
		return "", fmt.Errorf("unknown cache eviction policy %q", s)
	}
}

// evictionOrder tracks the keys of the store in eviction order, oldest first.
// It must always hold exactly the keys present in the entry map.
type evictionOrder interface {
	// pushed records a key that was not in the store before.
	pushed(key string)
	// replaced is called when Put overwrites an existing key.
	replaced(key string)
	// touched is called on every hit.
	touched(key string)
	remove(key string)
	oldest() (string, bool)
	keys() []string
	len() int
}

func newEvictionOrder(p EvictionPolicy) evictionOrder {
	if p == EvictLRU {
		return newLRUOrder()
	}
	return newFIFOOrder()
}

// fifoOrder keeps keys in insertion order. Index 0 is the oldest key.
// Reads and overwrites never move a key.
type fifoOrder struct {
	queue []string
}

func newFIFOOrder() *fifoOrder {
	return &fifoOrder{queue: make([]string, 0)}
}

func (f *fifoOrder) pushed(key string) { f.queue = append(f.queue, key) }
func (f *fifoOrder) replaced(string)   {}
func (f *fifoOrder) touched(string)    {}
func (f *fifoOrder) len() int          { return len(f.queue) }

func (f *fifoOrder) remove(key string) {
	for i, k := range f.queue {
		if k == key {
			f.queue = append(f.queue[:i], f.queue[i+1:]...)
			return
		}
	}
}

func (f *fifoOrder) oldest() (string, bool) {
	if len(f.queue) == 0 {
		return "", false
	}
	return f.queue[0], true
}

func (f *fifoOrder) keys() []string {
	out := make([]string, len(f.queue))
	copy(out, f.queue)
	return out
}

// lruOrder keeps keys by recency. Front = least recently used.
type lruOrder struct {
	ll    *list.List
	index map[string]*list.Element
}

func newLRUOrder() *lruOrder {
	return &lruOrder{ll: list.New(), index: make(map[string]*list.Element)}
}

func (l *lruOrder) pushed(key string) {
	l.index[key] = l.ll.PushBack(key)
}

func (l *lruOrder) replaced(key string) { l.touched(key) }

func (l *lruOrder) touched(key string) {
	if el, ok := l.index[key]; ok {
		l.ll.MoveToBack(el)
	}
}

func (l *lruOrder) remove(key string) {
	if el, ok := l.index[key]; ok {
		l.ll.Remove(el)
		delete(l.index, key)
	}
}

func (l *lruOrder) oldest() (string, bool) {
	el := l.ll.Front()
	if el == nil {
		return "", false
	}
	return el.Value.(string), true
}

func (l *lruOrder) keys() []string {
	out := make([]string, 0, l.ll.Len())
	for el := l.ll.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(string))
	}
	return out
}

func (l *lruOrder) len() int { return l.ll.Len() }
