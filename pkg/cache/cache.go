// Package cache provides a thread-safe, size-bounded LRU cache for
// compiled CEL programs.
//
// gocel.Eval's WithCache option routes compilation through this cache so
// that repeatedly evaluating the same expression string — the common
// pattern for a host embedding CEL as a policy language, where the same
// access-check or validation-rule string is re-evaluated against a new
// activation on every request — skips re-parsing (spec §5 "Compiled-
// program caching"). Unlike a plain entry-count LRU, capacity here is also
// bounded by the total byte size of cached source text: CEL expressions
// authored as policy strings vary enormously in length (a single-field
// comparison versus a deeply nested comprehension over a large protobuf
// message), and an entry-count cap alone lets a handful of large
// expressions crowd out many small ones.
//
// # Example
//
//	c := cache.New(1024, cache.WithMaxBytes(1<<20))
//	prog, err := c.GetOrCompile("x.size() > 0", compile)
package cache

import (
	"container/list"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/sandrolain/gocel/pkg/ast"
)

// entry is a cache entry stored in the doubly-linked list. bytes is the
// length of the cached source text, the unit the byte-size budget is
// measured in.
type entry struct {
	key   string
	prog  *ast.Program
	bytes int
}

// Options configures a Cache, following the interpreter's WithLogger
// functional-options pattern (pkg/interpreter.Options).
type Options struct {
	MaxBytes int
	Logger   *slog.Logger
}

// Option configures Options.
type Option func(*Options)

// WithMaxBytes bounds the cache by the total byte length of cached source
// strings, in addition to the entry-count capacity passed to New. Zero
// (the default) leaves the cache unbounded by size, matching New's
// previous entry-count-only behavior.
func WithMaxBytes(n int) Option {
	return func(o *Options) { o.MaxBytes = n }
}

// WithLogger sets the structured logger used to report evictions at debug
// level. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// Stats reports cumulative cache activity since construction.
type Stats struct {
	Hits   int64
	Misses int64
}

// Cache is a thread-safe LRU (Least Recently Used) cache for compiled
// programs, bounded by entry count and, optionally, by total cached
// source byte size. Once a limit is reached, the least recently accessed
// entries are evicted until both are satisfied. A single entry whose key
// alone exceeds the byte budget is still stored, in an otherwise empty
// cache.
//
// Safe for concurrent use by multiple goroutines.
type Cache struct {
	mu       sync.RWMutex
	capacity int
	maxBytes int
	logger   *slog.Logger
	ll       *list.List
	items    map[string]*list.Element
	curBytes int

	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a new LRU cache with the given entry-count capacity.
// capacity must be > 0; if <= 0, a default of 256 is used.
func New(capacity int, opts ...Option) *Cache {
	if capacity <= 0 {
		capacity = 256
	}
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return &Cache{
		capacity: capacity,
		maxBytes: o.MaxBytes,
		logger:   o.Logger,
		ll:       list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

// Get retrieves a compiled program from the cache.
// Returns (prog, true) if found and moves the entry to front (MRU).
// Returns (nil, false) if not present.
func (c *Cache) Get(key string) (*ast.Program, bool) {
	c.mu.RLock()
	el, ok := c.items[key]
	alreadyFront := ok && c.ll.Front() == el
	c.mu.RUnlock()
	if !ok {
		c.misses.Add(1)
		return nil, false
	}

	if !alreadyFront {
		c.mu.Lock()
		el, ok = c.items[key]
		if ok {
			c.ll.MoveToFront(el)
		}
		c.mu.Unlock()

		if !ok {
			c.misses.Add(1)
			return nil, false
		}
	}
	c.hits.Add(1)
	return el.Value.(*entry).prog, true
}

// Set inserts or replaces a program in the cache. If at entry-count or
// byte-size capacity, the least recently used entries are evicted first,
// one at a time, until the incoming entry fits both budgets or the cache
// is empty; an entry larger than the byte budget on its own is inserted
// anyway.
func (c *Cache) Set(key string, prog *ast.Program) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*entry).prog = prog
		c.ll.MoveToFront(el)
		return
	}

	keyBytes := len(key)
	for c.ll.Len() >= c.capacity || (c.maxBytes > 0 && c.curBytes+keyBytes > c.maxBytes) {
		if !c.evictOldestLocked() {
			break
		}
	}

	el := c.ll.PushFront(&entry{key: key, prog: prog, bytes: keyBytes})
	c.items[key] = el
	c.curBytes += keyBytes
}

// GetOrCompile retrieves the program for key from cache, or calls compile()
// to create it, caches the result, and returns it.
// compile is called on every miss: concurrent misses for the same key each
// call it, and errors are not cached.
func (c *Cache) GetOrCompile(key string, compile func() (*ast.Program, error)) (*ast.Program, error) {
	if prog, ok := c.Get(key); ok {
		return prog, nil
	}
	prog, err := compile()
	if err != nil {
		return nil, err
	}
	c.Set(key, prog)
	return prog, nil
}

// Len returns the number of entries currently in the cache.
func (c *Cache) Len() int {
	c.mu.RLock()
	n := len(c.items)
	c.mu.RUnlock()
	return n
}

// Capacity returns the maximum number of entries the cache can hold.
func (c *Cache) Capacity() int {
	return c.capacity
}

// ByteSize returns the total byte length of the source strings currently
// cached.
func (c *Cache) ByteSize() int {
	c.mu.RLock()
	n := c.curBytes
	c.mu.RUnlock()
	return n
}

// Stats returns the cumulative hit/miss counts observed by Get.
func (c *Cache) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// Invalidate removes a single entry from the cache.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.curBytes -= el.Value.(*entry).bytes
		c.ll.Remove(el)
		delete(c.items, key)
	}
}

// Clear removes all entries from the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.items = make(map[string]*list.Element, c.capacity)
	c.curBytes = 0
}

// evictOldestLocked removes the least recently used entry. Reports false
// if the cache was already empty. Must be called with c.mu held for
// writing.
func (c *Cache) evictOldestLocked() bool {
	el := c.ll.Back()
	if el == nil {
		return false
	}
	ent := el.Value.(*entry)
	c.ll.Remove(el)
	delete(c.items, ent.key)
	c.curBytes -= ent.bytes
	c.logger.Debug("cache entry evicted", "key", ent.key, "bytes", ent.bytes)
	return true
}
