package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Store is a time-boxed byte cache. A miss returns nil.
type Store interface {
	Get(ctx context.Context, key string) []byte
	Set(ctx context.Context, key string, value []byte)
	Delete(ctx context.Context, key string)
	DeletePrefix(ctx context.Context, prefix string)
}

// TTL is an in-memory Store. Expired entries are dropped lazily on Get and by a janitor
// goroutine that runs every ttl/2 until Close is called.
type TTL struct {
	mu    sync.RWMutex
	items map[string]item
	ttl   time.Duration
	now   func() time.Time
	done  chan struct{}
	once  sync.Once
}

type item struct {
	data []byte
	exp  time.Time
}

// New returns a TTL cache whose entries expire after ttl.
func New(ttl time.Duration) *TTL {
	if ttl <= 0 {
		ttl = time.Second
	}
	c := &TTL{items: make(map[string]item), ttl: ttl, now: time.Now, done: make(chan struct{})}
	go c.janitor()
	return c
}

func (c *TTL) janitor() {
	tick := time.NewTicker(c.ttl / 2)
	defer tick.Stop()
	for {
		select {
		case <-tick.C:
			c.evictExpired()
		case <-c.done:
			return
		}
	}
}

func (c *TTL) evictExpired() {
	now := c.now()
	c.mu.Lock()
	for k, v := range c.items {
		if !v.exp.After(now) {
			delete(c.items, k)
		}
	}
	c.mu.Unlock()
}

// Close stops the janitor. The cache stays usable.
func (c *TTL) Close() {
	c.once.Do(func() { close(c.done) })
}

func (c *TTL) Get(_ context.Context, key string) []byte {
	c.mu.RLock()
	it, ok := c.items[key]
	c.mu.RUnlock()
	if !ok || !it.exp.After(c.now()) {
		return nil
	}
	return it.data
}

func (c *TTL) Set(_ context.Context, key string, value []byte) {
	exp := c.now().Add(c.ttl)
	c.mu.Lock()
	c.items[key] = item{data: value, exp: exp}
	c.mu.Unlock()
}

func (c *TTL) Delete(_ context.Context, key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// DeletePrefix removes every key starting with prefix (e.g. "specialdays:<org>:").
func (c *TTL) DeletePrefix(_ context.Context, prefix string) {
	c.mu.Lock()
	for k := range c.items {
		if strings.HasPrefix(k, prefix) {
			delete(c.items, k)
		}
	}
	c.mu.Unlock()
}
