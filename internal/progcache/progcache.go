// Package progcache caches compiled programs by pattern.
package progcache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/KromDaniel/regvm/pkg/regvm"
)

// Options configures a Cache.
type Options struct {
	// Compile overrides how patterns are compiled.
	Compile func(pattern string) *regvm.Program

	// OnCompile is called after every compilation, hits excluded.
	OnCompile func(p *regvm.Program)

	// CleanupInterval is the period of expired entry eviction. Zero
	// selects twice the TTL.
	CleanupInterval time.Duration
}

// Cache maps patterns to compiled programs. Concurrent misses on the same
// pattern compile it once. Programs that failed to compile are cached too,
// so Err must be checked by the caller.
type Cache struct {
	items   *gocache.Cache
	group   singleflight.Group
	compile func(string) *regvm.Program
	notify  func(*regvm.Program)
}

// New creates a cache whose entries expire ttl after insertion. ttl <= 0
// keeps entries until Flush.
func New(ttl time.Duration, opts Options) *Cache {
	expiration, cleanup := ttl, opts.CleanupInterval
	if ttl <= 0 {
		expiration = gocache.NoExpiration
		cleanup = 0
	} else if cleanup <= 0 {
		cleanup = 2 * ttl
	}
	c := &Cache{
		items:   gocache.New(expiration, cleanup),
		compile: opts.Compile,
		notify:  opts.OnCompile,
	}
	if c.compile == nil {
		c.compile = regvm.Compile
	}
	return c
}

// Get returns the program for pattern, compiling it on a miss.
func (c *Cache) Get(pattern string) *regvm.Program {
	if p, ok := c.items.Get(pattern); ok {
		return p.(*regvm.Program)
	}
	v, _, _ := c.group.Do(pattern, func() (interface{}, error) {
		if p, ok := c.items.Get(pattern); ok {
			return p, nil
		}
		p := c.compile(pattern)
		c.items.SetDefault(pattern, p)
		if c.notify != nil {
			c.notify(p)
		}
		return p, nil
	})
	return v.(*regvm.Program)
}

// Len returns the number of cached programs, expired ones included until
// they are evicted.
func (c *Cache) Len() int { return c.items.ItemCount() }

// Flush removes every program.
func (c *Cache) Flush() { c.items.Flush() }
