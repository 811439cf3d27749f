package cache

import (
	"strconv"
	"sync"
	"time"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

// content kinds
const (
	KindProducts = "products"
	KindEssays   = "essays"
)

// Cache stores values under a kind generation. Readers take the generation
// once before loading and use it for both Get and Set, so a fill that raced
// an Invalidate is dropped.
type Cache interface {
	Generation(kind string) uint64
	Get(kind string, gen uint64, key string) ([]byte, bool)
	Set(kind string, gen uint64, key string, value []byte)
	Invalidate(kind string)
}

var _ Cache = (*ContentCache)(nil)

// ContentCache holds rendered public responses per content kind.
// Invalidating a kind bumps its generation, so stale entries are never read
// again and age out of freecache on their own.
type ContentCache struct {
	cache *freecache.Cache
	ttl   time.Duration

	mutex       sync.RWMutex
	generations map[string]uint64
}

func NewContentCache(sizeMB int, ttl time.Duration) *ContentCache {
	return &ContentCache{
		cache:       freecache.NewCache(sizeMB * 1024 * 1024),
		ttl:         ttl,
		generations: map[string]uint64{},
	}
}

func (c *ContentCache) Generation(kind string) uint64 {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.generations[kind]
}

func cacheKey(kind string, gen uint64, key string) []byte {
	return []byte(kind + ":" + strconv.FormatUint(gen, 10) + ":" + key)
}

func (c *ContentCache) Get(kind string, gen uint64, key string) ([]byte, bool) {
	value, err := c.cache.Get(cacheKey(kind, gen, key))
	if err != nil {
		return nil, false
	}
	return value, true
}

func (c *ContentCache) Set(kind string, gen uint64, key string, value []byte) {
	if gen != c.Generation(kind) {
		log.Tracef("content cache, drop stale fill [%s/%s] of generation %d", kind, key, gen)
		return
	}

	expireSeconds := int(c.ttl.Seconds())
	if expireSeconds <= 0 {
		expireSeconds = 1
	}
	if err := c.cache.Set(cacheKey(kind, gen, key), value, expireSeconds); err != nil {
		log.Warnf("content cache, set [%s/%s]: %s", kind, key, err)
	}
}

func (c *ContentCache) Invalidate(kind string) {
	c.mutex.Lock()
	c.generations[kind]++
	c.mutex.Unlock()
	log.Tracef("content cache, %s invalidated", kind)
}

func (c *ContentCache) EntryCount() int64 {
	return c.cache.EntryCount()
}
