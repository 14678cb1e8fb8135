package promptmeta

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the capacity NewCache uses for a non-positive size.
const DefaultCacheSize = 256

// Cache memoizes Parse results by the content of the blobs.
//
// Galleries routinely hold many images written by the same workflow, and a
// large editor graph is the expensive part of a parse. A Cache is safe for
// concurrent use.
//
//	cache, _ := promptmeta.NewCache(512)
//	for _, img := range images {
//		res := cache.Parse(img.Blobs, promptmeta.WithDimensions(img.Width, img.Height))
//		...
//	}
type Cache struct {
	lru  *lru.Cache[uint64, ParseResult]
	opts []Option
}

// NewCache returns a cache holding up to size results. opts apply to every
// parse made through the cache, before any per-call options.
func NewCache(size int, opts ...Option) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	l, err := lru.New[uint64, ParseResult](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: l, opts: opts}, nil
}

// Parse returns the cached result for blobs, running Parse on a miss.
//
// The key covers every blob and each option that changes the result:
// dimensions, container label, limits and stealth payload. A stealth
// decoder cannot be keyed, so it is ignored here just as Parse ignores it.
func (c *Cache) Parse(blobs Blobs, opts ...Option) ParseResult {
	return c.parse(blobs, newOptions(append(append([]Option(nil), c.opts...), opts...)))
}

func (c *Cache) parse(blobs Blobs, o *options) ParseResult {
	key := cacheKey(blobs, o)

	if r, ok := c.lru.Get(key); ok {
		o.logger.Debug("parse cache hit")
		return r.Clone()
	}

	r := dispatch(blobs, o, o.payload())
	c.lru.Add(key, r.Clone())
	return r
}

// Len returns the number of cached results.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Purge drops every cached result.
func (c *Cache) Purge() {
	c.lru.Purge()
}

func cacheKey(blobs Blobs, o *options) uint64 {
	d := xxhash.New()
	field := func(s string) {
		d.WriteString(strconv.Itoa(len(s)))
		d.WriteString(":")
		d.WriteString(s)
	}
	for _, k := range blobs.Keys() {
		field(k)
		field(blobs[k])
	}
	field(strconv.Itoa(o.width))
	field(strconv.Itoa(o.height))
	field(o.container)
	field(strconv.Itoa(o.limits.TextDepth))
	field(strconv.Itoa(o.limits.ChainDepth))
	field(o.stealthPayload)
	return d.Sum64()
}
