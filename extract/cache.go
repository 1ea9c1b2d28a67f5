package extract

import (
	"context"
	"encoding/binary"
	"math"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/llmfetch"
)

// Ensure CachingGenerator implements llmfetch.Generator at compile time.
var _ llmfetch.Generator = (*CachingGenerator)(nil)

// DefaultCacheSize is the number of responses a cache holds before it evicts
// the oldest.
const DefaultCacheSize = 4096

// CachingGenerator memoizes successful completions. Generators are
// deterministic for a fixed prompt and params, so a repeated request can be
// answered from memory. Once full, the oldest entry is evicted first.
type CachingGenerator struct {
	gen  llmfetch.Generator
	size int

	mu      sync.Mutex
	entries map[uint64]string
	order   []uint64 // insertion order, oldest first
}

// Cache wraps gen with an in-memory response cache of DefaultCacheSize
// entries.
func Cache(gen llmfetch.Generator) *CachingGenerator {
	return CacheSize(gen, DefaultCacheSize)
}

// CacheSize wraps gen with a cache holding at most size responses. A size of
// zero or less uses DefaultCacheSize.
func CacheSize(gen llmfetch.Generator, size int) *CachingGenerator {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &CachingGenerator{gen: gen, size: size, entries: make(map[uint64]string)}
}

// Complete returns the cached response for prompt and params if present.
// Errors are not cached.
func (c *CachingGenerator) Complete(ctx context.Context, prompt string, params llmfetch.GenerateParams) (string, error) {
	key := cacheKey(prompt, params)

	c.mu.Lock()
	text, ok := c.entries[key]
	c.mu.Unlock()
	if ok {
		return text, nil
	}

	text, err := c.gen.Complete(ctx, prompt, params)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.add(key, text)
	c.mu.Unlock()
	return text, nil
}

// add stores text under key, evicting the oldest entry when full. The caller
// holds c.mu.
func (c *CachingGenerator) add(key uint64, text string) {
	if _, ok := c.entries[key]; ok {
		c.entries[key] = text
		return
	}
	if len(c.order) >= c.size {
		delete(c.entries, c.order[0])
		c.order = c.order[1:]
	}
	c.entries[key] = text
	c.order = append(c.order, key)
}

// Len returns the number of cached responses.
func (c *CachingGenerator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func cacheKey(prompt string, params llmfetch.GenerateParams) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(prompt)

	var buf [8]byte
	for _, v := range []uint64{
		uint64(math.Float32bits(params.Temperature)),
		uint64(params.TopK),
		uint64(math.Float32bits(params.TopP)),
		uint64(params.Seed),
		uint64(params.MaxTokens),
		uint64(len(params.Stop)),
	} {
		binary.LittleEndian.PutUint64(buf[:], v)
		_, _ = d.Write(buf[:])
	}
	for _, s := range params.Stop {
		_, _ = d.WriteString(s)
		_, _ = d.Write([]byte{0})
	}
	return d.Sum64()
}
