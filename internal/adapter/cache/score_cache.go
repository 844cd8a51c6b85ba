package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"jokegen/internal/domain"
	"jokegen/internal/port"
)

// ScoreCache is an LRU of classifications keyed by (question, answer).
type ScoreCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	order   []string
	maxSize int
	ttl     time.Duration
	now     func() time.Time
}

type cacheEntry struct {
	result    domain.Classification
	timestamp time.Time
}

func NewScoreCache(maxSize int, ttl time.Duration) *ScoreCache {
	if maxSize <= 0 {
		maxSize = 1000
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ScoreCache{
		entries: make(map[string]*cacheEntry),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

func cacheKey(model string, pair domain.Pair) string {
	data := make([]byte, 0, len(model)+len(pair.Question)+len(pair.Answer)+2)
	data = append(data, model...)
	data = append(data, 0)
	data = append(data, pair.Question...)
	data = append(data, 0)
	data = append(data, pair.Answer...)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:16])
}

func (c *ScoreCache) Get(model string, pair domain.Pair) (domain.Classification, bool) {
	key := cacheKey(model, pair)

	// Get reorders the LRU list, so it needs the write lock for the whole
	// lookup.
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[key]
	if !exists {
		return domain.Classification{}, false
	}

	if c.now().Sub(entry.timestamp) > c.ttl {
		delete(c.entries, key)
		c.removeFromOrder(key)
		return domain.Classification{}, false
	}

	c.moveToEnd(key)
	return entry.result, true
}

func (c *ScoreCache) Put(model string, pair domain.Pair, result domain.Classification) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(model, pair)
	entry := &cacheEntry{result: result, timestamp: c.now()}

	if _, exists := c.entries[key]; exists {
		c.entries[key] = entry
		c.moveToEnd(key)
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	c.entries[key] = entry
	c.order = append(c.order, key)
}

func (c *ScoreCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry)
	c.order = c.order[:0]
}

func (c *ScoreCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *ScoreCache) evictOldest() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.entries, oldest)
}

func (c *ScoreCache) moveToEnd(key string) {
	c.removeFromOrder(key)
	c.order = append(c.order, key)
}

func (c *ScoreCache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// CachedClassifier answers repeated pairs from the cache and sends only the
// misses to the wrapped classifier.
type CachedClassifier struct {
	classifier port.Classifier
	cache      *ScoreCache
}

func NewCachedClassifier(classifier port.Classifier, cache *ScoreCache) *CachedClassifier {
	return &CachedClassifier{
		classifier: classifier,
		cache:      cache,
	}
}

func (c *CachedClassifier) Classify(ctx context.Context, pairs []domain.Pair) ([]domain.Classification, error) {
	model := c.classifier.ModelName()
	results := make([]domain.Classification, len(pairs))

	var missPairs []domain.Pair
	var missIdx []int
	pending := make(map[domain.Pair]int) // pair -> index in missPairs

	for i, p := range pairs {
		if res, hit := c.cache.Get(model, p); hit {
			results[i] = res
			continue
		}
		if _, dup := pending[p]; !dup {
			pending[p] = len(missPairs)
			missPairs = append(missPairs, p)
		}
		missIdx = append(missIdx, i)
	}

	if len(missPairs) == 0 {
		return results, nil
	}

	fresh, err := c.classifier.Classify(ctx, missPairs)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missPairs) {
		return nil, fmt.Errorf("%w: sent %d pairs, got %d classifications", domain.ErrSampleCountMismatch, len(missPairs), len(fresh))
	}

	for i, p := range missPairs {
		c.cache.Put(model, p, fresh[i])
	}
	for _, i := range missIdx {
		results[i] = fresh[pending[pairs[i]]]
	}

	return results, nil
}

func (c *CachedClassifier) ModelName() string {
	return c.classifier.ModelName()
}
