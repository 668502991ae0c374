package ocr

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru"
)

// CachedEngine memoizes results by image digest, region and recognition
// settings for the life of one run. Identical renders, such as blank
// separator pages or the same scan saved twice in an inbox, are read once.
type CachedEngine struct {
	next  Engine
	cache *lru.Cache
}

// NewCachedEngine wraps next with an LRU of the given size.
func NewCachedEngine(next Engine, size int) (*CachedEngine, error) {
	if size <= 0 {
		size = 64
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("create ocr cache: %w", err)
	}
	return &CachedEngine{next: next, cache: cache}, nil
}

func (c *CachedEngine) Name() string { return c.next.Name() }

func (c *CachedEngine) Recognize(ctx context.Context, in Input) (Result, error) {
	key := cacheKey(in)
	if v, ok := c.cache.Get(key); ok {
		res := v.(Result)
		res.InputID = in.ID
		return res, nil
	}
	res, err := c.next.Recognize(ctx, in)
	if err != nil {
		return Result{}, err
	}
	c.cache.Add(key, res)
	return res, nil
}

// RecognizeBatch answers cached inputs directly and sends the rest to the
// wrapped engine in one batch.
func (c *CachedEngine) RecognizeBatch(ctx context.Context, inputs []Input) ([]Result, error) {
	results := make([]Result, len(inputs))
	keys := make([]string, len(inputs))
	var missing []Input
	var slots []int
	for i, in := range inputs {
		keys[i] = cacheKey(in)
		if v, ok := c.cache.Get(keys[i]); ok {
			res := v.(Result)
			res.InputID = in.ID
			results[i] = res
			continue
		}
		missing = append(missing, in)
		slots = append(slots, i)
	}
	if len(missing) == 0 {
		return results, nil
	}
	fresh, err := RecognizeAll(ctx, c.next, missing)
	if err != nil {
		return nil, err
	}
	for j, res := range fresh {
		i := slots[j]
		c.cache.Add(keys[i], res)
		results[i] = res
	}
	return results, nil
}

// Len reports the number of cached results.
func (c *CachedEngine) Len() int { return c.cache.Len() }

func cacheKey(in Input) string {
	h := sha256.New()
	h.Write(in.Image)
	fmt.Fprintf(h, "|%d|%s", in.DPI, strings.Join(in.Languages, "+"))
	if in.Region != nil {
		fmt.Fprintf(h, "|%v", *in.Region)
	}
	keys := make([]string, 0, len(in.Metadata))
	for k := range in.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(h, "|%s=%s", k, in.Metadata[k])
	}
	return hex.EncodeToString(h.Sum(nil))
}
