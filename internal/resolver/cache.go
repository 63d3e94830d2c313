package resolver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"SieveAPI/internal/db"
	"SieveAPI/internal/logger"
	"SieveAPI/internal/query"
)

var cacheTTL = time.Minute

// SetCacheTTL configures how long list results stay in Redis. Zero or
// negative disables caching even when Redis is connected.
func SetCacheTTL(ttl time.Duration) {
	cacheTTL = ttl
}

func cacheEnabled() bool {
	return db.RDB != nil && cacheTTL > 0
}

// cacheKey is a hash of the canonical request: resource, every clause with
// its value re-encoded to wire text, sort keys and the page window. Two
// requests that parse to the same spec share a key regardless of parameter
// order in the URL.
func cacheKey(req ListRequest) (string, error) {
	var b strings.Builder
	b.WriteString(req.Resource.Name)
	for _, c := range req.Filtering.Clauses {
		enc, err := query.EncodeFilterValue(c)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "|f:%s[%s]=%s", c.Field, c.Op, enc)
	}
	for _, it := range req.Sorting.Items {
		fmt.Fprintf(&b, "|s:%s:%d:%d", it.Field, it.Dir, it.Nulls)
	}
	fmt.Fprintf(&b, "|w:%d:%d", req.Limit, req.Offset)

	sum := sha256.Sum256([]byte(b.String()))
	return "list:" + hex.EncodeToString(sum[:]), nil
}

func cacheGet(ctx context.Context, req ListRequest) ([]map[string]any, bool) {
	if !cacheEnabled() {
		return nil, false
	}
	key, err := cacheKey(req)
	if err != nil {
		return nil, false
	}
	cached, err := db.RDB.Get(ctx, key).Result()
	if err != nil {
		return nil, false
	}
	var items []map[string]any
	if err := json.Unmarshal([]byte(cached), &items); err != nil {
		logger.Warn("result_cache_corrupt", map[string]any{
			"key":   key,
			"error": err.Error(),
		})
		return nil, false
	}
	return items, true
}

func cacheSet(ctx context.Context, req ListRequest, items []map[string]any) {
	if !cacheEnabled() {
		return
	}
	key, err := cacheKey(req)
	if err != nil {
		return
	}
	data, err := json.Marshal(items)
	if err != nil {
		return
	}
	// Cache failures are not fatal; the next request just hits Postgres.
	if err := db.RDB.Set(ctx, key, data, cacheTTL).Err(); err != nil {
		logger.Warn("result_cache_store_failed", map[string]any{
			"key":   key,
			"error": err.Error(),
		})
	}
}
