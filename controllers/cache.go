package controllers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"net/url"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
)

// searchCacheKey derives a stable key from the normalized query string.
// Keys are partitioned by visibility so a result set cached for an admin
// can never be served to a restricted caller.
func searchCacheKey(restricted bool, queryParams url.Values) string {
	keys := make([]string, 0, len(queryParams))
	for k := range queryParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	if restricted {
		sb.WriteString("public:")
	} else {
		sb.WriteString("all:")
	}

	for _, key := range keys {
		values := queryParams[key]
		sort.Strings(values)
		for _, val := range values {
			sb.WriteString(key)
			sb.WriteString("=")
			sb.WriteString(val)
			sb.WriteString("&")
		}
	}
	rawKey := strings.TrimSuffix(sb.String(), "&")

	sum := sha256.Sum256([]byte(rawKey))
	return "listings:search:" + hex.EncodeToString(sum[:])
}

// invalidateSearchCache drops every cached search result. Called after any
// listing mutation or moderation change.
func invalidateSearchCache(redisClient *redis.Client) {
	ctx := context.Background()
	const scanPattern = "listings:search:*"
	const scanCount = 100

	var keysToDelete []string
	var cursor uint64
	var err error

	for {
		var currentKeys []string
		currentKeys, cursor, err = redisClient.Scan(ctx, cursor, scanPattern, scanCount).Result()
		if err != nil {
			log.Printf("Error during Redis SCAN for pattern '%s': %v", scanPattern, err)
			return
		}
		keysToDelete = append(keysToDelete, currentKeys...)
		if cursor == 0 {
			break
		}
	}

	if len(keysToDelete) == 0 {
		return
	}

	pipe := redisClient.Pipeline()
	for _, key := range keysToDelete {
		pipe.Del(ctx, key)
	}
	if _, execErr := pipe.Exec(ctx); execErr != nil {
		log.Printf("Error deleting %d search cache keys: %v", len(keysToDelete), execErr)
	} else {
		log.Printf("Search cache invalidated, deleted %d keys", len(keysToDelete))
	}
}
