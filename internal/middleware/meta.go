package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	responseMetaKey = "response_meta"
	cacheHitKey     = "cache_hit"

	// PollIntervalHeader advertises how often clients should refresh.
	PollIntervalHeader = "X-Poll-Interval"
)

// WithResponseMeta seeds response metadata with the polling interval clients
// should use, and mirrors it in the X-Poll-Interval header (milliseconds).
func WithResponseMeta(pollInterval time.Duration) gin.HandlerFunc {
	ms := pollInterval.Milliseconds()
	return func(c *gin.Context) {
		meta := map[string]interface{}{}
		if ms > 0 {
			meta["poll_interval_ms"] = ms
			c.Header(PollIntervalHeader, strconv.FormatInt(ms, 10))
		}
		c.Set(responseMetaKey, meta)
		c.Next()
	}
}

// SetCacheHit records cache hit information for the current response.
func SetCacheHit(c *gin.Context, hit bool) {
	meta := ensureMeta(c)
	meta[cacheHitKey] = hit
}

// ExtractMeta returns the metadata map stored on the context.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	if meta, exists := c.Get(responseMetaKey); exists {
		if typed, ok := meta.(map[string]interface{}); ok {
			return typed
		}
	}
	return nil
}

func ensureMeta(c *gin.Context) map[string]interface{} {
	if meta := ExtractMeta(c); meta != nil {
		return meta
	}
	newMeta := make(map[string]interface{})
	if c != nil {
		c.Set(responseMetaKey, newMeta)
	}
	return newMeta
}
