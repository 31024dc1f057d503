package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	IdempotencyCacheKey = "idempotency_cache_key"
	IdempotencyLockKey  = "idempotency_lock_key"
)

// Idempotency melindungi POST (apply leave dsb) dari double-submit.
// Response sukses pertama di-cache per Idempotency-Key dan di-replay.
func Idempotency(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		idempKey := c.GetHeader("Idempotency-Key")
		userID := c.GetString("user_id")

		if idempKey == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		cacheKey := fmt.Sprintf("idemp:%s:%s:%s", c.FullPath(), userID, idempKey)
		lockKey := cacheKey + ":lock"

		// 1. Replay cached response bila sudah pernah sukses
		val, err := rdb.Get(c.Request.Context(), cacheKey).Result()
		if err == nil {
			var cachedRes any
			if err := json.Unmarshal([]byte(val), &cachedRes); err == nil {
				c.AbortWithStatusJSON(http.StatusOK, gin.H{"ok": true, "data": cachedRes})
				return
			}
		}

		// 2. Atomic lock (SetNX): request ganda saat proses berlangsung ditolak.
		// Expiry pendek agar lock hilang sendiri kalau server crash.
		isNew, _ := rdb.SetNX(c.Request.Context(), lockKey, "locked", 30*time.Second).Result()
		if !isNew {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"code":    "PROCESSING",
				"message": "Request is still being processed, please wait.",
			})
			return
		}

		c.Set(IdempotencyCacheKey, cacheKey)
		c.Set(IdempotencyLockKey, lockKey)

		c.Next()
	}
}

// FinalizeIdempotency dipanggil handler setelah sukses: simpan response dan
// lepas lock. No-op bila middleware tidak aktif di route tsb.
func FinalizeIdempotency(c *gin.Context, rdb *redis.Client, data any) {
	if rdb == nil {
		return
	}
	cacheKey := c.GetString(IdempotencyCacheKey)
	lockKey := c.GetString(IdempotencyLockKey)
	if cacheKey == "" {
		return
	}

	if payload, err := json.Marshal(data); err == nil {
		rdb.Set(c.Request.Context(), cacheKey, payload, 24*time.Hour)
	}
	if lockKey != "" {
		rdb.Del(c.Request.Context(), lockKey)
	}
}
