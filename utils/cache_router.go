package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const CacheNoCache = 0

// CacheRouter sets the default cache-control header, handlers serving
// immutable files override it with SetCache
type CacheRouter struct {
	CacheTime int // seconds, CacheNoCache by default
}

func (cr *CacheRouter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		SetCache(c, cr.CacheTime)
		c.Next()
	}
}

func SetCache(c *gin.Context, seconds int) {
	if seconds <= CacheNoCache {
		c.Header("Cache-Control", "no-cache")
		return
	}
	c.Header("Cache-Control", "private, max-age="+strconv.Itoa(seconds))
}
