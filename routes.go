package main

import (
	"circle/auth"
	"circle/config"
	"circle/handlers"
	"circle/models"
	"circle/utils"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const sessionCookieName = "circle_session"

// Binary responses and the websocket must not be compressed
var gzipExcluded = []string{
	"/uploads/",
	"/api/media/preview/",
	"/api/audio/",
	"/api/events",
	"/api/pdf/",
	"/api/export/biography/pdf",
}

func allowOrigin(origin string) bool {
	origins := config.CORSOrigins()
	return slices.Contains(origins, "*") || slices.Contains(origins, origin)
}

func setupRouter(store sessions.Store) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if config.DEBUG_MODE {
		router.Use(gin.Logger())
		router.Use(utils.ErrorLogMiddleware)
	}
	_ = router.SetTrustedProxies(nil)
	router.MaxMultipartMemory = 32 << 20
	router.Use(cors.New(cors.Config{
		AllowOriginFunc:  allowOrigin,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(sessions.Sessions(sessionCookieName, store))
	if !config.DEBUG_MODE {
		router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths(gzipExcluded)))
	}
	router.Use((&utils.CacheRouter{CacheTime: utils.CacheNoCache}).Handler()) // No cache by default, file end-points override that

	// Public
	router.GET("/api/health", handlers.Health)
	router.GET("/robots.txt", handlers.DisallowRobots)
	router.POST("/api/auth/register", handlers.AuthRegister)
	router.POST("/api/auth/login", handlers.AuthLogin)
	router.POST("/api/auth/refresh", handlers.AuthRefresh)

	authRouter := &auth.Router{Base: router}
	// Account
	authRouter.POST("/api/auth/logout", handlers.AuthLogout)
	authRouter.POST("/api/auth/change-password", handlers.AuthChangePassword)
	authRouter.GET("/api/auth/me", handlers.AuthMe)
	authRouter.POST("/api/profile/save", handlers.ProfileSave)
	authRouter.GET("/api/profile/get", handlers.ProfileGet)
	// Memories
	authRouter.POST("/api/memories/save", handlers.MemorySave)
	authRouter.GET("/api/memories/get", handlers.MemoriesGet)
	authRouter.GET("/api/memories/:id", handlers.MemoryGet)
	authRouter.PUT("/api/memories/:id", handlers.MemoryUpdate)
	authRouter.DELETE("/api/memories/delete/:id", handlers.MemoryDelete)
	// Memory <-> media links
	authRouter.GET("/api/memories/:id/media", handlers.MemoryMediaList)
	authRouter.POST("/api/memories/:id/media", handlers.MemoryMediaReplace)
	authRouter.PUT("/api/memories/:id/media/order", handlers.MemoryMediaOrder)
	authRouter.POST("/api/memories/:id/media/:media_id", handlers.MemoryMediaLink)
	authRouter.DELETE("/api/memories/:id/media/:media_id", handlers.MemoryMediaUnlink)
	authRouter.GET("/api/memories/:id/browse-photos", handlers.MemoryBrowsePhotos)
	// Photo suggestions
	authRouter.GET("/api/memories/:id/suggest-photos", handlers.SuggestPhotos)
	authRouter.POST("/api/memories/:id/accept-suggestion", handlers.AcceptSuggestion)
	authRouter.POST("/api/memories/suggest-all", handlers.SuggestAll)
	// Media
	authRouter.POST("/api/media/upload", handlers.MediaUpload)
	authRouter.GET("/api/media/all", handlers.MediaAll)
	authRouter.GET("/api/media/available", handlers.MediaAvailable)
	authRouter.PUT("/api/media/:id/update", handlers.MediaUpdate)
	authRouter.DELETE("/api/media/delete/:id", handlers.MediaDelete)
	authRouter.GET("/api/media/preview/:filename", handlers.MediaPreview)
	authRouter.GET("/uploads/:filename", handlers.MediaServe)
	// Voice recordings
	authRouter.POST("/api/audio/save", handlers.AudioSave)
	authRouter.GET("/api/audio/:filename", handlers.AudioServe)
	// Search
	authRouter.POST("/api/search/smart", handlers.SearchSmart)
	authRouter.POST("/api/search/ai", handlers.SearchAI)
	// Export
	authRouter.POST("/api/export/biography/generate", handlers.BiographyGenerate)
	authRouter.POST("/api/export/biography/save-edits", handlers.BiographySaveEdits)
	authRouter.POST("/api/export/biography/pdf", handlers.BiographyPDF)
	authRouter.GET("/api/export/biography/draft", handlers.BiographyDraft)
	authRouter.POST("/api/pdf/generate/:type", handlers.PDFGenerate)
	// Change feed
	authRouter.GET("/api/events", handlers.Events)
	// Admin
	authRouter.GET("/api/debug/media", handlers.MediaDebug, models.RoleAdmin)
	authRouter.GET("/api/admin/buckets", handlers.BucketList, models.RoleAdmin)
	authRouter.POST("/api/admin/buckets/save", handlers.BucketSave, models.RoleAdmin)

	return router
}
