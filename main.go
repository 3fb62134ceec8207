package main

import (
	"circle/ai"
	"circle/config"
	"circle/db"
	"circle/models"
	"circle/processing"
	"circle/storage"
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	gormsessions "github.com/gin-contrib/sessions/gorm"
	"github.com/gin-gonic/autotls"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	sessionExpirationTime = 30 * 86400 // Drafts are kept in the DB, the session only points at them
	shutdownTimeout       = 15 * time.Second
)

func newLogger() *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if config.DEBUG_MODE {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	return logger
}

func main() {
	logger := newLogger()
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	db.Init()
	storage.Init()
	models.Init()
	processing.Init()
	ai.Init()
	if config.SCAN_UPLOADS {
		if _, err := processing.ScanUploads(); err != nil {
			zap.S().Errorf("Upload scan failed: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go processing.StartProcessing(ctx)

	if !config.DEBUG_MODE {
		gin.SetMode(gin.ReleaseMode)
	}
	store := gormsessions.NewStore(db.Instance, true, []byte(config.SESSION_KEY))
	store.Options(sessions.Options{Path: "/", MaxAge: sessionExpirationTime, HttpOnly: true})
	router := setupRouter(store)

	if config.TLS_DOMAINS != "" {
		err := autotls.Run(router, strings.Split(config.TLS_DOMAINS, ",")...)
		zap.S().Fatalf("Server stopped: %v", err)
	}

	server := &http.Server{
		Addr:    config.BIND_ADDRESS,
		Handler: router,
	}
	go func() {
		zap.S().Infof("Listening on %s", config.BIND_ADDRESS)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.S().Fatalf("Server stopped: %v", err)
		}
	}()
	<-ctx.Done()
	zap.S().Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zap.S().Errorf("Shutdown error: %v", err)
	}
}
