package utils

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxLoggedBody = 1024

type errorLogWriter struct {
	gin.ResponseWriter
	request string
}

func (w *errorLogWriter) Write(b []byte) (int, error) {
	if status := w.Status(); status >= 400 {
		body := b
		if len(body) > maxLoggedBody {
			body = body[:maxLoggedBody]
		}
		zap.L().Debug("error response",
			zap.String("request", w.request),
			zap.Int("status", status),
			zap.ByteString("body", body),
		)
	}
	return w.ResponseWriter.Write(b)
}

// ErrorLogMiddleware logs the body of every failed response, bodies are unreadable under gzip
func ErrorLogMiddleware(c *gin.Context) {
	c.Writer = &errorLogWriter{ResponseWriter: c.Writer, request: c.Request.Method + " " + c.Request.URL.Path}
	c.Next()
}
