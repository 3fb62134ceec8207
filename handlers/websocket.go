package handlers

import (
	"circle/config"
	"circle/events"
	"circle/models"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	socketWriteWait = 10 * time.Second
	socketReadLimit = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     checkOrigin,
}

func checkOrigin(r *http.Request) bool {
	origins := config.CORSOrigins()
	origin := r.Header.Get("Origin")
	return origin == "" || slices.Contains(origins, "*") || slices.Contains(origins, origin)
}

// Events streams the user's change notifications. The only message
// understood from the client is "ping", answered with "pong".
func Events(c *gin.Context, user *models.User) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.S().Warnf("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(socketReadLimit)

	client := events.Subscribe(user.ID)
	defer events.Unsubscribe(user.ID, client)

	// All writes go through the pump, gorilla allows a single writer
	pumpDone := make(chan struct{})
	go func() {
		defer close(pumpDone)
		err := client.Pump(func(data []byte) error {
			_ = conn.SetWriteDeadline(time.Now().Add(socketWriteWait))
			return conn.WriteMessage(websocket.TextMessage, data)
		})
		if err != nil {
			zap.S().Debugf("websocket write, user %d: %v", user.ID, err)
			// Unblocks the read below
			conn.Close()
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if string(message) == "ping" {
			client.Deliver([]byte("pong"))
		}
	}
	client.Close()
	<-pumpDone
}
