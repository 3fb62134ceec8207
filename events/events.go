// Package events keeps the websocket subscribers of every user and fans
// out change notifications to them.
package events

import (
	"encoding/json"
	"strconv"
	"sync"

	cmap "github.com/orcaman/concurrent-map/v2"
	"go.uber.org/zap"
)

const sendBuffer = 32

const (
	TypeMemory = "memory"
	TypeMedia  = "media"
	TypeLink   = "link"

	ActionCreated   = "created"
	ActionUpdated   = "updated"
	ActionDeleted   = "deleted"
	ActionLinked    = "linked"
	ActionUnlinked  = "unlinked"
	ActionReordered = "reordered"
)

type Event struct {
	Type     string `json:"type"`
	Action   string `json:"action"`
	ID       uint64 `json:"id"`
	MemoryID uint64 `json:"memory_id,omitempty"`
}

type Client struct {
	send chan []byte
	done chan struct{}
	once sync.Once
}

// Clients is needed as a user may be connected more than once
type Clients []*Client

var (
	connected = cmap.New[Clients]()
)

func userKey(userID uint64) string {
	return strconv.FormatUint(userID, 10)
}

func Subscribe(userID uint64) *Client {
	c := &Client{
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
	connected.Upsert(userKey(userID), Clients{c}, func(exist bool, valueInMap, newValue Clients) Clients {
		if exist {
			return append(valueInMap, c)
		}
		return newValue
	})
	return c
}

func Unsubscribe(userID uint64, c *Client) {
	c.Close()
	key := userKey(userID)
	connected.Upsert(key, Clients{}, func(exist bool, valueInMap, newValue Clients) Clients {
		if !exist {
			return newValue
		}
		for _, oc := range valueInMap {
			if oc == c {
				continue
			}
			newValue = append(newValue, oc)
		}
		return newValue
	})
	connected.RemoveCb(key, func(key string, clients Clients, exists bool) bool {
		return exists && len(clients) == 0
	})
}

// Connected returns the number of open connections for the user
func Connected(userID uint64) int {
	clients, _ := connected.Get(userKey(userID))
	return len(clients)
}

// Publish sends the event to all connections of the user, returns how many got it.
// Slow clients miss events instead of blocking the caller.
func Publish(userID uint64, e Event) int {
	clients, ok := connected.Get(userKey(userID))
	if !ok {
		return 0
	}
	data, err := json.Marshal(e)
	if err != nil {
		zap.S().Errorf("Event marshal error: %v", err)
		return 0
	}
	sent := 0
	for _, c := range clients {
		if c.Deliver(data) {
			sent++
		}
	}
	return sent
}

func (c *Client) Deliver(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) Close() {
	c.once.Do(func() { close(c.done) })
}

func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Pump writes the queued messages until the client is closed or a write fails
func (c *Client) Pump(write func([]byte) error) error {
	for {
		select {
		case <-c.done:
			return nil
		case data := <-c.send:
			if err := write(data); err != nil {
				c.Close()
				return err
			}
		}
	}
}
