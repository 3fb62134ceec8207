package events

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPublishReachesAllConnectionsOfTheUser(t *testing.T) {
	first := Subscribe(1)
	second := Subscribe(1)
	other := Subscribe(2)
	defer Unsubscribe(1, first)
	defer Unsubscribe(1, second)
	defer Unsubscribe(2, other)

	assert.Equal(t, 2, Connected(1))
	assert.Equal(t, 2, Publish(1, Event{Type: TypeMedia, Action: ActionCreated, ID: 7}))

	for _, c := range []*Client{first, second} {
		data := <-c.send
		var e Event
		require.NoError(t, json.Unmarshal(data, &e))
		assert.Equal(t, Event{Type: TypeMedia, Action: ActionCreated, ID: 7}, e)
	}
	assert.Len(t, other.send, 0)
}

func TestUnsubscribe(t *testing.T) {
	c := Subscribe(3)
	Unsubscribe(3, c)

	assert.Equal(t, 0, Connected(3))
	assert.Equal(t, 0, Publish(3, Event{Type: TypeMemory, Action: ActionDeleted, ID: 1}))
	assert.False(t, c.Deliver([]byte("x")))
	// Closing twice is fine
	c.Close()
}

func TestSlowClientDoesNotBlock(t *testing.T) {
	c := Subscribe(4)
	defer Unsubscribe(4, c)

	for i := 0; i < sendBuffer; i++ {
		require.Equal(t, 1, Publish(4, Event{Type: TypeLink, Action: ActionLinked, ID: uint64(i)}))
	}
	assert.Equal(t, 0, Publish(4, Event{Type: TypeLink, Action: ActionLinked, ID: 999}))
}

func TestPump(t *testing.T) {
	c := Subscribe(5)
	var (
		mu       sync.Mutex
		received []string
		wg       sync.WaitGroup
		got      = make(chan struct{}, 2)
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := c.Pump(func(data []byte) error {
			mu.Lock()
			received = append(received, string(data))
			mu.Unlock()
			got <- struct{}{}
			return nil
		})
		assert.NoError(t, err)
	}()

	c.Deliver([]byte("ping"))
	c.Deliver([]byte("pong"))
	<-got
	<-got
	Unsubscribe(5, c)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"ping", "pong"}, received)
}

func TestPumpStopsOnWriteError(t *testing.T) {
	c := Subscribe(6)
	defer Unsubscribe(6, c)
	done := make(chan error)
	go func() {
		done <- c.Pump(func([]byte) error { return errors.New("broken pipe") })
	}()
	c.Deliver([]byte("hello"))
	assert.EqualError(t, <-done, "broken pipe")
	assert.False(t, c.Deliver([]byte("again")))
}
