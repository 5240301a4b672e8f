package ws_test

import (
	"sync"
	"testing"

	"payflow/internal/ws"

	"github.com/stretchr/testify/require"
)

func TestHub_BroadcastReachesEveryPayerSession(t *testing.T) {
	hub := ws.NewHub()
	c1 := &ws.Client{PayerID: "u1", Send: make(chan []byte, 1)}
	c2 := &ws.Client{PayerID: "u1", Send: make(chan []byte, 1)}
	other := &ws.Client{PayerID: "u2", Send: make(chan []byte, 1)}
	hub.Register(c1)
	hub.Register(c2)
	hub.Register(other)

	hub.BroadcastToPayer("u1", map[string]string{"type": "PAYMENT_CONFIRMED"})

	require.Len(t, c1.Send, 1)
	require.Len(t, c2.Send, 1)
	require.Empty(t, other.Send)
}

func TestHub_CloseIsIdempotent(t *testing.T) {
	hub := ws.NewHub()
	c := &ws.Client{PayerID: "u1", Send: make(chan []byte, 1)}
	hub.Register(c)

	c.Close()
	c.Close()
	require.Zero(t, hub.ClientCount())

	// A closed client no longer receives broadcasts.
	hub.BroadcastToPayer("u1", map[string]string{"type": "PAYMENT_CONFIRMED"})
	_, open := <-c.Send
	require.False(t, open)
}

// Closing a client while broadcasts to the same payer are in flight must not
// panic with a send on a closed channel.
func TestHub_ConcurrentBroadcastAndClose(t *testing.T) {
	hub := ws.NewHub()
	const sessions = 32
	clients := make([]*ws.Client, sessions)
	for i := range clients {
		clients[i] = &ws.Client{PayerID: "u1", Send: make(chan []byte, 1)}
		hub.Register(clients[i])
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			hub.BroadcastToPayer("u1", map[string]string{"type": "PAYMENT_CONFIRMED"})
		}
	}()
	go func() {
		defer wg.Done()
		for _, c := range clients {
			c.Close()
		}
	}()
	wg.Wait()

	require.Zero(t, hub.ClientCount())
}
