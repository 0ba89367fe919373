package httpapi

import (
	"context"
	"testing"
	"time"
)

func TestHubRunStopsOnCancel(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()

	// A registered client's send channel is closed on shutdown, which
	// terminates its write pump.
	client := &Client{hub: h, send: make(chan []byte, 1)}
	h.register <- client

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancellation")
	}

	if _, ok := <-client.send; ok {
		t.Error("client send channel still open after shutdown")
	}
}

func TestBroadcastDropsWhenSaturated(t *testing.T) {
	h := NewHub()

	// Without a running hub the broadcast buffer fills; further sends
	// must not block.
	for i := 0; i < clientBuffer+5; i++ {
		h.Broadcast([]byte("snapshot"))
	}

	if got := len(h.broadcast); got != clientBuffer {
		t.Errorf("broadcast queue length = %d, want %d", got, clientBuffer)
	}
}
