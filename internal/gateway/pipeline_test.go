package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/udisondev/mmogate/internal/config"
	"github.com/udisondev/mmogate/internal/event"
)

// Scenario: events pushed on the queues reach the handler through the pool,
// and closing the queues drains and stops the pipeline.
func TestPipelineDeliversAndDrains(t *testing.T) {
	env := newHandlerEnv()
	queues := NewQueues()
	pool := NewWorkerPool(2)
	pipeline := NewPipeline(queues, pool, env.handler, config.DispatchConfig{
		BatchSize:     10,
		PingBatchSize: 1,
	})

	done := make(chan struct{})
	go func() {
		pipeline.Run(context.Background())
		close(done)
	}()

	conn := pipeConn(t)
	const pings = 5
	for range pings {
		if err := queues.Ping.Push(event.Event{
			Type:     event.TypePingClient,
			ClientID: 42,
			Conn:     conn,
			Payload:  event.Empty{},
		}); err != nil {
			t.Fatalf("Push() error = %v", err)
		}
	}

	waitForCond(t, func() bool {
		env.sender.mu.Lock()
		defer env.sender.mu.Unlock()
		return len(env.sender.sent[conn]) == pings
	})

	queues.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pipeline did not stop after queues closed")
	}
}
