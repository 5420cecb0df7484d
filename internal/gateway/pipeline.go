package gateway

import (
	"context"
	"sync"

	"github.com/udisondev/mmogate/internal/config"
	"github.com/udisondev/mmogate/internal/event"
)

// Pipeline drains the three event queues and fans the events across the
// worker pool. One dispatch loop per queue; each drains a batch, submits
// every event under its client's shard key and goes back for more.
type Pipeline struct {
	queues  *Queues
	pool    *WorkerPool
	handler *Handler
	cfg     config.DispatchConfig

	wg sync.WaitGroup
}

// NewPipeline creates a pipeline over the given queues and pool.
func NewPipeline(queues *Queues, pool *WorkerPool, handler *Handler, cfg config.DispatchConfig) *Pipeline {
	return &Pipeline{
		queues:  queues,
		pool:    pool,
		handler: handler,
		cfg:     cfg,
	}
}

// Run starts the three dispatch loops and blocks until every queue closes
// and the pool drains. Cancel ctx and close the queues to stop it.
func (p *Pipeline) Run(ctx context.Context) {
	p.wg.Add(3)
	go p.drain(ctx, p.queues.Client, p.cfg.BatchSize)
	go p.drain(ctx, p.queues.Chunk, p.cfg.BatchSize)
	go p.drain(ctx, p.queues.Ping, p.cfg.PingBatchSize)
	p.wg.Wait()
	p.pool.Close()
}

func (p *Pipeline) drain(ctx context.Context, q *event.Queue, batchSize int) {
	defer p.wg.Done()

	batch := make([]event.Event, 0, batchSize)
	for {
		if !q.PopBatch(&batch, batchSize) {
			return
		}
		for _, e := range batch {
			e := e
			p.pool.Submit(shardKey(e.ClientID, e.Conn), func() {
				p.handler.Handle(ctx, e)
			})
		}
	}
}
