// Package worker runs the background case pipeline.
package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/frontline-service/internal/pipeline"
)

// Pool fans submitted case IDs out to a fixed set of goroutines, each
// running the pipeline to a terminal or notified state. Two workers never
// process the same enqueued ID; stages for one case run on one goroutine.
type Pool struct {
	orchestrator *pipeline.Orchestrator
	logger       *zap.Logger
	queue        chan string
	wg           sync.WaitGroup
	cancel       context.CancelFunc
	stopOnce     sync.Once
}

// NewPool constructs a pool with the given worker count and queue depth.
func NewPool(orchestrator *pipeline.Orchestrator, workers, queueDepth int, logger *zap.Logger) *Pool {
	if workers <= 0 {
		workers = 4
	}
	if queueDepth <= 0 {
		queueDepth = 256
	}
	p := &Pool{
		orchestrator: orchestrator,
		logger:       logger,
		queue:        make(chan string, queueDepth),
	}
	p.start(workers)
	return p
}

func (p *Pool) start(workers int) {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.run(ctx, i)
	}
}

func (p *Pool) run(ctx context.Context, id int) {
	defer p.wg.Done()
	for caseID := range p.queue {
		if err := p.orchestrator.Process(ctx, caseID); err != nil {
			p.logger.Error("pipeline run failed",
				zap.Int("worker", id),
				zap.String("case_id", caseID),
				zap.Error(err))
		}
	}
}

// Enqueue hands a case to the pool without blocking. It reports false when
// the queue is full or the pool has stopped.
func (p *Pool) Enqueue(caseID string) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	select {
	case p.queue <- caseID:
		return true
	default:
		return false
	}
}

// Stop drains the queue and waits for in-flight cases to finish. Further
// Enqueue calls return false.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		close(p.queue)
		p.wg.Wait()
		p.cancel()
	})
}
