package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"marketplace-service/internal/metrics"
	"marketplace-service/internal/service"
)

// Handler delivers one claimed queue item.
type Handler interface {
	Process(ctx context.Context, id string) error
}

type Pool struct {
	queue      service.Queue
	handler    Handler
	workers    int
	claimDelay time.Duration
	log        *zap.Logger
}

func NewPool(queue service.Queue, handler Handler, workers int, claimDelay time.Duration, log *zap.Logger) *Pool {
	if workers <= 0 {
		workers = 4
	}
	if claimDelay <= 0 {
		claimDelay = 5 * time.Second
	}
	return &Pool{
		queue:      queue,
		handler:    handler,
		workers:    workers,
		claimDelay: claimDelay,
		log:        log,
	}
}

// Run claims ids until ctx is cancelled and waits for in-flight deliveries.
func (p *Pool) Run(ctx context.Context) {
	p.log.Info("worker pool started", zap.Int("workers", p.workers))

	idCh := make(chan string)
	done := make(chan struct{})

	for i := 0; i < p.workers; i++ {
		go func(n int) {
			defer func() { done <- struct{}{} }()
			for id := range idCh {
				p.handle(ctx, n, id)
			}
		}(i + 1)
	}

	p.listen(ctx, idCh)
	close(idCh)
	for i := 0; i < p.workers; i++ {
		<-done
	}
	p.log.Info("worker pool stopped")
}

func (p *Pool) listen(ctx context.Context, idCh chan<- string) {
	for {
		if ctx.Err() != nil {
			return
		}
		id, err := p.queue.ClaimBlocking(ctx, p.claimDelay)
		if err != nil {
			// timeout / redis.Nil / ctx cancel: не фатально
			continue
		}
		select {
		case idCh <- id:
		case <-ctx.Done():
			return
		}
	}
}

func (p *Pool) handle(ctx context.Context, n int, id string) {
	metrics.WorkerJobsActive.Inc()
	defer metrics.WorkerJobsActive.Dec()

	if err := p.handler.Process(ctx, id); err != nil {
		p.log.Warn("process notification", zap.Int("worker", n), zap.String("id", id), zap.Error(err))
	}

	// Доставка не повторяется: ACK в любом случае.
	// Если воркер упал до ACK, reaper вернёт id в очередь.
	if err := p.queue.Ack(context.WithoutCancel(ctx), id); err != nil {
		p.log.Error("ack notification", zap.Int("worker", n), zap.String("id", id), zap.Error(err))
	}
}

// Reap periodically moves claims older than visibility back to their lanes
// until ctx is done.
func Reap(ctx context.Context, queue service.Queue, every, visibility time.Duration, batch int64, log *zap.Logger) {
	if every <= 0 {
		every = 30 * time.Second
	}
	if visibility <= 0 {
		visibility = 5 * time.Minute
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := queue.RequeueStale(ctx, visibility, batch)
			if err != nil {
				log.Warn("requeue stale claims", zap.Error(err))
				continue
			}
			if n > 0 {
				metrics.QueueRequeued.Add(float64(n))
				log.Info("requeued stale claims", zap.Int64("count", n))
			}
		}
	}
}
