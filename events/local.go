package events

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// LocalPublisher delivers events to in-process handlers on their own
// goroutines. It is used when no Redis server is configured.
type LocalPublisher struct {
	handlers []Handler
	log      *zap.Logger
	wg       sync.WaitGroup
}

func NewLocalPublisher(log *zap.Logger, handlers ...Handler) *LocalPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &LocalPublisher{handlers: handlers, log: log}
}

func (p *LocalPublisher) PublishGigAllocated(ctx context.Context, event GigAllocated) error {
	// Handlers outlive the request that triggered them
	handlerCtx := context.WithoutCancel(ctx)
	for _, handler := range p.handlers {
		p.wg.Add(1)
		go func(h Handler) {
			defer p.wg.Done()
			if err := h(handlerCtx, event); err != nil {
				p.log.Error("gig allocated handler failed", zap.Uint("gig_id", event.GigID), zap.Error(err))
			}
		}(handler)
	}
	return nil
}

// Wait blocks until every handler started so far has returned.
func (p *LocalPublisher) Wait() {
	p.wg.Wait()
}
