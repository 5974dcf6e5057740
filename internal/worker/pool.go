package worker

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ErrShutdownTimeout is returned when workers don't stop within timeout.
var ErrShutdownTimeout = errors.New("worker pool shutdown timed out")

// Handler processes a single update.
type Handler interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update)
}

// Pool drains an update channel with a fixed number of workers.
type Pool struct {
	workers int
	handler Handler
	logger  *slog.Logger

	active    atomic.Int64
	processed atomic.Int64
	panics    atomic.Int64

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// Config holds worker pool configuration.
type Config struct {
	Workers int
}

// Stats is a snapshot of pool counters.
type Stats struct {
	Workers   int   `json:"workers"`
	Active    int64 `json:"active"`
	Processed int64 `json:"processed"`
	Panics    int64 `json:"panics"`
}

// NewPool creates a new worker pool. The parent context is handed to every
// handler call and cancelling it stops the workers.
func NewPool(parent context.Context, cfg Config, handler Handler, logger *slog.Logger) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}

	ctx, cancel := context.WithCancel(parent)

	return &Pool{
		workers: cfg.Workers,
		handler: handler,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches all workers reading from updates.
func (p *Pool) Start(updates <-chan tgbotapi.Update) {
	p.logger.Info("starting worker pool", "workers", p.workers)

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i, updates)
	}
}

// Stop cancels in-flight work and waits for workers to return.
func (p *Pool) Stop(timeout time.Duration) error {
	p.logger.Info("stopping worker pool")
	p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("worker pool stopped gracefully")
		return nil
	case <-time.After(timeout):
		return ErrShutdownTimeout
	}
}

// Stats returns the current pool counters.
func (p *Pool) Stats() Stats {
	return Stats{
		Workers:   p.workers,
		Active:    p.active.Load(),
		Processed: p.processed.Load(),
		Panics:    p.panics.Load(),
	}
}

func (p *Pool) worker(id int, updates <-chan tgbotapi.Update) {
	defer p.wg.Done()

	logger := p.logger.With("worker_id", id)
	logger.Debug("worker started")

	for {
		select {
		case <-p.ctx.Done():
			logger.Debug("worker stopping")
			return
		case update, ok := <-updates:
			if !ok {
				logger.Debug("update channel closed")
				return
			}
			// select picks at random when both cases are ready
			if p.ctx.Err() != nil {
				logger.Debug("worker stopping, update dropped", "update_id", update.UpdateID)
				return
			}
			p.handle(logger, update)
		}
	}
}

// handle runs one update. A panicking handler is logged and the worker keeps going.
func (p *Pool) handle(logger *slog.Logger, update tgbotapi.Update) {
	p.active.Add(1)
	defer func() {
		p.active.Add(-1)
		p.processed.Add(1)
		if r := recover(); r != nil {
			p.panics.Add(1)
			logger.Error("update handler panicked",
				"update_id", update.UpdateID,
				"panic", r,
				"stack", string(debug.Stack()),
			)
		}
	}()

	p.handler.HandleUpdate(p.ctx, update)
}
