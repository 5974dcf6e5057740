package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockHandler records handled update IDs.
type mockHandler struct {
	mu      sync.Mutex
	handled []int
	block   chan struct{}
	panicOn int
}

func (m *mockHandler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
		}
	}
	if m.panicOn != 0 && update.UpdateID == m.panicOn {
		panic("boom")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handled = append(m.handled, update.UpdateID)
}

func (m *mockHandler) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.handled)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestNewPool(t *testing.T) {
	pool := NewPool(context.Background(), Config{Workers: 3}, &mockHandler{}, testLogger())

	if pool == nil {
		t.Fatal("pool should not be nil")
	}
	if pool.workers != 3 {
		t.Errorf("workers = %d, want 3", pool.workers)
	}
}

func TestNewPool_DefaultValues(t *testing.T) {
	for _, workers := range []int{0, -1} {
		pool := NewPool(context.Background(), Config{Workers: workers}, &mockHandler{}, testLogger())
		if pool.workers != 4 {
			t.Errorf("Workers=%d should default to 4, got %d", workers, pool.workers)
		}
	}
}

func TestPool_ProcessesAllUpdates(t *testing.T) {
	handler := &mockHandler{}
	pool := NewPool(context.Background(), Config{Workers: 3}, handler, testLogger())

	updates := make(chan tgbotapi.Update, 10)
	for i := 1; i <= 10; i++ {
		updates <- tgbotapi.Update{UpdateID: i}
	}

	pool.Start(updates)
	waitFor(t, func() bool { return handler.count() == 10 })

	if err := pool.Stop(time.Second); err != nil {
		t.Errorf("Stop should not error: %v", err)
	}
	if got := pool.Stats().Processed; got != 10 {
		t.Errorf("Processed = %d, want 10", got)
	}
}

func TestPool_ConcurrentHandling(t *testing.T) {
	handler := &mockHandler{block: make(chan struct{})}
	pool := NewPool(context.Background(), Config{Workers: 2}, handler, testLogger())

	updates := make(chan tgbotapi.Update, 2)
	updates <- tgbotapi.Update{UpdateID: 1}
	updates <- tgbotapi.Update{UpdateID: 2}

	pool.Start(updates)

	// both updates are in flight at the same time
	waitFor(t, func() bool { return pool.Stats().Active == 2 })

	close(handler.block)
	waitFor(t, func() bool { return handler.count() == 2 })
	pool.Stop(time.Second)
}

func TestPool_StopsWhenChannelClosed(t *testing.T) {
	pool := NewPool(context.Background(), Config{Workers: 2}, &mockHandler{}, testLogger())

	updates := make(chan tgbotapi.Update)
	pool.Start(updates)
	close(updates)

	done := make(chan struct{})
	go func() {
		pool.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("workers should exit when the update channel closes")
	}
}

func TestPool_StopCancelsInFlight(t *testing.T) {
	handler := &mockHandler{block: make(chan struct{})}
	pool := NewPool(context.Background(), Config{Workers: 1}, handler, testLogger())

	updates := make(chan tgbotapi.Update, 1)
	updates <- tgbotapi.Update{UpdateID: 1}
	pool.Start(updates)
	waitFor(t, func() bool { return pool.Stats().Active == 1 })

	// the handler only returns once its context is cancelled
	if err := pool.Stop(time.Second); err != nil {
		t.Errorf("Stop should not error: %v", err)
	}
}

func TestPool_DropsBufferedUpdatesAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	handler := &mockHandler{}
	pool := NewPool(ctx, Config{Workers: 1}, handler, testLogger())

	updates := make(chan tgbotapi.Update, 200)
	for i := 1; i <= 200; i++ {
		updates <- tgbotapi.Update{UpdateID: i}
	}
	pool.Start(updates)

	if err := pool.Stop(time.Second); err != nil {
		t.Fatalf("Stop should not error: %v", err)
	}
	if got := handler.count(); got != 0 {
		t.Errorf("handled %d updates after cancel, want 0", got)
	}
	if got := pool.Stats().Processed; got != 0 {
		t.Errorf("Processed = %d, want 0", got)
	}
}

func TestPool_RecoversFromPanic(t *testing.T) {
	handler := &mockHandler{panicOn: 1}
	pool := NewPool(context.Background(), Config{Workers: 1}, handler, testLogger())

	updates := make(chan tgbotapi.Update, 2)
	updates <- tgbotapi.Update{UpdateID: 1}
	updates <- tgbotapi.Update{UpdateID: 2}
	pool.Start(updates)

	waitFor(t, func() bool { return handler.count() == 1 })
	pool.Stop(time.Second)

	stats := pool.Stats()
	if stats.Panics != 1 {
		t.Errorf("Panics = %d, want 1", stats.Panics)
	}
	if stats.Processed != 2 {
		t.Errorf("Processed = %d, want 2", stats.Processed)
	}
}

func TestPool_StopTimeout(t *testing.T) {
	pool := NewPool(context.Background(), Config{Workers: 1}, &mockHandler{}, testLogger())

	// Override the pool's cancel to simulate workers that don't respond
	oldCancel := pool.cancel
	pool.cancel = func() {}

	// Add a fake worker count that will never decrement
	pool.wg.Add(1)

	err := pool.Stop(50 * time.Millisecond)

	oldCancel()
	pool.wg.Done()

	if !errors.Is(err, ErrShutdownTimeout) {
		t.Errorf("expected ErrShutdownTimeout, got %v", err)
	}
}

func TestErrShutdownTimeout(t *testing.T) {
	if ErrShutdownTimeout.Error() != "worker pool shutdown timed out" {
		t.Errorf("unexpected error message: %s", ErrShutdownTimeout.Error())
	}
}
