package repository

import (
	"context"
	"sync"

	"github.com/iconidentify/mediagrab/internal/domain"
)

// DefaultHistorySize is used when a non-positive capacity is requested.
const DefaultHistorySize = 500

// InMemoryDeliveryRepository implements DeliveryRepository with a bounded
// in-memory history. Counters cover all deliveries, not only the kept ones.
type InMemoryDeliveryRepository struct {
	mu       sync.RWMutex
	capacity int
	history  []*domain.Delivery // oldest first
	stats    DeliveryStats
}

// NewInMemoryDeliveryRepository creates a repository keeping at most capacity deliveries.
func NewInMemoryDeliveryRepository(capacity int) *InMemoryDeliveryRepository {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &InMemoryDeliveryRepository{
		capacity: capacity,
		history:  make([]*domain.Delivery, 0, capacity),
		stats: DeliveryStats{
			ByErrorKind: make(map[domain.ErrorKind]int),
		},
	}
}

// Record stores a finished delivery, evicting the oldest when full.
func (r *InMemoryDeliveryRepository) Record(ctx context.Context, d *domain.Delivery) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.history) == r.capacity {
		copy(r.history, r.history[1:])
		r.history = r.history[:len(r.history)-1]
	}
	r.history = append(r.history, d)

	r.stats.Total++
	switch d.Outcome {
	case domain.OutcomeInline:
		r.stats.Inline++
		r.stats.InlineBytes += d.Size
	case domain.OutcomeRemoteLink:
		r.stats.RemoteLink++
	case domain.OutcomeFailure:
		r.stats.Failed++
		r.stats.ByErrorKind[d.ErrorKind]++
	}

	return nil
}

// List returns up to limit deliveries, newest first.
func (r *InMemoryDeliveryRepository) List(ctx context.Context, limit int) ([]*domain.Delivery, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := len(r.history)
	if limit > 0 && limit < n {
		n = limit
	}

	result := make([]*domain.Delivery, 0, n)
	for i := len(r.history) - 1; i >= 0 && len(result) < n; i-- {
		result = append(result, r.history[i])
	}

	return result, nil
}

// Stats returns a copy of the delivery counters.
func (r *InMemoryDeliveryRepository) Stats(ctx context.Context) (*DeliveryStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := r.stats
	stats.Kept = len(r.history)
	stats.ByErrorKind = make(map[domain.ErrorKind]int, len(r.stats.ByErrorKind))
	for k, v := range r.stats.ByErrorKind {
		stats.ByErrorKind[k] = v
	}

	return &stats, nil
}

// Clear removes all deliveries and resets counters (useful for testing).
func (r *InMemoryDeliveryRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.history = make([]*domain.Delivery, 0, r.capacity)
	r.stats = DeliveryStats{ByErrorKind: make(map[domain.ErrorKind]int)}
}
