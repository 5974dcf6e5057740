package handler

import (
	"context"
	"io"
	"log/slog"

	"github.com/iconidentify/mediagrab/internal/domain"
	"github.com/iconidentify/mediagrab/internal/repository"
	"github.com/iconidentify/mediagrab/internal/worker"
)

// testLogger returns a silent logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockDeliveryRepository is a test implementation of repository.DeliveryRepository.
type mockDeliveryRepository struct {
	stats     *repository.DeliveryStats
	statsErr  error
	list      []*domain.Delivery
	listErr   error
	lastLimit int
}

func newMockDeliveryRepository() *mockDeliveryRepository {
	return &mockDeliveryRepository{
		stats: &repository.DeliveryStats{ByErrorKind: map[domain.ErrorKind]int{}},
	}
}

func (m *mockDeliveryRepository) Record(ctx context.Context, d *domain.Delivery) error {
	m.list = append(m.list, d)
	return nil
}

func (m *mockDeliveryRepository) List(ctx context.Context, limit int) ([]*domain.Delivery, error) {
	m.lastLimit = limit
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.list, nil
}

func (m *mockDeliveryRepository) Stats(ctx context.Context) (*repository.DeliveryStats, error) {
	if m.statsErr != nil {
		return nil, m.statsErr
	}
	return m.stats, nil
}

type mockPool struct {
	stats worker.Stats
}

func (m *mockPool) Stats() worker.Stats {
	return m.stats
}
