package repository

import (
	"context"

	"github.com/iconidentify/mediagrab/internal/domain"
)

// DeliveryRepository keeps finished deliveries.
type DeliveryRepository interface {
	// Record stores a finished delivery.
	Record(ctx context.Context, d *domain.Delivery) error

	// List returns up to limit deliveries, newest first. limit <= 0 returns all kept.
	List(ctx context.Context, limit int) ([]*domain.Delivery, error)

	// Stats returns counters over every delivery recorded since startup.
	Stats(ctx context.Context) (*DeliveryStats, error)
}

// DeliveryStats contains delivery counters.
type DeliveryStats struct {
	Total       int                      `json:"total"`
	Inline      int                      `json:"inline"`
	RemoteLink  int                      `json:"remote_link"`
	Failed      int                      `json:"failed"`
	ByErrorKind map[domain.ErrorKind]int `json:"failed_by_kind"`
	InlineBytes int64                    `json:"inline_bytes"`
	Kept        int                      `json:"kept"`
}
