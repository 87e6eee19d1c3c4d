package services

import (
	"context"
	"time"

	"github.com/SscSPs/sacco_ledger/internal/core/domain"
)

// MaintenanceSvc runs the periodic loan housekeeping. Every run is safe to repeat.
type MaintenanceSvc interface {
	RunDailyMaintenance(ctx context.Context, asOf time.Time) (*domain.MaintenanceReport, error)
}
