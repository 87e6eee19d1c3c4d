package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/sacco_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/sacco_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/sacco_ledger/internal/core/ports/services"
)

// SystemUserID stamps updates made by scheduled jobs.
const SystemUserID = "system"

type maintenanceService struct {
	BaseService
	transactor portsrepo.TransactionManager
	loanRepo   portsrepo.LoanMaintenance
}

// NewMaintenanceService creates the daily loan housekeeping service.
func NewMaintenanceService(transactor portsrepo.TransactionManager, loanRepo portsrepo.LoanMaintenance) portssvc.MaintenanceSvc {
	return &maintenanceService{transactor: transactor, loanRepo: loanRepo}
}

var _ portssvc.MaintenanceSvc = (*maintenanceService)(nil)

// RunDailyMaintenance flags overdue installments and matures loans past their final due date.
// Both updates only touch rows not yet in the target state, so reruns change nothing.
func (s *maintenanceService) RunDailyMaintenance(ctx context.Context, asOf time.Time) (*domain.MaintenanceReport, error) {
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	report := &domain.MaintenanceReport{AsOf: asOf}

	err := s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		overdue, err := s.loanRepo.MarkOverdueInstallments(txCtx, asOf)
		if err != nil {
			return fmt.Errorf("failed to mark overdue installments: %w", err)
		}
		matured, err := s.loanRepo.MarkMaturedLoans(txCtx, asOf, SystemUserID)
		if err != nil {
			return fmt.Errorf("failed to mark matured loans: %w", err)
		}
		report.OverdueInstallments = overdue
		report.MaturedLoans = matured
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Daily maintenance failed", slog.Time("as_of", asOf))
		return nil, err
	}

	s.LogInfo(ctx, "Daily maintenance completed",
		slog.Time("as_of", asOf),
		slog.Int64("overdue_installments", report.OverdueInstallments),
		slog.Int64("matured_loans", report.MaturedLoans))
	return report, nil
}
