package cron

import (
	"context"
	"fmt"

	"github.com/umarxon/delivera-backend/internal/integrity"
	"github.com/umarxon/delivera-backend/pkg/logger"
)

// IntegrityJob runs the read-only ledger check and surfaces the result in the
// logs. It never repairs anything on its own.
type IntegrityJob struct {
	svc  integrity.Service
	logg *logger.Logger
}

// NewIntegrityJob builds the scheduled ledger check.
func NewIntegrityJob(svc integrity.Service, logg *logger.Logger) (*IntegrityJob, error) {
	if svc == nil {
		return nil, fmt.Errorf("integrity service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &IntegrityJob{svc: svc, logg: logg}, nil
}

// Name identifies the job in logs and metrics.
func (j *IntegrityJob) Name() string { return "ledger_integrity" }

// Run scans the ledger and reports what it found.
func (j *IntegrityJob) Run(ctx context.Context) error {
	report, err := j.svc.CheckLedger(ctx)
	if err != nil {
		return fmt.Errorf("ledger check: %w", err)
	}

	reportCtx := j.logg.WithFields(ctx, map[string]any{
		"movements": report.MovementsScanned,
		"expenses":  report.ExpensesScanned,
		"balance":   report.Balance,
		"issues":    len(report.Issues),
	})
	if len(report.Issues) > 0 {
		j.logg.Warn(reportCtx, "ledger integrity issues found")
		return nil
	}
	j.logg.Info(reportCtx, "ledger is consistent")
	return nil
}
