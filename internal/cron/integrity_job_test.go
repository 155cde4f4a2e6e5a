package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umarxon/delivera-backend/internal/integrity"
	"github.com/umarxon/delivera-backend/pkg/db/models"
	"github.com/umarxon/delivera-backend/pkg/logger"
)

type jobIntegrityService struct {
	report *integrity.Report
	err    error
	runs   int
}

func (f *jobIntegrityService) CheckLedger(ctx context.Context) (*integrity.Report, error) {
	f.runs++
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

func (f *jobIntegrityService) Repair(ctx context.Context, movementID uuid.UUID) (*models.CashMovement, error) {
	return nil, errors.New("not used")
}

func TestIntegrityJobRunsCheck(t *testing.T) {
	svc := &jobIntegrityService{report: &integrity.Report{}}
	job, err := NewIntegrityJob(svc, logger.New(logger.Options{ServiceName: "test"}))
	require.NoError(t, err)

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, svc.runs)
}

func TestIntegrityJobSurfacesScanError(t *testing.T) {
	svc := &jobIntegrityService{err: errors.New("db down")}
	job, err := NewIntegrityJob(svc, logger.New(logger.Options{ServiceName: "test"}))
	require.NoError(t, err)

	assert.Error(t, job.Run(context.Background()))
}

func TestIntegrityJobDoesNotFailOnIssues(t *testing.T) {
	svc := &jobIntegrityService{report: &integrity.Report{
		Issues: []integrity.Issue{{Kind: integrity.IssueMissingMovement}},
	}}
	job, err := NewIntegrityJob(svc, logger.New(logger.Options{ServiceName: "test"}))
	require.NoError(t, err)

	assert.NoError(t, job.Run(context.Background()))
}
