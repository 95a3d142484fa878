package leasing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentfolio/backend/internal/domain/shared"
)

// Sweep job names
const (
	SweepJobLeaseExpiry = "lease_expiry"
	SweepJobPaymentDue  = "payment_due"
)

// SweepRun records one completed execution of a daily sweep job. A unique
// (job_name, run_date) pair makes re-running a sweep on the same day a no-op.
type SweepRun struct {
	shared.BaseEntity
	JobName       string    `json:"job_name" gorm:"type:varchar(50);not null;uniqueIndex:idx_sweep_run_job_date,priority:1"`
	RunDate       time.Time `json:"run_date" gorm:"type:date;not null;uniqueIndex:idx_sweep_run_job_date,priority:2"`
	ItemsScanned  int       `json:"items_scanned" gorm:"not null;default:0"`
	ItemsAffected int       `json:"items_affected" gorm:"not null;default:0"`
	CompletedAt   time.Time `json:"completed_at" gorm:"not null"`
}

// TableName returns the table name for GORM
func (SweepRun) TableName() string {
	return "sweep_runs"
}

// NewSweepRun records a completed sweep execution for a day
func NewSweepRun(jobName string, runDate time.Time, scanned, affected int) *SweepRun {
	return &SweepRun{
		BaseEntity:    shared.NewBaseEntity(),
		JobName:       jobName,
		RunDate:       DateOnly(runDate),
		ItemsScanned:  scanned,
		ItemsAffected: affected,
		CompletedAt:   time.Now(),
	}
}

// SweepRunRepository defines the interface for sweep run persistence
type SweepRunRepository interface {
	// HasRun reports whether the job already completed for the given day
	HasRun(ctx context.Context, jobName string, runDate time.Time) (bool, error)

	// Record saves a completed sweep run; a duplicate (job, day) pair fails
	// with shared.ErrAlreadyExists
	Record(ctx context.Context, run *SweepRun) error

	// FindRecent returns the most recent runs for a job, newest first
	FindRecent(ctx context.Context, jobName string, limit int) ([]SweepRun, error)

	// Delete removes a sweep run record
	Delete(ctx context.Context, id uuid.UUID) error
}
