package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rentfolio/backend/internal/domain/leasing"
	"github.com/rentfolio/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormSweepRunRepository implements SweepRunRepository using GORM
type GormSweepRunRepository struct {
	db *gorm.DB
}

// NewGormSweepRunRepository creates a new GormSweepRunRepository
func NewGormSweepRunRepository(db *gorm.DB) *GormSweepRunRepository {
	return &GormSweepRunRepository{db: db}
}

// HasRun reports whether the job already completed for the given day
func (r *GormSweepRunRepository) HasRun(ctx context.Context, jobName string, runDate time.Time) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&leasing.SweepRun{}).
		Where("job_name = ? AND run_date = ?", jobName, leasing.DateOnly(runDate)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Record saves a completed sweep run. The unique (job_name, run_date) index
// turns a concurrent duplicate into shared.ErrAlreadyExists.
func (r *GormSweepRunRepository) Record(ctx context.Context, run *leasing.SweepRun) error {
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// FindRecent returns the most recent runs for a job, newest first
func (r *GormSweepRunRepository) FindRecent(ctx context.Context, jobName string, limit int) ([]leasing.SweepRun, error) {
	if limit < 1 {
		limit = 10
	}
	var runs []leasing.SweepRun
	if err := r.db.WithContext(ctx).
		Where("job_name = ?", jobName).
		Order("run_date DESC").
		Limit(limit).
		Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

// Delete removes a sweep run record
func (r *GormSweepRunRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&leasing.SweepRun{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// isUniqueViolation reports whether err is a unique constraint violation.
// Checks the postgres error code, falling back to message matching for other
// drivers (sqlite in tests).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique")
}

var _ leasing.SweepRunRepository = (*GormSweepRunRepository)(nil)
