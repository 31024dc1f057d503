package leave

import (
	"context"
	"database/sql"
	"time"

	"github.com/shubhamprakashrai/school-connect-sub001/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *Leave) error
	FindAllBySchool(ctx context.Context, schoolID string) ([]Leave, error)
	FindByIDAndSchool(ctx context.Context, schoolID, id string) (*Leave, error)
	FindOverlapping(ctx context.Context, schoolID, userID string, startDate, endDate time.Time) ([]Leave, error)
	CountByUserAndStatus(ctx context.Context, schoolID, userID string, statuses []string) (int64, error)
	TransitionStatus(ctx context.Context, l *Leave, fromStatus string) (bool, error)
}

type repository struct {
	db    *gorm.DB
	sqlDB *sql.DB
	tx    *sql.Tx
}

func NewRepository(db *gorm.DB, sqlDB *sql.DB) Repository {
	return &repository{db: db, sqlDB: sqlDB}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, sqlDB: r.sqlDB, tx: tx}
}

// Create inserts the request row through the ambient transaction when one is
// set, so the insert and the outbox event commit together.
func (r *repository) Create(ctx context.Context, l *Leave) error {
	query := `
INSERT INTO leaves (
	id, school_id, leave_type_id, user_id, user_name, user_role,
	start_date, end_date, total_days, reason, status,
	created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
`

	_, err := r.execer().ExecContext(
		ctx, query,
		l.ID, l.SchoolID, l.LeaveTypeID, l.UserID, l.UserName, l.UserRole,
		l.StartDate, l.EndDate, l.TotalDays, l.Reason, l.Status,
	)
	return err
}

func (r *repository) FindAllBySchool(ctx context.Context, schoolID string) ([]Leave, error) {
	var leaves []Leave
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(schoolID)).
		Order("start_date DESC").
		Find(&leaves).Error
	return leaves, err
}

func (r *repository) FindByIDAndSchool(ctx context.Context, schoolID, id string) (*Leave, error) {
	var l Leave
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(schoolID)).
		First(&l, "id = ?", id).Error
	return &l, err
}

// FindOverlapping returns the user's APPROVED leaves intersecting the
// inclusive range. Pending and rejected requests never block a new one.
func (r *repository) FindOverlapping(ctx context.Context, schoolID, userID string, startDate, endDate time.Time) ([]Leave, error) {
	var leaves []Leave
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(schoolID)).
		Where("user_id = ?", userID).
		Where("status = ?", StatusApproved).
		Where("start_date <= ? AND end_date >= ?", endDate, startDate).
		Find(&leaves).Error
	return leaves, err
}

func (r *repository) CountByUserAndStatus(ctx context.Context, schoolID, userID string, statuses []string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Leave{}).
		Scopes(tenant.Scope(schoolID)).
		Where("user_id = ?", userID).
		Where("status IN ?", statuses).
		Count(&count).Error
	return count, err
}

// TransitionStatus writes the status change plus decision metadata guarded by
// the expected current status, so two concurrent transitions on one request
// cannot both land. Runs on the ambient transaction when one is set. Returns
// false when the guard did not match.
func (r *repository) TransitionStatus(ctx context.Context, l *Leave, fromStatus string) (bool, error) {
	query := `
UPDATE leaves
SET
	status = $1,
	approver_id = $2,
	approver_name = $3,
	decision_remarks = $4,
	decided_at = $5,
	updated_at = NOW()
WHERE id = $6
	AND school_id = $7
	AND status = $8
	AND deleted_at IS NULL
`

	res, err := r.execer().ExecContext(
		ctx, query,
		l.Status, l.ApproverID, l.ApproverName, l.DecisionRemarks, l.DecidedAt,
		l.ID, l.SchoolID, fromStatus,
	)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected == 1, nil
}

func (r *repository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.sqlDB
}
