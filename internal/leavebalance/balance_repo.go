package leavebalance

import (
	"context"
	"database/sql"

	"github.com/shubhamprakashrai/school-connect-sub001/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BalanceTotals struct {
	TotalAllocated int
	TotalUsed      int
	TotalPending   int
}

//go:generate mockgen -source=balance_repo.go -destination=mock/balance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, b *LeaveBalance) error
	FindByUserAndYear(ctx context.Context, schoolID, userID, academicYear string) ([]LeaveBalance, error)
	FindByScope(ctx context.Context, schoolID, userID, leaveTypeID, academicYear string) (*LeaveBalance, error)
	ApplyUsedDelta(ctx context.Context, schoolID, userID, leaveTypeID, academicYear string, delta, allocatedIfNew int) (int, error)
	SumByUserAndYear(ctx context.Context, schoolID, userID, academicYear string) (BalanceTotals, error)
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

func (r *repository) Create(ctx context.Context, b *LeaveBalance) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *repository) FindByUserAndYear(ctx context.Context, schoolID, userID, academicYear string) ([]LeaveBalance, error) {
	var rows []LeaveBalance
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(schoolID)).
		Where("user_id = ?", userID).
		Where("academic_year = ?", academicYear).
		Order("academic_year DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindByScope(ctx context.Context, schoolID, userID, leaveTypeID, academicYear string) (*LeaveBalance, error) {
	var b LeaveBalance
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(schoolID)).
		Where("user_id = ?", userID).
		Where("leave_type_id = ?", leaveTypeID).
		Where("academic_year = ?", academicYear).
		First(&b).Error
	return &b, err
}

// ApplyUsedDelta applies used += delta atomically as a single upsert so two
// concurrent adjustments on the same row can never lose an update. A missing
// row is created with allocatedIfNew. Runs on the ambient transaction when
// one is set. Returns the resulting used value.
func (r *repository) ApplyUsedDelta(
	ctx context.Context,
	schoolID, userID, leaveTypeID, academicYear string,
	delta, allocatedIfNew int,
) (int, error) {
	query := `
INSERT INTO leave_balances (
	id, school_id, user_id, leave_type_id, academic_year,
	total_allocated, used, pending, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, 0, NOW(), NOW())
ON CONFLICT (school_id, user_id, leave_type_id, academic_year) DO UPDATE
SET used = leave_balances.used + $7, updated_at = NOW()
RETURNING used
`

	var used int
	err := r.querier().QueryRowContext(
		ctx, query,
		uuid.New(), schoolID, userID, leaveTypeID, academicYear,
		allocatedIfNew, delta,
	).Scan(&used)
	if err != nil {
		return 0, err
	}

	return used, nil
}

func (r *repository) SumByUserAndYear(ctx context.Context, schoolID, userID, academicYear string) (BalanceTotals, error) {
	var totals BalanceTotals
	err := r.db.WithContext(ctx).
		Model(&LeaveBalance{}).
		Select(
			"COALESCE(SUM(total_allocated), 0) AS total_allocated, " +
				"COALESCE(SUM(used), 0) AS total_used, " +
				"COALESCE(SUM(pending), 0) AS total_pending",
		).
		Scopes(tenant.Scope(schoolID)).
		Where("user_id = ?", userID).
		Where("academic_year = ?", academicYear).
		Scan(&totals).Error
	return totals, err
}

func (r *repository) querier() interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
} {
	if r.tx != nil {
		return r.tx
	}
	return r.sqlDB
}
