package leavetype

import (
	"context"
	"database/sql"

	"github.com/shubhamprakashrai/school-connect-sub001/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=leave_type_repo.go -destination=mock/leave_type_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, lt *LeaveType) error
	FindAllBySchool(ctx context.Context, schoolID string) ([]LeaveType, error)
	FindByIDAndSchool(ctx context.Context, schoolID, id string) (*LeaveType, error)
	Update(ctx context.Context, lt *LeaveType) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) Create(ctx context.Context, lt *LeaveType) error {
	return r.db.WithContext(ctx).Create(lt).Error
}

func (r *repository) FindAllBySchool(ctx context.Context, schoolID string) ([]LeaveType, error) {
	var types []LeaveType
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(schoolID)).
		Order("name ASC").
		Find(&types).Error
	return types, err
}

func (r *repository) FindByIDAndSchool(ctx context.Context, schoolID, id string) (*LeaveType, error) {
	var lt LeaveType
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(schoolID)).
		First(&lt, "id = ?", id).Error
	return &lt, err
}

func (r *repository) Update(ctx context.Context, lt *LeaveType) error {
	return r.db.WithContext(ctx).Save(lt).Error
}
