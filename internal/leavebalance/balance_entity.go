package leavebalance

import (
	"time"

	"github.com/google/uuid"
)

// LeaveBalance is the accounting row per (school, user, leave type, academic
// year). Remaining is always derived, never stored.
type LeaveBalance struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SchoolID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_balance_scope"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_balance_scope"`
	LeaveTypeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_balance_scope"`

	AcademicYear   string `gorm:"type:varchar(9);not null;uniqueIndex:uq_balance_scope"`
	TotalAllocated int    `gorm:"type:int;not null;default:0"`
	Used           int    `gorm:"type:int;not null;default:0"`
	Pending        int    `gorm:"type:int;not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (LeaveBalance) TableName() string {
	return "leave_balances"
}

func (b LeaveBalance) Remaining() int {
	return b.TotalAllocated - b.Used - b.Pending
}
