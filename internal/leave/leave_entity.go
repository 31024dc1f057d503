package leave

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Leave struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SchoolID    uuid.UUID `gorm:"type:uuid;not null;index:idx_leaves_school_status"`
	LeaveTypeID uuid.UUID `gorm:"type:uuid;not null"`

	// Applicant identity, denormalized for reporting
	UserID   uuid.UUID `gorm:"type:uuid;not null;index:idx_leaves_user_dates"`
	UserName string    `gorm:"type:varchar(120);not null"`
	UserRole string    `gorm:"type:varchar(30)"`

	StartDate time.Time `gorm:"type:date;not null;index:idx_leaves_user_dates"`
	EndDate   time.Time `gorm:"type:date;not null;index:idx_leaves_user_dates"`
	TotalDays int       `gorm:"type:int;not null;default:1"`
	Reason    string    `gorm:"type:text"`

	Status string `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_leaves_school_status"`

	// Decision metadata, null until acted upon
	ApproverID      *uuid.UUID `gorm:"type:uuid"`
	ApproverName    *string    `gorm:"type:varchar(120)"`
	DecisionRemarks *string    `gorm:"type:text"`
	DecidedAt       *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index:idx_leaves_deleted_at"`
}

func (Leave) TableName() string {
	return "leaves"
}
