package leavetype

import (
	"time"

	"github.com/google/uuid"
)

type LeaveType struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SchoolID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_leave_type_school_name"`

	Name             string `gorm:"type:varchar(60);not null;uniqueIndex:uq_leave_type_school_name"`
	IsPaid           bool   `gorm:"not null;default:true"`
	RequiresApproval bool   `gorm:"not null;default:true"`
	MaxDaysPerYear   int    `gorm:"type:int;not null;default:0"`
	Active           bool   `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (LeaveType) TableName() string {
	return "leave_types"
}
