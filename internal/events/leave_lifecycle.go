package events

import "time"

const LeaveLifecycleTopic = "school.leave.lifecycle.v1"

const (
	LeaveApplied   = "leave.applied"
	LeaveApproved  = "leave.approved"
	LeaveRejected  = "leave.rejected"
	LeaveCancelled = "leave.cancelled"
)

type LeaveLifecycleEvent struct {
	EventType   string    `json:"event_type"`
	LeaveID     string    `json:"leave_id"`
	SchoolID    string    `json:"school_id"`
	UserID      string    `json:"user_id"`
	LeaveTypeID string    `json:"leave_type_id"`
	Status      string    `json:"status"`
	TotalDays   int       `json:"total_days"`
	OccurredAt  time.Time `json:"occurred_at"`
}
