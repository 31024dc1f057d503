package leave

type ApplyLeaveRequest struct {
	LeaveTypeID string `json:"leave_type_id" binding:"required,uuid"`
	StartDate   string `json:"start_date" binding:"required"`
	EndDate     string `json:"end_date" binding:"required"`
	Reason      string `json:"reason"`
}

type DecisionRequest struct {
	Remarks string `json:"remarks"`
}

type LeaveResponse struct {
	ID          string `json:"id"`
	SchoolID    string `json:"school_id"`
	LeaveTypeID string `json:"leave_type_id"`
	UserID      string `json:"user_id"`
	UserName    string `json:"user_name"`
	UserRole    string `json:"user_role,omitempty"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	TotalDays   int    `json:"total_days"`
	Reason      string `json:"reason"`
	Status      string `json:"status"`

	ApproverID      *string `json:"approver_id,omitempty"`
	ApproverName    *string `json:"approver_name,omitempty"`
	DecisionRemarks *string `json:"decision_remarks,omitempty"`
	DecidedAt       *string `json:"decided_at,omitempty"`
}
