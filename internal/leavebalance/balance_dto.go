package leavebalance

type InitializeBalanceRequest struct {
	UserID         string `json:"user_id" binding:"required,uuid"`
	LeaveTypeID    string `json:"leave_type_id" binding:"required,uuid"`
	AcademicYear   string `json:"academic_year"`
	TotalAllocated int    `json:"total_allocated" binding:"required,gte=0"`
}

type BalanceResponse struct {
	ID             string `json:"id"`
	SchoolID       string `json:"school_id"`
	UserID         string `json:"user_id"`
	LeaveTypeID    string `json:"leave_type_id"`
	AcademicYear   string `json:"academic_year"`
	TotalAllocated int    `json:"total_allocated"`
	Used           int    `json:"used"`
	Pending        int    `json:"pending"`
	Remaining      int    `json:"remaining"`
}

type SummaryResponse struct {
	UserID         string `json:"user_id"`
	AcademicYear   string `json:"academic_year"`
	TotalAllocated int    `json:"total_allocated"`
	TotalUsed      int    `json:"total_used"`
	TotalPending   int    `json:"total_pending"`
	TotalRemaining int    `json:"total_remaining"`
	OpenRequests   int64  `json:"open_requests"`
}
