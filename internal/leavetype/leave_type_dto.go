package leavetype

type CreateLeaveTypeRequest struct {
	Name             string `json:"name" binding:"required,max=60"`
	IsPaid           *bool  `json:"is_paid" binding:"required"`
	RequiresApproval *bool  `json:"requires_approval" binding:"required"`
	MaxDaysPerYear   int    `json:"max_days_per_year" binding:"required,gte=0"`
}

type UpdateLeaveTypeRequest struct {
	Name             string `json:"name" binding:"required,max=60"`
	IsPaid           *bool  `json:"is_paid" binding:"required"`
	RequiresApproval *bool  `json:"requires_approval" binding:"required"`
	MaxDaysPerYear   int    `json:"max_days_per_year" binding:"required,gte=0"`
	Active           *bool  `json:"active" binding:"required"`
}

type LeaveTypeResponse struct {
	ID               string `json:"id"`
	SchoolID         string `json:"school_id"`
	Name             string `json:"name"`
	IsPaid           bool   `json:"is_paid"`
	RequiresApproval bool   `json:"requires_approval"`
	MaxDaysPerYear   int    `json:"max_days_per_year"`
	Active           bool   `json:"active"`
}
