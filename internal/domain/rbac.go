package domain

// EnforceRequest adalah payload pengecekan akses.
// Role diambil dari JWT claim, SchoolID dari tenant scope.
type EnforceRequest struct {
	Role     string
	SchoolID string
	Resource string
	Action   string
}
