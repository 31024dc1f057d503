package balanceerrors

import (
	"net/http"

	"github.com/shubhamprakashrai/school-connect-sub001/internal/shared/apperror"
)

var (
	ErrInvalidSchoolID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid school id",
		http.StatusBadRequest,
	)
	ErrInvalidUserID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid user id",
		http.StatusBadRequest,
	)
	ErrInvalidLeaveTypeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave type id",
		http.StatusBadRequest,
	)
	ErrInvalidAcademicYear = apperror.New(
		apperror.CodeInvalidInput,
		"invalid academic year, expected YYYY-YYYY",
		http.StatusBadRequest,
	)
	ErrBalanceAlreadyInitialized = apperror.New(
		apperror.CodeConflict,
		"leave balance already initialized for this user, type and year",
		http.StatusConflict,
	)
	ErrBalanceNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave balance not found",
		http.StatusNotFound,
	)
)
