package leavetypeerrors

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
	ErrLeaveTypeNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave type not found",
		http.StatusNotFound,
	)
	ErrLeaveTypeNameTaken = apperror.New(
		apperror.CodeConflict,
		"leave type with this name already exists",
		http.StatusConflict,
	)
	ErrLeaveTypeInactive = apperror.New(
		apperror.CodeInvalidState,
		"leave type is inactive",
		http.StatusBadRequest,
	)
)
