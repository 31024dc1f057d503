package leavebalance

import (
	"net/http"
	"strings"

	"github.com/shubhamprakashrai/school-connect-sub001/internal/shared/apperror"
	"github.com/shubhamprakashrai/school-connect-sub001/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("leavebalance.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leavebalance.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("leave balance request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Initialize(c *gin.Context) {
	schoolID := c.GetString("school_id")

	var req InitializeBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		mapped := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, mapped.Status, "VALIDATION_ERROR", mapped.Message, err.Error())
		return
	}

	resp, err := h.service.Initialize(c.Request.Context(), schoolID, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

// GetByUser defaults to the caller's own rows; admins may pass ?user_id= to
// read someone else's.
func (h *Handler) GetByUser(c *gin.Context) {
	schoolID := c.GetString("school_id")

	userID := c.Query("user_id")
	if userID == "" {
		userID = c.GetString("user_id")
	}
	year := c.Query("academic_year")

	resp, err := h.service.GetByUser(c.Request.Context(), schoolID, userID, year)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Summary(c *gin.Context) {
	schoolID := c.GetString("school_id")

	userID := c.Query("user_id")
	if userID == "" {
		userID = c.GetString("user_id")
	}
	year := c.Query("academic_year")

	var statuses []string
	if raw := c.Query("statuses"); raw != "" {
		statuses = strings.Split(raw, ",")
	}

	resp, err := h.service.Summary(c.Request.Context(), schoolID, userID, year, statuses)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
