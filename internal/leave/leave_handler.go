package leave

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/shubhamprakashrai/school-connect-sub001/internal/middleware"
	"github.com/shubhamprakashrai/school-connect-sub001/internal/shared/apperror"
	"github.com/shubhamprakashrai/school-connect-sub001/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	rdb     *redis.Client
	logger  *zap.Logger
}

func NewHandler(service Service, rdb *redis.Client, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("leave.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.handler")
	}
	return &Handler{service: service, rdb: rdb, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("leave request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Apply(c *gin.Context) {
	schoolID := c.GetString("school_id")
	userID := c.GetString("user_id")
	userName := c.GetString("full_name")
	userRole := c.GetString("role")

	var req ApplyLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		mapped := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, mapped.Status, "VALIDATION_ERROR", mapped.Message, err.Error())
		return
	}

	resp, err := h.service.Apply(c.Request.Context(), schoolID, userID, userName, userRole, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	middleware.FinalizeIdempotency(c, h.rdb, resp)
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) Approve(c *gin.Context) {
	h.decide(c, h.service.Approve)
}

func (h *Handler) Reject(c *gin.Context) {
	h.decide(c, h.service.Reject)
}

func (h *Handler) decide(
	c *gin.Context,
	fn func(ctx context.Context, schoolID, approverID, approverName, id, remarks string) (LeaveResponse, error),
) {
	schoolID := c.GetString("school_id")
	approverID := c.GetString("user_id")
	approverName := c.GetString("full_name")
	id := c.Param("id")

	var req DecisionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			mapped := apperror.ToHTTP(apperror.MapValidationError(err))
			response.Error(c, mapped.Status, "VALIDATION_ERROR", mapped.Message, err.Error())
			return
		}
	}

	resp, err := fn(c.Request.Context(), schoolID, approverID, approverName, id, req.Remarks)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Cancel(c *gin.Context) {
	schoolID := c.GetString("school_id")
	id := c.Param("id")

	resp, err := h.service.Cancel(c.Request.Context(), schoolID, id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetAll(c *gin.Context) {
	schoolID := c.GetString("school_id")

	resp, err := h.service.GetAll(c.Request.Context(), schoolID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	status := strings.ToUpper(strings.TrimSpace(c.Query("status")))
	userID := strings.TrimSpace(c.Query("user_id"))
	if status != "" || userID != "" {
		filtered := make([]LeaveResponse, 0, len(resp))
		for _, l := range resp {
			if status != "" && l.Status != status {
				continue
			}
			if userID != "" && l.UserID != userID {
				continue
			}
			filtered = append(filtered, l)
		}
		resp = filtered
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if pageSize < 1 {
		pageSize = 10
	}

	total := int64(len(resp))
	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(resp) {
		start = len(resp)
	}
	if end > len(resp) {
		end = len(resp)
	}

	meta := response.NewPaginationMeta(total, page, pageSize)
	response.Success(c, http.StatusOK, resp[start:end], &meta)
}

func (h *Handler) GetById(c *gin.Context) {
	schoolID := c.GetString("school_id")
	id := c.Param("id")

	resp, err := h.service.GetByID(c.Request.Context(), schoolID, id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
