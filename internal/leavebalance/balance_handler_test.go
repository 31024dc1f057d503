package leavebalance_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shubhamprakashrai/school-connect-sub001/internal/leavebalance"
	balanceerrors "github.com/shubhamprakashrai/school-connect-sub001/internal/leavebalance/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *apiError       `json:"error"`
}

func decodeEnvelope(t *testing.T, body []byte) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	err := json.Unmarshal(body, &env)
	assert.NoError(t, err)
	return env
}

type fakeBalanceService struct {
	initializeFn func(ctx context.Context, schoolID string, req leavebalance.InitializeBalanceRequest) (leavebalance.BalanceResponse, error)
	getByUserFn  func(ctx context.Context, schoolID, userID, academicYear string) ([]leavebalance.BalanceResponse, error)
	summaryFn    func(ctx context.Context, schoolID, userID, academicYear string, statuses []string) (leavebalance.SummaryResponse, error)
}

func (f *fakeBalanceService) Initialize(ctx context.Context, schoolID string, req leavebalance.InitializeBalanceRequest) (leavebalance.BalanceResponse, error) {
	return f.initializeFn(ctx, schoolID, req)
}
func (f *fakeBalanceService) GetByUser(ctx context.Context, schoolID, userID, academicYear string) ([]leavebalance.BalanceResponse, error) {
	return f.getByUserFn(ctx, schoolID, userID, academicYear)
}
func (f *fakeBalanceService) Summary(ctx context.Context, schoolID, userID, academicYear string, statuses []string) (leavebalance.SummaryResponse, error) {
	return f.summaryFn(ctx, schoolID, userID, academicYear, statuses)
}

func TestBalanceHandler_Initialize(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		schoolID := uuid.New().String()
		userID := uuid.New().String()
		typeID := uuid.New().String()

		svc := &fakeBalanceService{
			initializeFn: func(ctx context.Context, sid string, req leavebalance.InitializeBalanceRequest) (leavebalance.BalanceResponse, error) {
				assert.Equal(t, schoolID, sid)
				assert.Equal(t, userID, req.UserID)
				assert.Equal(t, typeID, req.LeaveTypeID)
				assert.Equal(t, "2026-2027", req.AcademicYear)
				assert.Equal(t, 12, req.TotalAllocated)
				return leavebalance.BalanceResponse{
					ID:             uuid.New().String(),
					SchoolID:       sid,
					UserID:         req.UserID,
					LeaveTypeID:    req.LeaveTypeID,
					AcademicYear:   req.AcademicYear,
					TotalAllocated: req.TotalAllocated,
					Remaining:      req.TotalAllocated,
				}, nil
			},
		}

		h := leavebalance.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"user_id":"` + userID + `","leave_type_id":"` + typeID + `","academic_year":"2026-2027","total_allocated":12}`
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-balances", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("school_id", schoolID)

		h.Initialize(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		var got leavebalance.BalanceResponse
		assert.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, 12, got.TotalAllocated)
		assert.Equal(t, 12, got.Remaining)
	})

	t.Run("negative validation error", func(t *testing.T) {
		h := leavebalance.NewHandler(&fakeBalanceService{})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-balances", strings.NewReader(`{}`))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("school_id", uuid.New().String())

		h.Initialize(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.NotNil(t, env.Error)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	})

	t.Run("negative duplicate scope returns conflict", func(t *testing.T) {
		svc := &fakeBalanceService{
			initializeFn: func(ctx context.Context, sid string, req leavebalance.InitializeBalanceRequest) (leavebalance.BalanceResponse, error) {
				return leavebalance.BalanceResponse{}, balanceerrors.ErrBalanceAlreadyInitialized
			},
		}
		h := leavebalance.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"user_id":"` + uuid.New().String() + `","leave_type_id":"` + uuid.New().String() + `","total_allocated":12}`
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-balances", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("school_id", uuid.New().String())

		h.Initialize(c)

		assert.Equal(t, http.StatusConflict, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.Equal(t, "CONFLICT", env.Error.Code)
	})
}

func TestBalanceHandler_GetByUser(t *testing.T) {
	t.Run("success with explicit user_id query", func(t *testing.T) {
		schoolID := uuid.New().String()
		targetID := uuid.New().String()

		svc := &fakeBalanceService{
			getByUserFn: func(ctx context.Context, sid, uid, year string) ([]leavebalance.BalanceResponse, error) {
				assert.Equal(t, schoolID, sid)
				assert.Equal(t, targetID, uid)
				assert.Equal(t, "2026-2027", year)
				return []leavebalance.BalanceResponse{
					{ID: uuid.New().String(), UserID: uid, AcademicYear: year, TotalAllocated: 12, Used: 4, Remaining: 8},
				}, nil
			},
		}
		h := leavebalance.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/leave-balances?user_id="+targetID+"&academic_year=2026-2027", nil)
		c.Set("school_id", schoolID)
		c.Set("user_id", uuid.New().String())

		h.GetByUser(c)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		var got []leavebalance.BalanceResponse
		assert.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Len(t, got, 1)
		assert.Equal(t, 8, got[0].Remaining)
	})

	t.Run("success defaults to the caller", func(t *testing.T) {
		callerID := uuid.New().String()
		svc := &fakeBalanceService{
			getByUserFn: func(ctx context.Context, sid, uid, year string) ([]leavebalance.BalanceResponse, error) {
				assert.Equal(t, callerID, uid)
				assert.Empty(t, year)
				return []leavebalance.BalanceResponse{}, nil
			},
		}
		h := leavebalance.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/leave-balances", nil)
		c.Set("school_id", uuid.New().String())
		c.Set("user_id", callerID)

		h.GetByUser(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("negative invalid user id", func(t *testing.T) {
		svc := &fakeBalanceService{
			getByUserFn: func(ctx context.Context, sid, uid, year string) ([]leavebalance.BalanceResponse, error) {
				return nil, balanceerrors.ErrInvalidUserID
			},
		}
		h := leavebalance.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/leave-balances?user_id=not-a-uuid", nil)
		c.Set("school_id", uuid.New().String())

		h.GetByUser(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.Equal(t, "INVALID_INPUT", env.Error.Code)
	})
}

func TestBalanceHandler_Summary(t *testing.T) {
	t.Run("success splits statuses", func(t *testing.T) {
		schoolID := uuid.New().String()
		callerID := uuid.New().String()

		svc := &fakeBalanceService{
			summaryFn: func(ctx context.Context, sid, uid, year string, statuses []string) (leavebalance.SummaryResponse, error) {
				assert.Equal(t, schoolID, sid)
				assert.Equal(t, callerID, uid)
				assert.Equal(t, []string{"PENDING", "APPROVED"}, statuses)
				return leavebalance.SummaryResponse{
					UserID:         uid,
					AcademicYear:   "2026-2027",
					TotalAllocated: 22,
					TotalUsed:      5,
					TotalPending:   1,
					TotalRemaining: 16,
					OpenRequests:   2,
				}, nil
			},
		}
		h := leavebalance.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/leave-balances/summary?statuses=PENDING,APPROVED", nil)
		c.Set("school_id", schoolID)
		c.Set("user_id", callerID)

		h.Summary(c)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		var got leavebalance.SummaryResponse
		assert.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, 16, got.TotalRemaining)
		assert.Equal(t, int64(2), got.OpenRequests)
	})

	t.Run("success without statuses keeps service default", func(t *testing.T) {
		svc := &fakeBalanceService{
			summaryFn: func(ctx context.Context, sid, uid, year string, statuses []string) (leavebalance.SummaryResponse, error) {
				assert.Nil(t, statuses)
				return leavebalance.SummaryResponse{UserID: uid}, nil
			},
		}
		h := leavebalance.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/leave-balances/summary", nil)
		c.Set("school_id", uuid.New().String())
		c.Set("user_id", uuid.New().String())

		h.Summary(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("negative invalid academic year", func(t *testing.T) {
		svc := &fakeBalanceService{
			summaryFn: func(ctx context.Context, sid, uid, year string, statuses []string) (leavebalance.SummaryResponse, error) {
				return leavebalance.SummaryResponse{}, balanceerrors.ErrInvalidAcademicYear
			},
		}
		h := leavebalance.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/leave-balances/summary?academic_year=2026/2027", nil)
		c.Set("school_id", uuid.New().String())
		c.Set("user_id", uuid.New().String())

		h.Summary(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.Equal(t, "INVALID_INPUT", env.Error.Code)
	})
}
