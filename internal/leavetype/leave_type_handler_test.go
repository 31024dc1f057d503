package leavetype_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shubhamprakashrai/school-connect-sub001/internal/leavetype"
	leavetypeerrors "github.com/shubhamprakashrai/school-connect-sub001/internal/leavetype/errors"

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

type fakeLeaveTypeService struct {
	createFn  func(ctx context.Context, schoolID string, req leavetype.CreateLeaveTypeRequest) (leavetype.LeaveTypeResponse, error)
	getAllFn  func(ctx context.Context, schoolID string) ([]leavetype.LeaveTypeResponse, error)
	getByIDFn func(ctx context.Context, schoolID, id string) (leavetype.LeaveTypeResponse, error)
	updateFn  func(ctx context.Context, schoolID, id string, req leavetype.UpdateLeaveTypeRequest) (leavetype.LeaveTypeResponse, error)
}

func (f *fakeLeaveTypeService) Create(ctx context.Context, schoolID string, req leavetype.CreateLeaveTypeRequest) (leavetype.LeaveTypeResponse, error) {
	return f.createFn(ctx, schoolID, req)
}
func (f *fakeLeaveTypeService) GetAll(ctx context.Context, schoolID string) ([]leavetype.LeaveTypeResponse, error) {
	return f.getAllFn(ctx, schoolID)
}
func (f *fakeLeaveTypeService) GetByID(ctx context.Context, schoolID, id string) (leavetype.LeaveTypeResponse, error) {
	return f.getByIDFn(ctx, schoolID, id)
}
func (f *fakeLeaveTypeService) Update(ctx context.Context, schoolID, id string, req leavetype.UpdateLeaveTypeRequest) (leavetype.LeaveTypeResponse, error) {
	return f.updateFn(ctx, schoolID, id, req)
}

func TestLeaveTypeHandler_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		schoolID := uuid.New().String()

		svc := &fakeLeaveTypeService{
			createFn: func(ctx context.Context, sid string, req leavetype.CreateLeaveTypeRequest) (leavetype.LeaveTypeResponse, error) {
				assert.Equal(t, schoolID, sid)
				assert.Equal(t, "Cuti Tahunan", req.Name)
				assert.True(t, *req.IsPaid)
				assert.True(t, *req.RequiresApproval)
				assert.Equal(t, 12, req.MaxDaysPerYear)
				return leavetype.LeaveTypeResponse{
					ID:               uuid.New().String(),
					SchoolID:         sid,
					Name:             req.Name,
					IsPaid:           *req.IsPaid,
					RequiresApproval: *req.RequiresApproval,
					MaxDaysPerYear:   req.MaxDaysPerYear,
					Active:           true,
				}, nil
			},
		}

		h := leavetype.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"name":"Cuti Tahunan","is_paid":true,"requires_approval":true,"max_days_per_year":12}`
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-types", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("school_id", schoolID)

		h.Create(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		var got leavetype.LeaveTypeResponse
		assert.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, "Cuti Tahunan", got.Name)
		assert.True(t, got.Active)
	})

	t.Run("negative validation error", func(t *testing.T) {
		h := leavetype.NewHandler(&fakeLeaveTypeService{})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-types", strings.NewReader(`{"name":""}`))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("school_id", uuid.New().String())

		h.Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.NotNil(t, env.Error)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	})

	t.Run("negative duplicate name returns conflict", func(t *testing.T) {
		svc := &fakeLeaveTypeService{
			createFn: func(ctx context.Context, sid string, req leavetype.CreateLeaveTypeRequest) (leavetype.LeaveTypeResponse, error) {
				return leavetype.LeaveTypeResponse{}, leavetypeerrors.ErrLeaveTypeNameTaken
			},
		}
		h := leavetype.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"name":"Cuti Tahunan","is_paid":true,"requires_approval":true,"max_days_per_year":12}`
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-types", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("school_id", uuid.New().String())

		h.Create(c)

		assert.Equal(t, http.StatusConflict, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.Equal(t, "CONFLICT", env.Error.Code)
	})
}

func TestLeaveTypeHandler_GetAll(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		schoolID := uuid.New().String()
		svc := &fakeLeaveTypeService{
			getAllFn: func(ctx context.Context, sid string) ([]leavetype.LeaveTypeResponse, error) {
				assert.Equal(t, schoolID, sid)
				return []leavetype.LeaveTypeResponse{
					{ID: uuid.New().String(), Name: "Cuti Tahunan", Active: true},
					{ID: uuid.New().String(), Name: "Cuti Sakit", Active: true},
				}, nil
			},
		}
		h := leavetype.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/leave-types", nil)
		c.Set("school_id", schoolID)

		h.GetAll(c)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		var got []leavetype.LeaveTypeResponse
		assert.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Len(t, got, 2)
	})
}

func TestLeaveTypeHandler_GetById(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		schoolID := uuid.New().String()
		id := uuid.New().String()
		svc := &fakeLeaveTypeService{
			getByIDFn: func(ctx context.Context, sid, targetID string) (leavetype.LeaveTypeResponse, error) {
				assert.Equal(t, schoolID, sid)
				assert.Equal(t, id, targetID)
				return leavetype.LeaveTypeResponse{ID: targetID, Name: "Cuti Tahunan", Active: true}, nil
			},
		}
		h := leavetype.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/leave-types/"+id, nil)
		c.Params = gin.Params{{Key: "id", Value: id}}
		c.Set("school_id", schoolID)

		h.GetById(c)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
	})

	t.Run("negative not found", func(t *testing.T) {
		id := uuid.New().String()
		svc := &fakeLeaveTypeService{
			getByIDFn: func(ctx context.Context, sid, targetID string) (leavetype.LeaveTypeResponse, error) {
				return leavetype.LeaveTypeResponse{}, leavetypeerrors.ErrLeaveTypeNotFound
			},
		}
		h := leavetype.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/leave-types/"+id, nil)
		c.Params = gin.Params{{Key: "id", Value: id}}
		c.Set("school_id", uuid.New().String())

		h.GetById(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.Equal(t, "NOT_FOUND", env.Error.Code)
	})
}

func TestLeaveTypeHandler_Update(t *testing.T) {
	t.Run("success deactivates a type", func(t *testing.T) {
		schoolID := uuid.New().String()
		id := uuid.New().String()
		svc := &fakeLeaveTypeService{
			updateFn: func(ctx context.Context, sid, targetID string, req leavetype.UpdateLeaveTypeRequest) (leavetype.LeaveTypeResponse, error) {
				assert.Equal(t, schoolID, sid)
				assert.Equal(t, id, targetID)
				assert.False(t, *req.Active)
				return leavetype.LeaveTypeResponse{ID: targetID, Name: req.Name, Active: false}, nil
			},
		}
		h := leavetype.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"name":"Cuti Tahunan","is_paid":true,"requires_approval":true,"max_days_per_year":12,"active":false}`
		c.Request = httptest.NewRequest(http.MethodPut, "/leave-types/"+id, strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Params = gin.Params{{Key: "id", Value: id}}
		c.Set("school_id", schoolID)

		h.Update(c)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		var got leavetype.LeaveTypeResponse
		assert.NoError(t, json.Unmarshal(env.Data, &got))
		assert.False(t, got.Active)
	})

	t.Run("negative validation error", func(t *testing.T) {
		h := leavetype.NewHandler(&fakeLeaveTypeService{})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPut, "/leave-types/"+uuid.New().String(), strings.NewReader(`{}`))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("school_id", uuid.New().String())

		h.Update(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	})

	t.Run("negative not found", func(t *testing.T) {
		id := uuid.New().String()
		svc := &fakeLeaveTypeService{
			updateFn: func(ctx context.Context, sid, targetID string, req leavetype.UpdateLeaveTypeRequest) (leavetype.LeaveTypeResponse, error) {
				return leavetype.LeaveTypeResponse{}, leavetypeerrors.ErrLeaveTypeNotFound
			},
		}
		h := leavetype.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"name":"Cuti Tahunan","is_paid":true,"requires_approval":true,"max_days_per_year":12,"active":true}`
		c.Request = httptest.NewRequest(http.MethodPut, "/leave-types/"+id, strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Params = gin.Params{{Key: "id", Value: id}}
		c.Set("school_id", uuid.New().String())

		h.Update(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.Equal(t, "NOT_FOUND", env.Error.Code)
	})
}
