package leavetype

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	leavetypeerrors "github.com/shubhamprakashrai/school-connect-sub001/internal/leavetype/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const LeaveTypeAllKeyPrefix = "leave_types:all:"

func GetLeaveTypeAllKey(schoolID string) string {
	return LeaveTypeAllKeyPrefix + schoolID
}

//go:generate mockgen -source=leave_type_service.go -destination=mock/leave_type_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, schoolID string, req CreateLeaveTypeRequest) (LeaveTypeResponse, error)
	GetAll(ctx context.Context, schoolID string) ([]LeaveTypeResponse, error)
	GetByID(ctx context.Context, schoolID, id string) (LeaveTypeResponse, error)
	Update(ctx context.Context, schoolID, id string, req UpdateLeaveTypeRequest) (LeaveTypeResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("leavetype.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leavetype.service")
	}
	return &service{db: db, repo: repo, rdb: rdb, sf: &singleflight.Group{}, logger: l}
}

func (s *service) Create(ctx context.Context, schoolID string, req CreateLeaveTypeRequest) (LeaveTypeResponse, error) {
	s.logger.Debug("create leave type requested",
		zap.String("school_id", schoolID),
		zap.String("name", req.Name),
	)

	schoolUUID, err := uuid.Parse(schoolID)
	if err != nil {
		return LeaveTypeResponse{}, leavetypeerrors.ErrInvalidSchoolID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create leave type begin tx failed", zap.Error(err))
		return LeaveTypeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	lt := &LeaveType{
		ID:               uuid.New(),
		SchoolID:         schoolUUID,
		Name:             strings.TrimSpace(req.Name),
		IsPaid:           *req.IsPaid,
		RequiresApproval: *req.RequiresApproval,
		MaxDaysPerYear:   req.MaxDaysPerYear,
		Active:           true,
	}

	if err := qtx.Create(ctx, lt); err != nil {
		s.logger.Error("create leave type persist failed", zap.Error(err))
		return LeaveTypeResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create leave type commit failed", zap.Error(err))
		return LeaveTypeResponse{}, err
	}

	s.invalidateCache(ctx, schoolID)
	s.logger.Info("create leave type success",
		zap.String("leave_type_id", lt.ID.String()),
		zap.String("school_id", schoolID),
	)

	return mapToResponse(*lt), nil
}

func (s *service) GetAll(ctx context.Context, schoolID string) ([]LeaveTypeResponse, error) {
	cacheKey := GetLeaveTypeAllKey(schoolID)

	// Master data: coba Redis dulu
	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, cacheKey).Result()
		if err == nil {
			var resp []LeaveTypeResponse
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				return resp, nil
			}
		}
	}

	// Singleflight mencegah query berulang ke DB saat cache kosong
	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		types, err := s.repo.FindAllBySchool(ctx, schoolID)
		if err != nil {
			return nil, err
		}

		resp := mapToListResponse(types)

		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, cacheKey, jsonData, 30*time.Minute)
			}
		}

		return resp, nil
	})

	if err != nil {
		return nil, err
	}

	return v.([]LeaveTypeResponse), nil
}

func (s *service) GetByID(ctx context.Context, schoolID, id string) (LeaveTypeResponse, error) {
	lt, err := s.repo.FindByIDAndSchool(ctx, schoolID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveTypeResponse{}, leavetypeerrors.ErrLeaveTypeNotFound
		}
		return LeaveTypeResponse{}, err
	}
	return mapToResponse(*lt), nil
}

func (s *service) Update(ctx context.Context, schoolID, id string, req UpdateLeaveTypeRequest) (LeaveTypeResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LeaveTypeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	lt, err := qtx.FindByIDAndSchool(ctx, schoolID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveTypeResponse{}, leavetypeerrors.ErrLeaveTypeNotFound
		}
		return LeaveTypeResponse{}, err
	}

	lt.Name = strings.TrimSpace(req.Name)
	lt.IsPaid = *req.IsPaid
	lt.RequiresApproval = *req.RequiresApproval
	lt.MaxDaysPerYear = req.MaxDaysPerYear
	lt.Active = *req.Active

	if err := qtx.Update(ctx, lt); err != nil {
		s.logger.Error("update leave type persist failed",
			zap.String("leave_type_id", id),
			zap.Error(err),
		)
		return LeaveTypeResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return LeaveTypeResponse{}, err
	}

	s.invalidateCache(ctx, schoolID)
	s.logger.Info("update leave type success",
		zap.String("leave_type_id", id),
		zap.Bool("active", lt.Active),
	)

	return mapToResponse(*lt), nil
}

func (s *service) invalidateCache(ctx context.Context, schoolID string) {
	if s.rdb == nil {
		return
	}
	cacheKey := GetLeaveTypeAllKey(schoolID)
	if err := s.rdb.Del(ctx, cacheKey).Err(); err != nil {
		s.logger.Warn("invalidate leave type cache failed",
			zap.String("cache_key", cacheKey),
			zap.Error(err),
		)
	}
}

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return leavetypeerrors.ErrLeaveTypeNameTaken
	}
	if strings.Contains(strings.ToLower(err.Error()), "duplicate key value") {
		return leavetypeerrors.ErrLeaveTypeNameTaken
	}

	return err
}

func mapToResponse(lt LeaveType) LeaveTypeResponse {
	return LeaveTypeResponse{
		ID:               lt.ID.String(),
		SchoolID:         lt.SchoolID.String(),
		Name:             lt.Name,
		IsPaid:           lt.IsPaid,
		RequiresApproval: lt.RequiresApproval,
		MaxDaysPerYear:   lt.MaxDaysPerYear,
		Active:           lt.Active,
	}
}

func mapToListResponse(types []LeaveType) []LeaveTypeResponse {
	resp := make([]LeaveTypeResponse, len(types))
	for i, lt := range types {
		resp[i] = mapToResponse(lt)
	}
	return resp
}
