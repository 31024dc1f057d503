package leavebalance

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	balanceerrors "github.com/shubhamprakashrai/school-connect-sub001/internal/leavebalance/errors"
	"github.com/shubhamprakashrai/school-connect-sub001/internal/leavetype"
	leavetypeerrors "github.com/shubhamprakashrai/school-connect-sub001/internal/leavetype/errors"
	"github.com/shubhamprakashrai/school-connect-sub001/internal/shared/academicyear"
	"github.com/shubhamprakashrai/school-connect-sub001/internal/shared/clock"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const StatusPending = "PENDING"

// RequestCounter reports how many of a user's leave requests sit in the given
// statuses. Implemented by the leave repository; declared here so the ledger
// never imports the state machine.
type RequestCounter interface {
	CountByUserAndStatus(ctx context.Context, schoolID, userID string, statuses []string) (int64, error)
}

//go:generate mockgen -source=balance_service.go -destination=mock/balance_service_mock.go -package=mock
type Service interface {
	Initialize(ctx context.Context, schoolID string, req InitializeBalanceRequest) (BalanceResponse, error)
	GetByUser(ctx context.Context, schoolID, userID, academicYear string) ([]BalanceResponse, error)
	Summary(ctx context.Context, schoolID, userID, academicYear string, statuses []string) (SummaryResponse, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	typeRepo leavetype.Repository
	requests RequestCounter
	clk      clock.Clock
	logger   *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	typeRepo leavetype.Repository,
	requests RequestCounter,
	clk clock.Clock,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leavebalance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leavebalance.service")
	}
	if clk == nil {
		clk = clock.System()
	}
	return &service{db: db, repo: repo, typeRepo: typeRepo, requests: requests, clk: clk, logger: l}
}

func (s *service) Initialize(ctx context.Context, schoolID string, req InitializeBalanceRequest) (BalanceResponse, error) {
	s.logger.Debug("initialize balance requested",
		zap.String("school_id", schoolID),
		zap.String("user_id", req.UserID),
		zap.String("leave_type_id", req.LeaveTypeID),
		zap.String("academic_year", req.AcademicYear),
	)

	schoolUUID, err := uuid.Parse(schoolID)
	if err != nil {
		return BalanceResponse{}, balanceerrors.ErrInvalidSchoolID
	}
	userUUID, err := uuid.Parse(req.UserID)
	if err != nil {
		return BalanceResponse{}, balanceerrors.ErrInvalidUserID
	}
	typeUUID, err := uuid.Parse(req.LeaveTypeID)
	if err != nil {
		return BalanceResponse{}, balanceerrors.ErrInvalidLeaveTypeID
	}

	year := req.AcademicYear
	if year == "" {
		year = academicyear.Current(s.clk)
	}
	if !academicyear.IsValidKey(year) {
		return BalanceResponse{}, balanceerrors.ErrInvalidAcademicYear
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("initialize balance begin tx failed", zap.Error(err))
		return BalanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if _, err := s.typeRepo.FindByIDAndSchool(ctx, schoolID, req.LeaveTypeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return BalanceResponse{}, leavetypeerrors.ErrLeaveTypeNotFound
		}
		return BalanceResponse{}, err
	}

	b := &LeaveBalance{
		ID:             uuid.New(),
		SchoolID:       schoolUUID,
		UserID:         userUUID,
		LeaveTypeID:    typeUUID,
		AcademicYear:   year,
		TotalAllocated: req.TotalAllocated,
		Used:           0,
		Pending:        0,
	}

	if err := qtx.Create(ctx, b); err != nil {
		s.logger.Warn("initialize balance persist failed", zap.Error(err))
		return BalanceResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("initialize balance commit failed", zap.Error(err))
		return BalanceResponse{}, err
	}

	s.logger.Info("initialize balance success",
		zap.String("balance_id", b.ID.String()),
		zap.String("academic_year", year),
	)

	return mapToResponse(*b), nil
}

func (s *service) GetByUser(ctx context.Context, schoolID, userID, academicYear string) ([]BalanceResponse, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, balanceerrors.ErrInvalidUserID
	}

	year := academicYear
	if year == "" {
		year = academicyear.Current(s.clk)
	}
	if !academicyear.IsValidKey(year) {
		return nil, balanceerrors.ErrInvalidAcademicYear
	}

	rows, err := s.repo.FindByUserAndYear(ctx, schoolID, userID, year)
	if err != nil {
		return nil, err
	}

	return mapToListResponse(rows), nil
}

func (s *service) Summary(ctx context.Context, schoolID, userID, academicYear string, statuses []string) (SummaryResponse, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return SummaryResponse{}, balanceerrors.ErrInvalidUserID
	}

	year := academicYear
	if year == "" {
		year = academicyear.Current(s.clk)
	}
	if !academicyear.IsValidKey(year) {
		return SummaryResponse{}, balanceerrors.ErrInvalidAcademicYear
	}

	if len(statuses) == 0 {
		statuses = []string{StatusPending}
	}

	totals, err := s.repo.SumByUserAndYear(ctx, schoolID, userID, year)
	if err != nil {
		return SummaryResponse{}, err
	}

	openRequests, err := s.requests.CountByUserAndStatus(ctx, schoolID, userID, statuses)
	if err != nil {
		return SummaryResponse{}, err
	}

	return SummaryResponse{
		UserID:         userID,
		AcademicYear:   year,
		TotalAllocated: totals.TotalAllocated,
		TotalUsed:      totals.TotalUsed,
		TotalPending:   totals.TotalPending,
		TotalRemaining: totals.TotalAllocated - totals.TotalUsed - totals.TotalPending,
		OpenRequests:   openRequests,
	}, nil
}

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return balanceerrors.ErrBalanceAlreadyInitialized
	}
	if strings.Contains(strings.ToLower(err.Error()), "duplicate key value") {
		return balanceerrors.ErrBalanceAlreadyInitialized
	}

	return err
}

func mapToResponse(b LeaveBalance) BalanceResponse {
	return BalanceResponse{
		ID:             b.ID.String(),
		SchoolID:       b.SchoolID.String(),
		UserID:         b.UserID.String(),
		LeaveTypeID:    b.LeaveTypeID.String(),
		AcademicYear:   b.AcademicYear,
		TotalAllocated: b.TotalAllocated,
		Used:           b.Used,
		Pending:        b.Pending,
		Remaining:      b.Remaining(),
	}
}

func mapToListResponse(rows []LeaveBalance) []BalanceResponse {
	resp := make([]BalanceResponse, len(rows))
	for i, b := range rows {
		resp[i] = mapToResponse(b)
	}
	return resp
}
