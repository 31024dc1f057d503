package leave

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	leaveerrors "github.com/shubhamprakashrai/school-connect-sub001/internal/leave/errors"
	"github.com/shubhamprakashrai/school-connect-sub001/internal/leavebalance"
	"github.com/shubhamprakashrai/school-connect-sub001/internal/leavetype"
	leavetypeerrors "github.com/shubhamprakashrai/school-connect-sub001/internal/leavetype/errors"
	"github.com/shubhamprakashrai/school-connect-sub001/internal/events"
	"github.com/shubhamprakashrai/school-connect-sub001/internal/messaging/kafka"
	"github.com/shubhamprakashrai/school-connect-sub001/internal/shared/academicyear"
	"github.com/shubhamprakashrai/school-connect-sub001/internal/shared/clock"
	"github.com/shubhamprakashrai/school-connect-sub001/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusCancelled = "CANCELLED"
)

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Apply(ctx context.Context, schoolID, userID, userName, userRole string, req ApplyLeaveRequest) (LeaveResponse, error)
	Approve(ctx context.Context, schoolID, approverID, approverName, id, remarks string) (LeaveResponse, error)
	Reject(ctx context.Context, schoolID, approverID, approverName, id, remarks string) (LeaveResponse, error)
	Cancel(ctx context.Context, schoolID, id string) (LeaveResponse, error)
	GetAll(ctx context.Context, schoolID string) ([]LeaveResponse, error)
	GetByID(ctx context.Context, schoolID, id string) (LeaveResponse, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	balances leavebalance.Repository
	types    leavetype.Repository
	outbox   kafka.OutboxRepository
	clk      clock.Clock
	logger   *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	balances leavebalance.Repository,
	types leavetype.Repository,
	clk clock.Clock,
	logger ...*zap.Logger,
) Service {
	return NewServiceWithOutbox(db, repo, balances, types, nil, clk, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	balances leavebalance.Repository,
	types leavetype.Repository,
	outbox kafka.OutboxRepository,
	clk clock.Clock,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	if clk == nil {
		clk = clock.System()
	}
	return &service{
		db:       db,
		repo:     repo,
		balances: balances,
		types:    types,
		outbox:   outbox,
		clk:      clk,
		logger:   l,
	}
}

func (s *service) Apply(ctx context.Context, schoolID, userID, userName, userRole string, req ApplyLeaveRequest) (LeaveResponse, error) {
	s.logger.Debug("apply leave requested",
		zap.String("school_id", schoolID),
		zap.String("user_id", userID),
		zap.String("leave_type_id", req.LeaveTypeID),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	schoolUUID, err := uuid.Parse(schoolID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidSchoolID
	}
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidUserID
	}
	typeUUID, err := uuid.Parse(req.LeaveTypeID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveTypeID
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return LeaveResponse{}, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return LeaveResponse{}, err
	}
	if startDate.After(endDate) {
		return LeaveResponse{}, leaveerrors.ErrInvalidDateRange
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("apply leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	lt, err := s.types.FindByIDAndSchool(ctx, schoolID, req.LeaveTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leavetypeerrors.ErrLeaveTypeNotFound
		}
		s.logger.Error("apply leave type lookup failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if !lt.Active {
		return LeaveResponse{}, leavetypeerrors.ErrLeaveTypeInactive
	}

	overlapping, err := qtx.FindOverlapping(ctx, schoolID, userID, startDate, endDate)
	if err != nil {
		s.logger.Error("apply leave overlap check failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if len(overlapping) > 0 {
		s.logger.Warn("apply leave overlap detected",
			zap.String("school_id", schoolID),
			zap.String("user_id", userID),
			zap.String("start_date", req.StartDate),
			zap.String("end_date", req.EndDate),
			zap.Int("overlapping", len(overlapping)),
		)
		return LeaveResponse{}, leaveerrors.ErrLeaveOverlap
	}

	totalDays := int(endDate.Sub(startDate).Hours()/24) + 1
	l := &Leave{
		ID:          uuid.New(),
		SchoolID:    schoolUUID,
		LeaveTypeID: typeUUID,
		UserID:      userUUID,
		UserName:    userName,
		UserRole:    userRole,
		StartDate:   startDate,
		EndDate:     endDate,
		TotalDays:   totalDays,
		Reason:      req.Reason,
		Status:      StatusPending,
	}

	if err := qtx.Create(ctx, l); err != nil {
		s.logger.Error("apply leave persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := s.writeOutboxEvent(ctx, tx, l, events.LeaveApplied); err != nil {
		s.logger.Error("apply leave outbox write failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("apply leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	s.logger.Info("apply leave success",
		zap.String("leave_id", l.ID.String()),
		zap.String("school_id", schoolID),
		zap.String("user_id", userID),
		zap.Int("total_days", totalDays),
	)

	return mapToResponse(*l), nil
}

func (s *service) Approve(ctx context.Context, schoolID, approverID, approverName, id, remarks string) (LeaveResponse, error) {
	return s.decide(ctx, schoolID, approverID, approverName, id, remarks, StatusApproved)
}

func (s *service) Reject(ctx context.Context, schoolID, approverID, approverName, id, remarks string) (LeaveResponse, error) {
	return s.decide(ctx, schoolID, approverID, approverName, id, remarks, StatusRejected)
}

// decide handles the PENDING -> APPROVED/REJECTED transitions. Approval also
// charges the ledger; both writes share the transaction and either both
// commit or neither does.
func (s *service) decide(ctx context.Context, schoolID, approverID, approverName, id, remarks, targetStatus string) (LeaveResponse, error) {
	s.logger.Debug("decide leave requested",
		zap.String("leave_id", id),
		zap.String("school_id", schoolID),
		zap.String("approver_id", approverID),
		zap.String("target_status", targetStatus),
	)

	if _, err := uuid.Parse(schoolID); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidSchoolID
	}
	approverUUID, err := uuid.Parse(approverID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidApproverID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("decide leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByIDAndSchool(ctx, schoolID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}
	if l.Status != StatusPending {
		s.logger.Warn("decide leave invalid transition",
			zap.String("leave_id", id),
			zap.String("from_status", l.Status),
			zap.String("to_status", targetStatus),
		)
		return LeaveResponse{}, leaveerrors.ErrInvalidStatusTransition
	}

	now := s.clk.Now()
	l.Status = targetStatus
	l.ApproverID = &approverUUID
	l.ApproverName = &approverName
	l.DecidedAt = &now
	if remarks != "" {
		l.DecisionRemarks = &remarks
	}

	ok, err := qtx.TransitionStatus(ctx, l, StatusPending)
	if err != nil {
		s.logger.Error("decide leave persist failed",
			zap.String("leave_id", id),
			zap.String("target_status", targetStatus),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}
	if !ok {
		// Another transition won the race between read and write
		return LeaveResponse{}, leaveerrors.ErrInvalidStatusTransition
	}

	eventType := events.LeaveRejected
	if targetStatus == StatusApproved {
		eventType = events.LeaveApproved
		if err := s.chargeLedger(ctx, tx, l, l.TotalDays); err != nil {
			s.logger.Error("decide leave ledger charge failed",
				zap.String("leave_id", id),
				zap.Error(err),
			)
			return LeaveResponse{}, err
		}
	}

	if err := s.writeOutboxEvent(ctx, tx, l, eventType); err != nil {
		s.logger.Error("decide leave outbox write failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("decide leave commit failed",
			zap.String("leave_id", id),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}
	s.logger.Info("decide leave success",
		zap.String("leave_id", id),
		zap.String("status", targetStatus),
	)
	return mapToResponse(*l), nil
}

func (s *service) Cancel(ctx context.Context, schoolID, id string) (LeaveResponse, error) {
	s.logger.Debug("cancel leave requested",
		zap.String("leave_id", id),
		zap.String("school_id", schoolID),
	)

	if _, err := uuid.Parse(schoolID); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidSchoolID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("cancel leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByIDAndSchool(ctx, schoolID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}

	fromStatus := l.Status
	switch fromStatus {
	case StatusPending, StatusApproved:
		// fallthrough to the guarded write below
	default:
		s.logger.Warn("cancel leave invalid transition",
			zap.String("leave_id", id),
			zap.String("from_status", fromStatus),
		)
		return LeaveResponse{}, leaveerrors.ErrInvalidStatusTransition
	}

	l.Status = StatusCancelled

	ok, err := qtx.TransitionStatus(ctx, l, fromStatus)
	if err != nil {
		s.logger.Error("cancel leave persist failed",
			zap.String("leave_id", id),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}
	if !ok {
		return LeaveResponse{}, leaveerrors.ErrInvalidStatusTransition
	}

	// Cancelling an approved leave restores the days it consumed
	if fromStatus == StatusApproved {
		if err := s.chargeLedger(ctx, tx, l, -l.TotalDays); err != nil {
			s.logger.Error("cancel leave ledger restore failed",
				zap.String("leave_id", id),
				zap.Error(err),
			)
			return LeaveResponse{}, err
		}
	}

	if err := s.writeOutboxEvent(ctx, tx, l, events.LeaveCancelled); err != nil {
		s.logger.Error("cancel leave outbox write failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("cancel leave commit failed",
			zap.String("leave_id", id),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}
	s.logger.Info("cancel leave success",
		zap.String("leave_id", id),
		zap.String("from_status", fromStatus),
	)
	return mapToResponse(*l), nil
}

func (s *service) GetAll(ctx context.Context, schoolID string) ([]LeaveResponse, error) {
	leaves, err := s.repo.FindAllBySchool(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(leaves), nil
}

func (s *service) GetByID(ctx context.Context, schoolID, id string) (LeaveResponse, error) {
	l, err := s.repo.FindByIDAndSchool(ctx, schoolID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}
	return mapToResponse(*l), nil
}

// chargeLedger adjusts used on the (user, type, academic year) ledger row
// inside the caller's transaction. The academic year comes from the request's
// own start date. Lazily created rows take their allocation from the leave
// type's yearly cap.
func (s *service) chargeLedger(ctx context.Context, tx *sql.Tx, l *Leave, delta int) error {
	year := academicyear.FromDate(l.StartDate)

	allocatedIfNew := 0
	lt, err := s.types.FindByIDAndSchool(ctx, l.SchoolID.String(), l.LeaveTypeID.String())
	if err == nil {
		allocatedIfNew = lt.MaxDaysPerYear
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	bqtx := s.balances.WithTx(tx)
	usedAfter, err := bqtx.ApplyUsedDelta(
		ctx,
		l.SchoolID.String(), l.UserID.String(), l.LeaveTypeID.String(), year,
		delta, allocatedIfNew,
	)
	if err != nil {
		return err
	}

	s.logger.Debug("ledger adjusted",
		zap.String("leave_id", l.ID.String()),
		zap.String("academic_year", year),
		zap.Int("delta", delta),
		zap.Int("used_after", usedAfter),
	)
	return nil
}

func (s *service) writeOutboxEvent(ctx context.Context, tx *sql.Tx, l *Leave, eventType string) error {
	if s.outbox == nil {
		return nil
	}

	payload, err := json.Marshal(events.LeaveLifecycleEvent{
		EventType:   eventType,
		LeaveID:     l.ID.String(),
		SchoolID:    l.SchoolID.String(),
		UserID:      l.UserID.String(),
		LeaveTypeID: l.LeaveTypeID.String(),
		Status:      l.Status,
		TotalDays:   l.TotalDays,
		OccurredAt:  s.clk.Now(),
	})
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.New().String(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "leave",
		AggregateID:   l.ID.String(),
		EventType:     eventType,
		Topic:         events.LeaveLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func mapToResponse(l Leave) LeaveResponse {
	resp := LeaveResponse{
		ID:          l.ID.String(),
		SchoolID:    l.SchoolID.String(),
		LeaveTypeID: l.LeaveTypeID.String(),
		UserID:      l.UserID.String(),
		UserName:    l.UserName,
		UserRole:    l.UserRole,
		StartDate:   l.StartDate.Format("2006-01-02"),
		EndDate:     l.EndDate.Format("2006-01-02"),
		TotalDays:   l.TotalDays,
		Reason:      l.Reason,
		Status:      l.Status,
	}
	if l.ApproverID != nil {
		v := l.ApproverID.String()
		resp.ApproverID = &v
	}
	resp.ApproverName = l.ApproverName
	resp.DecisionRemarks = l.DecisionRemarks
	if l.DecidedAt != nil {
		v := l.DecidedAt.Format(time.RFC3339)
		resp.DecidedAt = &v
	}
	return resp
}

func mapToListResponse(leaves []Leave) []LeaveResponse {
	resp := make([]LeaveResponse, len(leaves))
	for i, l := range leaves {
		resp[i] = mapToResponse(l)
	}
	return resp
}
