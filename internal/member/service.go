package member

import (
	"context"
	"errors"

	"atrium/admin-backend/internal"

	databaseutil "github.com/NYCU-SDC/summer/pkg/database"
	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleMember    Role = "member"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusPending  Status = "pending"
)

type Querier interface {
	Create(ctx context.Context, arg CreateParams) (Member, error)
	Update(ctx context.Context, arg UpdateParams) (Member, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (Member, error)
	List(ctx context.Context) ([]Member, error)
	Count(ctx context.Context) (CountRow, error)
}

type Service struct {
	logger  *zap.Logger
	queries Querier
	tracer  trace.Tracer
}

func NewService(logger *zap.Logger, db DBTX) *Service {
	return &Service{
		logger:  logger,
		queries: New(db),
		tracer:  otel.Tracer("member/service"),
	}
}

func (s *Service) Create(ctx context.Context, arg CreateParams) (Member, error) {
	ctx, span := s.tracer.Start(ctx, "Create")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	dbParams := map[string]interface{}{
		"email": arg.Email,
		"role":  arg.Role,
	}
	tracker := logutil.StartDBOperation(ctx, logger, "Create", dbParams)

	newMember, err := s.queries.Create(ctx, arg)
	if err != nil {
		err = databaseutil.WrapDBErrorWithKeyValue(err, "members", "email", arg.Email, logger, "create member")
		span.RecordError(err)
		return Member{}, err
	}

	tracker.SuccessWrite(newMember.ID.String())

	return newMember, nil
}

func (s *Service) Update(ctx context.Context, arg UpdateParams) (Member, error) {
	ctx, span := s.tracer.Start(ctx, "Update")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	dbParams := map[string]interface{}{
		"id":    arg.ID.String(),
		"email": arg.Email,
	}
	tracker := logutil.StartDBOperation(ctx, logger, "Update", dbParams)

	updatedMember, err := s.queries.Update(ctx, arg)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = internal.ErrMemberNotFound
		} else {
			err = databaseutil.WrapDBErrorWithKeyValue(err, "members", "email", arg.Email, logger, "update member")
		}
		span.RecordError(err)
		return Member{}, err
	}

	tracker.SuccessWrite(arg.ID.String())

	return updatedMember, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (Member, error) {
	ctx, span := s.tracer.Start(ctx, "GetByID")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	tracker := logutil.StartDBOperation(ctx, logger, "GetByID", map[string]interface{}{"id": id.String()})

	m, err := s.queries.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = internal.ErrMemberNotFound
		} else {
			err = databaseutil.WrapDBErrorWithTracker(err, tracker, "get member by id")
		}
		span.RecordError(err)
		return Member{}, err
	}

	tracker.SuccessRead(1, id.String())

	return m, nil
}

func (s *Service) List(ctx context.Context) ([]Member, error) {
	ctx, span := s.tracer.Start(ctx, "List")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	tracker := logutil.StartDBOperation(ctx, logger, "List", map[string]interface{}{})

	members, err := s.queries.List(ctx)
	if err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "list members")
		span.RecordError(err)
		return nil, err
	}

	tracker.SuccessRead(len(members), "")

	return members, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := s.tracer.Start(ctx, "Delete")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	tracker := logutil.StartDBOperation(ctx, logger, "Delete", map[string]interface{}{"id": id.String()})

	if err := s.queries.Delete(ctx, id); err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "delete member")
		span.RecordError(err)
		return err
	}

	tracker.SuccessWrite(id.String())

	return nil
}

// Count returns the total and active member counts for the dashboard.
func (s *Service) Count(ctx context.Context) (CountRow, error) {
	ctx, span := s.tracer.Start(ctx, "Count")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	tracker := logutil.StartDBOperation(ctx, logger, "Count", map[string]interface{}{})

	counts, err := s.queries.Count(ctx)
	if err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "count members")
		span.RecordError(err)
		return CountRow{}, err
	}

	tracker.SuccessRead(int(counts.Total), "")

	return counts, nil
}
