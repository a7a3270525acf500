package event

import (
	"context"
	"errors"

	"atrium/admin-backend/internal"
	"atrium/admin-backend/internal/schema"

	databaseutil "github.com/NYCU-SDC/summer/pkg/database"
	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/microcosm-cc/bluemonday"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

type Querier interface {
	Create(ctx context.Context, arg CreateParams) (Event, error)
	Update(ctx context.Context, arg UpdateParams) (Event, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (Event, error)
	List(ctx context.Context) ([]Event, error)
	Count(ctx context.Context) (CountRow, error)
}

type Service struct {
	logger    *zap.Logger
	queries   Querier
	tracer    trace.Tracer
	sanitizer *bluemonday.Policy
}

func NewService(logger *zap.Logger, db DBTX) *Service {
	return &Service{
		logger:    logger,
		queries:   New(db),
		tracer:    otel.Tracer("event/service"),
		sanitizer: bluemonday.UGCPolicy(),
	}
}

// Create persists a new event. The slug falls back to one derived from
// the title, and stored HTML content is sanitized first.
func (s *Service) Create(ctx context.Context, arg CreateParams) (Event, error) {
	ctx, span := s.tracer.Start(ctx, "Create")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	if arg.Slug == "" {
		arg.Slug = schema.DeriveKey(arg.Title)
	}
	if arg.ContentHTML.Valid {
		arg.ContentHTML.String = s.sanitizer.Sanitize(arg.ContentHTML.String)
	}

	dbParams := map[string]interface{}{
		"title":  arg.Title,
		"slug":   arg.Slug,
		"status": arg.Status,
	}
	tracker := logutil.StartDBOperation(ctx, logger, "Create", dbParams)

	newEvent, err := s.queries.Create(ctx, arg)
	if err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "create event")
		if errors.Is(err, databaseutil.ErrUniqueViolation) {
			err = internal.ErrEventSlugExists
		}
		span.RecordError(err)
		return Event{}, err
	}

	tracker.SuccessWrite(newEvent.ID.String())

	return newEvent, nil
}

func (s *Service) Update(ctx context.Context, arg UpdateParams) (Event, error) {
	ctx, span := s.tracer.Start(ctx, "Update")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	if arg.Slug == "" {
		arg.Slug = schema.DeriveKey(arg.Title)
	}
	if arg.ContentHTML.Valid {
		arg.ContentHTML.String = s.sanitizer.Sanitize(arg.ContentHTML.String)
	}

	dbParams := map[string]interface{}{
		"id":    arg.ID.String(),
		"title": arg.Title,
		"slug":  arg.Slug,
	}
	tracker := logutil.StartDBOperation(ctx, logger, "Update", dbParams)

	updatedEvent, err := s.queries.Update(ctx, arg)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = internal.ErrEventNotFound
		} else {
			err = databaseutil.WrapDBErrorWithTracker(err, tracker, "update event")
			if errors.Is(err, databaseutil.ErrUniqueViolation) {
				err = internal.ErrEventSlugExists
			}
		}
		span.RecordError(err)
		return Event{}, err
	}

	tracker.SuccessWrite(arg.ID.String())

	return updatedEvent, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (Event, error) {
	ctx, span := s.tracer.Start(ctx, "GetByID")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	tracker := logutil.StartDBOperation(ctx, logger, "GetByID", map[string]interface{}{"id": id.String()})

	e, err := s.queries.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = internal.ErrEventNotFound
		} else {
			err = databaseutil.WrapDBErrorWithTracker(err, tracker, "get event by id")
		}
		span.RecordError(err)
		return Event{}, err
	}

	tracker.SuccessRead(1, id.String())

	return e, nil
}

func (s *Service) List(ctx context.Context) ([]Event, error) {
	ctx, span := s.tracer.Start(ctx, "List")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	tracker := logutil.StartDBOperation(ctx, logger, "List", map[string]interface{}{})

	events, err := s.queries.List(ctx)
	if err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "list events")
		span.RecordError(err)
		return nil, err
	}

	tracker.SuccessRead(len(events), "")

	return events, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := s.tracer.Start(ctx, "Delete")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	tracker := logutil.StartDBOperation(ctx, logger, "Delete", map[string]interface{}{"id": id.String()})

	if err := s.queries.Delete(ctx, id); err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "delete event")
		span.RecordError(err)
		return err
	}

	tracker.SuccessWrite(id.String())

	return nil
}

// Count returns the total and upcoming event counts for the dashboard.
func (s *Service) Count(ctx context.Context) (CountRow, error) {
	ctx, span := s.tracer.Start(ctx, "Count")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	tracker := logutil.StartDBOperation(ctx, logger, "Count", map[string]interface{}{})

	counts, err := s.queries.Count(ctx)
	if err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "count events")
		span.RecordError(err)
		return CountRow{}, err
	}

	tracker.SuccessRead(int(counts.Total), "")

	return counts, nil
}
