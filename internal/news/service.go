package news

import (
	"context"
	"errors"

	"atrium/admin-backend/internal"

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
	StatusScheduled Status = "scheduled"
	StatusPublished Status = "published"
)

type Querier interface {
	Create(ctx context.Context, arg CreateParams) (News, error)
	Update(ctx context.Context, arg UpdateParams) (News, error)
	MarkSent(ctx context.Context, arg MarkSentParams) (News, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (News, error)
	List(ctx context.Context) ([]News, error)
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
		tracer:    otel.Tracer("news/service"),
		sanitizer: bluemonday.UGCPolicy(),
	}
}

func (s *Service) Create(ctx context.Context, arg CreateParams) (News, error) {
	ctx, span := s.tracer.Start(ctx, "Create")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	if arg.Status == string(StatusScheduled) && !arg.ScheduledAt.Valid {
		span.RecordError(internal.ErrScheduledAtRequired)
		return News{}, internal.ErrScheduledAtRequired
	}
	if arg.ContentHTML.Valid {
		arg.ContentHTML.String = s.sanitizer.Sanitize(arg.ContentHTML.String)
	}

	dbParams := map[string]interface{}{
		"subject": arg.Subject,
		"status":  arg.Status,
	}
	tracker := logutil.StartDBOperation(ctx, logger, "Create", dbParams)

	newPost, err := s.queries.Create(ctx, arg)
	if err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "create news")
		span.RecordError(err)
		return News{}, err
	}

	tracker.SuccessWrite(newPost.ID.String())

	return newPost, nil
}

func (s *Service) Update(ctx context.Context, arg UpdateParams) (News, error) {
	ctx, span := s.tracer.Start(ctx, "Update")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	if arg.Status == string(StatusScheduled) && !arg.ScheduledAt.Valid {
		span.RecordError(internal.ErrScheduledAtRequired)
		return News{}, internal.ErrScheduledAtRequired
	}
	if arg.ContentHTML.Valid {
		arg.ContentHTML.String = s.sanitizer.Sanitize(arg.ContentHTML.String)
	}

	dbParams := map[string]interface{}{
		"id":      arg.ID.String(),
		"subject": arg.Subject,
		"status":  arg.Status,
	}
	tracker := logutil.StartDBOperation(ctx, logger, "Update", dbParams)

	updatedPost, err := s.queries.Update(ctx, arg)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = internal.ErrNewsNotFound
		} else {
			err = databaseutil.WrapDBErrorWithTracker(err, tracker, "update news")
		}
		span.RecordError(err)
		return News{}, err
	}

	tracker.SuccessWrite(arg.ID.String())

	return updatedPost, nil
}

// MarkSent transitions a post to published and records the delivery.
func (s *Service) MarkSent(ctx context.Context, id uuid.UUID, recipientCount int32) (News, error) {
	ctx, span := s.tracer.Start(ctx, "MarkSent")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	dbParams := map[string]interface{}{
		"id":              id.String(),
		"recipient_count": recipientCount,
	}
	tracker := logutil.StartDBOperation(ctx, logger, "MarkSent", dbParams)

	sentPost, err := s.queries.MarkSent(ctx, MarkSentParams{ID: id, RecipientCount: recipientCount})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = internal.ErrNewsNotFound
		} else {
			err = databaseutil.WrapDBErrorWithTracker(err, tracker, "mark news sent")
		}
		span.RecordError(err)
		return News{}, err
	}

	tracker.SuccessWrite(id.String())

	return sentPost, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (News, error) {
	ctx, span := s.tracer.Start(ctx, "GetByID")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	tracker := logutil.StartDBOperation(ctx, logger, "GetByID", map[string]interface{}{"id": id.String()})

	n, err := s.queries.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = internal.ErrNewsNotFound
		} else {
			err = databaseutil.WrapDBErrorWithTracker(err, tracker, "get news by id")
		}
		span.RecordError(err)
		return News{}, err
	}

	tracker.SuccessRead(1, id.String())

	return n, nil
}

func (s *Service) List(ctx context.Context) ([]News, error) {
	ctx, span := s.tracer.Start(ctx, "List")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	tracker := logutil.StartDBOperation(ctx, logger, "List", map[string]interface{}{})

	posts, err := s.queries.List(ctx)
	if err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "list news")
		span.RecordError(err)
		return nil, err
	}

	tracker.SuccessRead(len(posts), "")

	return posts, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := s.tracer.Start(ctx, "Delete")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	tracker := logutil.StartDBOperation(ctx, logger, "Delete", map[string]interface{}{"id": id.String()})

	if err := s.queries.Delete(ctx, id); err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "delete news")
		span.RecordError(err)
		return err
	}

	tracker.SuccessWrite(id.String())

	return nil
}

// Count returns the total and sent news counts for the dashboard.
func (s *Service) Count(ctx context.Context) (CountRow, error) {
	ctx, span := s.tracer.Start(ctx, "Count")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	tracker := logutil.StartDBOperation(ctx, logger, "Count", map[string]interface{}{})

	counts, err := s.queries.Count(ctx)
	if err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "count news")
		span.RecordError(err)
		return CountRow{}, err
	}

	tracker.SuccessRead(int(counts.Total), "")

	return counts, nil
}
