package response

import (
	"context"
	"encoding/json"
	"errors"

	"atrium/admin-backend/internal"
	"atrium/admin-backend/internal/form"
	"atrium/admin-backend/internal/schema"

	databaseutil "github.com/NYCU-SDC/summer/pkg/database"
	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// StatusSubmitted is the default status assigned to a new submission.
const StatusSubmitted = "submitted"

type Querier interface {
	Create(ctx context.Context, arg CreateParams) (FormResponse, error)
	Get(ctx context.Context, arg GetParams) (FormResponse, error)
	ListByFormID(ctx context.Context, formID uuid.UUID) ([]FormResponse, error)
	Delete(ctx context.Context, arg DeleteParams) error
}

type FormStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (form.Form, error)
}

type Service struct {
	logger    *zap.Logger
	queries   Querier
	tracer    trace.Tracer
	formStore FormStore
}

func NewService(logger *zap.Logger, db DBTX, formStore FormStore) *Service {
	return &Service{
		logger:    logger,
		queries:   New(db),
		tracer:    otel.Tracer("response/service"),
		formStore: formStore,
	}
}

// Submit persists one submission against an active form. The answer
// map is pruned first: keys matching no field and answers to currently
// hidden fields never reach storage.
func (s *Service) Submit(ctx context.Context, formID uuid.UUID, answers schema.Answers) (FormResponse, error) {
	ctx, span := s.tracer.Start(ctx, "Submit")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	f, err := s.formStore.GetByID(ctx, formID)
	if err != nil {
		span.RecordError(err)
		return FormResponse{}, err
	}
	if !f.IsActive {
		span.RecordError(internal.ErrFormInactive)
		return FormResponse{}, internal.ErrFormInactive
	}

	fields, err := form.Fields(f)
	if err != nil {
		span.RecordError(err)
		return FormResponse{}, err
	}

	pruned := schema.PruneHidden(fields, answers)
	payload, err := json.Marshal(pruned)
	if err != nil {
		span.RecordError(err)
		return FormResponse{}, err
	}

	dbParams := map[string]interface{}{
		"form_id": formID.String(),
		"status":  StatusSubmitted,
	}
	tracker := logutil.StartDBOperation(ctx, logger, "Submit", dbParams)

	submission, err := s.queries.Create(ctx, CreateParams{
		FormID:  formID,
		Answers: payload,
		Status:  StatusSubmitted,
	})
	if err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "create form response")
		span.RecordError(err)
		return FormResponse{}, err
	}

	tracker.SuccessWrite(submission.ID.String())

	return submission, nil
}

func (s *Service) Get(ctx context.Context, formID, id uuid.UUID) (FormResponse, error) {
	ctx, span := s.tracer.Start(ctx, "Get")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	dbParams := map[string]interface{}{
		"id":      id.String(),
		"form_id": formID.String(),
	}
	tracker := logutil.StartDBOperation(ctx, logger, "Get", dbParams)

	submission, err := s.queries.Get(ctx, GetParams{ID: id, FormID: formID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = internal.ErrResponseNotFound
		} else {
			err = databaseutil.WrapDBErrorWithTracker(err, tracker, "get form response")
		}
		span.RecordError(err)
		return FormResponse{}, err
	}

	tracker.SuccessRead(1, id.String())

	return submission, nil
}

// ListByFormID returns the form's submissions newest first.
func (s *Service) ListByFormID(ctx context.Context, formID uuid.UUID) ([]FormResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ListByFormID")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	tracker := logutil.StartDBOperation(ctx, logger, "ListByFormID", map[string]interface{}{"form_id": formID.String()})

	submissions, err := s.queries.ListByFormID(ctx, formID)
	if err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "list form responses")
		span.RecordError(err)
		return nil, err
	}

	tracker.SuccessRead(len(submissions), formID.String())

	return submissions, nil
}

func (s *Service) Delete(ctx context.Context, formID, id uuid.UUID) error {
	ctx, span := s.tracer.Start(ctx, "Delete")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	dbParams := map[string]interface{}{
		"id":      id.String(),
		"form_id": formID.String(),
	}
	tracker := logutil.StartDBOperation(ctx, logger, "Delete", dbParams)

	if err := s.queries.Delete(ctx, DeleteParams{ID: id, FormID: formID}); err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "delete form response")
		span.RecordError(err)
		return err
	}

	tracker.SuccessWrite(id.String())

	return nil
}

// Answers decodes the stored answer map of a submission.
func Answers(r FormResponse) (schema.Answers, error) {
	var answers schema.Answers
	if err := json.Unmarshal(r.Answers, &answers); err != nil {
		return nil, internal.ErrInvalidSchema
	}
	return answers, nil
}
