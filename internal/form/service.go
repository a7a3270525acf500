package form

import (
	"context"
	"encoding/json"
	"errors"

	"atrium/admin-backend/internal"
	"atrium/admin-backend/internal/schema"

	databaseutil "github.com/NYCU-SDC/summer/pkg/database"
	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Querier interface {
	Create(ctx context.Context, arg CreateParams) (Form, error)
	Update(ctx context.Context, arg UpdateParams) (Form, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (Form, error)
	GetByEventID(ctx context.Context, eventID pgtype.UUID) (Form, error)
	List(ctx context.Context) ([]Form, error)
}

// Definition is the decoded editable state of a form: its metadata plus
// the field list the schema engine operates on.
type Definition struct {
	Title    string
	Slug     string
	IsActive bool
	Fields   []schema.FieldDefinition
	EventID  *uuid.UUID
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
		tracer:  otel.Tracer("form/service"),
	}
}

// Create validates and normalizes the definition, then persists it.
// Validation failures carry the editor message and block the save.
func (s *Service) Create(ctx context.Context, def Definition) (Form, error) {
	ctx, span := s.tracer.Start(ctx, "Create")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	meta := schema.Meta{Title: def.Title, Slug: def.Slug}
	if err := schema.Validate(meta, def.Fields); err != nil {
		span.RecordError(err)
		return Form{}, err
	}

	payload, err := json.Marshal(schema.FormSchema{Fields: schema.Normalize(def.Fields)})
	if err != nil {
		span.RecordError(err)
		return Form{}, err
	}

	eventID, err := s.claimEvent(ctx, def.EventID, uuid.Nil)
	if err != nil {
		span.RecordError(err)
		return Form{}, err
	}

	dbParams := map[string]interface{}{
		"slug":      def.Slug,
		"title":     def.Title,
		"is_active": def.IsActive,
	}
	tracker := logutil.StartDBOperation(ctx, logger, "Create", dbParams)

	newForm, err := s.queries.Create(ctx, CreateParams{
		Slug:     def.Slug,
		Title:    def.Title,
		IsActive: def.IsActive,
		Schema:   payload,
		EventID:  eventID,
	})
	if err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "create form")
		span.RecordError(err)
		return Form{}, wrapConflict(err)
	}

	tracker.SuccessWrite(newForm.ID.String())

	return newForm, nil
}

// Update replaces the form's metadata and schema completely; there is
// no partial update of a schema.
func (s *Service) Update(ctx context.Context, id uuid.UUID, def Definition) (Form, error) {
	ctx, span := s.tracer.Start(ctx, "Update")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	meta := schema.Meta{Title: def.Title, Slug: def.Slug}
	if err := schema.Validate(meta, def.Fields); err != nil {
		span.RecordError(err)
		return Form{}, err
	}

	payload, err := json.Marshal(schema.FormSchema{Fields: schema.Normalize(def.Fields)})
	if err != nil {
		span.RecordError(err)
		return Form{}, err
	}

	eventID, err := s.claimEvent(ctx, def.EventID, id)
	if err != nil {
		span.RecordError(err)
		return Form{}, err
	}

	dbParams := map[string]interface{}{
		"id":        id.String(),
		"slug":      def.Slug,
		"title":     def.Title,
		"is_active": def.IsActive,
	}
	tracker := logutil.StartDBOperation(ctx, logger, "Update", dbParams)

	updatedForm, err := s.queries.Update(ctx, UpdateParams{
		ID:       id,
		Slug:     def.Slug,
		Title:    def.Title,
		IsActive: def.IsActive,
		Schema:   payload,
		EventID:  eventID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = internal.ErrFormNotFound
		} else {
			err = wrapConflict(databaseutil.WrapDBErrorWithTracker(err, tracker, "update form"))
		}
		span.RecordError(err)
		return Form{}, err
	}

	tracker.SuccessWrite(id.String())

	return updatedForm, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (Form, error) {
	ctx, span := s.tracer.Start(ctx, "GetByID")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	tracker := logutil.StartDBOperation(ctx, logger, "GetByID", map[string]interface{}{"id": id.String()})

	f, err := s.queries.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = internal.ErrFormNotFound
		} else {
			err = databaseutil.WrapDBErrorWithTracker(err, tracker, "get form by id")
		}
		span.RecordError(err)
		return Form{}, err
	}

	tracker.SuccessRead(1, id.String())

	return f, nil
}

func (s *Service) List(ctx context.Context) ([]Form, error) {
	ctx, span := s.tracer.Start(ctx, "List")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	tracker := logutil.StartDBOperation(ctx, logger, "List", map[string]interface{}{})

	forms, err := s.queries.List(ctx)
	if err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "list forms")
		span.RecordError(err)
		return nil, err
	}

	tracker.SuccessRead(len(forms), "")

	return forms, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := s.tracer.Start(ctx, "Delete")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	tracker := logutil.StartDBOperation(ctx, logger, "Delete", map[string]interface{}{"id": id.String()})

	if err := s.queries.Delete(ctx, id); err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "delete form")
		span.RecordError(err)
		return err
	}

	tracker.SuccessWrite(id.String())

	return nil
}

// Fields decodes the stored schema back into the engine's field list.
func Fields(f Form) ([]schema.FieldDefinition, error) {
	var stored schema.FormSchema
	if err := json.Unmarshal(f.Schema, &stored); err != nil {
		return nil, internal.ErrInvalidSchema
	}
	return stored.Fields, nil
}

// claimEvent enforces linked-event exclusivity: a requested event may
// already be linked only to the form being updated itself.
func (s *Service) claimEvent(ctx context.Context, eventID *uuid.UUID, self uuid.UUID) (pgtype.UUID, error) {
	if eventID == nil {
		return pgtype.UUID{}, nil
	}

	linked := pgtype.UUID{Bytes: *eventID, Valid: true}
	existing, err := s.queries.GetByEventID(ctx, linked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return linked, nil
		}
		return pgtype.UUID{}, databaseutil.WrapDBError(err, logutil.WithContext(ctx, s.logger), "check event link")
	}
	if existing.ID != self {
		return pgtype.UUID{}, internal.ErrEventAlreadyLinked
	}
	return linked, nil
}

// wrapConflict maps a unique violation to the slug conflict error; the
// event link is pre-checked so the slug index is the only remaining
// unique constraint.
func wrapConflict(err error) error {
	if errors.Is(err, databaseutil.ErrUniqueViolation) {
		return internal.ErrFormSlugExists
	}
	return err
}
