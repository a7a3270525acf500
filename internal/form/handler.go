package form

import (
	"context"
	"net/http"
	"time"

	"atrium/admin-backend/internal/schema"

	handlerutil "github.com/NYCU-SDC/summer/pkg/handler"
	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/NYCU-SDC/summer/pkg/problem"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Request struct {
	Title    string                   `json:"title"`
	Slug     string                   `json:"slug" validate:"omitempty,slug"`
	IsActive bool                     `json:"is_active"`
	Fields   []schema.FieldDefinition `json:"fields"`
	EventID  *uuid.UUID               `json:"event_id"`
}

type PreviewRequest struct {
	Answers schema.Answers `json:"answers"`
}

type Response struct {
	ID        string                   `json:"id"`
	Slug      string                   `json:"slug"`
	Title     string                   `json:"title"`
	IsActive  bool                     `json:"is_active"`
	Fields    []schema.FieldDefinition `json:"fields"`
	EventID   *uuid.UUID               `json:"event_id"`
	CreatedAt time.Time                `json:"created_at"`
	UpdatedAt time.Time                `json:"updated_at"`
}

type PreviewResponse struct {
	VisibleFields []schema.FieldDefinition `json:"visible_fields"`
	Answers       schema.Answers           `json:"answers"`
}

// ToResponse converts a stored form into its API shape, decoding the
// jsonb schema back into the field list.
func ToResponse(f Form) (Response, error) {
	fields, err := Fields(f)
	if err != nil {
		return Response{}, err
	}

	var eventID *uuid.UUID
	if f.EventID.Valid {
		id := uuid.UUID(f.EventID.Bytes)
		eventID = &id
	}

	return Response{
		ID:        f.ID.String(),
		Slug:      f.Slug,
		Title:     f.Title,
		IsActive:  f.IsActive,
		Fields:    fields,
		EventID:   eventID,
		CreatedAt: f.CreatedAt.Time,
		UpdatedAt: f.UpdatedAt.Time,
	}, nil
}

type Store interface {
	Create(ctx context.Context, def Definition) (Form, error)
	Update(ctx context.Context, id uuid.UUID, def Definition) (Form, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (Form, error)
	List(ctx context.Context) ([]Form, error)
}

type Handler struct {
	logger *zap.Logger
	tracer trace.Tracer

	validator     *validator.Validate
	problemWriter *problem.HttpWriter

	store Store
}

func NewHandler(
	logger *zap.Logger,
	validator *validator.Validate,
	problemWriter *problem.HttpWriter,
	store Store,
) *Handler {
	return &Handler{
		logger:        logger,
		tracer:        otel.Tracer("form/handler"),
		validator:     validator,
		problemWriter: problemWriter,
		store:         store,
	}
}

func (h *Handler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "CreateHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	var req Request
	if err := handlerutil.ParseAndValidateRequestBody(traceCtx, h.validator, r, &req); err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	newForm, err := h.store.Create(traceCtx, toDefinition(req))
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	resp, err := ToResponse(newForm)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusCreated, resp)
}

func (h *Handler) GetHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "GetHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	id, err := handlerutil.ParseUUID(r.PathValue("formId"))
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	f, err := h.store.GetByID(traceCtx, id)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	resp, err := ToResponse(f)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, resp)
}

func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "ListHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	forms, err := h.store.List(traceCtx)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	responses := make([]Response, 0, len(forms))
	for _, f := range forms {
		resp, err := ToResponse(f)
		if err != nil {
			h.problemWriter.WriteError(traceCtx, w, err, logger)
			return
		}
		responses = append(responses, resp)
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, responses)
}

func (h *Handler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "UpdateHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	id, err := handlerutil.ParseUUID(r.PathValue("formId"))
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	var req Request
	if err := handlerutil.ParseAndValidateRequestBody(traceCtx, h.validator, r, &req); err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	updatedForm, err := h.store.Update(traceCtx, id, toDefinition(req))
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	resp, err := ToResponse(updatedForm)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, resp)
}

func (h *Handler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "DeleteHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	id, err := handlerutil.ParseUUID(r.PathValue("formId"))
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	if err := h.store.Delete(traceCtx, id); err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// PreviewHandler evaluates conditional visibility for a working answer
// map: it returns the fields currently shown and the answers that
// survive pruning, without persisting anything.
func (h *Handler) PreviewHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "PreviewHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	id, err := handlerutil.ParseUUID(r.PathValue("formId"))
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	var req PreviewRequest
	if err := handlerutil.ParseAndValidateRequestBody(traceCtx, h.validator, r, &req); err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	f, err := h.store.GetByID(traceCtx, id)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	fields, err := Fields(f)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	pruned := schema.PruneHidden(fields, req.Answers)
	handlerutil.WriteJSONResponse(w, http.StatusOK, PreviewResponse{
		VisibleFields: schema.VisibleFields(fields, pruned),
		Answers:       pruned,
	})
}

func toDefinition(req Request) Definition {
	slug := req.Slug
	if slug == "" {
		slug = schema.DeriveKey(req.Title)
	}
	return Definition{
		Title:    req.Title,
		Slug:     slug,
		IsActive: req.IsActive,
		Fields:   req.Fields,
		EventID:  req.EventID,
	}
}
