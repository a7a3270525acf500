package event

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	handlerutil "github.com/NYCU-SDC/summer/pkg/handler"
	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/NYCU-SDC/summer/pkg/problem"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ScheduleItem is one agenda entry of an event.
type ScheduleItem struct {
	Time        string `json:"time"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type Request struct {
	Title       string         `json:"title" validate:"required"`
	Slug        string         `json:"slug" validate:"omitempty,slug"`
	Description *string        `json:"description"`
	ContentHTML *string        `json:"content_html"`
	Location    *string        `json:"location"`
	StartDate   time.Time      `json:"start_date" validate:"required"`
	EndDate     *time.Time     `json:"end_date"`
	Capacity    *int32         `json:"capacity" validate:"omitempty,min=0"`
	Status      string         `json:"status" validate:"required,oneof=draft published cancelled completed"`
	Visibility  string         `json:"visibility" validate:"required,oneof=public private"`
	EventType   string         `json:"event_type"`
	IsFeatured  bool           `json:"is_featured"`
	Highlights  []string       `json:"highlights"`
	WhatToBring []string       `json:"what_to_bring"`
	Schedule    []ScheduleItem `json:"schedule"`
	ImageURL    *string        `json:"image_url" validate:"omitempty,url"`
}

type Response struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Slug        string         `json:"slug"`
	Description *string        `json:"description"`
	ContentHTML *string        `json:"content_html"`
	Location    *string        `json:"location"`
	StartDate   time.Time      `json:"start_date"`
	EndDate     *time.Time     `json:"end_date"`
	Capacity    *int32         `json:"capacity"`
	Status      string         `json:"status"`
	Visibility  string         `json:"visibility"`
	EventType   string         `json:"event_type"`
	IsFeatured  bool           `json:"is_featured"`
	Highlights  []string       `json:"highlights"`
	WhatToBring []string       `json:"what_to_bring"`
	Schedule    []ScheduleItem `json:"schedule"`
	ImageURL    *string        `json:"image_url"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func ToResponse(e Event) (Response, error) {
	var highlights, whatToBring []string
	var schedule []ScheduleItem
	if err := decodeList(e.Highlights, &highlights); err != nil {
		return Response{}, err
	}
	if err := decodeList(e.WhatToBring, &whatToBring); err != nil {
		return Response{}, err
	}
	if err := decodeList(e.Schedule, &schedule); err != nil {
		return Response{}, err
	}

	var endDate *time.Time
	if e.EndDate.Valid {
		endDate = &e.EndDate.Time
	}
	var capacity *int32
	if e.Capacity.Valid {
		capacity = &e.Capacity.Int32
	}

	return Response{
		ID:          e.ID.String(),
		Title:       e.Title,
		Slug:        e.Slug,
		Description: textPtr(e.Description),
		ContentHTML: textPtr(e.ContentHTML),
		Location:    textPtr(e.Location),
		StartDate:   e.StartDate.Time,
		EndDate:     endDate,
		Capacity:    capacity,
		Status:      e.Status,
		Visibility:  e.Visibility,
		EventType:   e.EventType,
		IsFeatured:  e.IsFeatured,
		Highlights:  highlights,
		WhatToBring: whatToBring,
		Schedule:    schedule,
		ImageURL:    textPtr(e.ImageURL),
		CreatedAt:   e.CreatedAt.Time,
		UpdatedAt:   e.UpdatedAt.Time,
	}, nil
}

func decodeList(raw []byte, target any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, target)
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	return &t.String
}

func toText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

type Store interface {
	Create(ctx context.Context, arg CreateParams) (Event, error)
	Update(ctx context.Context, arg UpdateParams) (Event, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (Event, error)
	List(ctx context.Context) ([]Event, error)
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
		tracer:        otel.Tracer("event/handler"),
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

	params, err := toCreateParams(req)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	newEvent, err := h.store.Create(traceCtx, params)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	resp, err := ToResponse(newEvent)
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

	id, err := handlerutil.ParseUUID(r.PathValue("eventId"))
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	e, err := h.store.GetByID(traceCtx, id)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	resp, err := ToResponse(e)
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

	events, err := h.store.List(traceCtx)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	responses := make([]Response, 0, len(events))
	for _, e := range events {
		resp, err := ToResponse(e)
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

	id, err := handlerutil.ParseUUID(r.PathValue("eventId"))
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	var req Request
	if err := handlerutil.ParseAndValidateRequestBody(traceCtx, h.validator, r, &req); err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	params, err := toCreateParams(req)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	updatedEvent, err := h.store.Update(traceCtx, UpdateParams{
		ID:          id,
		Title:       params.Title,
		Slug:        params.Slug,
		Description: params.Description,
		ContentHTML: params.ContentHTML,
		Location:    params.Location,
		StartDate:   params.StartDate,
		EndDate:     params.EndDate,
		Capacity:    params.Capacity,
		Status:      params.Status,
		Visibility:  params.Visibility,
		EventType:   params.EventType,
		IsFeatured:  params.IsFeatured,
		Highlights:  params.Highlights,
		WhatToBring: params.WhatToBring,
		Schedule:    params.Schedule,
		ImageURL:    params.ImageURL,
	})
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	resp, err := ToResponse(updatedEvent)
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

	id, err := handlerutil.ParseUUID(r.PathValue("eventId"))
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

func toCreateParams(req Request) (CreateParams, error) {
	highlights, err := encodeList(req.Highlights)
	if err != nil {
		return CreateParams{}, err
	}
	whatToBring, err := encodeList(req.WhatToBring)
	if err != nil {
		return CreateParams{}, err
	}
	schedule, err := encodeList(req.Schedule)
	if err != nil {
		return CreateParams{}, err
	}

	var endDate pgtype.Timestamptz
	if req.EndDate != nil {
		endDate = pgtype.Timestamptz{Time: *req.EndDate, Valid: true}
	}
	var capacity pgtype.Int4
	if req.Capacity != nil {
		capacity = pgtype.Int4{Int32: *req.Capacity, Valid: true}
	}

	return CreateParams{
		Title:       req.Title,
		Slug:        req.Slug,
		Description: toText(req.Description),
		ContentHTML: toText(req.ContentHTML),
		Location:    toText(req.Location),
		StartDate:   pgtype.Timestamptz{Time: req.StartDate, Valid: true},
		EndDate:     endDate,
		Capacity:    capacity,
		Status:      req.Status,
		Visibility:  req.Visibility,
		EventType:   req.EventType,
		IsFeatured:  req.IsFeatured,
		Highlights:  highlights,
		WhatToBring: whatToBring,
		Schedule:    schedule,
		ImageURL:    toText(req.ImageURL),
	}, nil
}

func encodeList(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}
