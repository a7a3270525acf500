package news

import (
	"context"
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

type Request struct {
	Subject       string     `json:"subject" validate:"required"`
	Content       string     `json:"content" validate:"required"`
	Slug          *string    `json:"slug" validate:"omitempty,slug"`
	ContentHTML   *string    `json:"content_html"`
	FeaturedImage *string    `json:"featured_image" validate:"omitempty,url"`
	Status        string     `json:"status" validate:"required,oneof=draft scheduled published"`
	ScheduledAt   *time.Time `json:"scheduled_at"`
}

type MarkSentRequest struct {
	RecipientCount int32 `json:"recipient_count" validate:"min=0"`
}

type Response struct {
	ID             string     `json:"id"`
	Subject        string     `json:"subject"`
	Content        string     `json:"content"`
	Slug           *string    `json:"slug"`
	ContentHTML    *string    `json:"content_html"`
	FeaturedImage  *string    `json:"featured_image"`
	Status         string     `json:"status"`
	ScheduledAt    *time.Time `json:"scheduled_at"`
	SentAt         *time.Time `json:"sent_at"`
	RecipientCount int32      `json:"recipient_count"`
	OpenRate       *float64   `json:"open_rate"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func ToResponse(n News) Response {
	var scheduledAt, sentAt *time.Time
	if n.ScheduledAt.Valid {
		scheduledAt = &n.ScheduledAt.Time
	}
	if n.SentAt.Valid {
		sentAt = &n.SentAt.Time
	}
	var openRate *float64
	if n.OpenRate.Valid {
		openRate = &n.OpenRate.Float64
	}

	return Response{
		ID:             n.ID.String(),
		Subject:        n.Subject,
		Content:        n.Content,
		Slug:           textPtr(n.Slug),
		ContentHTML:    textPtr(n.ContentHTML),
		FeaturedImage:  textPtr(n.FeaturedImage),
		Status:         n.Status,
		ScheduledAt:    scheduledAt,
		SentAt:         sentAt,
		RecipientCount: n.RecipientCount,
		OpenRate:       openRate,
		CreatedAt:      n.CreatedAt.Time,
		UpdatedAt:      n.UpdatedAt.Time,
	}
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

func toTimestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}

type Store interface {
	Create(ctx context.Context, arg CreateParams) (News, error)
	Update(ctx context.Context, arg UpdateParams) (News, error)
	MarkSent(ctx context.Context, id uuid.UUID, recipientCount int32) (News, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (News, error)
	List(ctx context.Context) ([]News, error)
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
		tracer:        otel.Tracer("news/handler"),
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

	newPost, err := h.store.Create(traceCtx, CreateParams{
		Subject:       req.Subject,
		Content:       req.Content,
		Slug:          toText(req.Slug),
		ContentHTML:   toText(req.ContentHTML),
		FeaturedImage: toText(req.FeaturedImage),
		Status:        req.Status,
		ScheduledAt:   toTimestamptz(req.ScheduledAt),
	})
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusCreated, ToResponse(newPost))
}

func (h *Handler) GetHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "GetHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	id, err := handlerutil.ParseUUID(r.PathValue("newsId"))
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	n, err := h.store.GetByID(traceCtx, id)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, ToResponse(n))
}

func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "ListHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	posts, err := h.store.List(traceCtx)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	responses := make([]Response, 0, len(posts))
	for _, n := range posts {
		responses = append(responses, ToResponse(n))
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, responses)
}

func (h *Handler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "UpdateHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	id, err := handlerutil.ParseUUID(r.PathValue("newsId"))
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	var req Request
	if err := handlerutil.ParseAndValidateRequestBody(traceCtx, h.validator, r, &req); err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	updatedPost, err := h.store.Update(traceCtx, UpdateParams{
		ID:            id,
		Subject:       req.Subject,
		Content:       req.Content,
		Slug:          toText(req.Slug),
		ContentHTML:   toText(req.ContentHTML),
		FeaturedImage: toText(req.FeaturedImage),
		Status:        req.Status,
		ScheduledAt:   toTimestamptz(req.ScheduledAt),
	})
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, ToResponse(updatedPost))
}

// MarkSentHandler records a completed delivery for a post.
func (h *Handler) MarkSentHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "MarkSentHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	id, err := handlerutil.ParseUUID(r.PathValue("newsId"))
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	var req MarkSentRequest
	if err := handlerutil.ParseAndValidateRequestBody(traceCtx, h.validator, r, &req); err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	sentPost, err := h.store.MarkSent(traceCtx, id, req.RecipientCount)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, ToResponse(sentPost))
}

func (h *Handler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "DeleteHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	id, err := handlerutil.ParseUUID(r.PathValue("newsId"))
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
