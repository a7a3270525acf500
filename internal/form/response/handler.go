package response

import (
	"context"
	"net/http"
	"time"

	"atrium/admin-backend/internal"
	"atrium/admin-backend/internal/form"
	"atrium/admin-backend/internal/form/analytics"
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

type SubmitRequest struct {
	Answers schema.Answers `json:"answers" validate:"required"`
}

type Response struct {
	ID          string         `json:"id"`
	FormID      string         `json:"form_id"`
	Answers     schema.Answers `json:"answers"`
	Status      string         `json:"status"`
	SubmittedAt time.Time      `json:"submitted_at"`
}

// ElectionResponse pairs a ranked field with its three tallies.
type ElectionResponse struct {
	FieldKey string                   `json:"field_key"`
	Label    string                   `json:"label"`
	Result   analytics.ElectionResult `json:"result"`
}

type AnalyticsResponse struct {
	Total     int                      `json:"total"`
	Summaries []analytics.FieldSummary `json:"summaries"`
	Elections []ElectionResponse       `json:"elections"`
}

func ToResponse(r FormResponse) (Response, error) {
	answers, err := Answers(r)
	if err != nil {
		return Response{}, err
	}
	return Response{
		ID:          r.ID.String(),
		FormID:      r.FormID.String(),
		Answers:     answers,
		Status:      r.Status,
		SubmittedAt: r.SubmittedAt.Time,
	}, nil
}

type Store interface {
	Submit(ctx context.Context, formID uuid.UUID, answers schema.Answers) (FormResponse, error)
	Get(ctx context.Context, formID, id uuid.UUID) (FormResponse, error)
	ListByFormID(ctx context.Context, formID uuid.UUID) ([]FormResponse, error)
	Delete(ctx context.Context, formID, id uuid.UUID) error
}

type formStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (form.Form, error)
}

type Handler struct {
	logger *zap.Logger
	tracer trace.Tracer

	validator     *validator.Validate
	problemWriter *problem.HttpWriter

	store     Store
	formStore formStore
}

func NewHandler(
	logger *zap.Logger,
	validator *validator.Validate,
	problemWriter *problem.HttpWriter,
	store Store,
	formStore formStore,
) *Handler {
	return &Handler{
		logger:        logger,
		tracer:        otel.Tracer("response/handler"),
		validator:     validator,
		problemWriter: problemWriter,
		store:         store,
		formStore:     formStore,
	}
}

func (h *Handler) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "SubmitHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	formID, err := handlerutil.ParseUUID(r.PathValue("formId"))
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	var req SubmitRequest
	if err := handlerutil.ParseAndValidateRequestBody(traceCtx, h.validator, r, &req); err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	submission, err := h.store.Submit(traceCtx, formID, req.Answers)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	resp, err := ToResponse(submission)
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

	formID, err := handlerutil.ParseUUID(r.PathValue("formId"))
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	id, err := handlerutil.ParseUUID(r.PathValue("responseId"))
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	submission, err := h.store.Get(traceCtx, formID, id)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	resp, err := ToResponse(submission)
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

	formID, err := handlerutil.ParseUUID(r.PathValue("formId"))
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	submissions, err := h.store.ListByFormID(traceCtx, formID)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	responses := make([]Response, 0, len(submissions))
	for _, submission := range submissions {
		resp, err := ToResponse(submission)
		if err != nil {
			h.problemWriter.WriteError(traceCtx, w, err, logger)
			return
		}
		responses = append(responses, resp)
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, responses)
}

func (h *Handler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "DeleteHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	formID, err := handlerutil.ParseUUID(r.PathValue("formId"))
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	id, err := handlerutil.ParseUUID(r.PathValue("responseId"))
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	if err := h.store.Delete(traceCtx, formID, id); err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// toBallot flattens the array shapes a ranked answer can take after a
// JSON round trip. A missing or non-array answer yields no ballot.
func toBallot(raw any) []string {
	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		entries := make([]string, 0, len(v))
		for _, entry := range v {
			if s, ok := entry.(string); ok {
				entries = append(entries, s)
			}
		}
		return entries
	default:
		return nil
	}
}

// AnalyticsHandler computes per-field summaries over all submissions
// and, for every ranked multi-select field, the three election tallies
// side by side.
func (h *Handler) AnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "AnalyticsHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	formID, err := handlerutil.ParseUUID(r.PathValue("formId"))
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	f, err := h.formStore.GetByID(traceCtx, formID)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	fields, err := form.Fields(f)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	submissions, err := h.store.ListByFormID(traceCtx, formID)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	answerSets := make([]schema.Answers, 0, len(submissions))
	for _, submission := range submissions {
		answers, err := Answers(submission)
		if err != nil {
			h.problemWriter.WriteError(traceCtx, w, err, logger)
			return
		}
		answerSets = append(answerSets, answers)
	}

	resp := AnalyticsResponse{
		Total:     len(submissions),
		Summaries: analytics.Summarize(fields, answerSets),
		Elections: []ElectionResponse{},
	}
	for _, field := range fields {
		if field.Type != schema.TypeMultiSelect || !field.IsRanked {
			continue
		}
		ballots := make([][]string, 0, len(answerSets))
		for _, answers := range answerSets {
			if ballot := toBallot(answers[field.Key]); ballot != nil {
				ballots = append(ballots, ballot)
			}
		}
		resp.Elections = append(resp.Elections, ElectionResponse{
			FieldKey: field.Key,
			Label:    field.Label,
			Result:   analytics.RunElection(field.Options, ballots),
		})
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, resp)
}

// ElectionHandler tallies a single ranked multi-select field addressed
// by its key.
func (h *Handler) ElectionHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "ElectionHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	formID, err := handlerutil.ParseUUID(r.PathValue("formId"))
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}
	fieldKey := r.PathValue("fieldKey")

	f, err := h.formStore.GetByID(traceCtx, formID)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	fields, err := form.Fields(f)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	var target *schema.FieldDefinition
	for i := range fields {
		if fields[i].Key == fieldKey {
			target = &fields[i]
			break
		}
	}
	if target == nil {
		h.problemWriter.WriteError(traceCtx, w, internal.ErrFieldNotFound, logger)
		return
	}
	if target.Type != schema.TypeMultiSelect || !target.IsRanked {
		h.problemWriter.WriteError(traceCtx, w, internal.ErrFieldNotRanked, logger)
		return
	}

	submissions, err := h.store.ListByFormID(traceCtx, formID)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	ballots := make([][]string, 0, len(submissions))
	for _, submission := range submissions {
		answers, err := Answers(submission)
		if err != nil {
			h.problemWriter.WriteError(traceCtx, w, err, logger)
			return
		}
		if ballot := toBallot(answers[fieldKey]); ballot != nil {
			ballots = append(ballots, ballot)
		}
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, ElectionResponse{
		FieldKey: target.Key,
		Label:    target.Label,
		Result:   analytics.RunElection(target.Options, ballots),
	})
}
