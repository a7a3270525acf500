// Package export renders a form's submissions as an xlsx workbook for
// download from the admin dashboard.
package export

import (
	"context"
	"fmt"
	"strings"
	"time"

	"atrium/admin-backend/internal/form"
	"atrium/admin-backend/internal/form/response"
	"atrium/admin-backend/internal/schema"

	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const sheetName = "Responses"

type FormStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (form.Form, error)
}

type ResponseStore interface {
	ListByFormID(ctx context.Context, formID uuid.UUID) ([]response.FormResponse, error)
}

type Service struct {
	logger        *zap.Logger
	tracer        trace.Tracer
	formStore     FormStore
	responseStore ResponseStore
}

func NewService(logger *zap.Logger, formStore FormStore, responseStore ResponseStore) *Service {
	return &Service{
		logger:        logger,
		tracer:        otel.Tracer("export/service"),
		formStore:     formStore,
		responseStore: responseStore,
	}
}

// Workbook builds the xlsx export for one form: a Responses sheet with
// submission time, status, and one column per schema field in display
// order. The caller owns closing the returned file.
func (s *Service) Workbook(ctx context.Context, formID uuid.UUID) (*excelize.File, string, error) {
	ctx, span := s.tracer.Start(ctx, "Workbook")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	f, err := s.formStore.GetByID(ctx, formID)
	if err != nil {
		span.RecordError(err)
		return nil, "", err
	}

	fields, err := form.Fields(f)
	if err != nil {
		span.RecordError(err)
		return nil, "", err
	}

	submissions, err := s.responseStore.ListByFormID(ctx, formID)
	if err != nil {
		span.RecordError(err)
		return nil, "", err
	}

	workbook, err := buildWorkbook(fields, submissions)
	if err != nil {
		span.RecordError(err)
		return nil, "", err
	}

	logger.Info("Built response export",
		zap.String("form_id", formID.String()),
		zap.Int("responses", len(submissions)),
	)

	filename := fmt.Sprintf("%s-responses.xlsx", f.Slug)
	return workbook, filename, nil
}

func buildWorkbook(fields []schema.FieldDefinition, submissions []response.FormResponse) (*excelize.File, error) {
	workbook := excelize.NewFile()
	if err := workbook.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	headers := []string{"Submitted At", "Status"}
	for _, field := range fields {
		headers = append(headers, field.Label)
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := workbook.SetCellValue(sheetName, cell, header); err != nil {
			return nil, err
		}
	}

	for row, submission := range submissions {
		answers, err := response.Answers(submission)
		if err != nil {
			return nil, err
		}

		values := []any{
			submission.SubmittedAt.Time.Format(time.RFC3339),
			submission.Status,
		}
		for _, field := range fields {
			values = append(values, cellValue(answers[field.Key]))
		}

		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := workbook.SetCellValue(sheetName, cell, value); err != nil {
				return nil, err
			}
		}
	}

	if err := styleHeader(workbook, len(headers)); err != nil {
		return nil, err
	}

	return workbook, nil
}

// cellValue flattens an answer into a single cell: arrays join with
// ", ", nil renders empty, scalars pass through.
func cellValue(raw any) any {
	switch v := raw.(type) {
	case nil:
		return ""
	case []string:
		return strings.Join(v, ", ")
	case []any:
		entries := make([]string, 0, len(v))
		for _, entry := range v {
			entries = append(entries, fmt.Sprint(entry))
		}
		return strings.Join(entries, ", ")
	default:
		return v
	}
}

func styleHeader(workbook *excelize.File, columns int) error {
	style, err := workbook.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E6E6E6"}},
	})
	if err != nil {
		return err
	}

	last, err := excelize.CoordinatesToCellName(columns, 1)
	if err != nil {
		return err
	}
	if err := workbook.SetCellStyle(sheetName, "A1", last, style); err != nil {
		return err
	}

	if err := workbook.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	return workbook.AutoFilter(sheetName, "A1:"+last, nil)
}
