package responsebuilder

import (
	"atrium/admin-backend/internal/form/response"
	"atrium/admin-backend/test/testdata/dbbuilder"
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type Option func(*FactoryParams)

type FactoryParams struct {
	FormID  uuid.UUID
	Answers map[string]any
	Status  string
}

func WithFormID(formID uuid.UUID) Option {
	return func(p *FactoryParams) { p.FormID = formID }
}

func WithAnswers(answers map[string]any) Option {
	return func(p *FactoryParams) { p.Answers = answers }
}

func WithStatus(status string) Option {
	return func(p *FactoryParams) { p.Status = status }
}

type Builder struct {
	t  *testing.T
	db dbbuilder.DBTX
}

func New(t *testing.T, db dbbuilder.DBTX) *Builder {
	return &Builder{t: t, db: db}
}

func (b Builder) Queries() *response.Queries {
	return response.New(b.db)
}

func (b Builder) Create(opts ...Option) response.FormResponse {
	queries := b.Queries()

	p := &FactoryParams{
		Answers: map[string]any{},
		Status:  response.StatusSubmitted,
	}
	for _, opt := range opts {
		opt(p)
	}

	payload, err := json.Marshal(p.Answers)
	require.NoError(b.t, err)

	row, err := queries.Create(context.Background(), response.CreateParams{
		FormID:  p.FormID,
		Answers: payload,
		Status:  p.Status,
	})
	require.NoError(b.t, err)

	return row
}
