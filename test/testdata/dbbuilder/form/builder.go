package formbuilder

import (
	"atrium/admin-backend/internal/form"
	"atrium/admin-backend/internal/schema"
	"atrium/admin-backend/test/testdata"
	"atrium/admin-backend/test/testdata/dbbuilder"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

type Builder struct {
	t  *testing.T
	db dbbuilder.DBTX
}

func New(t *testing.T, db dbbuilder.DBTX) *Builder {
	return &Builder{t: t, db: db}
}

func testField(fieldType schema.FieldType, label string) schema.FieldDefinition {
	field := schema.NewField()
	field.Type = fieldType
	field.Label = label
	field.Key = schema.DeriveKey(label)
	return field
}

func (b Builder) Queries() *form.Queries {
	return form.New(b.db)
}

func (b Builder) Create(opts ...Option) form.Form {
	queries := b.Queries()

	p := &FactoryParams{
		Title:    testdata.RandomName(),
		Slug:     testdata.RandomSlug(),
		IsActive: true,
		Fields: []schema.FieldDefinition{
			testField(schema.TypeText, "Full Name"),
			testField(schema.TypeEmail, "Email"),
		},
	}
	for _, opt := range opts {
		opt(p)
	}

	payload, err := json.Marshal(schema.FormSchema{Fields: p.Fields})
	require.NoError(b.t, err)

	formRow, err := queries.Create(context.Background(), form.CreateParams{
		Slug:     p.Slug,
		Title:    p.Title,
		IsActive: p.IsActive,
		Schema:   payload,
		EventID:  p.EventID,
	})
	require.NoError(b.t, err)

	return formRow
}
