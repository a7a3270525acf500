//go:build integration

package form_test

import (
	"context"
	"testing"

	"atrium/admin-backend/internal/form"
	"atrium/admin-backend/internal/form/response"
	"atrium/admin-backend/test"
	formbuilder "atrium/admin-backend/test/testdata/dbbuilder/form"
	responsebuilder "atrium/admin-backend/test/testdata/dbbuilder/response"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

const migrationSource = "file://../database/migrations"

func TestQueries_CreateAndGet(t *testing.T) {
	dbPool := test.StartPostgres(t, migrationSource)
	builder := formbuilder.New(t, dbPool)
	queries := form.New(dbPool)

	created := builder.Create(formbuilder.WithTitle("Event Feedback"), formbuilder.WithSlug("event-feedback"))

	got, err := queries.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, "Event Feedback", got.Title)
	require.Equal(t, "event-feedback", got.Slug)
	require.True(t, got.IsActive)
	require.JSONEq(t, string(created.Schema), string(got.Schema))
}

func TestQueries_SlugUnique(t *testing.T) {
	dbPool := test.StartPostgres(t, migrationSource)
	builder := formbuilder.New(t, dbPool)

	builder.Create(formbuilder.WithSlug("taken"))

	_, err := form.New(dbPool).Create(context.Background(), form.CreateParams{
		Slug:     "taken",
		Title:    "Duplicate",
		IsActive: true,
		Schema:   []byte(`{"fields":[]}`),
	})
	require.Error(t, err)
}

func TestQueries_ListOrdering(t *testing.T) {
	dbPool := test.StartPostgres(t, migrationSource)
	builder := formbuilder.New(t, dbPool)

	first := builder.Create()
	second := builder.Create()

	forms, err := form.New(dbPool).List(context.Background())
	require.NoError(t, err)
	require.Len(t, forms, 2)
	require.Equal(t, second.ID, forms[0].ID)
	require.Equal(t, first.ID, forms[1].ID)
}

func TestQueries_DeleteCascadesResponses(t *testing.T) {
	dbPool := test.StartPostgres(t, migrationSource)
	builder := formbuilder.New(t, dbPool)
	responses := responsebuilder.New(t, dbPool)

	created := builder.Create()
	submitted := responses.Create(
		responsebuilder.WithFormID(created.ID),
		responsebuilder.WithAnswers(map[string]any{"full-name": "Ada"}),
	)

	err := form.New(dbPool).Delete(context.Background(), created.ID)
	require.NoError(t, err)

	_, err = responses.Queries().Get(context.Background(), response.GetParams{ID: submitted.ID, FormID: created.ID})
	require.ErrorIs(t, err, pgx.ErrNoRows)
}
