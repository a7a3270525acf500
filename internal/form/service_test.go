package form

import (
	"context"
	"encoding/json"
	"testing"

	"atrium/admin-backend/internal"
	"atrium/admin-backend/internal/schema"

	databaseutil "github.com/NYCU-SDC/summer/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

type mockQuerier struct {
	mock.Mock
}

func (m *mockQuerier) Create(ctx context.Context, arg CreateParams) (Form, error) {
	args := m.Called(ctx, arg)
	row, _ := args.Get(0).(Form)
	return row, args.Error(1)
}

func (m *mockQuerier) Update(ctx context.Context, arg UpdateParams) (Form, error) {
	args := m.Called(ctx, arg)
	row, _ := args.Get(0).(Form)
	return row, args.Error(1)
}

func (m *mockQuerier) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockQuerier) GetByID(ctx context.Context, id uuid.UUID) (Form, error) {
	args := m.Called(ctx, id)
	row, _ := args.Get(0).(Form)
	return row, args.Error(1)
}

func (m *mockQuerier) GetByEventID(ctx context.Context, eventID pgtype.UUID) (Form, error) {
	args := m.Called(ctx, eventID)
	row, _ := args.Get(0).(Form)
	return row, args.Error(1)
}

func (m *mockQuerier) List(ctx context.Context) ([]Form, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]Form)
	return rows, args.Error(1)
}

func newTestService(t *testing.T) (*Service, *mockQuerier) {
	t.Helper()

	q := &mockQuerier{}
	return &Service{
		logger:  zap.NewNop(),
		queries: q,
		tracer:  noop.NewTracerProvider().Tracer("test"),
	}, q
}

func validDefinition() Definition {
	field := schema.NewField()
	field.Label = "Full Name"
	field.Key = "full-name"

	return Definition{
		Title:    "Registration",
		Slug:     "registration",
		IsActive: true,
		Fields:   []schema.FieldDefinition{field},
	}
}

func TestService_Create_ValidationBlocksSave(t *testing.T) {
	service, q := newTestService(t)

	def := validDefinition()
	def.Fields[0].Label = ""

	_, err := service.Create(context.Background(), def)

	var validationErr *schema.ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, "Every field must have a label.", validationErr.Message)
	q.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_Create_NormalizesBeforePersist(t *testing.T) {
	service, q := newTestService(t)

	def := validDefinition()
	def.Fields[0].Label = "  Full Name  "
	def.Fields[0].Options = []string{"stray"}
	def.Fields[0].Order = 99

	q.On("Create", mock.Anything, mock.MatchedBy(func(arg CreateParams) bool {
		var stored schema.FormSchema
		require.NoError(t, json.Unmarshal(arg.Schema, &stored))
		require.Len(t, stored.Fields, 1)
		field := stored.Fields[0]
		return field.Label == "Full Name" && field.Order == 1 && len(field.Options) == 0
	})).Return(Form{ID: uuid.New()}, nil)

	_, err := service.Create(context.Background(), def)
	require.NoError(t, err)
	q.AssertExpectations(t)
}

func TestService_Create_SlugConflict(t *testing.T) {
	service, q := newTestService(t)

	q.On("Create", mock.Anything, mock.Anything).Return(Form{}, databaseutil.ErrUniqueViolation)

	_, err := service.Create(context.Background(), validDefinition())
	require.ErrorIs(t, err, internal.ErrFormSlugExists)
}

func TestService_Create_EventAlreadyLinked(t *testing.T) {
	service, q := newTestService(t)

	eventID := uuid.New()
	def := validDefinition()
	def.EventID = &eventID

	q.On("GetByEventID", mock.Anything, pgtype.UUID{Bytes: eventID, Valid: true}).
		Return(Form{ID: uuid.New()}, nil)

	_, err := service.Create(context.Background(), def)
	require.ErrorIs(t, err, internal.ErrEventAlreadyLinked)
	q.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_Update_KeepsOwnEventLink(t *testing.T) {
	service, q := newTestService(t)

	formID := uuid.New()
	eventID := uuid.New()
	def := validDefinition()
	def.EventID = &eventID

	q.On("GetByEventID", mock.Anything, pgtype.UUID{Bytes: eventID, Valid: true}).
		Return(Form{ID: formID}, nil)
	q.On("Update", mock.Anything, mock.MatchedBy(func(arg UpdateParams) bool {
		return arg.ID == formID && arg.EventID.Valid
	})).Return(Form{ID: formID}, nil)

	_, err := service.Update(context.Background(), formID, def)
	require.NoError(t, err)
	q.AssertExpectations(t)
}

func TestService_Update_NotFound(t *testing.T) {
	service, q := newTestService(t)

	q.On("Update", mock.Anything, mock.Anything).Return(Form{}, pgx.ErrNoRows)

	_, err := service.Update(context.Background(), uuid.New(), validDefinition())
	require.ErrorIs(t, err, internal.ErrFormNotFound)
}

func TestService_GetByID_NotFound(t *testing.T) {
	service, q := newTestService(t)

	id := uuid.New()
	q.On("GetByID", mock.Anything, id).Return(Form{}, pgx.ErrNoRows)

	_, err := service.GetByID(context.Background(), id)
	require.ErrorIs(t, err, internal.ErrFormNotFound)
}

func TestFields_InvalidSchema(t *testing.T) {
	_, err := Fields(Form{Schema: []byte("not json")})
	require.ErrorIs(t, err, internal.ErrInvalidSchema)
}

func TestFields_RoundTrip(t *testing.T) {
	field := schema.NewField()
	field.Label = "Email"
	field.Key = "email"
	field.Type = schema.TypeEmail

	payload, err := json.Marshal(schema.FormSchema{Fields: []schema.FieldDefinition{field}})
	require.NoError(t, err)

	fields, err := Fields(Form{Schema: payload})
	require.NoError(t, err)
	require.Len(t, fields, 1)
	require.Equal(t, "email", fields[0].Key)
	require.Equal(t, schema.TypeEmail, fields[0].Type)
}
