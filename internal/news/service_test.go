package news

import (
	"context"
	"testing"
	"time"

	"atrium/admin-backend/internal"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/microcosm-cc/bluemonday"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

type mockQuerier struct {
	mock.Mock
}

func (m *mockQuerier) Create(ctx context.Context, arg CreateParams) (News, error) {
	args := m.Called(ctx, arg)
	row, _ := args.Get(0).(News)
	return row, args.Error(1)
}

func (m *mockQuerier) Update(ctx context.Context, arg UpdateParams) (News, error) {
	args := m.Called(ctx, arg)
	row, _ := args.Get(0).(News)
	return row, args.Error(1)
}

func (m *mockQuerier) MarkSent(ctx context.Context, arg MarkSentParams) (News, error) {
	args := m.Called(ctx, arg)
	row, _ := args.Get(0).(News)
	return row, args.Error(1)
}

func (m *mockQuerier) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockQuerier) GetByID(ctx context.Context, id uuid.UUID) (News, error) {
	args := m.Called(ctx, id)
	row, _ := args.Get(0).(News)
	return row, args.Error(1)
}

func (m *mockQuerier) List(ctx context.Context) ([]News, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]News)
	return rows, args.Error(1)
}

func (m *mockQuerier) Count(ctx context.Context) (CountRow, error) {
	args := m.Called(ctx)
	row, _ := args.Get(0).(CountRow)
	return row, args.Error(1)
}

func newTestService(t *testing.T) (*Service, *mockQuerier) {
	t.Helper()

	q := &mockQuerier{}
	return &Service{
		logger:    zap.NewNop(),
		queries:   q,
		tracer:    noop.NewTracerProvider().Tracer("test"),
		sanitizer: bluemonday.UGCPolicy(),
	}, q
}

func TestService_Create_ScheduledRequiresTime(t *testing.T) {
	service, q := newTestService(t)

	_, err := service.Create(context.Background(), CreateParams{
		Subject: "Monthly digest",
		Content: "Hello",
		Status:  string(StatusScheduled),
	})
	require.ErrorIs(t, err, internal.ErrScheduledAtRequired)
	q.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_Create_ScheduledWithTime(t *testing.T) {
	service, q := newTestService(t)

	scheduledAt := pgtype.Timestamptz{Time: time.Now().Add(24 * time.Hour), Valid: true}
	q.On("Create", mock.Anything, mock.MatchedBy(func(arg CreateParams) bool {
		return arg.Status == string(StatusScheduled) && arg.ScheduledAt.Valid
	})).Return(News{ID: uuid.New()}, nil)

	_, err := service.Create(context.Background(), CreateParams{
		Subject:     "Monthly digest",
		Content:     "Hello",
		Status:      string(StatusScheduled),
		ScheduledAt: scheduledAt,
	})
	require.NoError(t, err)
	q.AssertExpectations(t)
}

func TestService_Create_SanitizesContentHTML(t *testing.T) {
	service, q := newTestService(t)

	q.On("Create", mock.Anything, mock.MatchedBy(func(arg CreateParams) bool {
		return arg.ContentHTML.String == `<p>Hello</p>`
	})).Return(News{ID: uuid.New()}, nil)

	_, err := service.Create(context.Background(), CreateParams{
		Subject:     "Digest",
		Content:     "Hello",
		Status:      string(StatusDraft),
		ContentHTML: pgtype.Text{String: `<p>Hello<script>alert(1)</script></p>`, Valid: true},
	})
	require.NoError(t, err)
	q.AssertExpectations(t)
}

func TestService_Update_ScheduledRequiresTime(t *testing.T) {
	service, q := newTestService(t)

	_, err := service.Update(context.Background(), UpdateParams{
		ID:      uuid.New(),
		Subject: "Digest",
		Content: "Hello",
		Status:  string(StatusScheduled),
	})
	require.ErrorIs(t, err, internal.ErrScheduledAtRequired)
	q.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestService_MarkSent(t *testing.T) {
	service, q := newTestService(t)

	id := uuid.New()
	q.On("MarkSent", mock.Anything, MarkSentParams{ID: id, RecipientCount: 120}).
		Return(News{ID: id, Status: string(StatusPublished), RecipientCount: 120}, nil)

	sent, err := service.MarkSent(context.Background(), id, 120)
	require.NoError(t, err)
	require.Equal(t, string(StatusPublished), sent.Status)
	require.Equal(t, int32(120), sent.RecipientCount)
}

func TestService_GetByID_NotFound(t *testing.T) {
	service, q := newTestService(t)

	id := uuid.New()
	q.On("GetByID", mock.Anything, id).Return(News{}, pgx.ErrNoRows)

	_, err := service.GetByID(context.Background(), id)
	require.ErrorIs(t, err, internal.ErrNewsNotFound)
}
