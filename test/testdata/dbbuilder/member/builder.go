package memberbuilder

import (
	"atrium/admin-backend/internal/member"
	"atrium/admin-backend/test/testdata"
	"atrium/admin-backend/test/testdata/dbbuilder"
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/require"
)

type Option func(*FactoryParams)

type FactoryParams struct {
	Email    string
	FullName string
	Role     string
	Status   string
}

func WithEmail(email string) Option {
	return func(p *FactoryParams) { p.Email = email }
}

func WithFullName(name string) Option {
	return func(p *FactoryParams) { p.FullName = name }
}

func WithRole(role string) Option {
	return func(p *FactoryParams) { p.Role = role }
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

func (b Builder) Queries() *member.Queries {
	return member.New(b.db)
}

func (b Builder) Create(opts ...Option) member.Member {
	queries := b.Queries()

	p := &FactoryParams{
		Email:    testdata.RandomEmail(),
		FullName: testdata.RandomFullName(),
		Role:     string(member.RoleMember),
		Status:   string(member.StatusActive),
	}
	for _, opt := range opts {
		opt(p)
	}

	row, err := queries.Create(context.Background(), member.CreateParams{
		Email:    p.Email,
		FullName: p.FullName,
		Role:     p.Role,
		Status:   p.Status,
		JoinedAt: pgtype.Timestamptz{},
	})
	require.NoError(b.t, err)

	return row
}
