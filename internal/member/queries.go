package member

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

type DBTX interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

type Member struct {
	ID        uuid.UUID
	Email     string
	FullName  string
	FirstName pgtype.Text
	LastName  pgtype.Text
	Role      string
	Status    string
	AvatarURL pgtype.Text
	JoinedAt  pgtype.Timestamptz
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

const memberColumns = `id, email, full_name, first_name, last_name, role, status, avatar_url, joined_at, created_at, updated_at`

const createMember = `
INSERT INTO members (email, full_name, first_name, last_name, role, status, avatar_url, joined_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, coalesce($8, now()))
RETURNING ` + memberColumns

type CreateParams struct {
	Email     string
	FullName  string
	FirstName pgtype.Text
	LastName  pgtype.Text
	Role      string
	Status    string
	AvatarURL pgtype.Text
	JoinedAt  pgtype.Timestamptz
}

func (q *Queries) Create(ctx context.Context, arg CreateParams) (Member, error) {
	row := q.db.QueryRow(ctx, createMember,
		arg.Email, arg.FullName, arg.FirstName, arg.LastName,
		arg.Role, arg.Status, arg.AvatarURL, arg.JoinedAt,
	)
	return scanMember(row)
}

const updateMember = `
UPDATE members
SET email = $2, full_name = $3, first_name = $4, last_name = $5,
    role = $6, status = $7, avatar_url = $8, updated_at = now()
WHERE id = $1
RETURNING ` + memberColumns

type UpdateParams struct {
	ID        uuid.UUID
	Email     string
	FullName  string
	FirstName pgtype.Text
	LastName  pgtype.Text
	Role      string
	Status    string
	AvatarURL pgtype.Text
}

func (q *Queries) Update(ctx context.Context, arg UpdateParams) (Member, error) {
	row := q.db.QueryRow(ctx, updateMember,
		arg.ID, arg.Email, arg.FullName, arg.FirstName, arg.LastName,
		arg.Role, arg.Status, arg.AvatarURL,
	)
	return scanMember(row)
}

const getMemberByID = `
SELECT ` + memberColumns + `
FROM members
WHERE id = $1
`

func (q *Queries) GetByID(ctx context.Context, id uuid.UUID) (Member, error) {
	row := q.db.QueryRow(ctx, getMemberByID, id)
	return scanMember(row)
}

const listMembers = `
SELECT ` + memberColumns + `
FROM members
ORDER BY joined_at DESC
`

func (q *Queries) List(ctx context.Context) ([]Member, error) {
	rows, err := q.db.Query(ctx, listMembers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Member
	for rows.Next() {
		item, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

const deleteMember = `
DELETE FROM members
WHERE id = $1
`

func (q *Queries) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteMember, id)
	return err
}

const countMembers = `
SELECT count(*), count(*) FILTER (WHERE status = 'active')
FROM members
`

type CountRow struct {
	Total  int64
	Active int64
}

func (q *Queries) Count(ctx context.Context) (CountRow, error) {
	var c CountRow
	err := q.db.QueryRow(ctx, countMembers).Scan(&c.Total, &c.Active)
	return c, err
}

func scanMember(row pgx.Row) (Member, error) {
	var m Member
	err := row.Scan(
		&m.ID,
		&m.Email,
		&m.FullName,
		&m.FirstName,
		&m.LastName,
		&m.Role,
		&m.Status,
		&m.AvatarURL,
		&m.JoinedAt,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	return m, err
}
