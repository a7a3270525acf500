package form

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

// Form is the persisted form row. Schema holds the normalized field
// list as jsonb.
type Form struct {
	ID        uuid.UUID
	Slug      string
	Title     string
	IsActive  bool
	Schema    []byte
	EventID   pgtype.UUID
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

const createForm = `
INSERT INTO forms (slug, title, is_active, schema, event_id)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, slug, title, is_active, schema, event_id, created_at, updated_at
`

type CreateParams struct {
	Slug     string
	Title    string
	IsActive bool
	Schema   []byte
	EventID  pgtype.UUID
}

func (q *Queries) Create(ctx context.Context, arg CreateParams) (Form, error) {
	row := q.db.QueryRow(ctx, createForm, arg.Slug, arg.Title, arg.IsActive, arg.Schema, arg.EventID)
	return scanForm(row)
}

const updateForm = `
UPDATE forms
SET slug = $2, title = $3, is_active = $4, schema = $5, event_id = $6, updated_at = now()
WHERE id = $1
RETURNING id, slug, title, is_active, schema, event_id, created_at, updated_at
`

type UpdateParams struct {
	ID       uuid.UUID
	Slug     string
	Title    string
	IsActive bool
	Schema   []byte
	EventID  pgtype.UUID
}

func (q *Queries) Update(ctx context.Context, arg UpdateParams) (Form, error) {
	row := q.db.QueryRow(ctx, updateForm, arg.ID, arg.Slug, arg.Title, arg.IsActive, arg.Schema, arg.EventID)
	return scanForm(row)
}

const getFormByID = `
SELECT id, slug, title, is_active, schema, event_id, created_at, updated_at
FROM forms
WHERE id = $1
`

func (q *Queries) GetByID(ctx context.Context, id uuid.UUID) (Form, error) {
	row := q.db.QueryRow(ctx, getFormByID, id)
	return scanForm(row)
}

const getFormByEventID = `
SELECT id, slug, title, is_active, schema, event_id, created_at, updated_at
FROM forms
WHERE event_id = $1
`

func (q *Queries) GetByEventID(ctx context.Context, eventID pgtype.UUID) (Form, error) {
	row := q.db.QueryRow(ctx, getFormByEventID, eventID)
	return scanForm(row)
}

const listForms = `
SELECT id, slug, title, is_active, schema, event_id, created_at, updated_at
FROM forms
ORDER BY created_at DESC
`

func (q *Queries) List(ctx context.Context) ([]Form, error) {
	rows, err := q.db.Query(ctx, listForms)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Form
	for rows.Next() {
		item, err := scanForm(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

const deleteForm = `
DELETE FROM forms
WHERE id = $1
`

func (q *Queries) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteForm, id)
	return err
}

func scanForm(row pgx.Row) (Form, error) {
	var f Form
	err := row.Scan(
		&f.ID,
		&f.Slug,
		&f.Title,
		&f.IsActive,
		&f.Schema,
		&f.EventID,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	return f, err
}
