package response

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

// FormResponse is one persisted submission. Answers holds the pruned
// answer map as jsonb.
type FormResponse struct {
	ID          uuid.UUID
	FormID      uuid.UUID
	Answers     []byte
	Status      string
	SubmittedAt pgtype.Timestamptz
}

const createResponse = `
INSERT INTO form_responses (form_id, answers, status)
VALUES ($1, $2, $3)
RETURNING id, form_id, answers, status, submitted_at
`

type CreateParams struct {
	FormID  uuid.UUID
	Answers []byte
	Status  string
}

func (q *Queries) Create(ctx context.Context, arg CreateParams) (FormResponse, error) {
	row := q.db.QueryRow(ctx, createResponse, arg.FormID, arg.Answers, arg.Status)
	return scanResponse(row)
}

const getResponse = `
SELECT id, form_id, answers, status, submitted_at
FROM form_responses
WHERE id = $1 AND form_id = $2
`

type GetParams struct {
	ID     uuid.UUID
	FormID uuid.UUID
}

func (q *Queries) Get(ctx context.Context, arg GetParams) (FormResponse, error) {
	row := q.db.QueryRow(ctx, getResponse, arg.ID, arg.FormID)
	return scanResponse(row)
}

const listResponsesByForm = `
SELECT id, form_id, answers, status, submitted_at
FROM form_responses
WHERE form_id = $1
ORDER BY submitted_at DESC
`

func (q *Queries) ListByFormID(ctx context.Context, formID uuid.UUID) ([]FormResponse, error) {
	rows, err := q.db.Query(ctx, listResponsesByForm, formID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []FormResponse
	for rows.Next() {
		item, err := scanResponse(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

const deleteResponse = `
DELETE FROM form_responses
WHERE id = $1 AND form_id = $2
`

type DeleteParams struct {
	ID     uuid.UUID
	FormID uuid.UUID
}

func (q *Queries) Delete(ctx context.Context, arg DeleteParams) error {
	_, err := q.db.Exec(ctx, deleteResponse, arg.ID, arg.FormID)
	return err
}

func scanResponse(row pgx.Row) (FormResponse, error) {
	var r FormResponse
	err := row.Scan(
		&r.ID,
		&r.FormID,
		&r.Answers,
		&r.Status,
		&r.SubmittedAt,
	)
	return r, err
}
