package event

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

// Event is the persisted event row. Highlights, WhatToBring, and
// Schedule hold jsonb arrays.
type Event struct {
	ID          uuid.UUID
	Title       string
	Slug        string
	Description pgtype.Text
	ContentHTML pgtype.Text
	Location    pgtype.Text
	StartDate   pgtype.Timestamptz
	EndDate     pgtype.Timestamptz
	Capacity    pgtype.Int4
	Status      string
	Visibility  string
	EventType   string
	IsFeatured  bool
	Highlights  []byte
	WhatToBring []byte
	Schedule    []byte
	ImageURL    pgtype.Text
	CreatedAt   pgtype.Timestamptz
	UpdatedAt   pgtype.Timestamptz
}

const eventColumns = `id, title, slug, description, content_html, location, start_date, end_date,
capacity, status, visibility, event_type, is_featured, highlights, what_to_bring, schedule,
image_url, created_at, updated_at`

const createEvent = `
INSERT INTO events (title, slug, description, content_html, location, start_date, end_date,
capacity, status, visibility, event_type, is_featured, highlights, what_to_bring, schedule, image_url)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
RETURNING ` + eventColumns

type CreateParams struct {
	Title       string
	Slug        string
	Description pgtype.Text
	ContentHTML pgtype.Text
	Location    pgtype.Text
	StartDate   pgtype.Timestamptz
	EndDate     pgtype.Timestamptz
	Capacity    pgtype.Int4
	Status      string
	Visibility  string
	EventType   string
	IsFeatured  bool
	Highlights  []byte
	WhatToBring []byte
	Schedule    []byte
	ImageURL    pgtype.Text
}

func (q *Queries) Create(ctx context.Context, arg CreateParams) (Event, error) {
	row := q.db.QueryRow(ctx, createEvent,
		arg.Title, arg.Slug, arg.Description, arg.ContentHTML, arg.Location,
		arg.StartDate, arg.EndDate, arg.Capacity, arg.Status, arg.Visibility,
		arg.EventType, arg.IsFeatured, arg.Highlights, arg.WhatToBring, arg.Schedule, arg.ImageURL,
	)
	return scanEvent(row)
}

const updateEvent = `
UPDATE events
SET title = $2, slug = $3, description = $4, content_html = $5, location = $6,
    start_date = $7, end_date = $8, capacity = $9, status = $10, visibility = $11,
    event_type = $12, is_featured = $13, highlights = $14, what_to_bring = $15,
    schedule = $16, image_url = $17, updated_at = now()
WHERE id = $1
RETURNING ` + eventColumns

type UpdateParams struct {
	ID          uuid.UUID
	Title       string
	Slug        string
	Description pgtype.Text
	ContentHTML pgtype.Text
	Location    pgtype.Text
	StartDate   pgtype.Timestamptz
	EndDate     pgtype.Timestamptz
	Capacity    pgtype.Int4
	Status      string
	Visibility  string
	EventType   string
	IsFeatured  bool
	Highlights  []byte
	WhatToBring []byte
	Schedule    []byte
	ImageURL    pgtype.Text
}

func (q *Queries) Update(ctx context.Context, arg UpdateParams) (Event, error) {
	row := q.db.QueryRow(ctx, updateEvent,
		arg.ID, arg.Title, arg.Slug, arg.Description, arg.ContentHTML, arg.Location,
		arg.StartDate, arg.EndDate, arg.Capacity, arg.Status, arg.Visibility,
		arg.EventType, arg.IsFeatured, arg.Highlights, arg.WhatToBring, arg.Schedule, arg.ImageURL,
	)
	return scanEvent(row)
}

const getEventByID = `
SELECT ` + eventColumns + `
FROM events
WHERE id = $1
`

func (q *Queries) GetByID(ctx context.Context, id uuid.UUID) (Event, error) {
	row := q.db.QueryRow(ctx, getEventByID, id)
	return scanEvent(row)
}

const listEvents = `
SELECT ` + eventColumns + `
FROM events
ORDER BY start_date DESC
`

func (q *Queries) List(ctx context.Context) ([]Event, error) {
	rows, err := q.db.Query(ctx, listEvents)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Event
	for rows.Next() {
		item, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

const deleteEvent = `
DELETE FROM events
WHERE id = $1
`

func (q *Queries) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteEvent, id)
	return err
}

const countEvents = `
SELECT count(*), count(*) FILTER (WHERE start_date > now() AND status = 'published')
FROM events
`

type CountRow struct {
	Total    int64
	Upcoming int64
}

func (q *Queries) Count(ctx context.Context) (CountRow, error) {
	var c CountRow
	err := q.db.QueryRow(ctx, countEvents).Scan(&c.Total, &c.Upcoming)
	return c, err
}

func scanEvent(row pgx.Row) (Event, error) {
	var e Event
	err := row.Scan(
		&e.ID,
		&e.Title,
		&e.Slug,
		&e.Description,
		&e.ContentHTML,
		&e.Location,
		&e.StartDate,
		&e.EndDate,
		&e.Capacity,
		&e.Status,
		&e.Visibility,
		&e.EventType,
		&e.IsFeatured,
		&e.Highlights,
		&e.WhatToBring,
		&e.Schedule,
		&e.ImageURL,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	return e, err
}
