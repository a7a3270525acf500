package news

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

type News struct {
	ID             uuid.UUID
	Subject        string
	Content        string
	Slug           pgtype.Text
	ContentHTML    pgtype.Text
	FeaturedImage  pgtype.Text
	Status         string
	ScheduledAt    pgtype.Timestamptz
	SentAt         pgtype.Timestamptz
	RecipientCount int32
	OpenRate       pgtype.Float8
	CreatedAt      pgtype.Timestamptz
	UpdatedAt      pgtype.Timestamptz
}

const newsColumns = `id, subject, content, slug, content_html, featured_image, status,
scheduled_at, sent_at, recipient_count, open_rate, created_at, updated_at`

const createNews = `
INSERT INTO news (subject, content, slug, content_html, featured_image, status, scheduled_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + newsColumns

type CreateParams struct {
	Subject       string
	Content       string
	Slug          pgtype.Text
	ContentHTML   pgtype.Text
	FeaturedImage pgtype.Text
	Status        string
	ScheduledAt   pgtype.Timestamptz
}

func (q *Queries) Create(ctx context.Context, arg CreateParams) (News, error) {
	row := q.db.QueryRow(ctx, createNews,
		arg.Subject, arg.Content, arg.Slug, arg.ContentHTML,
		arg.FeaturedImage, arg.Status, arg.ScheduledAt,
	)
	return scanNews(row)
}

const updateNews = `
UPDATE news
SET subject = $2, content = $3, slug = $4, content_html = $5, featured_image = $6,
    status = $7, scheduled_at = $8, updated_at = now()
WHERE id = $1
RETURNING ` + newsColumns

type UpdateParams struct {
	ID            uuid.UUID
	Subject       string
	Content       string
	Slug          pgtype.Text
	ContentHTML   pgtype.Text
	FeaturedImage pgtype.Text
	Status        string
	ScheduledAt   pgtype.Timestamptz
}

func (q *Queries) Update(ctx context.Context, arg UpdateParams) (News, error) {
	row := q.db.QueryRow(ctx, updateNews,
		arg.ID, arg.Subject, arg.Content, arg.Slug, arg.ContentHTML,
		arg.FeaturedImage, arg.Status, arg.ScheduledAt,
	)
	return scanNews(row)
}

const markNewsSent = `
UPDATE news
SET status = 'published', sent_at = now(), recipient_count = $2, updated_at = now()
WHERE id = $1
RETURNING ` + newsColumns

type MarkSentParams struct {
	ID             uuid.UUID
	RecipientCount int32
}

func (q *Queries) MarkSent(ctx context.Context, arg MarkSentParams) (News, error) {
	row := q.db.QueryRow(ctx, markNewsSent, arg.ID, arg.RecipientCount)
	return scanNews(row)
}

const getNewsByID = `
SELECT ` + newsColumns + `
FROM news
WHERE id = $1
`

func (q *Queries) GetByID(ctx context.Context, id uuid.UUID) (News, error) {
	row := q.db.QueryRow(ctx, getNewsByID, id)
	return scanNews(row)
}

const listNews = `
SELECT ` + newsColumns + `
FROM news
ORDER BY created_at DESC
`

func (q *Queries) List(ctx context.Context) ([]News, error) {
	rows, err := q.db.Query(ctx, listNews)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []News
	for rows.Next() {
		item, err := scanNews(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

const deleteNews = `
DELETE FROM news
WHERE id = $1
`

func (q *Queries) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteNews, id)
	return err
}

const countNews = `
SELECT count(*), count(*) FILTER (WHERE sent_at IS NOT NULL)
FROM news
`

type CountRow struct {
	Total int64
	Sent  int64
}

func (q *Queries) Count(ctx context.Context) (CountRow, error) {
	var c CountRow
	err := q.db.QueryRow(ctx, countNews).Scan(&c.Total, &c.Sent)
	return c, err
}

func scanNews(row pgx.Row) (News, error) {
	var n News
	err := row.Scan(
		&n.ID,
		&n.Subject,
		&n.Content,
		&n.Slug,
		&n.ContentHTML,
		&n.FeaturedImage,
		&n.Status,
		&n.ScheduledAt,
		&n.SentAt,
		&n.RecipientCount,
		&n.OpenRate,
		&n.CreatedAt,
		&n.UpdatedAt,
	)
	return n, err
}
