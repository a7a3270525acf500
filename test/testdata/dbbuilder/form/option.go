package formbuilder

import (
	"atrium/admin-backend/internal/schema"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Option func(*FactoryParams)

type FactoryParams struct {
	Title    string
	Slug     string
	IsActive bool
	Fields   []schema.FieldDefinition
	EventID  pgtype.UUID
}

func WithTitle(title string) Option {
	return func(p *FactoryParams) { p.Title = title }
}

func WithSlug(slug string) Option {
	return func(p *FactoryParams) { p.Slug = slug }
}

func WithActive(active bool) Option {
	return func(p *FactoryParams) { p.IsActive = active }
}

func WithFields(fields []schema.FieldDefinition) Option {
	return func(p *FactoryParams) { p.Fields = fields }
}

func WithEventID(eventID uuid.UUID) Option {
	return func(p *FactoryParams) { p.EventID = pgtype.UUID{Bytes: eventID, Valid: true} }
}
