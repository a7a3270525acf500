// Package dashboard aggregates headline counts across the admin modules.
package dashboard

import (
	"context"

	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"atrium/admin-backend/internal/event"
	"atrium/admin-backend/internal/member"
	"atrium/admin-backend/internal/news"
)

type MemberCounter interface {
	Count(ctx context.Context) (member.CountRow, error)
}

type EventCounter interface {
	Count(ctx context.Context) (event.CountRow, error)
}

type NewsCounter interface {
	Count(ctx context.Context) (news.CountRow, error)
}

type Stats struct {
	TotalMembers   int64 `json:"total_members"`
	ActiveMembers  int64 `json:"active_members"`
	TotalEvents    int64 `json:"total_events"`
	UpcomingEvents int64 `json:"upcoming_events"`
	TotalNews      int64 `json:"total_news"`
	SentNews       int64 `json:"sent_news"`
}

type Service struct {
	logger *zap.Logger
	tracer trace.Tracer

	members MemberCounter
	events  EventCounter
	news    NewsCounter
}

func NewService(logger *zap.Logger, members MemberCounter, events EventCounter, news NewsCounter) *Service {
	return &Service{
		logger:  logger,
		tracer:  otel.Tracer("dashboard/service"),
		members: members,
		events:  events,
		news:    news,
	}
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	ctx, span := s.tracer.Start(ctx, "Stats")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	memberCounts, err := s.members.Count(ctx)
	if err != nil {
		span.RecordError(err)
		logger.Error("Failed to count members", zap.Error(err))
		return Stats{}, err
	}

	eventCounts, err := s.events.Count(ctx)
	if err != nil {
		span.RecordError(err)
		logger.Error("Failed to count events", zap.Error(err))
		return Stats{}, err
	}

	newsCounts, err := s.news.Count(ctx)
	if err != nil {
		span.RecordError(err)
		logger.Error("Failed to count news", zap.Error(err))
		return Stats{}, err
	}

	return Stats{
		TotalMembers:   memberCounts.Total,
		ActiveMembers:  memberCounts.Active,
		TotalEvents:    eventCounts.Total,
		UpcomingEvents: eventCounts.Upcoming,
		TotalNews:      newsCounts.Total,
		SentNews:       newsCounts.Sent,
	}, nil
}
