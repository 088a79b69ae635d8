package services

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"livro/models"
)

// BookService builds the public, read-only book pages. Only published
// events and meetings ever reach them.
type BookService struct {
	DB    *gorm.DB
	cache *PageCache
	log   *zap.Logger
}

// NewBookService creates a BookService. cache may be nil, in which case every
// request builds its page.
func NewBookService(db *gorm.DB, cache *PageCache, logger *zap.Logger) *BookService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookService{DB: db, cache: cache, log: logger}
}

// Index returns the book cover: groups in order and the published events.
func (s *BookService) Index(ctx context.Context) ([]byte, error) {
	return s.fetch(ctx, PathBookIndex, func(ctx context.Context) (interface{}, error) {
		groups, err := s.groups(ctx)
		if err != nil {
			return nil, err
		}
		events, err := s.publicEvents(ctx)
		if err != nil {
			return nil, err
		}
		return models.BookIndexPage{Groups: groups, Events: events}, nil
	})
}

// Calendar returns the annual calendar split by month.
func (s *BookService) Calendar(ctx context.Context) ([]byte, error) {
	return s.fetch(ctx, PathCalendar, func(ctx context.Context) (interface{}, error) {
		groups, err := s.groups(ctx)
		if err != nil {
			return nil, err
		}
		events, err := s.publicEvents(ctx)
		if err != nil {
			return nil, err
		}
		var meetings []models.Meeting
		if err := s.DB.WithContext(ctx).Where("visibilidade = ?", models.VisibilityPublic).Find(&meetings).Error; err != nil {
			return nil, err
		}

		published := make(map[string]bool, len(events))
		for _, e := range events {
			published[e.ID] = true
		}
		var annual []models.Meeting
		for _, m := range meetings {
			if m.EventID != nil && !published[*m.EventID] {
				continue
			}
			if OnAnnualCalendar(m) {
				annual = append(annual, m)
			}
		}
		return models.CalendarPage{Groups: groups, Events: events, Months: GroupByMonth(annual)}, nil
	})
}

// Group returns a group's chapter with its published meetings.
func (s *BookService) Group(ctx context.Context, slug string) ([]byte, error) {
	return s.fetch(ctx, GroupPagePath(slug), func(ctx context.Context) (interface{}, error) {
		var group models.Group
		if err := s.DB.WithContext(ctx).Where("slug = ?", slug).First(&group).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, notFound("grupo")
			}
			return nil, err
		}
		groups, err := s.groups(ctx)
		if err != nil {
			return nil, err
		}
		var meetings []models.Meeting
		if err := s.DB.WithContext(ctx).Where("grupo_id = ? AND visibilidade = ?", group.ID, models.VisibilityPublic).Find(&meetings).Error; err != nil {
			return nil, err
		}
		return models.GroupPage{
			Group:    group,
			Groups:   groups,
			Meetings: MeetingViews(SortMeetingsByStartDate(meetings), false),
		}, nil
	})
}

// Event returns a published event with its published main meetings.
func (s *BookService) Event(ctx context.Context, id string) ([]byte, error) {
	return s.fetch(ctx, EventPagePath(id), func(ctx context.Context) (interface{}, error) {
		var event models.Event
		err := s.DB.WithContext(ctx).Where("id = ? AND visibilidade = ?", id, models.VisibilityPublic).First(&event).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, notFound("evento")
			}
			return nil, err
		}
		names, err := groupNames(ctx, s.DB)
		if err != nil {
			return nil, err
		}
		var meetings []models.Meeting
		err = s.DB.WithContext(ctx).
			Where("evento_id = ? AND visibilidade = ?", id, models.VisibilityPublic).
			Where("nivel = ? OR nivel = '' OR nivel IS NULL", models.LevelMain).
			Find(&meetings).Error
		if err != nil {
			return nil, err
		}
		return models.EventPage{Event: models.EventWithMeetings{
			Event:      event,
			GroupNames: involvedNames(event, names),
			Meetings:   MeetingViews(SortMeetingsByStartDate(meetings), false),
		}}, nil
	})
}

func (s *BookService) fetch(ctx context.Context, path string, build func(context.Context) (interface{}, error)) ([]byte, error) {
	if s.cache != nil {
		return s.cache.Fetch(ctx, path, build)
	}
	page, err := build(ctx)
	if err != nil {
		return nil, err
	}
	return json.Marshal(page)
}

func (s *BookService) groups(ctx context.Context) ([]models.Group, error) {
	groups := []models.Group{}
	err := s.DB.WithContext(ctx).Order("ordem asc").Order("nome asc").Find(&groups).Error
	return groups, err
}

func (s *BookService) publicEvents(ctx context.Context) ([]models.Event, error) {
	events := []models.Event{}
	err := s.DB.WithContext(ctx).Where("visibilidade = ?", models.VisibilityPublic).
		Order("ordem asc").Order("data_inicio asc").Find(&events).Error
	return events, err
}
