package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"livro/models"
)

// AllGroupsLabel replaces the involved-group names of an event that concerns
// every group.
const AllGroupsLabel = "Todos os grupos"

// EventService manages events and their display order.
type EventService struct {
	DB          *gorm.DB
	revalidator *Revalidator
	log         *zap.Logger
}

// NewEventService creates an EventService.
func NewEventService(db *gorm.DB, revalidator *Revalidator, logger *zap.Logger) *EventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{DB: db, revalidator: revalidator, log: logger}
}

// List returns every event in display order, each with the names of the
// groups it involves.
func (s *EventService) List(ctx context.Context) ([]models.EventWithMeetings, error) {
	var events []models.Event
	if err := s.DB.WithContext(ctx).Order("ordem asc").Order("data_inicio asc").Find(&events).Error; err != nil {
		return nil, err
	}
	names, err := groupNames(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	out := make([]models.EventWithMeetings, 0, len(events))
	for _, e := range events {
		out = append(out, models.EventWithMeetings{Event: e, GroupNames: involvedNames(e, names), Meetings: []models.MeetingView{}})
	}
	return out, nil
}

// Get loads one event with its meetings and their alerts.
func (s *EventService) Get(ctx context.Context, id string) (models.EventWithMeetings, error) {
	event, err := s.find(ctx, s.DB, id)
	if err != nil {
		return models.EventWithMeetings{}, err
	}
	names, err := groupNames(ctx, s.DB)
	if err != nil {
		return models.EventWithMeetings{}, err
	}
	var meetings []models.Meeting
	if err := s.DB.WithContext(ctx).Where("evento_id = ?", event.ID).Find(&meetings).Error; err != nil {
		return models.EventWithMeetings{}, err
	}
	return models.EventWithMeetings{
		Event:      event,
		GroupNames: involvedNames(event, names),
		Meetings:   MeetingViews(adminOrder(meetings), true),
	}, nil
}

// Create adds an event.
func (s *EventService) Create(ctx context.Context, req models.EventRequest) (models.Event, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return models.Event{}, invalid("titulo", "Título é obrigatório")
	}

	visibility := req.Visibility
	if visibility == "" {
		visibility = models.VisibilityPublic
	}
	groupIDs := req.GroupIDs
	if req.AllGroups || groupIDs == nil {
		groupIDs = models.StringList{}
	}
	team := req.Team
	if team == nil {
		team = models.StringList{}
	}

	event := models.Event{
		ID:          uuid.NewString(),
		Title:       strings.ToUpper(title),
		AgeRange:    req.AgeRange,
		Description: req.Description,
		Team:        team,
		YearGoal:    req.YearGoal,
		Invite:      req.Invite,
		StartDate:   strings.TrimSpace(req.StartDate),
		EndDate:     optionalDate(req.EndDate),
		Visibility:  visibility,
		AllGroups:   req.AllGroups,
		GroupIDs:    groupIDs,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := nextOrder(tx, &models.Event{})
		if err != nil {
			return err
		}
		event.Order = order
		return tx.Create(&event).Error
	})
	if err != nil {
		return models.Event{}, err
	}

	s.log.Info("event created", zap.String("id", event.ID))
	s.revalidate(ctx, "evento", event)
	return event, nil
}

// Update edits the allowed fields of an event.
func (s *EventService) Update(ctx context.Context, req models.EventUpdateRequest) error {
	id := strings.TrimSpace(req.ID)
	if id == "" {
		return invalid("id", "ID ausente")
	}
	before, err := s.find(ctx, s.DB, id)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return invalid("titulo", "Título é obrigatório")
		}
		updates["titulo"] = strings.ToUpper(title)
	}
	if req.AgeRange != nil {
		updates["faixa_etaria"] = *req.AgeRange
	}
	if req.Description != nil {
		updates["descricao"] = *req.Description
	}
	if req.Team != nil {
		updates["equipe"] = *req.Team
	}
	if req.YearGoal != nil {
		updates["objetivo_ano"] = *req.YearGoal
	}
	if req.Invite != nil {
		updates["convite"] = *req.Invite
	}
	if req.StartDate != nil {
		updates["data_inicio"] = strings.TrimSpace(*req.StartDate)
	}
	if req.EndDate.Set {
		var end *string
		if req.EndDate.Value != nil {
			end = optionalDate(*req.EndDate.Value)
		}
		updates["data_fim"] = end
	}
	if req.Visibility != nil && *req.Visibility != "" {
		updates["visibilidade"] = *req.Visibility
	}

	allGroups := before.AllGroups
	if req.AllGroups != nil {
		allGroups = *req.AllGroups
		updates["todos_os_grupos"] = allGroups
	}
	switch {
	case allGroups && (req.AllGroups != nil || req.GroupIDs != nil):
		updates["grupos_envolvidos"] = models.StringList{}
	case req.GroupIDs != nil:
		updates["grupos_envolvidos"] = *req.GroupIDs
	}

	var after models.Event
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&models.Event{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				return err
			}
		}
		return tx.Where("id = ?", id).First(&after).Error
	})
	if err != nil {
		return err
	}

	s.log.Info("event updated", zap.String("id", id))
	s.revalidate(ctx, "evento", before, after)
	return nil
}

// Delete removes an event together with its meetings.
func (s *EventService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return invalid("id", "ID ausente")
	}

	var event models.Event
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := s.find(ctx, tx, id)
		if err != nil {
			return err
		}
		event = found
		if err := tx.Where("evento_id = ?", id).Delete(&models.Meeting{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Event{}).Error
	})
	if err != nil {
		return err
	}

	s.log.Info("event deleted", zap.String("id", id))
	s.revalidate(ctx, "evento", event)
	return nil
}

// Move shifts an event one position up or down.
func (s *EventService) Move(ctx context.Context, id string, dir Direction) error {
	moved, err := moveRow(ctx, s.DB, &models.Event{}, "evento", id, dir)
	if err != nil {
		return err
	}
	if moved {
		s.revalidator.Revalidate(ctx, "ordem-eventos", BookPages()...)
	}
	return nil
}

// Reorder stores a new order for all events.
func (s *EventService) Reorder(ctx context.Context, ids []string) error {
	if err := reorderRows(ctx, s.DB, &models.Event{}, "evento", ids); err != nil {
		return err
	}
	s.revalidator.Revalidate(ctx, "ordem-eventos", BookPages()...)
	return nil
}

func (s *EventService) find(ctx context.Context, db *gorm.DB, id string) (models.Event, error) {
	var event models.Event
	if err := db.WithContext(ctx).Where("id = ?", id).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Event{}, notFound("evento")
		}
		return models.Event{}, err
	}
	return event, nil
}

// revalidate refreshes the book pages, the event pages and the pages of
// every group the given event versions involve.
func (s *EventService) revalidate(ctx context.Context, source string, versions ...models.Event) {
	paths := BookPages()
	for _, e := range versions {
		paths = append(paths, EventPagePath(e.ID))
	}
	slugs, err := involvedSlugs(ctx, s.DB, versions...)
	if err != nil {
		s.log.Warn("involved groups not resolved", zap.String("source", source), zap.Error(err))
	}
	for _, slug := range slugs {
		paths = append(paths, GroupPagePath(slug))
	}
	s.revalidator.Revalidate(ctx, source, paths...)
}

// involvedSlugs looks up the current slugs of the groups the events concern.
func involvedSlugs(ctx context.Context, db *gorm.DB, events ...models.Event) ([]string, error) {
	var ids []string
	for _, e := range events {
		if e.AllGroups {
			var all []string
			err := db.WithContext(ctx).Model(&models.Group{}).Order("ordem asc").Pluck("slug", &all).Error
			return all, err
		}
		ids = append(ids, e.GroupIDs...)
	}
	return groupSlugs(ctx, db, ids)
}

// groupNames maps group id to display name.
func groupNames(ctx context.Context, db *gorm.DB) (map[string]string, error) {
	var groups []models.Group
	if err := db.WithContext(ctx).Select("id", "nome").Find(&groups).Error; err != nil {
		return nil, err
	}
	names := make(map[string]string, len(groups))
	for _, g := range groups {
		names[g.ID] = g.Name
	}
	return names, nil
}

func involvedNames(e models.Event, names map[string]string) []string {
	if e.AllGroups {
		return []string{AllGroupsLabel}
	}
	out := make([]string, 0, len(e.GroupIDs))
	for _, id := range e.GroupIDs {
		if name, ok := names[id]; ok {
			out = append(out, name)
		}
	}
	return out
}

func optionalDate(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
