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

// MeetingService manages meetings of groups and events.
type MeetingService struct {
	DB          *gorm.DB
	revalidator *Revalidator
	log         *zap.Logger
}

// NewMeetingService creates a MeetingService.
func NewMeetingService(db *gorm.DB, revalidator *Revalidator, logger *zap.Logger) *MeetingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MeetingService{DB: db, revalidator: revalidator, log: logger}
}

// List returns every meeting, dated ones first in date order.
func (s *MeetingService) List(ctx context.Context) ([]models.MeetingView, error) {
	var meetings []models.Meeting
	if err := s.DB.WithContext(ctx).Find(&meetings).Error; err != nil {
		return nil, err
	}
	return MeetingViews(adminOrder(meetings), true), nil
}

// Get loads one meeting.
func (s *MeetingService) Get(ctx context.Context, id string) (models.MeetingView, error) {
	meeting, err := s.find(ctx, id)
	if err != nil {
		return models.MeetingView{}, err
	}
	return models.MeetingView{Meeting: meeting, Label: MeetingLabel(meeting), Alerts: MeetingAlerts(meeting)}, nil
}

// Create adds a meeting under exactly one group or event.
func (s *MeetingService) Create(ctx context.Context, req models.MeetingRequest) (models.Meeting, error) {
	parent, err := models.ParentFromColumns(req.GroupID, req.EventID)
	if err != nil {
		return models.Meeting{}, invalid("grupo_id", err.Error())
	}
	if strings.TrimSpace(req.Kind) == "" {
		return models.Meeting{}, invalid("tipo", "Tipo é obrigatório")
	}
	if req.Kind != models.KindRegular && req.Kind != models.KindSpecial {
		return models.Meeting{}, invalid("tipo", "Tipo inválido")
	}
	start := strings.TrimSpace(req.StartDate)
	if start == "" {
		return models.Meeting{}, invalid("data_inicio", "Data de início é obrigatória")
	}
	if err := s.checkParent(ctx, parent); err != nil {
		return models.Meeting{}, err
	}

	visibility := req.Visibility
	if visibility == "" {
		visibility = models.VisibilityInternal
	}

	meeting := models.Meeting{
		ID:           uuid.NewString(),
		Kind:         req.Kind,
		StartDate:    start,
		EndDate:      optionalDate(req.EndDate),
		ReadableDate: req.ReadableDate,
		Title:        req.Title,
		Time:         req.Time,
		Location:     req.Location,
		Description:  req.Description,
		Visibility:   visibility,
	}
	meeting.SetParent(parent)
	meeting.Level, meeting.ShowInAnnual = resolveLevel(parent, req.Level, req.ShowInAnnual, nil)

	if err := s.DB.WithContext(ctx).Create(&meeting).Error; err != nil {
		return models.Meeting{}, err
	}

	s.log.Info("meeting created", zap.String("id", meeting.ID))
	s.revalidate(ctx, parent)
	return meeting, nil
}

// Update edits the supplied fields of a meeting. The parent rule is checked
// again against the merged references.
func (s *MeetingService) Update(ctx context.Context, req models.MeetingUpdateRequest) error {
	id := strings.TrimSpace(req.ID)
	if id == "" {
		return invalid("id", "ID ausente")
	}
	before, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	oldParent, _ := before.Parent()

	groupID, eventID := before.GroupID, before.EventID
	if req.GroupID.Set {
		groupID = req.GroupID.Value
	}
	if req.EventID.Set {
		eventID = req.EventID.Value
	}
	parent, err := models.ParentFromColumns(groupID, eventID)
	if err != nil {
		return invalid("grupo_id", err.Error())
	}
	if err := s.checkParent(ctx, parent); err != nil {
		return err
	}

	updates := map[string]interface{}{}
	if req.Kind != nil {
		if *req.Kind != models.KindRegular && *req.Kind != models.KindSpecial {
			return invalid("tipo", "Tipo inválido")
		}
		updates["tipo"] = *req.Kind
	}
	if req.StartDate != nil {
		start := strings.TrimSpace(*req.StartDate)
		if start == "" {
			return invalid("data_inicio", "Data de início é obrigatória")
		}
		updates["data_inicio"] = start
	}
	if req.EndDate.Set {
		var end *string
		if req.EndDate.Value != nil {
			end = optionalDate(*req.EndDate.Value)
		}
		updates["data_fim"] = end
	}
	if req.ReadableDate != nil {
		updates["data_legivel"] = *req.ReadableDate
	}
	if req.Title != nil {
		updates["titulo"] = *req.Title
	}
	if req.Time != nil {
		updates["horario"] = *req.Time
	}
	if req.Location != nil {
		updates["local"] = *req.Location
	}
	if req.Description != nil {
		updates["descricao"] = *req.Description
	}
	if req.Visibility != nil && *req.Visibility != "" {
		updates["visibilidade"] = *req.Visibility
	}

	level := before.Level
	if req.Level != nil {
		level = *req.Level
	}
	var previous *bool
	if oldParent.IsEvent() && before.Level == models.LevelMain {
		previous = &before.ShowInAnnual
	}
	newGroup, newEvent := parent.Columns()
	updates["grupo_id"] = newGroup
	updates["evento_id"] = newEvent
	updates["nivel"], updates["mostrar_no_anual"] = resolveLevel(parent, level, req.ShowInAnnual, previous)

	if err := s.DB.WithContext(ctx).Model(&models.Meeting{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return err
	}

	s.log.Info("meeting updated", zap.String("id", id))
	s.revalidate(ctx, oldParent, parent)
	return nil
}

// Delete removes a meeting.
func (s *MeetingService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return invalid("id", "ID ausente")
	}
	meeting, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	result := s.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Meeting{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound("encontro")
	}

	s.log.Info("meeting deleted", zap.String("id", id))
	parent, _ := meeting.Parent()
	s.revalidate(ctx, parent)
	return nil
}

func (s *MeetingService) find(ctx context.Context, id string) (models.Meeting, error) {
	var meeting models.Meeting
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&meeting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Meeting{}, notFound("encontro")
		}
		return models.Meeting{}, err
	}
	return meeting, nil
}

// checkParent rejects references to a group or event that does not exist.
func (s *MeetingService) checkParent(ctx context.Context, parent models.MeetingParent) error {
	var (
		model interface{} = &models.Group{}
		field             = "grupo_id"
		msg               = "Grupo não encontrado"
	)
	if parent.IsEvent() {
		model, field, msg = &models.Event{}, "evento_id", "Evento não encontrado"
	}
	var count int64
	if err := s.DB.WithContext(ctx).Model(model).Where("id = ?", parent.ID()).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return invalid(field, msg)
	}
	return nil
}

// revalidate refreshes the book pages and the page of every parent the
// meeting had before and after the write. Group slugs are looked up now.
func (s *MeetingService) revalidate(ctx context.Context, parents ...models.MeetingParent) {
	paths := BookPages()
	var groupIDs []string
	for _, p := range parents {
		switch {
		case p.IsGroup():
			groupIDs = append(groupIDs, p.ID())
		case p.IsEvent():
			paths = append(paths, EventPagePath(p.ID()))
		}
	}
	slugs, err := groupSlugs(ctx, s.DB, groupIDs)
	if err != nil {
		s.log.Warn("group slugs not resolved", zap.Error(err))
	}
	for _, slug := range slugs {
		paths = append(paths, GroupPagePath(slug))
	}
	s.revalidator.Revalidate(ctx, "encontro", paths...)
}

// resolveLevel derives nivel and mostrar_no_anual. Group meetings carry
// neither. Event meetings default to the main level; organizing meetings are
// never shown on the annual calendar; main meetings take the requested flag,
// then the previously stored one, then true.
func resolveLevel(parent models.MeetingParent, level string, requested, previous *bool) (string, bool) {
	if !parent.IsEvent() {
		return "", false
	}
	if level == "" {
		level = models.LevelMain
	}
	if level == models.LevelOrganizing {
		return level, false
	}
	switch {
	case requested != nil:
		return level, *requested
	case previous != nil:
		return level, *previous
	}
	return level, true
}
