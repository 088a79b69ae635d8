package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"livro/models"
)

// GroupService manages groups and their display order.
type GroupService struct {
	DB          *gorm.DB
	revalidator *Revalidator
	log         *zap.Logger
}

// NewGroupService creates a GroupService.
func NewGroupService(db *gorm.DB, revalidator *Revalidator, logger *zap.Logger) *GroupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GroupService{DB: db, revalidator: revalidator, log: logger}
}

// List returns every group in display order.
func (s *GroupService) List(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	if err := s.DB.WithContext(ctx).Order("ordem asc").Order("nome asc").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

// GetBySlug loads one group.
func (s *GroupService) GetBySlug(ctx context.Context, slug string) (models.Group, error) {
	var group models.Group
	if err := s.DB.WithContext(ctx).Where("slug = ?", slug).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Group{}, notFound("grupo")
		}
		return models.Group{}, err
	}
	return group, nil
}

// ListWithMeetings returns the admin overview: every group with its meetings
// labelled and annotated with alerts.
func (s *GroupService) ListWithMeetings(ctx context.Context) ([]models.GroupWithMeetings, error) {
	groups, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	var meetings []models.Meeting
	if err := s.DB.WithContext(ctx).Where("grupo_id IS NOT NULL").Find(&meetings).Error; err != nil {
		return nil, err
	}

	byGroup := make(map[string][]models.Meeting)
	for _, m := range meetings {
		byGroup[*m.GroupID] = append(byGroup[*m.GroupID], m)
	}

	out := make([]models.GroupWithMeetings, 0, len(groups))
	for _, g := range groups {
		out = append(out, models.GroupWithMeetings{
			Group:    g,
			Meetings: MeetingViews(adminOrder(byGroup[g.ID]), true),
		})
	}
	return out, nil
}

// GetWithMeetings returns one group for its edit page.
func (s *GroupService) GetWithMeetings(ctx context.Context, slug string) (models.GroupWithMeetings, error) {
	group, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return models.GroupWithMeetings{}, err
	}
	var meetings []models.Meeting
	if err := s.DB.WithContext(ctx).Where("grupo_id = ?", group.ID).Find(&meetings).Error; err != nil {
		return models.GroupWithMeetings{}, err
	}
	return models.GroupWithMeetings{Group: group, Meetings: MeetingViews(adminOrder(meetings), true)}, nil
}

// Create adds a group. Its id and slug are derived from the name and must
// not collide with an existing group.
func (s *GroupService) Create(ctx context.Context, req models.GroupRequest) (models.Group, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return models.Group{}, invalid("nome", "Nome do grupo é obrigatório")
	}
	slug := Slugify(name)
	if slug == "" {
		return models.Group{}, invalid("nome", "Nome do grupo inválido")
	}
	if IsReservedSlug(slug) {
		return models.Group{}, invalid("nome", "Nome do grupo reservado: "+slug)
	}

	category := req.Category
	if category == "" {
		category = models.CategoryGroup
	}
	team := req.Team
	if team == nil {
		team = models.StringList{}
	}

	group := models.Group{
		ID:          slug,
		Slug:        slug,
		Name:        name,
		AgeRange:    req.AgeRange,
		Description: req.Description,
		YearGoal:    req.YearGoal,
		Team:        team,
		FinalInvite: req.FinalInvite,
		Category:    category,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Group{}).Where("slug = ? OR id = ?", slug, slug).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateSlug
		}

		order, err := nextOrder(tx, &models.Group{})
		if err != nil {
			return err
		}
		group.Order = order

		if err := tx.Create(&group).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateSlug
			}
			return err
		}
		return nil
	})
	if err != nil {
		return models.Group{}, err
	}

	s.log.Info("group created", zap.String("slug", slug))
	s.revalidator.Revalidate(ctx, "grupo", append(BookPages(), GroupPagePath(slug))...)
	return group, nil
}

// Update edits the allowed fields of a group. Id and slug never change.
func (s *GroupService) Update(ctx context.Context, req models.GroupUpdateRequest) error {
	id := strings.TrimSpace(req.ID)
	if id == "" {
		return invalid("id", "ID ausente")
	}

	var group models.Group
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("grupo")
		}
		return err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return invalid("nome", "Nome do grupo é obrigatório")
		}
		updates["nome"] = name
	}
	if req.AgeRange != nil {
		updates["faixa_etaria"] = *req.AgeRange
	}
	if req.Description != nil {
		updates["descricao"] = *req.Description
	}
	if req.YearGoal != nil {
		updates["objetivo_ano"] = *req.YearGoal
	}
	if req.Team != nil {
		updates["equipe"] = *req.Team
	}
	if req.FinalInvite != nil {
		updates["convite_final"] = *req.FinalInvite
	}
	if req.Category != nil && *req.Category != "" {
		updates["categoria"] = *req.Category
	}

	if len(updates) > 0 {
		if err := s.DB.WithContext(ctx).Model(&group).Updates(updates).Error; err != nil {
			return err
		}
	}

	s.log.Info("group updated", zap.String("slug", group.Slug))
	s.revalidator.Revalidate(ctx, "grupo", append(BookPages(), GroupPagePath(group.Slug))...)
	return nil
}

// Delete removes a group and, first, every meeting that belongs to it.
func (s *GroupService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return invalid("grupoId", "grupoId ausente")
	}

	var group models.Group
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&group).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("grupo")
			}
			return err
		}
		if err := tx.Where("grupo_id = ?", id).Delete(&models.Meeting{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Group{}).Error
	})
	if err != nil {
		return err
	}

	s.log.Info("group deleted", zap.String("slug", group.Slug))
	s.revalidator.Revalidate(ctx, "grupo", append(BookPages(), GroupPagePath(group.Slug))...)
	return nil
}

// Move shifts a group one position up or down.
func (s *GroupService) Move(ctx context.Context, id string, dir Direction) error {
	moved, err := moveRow(ctx, s.DB, &models.Group{}, "grupo", id, dir)
	if err != nil {
		return err
	}
	if moved {
		s.revalidator.Revalidate(ctx, "ordem-grupos", BookPages()...)
	}
	return nil
}

// Reorder stores a new order for all groups.
func (s *GroupService) Reorder(ctx context.Context, ids []string) error {
	if err := reorderRows(ctx, s.DB, &models.Group{}, "grupo", ids); err != nil {
		return err
	}
	s.revalidator.Revalidate(ctx, "ordem-grupos", BookPages()...)
	return nil
}

// groupSlugs resolves the current slugs of the given group ids.
func groupSlugs(ctx context.Context, db *gorm.DB, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var slugs []string
	if err := db.WithContext(ctx).Model(&models.Group{}).Where("id IN ?", ids).Order("ordem asc").Pluck("slug", &slugs).Error; err != nil {
		return nil, err
	}
	return slugs, nil
}

// adminOrder sorts dated meetings first and keeps undated ones at the end so
// the editor still sees their alerts.
func adminOrder(meetings []models.Meeting) []models.Meeting {
	out := SortMeetingsByStartDate(meetings)
	for _, m := range meetings {
		if strings.TrimSpace(m.StartDate) == "" {
			out = append(out, m)
		}
	}
	return out
}
