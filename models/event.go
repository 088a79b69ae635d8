package models

import "time"

// Visibility values shared by events and meetings.
const (
	VisibilityPublic   = "publico"
	VisibilityInternal = "interno"
)

// Event is a dated occasion, possibly spanning several groups (table eventos).
// GroupIDs is always empty when AllGroups is set.
type Event struct {
	ID          string     `json:"id" gorm:"primaryKey;size:191"`
	Title       string     `json:"titulo" gorm:"column:titulo;size:255;not null"`
	AgeRange    string     `json:"faixa_etaria" gorm:"column:faixa_etaria;size:255"`
	Description string     `json:"descricao" gorm:"column:descricao;type:text"`
	Team        StringList `json:"equipe" gorm:"column:equipe;type:text"`
	YearGoal    string     `json:"objetivo_ano" gorm:"column:objetivo_ano;type:text"`
	Invite      string     `json:"convite" gorm:"column:convite;type:text"`
	StartDate   string     `json:"data_inicio" gorm:"column:data_inicio;size:10"`
	EndDate     *string    `json:"data_fim" gorm:"column:data_fim;size:10"`
	Visibility  string     `json:"visibilidade" gorm:"column:visibilidade;size:20;not null;default:publico"`
	AllGroups   bool       `json:"todos_os_grupos" gorm:"column:todos_os_grupos;not null;default:false"`
	GroupIDs    StringList `json:"grupos_envolvidos" gorm:"column:grupos_envolvidos;type:text"`
	Order       int        `json:"ordem" gorm:"column:ordem;index;not null;default:0"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName maps Event onto eventos.
func (Event) TableName() string { return "eventos" }

// Involves reports whether the event concerns the given group.
func (e Event) Involves(groupID string) bool {
	if e.AllGroups {
		return true
	}
	for _, id := range e.GroupIDs {
		if id == groupID {
			return true
		}
	}
	return false
}

// EventRequest is the create payload.
type EventRequest struct {
	Title       string     `json:"titulo"`
	AgeRange    string     `json:"faixa_etaria"`
	Description string     `json:"descricao"`
	Team        StringList `json:"equipe"`
	YearGoal    string     `json:"objetivo_ano"`
	Invite      string     `json:"convite"`
	StartDate   string     `json:"data_inicio" binding:"omitempty,datetime=2006-01-02"`
	EndDate     string     `json:"data_fim" binding:"omitempty,datetime=2006-01-02"`
	Visibility  string     `json:"visibilidade" binding:"omitempty,oneof=publico interno"`
	AllGroups   bool       `json:"todos_os_grupos"`
	GroupIDs    StringList `json:"grupos_envolvidos"`
}

// EventUpdateRequest lists the fields an edit may touch.
type EventUpdateRequest struct {
	ID          string           `json:"id"`
	Title       *string          `json:"titulo"`
	AgeRange    *string          `json:"faixa_etaria"`
	Description *string          `json:"descricao"`
	Team        *StringList      `json:"equipe"`
	YearGoal    *string          `json:"objetivo_ano"`
	Invite      *string          `json:"convite"`
	StartDate   *string          `json:"data_inicio" binding:"omitempty,datetime=2006-01-02"`
	EndDate     Nullable[string] `json:"data_fim"`
	Visibility  *string          `json:"visibilidade" binding:"omitempty,oneof=publico interno"`
	AllGroups   *bool            `json:"todos_os_grupos"`
	GroupIDs    *StringList      `json:"grupos_envolvidos"`
}
