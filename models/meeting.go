package models

import (
	"errors"
	"strings"
	"time"
)

// Meeting kinds.
const (
	KindRegular = "encontro_regular"
	KindSpecial = "evento_especial"
)

// Meeting levels, only meaningful for meetings attached to an event.
const (
	LevelMain       = "evento"
	LevelOrganizing = "organizacao"
)

// Meeting is a single dated occasion (table encontros). Storage keeps the
// parent as two nullable columns; use Parent and SetParent to work with it.
type Meeting struct {
	ID           string    `json:"id" gorm:"primaryKey;size:191"`
	GroupID      *string   `json:"grupo_id" gorm:"column:grupo_id;size:191;index"`
	EventID      *string   `json:"evento_id" gorm:"column:evento_id;size:191;index"`
	Kind         string    `json:"tipo" gorm:"column:tipo;size:30;not null"`
	StartDate    string    `json:"data_inicio" gorm:"column:data_inicio;size:10;index"`
	EndDate      *string   `json:"data_fim" gorm:"column:data_fim;size:10"`
	ReadableDate string    `json:"data_legivel" gorm:"column:data_legivel;size:255"`
	Title        string    `json:"titulo" gorm:"column:titulo;size:255"`
	Time         string    `json:"horario" gorm:"column:horario;size:100"`
	Location     string    `json:"local" gorm:"column:local;size:255"`
	Description  string    `json:"descricao" gorm:"column:descricao;type:text"`
	Visibility   string    `json:"visibilidade" gorm:"column:visibilidade;size:20;not null"`
	Level        string    `json:"nivel,omitempty" gorm:"column:nivel;size:20"`
	ShowInAnnual bool      `json:"mostrar_no_anual" gorm:"column:mostrar_no_anual;not null;default:false"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName maps Meeting onto encontros.
func (Meeting) TableName() string { return "encontros" }

// Parent decodes the storage columns into a MeetingParent.
func (m Meeting) Parent() (MeetingParent, error) {
	return ParentFromColumns(m.GroupID, m.EventID)
}

// SetParent writes p into the storage columns.
func (m *Meeting) SetParent(p MeetingParent) {
	m.GroupID, m.EventID = p.Columns()
}

// ParentKind tells which kind of entity owns a meeting.
type ParentKind int

const (
	ParentGroup ParentKind = iota + 1
	ParentEvent
)

var (
	ErrParentBoth    = errors.New("o encontro deve pertencer a um grupo ou a um evento, não a ambos")
	ErrParentMissing = errors.New("o encontro deve pertencer a um grupo ou a um evento")
)

// MeetingParent is either a group or an event, never both or neither. The
// zero value is invalid; build one with GroupParent, EventParent or
// ParentFromColumns.
type MeetingParent struct {
	kind ParentKind
	id   string
}

// GroupParent returns a parent pointing at a group.
func GroupParent(id string) MeetingParent {
	return MeetingParent{kind: ParentGroup, id: id}
}

// EventParent returns a parent pointing at an event.
func EventParent(id string) MeetingParent {
	return MeetingParent{kind: ParentEvent, id: id}
}

// ParentFromColumns maps the two nullable columns onto a parent. Blank ids
// count as null.
func ParentFromColumns(groupID, eventID *string) (MeetingParent, error) {
	g, e := trimmed(groupID), trimmed(eventID)
	switch {
	case g != "" && e != "":
		return MeetingParent{}, ErrParentBoth
	case g != "":
		return GroupParent(g), nil
	case e != "":
		return EventParent(e), nil
	default:
		return MeetingParent{}, ErrParentMissing
	}
}

func (p MeetingParent) Kind() ParentKind { return p.kind }
func (p MeetingParent) ID() string       { return p.id }
func (p MeetingParent) IsGroup() bool    { return p.kind == ParentGroup }
func (p MeetingParent) IsEvent() bool    { return p.kind == ParentEvent }

// Columns returns the (grupo_id, evento_id) pair for storage.
func (p MeetingParent) Columns() (groupID, eventID *string) {
	id := p.id
	switch p.kind {
	case ParentGroup:
		return &id, nil
	case ParentEvent:
		return nil, &id
	}
	return nil, nil
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// MeetingRequest is the create payload.
type MeetingRequest struct {
	GroupID      *string `json:"grupo_id"`
	EventID      *string `json:"evento_id"`
	Kind         string  `json:"tipo"`
	StartDate    string  `json:"data_inicio" binding:"omitempty,datetime=2006-01-02"`
	EndDate      string  `json:"data_fim" binding:"omitempty,datetime=2006-01-02"`
	ReadableDate string  `json:"data_legivel"`
	Title        string  `json:"titulo"`
	Time         string  `json:"horario"`
	Location     string  `json:"local"`
	Description  string  `json:"descricao"`
	Visibility   string  `json:"visibilidade" binding:"omitempty,oneof=publico interno"`
	Level        string  `json:"nivel" binding:"omitempty,oneof=evento organizacao"`
	ShowInAnnual *bool   `json:"mostrar_no_anual"`
}

// MeetingUpdateRequest lists the fields an edit may touch. Parent ids and the
// end date are tri-state so a client can clear them.
type MeetingUpdateRequest struct {
	ID           string           `json:"id"`
	GroupID      Nullable[string] `json:"grupo_id"`
	EventID      Nullable[string] `json:"evento_id"`
	Kind         *string          `json:"tipo" binding:"omitempty,oneof=encontro_regular evento_especial"`
	StartDate    *string          `json:"data_inicio" binding:"omitempty,datetime=2006-01-02"`
	EndDate      Nullable[string] `json:"data_fim"`
	ReadableDate *string          `json:"data_legivel"`
	Title        *string          `json:"titulo"`
	Time         *string          `json:"horario"`
	Location     *string          `json:"local"`
	Description  *string          `json:"descricao"`
	Visibility   *string          `json:"visibilidade" binding:"omitempty,oneof=publico interno"`
	Level        *string          `json:"nivel" binding:"omitempty,oneof=evento organizacao"`
	ShowInAnnual *bool            `json:"mostrar_no_anual"`
}

// IDRequest carries the target of a delete.
type IDRequest struct {
	ID string `json:"id"`
}

// Target returns the trimmed id.
func (r IDRequest) Target() string {
	return strings.TrimSpace(r.ID)
}

// GroupIDRequest is a group delete body, which also accepts grupoId.
type GroupIDRequest struct {
	IDRequest
	GroupID string `json:"grupoId"`
}

// Target returns whichever id field was supplied.
func (r GroupIDRequest) Target() string {
	if id := r.IDRequest.Target(); id != "" {
		return id
	}
	return strings.TrimSpace(r.GroupID)
}
