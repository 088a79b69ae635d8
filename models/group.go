package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Group categories.
const (
	CategoryGroup = "grupo"
	CategoryEvent = "evento"
)

// Group is a standing community sub-unit (table grupos). ID and Slug are
// equal and never change after creation.
type Group struct {
	ID          string     `json:"id" gorm:"primaryKey;size:191"`
	Slug        string     `json:"slug" gorm:"uniqueIndex;size:191;not null"`
	Name        string     `json:"nome" gorm:"column:nome;size:255;not null"`
	AgeRange    string     `json:"faixa_etaria" gorm:"column:faixa_etaria;size:255"`
	Description string     `json:"descricao" gorm:"column:descricao;type:text"`
	YearGoal    string     `json:"objetivo_ano" gorm:"column:objetivo_ano;type:text"`
	Team        StringList `json:"equipe" gorm:"column:equipe;type:text"`
	FinalInvite string     `json:"convite_final" gorm:"column:convite_final;type:text"`
	Order       int        `json:"ordem" gorm:"column:ordem;index;not null;default:0"`
	Category    string     `json:"categoria" gorm:"column:categoria;size:20;default:grupo"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName maps Group onto grupos.
func (Group) TableName() string { return "grupos" }

// GroupRequest is the create payload.
type GroupRequest struct {
	Name        string     `json:"nome" binding:"required"`
	AgeRange    string     `json:"faixa_etaria"`
	Description string     `json:"descricao"`
	YearGoal    string     `json:"objetivo_ano"`
	Team        StringList `json:"equipe"`
	FinalInvite string     `json:"convite_final"`
	Category    string     `json:"categoria" binding:"omitempty,oneof=grupo evento"`
}

// GroupUpdateRequest lists the fields an edit may touch. Slug is deliberately absent.
type GroupUpdateRequest struct {
	ID          string      `json:"id" binding:"required"`
	Name        *string     `json:"nome"`
	AgeRange    *string     `json:"faixa_etaria"`
	Description *string     `json:"descricao"`
	YearGoal    *string     `json:"objetivo_ano"`
	Team        *StringList `json:"equipe"`
	FinalInvite *string     `json:"convite_final"`
	Category    *string     `json:"categoria" binding:"omitempty,oneof=grupo evento"`
}

// StringList is a list of names stored as JSON. On input it also accepts a
// single comma separated string, which is what the admin forms post.
type StringList []string

// UnmarshalJSON accepts ["a","b"], "a, b" or null.
func (l *StringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = cleanList(list)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*l = cleanList(strings.Split(s, ","))
	return nil
}

func cleanList(in []string) StringList {
	out := StringList{}
	for _, item := range in {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Value stores the list as a JSON array.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan reads a JSON array column. NULL and empty text become an empty list.
func (l *StringList) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("StringList: unsupported column type %T", src)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		*l = StringList{}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*l = cleanList(list)
	return nil
}
