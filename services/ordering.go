package services

import (
	"context"
	"strings"

	"gorm.io/gorm"
)

// Direction of a one-step move.
type Direction int

const (
	MoveUp Direction = iota + 1
	MoveDown
)

// ParseDirection accepts the admin UI values (cima/baixo) and up/down.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cima", "up":
		return MoveUp, nil
	case "baixo", "down":
		return MoveDown, nil
	}
	return 0, invalid("direcao", "Direção inválida")
}

type orderedRow struct {
	ID    string `gorm:"column:id"`
	Order int    `gorm:"column:ordem"`
}

// planMove returns the rows to write for moving id one step. An empty plan
// means the move falls off either end. When the current order values are
// strictly increasing only the two rows swap values; otherwise the whole
// collection is renumbered 1..n so no two rows share a value afterwards.
func planMove(rows []orderedRow, id string, dir Direction) ([]orderedRow, bool) {
	index := -1
	for i, r := range rows {
		if r.ID == id {
			index = i
			break
		}
	}
	if index == -1 {
		return nil, false
	}

	target := index - 1
	if dir == MoveDown {
		target = index + 1
	}
	if target < 0 || target >= len(rows) {
		return nil, true
	}

	if strictlyIncreasing(rows) {
		return []orderedRow{
			{ID: rows[index].ID, Order: rows[target].Order},
			{ID: rows[target].ID, Order: rows[index].Order},
		}, true
	}

	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	ids[index], ids[target] = ids[target], ids[index]

	current := make(map[string]int, len(rows))
	for _, r := range rows {
		current[r.ID] = r.Order
	}
	var plan []orderedRow
	for i, rowID := range ids {
		if current[rowID] != i+1 {
			plan = append(plan, orderedRow{ID: rowID, Order: i + 1})
		}
	}
	return plan, true
}

func strictlyIncreasing(rows []orderedRow) bool {
	for i := 1; i < len(rows); i++ {
		if rows[i].Order <= rows[i-1].Order {
			return false
		}
	}
	return true
}

// planReorder gives each id its 1-based position in ids.
func planReorder(ids []string) ([]orderedRow, error) {
	if len(ids) == 0 {
		return nil, invalid("ordem", "Lista de ordem vazia")
	}
	seen := make(map[string]bool, len(ids))
	plan := make([]orderedRow, 0, len(ids))
	for i, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, invalid("ordem", "ID ausente na lista de ordem")
		}
		if seen[id] {
			return nil, invalid("ordem", "ID repetido na lista de ordem: "+id)
		}
		seen[id] = true
		plan = append(plan, orderedRow{ID: id, Order: i + 1})
	}
	return plan, nil
}

// moveRow moves one row of model's table a step up or down. It returns false
// when the row was already at the edge.
func moveRow(ctx context.Context, db *gorm.DB, model interface{}, entity, id string, dir Direction) (bool, error) {
	moved := false
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []orderedRow
		if err := tx.Model(model).Select("id", "ordem").Order("ordem asc").Order("id asc").Find(&rows).Error; err != nil {
			return err
		}
		plan, found := planMove(rows, id, dir)
		if !found {
			return notFound(entity)
		}
		if err := writeOrder(tx, model, plan); err != nil {
			return err
		}
		moved = len(plan) > 0
		return nil
	})
	return moved, err
}

// reorderRows applies a drag-and-drop result in one transaction. ids must
// name every row exactly once; any failure leaves the previous order intact.
func reorderRows(ctx context.Context, db *gorm.DB, model interface{}, entity string, ids []string) error {
	plan, err := planReorder(ids)
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wanted := make([]string, len(plan))
		for i, r := range plan {
			wanted[i] = r.ID
		}
		var count int64
		if err := tx.Model(model).Where("id IN ?", wanted).Count(&count).Error; err != nil {
			return err
		}
		if int(count) != len(wanted) {
			return notFound(entity)
		}
		var total int64
		if err := tx.Model(model).Count(&total).Error; err != nil {
			return err
		}
		if int(total) != len(wanted) {
			return invalid("ordem", "A lista de ordem deve conter todos os itens")
		}
		return writeOrder(tx, model, plan)
	})
}

func writeOrder(tx *gorm.DB, model interface{}, plan []orderedRow) error {
	for _, r := range plan {
		if err := tx.Model(model).Where("id = ?", r.ID).Update("ordem", r.Order).Error; err != nil {
			return err
		}
	}
	return nil
}

// nextOrder is one past the highest order value in model's table.
func nextOrder(tx *gorm.DB, model interface{}) (int, error) {
	var max int
	if err := tx.Model(model).Select("COALESCE(MAX(ordem), 0)").Scan(&max).Error; err != nil {
		return 0, err
	}
	return max + 1, nil
}
