package entity

import (
	"maps"
	"time"
)

type Base struct {
	ID        int64     `json:"id" db:"id"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

func (b *Base) Meta() *Base {
	return b
}

// Record is implemented by every persisted entity.
// Fields returns the entity's own columns without the Base ones.
type Record interface {
	Meta() *Base
	Fields() map[string]any
	Validate() error
}

const (
	ColumnID        = "id"
	ColumnActive    = "active"
	ColumnCreatedAt = "created_at"
	ColumnUpdatedAt = "updated_at"
)

// Columns returns every column of r keyed by name.
func Columns(r Record) map[string]any {
	meta := r.Meta()
	cols := map[string]any{
		ColumnID:        meta.ID,
		ColumnActive:    meta.Active,
		ColumnCreatedAt: meta.CreatedAt,
		ColumnUpdatedAt: meta.UpdatedAt,
	}
	maps.Copy(cols, r.Fields())
	return cols
}
