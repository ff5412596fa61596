package entity

import "time"

// BaseEntity is embedded by persisted entities that use an auto-assigned
// numeric key.
type BaseEntity struct {
	ID        int64     `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
