package db

import (
	"time"
)

// UserHistory is one recorded set of body metrics for a user.
//
// Rows are append-only: the service inserts and reads them, never updates or
// deletes.
//
// Fields:
//   - UserName: lookup key, indexed but not unique (one user, many entries).
//   - ActivityLevel: the label ("moderate_active"), not the multiplier.
//   - Macros: the macro breakdown serialized as JSON text.
type UserHistory struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserName      string    `gorm:"index:idx_user_histories_user_name;size:128;not null" json:"user_name"`
	Age           int       `gorm:"not null" json:"age"`
	Weight        float64   `gorm:"not null" json:"weight"`
	Height        float64   `gorm:"not null" json:"height"`
	ActivityLevel string    `gorm:"size:32;not null" json:"activity_level"`
	Macros        string    `gorm:"type:text;not null" json:"macros"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}
