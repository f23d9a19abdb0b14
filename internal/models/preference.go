package models

import "time"

// Preference is a client-side key/value setting
type Preference struct {
	Key       string    `gorm:"primaryKey;type:varchar(64)" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// TableName specifies the table name for Preference
func (Preference) TableName() string {
	return "preferences"
}
