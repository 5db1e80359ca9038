package models

import "time"

type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Code      string    `gorm:"uniqueIndex;not null;size:50" json:"code"` // FOOD, TRAVEL, UTILITIES, ...
	Label     string    `gorm:"not null;size:100" json:"label"`
	CreatedAt time.Time `json:"createdAt"`
}
