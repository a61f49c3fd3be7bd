package models

import "time"

// Award is a decorative distinction handed to a user in a chat.
type Award struct {
	ID        uint  `gorm:"primaryKey"`
	ChatID    int64 `gorm:"index:idx_award_target"`
	UserID    int64 `gorm:"index:idx_award_target"`
	Name      string `gorm:"type:varchar(255);not null"`
	CreatedAt time.Time
}
