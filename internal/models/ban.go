package models

import "time"

// Ban marks a user banned in a chat. Presence of the row is the state;
// there is at most one per (chat, user) pair.
type Ban struct {
	ChatID    int64  `gorm:"primaryKey;autoIncrement:false"`
	UserID    int64  `gorm:"primaryKey;autoIncrement:false"`
	Reason    string `gorm:"type:text"`
	CreatedAt time.Time
}
