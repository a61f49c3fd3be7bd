package models

import "time"

// Warning is one moderator warning issued against a user. Records are
// append-only; the only removals are the most recent entry or a full clear.
type Warning struct {
	ID     uint  `gorm:"primaryKey"`
	ChatID int64 `gorm:"index:idx_warn_target"`
	UserID int64 `gorm:"index:idx_warn_target"`
	// FromUserID is the moderator (or the bot) that issued the warning.
	FromUserID int64
	// FromRank is the issuer's rank at the time the warning was issued.
	// Removing a warning requires outranking this value.
	FromRank  int
	Reason    string `gorm:"type:text"`
	CreatedAt time.Time
}
