package models

import "time"

// Mute is the single active mute for a (chat, user) pair. Re-muting an
// already muted user replaces the expiry and reason in place; there is
// never more than one row per pair.
type Mute struct {
	ChatID int64 `gorm:"primaryKey;autoIncrement:false"`
	UserID int64 `gorm:"primaryKey;autoIncrement:false"`
	// UnmuteTime is when the mute expires. The sweeper deletes the row
	// conditioned on this exact value, so a re-issued mute observed
	// mid-sweep is left alone.
	UnmuteTime time.Time `gorm:"index;not null"`
	Reason     string    `gorm:"type:text"`
	CreatedAt  time.Time
}
