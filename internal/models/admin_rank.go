package models

// AdminRank maps a (chat, user) pair to an administrative rank in [1,5].
// Rank 0 is encoded as row absence and is never stored, so "no rank" and
// "rank zero" are the same state.
type AdminRank struct {
	ChatID int64 `gorm:"primaryKey;autoIncrement:false"`
	UserID int64 `gorm:"primaryKey;autoIncrement:false"`
	Rank   int   `gorm:"not null"`
}
