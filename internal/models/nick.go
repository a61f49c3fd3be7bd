package models

// Nick is a user's chosen display nick within one chat.
type Nick struct {
	ChatID int64  `gorm:"primaryKey;autoIncrement:false"`
	UserID int64  `gorm:"primaryKey;autoIncrement:false"`
	Nick   string `gorm:"type:varchar(255);not null"`
}
