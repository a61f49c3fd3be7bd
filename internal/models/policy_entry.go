package models

// PolicyEntry maps one section code of a chat's access table to the
// minimum rank required for it. Sections without an entry require the
// maximum rank.
type PolicyEntry struct {
	ChatID  int64  `gorm:"primaryKey;autoIncrement:false"`
	Section string `gorm:"primaryKey;type:varchar(10)"`
	MinRank int    `gorm:"not null"`
}
