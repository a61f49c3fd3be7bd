package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"anteeq/moderator/internal/config"
)

// Chat holds the per-group moderation configuration. A row is created
// lazily the first time any operation references the group; chats are
// never deleted implicitly, and deleting one cascades to every record
// scoped to it.
type Chat struct {
	// ChatID is the platform identifier of the group.
	ChatID int64 `gorm:"primaryKey;autoIncrement:false"`
	// CreatorID is the one user with the creator override, if any.
	CreatorID *int64 `gorm:"index"`
	// ChatCode is an opaque unique code used for settings import.
	ChatCode *string `gorm:"type:varchar(10);uniqueIndex"`
	// WelcomeMessage is sent to new chat members.
	WelcomeMessage string `gorm:"type:text"`
	// Rules is the free-form rules text of the chat.
	Rules string `gorm:"type:text"`
	// LinkPostingRank is the minimum rank allowed to post links.
	LinkPostingRank int `gorm:"default:1"`
	// AwardGivingRank is the minimum rank allowed to hand out awards.
	AwardGivingRank int `gorm:"default:3"`
	// MaxWarns is the warning count at which a ban is issued.
	MaxWarns int `gorm:"default:3"`
	// ProfanityFilterEnabled toggles automatic warnings for profanity.
	ProfanityFilterEnabled bool `gorm:"default:true"`
	// ProfanityWords extends the built-in word list for this chat.
	ProfanityWords pq.StringArray `gorm:"type:text[]"`

	CreatedAt time.Time
	UpdatedAt time.Time

	// Chat-scoped records, removed together with the chat.
	Admins   []AdminRank   `gorm:"foreignKey:ChatID;constraint:OnDelete:CASCADE"`
	Nicks    []Nick        `gorm:"foreignKey:ChatID;constraint:OnDelete:CASCADE"`
	Warnings []Warning     `gorm:"foreignKey:ChatID;constraint:OnDelete:CASCADE"`
	Mutes    []Mute        `gorm:"foreignKey:ChatID;constraint:OnDelete:CASCADE"`
	Bans     []Ban         `gorm:"foreignKey:ChatID;constraint:OnDelete:CASCADE"`
	Policy   []PolicyEntry `gorm:"foreignKey:ChatID;constraint:OnDelete:CASCADE"`
	Awards   []Award       `gorm:"foreignKey:ChatID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate is a GORM hook filling in the textual defaults that cannot
// be expressed as column defaults.
func (c *Chat) BeforeCreate(tx *gorm.DB) (err error) {
	if c.WelcomeMessage == "" {
		c.WelcomeMessage = config.DefaultWelcomeMessage
	}
	if c.Rules == "" {
		c.Rules = config.DefaultRules
	}
	if c.LinkPostingRank == 0 {
		c.LinkPostingRank = config.DefaultLinkPostingRank
	}
	if c.AwardGivingRank == 0 {
		c.AwardGivingRank = config.DefaultAwardGivingRank
	}
	if c.MaxWarns == 0 {
		c.MaxWarns = config.DefaultMaxWarns
	}
	return
}
