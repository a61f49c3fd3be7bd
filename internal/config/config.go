package config

import "time"

const (
	// Ranks
	MinRank = 0
	MaxRank = 5

	// Punishments
	DefaultMaxWarns     = 3
	DefaultMuteDuration = 60 * time.Minute
	WarnLimitReason     = "Достигнут лимит предупреждений"
	ProfanityWarnReason = "Нецензурная лексика"
	NoReason            = "Причина не указана"

	// Sweeper
	SweepInterval = 60 * time.Second
	NotifyTimeout = 5 * time.Second

	// Chat defaults
	DefaultWelcomeMessage  = "ANTEEQ"
	DefaultRules           = "Правила чата не установлены"
	DefaultLinkPostingRank = 1
	DefaultAwardGivingRank = 3

	// Chat codes used for settings import
	ChatCodeLength   = 5
	ChatCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// Database connection retry policy
	ConnectAttempts = 5
	ConnectBackoff  = 2 * time.Second

	// Redis channel carrying unmute events for external consumers
	UnmuteEventsChannel = "moderation:unmutes"
)

// Section codes identify one privileged action category each. The per-chat
// access table maps them to a minimum required rank.
const (
	SectionMute      = "1.1"
	SectionBan       = "1.2"
	SectionWarn      = "1.3"
	SectionOwnNick   = "2.1"
	SectionOtherNick = "2.2"
	SectionRules     = "3.1"
	SectionWelcome   = "3.2"
	SectionAccess    = "4"
)

// DefaultAccessControl returns the access table a chat starts with.
// Sections missing from a chat's table require MaxRank.
func DefaultAccessControl() map[string]int {
	return map[string]int{
		SectionMute:      1,
		SectionBan:       3,
		SectionWarn:      1,
		SectionOwnNick:   0,
		SectionOtherNick: 2,
		SectionRules:     3,
		SectionWelcome:   3,
		SectionAccess:    4,
	}
}

// RankNames maps a rank to its display name.
var RankNames = map[int]string{
	0: "Участник",
	1: "Модератор чата",
	2: "Наборщик",
	3: "Заместитель главы клана",
	4: "Глава клана",
	5: "Глава альянса",
}

// SectionNames maps a section code to its display name.
var SectionNames = map[string]string{
	SectionMute:      "Мут и снятие мута",
	SectionBan:       "Бан и снятие бана",
	SectionWarn:      "Предупреждения",
	SectionOwnNick:   "Ники себе",
	SectionOtherNick: "Ники другим",
	SectionRules:     "Правила",
	SectionWelcome:   "Приветствие",
	SectionAccess:    "Доступ к команде ДК",
}
