package telegram

import (
	"regexp"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"anteeq/moderator/internal/config"
)

// route binds one command pattern to its handler. Routes are evaluated
// in order and the first match wins, so narrower patterns ("-варн",
// "+ник другому") must come before the wider ones they share a prefix
// with.
type route struct {
	re     *regexp.Regexp
	handle func(msg *tgbotapi.Message, match []string)
}

func (s *BotService) buildRoutes() []route {
	return []route{
		{regexp.MustCompile(`(?i)^бот$`), s.handleBotPing},
		{regexp.MustCompile(`(?i)^помощь$`), s.handleHelp},
		{regexp.MustCompile(`(?i)^!код чата$`), s.handleChatCode},
		{regexp.MustCompile(`(?i)^!импорт(?:\s+(\S+))?$`), s.handleImport},
		{regexp.MustCompile(`(?i)^!завещание$`), s.handleTransferCreator},
		{regexp.MustCompile(`(?i)^-завещание$`), s.handleClearCreator},
		{regexp.MustCompile(`(?i)^\+приветствие(?:\s+([\s\S]+))?$`), s.handleSetWelcome},
		{regexp.MustCompile(`(?i)^кто админ$`), s.handleShowAdmins},
		{regexp.MustCompile(`(?i)^\+ранг(?:\s+(\S+))?$`), s.handleSetRank},
		{regexp.MustCompile(`(?i)^\+ник другому\s+([\s\S]+)$`), s.handleSetNickOther},
		{regexp.MustCompile(`(?i)^-ник другому$`), s.handleRemoveNickOther},
		{regexp.MustCompile(`(?i)^\+ник\s+([\s\S]+)$`), s.handleSetNick},
		{regexp.MustCompile(`(?i)^-ник$`), s.handleRemoveNick},
		{regexp.MustCompile(`(?i)^ники$`), s.handleShowNicks},
		{regexp.MustCompile(`(?i)^правила$`), s.handleShowRules},
		{regexp.MustCompile(`(?i)^\+правила(?:\s+([\s\S]+))?$`), s.handleSetRules},
		{regexp.MustCompile(`(?i)^-(?:варн|пред)$`), s.handleRemoveWarn},
		{regexp.MustCompile(`(?i)^преды$`), s.handleShowWarns},
		{regexp.MustCompile(`(?i)^(?:варн|пред)(?:\s+([\s\S]+))?$`), s.handleWarn},
		{regexp.MustCompile(`(?i)^статус$`), s.handleStatus},
		{regexp.MustCompile(`(?i)^разбан$`), s.handleUnban},
		{regexp.MustCompile(`(?i)^кик$`), s.handleKick},
		{regexp.MustCompile(`(?i)^бан(?:\s+([\s\S]+))?$`), s.handleBan},
		{regexp.MustCompile(`(?i)^(?:размут|говори)$`), s.handleUnmute},
		{regexp.MustCompile(`(?i)^мут(?:\s+(\d+))?$`), s.handleMute},
		{regexp.MustCompile(`(?i)^дк(?:\s+([\s\S]+))?$`), s.handleAccessControl},
		{regexp.MustCompile(`(?i)^\+награда\s+([\s\S]+)$`), s.handleGiveAward},
		{regexp.MustCompile(`(?i)^-награды$`), s.handleClearAwards},
		{regexp.MustCompile(`(?i)^награды$`), s.handleShowAwards},
	}
}

// sectionForCommand maps a command name, as typed in the access-control
// command, to its section code. Unknown commands map to "".
func sectionForCommand(command string) string {
	switch strings.ToLower(strings.TrimSpace(command)) {
	case "мут", "размут":
		return config.SectionMute
	case "бан", "разбан", "кик":
		return config.SectionBan
	case "варн", "пред":
		return config.SectionWarn
	case "+ник", "-ник":
		return config.SectionOwnNick
	case "+ник другому", "-ник другому":
		return config.SectionOtherNick
	case "правила", "+правила", "кто админ":
		return config.SectionRules
	case "+приветствие":
		return config.SectionWelcome
	case "дк":
		return config.SectionAccess
	default:
		return ""
	}
}
