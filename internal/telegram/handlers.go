package telegram

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"anteeq/moderator/internal/access"
	"anteeq/moderator/internal/config"
	"anteeq/moderator/internal/models"
	"anteeq/moderator/internal/punishment"
	"anteeq/moderator/internal/settings"
)

const msgNoAccess = "Недостаточно прав"

// authorize gates a handler on the chat's access table, answering the
// user on denial.
func (s *BotService) authorize(msg *tgbotapi.Message, section string) bool {
	if s.Policy.Authorize(msg.Chat.ID, msg.From.ID, section) {
		return true
	}
	s.reply(msg, msgNoAccess)
	return false
}

// requireCreator gates a handler on the creator override alone.
func (s *BotService) requireCreator(msg *tgbotapi.Message, denial string) bool {
	creator := s.Storage.GetCreator(msg.Chat.ID)
	if creator != nil && *creator == msg.From.ID {
		return true
	}
	s.reply(msg, denial)
	return false
}

func (s *BotService) handleBotPing(msg *tgbotapi.Message, _ []string) {
	s.reply(msg, "Шо")
}

func (s *BotService) handleHelp(msg *tgbotapi.Message, _ []string) {
	help := tgbotapi.NewMessage(msg.Chat.ID,
		"Доступные команды:\n\n"+
			"• Помощь - показать это сообщение\n"+
			"• Кто админ - список администраторов\n"+
			"• +ник [ник] - установить свой ник\n"+
			"• -ник - удалить свой ник\n"+
			"• Ники - список всех ников\n"+
			"• Преды - посмотреть свои предупреждения\n"+
			"• Правила - показать правила чата")
	help.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Ники", "nicks_help")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Админы", "admins_help")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Преды", "warns_help")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Правила", "rules_help")),
	)
	if _, err := s.BotAPI.Send(help); err != nil {
		log.Printf("ERROR: Failed to send help to chat %d: %v", msg.Chat.ID, err)
	}
}

func (s *BotService) handleCallback(query *tgbotapi.CallbackQuery) {
	if _, err := s.BotAPI.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		log.Printf("ERROR: Failed to answer callback query: %v", err)
	}

	var text string
	switch query.Data {
	case "nicks_help":
		text = "Команды ников:\n• +ник [ник] - установить ник\n• -ник - удалить ник\n• Ники - список ников"
	case "admins_help":
		text = "Команда: 'кто админ' - покажет список администраторов чата"
	case "warns_help":
		text = "Команда: 'преды' - покажет ваши предупреждения\nДля других участников - ответьте на сообщение с этой командой"
	case "rules_help":
		text = "Команда: 'правила' - покажет правила чата"
	default:
		return
	}
	if query.Message != nil {
		edit := tgbotapi.NewEditMessageText(query.Message.Chat.ID, query.Message.MessageID, text)
		if _, err := s.BotAPI.Send(edit); err != nil {
			log.Printf("ERROR: Failed to edit help message: %v", err)
		}
	}
}

func (s *BotService) handleChatCode(msg *tgbotapi.Message, _ []string) {
	if !s.authorize(msg, config.SectionAccess) {
		return
	}
	code, err := s.Importer.ChatCode(msg.Chat.ID)
	if err != nil {
		log.Printf("ERROR: Failed to get chat code for chat %d: %v", msg.Chat.ID, err)
		s.reply(msg, "Не удалось получить код чата")
		return
	}
	s.reply(msg, fmt.Sprintf("Код чата: %s", code))
}

func (s *BotService) handleImport(msg *tgbotapi.Message, match []string) {
	if !s.authorize(msg, config.SectionAccess) {
		return
	}
	if match[1] == "" {
		s.reply(msg, "Использование: !импорт [код]")
		return
	}
	code := strings.ToUpper(match[1])
	err := s.Importer.ImportByCode(msg.Chat.ID, code)
	if errors.Is(err, settings.ErrCodeNotFound) {
		s.reply(msg, "Чат с таким кодом не найден")
		return
	}
	if err != nil {
		log.Printf("ERROR: Settings import into chat %d failed: %v", msg.Chat.ID, err)
		s.reply(msg, "Не удалось импортировать настройки")
		return
	}
	s.reply(msg, "Настройки успешно импортированы")
}

func (s *BotService) handleTransferCreator(msg *tgbotapi.Message, _ []string) {
	if !s.requireCreator(msg, "Только создатель может оставить завещание") {
		return
	}
	target := replyTarget(msg)
	if target == nil {
		s.reply(msg, "Укажите пользователя через ответ на сообщение")
		return
	}
	if err := s.Storage.SetCreator(msg.Chat.ID, &target.ID); err != nil {
		log.Printf("ERROR: Failed to transfer creator in chat %d: %v", msg.Chat.ID, err)
		return
	}
	s.reply(msg, fmt.Sprintf("Статус создателя передан пользователю %s", target.FirstName))
}

func (s *BotService) handleClearCreator(msg *tgbotapi.Message, _ []string) {
	if !s.requireCreator(msg, "Только создатель может отменить завещание") {
		return
	}
	if err := s.Storage.SetCreator(msg.Chat.ID, nil); err != nil {
		log.Printf("ERROR: Failed to clear creator in chat %d: %v", msg.Chat.ID, err)
		return
	}
	s.reply(msg, "Завещание отменено. Статус создателя будет автоматически установлен для следующего пользователя из списка создателей.")
}

func (s *BotService) handleSetWelcome(msg *tgbotapi.Message, match []string) {
	if !s.authorize(msg, config.SectionWelcome) {
		return
	}
	if match[1] == "" {
		s.reply(msg, "Использование: +приветствие [текст]")
		return
	}
	if err := s.Storage.SetWelcomeMessage(msg.Chat.ID, match[1]); err != nil {
		log.Printf("ERROR: Failed to set welcome for chat %d: %v", msg.Chat.ID, err)
		return
	}
	s.reply(msg, "Приветственное сообщение обновлено")
}

func (s *BotService) handleShowAdmins(msg *tgbotapi.Message, _ []string) {
	admins, err := s.Storage.GetAllAdmins(msg.Chat.ID)
	if err != nil {
		log.Printf("ERROR: Failed to list admins for chat %d: %v", msg.Chat.ID, err)
		return
	}
	if len(admins) == 0 {
		s.reply(msg, "В чате нет администраторов")
		return
	}
	var b strings.Builder
	b.WriteString("Администраторы чата:\n")
	for _, admin := range admins {
		name := s.displayName(msg.Chat.ID, admin.UserID)
		b.WriteString(fmt.Sprintf("• %s - %s\n", name, config.RankNames[admin.Rank]))
	}
	s.reply(msg, b.String())
}

func (s *BotService) handleSetRank(msg *tgbotapi.Message, match []string) {
	if !s.requireCreator(msg, "Только создатель может назначать ранги") {
		return
	}
	target := replyTarget(msg)
	if target == nil {
		s.reply(msg, "Использование: ответьте на сообщение пользователя и напишите '+ранг [ранг]'")
		return
	}
	if match[1] == "" {
		s.reply(msg, rankUsage())
		return
	}
	rank, err := strconv.Atoi(match[1])
	if err != nil || access.ValidateRank(rank) != nil {
		s.reply(msg, "Ранг должен быть числом от 0 до 5")
		return
	}
	if err := s.Storage.SetRank(msg.Chat.ID, target.ID, rank); err != nil {
		log.Printf("ERROR: Failed to set rank in chat %d: %v", msg.Chat.ID, err)
		return
	}
	if rank == 0 {
		s.reply(msg, fmt.Sprintf("Пользователь %s теперь обычный участник", target.FirstName))
		return
	}
	s.reply(msg, fmt.Sprintf("Пользователю %s назначен ранг: %s", target.FirstName, config.RankNames[rank]))
}

func rankUsage() string {
	var b strings.Builder
	b.WriteString("Использование: +ранг [ранг]\n\nРанги:\n")
	for rank := config.MinRank; rank <= config.MaxRank; rank++ {
		b.WriteString(fmt.Sprintf("%d - %s\n", rank, config.RankNames[rank]))
	}
	return b.String()
}

func (s *BotService) handleSetNick(msg *tgbotapi.Message, match []string) {
	if !s.authorize(msg, config.SectionOwnNick) {
		return
	}
	if err := s.Storage.SetNick(msg.Chat.ID, msg.From.ID, match[1]); err != nil {
		log.Printf("ERROR: Failed to set nick in chat %d: %v", msg.Chat.ID, err)
		return
	}
	s.reply(msg, fmt.Sprintf("Ваш ник установлен: %s", match[1]))
}

func (s *BotService) handleRemoveNick(msg *tgbotapi.Message, _ []string) {
	if !s.authorize(msg, config.SectionOwnNick) {
		return
	}
	removed, err := s.Storage.RemoveNick(msg.Chat.ID, msg.From.ID)
	if err != nil {
		log.Printf("ERROR: Failed to remove nick in chat %d: %v", msg.Chat.ID, err)
		return
	}
	if removed {
		s.reply(msg, "Ваш ник удален")
	} else {
		s.reply(msg, "У вас нет установленного ника")
	}
}

func (s *BotService) handleSetNickOther(msg *tgbotapi.Message, match []string) {
	if !s.authorize(msg, config.SectionOtherNick) {
		return
	}
	target := replyTarget(msg)
	if target == nil {
		s.reply(msg, "Использование: ответьте на сообщение пользователя и напишите '+ник другому [никнейм]'")
		return
	}
	if err := s.Storage.SetNick(msg.Chat.ID, target.ID, match[1]); err != nil {
		log.Printf("ERROR: Failed to set nick in chat %d: %v", msg.Chat.ID, err)
		return
	}
	s.reply(msg, fmt.Sprintf("Ник для пользователя %s установлен: %s", target.FirstName, match[1]))
}

func (s *BotService) handleRemoveNickOther(msg *tgbotapi.Message, _ []string) {
	if !s.authorize(msg, config.SectionOtherNick) {
		return
	}
	target := replyTarget(msg)
	if target == nil {
		s.reply(msg, "Использование: ответьте на сообщение пользователя и напишите '-ник другому'")
		return
	}
	removed, err := s.Storage.RemoveNick(msg.Chat.ID, target.ID)
	if err != nil {
		log.Printf("ERROR: Failed to remove nick in chat %d: %v", msg.Chat.ID, err)
		return
	}
	if removed {
		s.reply(msg, fmt.Sprintf("Ник пользователя %s удален", target.FirstName))
	} else {
		s.reply(msg, fmt.Sprintf("У пользователя %s нет установленного ника", target.FirstName))
	}
}

func (s *BotService) handleShowNicks(msg *tgbotapi.Message, _ []string) {
	nicks, err := s.Storage.GetAllNicks(msg.Chat.ID)
	if err != nil {
		log.Printf("ERROR: Failed to list nicks for chat %d: %v", msg.Chat.ID, err)
		return
	}
	if len(nicks) == 0 {
		s.reply(msg, "В чате нет установленных ников")
		return
	}
	var b strings.Builder
	b.WriteString("Ники участников:\n")
	for i, nick := range nicks {
		b.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, nick.Nick, s.displayName(msg.Chat.ID, nick.UserID)))
	}
	s.reply(msg, b.String())
}

func (s *BotService) handleShowRules(msg *tgbotapi.Message, _ []string) {
	chat, err := s.Storage.GetChat(msg.Chat.ID)
	if err != nil {
		log.Printf("ERROR: Failed to read rules for chat %d: %v", msg.Chat.ID, err)
		return
	}
	if chat == nil {
		s.reply(msg, config.DefaultRules)
		return
	}
	s.reply(msg, chat.Rules)
}

func (s *BotService) handleSetRules(msg *tgbotapi.Message, match []string) {
	if !s.authorize(msg, config.SectionRules) {
		return
	}
	if match[1] == "" {
		s.reply(msg, "Использование: +правила [текст правил]")
		return
	}
	if err := s.Storage.SetRules(msg.Chat.ID, match[1]); err != nil {
		log.Printf("ERROR: Failed to set rules for chat %d: %v", msg.Chat.ID, err)
		return
	}
	s.reply(msg, "Правила чата обновлены")
}

func (s *BotService) handleWarn(msg *tgbotapi.Message, match []string) {
	if !s.authorize(msg, config.SectionWarn) {
		return
	}
	target := replyTarget(msg)
	if target == nil {
		s.reply(msg, "Использование: ответом на сообщение 'варн [причина]'")
		return
	}

	result, err := s.Ledger.AddWarning(msg.Chat.ID, target.ID, msg.From.ID, match[1])
	switch {
	case errors.Is(err, punishment.ErrSelfTarget):
		s.reply(msg, "Нельзя выдать предупреждение самому себе")
		return
	case errors.Is(err, punishment.ErrProtectedUser):
		s.reply(msg, "Нельзя выдать предупреждение боту")
		return
	case err != nil:
		log.Printf("ERROR: Failed to warn user %d in chat %d: %v", target.ID, msg.Chat.ID, err)
		return
	}

	if result.Banned {
		s.banChatMember(msg.Chat.ID, target.ID)
		s.reply(msg, fmt.Sprintf("Пользователь %s получил %d предупреждения и был забанен", target.FirstName, result.MaxWarns))
		return
	}
	reason := match[1]
	if reason == "" {
		reason = config.NoReason
	}
	s.reply(msg, fmt.Sprintf("Пользователь %s получил предупреждение (%d/%d)\nПричина: %s",
		target.FirstName, result.Count, result.MaxWarns, reason))
}

func (s *BotService) handleShowWarns(msg *tgbotapi.Message, _ []string) {
	target := msg.From
	if reply := replyTarget(msg); reply != nil {
		target = reply
	}
	warns, err := s.Storage.GetWarns(msg.Chat.ID, target.ID)
	if err != nil {
		log.Printf("ERROR: Failed to list warns for chat %d: %v", msg.Chat.ID, err)
		return
	}
	if len(warns) == 0 {
		s.reply(msg, fmt.Sprintf("У пользователя %s нет предупреждений", target.FirstName))
		return
	}

	status, err := s.Ledger.Status(msg.Chat.ID, target.ID)
	if err != nil {
		log.Printf("ERROR: Failed to read status for chat %d: %v", msg.Chat.ID, err)
		return
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Предупреждения пользователя %s (%d/%d):\n", target.FirstName, status.WarnCount, status.MaxWarns))
	for i, warn := range warns {
		b.WriteString(fmt.Sprintf("%d. %s - %s: %s\n",
			i+1, warn.CreatedAt.Format("02.01.2006 15:04"),
			s.displayName(msg.Chat.ID, warn.FromUserID), warn.Reason))
	}
	s.reply(msg, b.String())
}

func (s *BotService) handleRemoveWarn(msg *tgbotapi.Message, _ []string) {
	if !s.authorize(msg, config.SectionWarn) {
		return
	}
	target := replyTarget(msg)
	if target == nil {
		s.reply(msg, "Использование: ответьте на сообщение пользователя и напишите '-варн' или '-пред'")
		return
	}

	result, err := s.Ledger.RemoveLastWarning(msg.Chat.ID, target.ID, msg.From.ID)
	if errors.Is(err, punishment.ErrNotAuthorized) {
		s.reply(msg, "Нельзя снять предупреждение, выданное администратором с рангом не ниже вашего")
		return
	}
	if err != nil {
		log.Printf("ERROR: Failed to remove warn in chat %d: %v", msg.Chat.ID, err)
		return
	}
	if !result.Removed {
		s.reply(msg, fmt.Sprintf("У пользователя %s нет предупреждений", target.FirstName))
		return
	}
	if !result.Banned {
		s.unbanChatMember(msg.Chat.ID, target.ID)
	}
	s.reply(msg, fmt.Sprintf("Предупреждение снято с пользователя %s\nОсталось предупреждений: %d/%d",
		target.FirstName, result.Count, result.MaxWarns))
}

func (s *BotService) handleStatus(msg *tgbotapi.Message, _ []string) {
	target := msg.From
	if reply := replyTarget(msg); reply != nil {
		target = reply
	}
	status, err := s.Ledger.Status(msg.Chat.ID, target.ID)
	if err != nil {
		log.Printf("ERROR: Failed to read status for chat %d: %v", msg.Chat.ID, err)
		return
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Статус пользователя %s:\n", target.FirstName))
	b.WriteString(fmt.Sprintf("Предупреждения: %d/%d\n", status.WarnCount, status.MaxWarns))
	if status.IsMuted {
		b.WriteString(fmt.Sprintf("В муте до %s\n", status.MuteExpiry.Format("02.01.2006 15:04")))
	}
	if status.IsBanned {
		b.WriteString("Забанен\n")
	}
	s.reply(msg, b.String())
}

func (s *BotService) handleBan(msg *tgbotapi.Message, match []string) {
	if !s.authorize(msg, config.SectionBan) {
		return
	}
	target := replyTarget(msg)
	if target == nil {
		s.reply(msg, "Использование: ответьте на сообщение пользователя и напишите 'бан [причина]'")
		return
	}
	err := s.Ledger.Ban(msg.Chat.ID, target.ID, msg.From.ID, match[1])
	switch {
	case errors.Is(err, punishment.ErrSelfTarget):
		s.reply(msg, "Нельзя забанить самого себя")
		return
	case errors.Is(err, punishment.ErrProtectedUser):
		s.reply(msg, "Нельзя забанить бота")
		return
	case err != nil:
		log.Printf("ERROR: Failed to ban user %d in chat %d: %v", target.ID, msg.Chat.ID, err)
		return
	}
	s.banChatMember(msg.Chat.ID, target.ID)
	reason := match[1]
	if reason == "" {
		reason = config.NoReason
	}
	s.reply(msg, fmt.Sprintf("Пользователь %s забанен\nПричина: %s", target.FirstName, reason))
}

func (s *BotService) handleUnban(msg *tgbotapi.Message, _ []string) {
	if !s.authorize(msg, config.SectionBan) {
		return
	}
	target := replyTarget(msg)
	if target == nil {
		s.reply(msg, "Использование: ответьте на сообщение пользователя и напишите 'разбан'")
		return
	}
	if err := s.Ledger.Unban(msg.Chat.ID, target.ID); err != nil {
		log.Printf("ERROR: Failed to unban user %d in chat %d: %v", target.ID, msg.Chat.ID, err)
		return
	}
	s.unbanChatMember(msg.Chat.ID, target.ID)
	s.reply(msg, fmt.Sprintf("Пользователь %s разбанен", target.FirstName))
}

func (s *BotService) handleKick(msg *tgbotapi.Message, _ []string) {
	if !s.authorize(msg, config.SectionBan) {
		return
	}
	target := replyTarget(msg)
	if target == nil {
		s.reply(msg, "Использование: ответьте на сообщение пользователя и напишите 'кик'")
		return
	}
	// A kick is a platform-level ban immediately lifted; the ledger keeps
	// no record.
	s.banChatMember(msg.Chat.ID, target.ID)
	s.unbanChatMember(msg.Chat.ID, target.ID)
	s.reply(msg, fmt.Sprintf("Пользователь %s исключен из чата", target.FirstName))
}

func (s *BotService) handleMute(msg *tgbotapi.Message, match []string) {
	if !s.authorize(msg, config.SectionMute) {
		return
	}
	target := replyTarget(msg)
	if target == nil {
		s.reply(msg, "Использование: ответьте на сообщение пользователя и напишите 'мут [время в минутах]'")
		return
	}
	var duration time.Duration
	minutes := 60
	if match[1] != "" {
		if parsed, err := strconv.Atoi(match[1]); err == nil {
			minutes = parsed
		}
	}
	duration = time.Duration(minutes) * time.Minute

	mute, err := s.Ledger.Mute(msg.Chat.ID, target.ID, msg.From.ID, duration, "")
	switch {
	case errors.Is(err, punishment.ErrSelfTarget):
		s.reply(msg, "Нельзя замутить самого себя")
		return
	case errors.Is(err, punishment.ErrProtectedUser):
		s.reply(msg, "Нельзя замутить бота")
		return
	case err != nil:
		log.Printf("ERROR: Failed to mute user %d in chat %d: %v", target.ID, msg.Chat.ID, err)
		return
	}

	restrict := tgbotapi.RestrictChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{
			ChatConfig: tgbotapi.ChatConfig{ChatID: msg.Chat.ID},
			UserID:     target.ID,
		},
		UntilDate:   mute.UnmuteTime.Unix(),
		Permissions: &tgbotapi.ChatPermissions{CanSendMessages: false},
	}
	if _, err := s.BotAPI.Request(restrict); err != nil {
		log.Printf("ERROR: Failed to restrict user %d in chat %d: %v", target.ID, msg.Chat.ID, err)
	}
	s.reply(msg, fmt.Sprintf("Пользователь %s замучен на %d минут", target.FirstName, minutes))
}

func (s *BotService) handleUnmute(msg *tgbotapi.Message, _ []string) {
	if !s.authorize(msg, config.SectionMute) {
		return
	}
	target := replyTarget(msg)
	if target == nil {
		s.reply(msg, "Использование: ответьте на сообщение пользователя и напишите 'размут'")
		return
	}
	if err := s.Ledger.Unmute(msg.Chat.ID, target.ID); err != nil {
		log.Printf("ERROR: Failed to unmute user %d in chat %d: %v", target.ID, msg.Chat.ID, err)
		return
	}
	restrict := tgbotapi.RestrictChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{
			ChatConfig: tgbotapi.ChatConfig{ChatID: msg.Chat.ID},
			UserID:     target.ID,
		},
		Permissions: &tgbotapi.ChatPermissions{
			CanSendMessages:       true,
			CanSendPolls:          true,
			CanSendOtherMessages:  true,
			CanAddWebPagePreviews: true,
		},
	}
	if _, err := s.BotAPI.Request(restrict); err != nil {
		log.Printf("ERROR: Failed to lift restriction for user %d in chat %d: %v", target.ID, msg.Chat.ID, err)
	}
	s.reply(msg, fmt.Sprintf("Пользователь %s размучен", target.FirstName))
}

func (s *BotService) handleAccessControl(msg *tgbotapi.Message, match []string) {
	if !s.authorize(msg, config.SectionAccess) {
		return
	}
	if match[1] == "" {
		s.reply(msg, accessControlUsage())
		return
	}

	idx := strings.LastIndex(match[1], " ")
	if idx < 0 {
		s.reply(msg, "Использование: дк {команда} {требуемый ранг}")
		return
	}
	commandName := strings.TrimSpace(match[1][:idx])
	rank, err := strconv.Atoi(strings.TrimSpace(match[1][idx+1:]))
	if err != nil {
		s.reply(msg, "Ранг должен быть числом от 0 до 5")
		return
	}

	section := sectionForCommand(commandName)
	if section == "" {
		s.reply(msg, fmt.Sprintf("Неизвестная команда: %s", commandName))
		return
	}
	if err := s.Policy.SetSectionRank(msg.Chat.ID, section, rank); err != nil {
		if errors.Is(err, access.ErrInvalidRank) {
			s.reply(msg, "Ранг должен быть числом от 0 до 5")
			return
		}
		log.Printf("ERROR: Failed to set section rank in chat %d: %v", msg.Chat.ID, err)
		return
	}
	s.reply(msg, fmt.Sprintf("Раздел '%s': теперь требуется ранг %s",
		config.SectionNames[section], config.RankNames[rank]))
}

func accessControlUsage() string {
	var b strings.Builder
	b.WriteString("Использование: дк {команда} {требуемый ранг}\n\n")
	b.WriteString("Разделы:\n")
	for _, section := range []string{
		config.SectionMute, config.SectionBan, config.SectionWarn,
		config.SectionOwnNick, config.SectionOtherNick,
		config.SectionRules, config.SectionWelcome, config.SectionAccess,
	} {
		b.WriteString(fmt.Sprintf("%s - %s\n", section, config.SectionNames[section]))
	}
	b.WriteString("\nРанги:\n")
	for rank := config.MinRank; rank <= config.MaxRank; rank++ {
		b.WriteString(fmt.Sprintf("%d - %s\n", rank, config.RankNames[rank]))
	}
	return b.String()
}

func (s *BotService) handleGiveAward(msg *tgbotapi.Message, match []string) {
	chat, err := s.Storage.EnsureChat(msg.Chat.ID)
	if err != nil {
		log.Printf("ERROR: Failed to ensure chat %d: %v", msg.Chat.ID, err)
		return
	}
	creator := s.Storage.GetCreator(msg.Chat.ID)
	isCreator := creator != nil && *creator == msg.From.ID
	if !isCreator && s.Storage.GetRank(msg.Chat.ID, msg.From.ID) < chat.AwardGivingRank {
		s.reply(msg, msgNoAccess)
		return
	}
	target := replyTarget(msg)
	if target == nil {
		s.reply(msg, "Использование: ответьте на сообщение пользователя и напишите '+награда [название]'")
		return
	}
	if err := s.Storage.AddAward(&models.Award{ChatID: msg.Chat.ID, UserID: target.ID, Name: match[1]}); err != nil {
		log.Printf("ERROR: Failed to add award in chat %d: %v", msg.Chat.ID, err)
		return
	}
	s.reply(msg, fmt.Sprintf("Пользователь %s получил награду: %s", target.FirstName, match[1]))
}

func (s *BotService) handleShowAwards(msg *tgbotapi.Message, _ []string) {
	target := msg.From
	if reply := replyTarget(msg); reply != nil {
		target = reply
	}
	awards, err := s.Storage.GetAwards(msg.Chat.ID, target.ID)
	if err != nil {
		log.Printf("ERROR: Failed to list awards for chat %d: %v", msg.Chat.ID, err)
		return
	}
	if len(awards) == 0 {
		s.reply(msg, fmt.Sprintf("У пользователя %s нет наград", target.FirstName))
		return
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Награды пользователя %s:\n", target.FirstName))
	for i, award := range awards {
		b.WriteString(fmt.Sprintf("%d. %s\n", i+1, award.Name))
	}
	s.reply(msg, b.String())
}

func (s *BotService) handleClearAwards(msg *tgbotapi.Message, _ []string) {
	chat, err := s.Storage.EnsureChat(msg.Chat.ID)
	if err != nil {
		log.Printf("ERROR: Failed to ensure chat %d: %v", msg.Chat.ID, err)
		return
	}
	creator := s.Storage.GetCreator(msg.Chat.ID)
	isCreator := creator != nil && *creator == msg.From.ID
	if !isCreator && s.Storage.GetRank(msg.Chat.ID, msg.From.ID) < chat.AwardGivingRank {
		s.reply(msg, msgNoAccess)
		return
	}
	target := replyTarget(msg)
	if target == nil {
		s.reply(msg, "Использование: ответьте на сообщение пользователя и напишите '-награды'")
		return
	}
	if err := s.Storage.ClearAwards(msg.Chat.ID, target.ID); err != nil {
		log.Printf("ERROR: Failed to clear awards in chat %d: %v", msg.Chat.ID, err)
		return
	}
	s.reply(msg, fmt.Sprintf("Награды пользователя %s удалены", target.FirstName))
}

func (s *BotService) banChatMember(chatID, userID int64) {
	ban := tgbotapi.BanChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{
			ChatConfig: tgbotapi.ChatConfig{ChatID: chatID},
			UserID:     userID,
		},
	}
	if _, err := s.BotAPI.Request(ban); err != nil {
		log.Printf("ERROR: Failed to ban user %d in chat %d: %v", userID, chatID, err)
	}
}

func (s *BotService) unbanChatMember(chatID, userID int64) {
	unban := tgbotapi.UnbanChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{
			ChatConfig: tgbotapi.ChatConfig{ChatID: chatID},
			UserID:     userID,
		},
	}
	if _, err := s.BotAPI.Request(unban); err != nil {
		log.Printf("ERROR: Failed to unban user %d in chat %d: %v", userID, chatID, err)
	}
}
