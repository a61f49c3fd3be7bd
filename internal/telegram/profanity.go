package telegram

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"anteeq/moderator/internal/config"
	"anteeq/moderator/internal/punishment"
)

var profanityWords = map[string]struct{}{
	"мат": {}, "блят": {}, "блядь": {}, "ебать": {}, "ёбать": {}, "пидор": {}, "пизда": {}, "сука": {}, "хуй": {}, "хуе": {},
	"ахуел": {}, "хуёво": {}, "бля": {}, "блин": {}, "ебланы": {}, "ебал": {}, "нахуй": {}, "похуй": {}, "охуел": {},
	"хулиган": {}, "сучка": {}, "сучье": {}, "пидорас": {}, "уебан": {}, "доебал": {}, "проебал": {}, "ебёнок": {},
	"сукин": {}, "мудак": {}, "мудаки": {}, "бляди": {}, "долбоёб": {}, "гандон": {}, "уёбыш": {}, "пиздец": {},
	"засранец": {}, "дерьмо": {}, "говнюк": {}, "хер": {}, "хером": {}, "хреновый": {}, "курва": {}, "фак": {},
	"факе": {}, "шлюха": {}, "байстрюк": {}, "гниль": {}, "ублюдок": {}, "мразь": {}, "паскуда": {}, "сволочь": {},
}

// containsProfanity checks the text word by word: lowercase it, strip
// everything that is not a letter and look the remainder up in the
// built-in list plus the chat's extra words.
func containsProfanity(text string, extra []string) bool {
	if text == "" {
		return false
	}
	extraSet := make(map[string]struct{}, len(extra))
	for _, word := range extra {
		extraSet[strings.ToLower(word)] = struct{}{}
	}
	for _, word := range strings.Fields(strings.ToLower(text)) {
		clean := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) {
				return r
			}
			return -1
		}, word)
		if clean == "" {
			continue
		}
		if _, ok := profanityWords[clean]; ok {
			return true
		}
		if _, ok := extraSet[clean]; ok {
			return true
		}
	}
	return false
}

// containsLink reports whether the message carries a url or text_link
// entity.
func containsLink(msg *tgbotapi.Message) bool {
	for _, entity := range msg.Entities {
		if entity.Type == "url" || entity.Type == "text_link" {
			return true
		}
	}
	for _, entity := range msg.CaptionEntities {
		if entity.Type == "url" || entity.Type == "text_link" {
			return true
		}
	}
	return false
}

// applyMessageFilters runs the passive moderation pass over a plain
// message: link posting below the chat's threshold deletes the message,
// profanity deletes it and issues an automatic warning in the bot's
// name.
func (s *BotService) applyMessageFilters(msg *tgbotapi.Message) {
	if msg.From == nil || msg.From.ID == s.SelfID() {
		return
	}
	chat, err := s.Storage.GetChat(msg.Chat.ID)
	if err != nil {
		log.Printf("ERROR: Failed to load chat %d for filters: %v", msg.Chat.ID, err)
		return
	}
	if chat == nil {
		return
	}

	creator := s.Storage.GetCreator(msg.Chat.ID)
	isCreator := creator != nil && *creator == msg.From.ID

	if containsLink(msg) && !isCreator &&
		s.Storage.GetRank(msg.Chat.ID, msg.From.ID) < chat.LinkPostingRank {
		s.deleteMessage(msg)
		s.send(msg.Chat.ID, fmt.Sprintf("%s, для отправки ссылок требуется ранг: %s",
			msg.From.FirstName, config.RankNames[chat.LinkPostingRank]))
		return
	}

	if chat.ProfanityFilterEnabled && containsProfanity(messageText(msg), chat.ProfanityWords) {
		s.deleteMessage(msg)
		result, err := s.Ledger.AddWarning(msg.Chat.ID, msg.From.ID, s.SelfID(), config.ProfanityWarnReason)
		if errors.Is(err, punishment.ErrProtectedUser) || errors.Is(err, punishment.ErrSelfTarget) {
			return
		}
		if err != nil {
			log.Printf("ERROR: Failed to warn user %d for profanity in chat %d: %v", msg.From.ID, msg.Chat.ID, err)
			return
		}
		if result.Banned {
			s.banChatMember(msg.Chat.ID, msg.From.ID)
			s.send(msg.Chat.ID, fmt.Sprintf("Пользователь %s получил %d предупреждения и был забанен",
				msg.From.FirstName, result.MaxWarns))
			return
		}
		s.send(msg.Chat.ID, fmt.Sprintf("%s, следите за языком! Предупреждение (%d/%d)",
			msg.From.FirstName, result.Count, result.MaxWarns))
	}
}

func messageText(msg *tgbotapi.Message) string {
	if msg.Text != "" {
		return msg.Text
	}
	return msg.Caption
}

func (s *BotService) deleteMessage(msg *tgbotapi.Message) {
	if _, err := s.BotAPI.Request(tgbotapi.NewDeleteMessage(msg.Chat.ID, msg.MessageID)); err != nil {
		log.Printf("ERROR: Failed to delete message %d in chat %d: %v", msg.MessageID, msg.Chat.ID, err)
	}
}
