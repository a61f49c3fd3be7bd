// Package telegram handles the integration with the Telegram Bot API.
// It receives updates, routes the text commands of the moderation bot,
// and announces unmute events produced by the sweeper.
package telegram

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"anteeq/moderator/internal/access"
	"anteeq/moderator/internal/models"
	"anteeq/moderator/internal/punishment"
	"anteeq/moderator/internal/settings"
	"anteeq/moderator/internal/storage"
)

// BotService receives Telegram updates and routes them to the moderation
// core. All user-facing text lives here; the core only ever sees opaque
// numeric identifiers.
type BotService struct {
	BotAPI   *tgbotapi.BotAPI
	Storage  *storage.Service
	Policy   *access.Policy
	Ledger   *punishment.Ledger
	Importer *settings.Importer

	// creators are usernames that bootstrap themselves to rank 5 and
	// claim creator status of an orphan chat.
	creators map[string]struct{}
	routes   []route
}

// NewBotService creates a new BotService instance. creatorUsernames is
// the bootstrap list of privileged usernames.
func NewBotService(token string, s *storage.Service, policy *access.Policy, ledger *punishment.Ledger, importer *settings.Importer, creatorUsernames []string) (*BotService, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	bot.Debug = false
	log.Printf("✅ Authorized on account %s", bot.Self.UserName)

	creators := make(map[string]struct{}, len(creatorUsernames))
	for _, name := range creatorUsernames {
		name = strings.TrimSpace(strings.TrimPrefix(name, "@"))
		if name != "" {
			creators[name] = struct{}{}
		}
	}

	svc := &BotService{
		BotAPI:   bot,
		Storage:  s,
		Policy:   policy,
		Ledger:   ledger,
		Importer: importer,
		creators: creators,
	}
	svc.routes = svc.buildRoutes()
	return svc, nil
}

// SelfID returns the bot's own user id (the protected system actor).
func (s *BotService) SelfID() int64 {
	return s.BotAPI.Self.ID
}

// Run consumes the Telegram update stream until the channel closes.
func (s *BotService) Run() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := s.BotAPI.GetUpdatesChan(u)

	for update := range updates {
		if update.CallbackQuery != nil {
			s.handleCallback(update.CallbackQuery)
			continue
		}
		if update.Message == nil {
			continue
		}
		s.handleMessage(update.Message)
	}
}

// AnnounceUnmutes consumes unmute events from Redis and announces them in
// the originating chat. Runs until the subscription closes.
func (s *BotService) AnnounceUnmutes() {
	pubsub := s.Storage.SubscribeUnmuteEvents()
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var event models.UnmuteEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			log.Printf("ERROR: Failed to unmarshal unmute event: %v", err)
			continue
		}
		text := fmt.Sprintf("Пользователь %s размучен", s.displayName(event.ChatID, event.UserID))
		s.send(event.ChatID, text)

		// Platform-level enforcement reacting to the ledger change.
		restrict := tgbotapi.RestrictChatMemberConfig{
			ChatMemberConfig: tgbotapi.ChatMemberConfig{
				ChatConfig: tgbotapi.ChatConfig{ChatID: event.ChatID},
				UserID:     event.UserID,
			},
			Permissions: &tgbotapi.ChatPermissions{
				CanSendMessages:       true,
				CanSendPolls:          true,
				CanSendOtherMessages:  true,
				CanAddWebPagePreviews: true,
			},
		}
		if _, err := s.BotAPI.Request(restrict); err != nil {
			log.Printf("ERROR: Failed to lift restriction for user %d in chat %d: %v", event.UserID, event.ChatID, err)
		}
	}
}

// handleMessage runs one inbound message through bootstrap, the command
// router and the passive filters.
func (s *BotService) handleMessage(msg *tgbotapi.Message) {
	if msg.NewChatMembers != nil {
		s.handleNewChatMembers(msg)
		return
	}
	if msg.From == nil || msg.Text == "" {
		return
	}

	s.checkAndSetCreatorRank(msg)

	for _, r := range s.routes {
		if m := r.re.FindStringSubmatch(msg.Text); m != nil {
			r.handle(msg, m)
			return
		}
	}

	s.applyMessageFilters(msg)
}

// checkAndSetCreatorRank bootstraps privileged usernames: they get rank 5
// and claim creator status when the chat has none.
func (s *BotService) checkAndSetCreatorRank(msg *tgbotapi.Message) {
	user := msg.From
	if user.UserName == "" {
		return
	}
	if _, ok := s.creators[user.UserName]; !ok {
		return
	}
	chatID := msg.Chat.ID
	if s.Storage.GetRank(chatID, user.ID) < 5 {
		if err := s.Storage.SetRank(chatID, user.ID, 5); err != nil {
			log.Printf("ERROR: Failed to bootstrap rank for @%s: %v", user.UserName, err)
			return
		}
		if s.Storage.GetCreator(chatID) == nil {
			if err := s.Storage.SetCreator(chatID, &user.ID); err != nil {
				log.Printf("ERROR: Failed to bootstrap creator for @%s: %v", user.UserName, err)
			}
		}
	}
}

// handleNewChatMembers welcomes joining users and assigns the chat a
// creator when it has none yet.
func (s *BotService) handleNewChatMembers(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if msg.From != nil {
		s.checkAndSetCreatorRank(msg)
		if s.Storage.GetCreator(chatID) == nil {
			if err := s.Storage.SetCreator(chatID, &msg.From.ID); err != nil {
				log.Printf("ERROR: Failed to set initial creator for chat %d: %v", chatID, err)
			}
			if _, ok := s.creators[msg.From.UserName]; ok {
				_ = s.Storage.SetRank(chatID, msg.From.ID, 5)
			}
		}
	}

	chat, err := s.Storage.EnsureChat(chatID)
	if err != nil {
		log.Printf("ERROR: Failed to ensure chat %d: %v", chatID, err)
		return
	}
	for _, user := range msg.NewChatMembers {
		if user.IsBot {
			continue
		}
		if _, ok := s.creators[user.UserName]; ok {
			_ = s.Storage.SetRank(chatID, user.ID, 5)
		}

		welcome := chat.WelcomeMessage
		if nick, err := s.Storage.GetNick(chatID, user.ID); err == nil && nick != nil {
			welcome += fmt.Sprintf("\nТвой ник: %s", *nick)
		}
		s.reply(msg, welcome)
	}
}

// send delivers a plain-text message to a chat.
func (s *BotService) send(chatID int64, text string) {
	if _, err := s.BotAPI.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Printf("ERROR: Failed to send message to chat %d: %v", chatID, err)
	}
}

// reply answers in the same chat as the inbound message.
func (s *BotService) reply(msg *tgbotapi.Message, text string) {
	s.send(msg.Chat.ID, text)
}

// displayName resolves a user's first name via the chat member API,
// falling back to the raw id.
func (s *BotService) displayName(chatID, userID int64) string {
	member, err := s.BotAPI.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatConfig: tgbotapi.ChatConfig{ChatID: chatID},
			UserID:     userID,
		},
	})
	if err != nil || member.User == nil {
		return fmt.Sprintf("%d", userID)
	}
	return member.User.FirstName
}

// replyTarget returns the user the message replies to, or nil.
func replyTarget(msg *tgbotapi.Message) *tgbotapi.User {
	if msg.ReplyToMessage == nil {
		return nil
	}
	return msg.ReplyToMessage.From
}
