package storage

import (
	"errors"
	"fmt"
	"log"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"anteeq/moderator/internal/config"
	"anteeq/moderator/internal/models"
)

// EnsureChat creates the chat row lazily on first reference, seeding the
// default access table alongside it. Existing chats are returned as-is.
func (s *Service) EnsureChat(chatID int64) (*models.Chat, error) {
	var chat models.Chat
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		return ensureChatTx(tx, chatID, &chat)
	})
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// ensureChatTx is the transaction-scoped body of EnsureChat, shared with
// the settings import.
func ensureChatTx(tx *gorm.DB, chatID int64, chat *models.Chat) error {
	res := tx.Where("chat_id = ?", chatID).
		Attrs(models.Chat{ChatID: chatID, ProfanityFilterEnabled: true}).
		FirstOrCreate(chat)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return nil // already existed
	}
	entries := make([]models.PolicyEntry, 0, len(config.DefaultAccessControl()))
	for section, rank := range config.DefaultAccessControl() {
		entries = append(entries, models.PolicyEntry{ChatID: chatID, Section: section, MinRank: rank})
	}
	return tx.Create(&entries).Error
}

// GetChat returns the chat row, or nil without error when it does not exist.
func (s *Service) GetChat(chatID int64) (*models.Chat, error) {
	var chat models.Chat
	err := s.DB.Where("chat_id = ?", chatID).First(&chat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// DeleteChat removes the chat and, through the cascade constraints, every
// record scoped to it.
func (s *Service) DeleteChat(chatID int64) error {
	return s.DB.Select(clause.Associations).Delete(&models.Chat{ChatID: chatID}).Error
}

// SetCreator designates the chat creator; nil clears the designation.
func (s *Service) SetCreator(chatID int64, userID *int64) error {
	if _, err := s.EnsureChat(chatID); err != nil {
		return err
	}
	return s.DB.Model(&models.Chat{}).Where("chat_id = ?", chatID).
		Update("creator_id", userID).Error
}

// GetCreator returns the designated creator or nil. A storage error
// degrades to nil so that the creator override can never be granted on
// infrastructure failure.
func (s *Service) GetCreator(chatID int64) *int64 {
	var chat models.Chat
	err := s.DB.Select("creator_id").Where("chat_id = ?", chatID).First(&chat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		log.Printf("ERROR: Failed to read creator for chat %d: %v", chatID, err)
		return nil
	}
	return chat.CreatorID
}

func (s *Service) SetWelcomeMessage(chatID int64, text string) error {
	return s.updateChatColumn(chatID, "welcome_message", text)
}

func (s *Service) SetRules(chatID int64, text string) error {
	return s.updateChatColumn(chatID, "rules", text)
}

func (s *Service) SetLinkPostingRank(chatID int64, rank int) error {
	return s.updateChatColumn(chatID, "link_posting_rank", rank)
}

func (s *Service) SetAwardGivingRank(chatID int64, rank int) error {
	return s.updateChatColumn(chatID, "award_giving_rank", rank)
}

func (s *Service) SetMaxWarns(chatID int64, limit int) error {
	return s.updateChatColumn(chatID, "max_warns", limit)
}

func (s *Service) SetProfanityFilter(chatID int64, enabled bool) error {
	return s.updateChatColumn(chatID, "profanity_filter_enabled", enabled)
}

func (s *Service) SetProfanityWords(chatID int64, words []string) error {
	return s.updateChatColumn(chatID, "profanity_words", pq.StringArray(words))
}

func (s *Service) updateChatColumn(chatID int64, column string, value interface{}) error {
	if _, err := s.EnsureChat(chatID); err != nil {
		return err
	}
	return s.DB.Model(&models.Chat{}).Where("chat_id = ?", chatID).
		Update(column, value).Error
}

// SetChatCode stores the opaque settings-import code. The unique index on
// the column rejects collisions.
func (s *Service) SetChatCode(chatID int64, code string) error {
	return s.updateChatColumn(chatID, "chat_code", code)
}

// FindChatByCode resolves a settings-import code to its chat, or nil when
// no chat carries the code.
func (s *Service) FindChatByCode(code string) (*models.Chat, error) {
	var chat models.Chat
	err := s.DB.Where("chat_code = ?", code).First(&chat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// ImportChatSettings copies the welcome message, rules and the whole access
// table from the source chat onto the target as one atomic replace. The
// target's prior access table is fully overwritten, never merged.
func (s *Service) ImportChatSettings(targetChatID, sourceChatID int64) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var source models.Chat
		if err := tx.Where("chat_id = ?", sourceChatID).First(&source).Error; err != nil {
			return fmt.Errorf("source chat %d: %w", sourceChatID, err)
		}

		var target models.Chat
		if err := ensureChatTx(tx, targetChatID, &target); err != nil {
			return err
		}
		err := tx.Model(&models.Chat{}).Where("chat_id = ?", targetChatID).
			Updates(map[string]interface{}{
				"welcome_message": source.WelcomeMessage,
				"rules":           source.Rules,
			}).Error
		if err != nil {
			return err
		}

		var entries []models.PolicyEntry
		if err := tx.Where("chat_id = ?", sourceChatID).Find(&entries).Error; err != nil {
			return err
		}
		if err := tx.Where("chat_id = ?", targetChatID).Delete(&models.PolicyEntry{}).Error; err != nil {
			return err
		}
		for i := range entries {
			entries[i].ChatID = targetChatID
		}
		if len(entries) == 0 {
			return nil
		}
		return tx.Create(&entries).Error
	})
}

// GetAccessControl returns the chat's access table. A chat that was never
// referenced yet resolves to the default table.
func (s *Service) GetAccessControl(chatID int64) (map[string]int, error) {
	var entries []models.PolicyEntry
	if err := s.DB.Where("chat_id = ?", chatID).Find(&entries).Error; err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return config.DefaultAccessControl(), nil
	}
	table := make(map[string]int, len(entries))
	for _, e := range entries {
		table[e.Section] = e.MinRank
	}
	return table, nil
}

// SetSectionRank upserts one entry of the chat's access table.
func (s *Service) SetSectionRank(chatID int64, section string, rank int) error {
	if _, err := s.EnsureChat(chatID); err != nil {
		return err
	}
	entry := models.PolicyEntry{ChatID: chatID, Section: section, MinRank: rank}
	return s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chat_id"}, {Name: "section"}},
		DoUpdates: clause.AssignmentColumns([]string{"min_rank"}),
	}).Create(&entry).Error
}
