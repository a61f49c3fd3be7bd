package storage

import (
	"errors"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"anteeq/moderator/internal/models"
)

// SetRank stores a user's rank in a chat. Rank 0 deletes the record
// instead of storing a zero, so absence and rank 0 stay the same state.
// The operation is an idempotent upsert.
func (s *Service) SetRank(chatID, userID int64, rank int) error {
	if _, err := s.EnsureChat(chatID); err != nil {
		return err
	}
	if rank == 0 {
		return s.DB.Where("chat_id = ? AND user_id = ?", chatID, userID).
			Delete(&models.AdminRank{}).Error
	}
	record := models.AdminRank{ChatID: chatID, UserID: userID, Rank: rank}
	return s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chat_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rank"}),
	}).Create(&record).Error
}

// GetRank returns the user's rank, 0 when no record exists. A storage
// error also degrades to 0: an unreachable store denies privilege rather
// than granting it, and is reported only through the log.
func (s *Service) GetRank(chatID, userID int64) int {
	var record models.AdminRank
	err := s.DB.Where("chat_id = ? AND user_id = ?", chatID, userID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0
	}
	if err != nil {
		log.Printf("ERROR: Failed to read rank for user %d in chat %d: %v", userID, chatID, err)
		return 0
	}
	return record.Rank
}

// GetAllAdmins returns every ranked user of the chat, highest rank first.
func (s *Service) GetAllAdmins(chatID int64) ([]models.AdminRank, error) {
	var admins []models.AdminRank
	err := s.DB.Where("chat_id = ?", chatID).
		Order("rank DESC, user_id ASC").Find(&admins).Error
	if err != nil {
		return nil, err
	}
	return admins, nil
}

// SetNick stores the user's display nick for the chat.
func (s *Service) SetNick(chatID, userID int64, nick string) error {
	if _, err := s.EnsureChat(chatID); err != nil {
		return err
	}
	record := models.Nick{ChatID: chatID, UserID: userID, Nick: nick}
	return s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chat_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"nick"}),
	}).Create(&record).Error
}

// GetNick returns the user's nick or nil when none is set.
func (s *Service) GetNick(chatID, userID int64) (*string, error) {
	var record models.Nick
	err := s.DB.Where("chat_id = ? AND user_id = ?", chatID, userID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record.Nick, nil
}

// RemoveNick deletes the user's nick, reporting whether one existed.
func (s *Service) RemoveNick(chatID, userID int64) (bool, error) {
	res := s.DB.Where("chat_id = ? AND user_id = ?", chatID, userID).
		Delete(&models.Nick{})
	return res.RowsAffected > 0, res.Error
}

// GetAllNicks lists every nick set in the chat.
func (s *Service) GetAllNicks(chatID int64) ([]models.Nick, error) {
	var nicks []models.Nick
	if err := s.DB.Where("chat_id = ?", chatID).Find(&nicks).Error; err != nil {
		return nil, err
	}
	return nicks, nil
}
