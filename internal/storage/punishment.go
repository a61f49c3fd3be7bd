package storage

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"anteeq/moderator/internal/models"
)

// AddWarn appends a warning record.
func (s *Service) AddWarn(warn *models.Warning) error {
	if _, err := s.EnsureChat(warn.ChatID); err != nil {
		return err
	}
	return s.DB.Create(warn).Error
}

// GetWarns returns the user's warnings in insertion order.
func (s *Service) GetWarns(chatID, userID int64) ([]models.Warning, error) {
	var warns []models.Warning
	err := s.DB.Where("chat_id = ? AND user_id = ?", chatID, userID).
		Order("created_at ASC, id ASC").Find(&warns).Error
	if err != nil {
		return nil, err
	}
	return warns, nil
}

// CountWarns returns the user's current warning count.
func (s *Service) CountWarns(chatID, userID int64) (int, error) {
	var count int64
	err := s.DB.Model(&models.Warning{}).
		Where("chat_id = ? AND user_id = ?", chatID, userID).Count(&count).Error
	return int(count), err
}

// LastWarn returns the most recently inserted warning, insertion order
// breaking timestamp ties, or nil when the user has none.
func (s *Service) LastWarn(chatID, userID int64) (*models.Warning, error) {
	var warn models.Warning
	err := s.DB.Where("chat_id = ? AND user_id = ?", chatID, userID).
		Order("created_at DESC, id DESC").First(&warn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &warn, nil
}

// DeleteWarn removes one warning by its record id.
func (s *Service) DeleteWarn(id uint) error {
	return s.DB.Delete(&models.Warning{}, id).Error
}

// DeleteAllWarns removes every warning of the user in the chat.
func (s *Service) DeleteAllWarns(chatID, userID int64) error {
	return s.DB.Where("chat_id = ? AND user_id = ?", chatID, userID).
		Delete(&models.Warning{}).Error
}

// UpsertMute stores the single mute record for the (chat, user) pair,
// replacing expiry, reason and issue time when one already exists.
func (s *Service) UpsertMute(mute *models.Mute) error {
	if _, err := s.EnsureChat(mute.ChatID); err != nil {
		return err
	}
	return s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chat_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"unmute_time", "reason", "created_at"}),
	}).Create(mute).Error
}

// GetMute returns the active mute record or nil.
func (s *Service) GetMute(chatID, userID int64) (*models.Mute, error) {
	var mute models.Mute
	err := s.DB.Where("chat_id = ? AND user_id = ?", chatID, userID).First(&mute).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &mute, nil
}

// DeleteMute removes the mute record unconditionally. Deleting a mute
// that does not exist is a no-op.
func (s *Service) DeleteMute(chatID, userID int64) error {
	return s.DB.Where("chat_id = ? AND user_id = ?", chatID, userID).
		Delete(&models.Mute{}).Error
}

// DeleteMuteIfUnmuteAt removes the mute only if it still carries the given
// expiry. The sweeper uses this compare-and-delete so that a mute re-issued
// between its scan and the delete survives the sweep.
func (s *Service) DeleteMuteIfUnmuteAt(chatID, userID int64, unmuteTime time.Time) (bool, error) {
	res := s.DB.Where("chat_id = ? AND user_id = ? AND unmute_time = ?", chatID, userID, unmuteTime).
		Delete(&models.Mute{})
	return res.RowsAffected > 0, res.Error
}

// ListExpiredMutes returns every mute whose expiry has passed.
func (s *Service) ListExpiredMutes(now time.Time) ([]models.Mute, error) {
	var mutes []models.Mute
	err := s.DB.Where("unmute_time <= ?", now).Find(&mutes).Error
	if err != nil {
		return nil, err
	}
	return mutes, nil
}

// UpsertBan stores the ban record for the (chat, user) pair. A repeated
// ban refreshes the reason and issue time.
func (s *Service) UpsertBan(ban *models.Ban) error {
	if _, err := s.EnsureChat(ban.ChatID); err != nil {
		return err
	}
	return s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chat_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"reason", "created_at"}),
	}).Create(ban).Error
}

// DeleteBan removes the ban record; a missing record is a no-op.
func (s *Service) DeleteBan(chatID, userID int64) error {
	return s.DB.Where("chat_id = ? AND user_id = ?", chatID, userID).
		Delete(&models.Ban{}).Error
}

// IsBanned reports whether a ban record exists for the pair.
func (s *Service) IsBanned(chatID, userID int64) (bool, error) {
	var count int64
	err := s.DB.Model(&models.Ban{}).
		Where("chat_id = ? AND user_id = ?", chatID, userID).Count(&count).Error
	return count > 0, err
}

// AddAward records an award for the user.
func (s *Service) AddAward(award *models.Award) error {
	if _, err := s.EnsureChat(award.ChatID); err != nil {
		return err
	}
	return s.DB.Create(award).Error
}

// GetAwards lists the user's awards, newest first.
func (s *Service) GetAwards(chatID, userID int64) ([]models.Award, error) {
	var awards []models.Award
	err := s.DB.Where("chat_id = ? AND user_id = ?", chatID, userID).
		Order("created_at DESC").Find(&awards).Error
	if err != nil {
		return nil, err
	}
	return awards, nil
}

// ClearAwards removes every award of the user in the chat.
func (s *Service) ClearAwards(chatID, userID int64) error {
	return s.DB.Where("chat_id = ? AND user_id = ?", chatID, userID).
		Delete(&models.Award{}).Error
}
