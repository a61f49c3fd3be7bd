package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"anteeq/moderator/internal/config"
	"anteeq/moderator/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Chat{}))
	return db
}

// TestChatBeforeCreateDefaults verifies the hook fills the defaults a
// bare row would otherwise miss.
func TestChatBeforeCreateDefaults(t *testing.T) {
	db := newTestDB(t)

	chat := models.Chat{ChatID: 100, ProfanityFilterEnabled: true}
	require.NoError(t, db.Create(&chat).Error)

	var stored models.Chat
	require.NoError(t, db.First(&stored, "chat_id = ?", 100).Error)
	assert.Equal(t, config.DefaultWelcomeMessage, stored.WelcomeMessage)
	assert.Equal(t, config.DefaultRules, stored.Rules)
	assert.Equal(t, config.DefaultLinkPostingRank, stored.LinkPostingRank)
	assert.Equal(t, config.DefaultAwardGivingRank, stored.AwardGivingRank)
	assert.Equal(t, config.DefaultMaxWarns, stored.MaxWarns)
	assert.Nil(t, stored.CreatorID)
	assert.Nil(t, stored.ChatCode)
}

// TestChatBeforeCreateKeepsExplicitValues verifies the hook never
// overwrites values the caller set.
func TestChatBeforeCreateKeepsExplicitValues(t *testing.T) {
	db := newTestDB(t)

	chat := models.Chat{
		ChatID:         100,
		WelcomeMessage: "Салют",
		Rules:          "Без политики",
		MaxWarns:       5,
	}
	require.NoError(t, db.Create(&chat).Error)

	var stored models.Chat
	require.NoError(t, db.First(&stored, "chat_id = ?", 100).Error)
	assert.Equal(t, "Салют", stored.WelcomeMessage)
	assert.Equal(t, "Без политики", stored.Rules)
	assert.Equal(t, 5, stored.MaxWarns)
}

// TestProfanityWordsRoundTrip verifies the array column survives a
// write-read cycle.
func TestProfanityWordsRoundTrip(t *testing.T) {
	db := newTestDB(t)

	chat := models.Chat{ChatID: 100, ProfanityWords: []string{"крипта", "казино"}}
	require.NoError(t, db.Create(&chat).Error)

	var stored models.Chat
	require.NoError(t, db.First(&stored, "chat_id = ?", 100).Error)
	assert.Equal(t, []string{"крипта", "казино"}, []string(stored.ProfanityWords))
}
