package access_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"anteeq/moderator/internal/access"
	"anteeq/moderator/internal/config"
	"anteeq/moderator/internal/storage"
)

func newTestPolicy(t *testing.T) (*access.Policy, *storage.Service) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, storage.Migrate(db))
	s := storage.NewStorageService(db, nil)
	return access.NewPolicy(s), s
}

// TestAuthorizeAgainstDefaults checks the seeded table: each section
// admits exactly the ranks at or above its default requirement.
func TestAuthorizeAgainstDefaults(t *testing.T) {
	policy, s := newTestPolicy(t)
	chatID := int64(100)

	require.NoError(t, s.SetRank(chatID, 1, 1))
	require.NoError(t, s.SetRank(chatID, 2, 3))

	// Rank 1 clears mutes and warns but not bans.
	assert.True(t, policy.Authorize(chatID, 1, config.SectionMute))
	assert.True(t, policy.Authorize(chatID, 1, config.SectionWarn))
	assert.False(t, policy.Authorize(chatID, 1, config.SectionBan))

	// Rank 3 clears bans and rules.
	assert.True(t, policy.Authorize(chatID, 2, config.SectionBan))
	assert.True(t, policy.Authorize(chatID, 2, config.SectionRules))
	assert.False(t, policy.Authorize(chatID, 2, config.SectionAccess))

	// An unranked user still passes sections requiring rank 0.
	assert.True(t, policy.Authorize(chatID, 404, config.SectionOwnNick))
	assert.False(t, policy.Authorize(chatID, 404, config.SectionMute))
}

// TestCreatorOverride verifies the creator passes every section with no
// stored rank at all.
func TestCreatorOverride(t *testing.T) {
	policy, s := newTestPolicy(t)
	chatID, creatorID := int64(100), int64(42)
	require.NoError(t, s.SetCreator(chatID, &creatorID))

	for _, section := range []string{
		config.SectionMute, config.SectionBan, config.SectionWarn,
		config.SectionOwnNick, config.SectionOtherNick,
		config.SectionRules, config.SectionWelcome, config.SectionAccess,
		"no-such-section",
	} {
		assert.True(t, policy.Authorize(chatID, creatorID, section), "section %s", section)
	}
}

// TestUnknownSectionRequiresMaxRank verifies the closed-by-default rule
// for sections missing from the table.
func TestUnknownSectionRequiresMaxRank(t *testing.T) {
	policy, s := newTestPolicy(t)
	chatID := int64(100)
	_, err := s.EnsureChat(chatID)
	require.NoError(t, err)

	assert.Equal(t, config.MaxRank, policy.RequiredRank(chatID, "7.7"))

	require.NoError(t, s.SetRank(chatID, 1, config.MaxRank-1))
	assert.False(t, policy.Authorize(chatID, 1, "7.7"))
	require.NoError(t, s.SetRank(chatID, 1, config.MaxRank))
	assert.True(t, policy.Authorize(chatID, 1, "7.7"))
}

// TestSetSectionRankAdjustsAuthorization verifies raising a requirement
// locks out a previously authorized rank.
func TestSetSectionRankAdjustsAuthorization(t *testing.T) {
	policy, s := newTestPolicy(t)
	chatID := int64(100)
	require.NoError(t, s.SetRank(chatID, 1, 1))

	assert.True(t, policy.Authorize(chatID, 1, config.SectionMute))
	require.NoError(t, policy.SetSectionRank(chatID, config.SectionMute, 4))
	assert.False(t, policy.Authorize(chatID, 1, config.SectionMute))
}

// TestSetSectionRankValidatesRange verifies out-of-range ranks are
// rejected at the boundary.
func TestSetSectionRankValidatesRange(t *testing.T) {
	policy, _ := newTestPolicy(t)

	assert.ErrorIs(t, policy.SetSectionRank(100, config.SectionMute, -1), access.ErrInvalidRank)
	assert.ErrorIs(t, policy.SetSectionRank(100, config.SectionMute, 6), access.ErrInvalidRank)
	assert.NoError(t, policy.SetSectionRank(100, config.SectionMute, 0))
	assert.NoError(t, policy.SetSectionRank(100, config.SectionMute, 5))
}

func TestValidateRank(t *testing.T) {
	assert.NoError(t, access.ValidateRank(config.MinRank))
	assert.NoError(t, access.ValidateRank(config.MaxRank))
	assert.Error(t, access.ValidateRank(config.MinRank-1))
	assert.Error(t, access.ValidateRank(config.MaxRank+1))
}
