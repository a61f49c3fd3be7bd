package storage_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"anteeq/moderator/internal/config"
	"anteeq/moderator/internal/models"
	"anteeq/moderator/internal/storage"
)

func newTestStorage(t *testing.T) *storage.Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, storage.Migrate(db))
	return storage.NewStorageService(db, nil)
}

// TestEnsureChatSeedsDefaults verifies that the first reference to a chat
// creates the row with the default configuration and access table.
func TestEnsureChatSeedsDefaults(t *testing.T) {
	s := newTestStorage(t)

	chat, err := s.EnsureChat(100)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultWelcomeMessage, chat.WelcomeMessage)
	assert.Equal(t, config.DefaultRules, chat.Rules)
	assert.Equal(t, config.DefaultMaxWarns, chat.MaxWarns)
	assert.True(t, chat.ProfanityFilterEnabled)

	table, err := s.GetAccessControl(100)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultAccessControl(), table)
}

// TestEnsureChatIdempotent verifies that re-referencing a chat never
// resets its configuration.
func TestEnsureChatIdempotent(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.EnsureChat(100)
	require.NoError(t, err)
	require.NoError(t, s.SetRules(100, "Без спама"))

	chat, err := s.EnsureChat(100)
	require.NoError(t, err)
	assert.Equal(t, "Без спама", chat.Rules)
}

// TestSetRankZeroDeletesRecord verifies that assigning rank 0 removes the
// record entirely instead of keeping a zero-valued row.
func TestSetRankZeroDeletesRecord(t *testing.T) {
	s := newTestStorage(t)

	require.NoError(t, s.SetRank(100, 7, 3))
	assert.Equal(t, 3, s.GetRank(100, 7))

	require.NoError(t, s.SetRank(100, 7, 0))
	assert.Equal(t, 0, s.GetRank(100, 7))

	var count int64
	require.NoError(t, s.DB.Model(&models.AdminRank{}).
		Where("chat_id = ? AND user_id = ?", 100, 7).Count(&count).Error)
	assert.Zero(t, count, "rank 0 must not leave a row behind")
}

// TestSetRankUpsert verifies that re-assigning a rank replaces the
// existing record.
func TestSetRankUpsert(t *testing.T) {
	s := newTestStorage(t)

	require.NoError(t, s.SetRank(100, 7, 2))
	require.NoError(t, s.SetRank(100, 7, 5))
	assert.Equal(t, 5, s.GetRank(100, 7))

	admins, err := s.GetAllAdmins(100)
	require.NoError(t, err)
	assert.Len(t, admins, 1)
}

// TestGetRankUnknownUser verifies that a user with no record resolves to
// rank 0.
func TestGetRankUnknownUser(t *testing.T) {
	s := newTestStorage(t)
	assert.Equal(t, 0, s.GetRank(100, 404))
}

// TestGetAllAdminsOrdering verifies the highest ranks come first.
func TestGetAllAdminsOrdering(t *testing.T) {
	s := newTestStorage(t)

	require.NoError(t, s.SetRank(100, 1, 2))
	require.NoError(t, s.SetRank(100, 2, 5))
	require.NoError(t, s.SetRank(100, 3, 1))

	admins, err := s.GetAllAdmins(100)
	require.NoError(t, err)
	require.Len(t, admins, 3)
	assert.Equal(t, int64(2), admins[0].UserID)
	assert.Equal(t, int64(1), admins[1].UserID)
	assert.Equal(t, int64(3), admins[2].UserID)
}

// TestUpsertMuteSingleRow verifies that re-muting replaces the single
// mute row rather than stacking a second one.
func TestUpsertMuteSingleRow(t *testing.T) {
	s := newTestStorage(t)

	first := time.Now().Add(10 * time.Minute).UTC()
	second := time.Now().Add(60 * time.Minute).UTC()

	require.NoError(t, s.UpsertMute(&models.Mute{ChatID: 100, UserID: 7, UnmuteTime: first, Reason: "a"}))
	require.NoError(t, s.UpsertMute(&models.Mute{ChatID: 100, UserID: 7, UnmuteTime: second, Reason: "b"}))

	var count int64
	require.NoError(t, s.DB.Model(&models.Mute{}).
		Where("chat_id = ? AND user_id = ?", 100, 7).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	mute, err := s.GetMute(100, 7)
	require.NoError(t, err)
	require.NotNil(t, mute)
	assert.Equal(t, "b", mute.Reason)
	assert.WithinDuration(t, second, mute.UnmuteTime, time.Second)
}

// TestDeleteMuteIfUnmuteAt verifies the compare-and-delete: the row goes
// away only when it still carries the observed expiry.
func TestDeleteMuteIfUnmuteAt(t *testing.T) {
	s := newTestStorage(t)

	expiry := time.Now().Add(-time.Minute).UTC()
	require.NoError(t, s.UpsertMute(&models.Mute{ChatID: 100, UserID: 7, UnmuteTime: expiry}))

	observed, err := s.GetMute(100, 7)
	require.NoError(t, err)
	require.NotNil(t, observed)

	// The mute gets renewed after the observation.
	renewed := time.Now().Add(30 * time.Minute).UTC()
	require.NoError(t, s.UpsertMute(&models.Mute{ChatID: 100, UserID: 7, UnmuteTime: renewed}))

	deleted, err := s.DeleteMuteIfUnmuteAt(100, 7, observed.UnmuteTime)
	require.NoError(t, err)
	assert.False(t, deleted, "a renewed mute must survive the stale delete")

	current, err := s.GetMute(100, 7)
	require.NoError(t, err)
	require.NotNil(t, current)

	deleted, err = s.DeleteMuteIfUnmuteAt(100, 7, current.UnmuteTime)
	require.NoError(t, err)
	assert.True(t, deleted)
}

// TestListExpiredMutes verifies only past-expiry mutes are returned.
func TestListExpiredMutes(t *testing.T) {
	s := newTestStorage(t)
	now := time.Now().UTC()

	require.NoError(t, s.UpsertMute(&models.Mute{ChatID: 100, UserID: 1, UnmuteTime: now.Add(-time.Minute)}))
	require.NoError(t, s.UpsertMute(&models.Mute{ChatID: 100, UserID: 2, UnmuteTime: now.Add(time.Hour)}))

	expired, err := s.ListExpiredMutes(now)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, int64(1), expired[0].UserID)
}

// TestWarnOrdering verifies insertion order for listing and the reverse
// for LastWarn.
func TestWarnOrdering(t *testing.T) {
	s := newTestStorage(t)

	for _, reason := range []string{"first", "second", "third"} {
		require.NoError(t, s.AddWarn(&models.Warning{ChatID: 100, UserID: 7, FromUserID: 1, Reason: reason}))
	}

	warns, err := s.GetWarns(100, 7)
	require.NoError(t, err)
	require.Len(t, warns, 3)
	assert.Equal(t, "first", warns[0].Reason)
	assert.Equal(t, "third", warns[2].Reason)

	last, err := s.LastWarn(100, 7)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "third", last.Reason)
}

// TestBanUpsert verifies a repeated ban keeps a single row and refreshes
// the reason.
func TestBanUpsert(t *testing.T) {
	s := newTestStorage(t)

	require.NoError(t, s.UpsertBan(&models.Ban{ChatID: 100, UserID: 7, Reason: "спам"}))
	require.NoError(t, s.UpsertBan(&models.Ban{ChatID: 100, UserID: 7, Reason: "оскорбления"}))

	banned, err := s.IsBanned(100, 7)
	require.NoError(t, err)
	assert.True(t, banned)

	var bans []models.Ban
	require.NoError(t, s.DB.Where("chat_id = ? AND user_id = ?", 100, 7).Find(&bans).Error)
	require.Len(t, bans, 1)
	assert.Equal(t, "оскорбления", bans[0].Reason)
}

// TestSetSectionRankOverridesDefault verifies a per-chat override shadows
// the seeded default for that section only.
func TestSetSectionRankOverridesDefault(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.EnsureChat(100)
	require.NoError(t, err)
	require.NoError(t, s.SetSectionRank(100, config.SectionMute, 4))

	table, err := s.GetAccessControl(100)
	require.NoError(t, err)
	assert.Equal(t, 4, table[config.SectionMute])
	assert.Equal(t, config.DefaultAccessControl()[config.SectionBan], table[config.SectionBan])
}

// TestImportChatSettingsFullReplace verifies that importing replaces the
// target's access table and texts wholesale, never merging.
func TestImportChatSettingsFullReplace(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.EnsureChat(1)
	require.NoError(t, err)
	require.NoError(t, s.SetWelcomeMessage(1, "Добро пожаловать"))
	require.NoError(t, s.SetRules(1, "Без ссылок"))
	require.NoError(t, s.SetSectionRank(1, config.SectionMute, 2))

	_, err = s.EnsureChat(2)
	require.NoError(t, err)
	require.NoError(t, s.SetSectionRank(2, config.SectionMute, 5))
	require.NoError(t, s.SetSectionRank(2, "9.9", 1))

	require.NoError(t, s.ImportChatSettings(2, 1))

	chat, err := s.GetChat(2)
	require.NoError(t, err)
	require.NotNil(t, chat)
	assert.Equal(t, "Добро пожаловать", chat.WelcomeMessage)
	assert.Equal(t, "Без ссылок", chat.Rules)

	table, err := s.GetAccessControl(2)
	require.NoError(t, err)
	assert.Equal(t, 2, table[config.SectionMute])
	_, leftover := table["9.9"]
	assert.False(t, leftover, "entries absent from the source must not survive the import")
}

// TestNickRoundTrip covers set, replace, remove and the removed flag.
func TestNickRoundTrip(t *testing.T) {
	s := newTestStorage(t)

	require.NoError(t, s.SetNick(100, 7, "Странник"))
	require.NoError(t, s.SetNick(100, 7, "Легенда"))

	nick, err := s.GetNick(100, 7)
	require.NoError(t, err)
	require.NotNil(t, nick)
	assert.Equal(t, "Легенда", *nick)

	removed, err := s.RemoveNick(100, 7)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.RemoveNick(100, 7)
	require.NoError(t, err)
	assert.False(t, removed)
}

// TestCreatorRoundTrip covers designation, clearing and the unknown-chat
// fallback.
func TestCreatorRoundTrip(t *testing.T) {
	s := newTestStorage(t)

	assert.Nil(t, s.GetCreator(100))

	userID := int64(42)
	require.NoError(t, s.SetCreator(100, &userID))
	creator := s.GetCreator(100)
	require.NotNil(t, creator)
	assert.Equal(t, userID, *creator)

	require.NoError(t, s.SetCreator(100, nil))
	assert.Nil(t, s.GetCreator(100))
}

// TestDeleteChatRemovesScopedRecords verifies that deleting a chat also
// removes every record scoped to it.
func TestDeleteChatRemovesScopedRecords(t *testing.T) {
	s := newTestStorage(t)

	require.NoError(t, s.SetRank(100, 7, 3))
	require.NoError(t, s.AddWarn(&models.Warning{ChatID: 100, UserID: 7, FromUserID: 1, Reason: "спам"}))
	require.NoError(t, s.UpsertBan(&models.Ban{ChatID: 100, UserID: 7, Reason: "спам"}))

	require.NoError(t, s.DeleteChat(100))

	chat, err := s.GetChat(100)
	require.NoError(t, err)
	assert.Nil(t, chat)
	assert.Equal(t, 0, s.GetRank(100, 7))

	count, err := s.CountWarns(100, 7)
	require.NoError(t, err)
	assert.Zero(t, count)

	banned, err := s.IsBanned(100, 7)
	require.NoError(t, err)
	assert.False(t, banned)
}

// TestFindChatByCode verifies code resolution and the nil miss.
func TestFindChatByCode(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.EnsureChat(100)
	require.NoError(t, err)
	require.NoError(t, s.SetChatCode(100, "AB12C"))

	chat, err := s.FindChatByCode("AB12C")
	require.NoError(t, err)
	require.NotNil(t, chat)
	assert.Equal(t, int64(100), chat.ChatID)

	chat, err = s.FindChatByCode("ZZZZZ")
	require.NoError(t, err)
	assert.Nil(t, chat)
}
