package punishment_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"anteeq/moderator/internal/config"
	"anteeq/moderator/internal/punishment"
	"anteeq/moderator/internal/storage"
)

const botID = int64(999)

func newTestLedger(t *testing.T) (*punishment.Ledger, *storage.Service) {
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
	return punishment.NewLedger(s, botID), s
}

// TestWarnEscalatesToBan walks a user to the warning limit and back:
// reaching the limit bans, removing a warning below the limit unbans.
func TestWarnEscalatesToBan(t *testing.T) {
	ledger, s := newTestLedger(t)
	chatID, userID, modID := int64(100), int64(7), int64(1)
	require.NoError(t, s.SetRank(chatID, modID, 3))

	for i := 1; i < config.DefaultMaxWarns; i++ {
		result, err := ledger.AddWarning(chatID, userID, modID, "спам")
		require.NoError(t, err)
		assert.Equal(t, i, result.Count)
		assert.False(t, result.Banned)
	}

	result, err := ledger.AddWarning(chatID, userID, modID, "спам")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultMaxWarns, result.Count)
	assert.True(t, result.Banned)

	// The escalation ban carries the system reason.
	banned, err := s.IsBanned(chatID, userID)
	require.NoError(t, err)
	assert.True(t, banned)

	// A creator can always undo the newest warning, which lifts the ban.
	creator := int64(50)
	require.NoError(t, s.SetCreator(chatID, &creator))
	removed, err := ledger.RemoveLastWarning(chatID, userID, creator)
	require.NoError(t, err)
	assert.True(t, removed.Removed)
	assert.Equal(t, config.DefaultMaxWarns-1, removed.Count)
	assert.False(t, removed.Banned)

	banned, err = s.IsBanned(chatID, userID)
	require.NoError(t, err)
	assert.False(t, banned)
}

// TestExplicitBanSurvivesWarnRemoval verifies the asymmetry between the
// two ban sources: dropping below the warning limit only lifts a ban the
// limit produced, never one issued explicitly.
func TestExplicitBanSurvivesWarnChurn(t *testing.T) {
	ledger, s := newTestLedger(t)
	chatID, userID, modID := int64(100), int64(7), int64(1)
	require.NoError(t, s.SetRank(chatID, modID, 5))

	require.NoError(t, ledger.Ban(chatID, userID, modID, "обход правил"))

	// Warnings below the limit do not touch the ban axis on the add
	// path, and the user stays banned throughout.
	result, err := ledger.AddWarning(chatID, userID, modID, "спам")
	require.NoError(t, err)
	assert.True(t, result.Banned)

	banned, err := s.IsBanned(chatID, userID)
	require.NoError(t, err)
	assert.True(t, banned)
}

// TestRemoveWarningRequiresOutranking verifies the undo gate: the actor
// must strictly outrank the issuer's rank captured at issue time.
func TestRemoveWarningRequiresOutranking(t *testing.T) {
	ledger, s := newTestLedger(t)
	chatID, userID := int64(100), int64(7)
	issuer, peer, superior := int64(1), int64(2), int64(3)
	require.NoError(t, s.SetRank(chatID, issuer, 3))
	require.NoError(t, s.SetRank(chatID, peer, 3))
	require.NoError(t, s.SetRank(chatID, superior, 4))

	_, err := ledger.AddWarning(chatID, userID, issuer, "спам")
	require.NoError(t, err)

	// Equal rank is not enough, and the issuer cannot undo their own.
	_, err = ledger.RemoveLastWarning(chatID, userID, peer)
	assert.ErrorIs(t, err, punishment.ErrNotAuthorized)
	_, err = ledger.RemoveLastWarning(chatID, userID, issuer)
	assert.ErrorIs(t, err, punishment.ErrNotAuthorized)

	result, err := ledger.RemoveLastWarning(chatID, userID, superior)
	require.NoError(t, err)
	assert.True(t, result.Removed)
	assert.Zero(t, result.Count)
}

// TestRemoveWarningChecksRankAtIssueTime verifies that a later demotion
// of the issuer does not retroactively tighten or loosen the gate.
func TestRemoveWarningChecksRankAtIssueTime(t *testing.T) {
	ledger, s := newTestLedger(t)
	chatID, userID := int64(100), int64(7)
	issuer, actor := int64(1), int64(2)
	require.NoError(t, s.SetRank(chatID, issuer, 4))
	require.NoError(t, s.SetRank(chatID, actor, 3))

	_, err := ledger.AddWarning(chatID, userID, issuer, "спам")
	require.NoError(t, err)

	// Demoting the issuer afterwards must not open the gate: the
	// warning was issued from rank 4.
	require.NoError(t, s.SetRank(chatID, issuer, 1))
	_, err = ledger.RemoveLastWarning(chatID, userID, actor)
	assert.ErrorIs(t, err, punishment.ErrNotAuthorized)
}

// TestRemoveLastWarningNoWarnings verifies removal on a clean slate is a
// reported no-op, not an error.
func TestRemoveLastWarningNoWarnings(t *testing.T) {
	ledger, s := newTestLedger(t)
	require.NoError(t, s.SetRank(100, 1, 5))

	result, err := ledger.RemoveLastWarning(100, 7, 1)
	require.NoError(t, err)
	assert.False(t, result.Removed)
	assert.Zero(t, result.Count)
}

// TestSelfAndBotTargetsRejected verifies the two protected-target rules
// on every issuing operation.
func TestSelfAndBotTargetsRejected(t *testing.T) {
	ledger, _ := newTestLedger(t)

	_, err := ledger.AddWarning(100, 7, 7, "спам")
	assert.ErrorIs(t, err, punishment.ErrSelfTarget)
	_, err = ledger.AddWarning(100, botID, 1, "спам")
	assert.ErrorIs(t, err, punishment.ErrProtectedUser)

	_, err = ledger.Mute(100, 7, 7, time.Minute, "")
	assert.ErrorIs(t, err, punishment.ErrSelfTarget)
	_, err = ledger.Mute(100, botID, 1, time.Minute, "")
	assert.ErrorIs(t, err, punishment.ErrProtectedUser)

	err = ledger.Ban(100, 7, 7, "")
	assert.ErrorIs(t, err, punishment.ErrSelfTarget)
	err = ledger.Ban(100, botID, 1, "")
	assert.ErrorIs(t, err, punishment.ErrProtectedUser)
}

// TestMuteDefaultsAndReplace verifies the duration and reason defaults
// and that re-muting replaces the expiry.
func TestMuteDefaultsAndReplace(t *testing.T) {
	ledger, s := newTestLedger(t)

	mute, err := ledger.Mute(100, 7, 1, 0, "")
	require.NoError(t, err)
	assert.Equal(t, config.NoReason, mute.Reason)
	assert.WithinDuration(t, time.Now().Add(config.DefaultMuteDuration), mute.UnmuteTime, 5*time.Second)

	mute, err = ledger.Mute(100, 7, 1, 5*time.Minute, "флуд")
	require.NoError(t, err)

	stored, err := s.GetMute(100, 7)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "флуд", stored.Reason)
	assert.WithinDuration(t, mute.UnmuteTime, stored.UnmuteTime, time.Second)
}

// TestUnmuteIdempotent verifies unmuting an unmuted user is a no-op.
func TestUnmuteIdempotent(t *testing.T) {
	ledger, _ := newTestLedger(t)
	require.NoError(t, ledger.Unmute(100, 7))
	require.NoError(t, ledger.Unmute(100, 7))
}

// TestClearWarningsResetsBan verifies a full clear also lifts the ban.
func TestClearWarningsResetsBan(t *testing.T) {
	ledger, s := newTestLedger(t)
	chatID, userID, modID := int64(100), int64(7), int64(1)
	require.NoError(t, s.SetRank(chatID, modID, 3))

	for i := 0; i < config.DefaultMaxWarns; i++ {
		_, err := ledger.AddWarning(chatID, userID, modID, "спам")
		require.NoError(t, err)
	}
	require.NoError(t, ledger.ClearWarnings(chatID, userID))

	status, err := ledger.Status(chatID, userID)
	require.NoError(t, err)
	assert.Zero(t, status.WarnCount)
	assert.False(t, status.IsBanned)
}

// TestStatusComposite verifies the read-only status across all three axes.
func TestStatusComposite(t *testing.T) {
	ledger, s := newTestLedger(t)
	chatID, userID, modID := int64(100), int64(7), int64(1)
	require.NoError(t, s.SetRank(chatID, modID, 5))

	_, err := ledger.AddWarning(chatID, userID, modID, "спам")
	require.NoError(t, err)
	mute, err := ledger.Mute(chatID, userID, modID, 10*time.Minute, "")
	require.NoError(t, err)
	require.NoError(t, ledger.Ban(chatID, userID, modID, "обход правил"))

	status, err := ledger.Status(chatID, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, status.WarnCount)
	assert.Equal(t, config.DefaultMaxWarns, status.MaxWarns)
	assert.True(t, status.IsMuted)
	assert.WithinDuration(t, mute.UnmuteTime, status.MuteExpiry, time.Second)
	assert.True(t, status.IsBanned)
}

// TestConcurrentWarnsKeepInvariant hammers one target from several
// goroutines and checks count and ban state stay consistent.
func TestConcurrentWarnsKeepInvariant(t *testing.T) {
	ledger, s := newTestLedger(t)
	chatID, userID := int64(100), int64(7)

	const issuers = 8
	var wg sync.WaitGroup
	for i := 0; i < issuers; i++ {
		wg.Add(1)
		go func(issuer int64) {
			defer wg.Done()
			_, err := ledger.AddWarning(chatID, userID, issuer, "спам")
			assert.NoError(t, err)
		}(int64(200 + i))
	}
	wg.Wait()

	count, err := s.CountWarns(chatID, userID)
	require.NoError(t, err)
	assert.Equal(t, issuers, count)

	banned, err := s.IsBanned(chatID, userID)
	require.NoError(t, err)
	assert.True(t, banned, "the count passed the limit, so the user must be banned")
}
