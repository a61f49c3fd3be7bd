// Package punishment tracks the lifecycle of warnings, mutes and bans per
// (chat, user) pair, including the automatic escalation of warnings into
// a ban and its symmetric reversal.
package punishment

import (
	"errors"
	"time"

	"anteeq/moderator/internal/config"
	"anteeq/moderator/internal/models"
	"anteeq/moderator/internal/storage"
)

var (
	// ErrSelfTarget rejects privileged actions aimed at the actor itself.
	ErrSelfTarget = errors.New("cannot target yourself")
	// ErrProtectedUser rejects actions aimed at the bot's own account.
	ErrProtectedUser = errors.New("cannot target the bot")
	// ErrNotAuthorized is returned when the actor does not outrank the
	// moderator whose warning they are trying to undo.
	ErrNotAuthorized = errors.New("actor does not outrank the warning's issuer")
)

// Ledger is the punishment state machine. The three axes (warnings,
// mute, ban) are independent: a user can be warned, muted and banned at
// the same time.
type Ledger struct {
	Storage storage.Storage
	// BotUserID is the protected system actor; it can issue warnings
	// but never receive punishments.
	BotUserID int64

	locks targetLocks
}

// NewLedger creates the punishment ledger.
func NewLedger(s storage.Storage, botUserID int64) *Ledger {
	return &Ledger{Storage: s, BotUserID: botUserID}
}

// WarnResult describes the warning state after a warn mutation.
type WarnResult struct {
	// Removed reports, for RemoveLastWarning only, whether a warning
	// was actually removed; false is a no-op outcome, not a failure.
	Removed  bool
	Count    int
	MaxWarns int
	Banned   bool
}

// Status is the read-only composite of a user's punishment state. It
// never mutates anything; a stale mute stays listed until the sweeper
// reverses it.
type Status struct {
	WarnCount  int
	MaxWarns   int
	IsMuted    bool
	MuteExpiry time.Time
	IsBanned   bool
}

// AddWarning appends a warning and recomputes the escalation: reaching
// the chat's warning limit issues a ban with a system-attributed reason.
// This is the only path that creates a ban as a side effect.
func (l *Ledger) AddWarning(chatID, targetID, issuerID int64, reason string) (*WarnResult, error) {
	if targetID == issuerID {
		return nil, ErrSelfTarget
	}
	if targetID == l.BotUserID {
		return nil, ErrProtectedUser
	}
	if reason == "" {
		reason = config.NoReason
	}

	unlock := l.locks.acquire(chatID, targetID)
	defer unlock()

	chat, err := l.Storage.EnsureChat(chatID)
	if err != nil {
		return nil, err
	}

	warn := &models.Warning{
		ChatID:     chatID,
		UserID:     targetID,
		FromUserID: issuerID,
		FromRank:   l.Storage.GetRank(chatID, issuerID),
		Reason:     reason,
	}
	if err := l.Storage.AddWarn(warn); err != nil {
		return nil, err
	}

	count, err := l.Storage.CountWarns(chatID, targetID)
	if err != nil {
		return nil, err
	}
	banned, err := l.Storage.IsBanned(chatID, targetID)
	if err != nil {
		return nil, err
	}
	if recomputeBanState(count, chat.MaxWarns) == BanActionApply && !banned {
		ban := &models.Ban{ChatID: chatID, UserID: targetID, Reason: config.WarnLimitReason}
		if err := l.Storage.UpsertBan(ban); err != nil {
			return nil, err
		}
		banned = true
	}
	return &WarnResult{Count: count, MaxWarns: chat.MaxWarns, Banned: banned}, nil
}

// RemoveLastWarning removes the target's most recently inserted warning.
// Beyond the section check done by the caller, the actor must outrank the
// moderator who issued that warning (at the rank held when it was
// issued); the chat creator is exempt. Dropping below the warning limit
// lifts the ban the limit had produced.
func (l *Ledger) RemoveLastWarning(chatID, targetID, actorID int64) (*WarnResult, error) {
	unlock := l.locks.acquire(chatID, targetID)
	defer unlock()

	chat, err := l.Storage.EnsureChat(chatID)
	if err != nil {
		return nil, err
	}

	warn, err := l.Storage.LastWarn(chatID, targetID)
	if err != nil {
		return nil, err
	}
	if warn == nil {
		banned, err := l.Storage.IsBanned(chatID, targetID)
		if err != nil {
			return nil, err
		}
		return &WarnResult{Removed: false, Count: 0, MaxWarns: chat.MaxWarns, Banned: banned}, nil
	}

	creator := l.Storage.GetCreator(chatID)
	isCreator := creator != nil && *creator == actorID
	if !isCreator && l.Storage.GetRank(chatID, actorID) <= warn.FromRank {
		return nil, ErrNotAuthorized
	}

	if err := l.Storage.DeleteWarn(warn.ID); err != nil {
		return nil, err
	}
	count, err := l.Storage.CountWarns(chatID, targetID)
	if err != nil {
		return nil, err
	}
	banned, err := l.Storage.IsBanned(chatID, targetID)
	if err != nil {
		return nil, err
	}
	if recomputeBanState(count, chat.MaxWarns) == BanActionLift && banned {
		if err := l.Storage.DeleteBan(chatID, targetID); err != nil {
			return nil, err
		}
		banned = false
	}
	return &WarnResult{Removed: true, Count: count, MaxWarns: chat.MaxWarns, Banned: banned}, nil
}

// ClearWarnings removes every warning of the target and, with them, any
// ban: a full reset of the warn axis.
func (l *Ledger) ClearWarnings(chatID, targetID int64) error {
	unlock := l.locks.acquire(chatID, targetID)
	defer unlock()

	if err := l.Storage.DeleteAllWarns(chatID, targetID); err != nil {
		return err
	}
	return l.Storage.DeleteBan(chatID, targetID)
}

// Mute places or replaces the single mute record for the target. The
// warning and ban axes are not touched.
func (l *Ledger) Mute(chatID, targetID, issuerID int64, duration time.Duration, reason string) (*models.Mute, error) {
	if targetID == issuerID {
		return nil, ErrSelfTarget
	}
	if targetID == l.BotUserID {
		return nil, ErrProtectedUser
	}
	if duration <= 0 {
		duration = config.DefaultMuteDuration
	}
	if reason == "" {
		reason = config.NoReason
	}

	now := time.Now()
	mute := &models.Mute{
		ChatID:     chatID,
		UserID:     targetID,
		UnmuteTime: now.Add(duration),
		Reason:     reason,
		CreatedAt:  now,
	}
	if err := l.Storage.UpsertMute(mute); err != nil {
		return nil, err
	}
	return mute, nil
}

// Unmute deletes the mute record. Unmuting a user who is not muted is a
// no-op, not an error.
func (l *Ledger) Unmute(chatID, targetID int64) error {
	return l.Storage.DeleteMute(chatID, targetID)
}

// Ban records an explicit ban, independent of the warning count.
func (l *Ledger) Ban(chatID, targetID, issuerID int64, reason string) error {
	if targetID == issuerID {
		return ErrSelfTarget
	}
	if targetID == l.BotUserID {
		return ErrProtectedUser
	}
	if reason == "" {
		reason = config.NoReason
	}
	return l.Storage.UpsertBan(&models.Ban{ChatID: chatID, UserID: targetID, Reason: reason})
}

// Unban deletes the ban record without touching the warning count.
func (l *Ledger) Unban(chatID, targetID int64) error {
	return l.Storage.DeleteBan(chatID, targetID)
}

// Status reads the composite punishment state of the user.
func (l *Ledger) Status(chatID, userID int64) (*Status, error) {
	count, err := l.Storage.CountWarns(chatID, userID)
	if err != nil {
		return nil, err
	}
	mute, err := l.Storage.GetMute(chatID, userID)
	if err != nil {
		return nil, err
	}
	banned, err := l.Storage.IsBanned(chatID, userID)
	if err != nil {
		return nil, err
	}

	maxWarns := config.DefaultMaxWarns
	if chat, err := l.Storage.GetChat(chatID); err == nil && chat != nil {
		maxWarns = chat.MaxWarns
	}

	status := &Status{WarnCount: count, MaxWarns: maxWarns, IsBanned: banned}
	if mute != nil {
		status.IsMuted = true
		status.MuteExpiry = mute.UnmuteTime
	}
	return status, nil
}
