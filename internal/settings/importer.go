// Package settings manages chat codes and the import of one chat's
// configuration into another.
package settings

import (
	"errors"
	"math/rand"

	"anteeq/moderator/internal/config"
	"anteeq/moderator/internal/storage"
)

// ErrCodeNotFound is returned when no chat carries the given code.
var ErrCodeNotFound = errors.New("no chat with this code")

// Importer hands out chat codes and copies settings between chats.
type Importer struct {
	Storage storage.Storage
}

// NewImporter creates the settings importer.
func NewImporter(s storage.Storage) *Importer {
	return &Importer{Storage: s}
}

// ChatCode returns the chat's code, generating and storing one on first
// use. The code is opaque and unique across chats.
func (i *Importer) ChatCode(chatID int64) (string, error) {
	chat, err := i.Storage.EnsureChat(chatID)
	if err != nil {
		return "", err
	}
	if chat.ChatCode != nil && *chat.ChatCode != "" {
		return *chat.ChatCode, nil
	}

	// The unique index rejects a collision; with a 36^5 space a couple
	// of retries is plenty.
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		code := GenerateChatCode()
		if lastErr = i.Storage.SetChatCode(chatID, code); lastErr == nil {
			return code, nil
		}
	}
	return "", lastErr
}

// ImportByCode resolves the source chat by its code and copies its
// settings onto the target.
func (i *Importer) ImportByCode(targetChatID int64, code string) error {
	source, err := i.Storage.FindChatByCode(code)
	if err != nil {
		return err
	}
	if source == nil {
		return ErrCodeNotFound
	}
	return i.Import(targetChatID, source.ChatID)
}

// Import copies the access table, welcome message and rules from the
// source chat onto the target as one atomic replace.
func (i *Importer) Import(targetChatID, sourceChatID int64) error {
	return i.Storage.ImportChatSettings(targetChatID, sourceChatID)
}

// GenerateChatCode produces a random code of uppercase letters and digits.
func GenerateChatCode() string {
	code := make([]byte, config.ChatCodeLength)
	for i := range code {
		code[i] = config.ChatCodeAlphabet[rand.Intn(len(config.ChatCodeAlphabet))]
	}
	return string(code)
}
