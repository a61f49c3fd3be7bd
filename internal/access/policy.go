// Package access resolves whether a user may perform a privileged action
// in a chat, based on the chat's configurable access table and the
// creator override.
package access

import (
	"errors"
	"log"

	"anteeq/moderator/internal/config"
	"anteeq/moderator/internal/storage"
)

// ErrInvalidRank is returned when a rank outside [0,5] reaches the policy.
var ErrInvalidRank = errors.New("rank must be between 0 and 5")

// Policy answers authorization questions for (chat, user, section) triples.
type Policy struct {
	Storage storage.Storage
}

// NewPolicy creates the access policy resolver.
func NewPolicy(s storage.Storage) *Policy {
	return &Policy{Storage: s}
}

// Authorize reports whether the user may perform actions of the given
// section in the chat. The chat creator is authorized for every section,
// independent of stored rank and of whether the section is listed at all.
// A section missing from the chat's table requires the maximum rank, and
// any failure to read the table resolves to a denial.
func (p *Policy) Authorize(chatID, userID int64, section string) bool {
	if creator := p.Storage.GetCreator(chatID); creator != nil && *creator == userID {
		return true
	}
	return p.Storage.GetRank(chatID, userID) >= p.RequiredRank(chatID, section)
}

// RequiredRank returns the minimum rank the chat demands for the section.
func (p *Policy) RequiredRank(chatID int64, section string) int {
	table, err := p.Storage.GetAccessControl(chatID)
	if err != nil {
		log.Printf("ERROR: Failed to read access table for chat %d: %v", chatID, err)
		return config.MaxRank
	}
	required, ok := table[section]
	if !ok {
		return config.MaxRank
	}
	return required
}

// SetSectionRank updates one entry of the chat's access table. Other
// sections are never touched.
func (p *Policy) SetSectionRank(chatID int64, section string, rank int) error {
	if err := ValidateRank(rank); err != nil {
		return err
	}
	return p.Storage.SetSectionRank(chatID, section, rank)
}

// ValidateRank rejects ranks outside [0,5] at the boundary.
func ValidateRank(rank int) error {
	if rank < config.MinRank || rank > config.MaxRank {
		return ErrInvalidRank
	}
	return nil
}
