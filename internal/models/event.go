package models

import "time"

// UnmuteEvent is published when the sweeper reverses an expired mute.
// External consumers (the chat transport among them) announce the unmute.
type UnmuteEvent struct {
	// ID lets consumers deduplicate: delivery is at-least-once.
	ID         string    `json:"id"`
	ChatID     int64     `json:"chat_id"`
	UserID     int64     `json:"user_id"`
	UnmuteTime time.Time `json:"unmute_time"`
	Reason     string    `json:"reason"`
}
