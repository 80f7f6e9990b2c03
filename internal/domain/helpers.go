package domain

import (
	"strings"
	"unicode/utf8"
)

const (
	// MaxRoomIDLength bounds normalized room codes.
	MaxRoomIDLength = 8
	// MaxNameLength bounds participant display names.
	MaxNameLength = 20
	// DefaultName is used when a participant joins without a name.
	DefaultName = "Player"
)

// NormalizeRoomID trims, upper-cases and truncates a room code. An empty result means "generate one".
func NormalizeRoomID(raw string) string {
	id := strings.ToUpper(strings.TrimSpace(raw))
	return truncateRunes(id, MaxRoomIDLength)
}

// NormalizeName trims and truncates a display name, falling back to DefaultName.
func NormalizeName(raw string) string {
	name := truncateRunes(strings.TrimSpace(raw), MaxNameLength)
	if name == "" {
		return DefaultName
	}
	return name
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
