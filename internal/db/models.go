package db

import (
	"strings"
	"time"
)

// CallLog is a CRM record holding an interaction log, typically a chat
// transcript
type CallLog struct {
	ID          string
	Description string
	SaveCount   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// transcriptLineEnd separates transcript lines in a description
const transcriptLineEnd = "\r\n"

// MessageCount returns how many timestamp/author/body blocks the
// description holds
func (l CallLog) MessageCount() int {
	if l.Description == "" {
		return 0
	}
	lines := strings.Split(strings.TrimSuffix(l.Description, transcriptLineEnd), transcriptLineEnd)
	return len(lines) / 3
}

// Preview returns the first message as "author: body", cut to width runes
func (l CallLog) Preview(width int) string {
	lines := strings.SplitN(l.Description, transcriptLineEnd, 4)
	if len(lines) < 3 {
		return ""
	}
	first := lines[1] + ": " + lines[2]
	runes := []rune(first)
	if width > 1 && len(runes) > width {
		return string(runes[:width-1]) + "…"
	}
	return first
}
