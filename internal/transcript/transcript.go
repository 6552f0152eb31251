// Package transcript serializes chat conversations into the plain-text
// form stored on CRM records.
package transcript

import (
	"fmt"
	"strings"

	"github.com/pdxmph/softphone-sync/internal/host"
)

// lineEnd terminates every transcript line
const lineEnd = "\r\n"

// MessageSource is the part of a state snapshot the extractor reads
type MessageSource interface {
	Messages(channelSID string) ([]host.Message, error)
}

// Extract serializes the messages of a chat channel. It returns an error
// wrapping host.ErrNotFound when the channel or its messages are missing.
func Extract(state MessageSource, channelSID string) (string, error) {
	msgs, err := state.Messages(channelSID)
	if err != nil {
		return "", fmt.Errorf("extracting transcript: %w", err)
	}
	return Format(msgs), nil
}

// Format writes timestamp, author and body lines for each message in
// stored order.
func Format(msgs []host.Message) string {
	var b strings.Builder
	for _, m := range msgs {
		b.WriteString(m.Timestamp())
		b.WriteString(lineEnd)
		b.WriteString(m.AuthorName())
		b.WriteString(lineEnd)
		b.WriteString(m.Body())
		b.WriteString(lineEnd)
	}
	return b.String()
}
