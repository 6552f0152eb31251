// Package host models the contact-center runtime the desktop extension
// plugs into: worker tasks, chat channels, the action dispatcher and the
// UI configuration document.
package host

import "errors"

// ErrNotFound is returned by State accessors when a requested entity is absent.
var ErrNotFound = errors.New("not found")

// Task statuses known to the runtime. Only StatusCompleted carries meaning
// for lifecycle handlers; the rest are opaque.
const (
	StatusPending   = "pending"
	StatusAccepted  = "accepted"
	StatusWrapping  = "wrapping"
	StatusCompleted = "completed"
)

// Task channel unique names
const (
	ChannelChat  = "chat"
	ChannelVoice = "voice"
)

// Task represents one customer interaction handled by the worker
type Task struct {
	SID                   string
	Status                string
	Attributes            TaskAttributes
	TaskChannelUniqueName string
}

// TaskAttributes holds the task attributes the extension reads
type TaskAttributes struct {
	// ChannelSID identifies the chat channel of a chat task.
	ChannelSID string
}

// IsChat reports whether the task belongs to the chat channel
func (t Task) IsChat() bool {
	return t.TaskChannelUniqueName == ChannelChat
}

// MessageSource is the raw message as stored by the chat client
type MessageSource struct {
	AuthorName string
	Body       string
	Timestamp  string
}

// Message is one chat message
type Message struct {
	Source MessageSource
}

// AuthorName returns the message author
func (m Message) AuthorName() string { return m.Source.AuthorName }

// Body returns the message text
func (m Message) Body() string { return m.Source.Body }

// Timestamp returns the message timestamp as stored
func (m Message) Timestamp() string { return m.Source.Timestamp }

// ChatChannel is a chat conversation. A nil Messages slice means the
// message sequence has not been loaded.
type ChatChannel struct {
	SID      string
	Messages []Message
}
