package host

import "fmt"

// State is a read-only snapshot of the runtime
type State struct {
	tasks    []Task
	channels map[string]ChatChannel
}

// NewState builds a snapshot, copying tasks and channels.
func NewState(tasks []Task, channels map[string]ChatChannel) State {
	s := State{
		tasks:    make([]Task, len(tasks)),
		channels: make(map[string]ChatChannel, len(channels)),
	}
	copy(s.tasks, tasks)
	for sid, ch := range channels {
		s.channels[sid] = copyChannel(ch)
	}
	return s
}

func copyChannel(ch ChatChannel) ChatChannel {
	if ch.Messages == nil {
		return ChatChannel{SID: ch.SID}
	}
	msgs := make([]Message, len(ch.Messages))
	copy(msgs, ch.Messages)
	return ChatChannel{SID: ch.SID, Messages: msgs}
}

// Tasks returns the worker tasks in order
func (s State) Tasks() []Task {
	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Task looks up a task by SID
func (s State) Task(sid string) (Task, error) {
	for _, t := range s.tasks {
		if t.SID == sid {
			return t, nil
		}
	}
	return Task{}, fmt.Errorf("task %s: %w", sid, ErrNotFound)
}

// ChatChannel looks up a chat channel by SID
func (s State) ChatChannel(sid string) (ChatChannel, error) {
	ch, ok := s.channels[sid]
	if !ok {
		return ChatChannel{}, fmt.Errorf("chat channel %s: %w", sid, ErrNotFound)
	}
	return copyChannel(ch), nil
}

// Messages returns the stored messages of a chat channel. It fails when the
// channel is unknown or its message sequence is absent.
func (s State) Messages(channelSID string) ([]Message, error) {
	ch, err := s.ChatChannel(channelSID)
	if err != nil {
		return nil, err
	}
	if ch.Messages == nil {
		return nil, fmt.Errorf("messages of chat channel %s: %w", channelSID, ErrNotFound)
	}
	return ch.Messages, nil
}
