package host

import (
	"errors"
	"testing"
)

func TestState_Messages(t *testing.T) {
	s := NewState(nil, map[string]ChatChannel{
		"CH1":     {SID: "CH1", Messages: []Message{{Source: MessageSource{AuthorName: "Alice", Body: "hi", Timestamp: "t1"}}}},
		"CHEMPTY": {SID: "CHEMPTY", Messages: []Message{}},
		"CHNIL":   {SID: "CHNIL"},
	})

	tests := []struct {
		name     string
		sid      string
		wantLen  int
		notFound bool
	}{
		{"present", "CH1", 1, false},
		{"empty sequence", "CHEMPTY", 0, false},
		{"absent sequence", "CHNIL", 0, true},
		{"unknown channel", "CHX", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs, err := s.Messages(tt.sid)
			if tt.notFound {
				if !errors.Is(err, ErrNotFound) {
					t.Errorf("Expected ErrNotFound, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Messages failed: %v", err)
			}
			if len(msgs) != tt.wantLen {
				t.Errorf("Expected %d messages, got %d", tt.wantLen, len(msgs))
			}
		})
	}
}

func TestState_IsSnapshot(t *testing.T) {
	tasks := []Task{{SID: "WT1", Status: StatusPending}}
	channels := map[string]ChatChannel{"CH1": {SID: "CH1", Messages: []Message{}}}
	s := NewState(tasks, channels)

	tasks[0].Status = StatusCompleted
	channels["CH1"] = ChatChannel{SID: "CH1"}

	if got := s.Tasks()[0].Status; got != StatusPending {
		t.Errorf("Snapshot task mutated to %q", got)
	}
	if _, err := s.Messages("CH1"); err != nil {
		t.Errorf("Snapshot channel mutated: %v", err)
	}

	out := s.Tasks()
	out[0].SID = "changed"
	if s.Tasks()[0].SID != "WT1" {
		t.Error("Tasks() should return a copy")
	}
}

func TestState_Task(t *testing.T) {
	s := NewState([]Task{{SID: "WT1"}}, nil)
	if _, err := s.Task("WT1"); err != nil {
		t.Errorf("Task(WT1) failed: %v", err)
	}
	if _, err := s.Task("WT2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
