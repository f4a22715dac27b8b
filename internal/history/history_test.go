package history

import (
	"fmt"
	"testing"

	"github.com/dalnet/sedbot/internal/identifier"
)

func TestRingBound(t *testing.T) {
	r := NewRing(10)
	for i := 1; i <= 15; i++ {
		r.PushFront(fmt.Sprintf("line %d", i))
	}

	if r.Len() != 10 {
		t.Fatalf("Len() = %d, want 10", r.Len())
	}
	// Newest first: line 15 down to line 6.
	for i := 0; i < 10; i++ {
		want := fmt.Sprintf("line %d", 15-i)
		if got := r.At(i); got != want {
			t.Errorf("At(%d) = %q, want %q", i, got, want)
		}
	}
}

func TestRingLinesSnapshot(t *testing.T) {
	r := NewRing(3)
	r.PushFront("a")
	r.PushFront("b")

	lines := r.Lines()
	if len(lines) != 2 || lines[0] != "b" || lines[1] != "a" {
		t.Fatalf("Lines() = %v, want [b a]", lines)
	}

	// The snapshot must not alias the ring.
	lines[0] = "mutated"
	if r.At(0) != "b" {
		t.Error("mutating the snapshot changed the ring")
	}
}

func TestRecordNewestFirst(t *testing.T) {
	s := NewStore(identifier.RFC1459, 10)
	s.Record("#chan", "Alice", "first")
	s.Record("#chan", "Alice", "second")

	lines := s.Lines("#chan", "Alice")
	if len(lines) != 2 || lines[0] != "second" || lines[1] != "first" {
		t.Errorf("Lines = %v, want [second first]", lines)
	}
}

func TestRecordDropsDirectives(t *testing.T) {
	s := NewStore(identifier.RFC1459, 10)
	if s.Record("#chan", "Alice", "s/cats/dogs/") {
		t.Error("slash directive must not be recorded")
	}
	if s.Record("#chan", "Alice", "s|cats|dogs|") {
		t.Error("pipe directive must not be recorded")
	}
	if lines := s.Lines("#chan", "Alice"); lines != nil {
		t.Errorf("Lines = %v, want nil", lines)
	}
}

func TestRecordActionKeepsSentinel(t *testing.T) {
	s := NewStore(identifier.RFC1459, 10)
	s.Record("#chan", "Alice", "\x01ACTION waves\x01")

	lines := s.Lines("#chan", "Alice")
	if len(lines) != 1 || lines[0] != "\x01ACTION waves" {
		t.Errorf("Lines = %q, want the sentinel kept and the trailing delimiter dropped", lines)
	}
}

func TestKeysFoldCaseInsensitively(t *testing.T) {
	s := NewStore(identifier.RFC1459, 10)
	s.Record("#Chan", "Alice", "hello")

	if lines := s.Lines("#CHAN", "alice"); len(lines) != 1 || lines[0] != "hello" {
		t.Errorf("Lines under folded keys = %v, want [hello]", lines)
	}
}

func TestForgetSpeakerInScope(t *testing.T) {
	s := NewStore(identifier.RFC1459, 10)
	s.Record("#one", "Alice", "a1")
	s.Record("#one", "Bob", "b1")
	s.Record("#two", "Alice", "a2")

	// A PART removes only that speaker's lines in that scope.
	s.ForgetSpeaker("alice", "#ONE")

	if lines := s.Lines("#one", "Alice"); lines != nil {
		t.Errorf("Alice in #one = %v, want nil", lines)
	}
	if lines := s.Lines("#one", "Bob"); len(lines) != 1 {
		t.Errorf("Bob in #one = %v, want his line intact", lines)
	}
	if lines := s.Lines("#two", "Alice"); len(lines) != 1 {
		t.Errorf("Alice in #two = %v, want her line intact", lines)
	}
}

func TestForgetSpeakerEverywhere(t *testing.T) {
	s := NewStore(identifier.RFC1459, 10)
	s.Record("#one", "Alice", "a1")
	s.Record("#two", "Alice", "a2")
	s.Record("#two", "Bob", "b2")

	// A QUIT removes the speaker from every scope.
	s.ForgetSpeaker("Alice", "")

	if s.Lines("#one", "Alice") != nil || s.Lines("#two", "Alice") != nil {
		t.Error("Alice should be forgotten everywhere")
	}
	if lines := s.Lines("#two", "Bob"); len(lines) != 1 {
		t.Errorf("Bob in #two = %v, want his line intact", lines)
	}
}

func TestForgetScope(t *testing.T) {
	s := NewStore(identifier.RFC1459, 10)
	s.Record("#one", "Alice", "a1")
	s.Record("#two", "Alice", "a2")

	s.ForgetScope("#one")

	if s.Lines("#one", "Alice") != nil {
		t.Error("#one should be forgotten")
	}
	if lines := s.Lines("#two", "Alice"); len(lines) != 1 {
		t.Errorf("Alice in #two = %v, want her line intact", lines)
	}
}

func TestForgetIsIdempotent(t *testing.T) {
	s := NewStore(identifier.RFC1459, 10)
	// Nothing recorded; none of these may panic or error.
	s.ForgetScope("#nowhere")
	s.ForgetSpeaker("nobody", "#nowhere")
	s.ForgetSpeaker("nobody", "")
}

func TestAmend(t *testing.T) {
	s := NewStore(identifier.RFC1459, 10)
	s.Record("#chan", "Alice", "I like cats")

	pushed := s.Amend("#chan", "alice", func(lines []string) (string, bool) {
		if len(lines) != 1 || lines[0] != "I like cats" {
			t.Errorf("Amend saw %v", lines)
		}
		return "I like dogs", true
	})
	if !pushed {
		t.Fatal("Amend should report a push")
	}

	lines := s.Lines("#chan", "Alice")
	if len(lines) != 2 || lines[0] != "I like dogs" {
		t.Errorf("Lines after Amend = %v, want the corrected line newest", lines)
	}
}

func TestAmendNoHistory(t *testing.T) {
	s := NewStore(identifier.RFC1459, 10)
	called := false
	pushed := s.Amend("#chan", "Ghost", func([]string) (string, bool) {
		called = true
		return "", true
	})
	if pushed || called {
		t.Error("Amend on an unknown speaker must be a silent no-op")
	}
}

func TestAmendDecline(t *testing.T) {
	s := NewStore(identifier.RFC1459, 10)
	s.Record("#chan", "Alice", "hello")

	if s.Amend("#chan", "Alice", func([]string) (string, bool) { return "", false }) {
		t.Error("Amend must not push when fn declines")
	}
	if lines := s.Lines("#chan", "Alice"); len(lines) != 1 {
		t.Errorf("history mutated by declined Amend: %v", lines)
	}
}
