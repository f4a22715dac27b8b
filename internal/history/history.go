// Package history tracks the recent lines each speaker said in each
// scope, so corrections have something to look back through. All state
// lives in process memory and dies with the process.
package history

import (
	"strings"
	"sync"

	"github.com/dalnet/sedbot/internal/format"
	"github.com/dalnet/sedbot/internal/identifier"
	"github.com/dalnet/sedbot/internal/memory"
)

// DefaultDepth is how many lines are kept per speaker per scope.
const DefaultDepth = 10

// Ring is a fixed-capacity most-recent-first line buffer. Pushing onto
// a full ring silently evicts the oldest line.
type Ring struct {
	lines []string
	head  int // index of the newest line
	size  int
}

// NewRing returns a ring holding at most capacity lines.
func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = DefaultDepth
	}
	return &Ring{lines: make([]string, capacity)}
}

// PushFront makes line the newest entry.
func (r *Ring) PushFront(line string) {
	r.head = (r.head - 1 + len(r.lines)) % len(r.lines)
	r.lines[r.head] = line
	if r.size < len(r.lines) {
		r.size++
	}
}

// Len returns the number of buffered lines.
func (r *Ring) Len() int {
	return r.size
}

// At returns the i-th line, newest first.
func (r *Ring) At(i int) string {
	return r.lines[(r.head+i)%len(r.lines)]
}

// Lines returns a newest-first snapshot copy.
func (r *Ring) Lines() []string {
	out := make([]string, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.At(i)
	}
	return out
}

// Store maps scope -> speaker -> that speaker's recent lines. One lock
// serializes recording, amending and cleanup: recording a line and
// later correcting it are causally dependent and must not interleave.
type Store struct {
	mu     sync.Mutex
	mode   identifier.Casemapping
	depth  int
	scopes *memory.Memory[*memory.Memory[*Ring]]
}

// NewStore returns an empty store folding scope and speaker keys under
// mode, keeping depth lines per speaker.
func NewStore(mode identifier.Casemapping, depth int) *Store {
	if depth < 1 {
		depth = DefaultDepth
	}
	return &Store{
		mode:   mode,
		depth:  depth,
		scopes: memory.New[*memory.Memory[*Ring]](mode),
	}
}

// Casemapping returns the mode the store folds keys under.
func (s *Store) Casemapping() identifier.Casemapping {
	return s.mode
}

// IsDirective reports whether line is a correction directive, which is
// never remembered (it would otherwise be correctable itself).
func IsDirective(line string) bool {
	return strings.HasPrefix(line, "s/") || strings.HasPrefix(line, "s|")
}

// Record remembers line as speaker's newest utterance in scope, lazily
// creating both levels. Directives are dropped. Action lines keep the
// ACTION sentinel but lose the trailing CTCP delimiter. Returns whether
// the line was actually recorded.
func (s *Store) Record(scope, speaker, line string) bool {
	if IsDirective(line) {
		return false
	}
	if strings.HasPrefix(line, format.ActionPrefix) {
		line = strings.TrimSuffix(line, "\x01")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.ring(scope, speaker).PushFront(line)
	return true
}

// Lines returns a newest-first snapshot of speaker's lines in scope, or
// nil if nothing is recorded.
func (s *Store) Lines(scope, speaker string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	speakers, ok := s.scopes.Get(scope)
	if !ok {
		return nil
	}
	ring, ok := speakers.Get(speaker)
	if !ok {
		return nil
	}
	return ring.Lines()
}

// Amend runs fn over a newest-first snapshot of speaker's lines and, if
// fn returns a replacement, pushes it as the speaker's newest utterance.
// Scan and push happen under one lock acquisition so no recording can
// slip in between. Returns whether a replacement was pushed.
func (s *Store) Amend(scope, speaker string, fn func(lines []string) (string, bool)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	speakers, ok := s.scopes.Get(scope)
	if !ok {
		return false
	}
	ring, ok := speakers.Get(speaker)
	if !ok || ring.Len() == 0 {
		return false
	}

	line, ok := fn(ring.Lines())
	if !ok {
		return false
	}
	ring.PushFront(line)
	return true
}

// ForgetScope drops everything recorded in scope. No-op if absent.
func (s *Store) ForgetScope(scope string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.scopes.PopOr(scope, nil)
}

// ForgetSpeaker drops speaker's lines in the given scope, or in every
// scope when scope is empty. No-op if absent.
func (s *Store) ForgetSpeaker(speaker, scope string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if scope != "" {
		if speakers, ok := s.scopes.Get(scope); ok {
			speakers.PopOr(speaker, nil)
		}
		return
	}
	s.scopes.ForEach(func(_ string, speakers *memory.Memory[*Ring]) {
		speakers.PopOr(speaker, nil)
	})
}

// ring returns speaker's buffer in scope, creating both levels on first
// use. Callers hold s.mu.
func (s *Store) ring(scope, speaker string) *Ring {
	speakers, ok := s.scopes.Get(scope)
	if !ok {
		speakers = memory.New[*Ring](s.mode)
		s.scopes.Set(scope, speakers)
	}
	ring, ok := speakers.Get(speaker)
	if !ok {
		ring = NewRing(s.depth)
		speakers.Set(speaker, ring)
	}
	return ring
}
