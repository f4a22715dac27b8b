// Package correct parses s/old/new/flags directives and applies them to
// a speaker's recorded lines.
package correct

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/dalnet/sedbot/internal/format"
	"github.com/dalnet/sedbot/internal/history"
	"github.com/dalnet/sedbot/internal/identifier"
)

// ErrBadEscape marks a directive whose old or new fragment contains a
// backslash escape other than \\ or the escaped delimiter. Such a
// directive is rejected whole; no substitution is attempted.
var ErrBadEscape = errors.New("unrecognized escape sequence")

// ErrBadPattern marks a directive whose old fragment cannot be
// compiled into a matcher. IRC lines are raw bytes, and the regexp
// engine refuses invalid UTF-8 in a pattern even after quoting.
var ErrBadPattern = errors.New("unusable match pattern")

// Mode selects how the old fragment matches.
type Mode int

const (
	// Literal is an exact substring match.
	Literal Mode = iota
	// InsensitivePattern matches the literal old text with Unicode
	// case folding. Only the folding is regex-powered; metacharacters
	// in the old text are quoted.
	InsensitivePattern
)

// Directive is a parsed correction request. Both grammars produce the
// same structure; the delimiter is decided by the single character that
// follows the literal s, so at most one grammar can match a line.
//
// The shape is: optional "target[:,] ", then s, delimiter, old (one or
// more characters that are not the delimiter, or escaped delimiters and
// backslashes), delimiter, new (same charset, zero or more), then
// optionally the delimiter again and a flags token. Anything after the
// first whitespace past the third delimiter is ignored. Recognized
// flags are g (replace every occurrence within the matched line) and i
// (case-insensitive); unknown flag characters are ignored.
type Directive struct {
	Target string // explicit nick to correct; empty means the author
	Old    string // decoded find text
	New    string // decoded replacement text, before emphasis
	Global bool
	Mode   Mode

	replacement string         // New with emphasis applied
	pattern     *regexp.Regexp // set iff Mode == InsensitivePattern
}

var (
	slashDirective = regexp.MustCompile(`^(?:(\S+)[:,]\s+)?s/((?:\\\\|\\/|[^/])+)/((?:\\\\|\\/|[^/])*)(?:/(\S*))?`)
	pipeDirective  = regexp.MustCompile(`^(?:(\S+)[:,]\s+)?s\|((?:\\\\|\\\||[^|])+)\|((?:\\\\|\\\||[^|])*)(?:\|(\S*))?`)
)

// Parse extracts a directive from a chat line. It returns (nil, nil)
// when the line is not a directive at all, and a wrapped ErrBadEscape
// when the line has the directive shape but an undecodable fragment.
func Parse(line string) (*Directive, error) {
	var groups []string
	var delim byte
	if m := slashDirective.FindStringSubmatch(line); m != nil {
		groups, delim = m, '/'
	} else if m := pipeDirective.FindStringSubmatch(line); m != nil {
		groups, delim = m, '|'
	} else {
		return nil, nil
	}

	old, err := decode(groups[2], delim)
	if err != nil {
		return nil, err
	}
	repl, err := decode(groups[3], delim)
	if err != nil {
		return nil, err
	}

	flags := groups[4]
	d := &Directive{
		Target: groups[1],
		Old:    old,
		New:    repl,
		Global: strings.ContainsRune(flags, 'g'),
	}
	if strings.ContainsRune(flags, 'i') {
		pattern, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(old))
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrBadPattern, old)
		}
		d.Mode = InsensitivePattern
		d.pattern = pattern
	}

	// Emphasize the replacement so readers can see what changed.
	d.replacement = repl
	if repl != "" {
		d.replacement = format.Bold(repl)
	}
	return d, nil
}

// decode turns escaped delimiters and backslashes back into literal
// characters. Any other escape rejects the fragment.
func decode(fragment string, delim byte) (string, error) {
	if !strings.ContainsRune(fragment, '\\') {
		return fragment, nil
	}
	var b strings.Builder
	b.Grow(len(fragment))
	for i := 0; i < len(fragment); i++ {
		c := fragment[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(fragment) {
			return "", fmt.Errorf("%w: trailing backslash", ErrBadEscape)
		}
		switch fragment[i] {
		case '\\', delim:
			b.WriteByte(fragment[i])
		default:
			return "", fmt.Errorf("%w: \\%c", ErrBadEscape, fragment[i])
		}
	}
	return b.String(), nil
}

// substitute applies the directive to one line and returns the result.
// An unchanged result means no match.
func (d *Directive) substitute(line string) string {
	switch d.Mode {
	case InsensitivePattern:
		if d.Global {
			return d.pattern.ReplaceAllLiteralString(line, d.replacement)
		}
		loc := d.pattern.FindStringIndex(line)
		if loc == nil {
			return line
		}
		return line[:loc[0]] + d.replacement + line[loc[1]:]
	default:
		n := 1
		if d.Global {
			n = -1
		}
		return strings.Replace(line, d.Old, d.replacement, n)
	}
}

// Apply parses a correction directive from line and resolves it
// against the store.
//
// ok is false when there is nothing to say: the line is not a
// directive, the target has no history, or no buffered line changes.
// err is non-nil only for a malformed directive, which mutates nothing.
func Apply(store *history.Store, scope, author, line string) (reply string, ok bool, err error) {
	d, err := Parse(line)
	if err != nil {
		return "", false, err
	}
	if d == nil {
		return "", false, nil
	}
	reply, ok = Resolve(store, scope, author, d)
	return reply, ok, nil
}

// Resolve applies a parsed directive: it scans the target speaker's
// lines in scope newest-first, rewrites the first line the substitution
// changes, pushes the rewritten line back as the speaker's newest
// utterance, and returns the reply to send. ok is false when no
// buffered line changes; nothing is mutated in that case.
func Resolve(store *history.Store, scope, author string, d *Directive) (reply string, ok bool) {
	target := d.Target
	if target == "" {
		target = author
	}

	var corrected string
	var wasAction bool
	pushed := store.Amend(scope, target, func(lines []string) (string, bool) {
		for _, buffered := range lines {
			text, action := format.StripAction(buffered)
			replaced := d.substitute(text)
			if replaced == text {
				continue
			}
			// First line that changes wins; stop scanning.
			corrected = replaced
			wasAction = action
			if action {
				return format.ReattachAction(replaced), true
			}
			return replaced, true
		}
		return "", false
	})
	if !pushed {
		return "", false
	}

	phrase := corrected
	if !wasAction {
		phrase = "meant to say: " + corrected
	}

	// Correcting somebody else reads as an opinion, not a statement.
	mode := store.Casemapping()
	if d.Target != "" && !identifier.New(d.Target, mode).EqualString(author) {
		return fmt.Sprintf("%s thinks %s %s", author, target, phrase), true
	}
	return fmt.Sprintf("%s %s", author, phrase), true
}
