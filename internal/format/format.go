// Package format holds the IRC text attribute codes and CTCP markers
// the bot puts on the wire.
package format

import "strings"

const (
	bold = "\x02"

	// ActionPrefix starts a CTCP ACTION ("/me") payload.
	ActionPrefix = "\x01ACTION"

	ctcpDelim = "\x01"
)

// Bold wraps s in mIRC bold codes.
func Bold(s string) string {
	return bold + s + bold
}

// Action builds a full CTCP ACTION line for the given action text.
func Action(text string) string {
	return ActionPrefix + " " + text + ctcpDelim
}

// StripAction removes the ACTION sentinel from a buffered line and
// reports whether the line was an action. Buffered action lines carry
// the sentinel without the trailing CTCP delimiter.
func StripAction(line string) (string, bool) {
	if !strings.HasPrefix(line, ActionPrefix) {
		return line, false
	}
	line = strings.TrimPrefix(line, ActionPrefix)
	line = strings.TrimPrefix(line, " ")
	return line, true
}

// ReattachAction puts the sentinel back on a corrected action line, in
// the same trailing-delimiter-free form the history buffer uses.
func ReattachAction(text string) string {
	return ActionPrefix + " " + text
}
