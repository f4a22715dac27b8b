package identifier

import "strings"

// Casemapping selects which characters fold to which when comparing
// nicks and channel names. Because of IRC's scandinavian origin, the
// characters {}|^ are the lowercase equivalents of []\~ on most networks.
type Casemapping int

const (
	// ASCII folds A-Z only.
	ASCII Casemapping = iota
	// RFC1459 folds A-Z plus []\~ to {}|^.
	RFC1459
	// StrictRFC1459 folds A-Z plus []\ to {}| (leaves ~ alone).
	StrictRFC1459
)

// Parse maps an ISUPPORT CASEMAPPING token (or config value) to a mode.
// Both the "strict-rfc1459" and "rfc1459-strict" spellings are accepted.
func Parse(name string) (Casemapping, bool) {
	switch strings.ToLower(name) {
	case "ascii":
		return ASCII, true
	case "rfc1459":
		return RFC1459, true
	case "strict-rfc1459", "rfc1459-strict":
		return StrictRFC1459, true
	}
	return RFC1459, false
}

func (cm Casemapping) String() string {
	switch cm {
	case ASCII:
		return "ascii"
	case StrictRFC1459:
		return "strict-rfc1459"
	default:
		return "rfc1459"
	}
}

// Fold lowercases s per the casemapping table. The mapped characters are
// all single bytes, so multi-byte runes pass through untouched.
func (cm Casemapping) Fold(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'A' <= c && c <= 'Z':
			c += 'a' - 'A'
		case cm != ASCII && c == '[':
			c = '{'
		case cm != ASCII && c == ']':
			c = '}'
		case cm != ASCII && c == '\\':
			c = '|'
		case cm == RFC1459 && c == '~':
			c = '^'
		}
		b.WriteByte(c)
	}
	return b.String()
}

// Identifier is a nick or channel name that compares case-insensitively
// under a fixed casemapping mode. The zero value is an empty ASCII
// identifier. Identifiers are immutable once constructed.
type Identifier struct {
	value string
	mode  Casemapping
}

// New wraps value with the given casemapping. Any string is valid,
// including the empty string.
func New(value string, mode Casemapping) Identifier {
	return Identifier{value: value, mode: mode}
}

// String returns the original casing, for display.
func (id Identifier) String() string {
	return id.value
}

// Folded returns the comparison form. Two identifiers are equal iff
// their folded forms are equal under the same mode, so Folded is also
// the correct map key for identifier-keyed storage.
func (id Identifier) Folded() string {
	return id.mode.Fold(id.value)
}

// Casemapping returns the mode the identifier folds under.
func (id Identifier) Casemapping() Casemapping {
	return id.mode
}

// Equal reports whether other names the same thing. Both sides fold
// under id's own mode.
func (id Identifier) Equal(other Identifier) bool {
	return id.Folded() == id.mode.Fold(other.value)
}

// EqualString reports whether the plain string names the same thing.
// The string folds under id's mode; no mode is inferred from it.
func (id Identifier) EqualString(s string) bool {
	return id.Folded() == id.mode.Fold(s)
}

// IsChannel reports whether the identifier carries a channel sigil.
// This only affects display and dispatch, never equality.
func (id Identifier) IsChannel() bool {
	return strings.IndexAny(id.value, "#&") == 0
}
