package identifier

import "testing"

func TestFold(t *testing.T) {
	cases := []struct {
		mode Casemapping
		in   string
		want string
	}{
		{ASCII, "NickName", "nickname"},
		{ASCII, "nick[a]\\b~c", "nick[a]\\b~c"},
		{RFC1459, "Nick[a]\\b~c", "nick{a}|b^c"},
		{RFC1459, "#ChanNel", "#channel"},
		{StrictRFC1459, "Nick[a]\\b~c", "nick{a}|b~c"},
		{RFC1459, "", ""},
		{RFC1459, "déjà", "déjà"},
	}

	for _, tc := range cases {
		got := tc.mode.Fold(tc.in)
		if got != tc.want {
			t.Errorf("%s.Fold(%q) = %q, want %q", tc.mode, tc.in, got, tc.want)
		}
	}
}

func TestFoldIdempotent(t *testing.T) {
	inputs := []string{"NickName", "Nick[a]\\b~c", "#ChanNel", "{already}|low^"}
	for _, mode := range []Casemapping{ASCII, RFC1459, StrictRFC1459} {
		for _, in := range inputs {
			once := mode.Fold(in)
			twice := mode.Fold(once)
			if once != twice {
				t.Errorf("%s.Fold not idempotent for %q: %q != %q", mode, in, once, twice)
			}
		}
	}
}

func TestEqual(t *testing.T) {
	a := New("Test[a]", RFC1459)
	b := New("test{A}", RFC1459)
	if !a.Equal(b) {
		t.Errorf("%q should equal %q under rfc1459", a, b)
	}
	if !a.EqualString("TEST{a}") {
		t.Errorf("%q should equal string TEST{a} under rfc1459", a)
	}

	// Equal to its own folded form.
	if !a.EqualString(a.Folded()) {
		t.Errorf("%q should equal its folded form %q", a, a.Folded())
	}

	if !New("Test^a", RFC1459).EqualString("test~a") {
		t.Error("rfc1459 should fold ~ to ^")
	}
	if New("Test^a", StrictRFC1459).EqualString("test~a") {
		t.Error("strict-rfc1459 must not fold ~ to ^")
	}

	ascii := New("Test[a]", ASCII)
	if ascii.EqualString("test{a}") {
		t.Error("ascii must not fold brackets")
	}
}

func TestDisplayCasingPreserved(t *testing.T) {
	id := New("SomeCamelCase", RFC1459)
	if id.String() != "SomeCamelCase" {
		t.Errorf("String() = %q, want original casing", id.String())
	}
}

func TestIsChannel(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"#channel", true},
		{"&local", true},
		{"nick", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := New(tc.name, RFC1459).IsChannel(); got != tc.want {
			t.Errorf("IsChannel(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestParse(t *testing.T) {
	cases := []struct {
		token string
		want  Casemapping
		ok    bool
	}{
		{"ascii", ASCII, true},
		{"rfc1459", RFC1459, true},
		{"RFC1459", RFC1459, true},
		{"strict-rfc1459", StrictRFC1459, true},
		{"rfc1459-strict", StrictRFC1459, true},
		{"utf8", RFC1459, false},
	}
	for _, tc := range cases {
		got, ok := Parse(tc.token)
		if got != tc.want || ok != tc.ok {
			t.Errorf("Parse(%q) = (%v, %v), want (%v, %v)", tc.token, got, ok, tc.want, tc.ok)
		}
	}
}
