package format

import "testing"

func TestEscapeMarkdownV2(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"plain text", "plain text"},
		{"a_b", `a\_b`},
		{"*bold* [link](url)", `\*bold\* \[link\]\(url\)`},
		{"1+1=2!", `1\+1\=2\!`},
		{"`code` ~strike~ > # | { } . -", "\\`code\\` \\~strike\\~ \\> \\# \\| \\{ \\} \\. \\-"},
		{"кириллица и emoji 🚀", "кириллица и emoji 🚀"},
	}
	for _, c := range cases {
		if got := EscapeMarkdownV2(c.in); got != c.want {
			t.Errorf("EscapeMarkdownV2(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestEscapeUnescapeRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"no specials at all",
		"_*[]()~`>#+-=|{}.!",
		"mixed _content_ with (parens) and trailing!",
		`already \_escaped\_ input`,
		"multi\nline\ttext with . dots",
	}
	for _, in := range inputs {
		if got := UnescapeMarkdownV2(EscapeMarkdownV2(in)); got != in {
			t.Errorf("round trip of %q produced %q", in, got)
		}
	}
}

func TestEscapeIsNotIdempotent(t *testing.T) {
	once := EscapeMarkdownV2("a.b")
	twice := EscapeMarkdownV2(once)
	if once == twice {
		t.Fatal("double escape should double the markers")
	}
	if UnescapeMarkdownV2(twice) != once {
		t.Fatal("unescape should strip exactly one layer")
	}
}
