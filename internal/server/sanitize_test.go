package server

import "testing"

func TestSanitizeMessage(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"collapses whitespace and blank lines", " hi  there \n\n\n\n bye ", "hi there\n\nbye"},
		{"normalizes crlf", "a\r\nb\rc", "a\nb\nc"},
		{"strips control characters", "a\x00b\x07c\x7fd", "abcd"},
		{"keeps single paragraph break", "one\n\ntwo", "one\n\ntwo"},
		{"trims to empty", " \t \n ", ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := sanitizeMessage(c.in, 300); got != c.want {
				t.Fatalf("sanitizeMessage(%q) = %q, want %q", c.in, got, c.want)
			}
		})
	}
}

func TestSanitizeMessageCapsLength(t *testing.T) {
	long := ""
	for i := 0; i < 400; i++ {
		long += "x"
	}
	if got := sanitizeMessage(long, 300); len([]rune(got)) != 300 {
		t.Fatalf("len = %d, want 300", len([]rune(got)))
	}
}

func TestSanitizeText(t *testing.T) {
	cases := []struct{ in, want string }{
		{"  Ann  ", "Ann"},
		{"multi\nline\nname", "multilinename"},
		{"inner  spaces   collapse", "inner spaces collapse"},
		{"ctrl\x01chars\x1f", "ctrlchars"},
	}
	for _, c := range cases {
		if got := sanitizeText(c.in, 100); got != c.want {
			t.Fatalf("sanitizeText(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSanitizeTextCapsRunes(t *testing.T) {
	if got := sanitizeText("ABCDEFGHIJKLMNOPQRSTUVWXYZ", 16); got != "ABCDEFGHIJKLMNOP" {
		t.Fatalf("got %q", got)
	}
}
