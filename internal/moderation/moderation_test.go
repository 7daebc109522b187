package moderation

import (
	"strings"
	"testing"
)

func TestContainsURL(t *testing.T) {
	positives := []string{
		"check https://example.com/page",
		"HTTP://CAPS.NET",
		"go to www.somewhere.org now",
		"just example.com works too",
		"nested path foo.io/bar",
	}
	for _, text := range positives {
		if !ContainsURL(text) {
			t.Fatalf("ContainsURL(%q) = false, want true", text)
		}
	}

	negatives := []string{
		"hello there",
		"i.e. this is fine",
		"version 1.2.3 released",
		"meet at 7.30",
	}
	for _, text := range negatives {
		if ContainsURL(text) {
			t.Fatalf("ContainsURL(%q) = true, want false", text)
		}
	}
}

func TestCensorReplacesWithEqualLength(t *testing.T) {
	in := "what the fuck is this shit"
	out := Censor(in)
	if len(out) != len(in) {
		t.Fatalf("censoring changed length: %d -> %d", len(in), len(out))
	}
	if strings.Contains(out, "fuck") || strings.Contains(out, "shit") {
		t.Fatalf("profanity survived: %q", out)
	}
	if !strings.Contains(out, "****") {
		t.Fatalf("no asterisks in %q", out)
	}
}

func TestCensorIsIdempotent(t *testing.T) {
	once := Censor("damn this crap")
	twice := Censor(once)
	if once != twice {
		t.Fatalf("not idempotent: %q != %q", once, twice)
	}
}

func TestCensorLeavesCleanTextAlone(t *testing.T) {
	cases := []string{
		"hello world",
		"classic assignment", // no word-boundary hit inside larger words
		"sunshine and grass",
	}
	for _, in := range cases {
		if got := Censor(in); got != in {
			t.Fatalf("Censor(%q) = %q", in, got)
		}
	}
}
