// Package moderation provides the pure text checks the router applies to
// every inbound chat message: profanity censoring and URL detection.
package moderation

import (
	"regexp"
	"strings"
)

var urlPattern = regexp.MustCompile(`(?i)(https?://\S+|www\.\S+|\b[a-z0-9][a-z0-9-]*\.(com|net|org|io|gg|dev|app|co|me|tv|xyz)(/\S*)?\b)`)

var profanityPattern = regexp.MustCompile(`(?i)\b(fuck\w*|shit\w*|bitch\w*|asshole\w*|bastard\w*|dickhead\w*|cunt\w*|piss(ed)?|damn(ed|it)?|\bass\b|crap\w*)\b`)

// ContainsURL reports whether text carries a URL-like token.
func ContainsURL(text string) bool {
	return urlPattern.MatchString(text)
}

// Censor replaces profane words with asterisks of equal length. It is
// idempotent and never lengthens its input.
func Censor(text string) string {
	return profanityPattern.ReplaceAllStringFunc(text, func(m string) string {
		return strings.Repeat("*", len(m))
	})
}
