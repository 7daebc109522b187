package server

import (
	"regexp"
	"strings"
)

var (
	spaceRun   = regexp.MustCompile(`[ \t]+`)
	anySpace   = regexp.MustCompile(`\s+`)
	newlineRun = regexp.MustCompile(`\n{3,}`)
)

// sanitizeText cleans a single-line field: control characters stripped,
// whitespace runs collapsed to one space, trimmed, capped at max runes.
func sanitizeText(value string, max int) string {
	cleaned := strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, value)
	cleaned = strings.TrimSpace(anySpace.ReplaceAllString(cleaned, " "))
	return truncate(cleaned, max)
}

// sanitizeMessage cleans a chat message while preserving paragraph breaks:
// newlines normalized, control characters stripped, space runs collapsed,
// spaces touching newlines removed, blank-line runs capped at one.
func sanitizeMessage(value string, max int) string {
	normalized := strings.ReplaceAll(value, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	cleaned := strings.Map(func(r rune) rune {
		if (r < 0x20 && r != '\n') || r == 0x7f {
			return -1
		}
		return r
	}, normalized)
	cleaned = spaceRun.ReplaceAllString(cleaned, " ")
	cleaned = strings.ReplaceAll(cleaned, " \n", "\n")
	cleaned = strings.ReplaceAll(cleaned, "\n ", "\n")
	cleaned = newlineRun.ReplaceAllString(cleaned, "\n\n")
	cleaned = strings.TrimSpace(cleaned)
	return truncate(cleaned, max)
}

func truncate(value string, max int) string {
	if max <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max])
}
