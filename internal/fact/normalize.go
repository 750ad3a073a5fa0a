package fact

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var ErrEmptyFact = errors.New("fact is empty after normalization")

// leadIn matches generator boilerplate at the start of a fact.
var leadIn = regexp.MustCompile(`(?i)^(random fact:|here['’]s a fact:|fun fact:|fact:|did you know\b(\s+that\b)?|interesting(ly)?:)[\s,:?!.]*`)

var trailingExclaim = regexp.MustCompile(`[!?]+$`)

// Normalize cleans a raw generated fact: strips boilerplate lead-ins, turns
// trailing !/? runs into a single period, capitalizes the first letter and
// guarantees terminal punctuation. Normalize(Normalize(s)) == Normalize(s).
func Normalize(raw string) (string, error) {
	s := trimQuotes(strings.TrimSpace(raw))
	for {
		stripped := strings.TrimSpace(leadIn.ReplaceAllString(s, ""))
		if stripped == s {
			break
		}
		s = stripped
	}
	s = trailingExclaim.ReplaceAllString(s, ".")
	s = strings.TrimSpace(s)

	if strings.TrimRight(s, ".!? ") == "" {
		return "", ErrEmptyFact
	}

	r, size := utf8.DecodeRuneInString(s)
	s = string(unicode.ToUpper(r)) + s[size:]

	if !strings.HasSuffix(s, ".") && !strings.HasSuffix(s, "!") && !strings.HasSuffix(s, "?") {
		s += "."
	}
	return s, nil
}

func trimQuotes(s string) string {
	for len(s) >= 2 {
		first, _ := utf8.DecodeRuneInString(s)
		last, _ := utf8.DecodeLastRuneInString(s)
		if !(first == '"' && last == '"') && !(first == '“' && last == '”') {
			break
		}
		s = strings.TrimSpace(s[utf8.RuneLen(first) : len(s)-utf8.RuneLen(last)])
	}
	return s
}
