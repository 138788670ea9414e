// Package recipient classifies and normalizes recipient tokens.
//
// Tokens come out of the command parser raw ("John", "813-641-4177",
// "mary@example.com"); classification happens here, on demand, at dispatch
// time. All functions are pure and total: unrecognized input yields false,
// never an error.
package recipient

import (
	"regexp"
	"strings"
)

var (
	emailRe       = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	conjunctionRe = regexp.MustCompile(`\s*,\s*and\s+|\s+and\s+|\s+&\s+`)
)

// IsPhoneNumber reports whether the token looks like a phone number once
// common separators are stripped: "+" followed by digits, or a bare digit
// run of at least 10.
func IsPhoneNumber(token string) bool {
	clean := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(token)
	if clean == "" {
		return false
	}
	if strings.HasPrefix(clean, "+") {
		rest := clean[1:]
		return rest != "" && isDigits(rest)
	}
	return isDigits(clean) && len(clean) >= 10
}

// IsEmailAddress reports whether the token has a local@domain.tld shape.
func IsEmailAddress(token string) bool {
	return emailRe.MatchString(strings.TrimSpace(token))
}

// FormatPhoneNumber normalizes a phone token to E.164-ish form. Non-digit,
// non-plus characters are dropped first; a 10-digit domestic number gains
// "+1", an 11-digit number starting with 1 gains a bare "+", and anything
// already prefixed with "+" passes through. Country code ranges are not
// validated.
func FormatPhoneNumber(token string) string {
	var b strings.Builder
	for _, c := range token {
		if c >= '0' && c <= '9' || c == '+' {
			b.WriteRune(c)
		}
	}
	clean := b.String()

	if !strings.HasPrefix(clean, "+") {
		switch {
		case len(clean) == 10:
			clean = "+1" + clean
		case len(clean) == 11 && strings.HasPrefix(clean, "1"):
			clean = "+" + clean
		}
	}
	return clean
}

// SplitRecipients breaks a free-text recipient phrase into individual
// tokens. Conjunctions (" and ", " & ", ", and ") are rewritten to comma
// delimiters before splitting, so "a, b, and c" yields no empty middle
// token. Order is preserved; empty tokens are dropped.
func SplitRecipients(text string) []string {
	text = conjunctionRe.ReplaceAllString(strings.TrimSpace(text), ", ")

	parts := strings.Split(text, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
