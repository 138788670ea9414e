package parser

import (
	"regexp"
	"strings"
)

// Reminder-indicator vocabulary. An immediate-send interpretation is
// refused when any of these appears: timing-shaped utterances belong to
// the reminder extractor, even where the surface templates overlap.
//
// Standalone terms match on word boundaries, so "3pm" inside a message
// body does not trip the "pm" rule. The vocabulary is deliberately
// aggressive; ambiguous utterances fall through to the free-form
// interpreter rather than being sent immediately by mistake.
var (
	indicatorPhrases = []string{
		"remind me",
		"text me in",
		"text me at",
		"set a reminder",
		"schedule a reminder",
		"later today",
		"next week",
		"next month",
	}

	indicatorWordRe = regexp.MustCompile(`\b(in|at|tomorrow|next|on|this|tonight|later|soon|` +
		`minutes?|hours?|days?|weeks?|months?|morning|afternoon|evening|night|am|pm|` +
		`monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)

	// Timing-shaped numeric phrases: "in 30 minutes", "at 3:15pm".
	timingShapeRes = []*regexp.Regexp{
		regexp.MustCompile(`\b(?:in|at)\s+\d+\s*(?:minutes?|hours?|seconds?|days?)\b`),
		regexp.MustCompile(`\b(?:in|at)\s+\d{1,2}:?\d{0,2}\s*(?:am|pm)?\b`),
	}
)

// preamble returns text up to the first occurrence of message, so indicator
// checks can ignore the message body: "text John saying the meeting moved to
// 3pm" is an immediate send, whatever its body mentions.
func preamble(text, message string) string {
	if message == "" {
		return text
	}
	if i := strings.Index(text, message); i >= 0 {
		return text[:i]
	}
	return text
}

// hasReminderIndicators reports whether text contains any term of the
// suppression vocabulary or a timing-shaped numeric phrase.
func hasReminderIndicators(text string) bool {
	text = strings.ToLower(text)
	for _, p := range indicatorPhrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	if indicatorWordRe.MatchString(text) {
		return true
	}
	for _, re := range timingShapeRes {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
