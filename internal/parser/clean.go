package parser

import "strings"

var voiceArtifacts = strings.NewReplacer(
	" period", ".",
	" comma", ",",
	" question mark", "?",
	" exclamation mark", "!",
)

// CleanVoiceMessage rewrites spoken punctuation left behind by voice
// transcription (" period" -> ".", " comma" -> ",", ...) and trims the
// result. Applied to every extracted message and subject.
func CleanVoiceMessage(text string) string {
	return strings.TrimSpace(voiceArtifacts.Replace(text))
}
