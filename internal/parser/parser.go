// Package parser turns free-form (often voice-transcribed) utterances into
// structured commands. Recognition is an ordered cascade of extractors; the
// first extractor that produces a command wins, and an utterance no
// extractor claims falls through to the LLM fallback owned by the caller.
package parser

import (
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"courierbot/internal/models"
	"courierbot/internal/timeparse"
)

// selfRecipient marks an implicit "me" target; delivery substitutes the
// user's own configured number.
const selfRecipient = "me"

var whitespaceRe = regexp.MustCompile(`\s+`)

// normalize lowercases, trims and collapses runs of whitespace so template
// patterns can assume single spaces.
func normalize(text string) string {
	return whitespaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(text)), " ")
}

// Parser runs the extractor cascade. The clock is injectable for tests.
type Parser struct {
	resolver *timeparse.Resolver
	log      *zap.Logger
	now      func() time.Time
}

func New(resolver *timeparse.Resolver, log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{
		resolver: resolver,
		log:      log,
		now:      func() time.Time { return time.Now().In(resolver.Location()) },
	}
}

// Interpret runs the cascade in its fixed order: reminders first (so timing
// language is never mistaken for an immediate send), then email before SMS
// (an email address in the recipient slot is unambiguous), single before
// multi within each channel, and the mixed-channel extractor last.
func (p *Parser) Interpret(text string) (*models.Command, bool) {
	type extractor struct {
		name string
		fn   func(string) *models.Command
	}
	cascade := []extractor{
		{"reminder", p.ExtractReminder},
		{"email", p.ExtractEmail},
		{"email_multi", p.ExtractEmailMulti},
		{"sms", p.ExtractSMS},
		{"sms_multi", p.ExtractSMSMulti},
		{"mixed", p.ExtractMixed},
	}
	for _, e := range cascade {
		cmd := e.fn(text)
		if cmd == nil {
			continue
		}
		p.log.Debug("extractor matched",
			zap.String("extractor", e.name),
			zap.String("action", string(cmd.Action)))
		return cmd, true
	}
	p.log.Debug("no extractor matched", zap.String("text", text))
	return nil, false
}
