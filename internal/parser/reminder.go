package parser

import (
	"courierbot/internal/models"
	"courierbot/internal/recipient"
)

// reminderTemplates is tried in order; the first pattern that matches AND
// whose time phrase resolves wins. The list order is part of the contract:
// "text me ..." shapes precede "text RECIPIENT ..." shapes so the sentinel
// "me" recipient is never captured as a name.
var reminderTemplates = []Template{
	// "Remind me" shapes.
	tpl(`remind me to (.+?) in (.+)`, RoleMessage, RoleTime),
	tpl(`remind me to (.+?) at (.+)`, RoleMessage, RoleTime),
	tplAt(`remind me to (.+?) tomorrow`, "tomorrow", RoleMessage),
	tpl(`remind me to (.+?) (next .+)`, RoleMessage, RoleTime),
	tpl(`remind me to (.+?) on (.+)`, RoleMessage, RoleTime),
	tpl(`remind me in (.+?) to (.+)`, RoleTime, RoleMessage),
	tpl(`remind me at (.+?) to (.+)`, RoleTime, RoleMessage),
	tplAt(`remind me tomorrow to (.+)`, "tomorrow", RoleMessage),
	tpl(`remind me (next .+?) to (.+)`, RoleTime, RoleMessage),

	// "Text me" shapes (implicit self recipient).
	tpl(`text me in (.+?) to (.+)`, RoleTime, RoleMessage),
	tpl(`text me in (.+?) saying (.+)`, RoleTime, RoleMessage),
	tpl(`text me at (.+?) to (.+)`, RoleTime, RoleMessage),
	tpl(`text me at (.+?) saying (.+)`, RoleTime, RoleMessage),
	tplAt(`text me tomorrow to (.+)`, "tomorrow", RoleMessage),
	tplAt(`text me tomorrow saying (.+)`, "tomorrow", RoleMessage),
	tpl(`text me (next .+?) to (.+)`, RoleTime, RoleMessage),
	tpl(`text me (next .+?) saying (.+)`, RoleTime, RoleMessage),

	// "Text RECIPIENT" shapes.
	tpl(`text (.+?) in (.+?) saying (.+)`, RoleRecipient, RoleTime, RoleMessage),
	tpl(`text (.+?) in (.+?) to (.+)`, RoleRecipient, RoleTime, RoleMessage),
	tpl(`text (.+?) at (.+?) saying (.+)`, RoleRecipient, RoleTime, RoleMessage),
	tpl(`text (.+?) at (.+?) to (.+)`, RoleRecipient, RoleTime, RoleMessage),
	tplAt(`text (.+?) tomorrow saying (.+)`, "tomorrow", RoleRecipient, RoleMessage),
	tplAt(`text (.+?) tomorrow to (.+)`, "tomorrow", RoleRecipient, RoleMessage),
	tpl(`text (.+?) (next .+?) saying (.+)`, RoleRecipient, RoleTime, RoleMessage),
	tpl(`text (.+?) (next .+?) to (.+)`, RoleRecipient, RoleTime, RoleMessage),

	// General reminder shapes.
	tpl(`set (?:a )?reminder to (.+?) at (.+)`, RoleMessage, RoleTime),
	tpl(`set (?:a )?reminder to (.+?) in (.+)`, RoleMessage, RoleTime),
	tplAt(`set (?:a )?reminder to (.+?) tomorrow`, "tomorrow", RoleMessage),
	tpl(`set (?:a )?reminder to (.+?) (next .+)`, RoleMessage, RoleTime),
	tpl(`schedule (?:a )?reminder to (.+?) at (.+)`, RoleMessage, RoleTime),
	tpl(`schedule (?:a )?reminder to (.+?) in (.+)`, RoleMessage, RoleTime),
	tpl(`send me (?:a )?reminder to (.+?) in (.+)`, RoleMessage, RoleTime),
	tpl(`sms reminder in (.+?) saying (.+)`, RoleTime, RoleMessage),
}

// ExtractReminder recognizes reminder-shaped utterances. A template whose
// time phrase fails to resolve is skipped, not fatal; only after every
// template is exhausted does the extractor decline.
func (p *Parser) ExtractReminder(text string) *models.Command {
	lower := normalize(text)

	for _, t := range reminderTemplates {
		caps, ok := t.match(lower)
		if !ok {
			continue
		}

		timeStr := caps[RoleTime]
		when, ok := p.resolver.Resolve(timeStr, p.now())
		if !ok {
			continue
		}

		rcpt := caps[RoleRecipient]
		if rcpt == "" {
			rcpt = selfRecipient
		}

		action := models.ActionScheduleSMSReminder
		if recipient.IsEmailAddress(rcpt) {
			action = models.ActionScheduleEmailReminder
		}

		msg := CleanVoiceMessage(caps[RoleMessage])
		return &models.Command{
			Action:          action,
			Recipient:       rcpt,
			Message:         msg,
			OriginalMessage: msg,
			ReminderTime:    when,
			TimeStr:         timeStr,
			OriginalText:    text,
		}
	}
	return nil
}
