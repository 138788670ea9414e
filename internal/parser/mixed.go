package parser

import (
	"courierbot/internal/models"
	"courierbot/internal/recipient"
)

var mixedTemplates = []Template{
	tpl(`(?:text|message|send) (.+?) saying (.+)`, RoleRecipient, RoleMessage),
	tpl(`(?:text|message|send) (.+?) that (.+)`, RoleRecipient, RoleMessage),
	tpl(`(?:contact|notify) (.+?) saying (.+)`, RoleRecipient, RoleMessage),
	tpl(`(?:contact|notify) (.+?) that (.+)`, RoleRecipient, RoleMessage),
	tpl(`tell (.+?) that (.+)`, RoleRecipient, RoleMessage),
	tpl(`let (.+?) know (?:that )?(.+)`, RoleRecipient, RoleMessage),
}

// ExtractMixed is the cascade's catch-all for sends the typed extractors
// declined, typically because the recipient list mixes channels (phone
// numbers alongside email addresses). It claims an utterance only when at
// least one recipient classifies as a phone number or email address;
// name-only recipient lists stay with the free-form interpreter.
func (p *Parser) ExtractMixed(text string) *models.Command {
	lower := normalize(text)

	for _, t := range mixedTemplates {
		caps, ok := t.match(lower)
		if !ok {
			continue
		}
		if hasReminderIndicators(preamble(lower, caps[RoleMessage])) {
			return nil
		}

		recipients := recipient.SplitRecipients(caps[RoleRecipient])
		if len(recipients) == 0 {
			continue
		}
		classifiable := false
		for _, rcpt := range recipients {
			if recipient.IsPhoneNumber(rcpt) || recipient.IsEmailAddress(rcpt) {
				classifiable = true
				break
			}
		}
		if !classifiable {
			continue
		}

		msg := CleanVoiceMessage(caps[RoleMessage])
		return &models.Command{
			Action:          models.ActionMixedMessaging,
			Recipients:      recipients,
			Message:         msg,
			OriginalMessage: msg,
			OriginalText:    text,
		}
	}
	return nil
}
