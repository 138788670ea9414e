package parser

import (
	"courierbot/internal/models"
	"courierbot/internal/recipient"
)

var smsTemplates = []Template{
	tpl(`text (.+?) saying (.+)`, RoleRecipient, RoleMessage),
	tpl(`text (.+?) that (.+)`, RoleRecipient, RoleMessage),
	tpl(`text (.+?) and tell (?:them|him|her) (.+)`, RoleRecipient, RoleMessage),
	tpl(`send a text to (.+?) saying (.+)`, RoleRecipient, RoleMessage),
	tpl(`send a message to (.+?) saying (.+)`, RoleRecipient, RoleMessage),
	tpl(`message (.+?) saying (.+)`, RoleRecipient, RoleMessage),
	tpl(`message (.+?) that (.+)`, RoleRecipient, RoleMessage),
	tpl(`tell (.+?) that (.+)`, RoleRecipient, RoleMessage),
	tpl(`tell (.+?) to (.+)`, RoleRecipient, RoleMessage),
	tpl(`let (.+?) know (?:that )?(.+)`, RoleRecipient, RoleMessage),
}

var smsMultiTemplates = []Template{
	tpl(`text (.+?) saying (.+)`, RoleRecipient, RoleMessage),
	tpl(`text (.+?) that (.+)`, RoleRecipient, RoleMessage),
	tpl(`send a text to (.+?) saying (.+)`, RoleRecipient, RoleMessage),
	tpl(`send a message to (.+?) saying (.+)`, RoleRecipient, RoleMessage),
	tpl(`message (.+?) saying (.+)`, RoleRecipient, RoleMessage),
	tpl(`tell (.+?) that (.+)`, RoleRecipient, RoleMessage),
	tpl(`let (.+?) know (?:that )?(.+)`, RoleRecipient, RoleMessage),
}

// ExtractSMS recognizes single-recipient immediate texts. Timing language in
// the preamble suppresses the match; an email address in the recipient slot
// or a recipient phrase that splits into several targets declines, leaving
// the utterance to the email or multi extractors.
func (p *Parser) ExtractSMS(text string) *models.Command {
	lower := normalize(text)

	for _, t := range smsTemplates {
		caps, ok := t.match(lower)
		if !ok {
			continue
		}
		if hasReminderIndicators(preamble(lower, caps[RoleMessage])) {
			return nil
		}
		rcpt := caps[RoleRecipient]
		if rcpt == selfRecipient || recipient.IsEmailAddress(rcpt) {
			return nil
		}
		if len(recipient.SplitRecipients(rcpt)) > 1 {
			return nil
		}

		msg := CleanVoiceMessage(caps[RoleMessage])
		return &models.Command{
			Action:          models.ActionSendMessage,
			Recipient:       rcpt,
			Message:         msg,
			OriginalMessage: msg,
			OriginalText:    text,
		}
	}
	return nil
}

// ExtractSMSMulti recognizes texts addressed to several recipients. A
// recipient phrase that splits to exactly one target demotes to a
// single-recipient command; any email address among the targets declines in
// favor of the mixed-channel extractor.
func (p *Parser) ExtractSMSMulti(text string) *models.Command {
	lower := normalize(text)

	for _, t := range smsMultiTemplates {
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
		for _, rcpt := range recipients {
			if recipient.IsEmailAddress(rcpt) {
				return nil
			}
		}

		msg := CleanVoiceMessage(caps[RoleMessage])
		if len(recipients) == 1 {
			if recipients[0] == selfRecipient {
				return nil
			}
			return &models.Command{
				Action:          models.ActionSendMessage,
				Recipient:       recipients[0],
				Message:         msg,
				OriginalMessage: msg,
				OriginalText:    text,
			}
		}
		return &models.Command{
			Action:          models.ActionSendMessageMulti,
			Recipients:      recipients,
			Message:         msg,
			OriginalMessage: msg,
			OriginalText:    text,
		}
	}
	return nil
}
