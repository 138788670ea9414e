package parser

import (
	"courierbot/internal/models"
	"courierbot/internal/recipient"
)

var emailTemplates = []Template{
	tpl(`email (.+?) with subject (.+?) saying (.+)`, RoleRecipient, RoleSubject, RoleMessage),
	tpl(`email (.+?) subject (.+?) saying (.+)`, RoleRecipient, RoleSubject, RoleMessage),
	tpl(`email (.+?) about (.+?) saying (.+)`, RoleRecipient, RoleSubject, RoleMessage),
	tpl(`send an email to (.+?) with subject (.+?) saying (.+)`, RoleRecipient, RoleSubject, RoleMessage),
	tpl(`send an email to (.+?) saying (.+)`, RoleRecipient, RoleMessage),
	tpl(`send email to (.+?) saying (.+)`, RoleRecipient, RoleMessage),
	tpl(`email (.+?) saying (.+)`, RoleRecipient, RoleMessage),
	tpl(`email (.+?) that (.+)`, RoleRecipient, RoleMessage),
	tpl(`email (.+?) and tell (?:them|him|her) (.+)`, RoleRecipient, RoleMessage),
}

var emailMultiTemplates = []Template{
	tpl(`email (.+?) with subject (.+?) saying (.+)`, RoleRecipient, RoleSubject, RoleMessage),
	tpl(`send an email to (.+?) saying (.+)`, RoleRecipient, RoleMessage),
	tpl(`email (.+?) saying (.+)`, RoleRecipient, RoleMessage),
	tpl(`email (.+?) that (.+)`, RoleRecipient, RoleMessage),
}

// ExtractEmail recognizes single-recipient email sends. Timing language
// suppresses the match (a scheduled email is a reminder, not a send), and a
// recipient phrase that splits into several addresses is declined so the
// multi-recipient extractor can claim the utterance.
func (p *Parser) ExtractEmail(text string) *models.Command {
	lower := normalize(text)

	for _, t := range emailTemplates {
		caps, ok := t.match(lower)
		if !ok {
			continue
		}
		if hasReminderIndicators(preamble(lower, caps[RoleMessage])) {
			return nil
		}
		rcpt := caps[RoleRecipient]
		if len(recipient.SplitRecipients(rcpt)) > 1 {
			return nil
		}

		msg := CleanVoiceMessage(caps[RoleMessage])
		return &models.Command{
			Action:          models.ActionSendEmail,
			Recipient:       rcpt,
			Message:         msg,
			OriginalMessage: msg,
			Subject:         CleanVoiceMessage(caps[RoleSubject]),
			OriginalText:    text,
		}
	}
	return nil
}

// ExtractEmailMulti recognizes email sends whose recipient phrase names
// several targets. A phrase that splits to exactly one address demotes to a
// single-recipient command.
func (p *Parser) ExtractEmailMulti(text string) *models.Command {
	lower := normalize(text)

	for _, t := range emailMultiTemplates {
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

		msg := CleanVoiceMessage(caps[RoleMessage])
		subject := CleanVoiceMessage(caps[RoleSubject])

		if len(recipients) == 1 {
			return &models.Command{
				Action:          models.ActionSendEmail,
				Recipient:       recipients[0],
				Message:         msg,
				OriginalMessage: msg,
				Subject:         subject,
				OriginalText:    text,
			}
		}
		return &models.Command{
			Action:          models.ActionSendEmailMulti,
			Recipients:      recipients,
			Message:         msg,
			OriginalMessage: msg,
			Subject:         subject,
			OriginalText:    text,
		}
	}
	return nil
}
