package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"courierbot/internal/models"
)

const twilioAPIBase = "https://api.twilio.com/2010-04-01"

// TwilioChannel sends SMS through the Twilio Messages REST endpoint.
type TwilioChannel struct {
	accountSID string
	authToken  string
	from       string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewTwilioChannel(accountSID, authToken, from string, logger *zap.Logger) *TwilioChannel {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TwilioChannel{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		baseURL:    twilioAPIBase,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

// twilioMessage is the subset of the Messages resource we read back.
type twilioMessage struct {
	SID          string `json:"sid"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Message      string `json:"message"` // error payloads use this field
}

func (c *TwilioChannel) SendSMS(ctx context.Context, to, body string) (*models.SendResult, error) {
	if c.accountSID == "" || c.authToken == "" {
		return nil, fmt.Errorf("twilio client not configured")
	}
	if c.from == "" {
		return nil, fmt.Errorf("twilio phone number not configured")
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", c.from)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", c.baseURL, c.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build twilio request: %w", err)
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("twilio request: %w", err)
	}
	defer resp.Body.Close()

	var msg twilioMessage
	if err := json.NewDecoder(resp.Body).Decode(&msg); err != nil {
		return nil, fmt.Errorf("decode twilio response: %w", err)
	}
	if resp.StatusCode >= 300 {
		reason := msg.Message
		if reason == "" {
			reason = msg.ErrorMessage
		}
		return nil, fmt.Errorf("twilio rejected message (%d): %s", resp.StatusCode, reason)
	}

	c.logger.Info("sms sent",
		zap.String("to", to),
		zap.String("sid", msg.SID),
		zap.String("status", msg.Status))

	return &models.SendResult{
		Recipient:          to,
		FormattedRecipient: to,
		Success:            true,
		Type:               "sms",
		MessageID:          msg.SID,
		SentAt:             time.Now(),
	}, nil
}
