package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sdklogging "github.com/Layr-Labs/eigensdk-go/logging"
	"github.com/go-resty/resty/v2"

	"github.com/AvaProtocol/avax-workflow/core/taskengine"
	"github.com/AvaProtocol/avax-workflow/pkg/logger"
)

const DefaultWhatsAppAPIURL = "https://graph.facebook.com/v20.0"

var ErrWhatsAppNotConfigured = errors.New("whatsapp token and phone number id are required")

type WhatsAppConfig struct {
	APIURL        string
	Token         string
	PhoneNumberID string
}

type whatsAppTextBody struct {
	Body string `json:"body"`
}

type whatsAppMessage struct {
	MessagingProduct string           `json:"messaging_product"`
	To               string           `json:"to"`
	Type             string           `json:"type"`
	Text             whatsAppTextBody `json:"text"`
}

type whatsAppResponse struct {
	Messages []struct {
		ID            string `json:"id"`
		MessageStatus string `json:"message_status"`
	} `json:"messages"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// WhatsAppMessenger sends text messages through the WhatsApp Cloud API
type WhatsAppMessenger struct {
	client        *resty.Client
	phoneNumberID string
	logger        sdklogging.Logger
}

func NewWhatsAppMessenger(cfg WhatsAppConfig, log sdklogging.Logger) (*WhatsAppMessenger, error) {
	if strings.TrimSpace(cfg.Token) == "" || strings.TrimSpace(cfg.PhoneNumberID) == "" {
		return nil, ErrWhatsAppNotConfigured
	}

	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = DefaultWhatsAppAPIURL
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(apiURL, "/")).
		SetAuthToken(cfg.Token).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &WhatsAppMessenger{
		client:        client,
		phoneNumberID: cfg.PhoneNumberID,
		logger:        logger.EnsureLogger(log),
	}, nil
}

func (m *WhatsAppMessenger) Send(ctx context.Context, phone, message string) (*taskengine.Delivery, error) {
	result := &whatsAppResponse{}

	resp, err := m.client.R().
		SetContext(ctx).
		SetBody(whatsAppMessage{
			MessagingProduct: "whatsapp",
			To:               strings.TrimSpace(phone),
			Type:             "text",
			Text:             whatsAppTextBody{Body: message},
		}).
		SetResult(result).
		SetError(result).
		Post("/" + m.phoneNumberID + "/messages")
	if err != nil {
		return nil, fmt.Errorf("whatsapp request failed: %w", err)
	}

	if resp.IsError() {
		detail := resp.String()
		if result.Error != nil && result.Error.Message != "" {
			detail = result.Error.Message
		}
		return nil, fmt.Errorf("whatsapp api returned %d: %s", resp.StatusCode(), detail)
	}

	delivery := &taskengine.Delivery{Status: "accepted"}
	if len(result.Messages) > 0 {
		delivery.ID = result.Messages[0].ID
		if result.Messages[0].MessageStatus != "" {
			delivery.Status = result.Messages[0].MessageStatus
		}
	}

	m.logger.Info("whatsapp message sent", "to", phone, "message_id", delivery.ID)
	return delivery, nil
}
