package taskengine

import (
	"context"
	"strings"

	"github.com/AvaProtocol/avax-workflow/model"
)

type WhatsAppProcessor struct {
	*CommonProcessor
}

func NewWhatsAppProcessor(p *CommonProcessor) *WhatsAppProcessor {
	return &WhatsAppProcessor{CommonProcessor: p}
}

func (p *WhatsAppProcessor) Execute(ctx context.Context, ec *ExecutionContext, nodeID string, data *model.WhatsAppData) (*StepResult, error) {
	if p.ports.Messenger == nil {
		return nil, NewPortNotConfiguredError("messenger")
	}

	phone := strings.TrimSpace(data.PhoneNumber)
	message := p.preprocessText(ctx, ec, data.Message)

	delivery, err := p.ports.Messenger.Send(ctx, phone, message)
	if err != nil {
		return nil, WrapStructuredError(ExternalCallFailed, err, "cannot deliver message to %s", phone)
	}

	record := map[string]any{
		"phoneNumber": phone,
		"message":     message,
		"deliveryId":  delivery.ID,
		"status":      delivery.Status,
	}

	result := &StepResult{Effect: delivery.ID, Output: record}
	return result.Write(StoreKey("whatsapp", nodeID), record), nil
}
