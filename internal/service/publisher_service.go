package service

import (
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"doc-assistant-be/internal/pkg/logger"
)

type IPublisherService interface {
	Publish(topic string, payload interface{}) error
}

type publisherService struct {
	publisher message.Publisher
	logger    logger.ILogger
}

func NewPublisherService(publisher message.Publisher, log logger.ILogger) IPublisherService {
	return &publisherService{
		publisher: publisher,
		logger:    log,
	}
}

// Publish serializes the payload and puts it on the bus. Failures are logged
// and swallowed: eventing is best-effort and must never fail a request.
func (ps *publisherService) Publish(topic string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		ps.logger.Error("publisher", "Failed to marshal event payload", map[string]interface{}{
			"topic": topic,
			"error": err.Error(),
		})
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	if err := ps.publisher.Publish(topic, msg); err != nil {
		ps.logger.Error("publisher", "Failed to publish event", map[string]interface{}{
			"topic": topic,
			"error": err.Error(),
		})
		return err
	}
	return nil
}
