package service

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"doc-assistant-be/internal/pkg/logger"
	"doc-assistant-be/pkg/events"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
	IngestedCount() int64
	DestroyedCount() int64
}

// consumerService drains the lifecycle topics and keeps running totals. It is
// the audit trail for what the session layer did, independent of request logs.
type consumerService struct {
	pubSub *gochannel.GoChannel
	logger logger.ILogger

	ingested  atomic.Int64
	destroyed atomic.Int64
}

func NewConsumerService(pubSub *gochannel.GoChannel, log logger.ILogger) IConsumerService {
	return &consumerService{
		pubSub: pubSub,
		logger: log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	ingested, err := cs.pubSub.Subscribe(ctx, events.TopicDocumentIngested)
	if err != nil {
		return err
	}
	destroyed, err := cs.pubSub.Subscribe(ctx, events.TopicSessionDestroyed)
	if err != nil {
		return err
	}

	go func() {
		for msg := range ingested {
			cs.processIngested(msg)
		}
	}()
	go func() {
		for msg := range destroyed {
			cs.processDestroyed(msg)
		}
	}()

	return nil
}

func (cs *consumerService) IngestedCount() int64  { return cs.ingested.Load() }
func (cs *consumerService) DestroyedCount() int64 { return cs.destroyed.Load() }

func (cs *consumerService) processIngested(msg *message.Message) {
	var payload events.DocumentIngested
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("consumer", "Failed to unmarshal document event", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack()
		return
	}

	cs.ingested.Add(1)
	cs.logger.Info("consumer", "Document ingested", map[string]interface{}{
		"session_id":  payload.SessionID,
		"document_id": payload.DocumentID,
		"filename":    payload.Filename,
		"chunks":      payload.ChunkCount,
	})
	msg.Ack()
}

func (cs *consumerService) processDestroyed(msg *message.Message) {
	var payload events.SessionDestroyed
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("consumer", "Failed to unmarshal session event", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack()
		return
	}

	cs.destroyed.Add(1)
	cs.logger.Info("consumer", "Session destroyed", map[string]interface{}{
		"session_id": payload.SessionID,
		"reason":     payload.Reason,
		"documents":  payload.Documents,
		"messages":   payload.Messages,
	})
	msg.Ack()
}
