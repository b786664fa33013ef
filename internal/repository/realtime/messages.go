// Package realtime decorates repositories so row inserts are published as
// change events on the broker.
package realtime

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/pharmacy-portal/internal/model"
	"github.com/jwalitptl/pharmacy-portal/internal/repository"
	"github.com/jwalitptl/pharmacy-portal/pkg/messaging"
)

const messagesTable = "messages"

type messageRepository struct {
	repository.MessageRepository
	broker messaging.Broker
	log    zerolog.Logger
}

// NewMessageRepository publishes an INSERT event on the messages channel after
// every stored message. Publish failures are logged; the insert stands.
func NewMessageRepository(next repository.MessageRepository, broker messaging.Broker, log zerolog.Logger) repository.MessageRepository {
	return &messageRepository{
		MessageRepository: next,
		broker:            broker,
		log:               log.With().Str("component", "realtime").Logger(),
	}
}

func (r *messageRepository) Create(ctx context.Context, msg *model.Message) (*model.Message, error) {
	stored, err := r.MessageRepository.Create(ctx, msg)
	if err != nil {
		return nil, err
	}

	event := messaging.ChangeEvent{
		Type:   messaging.EventInsert,
		Schema: "public",
		Table:  messagesTable,
		Record: stored,
	}
	if err := r.broker.Publish(ctx, messaging.TableChannel(messagesTable), event); err != nil {
		r.log.Error().Err(err).Str("message_id", stored.ID.String()).Msg("failed to publish message insert")
	}
	return stored, nil
}
