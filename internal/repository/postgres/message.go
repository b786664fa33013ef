package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/pharmacy-portal/internal/model"
	"github.com/jwalitptl/pharmacy-portal/internal/repository"
)

const messageColumns = `id, sender_id, receiver_id, content, type, metadata, created_at`

type messageRepository struct {
	BaseRepository
}

func NewMessageRepository(base BaseRepository) repository.MessageRepository {
	return &messageRepository{base}
}

// Create inserts the message and returns the stored row.
func (r *messageRepository) Create(ctx context.Context, msg *model.Message) (*model.Message, error) {
	query := `
		INSERT INTO messages (id, sender_id, receiver_id, content, type, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + messageColumns

	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	if msg.Metadata == nil {
		msg.Metadata = model.JSONMap{}
	}

	var stored model.Message
	err := r.db.GetContext(ctx, &stored, query,
		msg.ID,
		msg.SenderID,
		msg.ReceiverID,
		msg.Content,
		msg.Type,
		msg.Metadata,
		time.Now().UTC(),
	)
	if err != nil {
		return nil, mapError(err)
	}
	return &stored, nil
}

// ListBetween returns the full conversation between a and b, oldest first.
func (r *messageRepository) ListBetween(ctx context.Context, a, b uuid.UUID) ([]*model.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2)
		   OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY created_at ASC, id ASC
	`

	var msgs []*model.Message
	if err := r.db.SelectContext(ctx, &msgs, query, a, b); err != nil {
		return nil, mapError(err)
	}
	return msgs, nil
}
