package actions

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/pharmacy-portal/internal/model"
)

type SendMessageInput struct {
	ReceiverID string        `json:"receiver_id" form:"receiver_id" validate:"required,uuid"`
	Content    string        `json:"content" form:"content" validate:"required"`
	Type       string        `json:"type" form:"type" validate:"omitempty,oneof=text bill"`
	Metadata   model.JSONMap `json:"metadata"`
}

// SendMessage stores a message from the signed-in user. Open chat threads
// pick it up from the realtime channel.
func (s *Service) SendMessage(ctx context.Context, in SendMessageInput) model.ActionResult {
	user := currentUser(ctx)
	if user == nil {
		return s.done("send_message", model.Failed(msgNotAuthenticated))
	}
	if r, ok := s.check(&in); !ok {
		return s.done("send_message", r)
	}

	msg, err := s.postMessage(ctx, user.ID, uuid.MustParse(in.ReceiverID), in.Content, model.MessageType(in.Type), in.Metadata)
	if err != nil {
		return s.done("send_message", model.Failed(err.Error()))
	}
	return s.done("send_message", model.Succeeded(msg))
}

func (s *Service) postMessage(ctx context.Context, from, to uuid.UUID, content string, typ model.MessageType, metadata model.JSONMap) (*model.Message, error) {
	if typ == "" {
		typ = model.MessageTypeText
	}
	if metadata == nil {
		metadata = model.JSONMap{}
	}
	return s.messages.Create(ctx, &model.Message{
		SenderID:   from,
		ReceiverID: to,
		Content:    content,
		Type:       typ,
		Metadata:   metadata,
	})
}

// GetMessages returns the whole conversation with otherID, oldest first. An
// anonymous caller or a failed read yields an empty list.
func (s *Service) GetMessages(ctx context.Context, otherID string) []*model.Message {
	user := currentUser(ctx)
	if user == nil {
		return []*model.Message{}
	}
	other, err := uuid.Parse(otherID)
	if err != nil {
		return []*model.Message{}
	}

	msgs, err := s.messages.ListBetween(ctx, user.ID, other)
	if err != nil {
		s.log.Error().Err(fmt.Errorf("failed to fetch messages: %w", err)).Msg("message read failed")
		return []*model.Message{}
	}
	if msgs == nil {
		msgs = []*model.Message{}
	}
	return msgs
}
