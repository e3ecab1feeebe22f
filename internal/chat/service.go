package chat

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/midniteauto/backend/internal/gateway"
)

// ErrMessageImmutable indicates an attempt to edit a sent message.
var ErrMessageImmutable = errors.New("chat: messages cannot be edited")

// Service manages direct chats and their messages.
type Service struct {
	gw *gateway.Gateway
}

// NewService constructs a chat service.
func NewService(gw *gateway.Gateway) *Service {
	return &Service{gw: gw}
}

// ChatsFor returns every chat the user participates in, newest first.
func (s *Service) ChatsFor(ctx context.Context, userID string) ([]Chat, error) {
	var asA []Chat
	if err := s.gw.From("chats").Eq("user_a_id", userID).Find(ctx, &asA); err != nil {
		return nil, fmt.Errorf("chat: list chats: %w", err)
	}
	var asB []Chat
	if err := s.gw.From("chats").Eq("user_b_id", userID).Find(ctx, &asB); err != nil {
		return nil, fmt.Errorf("chat: list chats: %w", err)
	}
	merged := append(asA, asB...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})
	return merged, nil
}

// Open creates a chat between two users.
func (s *Service) Open(ctx context.Context, userAID, userBID string) (Chat, error) {
	if userAID == "" || userBID == "" || userAID == userBID {
		return Chat{}, fmt.Errorf("chat: open: two distinct participants are required")
	}
	conversation := Chat{UserAID: userAID, UserBID: userBID}
	if err := s.gw.Insert(ctx, &conversation); err != nil {
		return Chat{}, fmt.Errorf("chat: open: %w", err)
	}
	return conversation, nil
}

// Messages returns a chat's messages, oldest first.
func (s *Service) Messages(ctx context.Context, chatID string) ([]Message, error) {
	var messages []Message
	err := s.gw.From("chat_messages").Eq("chat_id", chatID).Order("created_at", false).Find(ctx, &messages)
	if err != nil {
		return nil, fmt.Errorf("chat: list messages: %w", err)
	}
	return messages, nil
}

// Send appends a message to the chat.
func (s *Service) Send(ctx context.Context, message *Message) error {
	if message.ChatID == "" || message.SenderID == "" || message.Content == "" {
		return fmt.Errorf("chat: send: chat_id, sender_id, and content are required")
	}
	if err := s.gw.Insert(ctx, message); err != nil {
		return fmt.Errorf("chat: send: %w", err)
	}
	return nil
}

// DeleteMessage removes one message.
func (s *Service) DeleteMessage(ctx context.Context, id string) error {
	if err := s.gw.Delete(ctx, &Message{}, id); err != nil {
		return fmt.Errorf("chat: delete message: %w", err)
	}
	return nil
}
