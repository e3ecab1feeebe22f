package chat

import (
	"context"

	"github.com/midniteauto/backend/internal/gateway"
	"github.com/midniteauto/backend/internal/realtime"
	"github.com/midniteauto/backend/internal/syncstore"
	"go.uber.org/zap"
)

// NewMessageStore builds an optimistic store over one chat's messages. It is
// the client-mirror entry point for chat screens, consumed by app clients
// embedding the gateway rather than by the HTTP server. Unlike the garage
// lists, messages append at the tail so a just-sent message shows at the
// bottom of the transcript. Messages are immutable; an update request is
// rejected by the remote.
func NewMessageStore(gw *gateway.Gateway, logger *zap.Logger, onError func(string, error)) (*syncstore.Store[Message], error) {
	messages := NewService(gw)
	return syncstore.NewStore(syncstore.Config[Message]{
		Remote: syncstore.Remote[Message]{
			Load: func(ctx context.Context, chatID string) ([]Message, error) {
				return messages.Messages(ctx, chatID)
			},
			Create: func(ctx context.Context, chatID string, draft Message) (Message, error) {
				draft.ChatID = chatID
				if err := messages.Send(ctx, &draft); err != nil {
					return Message{}, err
				}
				return draft, nil
			},
			Update: func(ctx context.Context, id string, row Message) (Message, error) {
				return Message{}, ErrMessageImmutable
			},
			Delete: func(ctx context.Context, id string) error {
				return messages.DeleteMessage(ctx, id)
			},
			Subscribe: func(ctx context.Context, chatID string) (<-chan struct{}, func(), error) {
				changes, cancel := gw.Hub().Subscribe(ctx, "chat_messages", "chat_id", chatID)
				return realtime.Signal(ctx, changes), cancel, nil
			},
		},
		RowID:     func(m Message) string { return m.ID },
		Placement: syncstore.PlaceTail,
		Logger:    logger,
		OnError:   onError,
	})
}
