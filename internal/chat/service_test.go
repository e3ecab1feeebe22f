package chat

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/midniteauto/backend/internal/gateway"
	"github.com/midniteauto/backend/internal/realtime"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *gateway.Gateway) {
	t.Helper()
	dsn := fmt.Sprintf("file:midnite_chat_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(&Chat{}, &Message{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	gw, err := gateway.New(gateway.Config{Database: db, Hub: realtime.NewHub()})
	if err != nil {
		t.Fatalf("failed to build gateway: %v", err)
	}
	return NewService(gw), gw
}

func TestChatsForMergesBothSides(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	if _, err := service.Open(ctx, "me", "friend"); err != nil {
		t.Fatalf("unexpected open error: %v", err)
	}
	if _, err := service.Open(ctx, "stranger", "me"); err != nil {
		t.Fatalf("unexpected open error: %v", err)
	}
	if _, err := service.Open(ctx, "other-a", "other-b"); err != nil {
		t.Fatalf("unexpected open error: %v", err)
	}

	chats, err := service.ChatsFor(ctx, "me")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chats) != 2 {
		t.Fatalf("expected 2 chats, got %d", len(chats))
	}
}

func TestOpenRejectsSelfChat(t *testing.T) {
	service, _ := newTestService(t)
	if _, err := service.Open(context.Background(), "me", "me"); err == nil {
		t.Fatalf("expected error for self chat")
	}
}

func TestMessagesReturnOldestFirst(t *testing.T) {
	service, gw := newTestService(t)
	ctx := context.Background()

	conversation, err := service.Open(ctx, "me", "friend")
	if err != nil {
		t.Fatalf("unexpected open error: %v", err)
	}

	base := time.Unix(1700000000, 0).UTC()
	older := Message{ChatID: conversation.ID, SenderID: "me", Content: "you up?", CreatedAt: base}
	newer := Message{ChatID: conversation.ID, SenderID: "friend", Content: "dock run?", CreatedAt: base.Add(time.Minute)}
	if err := gw.Insert(ctx, &newer); err != nil {
		t.Fatalf("unexpected insert error: %v", err)
	}
	if err := gw.Insert(ctx, &older); err != nil {
		t.Fatalf("unexpected insert error: %v", err)
	}

	messages, err := service.Messages(ctx, conversation.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].Content != "you up?" || messages[1].Content != "dock run?" {
		t.Fatalf("expected oldest-first ordering, got %+v", messages)
	}
}

func TestMessageStoreAppendsAtTailAndRejectsEdits(t *testing.T) {
	service, gw := newTestService(t)
	ctx := context.Background()

	conversation, err := service.Open(ctx, "me", "friend")
	if err != nil {
		t.Fatalf("unexpected open error: %v", err)
	}
	seed := Message{ChatID: conversation.ID, SenderID: "friend", Content: "first"}
	if err := service.Send(ctx, &seed); err != nil {
		t.Fatalf("unexpected send error: %v", err)
	}

	store, err := NewMessageStore(gw, nil, nil)
	if err != nil {
		t.Fatalf("failed to build message store: %v", err)
	}
	defer store.Close()
	if err := store.Bind(ctx, conversation.ID); err != nil {
		t.Fatalf("unexpected bind error: %v", err)
	}

	sent, err := store.Create(ctx, Message{SenderID: "me", Content: "second"})
	if err != nil {
		t.Fatalf("unexpected create error: %v", err)
	}
	rows := store.Rows()
	if len(rows) != 2 || rows[1].ID != sent.ID {
		t.Fatalf("expected sent message at tail, got %+v", rows)
	}

	_, err = store.Update(ctx, sent.ID, func(m Message) Message {
		m.Content = "edited"
		return m
	})
	if !errors.Is(err, ErrMessageImmutable) {
		t.Fatalf("expected ErrMessageImmutable, got %v", err)
	}
	if current := store.Rows(); current[1].Content != "second" {
		t.Fatalf("edit rejected but local row mutated: %+v", current[1])
	}
}
