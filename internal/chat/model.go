package chat

import "time"

// Chat is a direct conversation between two users.
type Chat struct {
	ID        string    `gorm:"column:id;primaryKey;size:190;not null"`
	UserAID   string    `gorm:"column:user_a_id;size:190;not null;index"`
	UserBID   string    `gorm:"column:user_b_id;size:190;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

func (Chat) TableName() string { return "chats" }

func (c Chat) RowID() string { return c.ID }

func (c *Chat) AssignServerFields(id string, now time.Time) {
	if c.ID == "" {
		c.ID = id
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
}

// Message is one entry in a chat, ordered oldest first.
type Message struct {
	ID        string    `gorm:"column:id;primaryKey;size:190;not null"`
	ChatID    string    `gorm:"column:chat_id;size:190;not null;index"`
	SenderID  string    `gorm:"column:sender_id;size:190;not null"`
	Content   string    `gorm:"column:content;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

func (Message) TableName() string { return "chat_messages" }

func (m Message) RowID() string { return m.ID }

func (m Message) Scope() (string, string) { return "chat_id", m.ChatID }

func (m *Message) AssignServerFields(id string, now time.Time) {
	if m.ID == "" {
		m.ID = id
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
}
