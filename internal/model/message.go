package model

import "time"

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAgent     MessageRole = "agent"
	RoleSystem    MessageRole = "system"
	RoleAssistant MessageRole = "assistant"
)

// ChatMessage rows are immutable once created; history ordering is by
// CreatedAt ascending with ID as the tie-break for same-timestamp inserts.
type ChatMessage struct {
	ID         uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	RoomID     string      `gorm:"size:64;index;column:room_id" json:"roomId"`
	SenderID   string      `gorm:"size:64;column:sender_id" json:"senderId"`
	SenderName string      `gorm:"size:255" json:"senderName"`
	Content    string      `gorm:"type:text" json:"content"`
	Role       MessageRole `gorm:"size:16" json:"role"`
	CreatedAt  time.Time   `json:"timestamp"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
