package model

import "time"

type RoomStatus string

const (
	RoomStatusWaiting RoomStatus = "waiting"
	RoomStatusActive  RoomStatus = "active"
	RoomStatusClosed  RoomStatus = "closed"
)

// ChatRoom is a single visitor's support conversation. The id is supplied by
// the visitor's client, so it is a string key rather than an auto-increment.
type ChatRoom struct {
	ID              string     `gorm:"primaryKey;size:64" json:"id"`
	UserSocketID    *string    `gorm:"size:64;column:user_socket_id" json:"userSocketId,omitempty"`
	UserName        string     `gorm:"size:255;default:User" json:"userName"`
	Status          RoomStatus `gorm:"size:16;index" json:"status"`
	AssignedAgentID *uint      `gorm:"index" json:"assignedAgentId,omitempty"`
	LastMessage     string     `gorm:"size:255" json:"lastMessage"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func (ChatRoom) TableName() string {
	return "chat_rooms"
}
