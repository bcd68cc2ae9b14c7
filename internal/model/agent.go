package model

import "time"

type AgentStatus string

const (
	AgentStatusOnline  AgentStatus = "online"
	AgentStatusOffline AgentStatus = "offline"
	AgentStatusBusy    AgentStatus = "busy"
)

// Agent is a human support operator. The durable status is the source of
// truth for availability; live connection state lives in the registry only.
type Agent struct {
	ID        uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint        `gorm:"index;column:user_id" json:"userId"`
	AgentName string      `gorm:"size:255;uniqueIndex" json:"agentName"`
	Status    AgentStatus `gorm:"size:16;default:offline" json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

func (Agent) TableName() string {
	return "agents"
}

// AgentUser is the login account owning an agent profile. Deleting an agent
// deletes this row in the same transaction.
type AgentUser struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"size:255;uniqueIndex" json:"username"`
	Email        string    `gorm:"size:255;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"size:255;column:password" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (AgentUser) TableName() string {
	return "users"
}
