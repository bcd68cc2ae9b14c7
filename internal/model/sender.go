package model

import (
	"fmt"
	"strconv"
	"strings"
)

type SenderKind int

const (
	SenderSystem SenderKind = iota
	SenderAgent
	SenderUser
)

// Sender is the tagged identity of a message author. The stored sender_id
// column keeps the legacy string forms ("system", "agent-<id>", raw
// connection id); Sender confines the string parsing to this file.
type Sender struct {
	Kind    SenderKind
	AgentID uint   // set when Kind == SenderAgent
	ConnID  string // set when Kind == SenderUser
}

func SystemSender() Sender {
	return Sender{Kind: SenderSystem}
}

func AgentSender(agentID uint) Sender {
	return Sender{Kind: SenderAgent, AgentID: agentID}
}

func UserSender(connID string) Sender {
	return Sender{Kind: SenderUser, ConnID: connID}
}

// ID renders the durable sender_id string.
func (s Sender) ID() string {
	switch s.Kind {
	case SenderAgent:
		return fmt.Sprintf("agent-%d", s.AgentID)
	case SenderUser:
		if s.ConnID == "" {
			return "unknown"
		}
		return s.ConnID
	default:
		return "system"
	}
}

// ParseSender maps a stored sender_id string back to its tagged form.
func ParseSender(id string) Sender {
	switch {
	case id == "system" || id == "":
		return SystemSender()
	case strings.HasPrefix(id, "agent-"):
		n, err := strconv.ParseUint(strings.TrimPrefix(id, "agent-"), 10, 32)
		if err != nil {
			return UserSender(id)
		}
		return AgentSender(uint(n))
	default:
		return UserSender(id)
	}
}
