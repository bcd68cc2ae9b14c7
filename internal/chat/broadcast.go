package chat

import (
	"context"
	"fmt"
	"log"
	"time"
)

// BroadcastToAgents delivers a payload to every registered agent connection.
// Fire-and-forget: no ack, no retry, no cross-agent ordering.
func (rl *Relay) BroadcastToAgents(event string, payload interface{}) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.broadcastToAgents(event, payload)
}

func (rl *Relay) broadcastToAgents(event string, payload interface{}) {
	delivered := 0
	for _, agent := range rl.reg.Agents() {
		if conn, ok := rl.conns[agent.ConnID]; ok {
			conn.Emit(event, payload)
			delivered++
		}
	}
	if delivered > 0 {
		notificationsSent.Add(float64(delivered))
	}
	if event == EventAgentNotification {
		rl.publishMirror("agents", payload)
	}
}

// PushAvailableRooms broadcasts the current waiting-room snapshot to all
// agents. Each agent receives the same snapshot independently.
func (rl *Relay) PushAvailableRooms(ctx context.Context) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.pushAvailableRooms(ctx)
}

func (rl *Relay) pushAvailableRooms(ctx context.Context) {
	rl.broadcastToAgents(EventAvailableRooms, rl.availableRooms(ctx))
}

// availableRooms lists, from durable state, the waiting rooms assigned to
// no one, annotated with a human-readable wait time.
func (rl *Relay) availableRooms(ctx context.Context) []AvailableRoom {
	rooms, err := rl.repo.ListAvailableRooms(ctx)
	if err != nil {
		log.Printf("list available rooms: %v", err)
		return []AvailableRoom{}
	}
	out := make([]AvailableRoom, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, AvailableRoom{
			ID:          room.ID,
			UserName:    room.UserName,
			LastMessage: room.LastMessage,
			WaitTime:    WaitTime(room.CreatedAt, rl.now()),
		})
	}
	return out
}

// WaitTime renders how long a room has been waiting, floored to the minute.
func WaitTime(createdAt, now time.Time) string {
	mins := int(now.Sub(createdAt).Minutes())
	switch {
	case mins < 1:
		return "Just now"
	case mins == 1:
		return "1 min"
	default:
		return fmt.Sprintf("%d mins", mins)
	}
}
