package registry

import (
	"testing"

	"livechat-backend/internal/model"
)

func uintPtr(v uint) *uint {
	return &v
}

func TestAgentLookup(t *testing.T) {
	r := New()
	r.PutAgent(&ActiveAgent{
		ConnID: "conn-1",
		DBID:   uintPtr(7),
		Name:   "Alice",
		Status: model.AgentStatusOnline,
		Rooms:  make(map[string]struct{}),
	})

	agent, ok := r.Agent("conn-1")
	if !ok || agent.Name != "Alice" {
		t.Fatalf("Agent lookup failed: %v %v", agent, ok)
	}

	byID, ok := r.AgentByDBID(7)
	if !ok || byID.ConnID != "conn-1" {
		t.Fatalf("AgentByDBID lookup failed: %v %v", byID, ok)
	}

	if _, ok := r.AgentByDBID(8); ok {
		t.Fatal("unknown durable id must not resolve")
	}
}

func TestAgentByDBIDSkipsAnonymous(t *testing.T) {
	r := New()
	r.PutAgent(&ActiveAgent{
		ConnID: "conn-1",
		Name:   "Ghost",
		Rooms:  make(map[string]struct{}),
	})

	if _, ok := r.AgentByDBID(0); ok {
		t.Fatal("anonymous agents must not match any durable id")
	}
}

func TestRoomTracking(t *testing.T) {
	r := New()
	r.PutRoom(&RoomCache{ID: "room-1", UserName: "Bob", Status: model.RoomStatusWaiting})
	r.PutRoom(&RoomCache{ID: "room-2", UserName: "Eve", Status: model.RoomStatusActive})

	if r.RoomCount() != 2 {
		t.Fatalf("RoomCount = %d, want 2", r.RoomCount())
	}

	room, ok := r.Room("room-1")
	if !ok || room.UserName != "Bob" {
		t.Fatalf("Room lookup failed: %v %v", room, ok)
	}

	// Mutations through the returned pointer are visible to later lookups.
	room.Status = model.RoomStatusActive
	again, _ := r.Room("room-1")
	if again.Status != model.RoomStatusActive {
		t.Fatal("room cache should be shared, not copied")
	}

	r.RemoveRoom("room-1")
	if _, ok := r.Room("room-1"); ok {
		t.Fatal("removed room must not resolve")
	}
	if r.RoomCount() != 1 {
		t.Fatalf("RoomCount = %d, want 1", r.RoomCount())
	}
}

func TestForget(t *testing.T) {
	r := New()
	r.PutAgent(&ActiveAgent{ConnID: "agent-conn", Name: "Alice", Rooms: make(map[string]struct{})})
	r.PutUser(&ConnectedUser{ConnID: "user-conn", RoomID: "room-1", UserName: "Bob"})

	agent, user := r.Forget("agent-conn")
	if agent == nil || agent.Name != "Alice" {
		t.Fatalf("Forget should return the removed agent, got %v", agent)
	}
	if user != nil {
		t.Fatal("agent connection is not a user")
	}
	if _, ok := r.Agent("agent-conn"); ok {
		t.Fatal("forgotten agent must not resolve")
	}

	agent, user = r.Forget("user-conn")
	if agent != nil {
		t.Fatal("user connection is not an agent")
	}
	if user == nil || user.RoomID != "room-1" {
		t.Fatalf("Forget should return the removed user, got %v", user)
	}

	agent, user = r.Forget("unknown")
	if agent != nil || user != nil {
		t.Fatal("unknown connections return nothing")
	}
}
