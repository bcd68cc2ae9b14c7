// Package registry holds the in-memory presence state of the relay: which
// live connections are agents, which are visitors, and which chat rooms are
// being tracked. It is advisory only; the database stays the durable source
// of truth and the relay reconciles the two inside each event handler.
package registry

import (
	"sync"

	"livechat-backend/internal/model"
)

// ActiveAgent is the live record for one agent connection.
type ActiveAgent struct {
	ConnID string
	// DBID is nil for agents with no matching durable row (anonymous agents).
	DBID   *uint
	Name   string
	Status model.AgentStatus
	Rooms  map[string]struct{}
}

func (a *ActiveAgent) HoldsRoom(roomID string) bool {
	_, ok := a.Rooms[roomID]
	return ok
}

// RoomCache mirrors a durable ChatRoom plus the live connection of the
// attached visitor, if any.
type RoomCache struct {
	ID              string
	UserSocketID    string // empty when the visitor is not connected
	UserName        string
	Status          model.RoomStatus
	AssignedAgentID *uint
	LastMessage     string
	CreatedAt       int64 // unix seconds, for wait-time computation
}

// ConnectedUser is the live record for one visitor connection.
type ConnectedUser struct {
	ConnID   string
	RoomID   string
	UserName string
}

// Registry is constructed once at startup and passed into every event
// handler. All access goes through the mutex so tests can drive handlers
// directly without the dispatch loop.
type Registry struct {
	mu     sync.Mutex
	agents map[string]*ActiveAgent
	rooms  map[string]*RoomCache
	users  map[string]*ConnectedUser
}

func New() *Registry {
	return &Registry{
		agents: make(map[string]*ActiveAgent),
		rooms:  make(map[string]*RoomCache),
		users:  make(map[string]*ConnectedUser),
	}
}

func (r *Registry) PutAgent(agent *ActiveAgent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if agent.Rooms == nil {
		agent.Rooms = make(map[string]struct{})
	}
	r.agents[agent.ConnID] = agent
}

func (r *Registry) Agent(connID string) (*ActiveAgent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.agents[connID]
	return a, ok
}

// AgentByDBID finds the live connection for a durable agent id, if one exists.
func (r *Registry) AgentByDBID(dbID uint) (*ActiveAgent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.agents {
		if a.DBID != nil && *a.DBID == dbID {
			return a, true
		}
	}
	return nil, false
}

// Agents returns a snapshot slice; the broadcaster iterates it outside the lock.
func (r *Registry) Agents() []*ActiveAgent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*ActiveAgent, 0, len(r.agents))
	for _, a := range r.agents {
		out = append(out, a)
	}
	return out
}

func (r *Registry) PutRoom(room *RoomCache) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms[room.ID] = room
}

func (r *Registry) Room(roomID string) (*RoomCache, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[roomID]
	return room, ok
}

func (r *Registry) RemoveRoom(roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rooms, roomID)
}

func (r *Registry) Rooms() []*RoomCache {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*RoomCache, 0, len(r.rooms))
	for _, room := range r.rooms {
		out = append(out, room)
	}
	return out
}

func (r *Registry) RoomCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}

func (r *Registry) PutUser(user *ConnectedUser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ConnID] = user
}

func (r *Registry) User(connID string) (*ConnectedUser, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[connID]
	return u, ok
}

// Forget removes whichever live entry matches the connection and returns what
// was removed; the disconnect handler decides the durable follow-up.
func (r *Registry) Forget(connID string) (*ActiveAgent, *ConnectedUser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	agent := r.agents[connID]
	delete(r.agents, connID)
	user := r.users[connID]
	delete(r.users, connID)
	return agent, user
}
