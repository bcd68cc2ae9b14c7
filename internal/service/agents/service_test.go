package agents

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"livechat-backend/internal/model"

	"golang.org/x/crypto/bcrypt"
)

type memoryRepository struct {
	mu       sync.Mutex
	users    map[uint]model.AgentUser
	agents   map[uint]model.Agent
	rooms    map[string]model.ChatRoom
	nextUser uint
	nextID   uint
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		users:  make(map[uint]model.AgentUser),
		agents: make(map[uint]model.Agent),
		rooms:  make(map[string]model.ChatRoom),
	}
}

func (m *memoryRepository) CreateAgentWithUser(ctx context.Context, user *model.AgentUser, agent *model.Agent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextUser++
	user.ID = m.nextUser
	m.users[user.ID] = *user

	m.nextID++
	agent.ID = m.nextID
	agent.UserID = user.ID
	m.agents[agent.ID] = *agent
	return nil
}

func (m *memoryRepository) GetAgent(ctx context.Context, id uint) (model.Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	agent, ok := m.agents[id]
	if !ok {
		return model.Agent{}, ErrNotFound
	}
	return agent, nil
}

func (m *memoryRepository) GetAgentByName(ctx context.Context, name string) (model.Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, agent := range m.agents {
		if agent.AgentName == name {
			return agent, nil
		}
	}
	return model.Agent{}, ErrNotFound
}

func (m *memoryRepository) GetUserByUsername(ctx context.Context, username string) (model.AgentUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Username == username {
			return user, nil
		}
	}
	return model.AgentUser{}, ErrNotFound
}

func (m *memoryRepository) ListAgents(ctx context.Context) ([]model.Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Agent, 0, len(m.agents))
	for _, agent := range m.agents {
		out = append(out, agent)
	}
	return out, nil
}

func (m *memoryRepository) UpdateAgent(ctx context.Context, agent model.Agent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.agents[agent.ID]
	if !ok {
		return ErrNotFound
	}
	existing.AgentName = agent.AgentName
	existing.Status = agent.Status
	m.agents[agent.ID] = existing
	return nil
}

func (m *memoryRepository) DeleteAgentCascade(ctx context.Context, id uint) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	agent, ok := m.agents[id]
	if !ok {
		return nil, ErrNotFound
	}

	var released []string
	for roomID, room := range m.rooms {
		if room.AssignedAgentID != nil && *room.AssignedAgentID == id {
			room.AssignedAgentID = nil
			room.Status = model.RoomStatusWaiting
			m.rooms[roomID] = room
			released = append(released, roomID)
		}
	}

	delete(m.agents, id)
	delete(m.users, agent.UserID)
	return released, nil
}

func newTestService(repo Repository) *Service {
	return NewWithRepository(repo, func() time.Time {
		return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	})
}

func mustCreateAgent(t *testing.T, svc *Service, username, password, agentName string) model.Agent {
	t.Helper()
	agent, err := svc.CreateAgent(context.Background(), CreateAgentParams{
		Username:  username,
		Email:     username + "@example.com",
		Password:  password,
		AgentName: agentName,
	})
	if err != nil {
		t.Fatalf("CreateAgent: %v", err)
	}
	return agent
}

func assertErrorCode(t *testing.T, err error, code ErrorCode) {
	t.Helper()
	var svcErr *Error
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if svcErr.Code != code {
		t.Fatalf("error code = %s, want %s", svcErr.Code, code)
	}
}

func TestCreateAgentHashesPassword(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)

	agent := mustCreateAgent(t, svc, "alice", "s3cret", "Alice")
	if agent.Status != model.AgentStatusOffline {
		t.Fatalf("new agents start offline, got %s", agent.Status)
	}

	user, err := repo.GetUserByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatal(err)
	}
	if user.PasswordHash == "s3cret" {
		t.Fatal("password must not be stored in plain text")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret")) != nil {
		t.Fatal("stored hash should verify the original password")
	}
}

func TestCreateAgentValidation(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)

	_, err := svc.CreateAgent(context.Background(), CreateAgentParams{Username: "", Password: "x"})
	assertErrorCode(t, err, ErrorCodeValidation)

	_, err = svc.CreateAgent(context.Background(), CreateAgentParams{Username: "alice", Password: ""})
	assertErrorCode(t, err, ErrorCodeValidation)
}

func TestCreateAgentRejectsDuplicateName(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)
	mustCreateAgent(t, svc, "alice", "pw", "Alice")

	_, err := svc.CreateAgent(context.Background(), CreateAgentParams{
		Username:  "alice2",
		Password:  "pw",
		AgentName: "Alice",
	})
	assertErrorCode(t, err, ErrorCodeConflict)
}

func TestLogin(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)
	created := mustCreateAgent(t, svc, "alice", "s3cret", "Alice")

	result, err := svc.Login(context.Background(), LoginParams{Username: "alice", Password: "s3cret"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.Agent.ID != created.ID {
		t.Fatalf("logged in agent id = %d, want %d", result.Agent.ID, created.ID)
	}
	if result.Token == "" {
		t.Fatal("login should return a token")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)
	mustCreateAgent(t, svc, "alice", "s3cret", "Alice")

	_, err := svc.Login(context.Background(), LoginParams{Username: "alice", Password: "wrong"})
	assertErrorCode(t, err, ErrorCodeUnauthorized)

	_, err = svc.Login(context.Background(), LoginParams{Username: "nobody", Password: "x"})
	assertErrorCode(t, err, ErrorCodeUnauthorized)
}

func TestUpdateAgent(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)
	created := mustCreateAgent(t, svc, "alice", "pw", "Alice")

	updated, err := svc.UpdateAgent(context.Background(), UpdateAgentParams{
		ID:     created.ID,
		Status: model.AgentStatusOnline,
	})
	if err != nil {
		t.Fatalf("UpdateAgent: %v", err)
	}
	if updated.Status != model.AgentStatusOnline {
		t.Fatalf("status = %s, want online", updated.Status)
	}
	if updated.AgentName != "Alice" {
		t.Fatal("omitting the name must keep the old one")
	}

	_, err = svc.UpdateAgent(context.Background(), UpdateAgentParams{ID: created.ID, Status: "away"})
	assertErrorCode(t, err, ErrorCodeValidation)

	_, err = svc.UpdateAgent(context.Background(), UpdateAgentParams{ID: 999})
	assertErrorCode(t, err, ErrorCodeNotFound)
}

func TestDeleteAgentCascade(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)
	created := mustCreateAgent(t, svc, "alice", "pw", "Alice")

	assigned := created.ID
	repo.rooms["room-1"] = model.ChatRoom{
		ID: "room-1", Status: model.RoomStatusActive, AssignedAgentID: &assigned,
	}
	repo.rooms["room-2"] = model.ChatRoom{
		ID: "room-2", Status: model.RoomStatusWaiting,
	}

	result, err := svc.DeleteAgent(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("DeleteAgent: %v", err)
	}
	if len(result.ReleasedRooms) != 1 || result.ReleasedRooms[0] != "room-1" {
		t.Fatalf("released rooms = %v, want [room-1]", result.ReleasedRooms)
	}

	if _, err := repo.GetAgent(context.Background(), created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatal("agent row should be gone")
	}
	if _, err := repo.GetUserByUsername(context.Background(), "alice"); !errors.Is(err, ErrNotFound) {
		t.Fatal("login user should be gone with the agent")
	}

	room := repo.rooms["room-1"]
	if room.AssignedAgentID != nil || room.Status != model.RoomStatusWaiting {
		t.Fatalf("released room should be waiting and unassigned, got %s %v", room.Status, room.AssignedAgentID)
	}

	_, err = svc.DeleteAgent(context.Background(), created.ID)
	assertErrorCode(t, err, ErrorCodeNotFound)
}
