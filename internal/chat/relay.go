package chat

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"livechat-backend/internal/model"
	"livechat-backend/internal/registry"
)

const (
	welcomeMessage      = "Welcome to the chat. How can we help you today?"
	connectingMessage   = "Connecting you to a support agent. Please wait a moment..."
	noAgentsMessage     = "We're sorry, but there are no support agents available at the moment. Please try again later or continue chatting with our AI assistant."
	agentGoneMessage    = "The support agent has disconnected."
	userGoneMessage     = "The user has disconnected."
	defaultUserName     = "User"
	lastMessageMaxBytes = 255
)

// abandonedRoomDelay is how long an unassigned room survives after its
// visitor disconnects before the relay closes it.
const abandonedRoomDelay = 5 * time.Minute

// Conn is one realtime connection. Emit is fire-and-forget: no ack, no
// retry, no cross-connection ordering guarantee.
type Conn interface {
	ID() string
	Emit(event string, payload interface{})
}

// Mirror receives a copy of room-scoped broadcasts for out-of-process
// consumers (dashboards). Delivery is best-effort and never gates the
// in-process fan-out.
type Mirror interface {
	Publish(channel string, payload interface{})
}

// Relay owns the presence registry and runs every realtime event handler.
// Handlers are serialized by the mutex: one event runs to completion,
// including its database calls, before the next starts.
type Relay struct {
	mu         sync.Mutex
	repo       Repository
	reg        *registry.Registry
	conns      map[string]Conn
	mirror     Mirror
	now        func() time.Time
	closeDelay time.Duration
}

func NewRelay(repo Repository, reg *registry.Registry) *Relay {
	return &Relay{
		repo:       repo,
		reg:        reg,
		conns:      make(map[string]Conn),
		now:        time.Now,
		closeDelay: abandonedRoomDelay,
	}
}

// SetMirror wires the optional redis event mirror.
func (rl *Relay) SetMirror(m Mirror) {
	rl.mirror = m
}

// LoadOpenRooms rebuilds the room side of the registry from durable state.
// Agent and user entries are not reloaded; their connections are gone.
func (rl *Relay) LoadOpenRooms(ctx context.Context) error {
	rooms, err := rl.repo.ListOpenRooms(ctx)
	if err != nil {
		return err
	}
	for _, room := range rooms {
		rl.reg.PutRoom(&registry.RoomCache{
			ID:              room.ID,
			UserName:        room.UserName,
			Status:          room.Status,
			AssignedAgentID: room.AssignedAgentID,
			LastMessage:     room.LastMessage,
			CreatedAt:       room.CreatedAt.Unix(),
		})
	}
	log.Printf("Loaded %d open rooms into the registry", len(rooms))
	trackedRooms.Set(float64(rl.reg.RoomCount()))
	return nil
}

// HandleRegisterAgent registers a connection as an agent. If a durable agent
// row matches by name its status flips to online; otherwise the connection
// is tracked as an anonymous agent with no durable id.
func (rl *Relay) HandleRegisterAgent(ctx context.Context, conn Conn, p RegisterAgentPayload) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	name := p.AgentName
	if name == "" {
		name = "Support Agent"
	}

	var dbID *uint
	agentRow, err := rl.repo.GetAgentByName(ctx, name)
	switch {
	case err == nil:
		id := agentRow.ID
		dbID = &id
		if err := rl.repo.UpdateAgentStatus(ctx, agentRow.ID, model.AgentStatusOnline); err != nil {
			log.Printf("register_agent: set agent %d online: %v", agentRow.ID, err)
			return
		}
	case errors.Is(err, ErrNotFound):
		// Anonymous agent: live connection only, no durable row.
	default:
		log.Printf("register_agent: lookup %q: %v", name, err)
		return
	}

	rl.conns[conn.ID()] = conn
	rl.reg.PutAgent(&registry.ActiveAgent{
		ConnID: conn.ID(),
		DBID:   dbID,
		Name:   name,
		Status: model.AgentStatusOnline,
		Rooms:  make(map[string]struct{}),
	})
	log.Printf("Agent registered: %s (%s)", name, conn.ID())

	conn.Emit(EventAgentStatus, model.AgentStatusOnline)
	conn.Emit(EventAvailableRooms, rl.availableRooms(ctx))
}

// HandleRequestAgent handles a visitor asking for a human agent. The room is
// created durable-first if unseen, otherwise reattached and put back to
// waiting.
func (rl *Relay) HandleRequestAgent(ctx context.Context, conn Conn, p RequestAgentPayload) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if p.RoomID == "" {
		return
	}
	userName := p.UserName
	if userName == "" {
		userName = defaultUserName
	}

	rl.conns[conn.ID()] = conn
	rl.reg.PutUser(&registry.ConnectedUser{
		ConnID:   conn.ID(),
		RoomID:   p.RoomID,
		UserName: userName,
	})

	socketID := conn.ID()
	room, err := rl.repo.GetRoom(ctx, p.RoomID)
	switch {
	case errors.Is(err, ErrNotFound):
		room = model.ChatRoom{
			ID:           p.RoomID,
			UserSocketID: &socketID,
			UserName:     userName,
			Status:       model.RoomStatusWaiting,
		}
		if err := rl.repo.CreateRoom(ctx, room); err != nil {
			log.Printf("request_agent: create room %s: %v", p.RoomID, err)
			return
		}
		rl.persistSystemMessage(ctx, p.RoomID, model.SystemSender(), welcomeMessage)
	case err != nil:
		log.Printf("request_agent: load room %s: %v", p.RoomID, err)
		return
	default:
		if err := rl.repo.ReopenRoom(ctx, p.RoomID, socketID); err != nil {
			log.Printf("request_agent: reopen room %s: %v", p.RoomID, err)
			return
		}
	}

	rl.persistSystemMessage(ctx, p.RoomID, model.SystemSender(), connectingMessage)

	cache := &registry.RoomCache{
		ID:           p.RoomID,
		UserSocketID: socketID,
		UserName:     userName,
		Status:       model.RoomStatusWaiting,
		LastMessage:  lastHistoryContent(p.ChatHistory),
		CreatedAt:    rl.roomCreatedAt(room),
	}
	rl.reg.PutRoom(cache)
	trackedRooms.Set(float64(rl.reg.RoomCount()))

	online, err := rl.repo.CountOnlineAgents(ctx)
	if err != nil {
		log.Printf("request_agent: count online agents: %v", err)
		return
	}
	if online == 0 {
		conn.Emit(EventNoAgentsAvailable, nil)
		rl.persistSystemMessage(ctx, p.RoomID, model.SystemSender(), noAgentsMessage)
		return
	}

	rl.broadcastToAgents(EventAgentNotification, AgentNotification{
		Type:      "new_room",
		Message:   "New support request from " + userName,
		Timestamp: rl.now().UTC().Format(time.RFC3339),
		RoomID:    p.RoomID,
	})
	rl.pushAvailableRooms(ctx)
}

// HandleSendMessage persists and fans out one chat message. Malformed
// payloads and unknown rooms are dropped without a reply.
func (rl *Relay) HandleSendMessage(ctx context.Context, conn Conn, p SendMessagePayload) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if p.RoomID == "" || p.Content == "" {
		return
	}
	room, ok := rl.reg.Room(p.RoomID)
	if !ok {
		return
	}

	sender := rl.senderFor(conn, p)
	senderName := p.SenderName
	if senderName == "" {
		senderName = string(p.Role)
	}

	message := &model.ChatMessage{
		RoomID:     p.RoomID,
		SenderID:   sender.ID(),
		SenderName: senderName,
		Content:    p.Content,
		Role:       p.Role,
		CreatedAt:  rl.now().UTC(),
	}
	if err := rl.repo.CreateMessage(ctx, message); err != nil {
		log.Printf("send_message: persist in room %s: %v", p.RoomID, err)
		return
	}
	if err := rl.repo.TouchRoom(ctx, p.RoomID, truncate(p.Content, lastMessageMaxBytes)); err != nil {
		log.Printf("send_message: touch room %s: %v", p.RoomID, err)
		return
	}
	room.LastMessage = truncate(p.Content, lastMessageMaxBytes)
	messagesRelayed.Inc()

	// Participants only: the attached visitor and the assigned agent.
	if room.UserSocketID != "" {
		if userConn, ok := rl.conns[room.UserSocketID]; ok {
			userConn.Emit(EventNewMessage, message)
		}
	}
	if room.AssignedAgentID != nil {
		if agent, ok := rl.reg.AgentByDBID(*room.AssignedAgentID); ok {
			if agentConn, ok := rl.conns[agent.ConnID]; ok && agent.ConnID != room.UserSocketID {
				agentConn.Emit(EventNewMessage, message)
			}
		}
	}
	rl.publishMirror(p.RoomID, message)

	if p.Role == model.RoleUser && room.AssignedAgentID != nil {
		rl.broadcastToAgents(EventAgentNotification, AgentNotification{
			Type:      "new_message",
			Message:   "New message from " + senderName + " in room " + shortID(p.RoomID),
			Timestamp: rl.now().UTC().Format(time.RFC3339),
			RoomID:    p.RoomID,
		})
	}
}

// HandleGetChatHistory replies with the full ordered history, possibly empty.
func (rl *Relay) HandleGetChatHistory(ctx context.Context, conn Conn, p GetChatHistoryPayload) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	messages, err := rl.repo.ListMessages(ctx, p.RoomID)
	if err != nil {
		log.Printf("get_chat_history: room %s: %v", p.RoomID, err)
		conn.Emit(EventChatHistory, []model.ChatMessage{})
		return
	}
	if messages == nil {
		messages = []model.ChatMessage{}
	}
	conn.Emit(EventChatHistory, messages)
}

// HandleUpdateAgentStatus updates the durable agent status. Going offline
// releases every room the agent holds, as if the connection had dropped.
func (rl *Relay) HandleUpdateAgentStatus(ctx context.Context, conn Conn, p UpdateAgentStatusPayload) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	agent, ok := rl.reg.Agent(conn.ID())
	if !ok {
		conn.Emit(EventStatusUpdated, StatusUpdatedPayload{Success: false, Error: "Agent not found"})
		return
	}
	switch p.Status {
	case model.AgentStatusOnline, model.AgentStatusOffline, model.AgentStatusBusy:
	default:
		return
	}

	agent.Status = p.Status
	if agent.DBID != nil {
		if err := rl.repo.UpdateAgentStatus(ctx, *agent.DBID, p.Status); err != nil {
			log.Printf("update_agent_status: agent %d: %v", *agent.DBID, err)
			conn.Emit(EventStatusUpdated, StatusUpdatedPayload{Success: false, Error: "Failed to update status"})
			return
		}
	}

	switch p.Status {
	case model.AgentStatusOffline:
		for roomID := range agent.Rooms {
			rl.releaseRoom(ctx, roomID, agent, agent.Name+" has gone offline.")
		}
		agent.Rooms = make(map[string]struct{})
		rl.pushAvailableRooms(ctx)
	case model.AgentStatusOnline:
		rl.pushAvailableRooms(ctx)
	}

	conn.Emit(EventStatusUpdated, StatusUpdatedPayload{Success: true, Status: p.Status})
}

// HandleGetAgentStatus replies with the caller's durable status. Anonymous
// agents and lookup failures default to online rather than erroring.
func (rl *Relay) HandleGetAgentStatus(ctx context.Context, conn Conn) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	agent, ok := rl.reg.Agent(conn.ID())
	if !ok || agent.DBID == nil {
		conn.Emit(EventAgentStatus, model.AgentStatusOnline)
		return
	}
	row, err := rl.repo.GetAgent(ctx, *agent.DBID)
	if err != nil {
		log.Printf("get_agent_status: agent %d: %v", *agent.DBID, err)
		conn.Emit(EventAgentStatus, model.AgentStatusOnline)
		return
	}
	conn.Emit(EventAgentStatus, row.Status)
}

// HandleGetAvailableRooms re-sends the current waiting-room snapshot.
func (rl *Relay) HandleGetAvailableRooms(ctx context.Context, conn Conn) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	conn.Emit(EventAvailableRooms, rl.availableRooms(ctx))
}

// HandleDisconnect reconciles the registry after a connection drops and
// performs the implicit departure transitions.
func (rl *Relay) HandleDisconnect(ctx context.Context, conn Conn) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	delete(rl.conns, conn.ID())
	agent, user := rl.reg.Forget(conn.ID())

	if agent != nil {
		for roomID := range agent.Rooms {
			rl.releaseRoom(ctx, roomID, agent, agentGoneMessage)
		}
		if agent.DBID != nil {
			if err := rl.repo.UpdateAgentStatus(ctx, *agent.DBID, model.AgentStatusOffline); err != nil {
				log.Printf("disconnect: set agent %d offline: %v", *agent.DBID, err)
			}
		}
		log.Printf("Agent %s disconnected", agent.Name)
		rl.pushAvailableRooms(ctx)
	}

	if user != nil {
		room, ok := rl.reg.Room(user.RoomID)
		if !ok {
			return
		}
		if err := rl.repo.ClearRoomUserSocket(ctx, user.RoomID); err != nil {
			log.Printf("disconnect: clear user socket for room %s: %v", user.RoomID, err)
		}
		room.UserSocketID = ""

		if room.AssignedAgentID != nil {
			rl.persistSystemMessage(ctx, user.RoomID, model.SystemSender(), userGoneMessage)
			if assignee, ok := rl.reg.AgentByDBID(*room.AssignedAgentID); ok {
				if agentConn, ok := rl.conns[assignee.ConnID]; ok {
					agentConn.Emit(EventUserDisconnected, UserDisconnectedPayload{
						RoomID:   user.RoomID,
						UserName: user.UserName,
					})
				}
			}
		} else {
			// One-shot timer; never cancelled. It re-reads durable state when
			// it fires, which is how a reconnect within the window wins.
			roomID := user.RoomID
			time.AfterFunc(rl.closeDelay, func() {
				rl.closeIfAbandoned(context.Background(), roomID)
			})
		}
	}
}

// closeIfAbandoned closes a room whose visitor never came back. Decision is
// made on fresh durable state, not the registry.
func (rl *Relay) closeIfAbandoned(ctx context.Context, roomID string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	room, err := rl.repo.GetRoom(ctx, roomID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Printf("abandoned-room check: room %s: %v", roomID, err)
		}
		return
	}
	if room.Status == model.RoomStatusClosed || room.UserSocketID != nil {
		return
	}
	if err := rl.repo.CloseRoom(ctx, roomID); err != nil {
		log.Printf("abandoned-room check: close room %s: %v", roomID, err)
		return
	}
	rl.reg.RemoveRoom(roomID)
	trackedRooms.Set(float64(rl.reg.RoomCount()))
	log.Printf("Closed abandoned room %s", roomID)
	rl.pushAvailableRooms(ctx)
}

// senderFor derives the tagged sender identity, preferring what the registry
// knows about the connection over the client-supplied senderId.
func (rl *Relay) senderFor(conn Conn, p SendMessagePayload) model.Sender {
	if agent, ok := rl.reg.Agent(conn.ID()); ok && agent.DBID != nil {
		return model.AgentSender(*agent.DBID)
	}
	if _, ok := rl.reg.User(conn.ID()); ok {
		return model.UserSender(conn.ID())
	}
	if p.Role == model.RoleSystem || p.Role == model.RoleAssistant {
		return model.SystemSender()
	}
	return model.ParseSender(p.SenderID)
}

func (rl *Relay) persistSystemMessage(ctx context.Context, roomID string, sender model.Sender, content string) {
	message := &model.ChatMessage{
		RoomID:     roomID,
		SenderID:   sender.ID(),
		SenderName: "System",
		Content:    content,
		Role:       model.RoleSystem,
		CreatedAt:  rl.now().UTC(),
	}
	if err := rl.repo.CreateMessage(ctx, message); err != nil {
		log.Printf("system message in room %s: %v", roomID, err)
	}
}

func (rl *Relay) publishMirror(channel string, payload interface{}) {
	if rl.mirror == nil {
		return
	}
	rl.mirror.Publish(channel, payload)
}

func (rl *Relay) roomCreatedAt(room model.ChatRoom) int64 {
	if room.ID == "" || room.CreatedAt.IsZero() {
		return rl.now().UTC().Unix()
	}
	return room.CreatedAt.Unix()
}

func lastHistoryContent(history []HistoryMessage) string {
	if len(history) == 0 {
		return "Requested agent support"
	}
	return truncate(history[len(history)-1].Content, lastMessageMaxBytes)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "..."
}
