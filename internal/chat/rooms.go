package chat

import (
	"context"
	"log"

	"livechat-backend/internal/model"
	"livechat-backend/internal/registry"
)

// HandleJoinRoom performs the waiting->active transition for an agent's
// explicit join. Re-joining a room the agent already holds is a no-op
// success; a room held by a different agent leaves state unchanged.
func (rl *Relay) HandleJoinRoom(ctx context.Context, conn Conn, p JoinRoomPayload) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	room, ok := rl.reg.Room(p.RoomID)
	if !ok {
		log.Printf("join_room: room not found: %s", p.RoomID)
		return
	}
	agent, ok := rl.reg.Agent(conn.ID())
	if !ok {
		log.Printf("join_room: agent not found: %s", conn.ID())
		return
	}
	if agent.DBID == nil {
		// Anonymous agents have no durable identity to assign.
		return
	}

	if room.AssignedAgentID != nil {
		if *room.AssignedAgentID == *agent.DBID {
			// Idempotent re-join: no second system message, no writes.
			rl.emitHistory(ctx, conn, p.RoomID)
			return
		}
		return
	}

	won, err := rl.repo.AssignRoom(ctx, p.RoomID, *agent.DBID)
	if err != nil {
		log.Printf("join_room: assign room %s to agent %d: %v", p.RoomID, *agent.DBID, err)
		return
	}
	if !won {
		// Another agent's conditional write landed first. The registry may
		// lag until the refresh below; this connection keeps nothing.
		conn.Emit(EventAvailableRooms, rl.availableRooms(ctx))
		return
	}

	assigned := *agent.DBID
	room.AssignedAgentID = &assigned
	room.Status = model.RoomStatusActive
	agent.Rooms[p.RoomID] = struct{}{}

	if err := rl.repo.UpdateAgentStatus(ctx, *agent.DBID, model.AgentStatusBusy); err != nil {
		log.Printf("join_room: set agent %d busy: %v", *agent.DBID, err)
	}
	agent.Status = model.AgentStatusBusy

	rl.persistSystemMessage(ctx, p.RoomID, model.AgentSender(*agent.DBID), agent.Name+" has joined the chat.")
	log.Printf("Agent %s joined room %s", agent.Name, p.RoomID)

	if userConn, ok := rl.conns[room.UserSocketID]; ok && room.UserSocketID != "" {
		userConn.Emit(EventAgentJoined, AgentJoinedPayload{
			AgentID:   conn.ID(),
			AgentName: agent.Name,
		})
	}

	rl.emitHistory(ctx, conn, p.RoomID)
	rl.pushAvailableRooms(ctx)
}

// HandleLeaveRoom performs the active->waiting transition for an explicit
// leave; the room becomes assignable again.
func (rl *Relay) HandleLeaveRoom(ctx context.Context, conn Conn, p LeaveRoomPayload) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	room, ok := rl.reg.Room(p.RoomID)
	if !ok {
		conn.Emit(EventRoomLeft, RoomLeftPayload{Success: false, RoomID: p.RoomID, Error: "Room not found"})
		return
	}
	agent, ok := rl.reg.Agent(conn.ID())
	if !ok {
		conn.Emit(EventRoomLeft, RoomLeftPayload{Success: false, RoomID: p.RoomID, Error: "Agent not found"})
		return
	}

	if !rl.holdsRoom(agent, room) {
		conn.Emit(EventRoomLeft, RoomLeftPayload{Success: false, RoomID: p.RoomID, Error: "Room not assigned to agent"})
		return
	}

	rl.releaseRoom(ctx, p.RoomID, agent, agent.Name+" has left the chat.")
	delete(agent.Rooms, p.RoomID)

	if len(agent.Rooms) == 0 && agent.DBID != nil {
		if err := rl.repo.UpdateAgentStatus(ctx, *agent.DBID, model.AgentStatusOnline); err != nil {
			log.Printf("leave_room: set agent %d online: %v", *agent.DBID, err)
		}
		agent.Status = model.AgentStatusOnline
	}

	conn.Emit(EventRoomLeft, RoomLeftPayload{
		Success:        true,
		RoomID:         p.RoomID,
		AvailableRooms: rl.availableRooms(ctx),
	})
	rl.pushAvailableRooms(ctx)
}

// HandleCloseRoom is the explicit terminal transition; both agents and
// visitors may close a room.
func (rl *Relay) HandleCloseRoom(ctx context.Context, conn Conn, p CloseRoomPayload) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	room, ok := rl.reg.Room(p.RoomID)
	if !ok {
		conn.Emit(EventRoomLeft, RoomLeftPayload{Success: false, RoomID: p.RoomID, Error: "Room not found"})
		return
	}

	closerName := p.AgentName
	agent, isAgent := rl.reg.Agent(conn.ID())
	if isAgent && closerName == "" {
		closerName = agent.Name
	}
	if closerName == "" {
		closerName = "the agent"
	}
	reason := p.Reason
	if reason == "" {
		reason = "agent_closed"
	}

	if err := rl.repo.CloseRoom(ctx, p.RoomID); err != nil {
		log.Printf("close_room: room %s: %v", p.RoomID, err)
		conn.Emit(EventRoomLeft, RoomLeftPayload{Success: false, RoomID: p.RoomID, Error: "Failed to close room"})
		return
	}

	closedMsg := "This conversation has been closed by " + closerName + "."
	rl.persistSystemMessage(ctx, p.RoomID, model.SystemSender(), closedMsg)

	if room.UserSocketID != "" && room.UserSocketID != conn.ID() {
		if userConn, ok := rl.conns[room.UserSocketID]; ok {
			userConn.Emit(EventChatClosed, ChatClosedPayload{Reason: reason, Message: closedMsg})
		}
	}

	if isAgent {
		delete(agent.Rooms, p.RoomID)
		if len(agent.Rooms) == 0 && agent.DBID != nil && agent.Status == model.AgentStatusBusy {
			if err := rl.repo.UpdateAgentStatus(ctx, *agent.DBID, model.AgentStatusOnline); err != nil {
				log.Printf("close_room: set agent %d online: %v", *agent.DBID, err)
			}
			agent.Status = model.AgentStatusOnline
		}
	}

	rl.reg.RemoveRoom(p.RoomID)
	trackedRooms.Set(float64(rl.reg.RoomCount()))

	conn.Emit(EventRoomLeft, RoomLeftPayload{
		Success:        true,
		RoomID:         p.RoomID,
		AvailableRooms: rl.availableRooms(ctx),
	})
	rl.pushAvailableRooms(ctx)
}

// releaseRoom clears an assignment and notifies the attached visitor. The
// caller owns the agent's Rooms set and the follow-up status change.
func (rl *Relay) releaseRoom(ctx context.Context, roomID string, agent *registry.ActiveAgent, systemMessage string) {
	room, ok := rl.reg.Room(roomID)
	if !ok {
		return
	}
	if room.AssignedAgentID == nil || agent.DBID == nil || *room.AssignedAgentID != *agent.DBID {
		return
	}

	if err := rl.repo.UnassignRoom(ctx, roomID); err != nil {
		log.Printf("release room %s: %v", roomID, err)
		return
	}
	room.AssignedAgentID = nil
	room.Status = model.RoomStatusWaiting

	rl.persistSystemMessage(ctx, roomID, model.AgentSender(*agent.DBID), systemMessage)

	if room.UserSocketID != "" {
		if userConn, ok := rl.conns[room.UserSocketID]; ok {
			userConn.Emit(EventAgentLeft, nil)
		}
	}
}

// HandleAgentRemoved reacts to an agent row being deleted out-of-band, for
// example through the admin API. The durable unassignment already happened in
// the same transaction as the delete; this updates the live view and tells any
// attached visitors their agent is gone.
func (rl *Relay) HandleAgentRemoved(ctx context.Context, agentID uint, roomIDs []string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if agent, ok := rl.reg.AgentByDBID(agentID); ok {
		agent.Rooms = make(map[string]struct{})
		agent.DBID = nil
		agent.Status = model.AgentStatusOffline
	}

	for _, roomID := range roomIDs {
		room, ok := rl.reg.Room(roomID)
		if !ok {
			continue
		}
		room.AssignedAgentID = nil
		room.Status = model.RoomStatusWaiting

		if room.UserSocketID != "" {
			if userConn, ok := rl.conns[room.UserSocketID]; ok {
				userConn.Emit(EventAgentLeft, nil)
			}
		}
	}

	rl.pushAvailableRooms(ctx)
}

func (rl *Relay) holdsRoom(agent *registry.ActiveAgent, room *registry.RoomCache) bool {
	if agent.HoldsRoom(room.ID) {
		return true
	}
	return room.AssignedAgentID != nil && agent.DBID != nil && *room.AssignedAgentID == *agent.DBID
}

func (rl *Relay) emitHistory(ctx context.Context, conn Conn, roomID string) {
	messages, err := rl.repo.ListMessages(ctx, roomID)
	if err != nil {
		log.Printf("chat history for room %s: %v", roomID, err)
		messages = nil
	}
	if messages == nil {
		messages = []model.ChatMessage{}
	}
	conn.Emit(EventChatHistory, messages)
}
