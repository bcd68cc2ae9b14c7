package chat

import (
	"context"
	"encoding/json"
	"log"
)

// Dispatch decodes one inbound frame and routes it to its handler. Frames
// that do not decode, and events nobody handles, are dropped without a reply.
func (rl *Relay) Dispatch(ctx context.Context, conn Conn, frame []byte) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		log.Printf("dispatch: drop undecodable frame from %s: %v", conn.ID(), err)
		return
	}

	switch env.Event {
	case EventRegisterAgent:
		var p RegisterAgentPayload
		if decode(env.Data, &p) {
			rl.HandleRegisterAgent(ctx, conn, p)
		}
	case EventRequestAgent:
		var p RequestAgentPayload
		if decode(env.Data, &p) {
			rl.HandleRequestAgent(ctx, conn, p)
		}
	case EventJoinRoom:
		var p JoinRoomPayload
		if decode(env.Data, &p) {
			rl.HandleJoinRoom(ctx, conn, p)
		}
	case EventLeaveRoom:
		var p LeaveRoomPayload
		if decode(env.Data, &p) {
			rl.HandleLeaveRoom(ctx, conn, p)
		}
	case EventCloseRoom:
		var p CloseRoomPayload
		if decode(env.Data, &p) {
			rl.HandleCloseRoom(ctx, conn, p)
		}
	case EventSendMessage:
		var p SendMessagePayload
		if decode(env.Data, &p) {
			rl.HandleSendMessage(ctx, conn, p)
		}
	case EventGetChatHistory:
		var p GetChatHistoryPayload
		if decode(env.Data, &p) {
			rl.HandleGetChatHistory(ctx, conn, p)
		}
	case EventUpdateAgentStatus:
		var p UpdateAgentStatusPayload
		if decode(env.Data, &p) {
			rl.HandleUpdateAgentStatus(ctx, conn, p)
		}
	case EventGetAgentStatus:
		rl.HandleGetAgentStatus(ctx, conn)
	case EventGetAvailableRooms:
		rl.HandleGetAvailableRooms(ctx, conn)
	default:
		log.Printf("dispatch: unknown event %q from %s", env.Event, conn.ID())
	}
}

func decode(raw json.RawMessage, out interface{}) bool {
	if len(raw) == 0 {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		log.Printf("dispatch: drop malformed payload: %v", err)
		return false
	}
	return true
}
