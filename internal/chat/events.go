package chat

import (
	"encoding/json"

	"livechat-backend/internal/model"
)

// Events received from clients.
const (
	EventRegisterAgent     = "register_agent"
	EventRequestAgent      = "request_agent"
	EventJoinRoom          = "join_room"
	EventLeaveRoom         = "leave_room"
	EventCloseRoom         = "close_room"
	EventSendMessage       = "send_message"
	EventGetChatHistory    = "get_chat_history"
	EventUpdateAgentStatus = "update_agent_status"
	EventGetAgentStatus    = "get_agent_status"
	EventGetAvailableRooms = "get_available_rooms"
)

// Events emitted to clients.
const (
	EventAvailableRooms    = "available_rooms"
	EventAgentNotification = "agent_notification"
	EventChatHistory       = "chat_history"
	EventNewMessage        = "new_message"
	EventAgentJoined       = "agent_joined"
	EventAgentLeft         = "agent_left"
	EventUserDisconnected  = "user_disconnected"
	EventNoAgentsAvailable = "no_agents_available"
	EventStatusUpdated     = "status_updated"
	EventAgentStatus       = "agent_status"
	EventChatClosed        = "chat_closed"
	EventRoomLeft          = "room_left"
)

// Envelope is the wire frame for both directions: {"event": ..., "data": ...}.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type RegisterAgentPayload struct {
	AgentID   string `json:"agentId"`
	AgentName string `json:"agentName"`
}

type HistoryMessage struct {
	Role       string `json:"role"`
	Content    string `json:"content"`
	SenderName string `json:"senderName,omitempty"`
}

type RequestAgentPayload struct {
	RoomID      string           `json:"roomId"`
	UserID      string           `json:"userId"`
	UserName    string           `json:"userName"`
	ChatHistory []HistoryMessage `json:"chatHistory"`
}

type JoinRoomPayload struct {
	RoomID  string `json:"roomId"`
	AgentID string `json:"agentId"`
}

type LeaveRoomPayload struct {
	RoomID  string `json:"roomId"`
	AgentID string `json:"agentId"`
	Reason  string `json:"reason,omitempty"`
}

type CloseRoomPayload struct {
	RoomID    string `json:"roomId"`
	AgentID   string `json:"agentId"`
	AgentName string `json:"agentName,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

type SendMessagePayload struct {
	RoomID     string            `json:"roomId"`
	Role       model.MessageRole `json:"role"`
	Content    string            `json:"content"`
	SenderID   string            `json:"senderId"`
	SenderName string            `json:"senderName"`
}

type GetChatHistoryPayload struct {
	RoomID string `json:"roomId"`
}

type UpdateAgentStatusPayload struct {
	AgentID string            `json:"agentId"`
	Status  model.AgentStatus `json:"status"`
}

// AvailableRoom is one entry of the available_rooms push.
type AvailableRoom struct {
	ID          string `json:"id"`
	UserName    string `json:"userName"`
	LastMessage string `json:"lastMessage"`
	WaitTime    string `json:"waitTime"`
}

type AgentJoinedPayload struct {
	AgentID   string `json:"agentId"`
	AgentName string `json:"agentName"`
}

type AgentNotification struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	RoomID    string `json:"roomId,omitempty"`
}

type UserDisconnectedPayload struct {
	RoomID   string `json:"roomId"`
	UserName string `json:"userName"`
}

type StatusUpdatedPayload struct {
	Success bool              `json:"success"`
	Status  model.AgentStatus `json:"status,omitempty"`
	Error   string            `json:"error,omitempty"`
}

type ChatClosedPayload struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type RoomLeftPayload struct {
	Success        bool            `json:"success"`
	RoomID         string          `json:"roomId"`
	Error          string          `json:"error,omitempty"`
	AvailableRooms []AvailableRoom `json:"availableRooms,omitempty"`
}
