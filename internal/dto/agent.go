package dto

import "livechat-backend/internal/model"

type CreateAgentRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	AgentName string `json:"agentName"`
}

type AgentLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AgentLoginResponse struct {
	AccessToken string        `json:"accessToken"`
	Agent       AgentResponse `json:"agent"`
}

type AgentResponse struct {
	ID        uint              `json:"id"`
	AgentName string            `json:"agentName"`
	Status    model.AgentStatus `json:"status"`
}

type ListAgentsResponse struct {
	Agents []AgentResponse `json:"agents"`
}

type UpdateAgentRequest struct {
	AgentName string            `json:"agentName"`
	Status    model.AgentStatus `json:"status"`
}

type DeleteAgentResponse struct {
	Deleted       bool     `json:"deleted"`
	ReleasedRooms []string `json:"releasedRooms"`
}
