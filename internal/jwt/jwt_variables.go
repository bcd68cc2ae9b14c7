package jwt

import (
	"livechat-backend/internal/env"
)

var AGENT_SECRET string

const (
	RoleAgent Role = iota
)

var RoleSecrets = map[Role]string{
	RoleAgent: AGENT_SECRET,
}

func init() {
	AGENT_SECRET = env.Get(env.AgentSecret)
	RoleSecrets[RoleAgent] = AGENT_SECRET
}
