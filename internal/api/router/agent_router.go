package router

import (
	"net/http"

	"livechat-backend/internal/api"
	"livechat-backend/internal/api/endpoints"
	"livechat-backend/internal/api/middleware"
	agentservice "livechat-backend/internal/service/agents"
)

func AgentRoutes(prefix string, notifier endpoints.RoomNotifier) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		service := agentservice.New(s.Database())
		agentEndpoints := endpoints.NewAgentEndpoints(service, notifier)

		mux.HandleFunc(prefix+"/agents", s.MakeHTTPHandleFunc(agentEndpoints.Agents, middleware.ValidateAgentJWT))
		mux.HandleFunc(prefix+"/agents/", s.MakeHTTPHandleFunc(agentEndpoints.AgentByID, middleware.ValidateAgentJWT))
		mux.HandleFunc(prefix+"/agents/register", s.MakeHTTPHandleFunc(agentEndpoints.AgentRegister))
		mux.HandleFunc(prefix+"/agents/login", s.MakeHTTPHandleFunc(agentEndpoints.AgentLogin))
	}
}
