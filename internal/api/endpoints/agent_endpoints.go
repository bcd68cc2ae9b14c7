package endpoints

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"livechat-backend/internal/dto"
	"livechat-backend/internal/model"
	agentservice "livechat-backend/internal/service/agents"
)

// RoomNotifier is the slice of the relay the admin surface needs: when an
// agent is deleted its live rooms must be released on connected sockets too.
type RoomNotifier interface {
	HandleAgentRemoved(ctx context.Context, agentID uint, roomIDs []string)
}

type AgentEndpoints interface {
	Agents(http.ResponseWriter, *http.Request) error
	AgentByID(http.ResponseWriter, *http.Request) error
	AgentRegister(http.ResponseWriter, *http.Request) error
	AgentLogin(http.ResponseWriter, *http.Request) error
}

type agentEndpoints struct {
	service  *agentservice.Service
	notifier RoomNotifier
}

func NewAgentEndpoints(service *agentservice.Service, notifier RoomNotifier) AgentEndpoints {
	return &agentEndpoints{
		service:  service,
		notifier: notifier,
	}
}

func (h *agentEndpoints) Agents(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleListAgents,
	})
}

func (h *agentEndpoints) AgentRegister(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleCreateAgent,
	})
}

func (h *agentEndpoints) AgentByID(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet:    h.handleGetAgent,
		http.MethodPatch:  h.handleUpdateAgent,
		http.MethodDelete: h.handleDeleteAgent,
	})
}

func (h *agentEndpoints) AgentLogin(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleLogin,
	})
}

func (h *agentEndpoints) handleCreateAgent(w http.ResponseWriter, r *http.Request) error {
	var req dto.CreateAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid request payload",
			ErrorLog:   fmt.Errorf("decode create agent request: %w", err),
		}
	}

	agent, err := h.service.CreateAgent(r.Context(), agentservice.CreateAgentParams{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		AgentName: req.AgentName,
	})
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusCreated, toAgentResponse(agent))
}

func (h *agentEndpoints) handleLogin(w http.ResponseWriter, r *http.Request) error {
	var req dto.AgentLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid request payload",
			ErrorLog:   fmt.Errorf("decode agent login request: %w", err),
		}
	}

	result, err := h.service.Login(r.Context(), agentservice.LoginParams{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, dto.AgentLoginResponse{
		AccessToken: result.Token,
		Agent:       toAgentResponse(result.Agent),
	})
}

func (h *agentEndpoints) handleListAgents(w http.ResponseWriter, r *http.Request) error {
	agents, err := h.service.ListAgents(r.Context())
	if err != nil {
		return h.serviceError(err)
	}

	resp := dto.ListAgentsResponse{
		Agents: make([]dto.AgentResponse, 0, len(agents)),
	}
	for _, agent := range agents {
		resp.Agents = append(resp.Agents, toAgentResponse(agent))
	}

	return WriteJSON(w, http.StatusOK, resp)
}

func (h *agentEndpoints) handleGetAgent(w http.ResponseWriter, r *http.Request) error {
	id, err := agentIDFromPath(r)
	if err != nil {
		return err
	}

	agent, svcErr := h.service.GetAgent(r.Context(), id)
	if svcErr != nil {
		return h.serviceError(svcErr)
	}

	return WriteJSON(w, http.StatusOK, toAgentResponse(agent))
}

func (h *agentEndpoints) handleUpdateAgent(w http.ResponseWriter, r *http.Request) error {
	id, err := agentIDFromPath(r)
	if err != nil {
		return err
	}

	var req dto.UpdateAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid request payload",
			ErrorLog:   fmt.Errorf("decode update agent request: %w", err),
		}
	}

	agent, svcErr := h.service.UpdateAgent(r.Context(), agentservice.UpdateAgentParams{
		ID:        id,
		AgentName: req.AgentName,
		Status:    req.Status,
	})
	if svcErr != nil {
		return h.serviceError(svcErr)
	}

	return WriteJSON(w, http.StatusOK, toAgentResponse(agent))
}

func (h *agentEndpoints) handleDeleteAgent(w http.ResponseWriter, r *http.Request) error {
	id, err := agentIDFromPath(r)
	if err != nil {
		return err
	}

	result, svcErr := h.service.DeleteAgent(r.Context(), id)
	if svcErr != nil {
		return h.serviceError(svcErr)
	}

	if h.notifier != nil {
		h.notifier.HandleAgentRemoved(r.Context(), id, result.ReleasedRooms)
	}

	released := result.ReleasedRooms
	if released == nil {
		released = []string{}
	}
	return WriteJSON(w, http.StatusOK, dto.DeleteAgentResponse{
		Deleted:       true,
		ReleasedRooms: released,
	})
}

func agentIDFromPath(r *http.Request) (uint, error) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	last := parts[len(parts)-1]
	id, err := strconv.ParseUint(last, 10, 32)
	if err != nil {
		return 0, &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid agent id",
			ErrorLog:   fmt.Errorf("parse agent id %q: %w", last, err),
		}
	}
	return uint(id), nil
}

func toAgentResponse(agent model.Agent) dto.AgentResponse {
	return dto.AgentResponse{
		ID:        agent.ID,
		AgentName: agent.AgentName,
		Status:    agent.Status,
	}
}

func (h *agentEndpoints) serviceError(err error) error {
	return mapAgentServiceError(err)
}

func mapAgentServiceError(err error) error {
	if err == nil {
		return nil
	}

	svcErr, ok := err.(*agentservice.Error)
	if !ok {
		return &HTTPError{
			StatusCode: http.StatusInternalServerError,
			Message:    "Internal server error",
			ErrorLog:   fmt.Errorf("agent service: %w", err),
		}
	}

	var errorLog error
	if svcErr.Err != nil {
		errorLog = fmt.Errorf("%s: %w", svcErr.Message, svcErr.Err)
	} else {
		errorLog = svcErr
	}

	switch svcErr.Code {
	case agentservice.ErrorCodeValidation:
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    svcErr.Message,
			ErrorLog:   errorLog,
		}
	case agentservice.ErrorCodeUnauthorized:
		return &HTTPError{
			StatusCode: http.StatusUnauthorized,
			Message:    svcErr.Message,
			ErrorLog:   errorLog,
		}
	case agentservice.ErrorCodeNotFound:
		return &HTTPError{
			StatusCode: http.StatusNotFound,
			Message:    svcErr.Message,
			ErrorLog:   errorLog,
		}
	case agentservice.ErrorCodeConflict:
		return &HTTPError{
			StatusCode: http.StatusConflict,
			Message:    svcErr.Message,
			ErrorLog:   errorLog,
		}
	default:
		return &HTTPError{
			StatusCode: http.StatusInternalServerError,
			Message:    "Internal server error",
			ErrorLog:   errorLog,
		}
	}
}
