package agents

import (
	"context"
	"errors"
	"strings"
	"time"

	"livechat-backend/internal/database"
	internaljwt "livechat-backend/internal/jwt"
	"livechat-backend/internal/model"

	"golang.org/x/crypto/bcrypt"
)

type ErrorCode string

const (
	ErrorCodeValidation   ErrorCode = "validation_error"
	ErrorCodeUnauthorized ErrorCode = "unauthorized"
	ErrorCodeNotFound     ErrorCode = "not_found"
	ErrorCodeConflict     ErrorCode = "conflict"
	ErrorCodeInternal     ErrorCode = "internal_error"
)

type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

type CreateAgentParams struct {
	Username  string
	Email     string
	Password  string
	AgentName string
}

type LoginParams struct {
	Username string
	Password string
}

type LoginResult struct {
	Agent model.Agent
	Token string
}

type UpdateAgentParams struct {
	ID        uint
	AgentName string
	Status    model.AgentStatus
}

type DeleteAgentResult struct {
	// ReleasedRooms lists the rooms that went back to waiting when the
	// agent was removed, so callers can notify the visitors still connected.
	ReleasedRooms []string
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func New(db *database.Database) *Service {
	return &Service{
		repo: NewGormRepository(db),
		now:  time.Now,
	}
}

func NewWithRepository(repo Repository, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo: repo,
		now:  now,
	}
}

func (s *Service) CreateAgent(ctx context.Context, params CreateAgentParams) (model.Agent, error) {
	username := strings.TrimSpace(params.Username)
	agentName := strings.TrimSpace(params.AgentName)

	if username == "" || params.Password == "" {
		return model.Agent{}, newError(ErrorCodeValidation, "username and password are required", nil)
	}
	if agentName == "" {
		agentName = username
	}

	if _, err := s.repo.GetAgentByName(ctx, agentName); err == nil {
		return model.Agent{}, newError(ErrorCodeConflict, "agent name already taken", nil)
	} else if !errors.Is(err, ErrNotFound) {
		return model.Agent{}, newError(ErrorCodeInternal, "failed to check agent name", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(params.Password), 10)
	if err != nil {
		return model.Agent{}, newError(ErrorCodeInternal, "failed to hash password", err)
	}

	user := model.AgentUser{
		Username:     username,
		Email:        strings.TrimSpace(strings.ToLower(params.Email)),
		PasswordHash: string(hashed),
	}
	agent := model.Agent{
		AgentName: agentName,
		Status:    model.AgentStatusOffline,
	}

	if err := s.repo.CreateAgentWithUser(ctx, &user, &agent); err != nil {
		return model.Agent{}, newError(ErrorCodeInternal, "failed to create agent", err)
	}

	return agent, nil
}

func (s *Service) Login(ctx context.Context, params LoginParams) (LoginResult, error) {
	username := strings.TrimSpace(params.Username)
	if username == "" || params.Password == "" {
		return LoginResult{}, newError(ErrorCodeValidation, "username and password are required", nil)
	}

	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return LoginResult{}, newError(ErrorCodeUnauthorized, "invalid credentials", err)
		}
		return LoginResult{}, newError(ErrorCodeInternal, "failed to load user", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(params.Password)) != nil {
		return LoginResult{}, newError(ErrorCodeUnauthorized, "invalid credentials", nil)
	}

	agent, err := s.agentForUser(ctx, user.ID)
	if err != nil {
		return LoginResult{}, err
	}

	token, err := internaljwt.CreateToken(internaljwt.Claims{
		ID:   agent.ID,
		Name: agent.AgentName,
	}, internaljwt.RoleAgent, s.now().Add(8*time.Hour).Unix())
	if err != nil {
		return LoginResult{}, newError(ErrorCodeInternal, "failed to issue token", err)
	}

	return LoginResult{Agent: agent, Token: token}, nil
}

func (s *Service) GetAgent(ctx context.Context, id uint) (model.Agent, error) {
	agent, err := s.repo.GetAgent(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.Agent{}, newError(ErrorCodeNotFound, "agent not found", err)
		}
		return model.Agent{}, newError(ErrorCodeInternal, "failed to load agent", err)
	}
	return agent, nil
}

func (s *Service) ListAgents(ctx context.Context) ([]model.Agent, error) {
	list, err := s.repo.ListAgents(ctx)
	if err != nil {
		return nil, newError(ErrorCodeInternal, "failed to list agents", err)
	}
	return list, nil
}

func (s *Service) UpdateAgent(ctx context.Context, params UpdateAgentParams) (model.Agent, error) {
	agent, err := s.repo.GetAgent(ctx, params.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.Agent{}, newError(ErrorCodeNotFound, "agent not found", err)
		}
		return model.Agent{}, newError(ErrorCodeInternal, "failed to load agent", err)
	}

	if name := strings.TrimSpace(params.AgentName); name != "" {
		agent.AgentName = name
	}
	if params.Status != "" {
		if params.Status != model.AgentStatusOnline &&
			params.Status != model.AgentStatusOffline &&
			params.Status != model.AgentStatusBusy {
			return model.Agent{}, newError(ErrorCodeValidation, "unknown agent status", nil)
		}
		agent.Status = params.Status
	}

	if err := s.repo.UpdateAgent(ctx, agent); err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.Agent{}, newError(ErrorCodeNotFound, "agent not found", err)
		}
		return model.Agent{}, newError(ErrorCodeInternal, "failed to update agent", err)
	}

	return agent, nil
}

func (s *Service) DeleteAgent(ctx context.Context, id uint) (DeleteAgentResult, error) {
	released, err := s.repo.DeleteAgentCascade(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return DeleteAgentResult{}, newError(ErrorCodeNotFound, "agent not found", err)
		}
		return DeleteAgentResult{}, newError(ErrorCodeInternal, "failed to delete agent", err)
	}
	return DeleteAgentResult{ReleasedRooms: released}, nil
}

func (s *Service) agentForUser(ctx context.Context, userID uint) (model.Agent, error) {
	list, err := s.repo.ListAgents(ctx)
	if err != nil {
		return model.Agent{}, newError(ErrorCodeInternal, "failed to load agents", err)
	}
	for _, agent := range list {
		if agent.UserID == userID {
			return agent, nil
		}
	}
	return model.Agent{}, newError(ErrorCodeNotFound, "no agent profile for user", nil)
}
