package agents

import (
	"context"
	"errors"

	"livechat-backend/internal/database"
	"livechat-backend/internal/model"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("agents: not found")

// Repository is the durable store behind the agent admin surface.
type Repository interface {
	CreateAgentWithUser(ctx context.Context, user *model.AgentUser, agent *model.Agent) error
	GetAgent(ctx context.Context, id uint) (model.Agent, error)
	GetAgentByName(ctx context.Context, name string) (model.Agent, error)
	GetUserByUsername(ctx context.Context, username string) (model.AgentUser, error)
	ListAgents(ctx context.Context) ([]model.Agent, error)
	UpdateAgent(ctx context.Context, agent model.Agent) error
	// DeleteAgentCascade removes the agent, its login user and releases every
	// room the agent still holds, all inside one transaction.
	DeleteAgentCascade(ctx context.Context, id uint) ([]string, error)
}

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *database.Database) *GormRepository {
	return &GormRepository{db: db.Gorm}
}

func (r *GormRepository) CreateAgentWithUser(ctx context.Context, user *model.AgentUser, agent *model.Agent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		agent.UserID = user.ID
		return tx.Create(agent).Error
	})
}

func (r *GormRepository) GetAgent(ctx context.Context, id uint) (model.Agent, error) {
	var agent model.Agent
	err := r.db.WithContext(ctx).First(&agent, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Agent{}, ErrNotFound
	}
	return agent, err
}

func (r *GormRepository) GetAgentByName(ctx context.Context, name string) (model.Agent, error) {
	var agent model.Agent
	err := r.db.WithContext(ctx).Where("agent_name = ?", name).First(&agent).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Agent{}, ErrNotFound
	}
	return agent, err
}

func (r *GormRepository) GetUserByUsername(ctx context.Context, username string) (model.AgentUser, error) {
	var user model.AgentUser
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.AgentUser{}, ErrNotFound
	}
	return user, err
}

func (r *GormRepository) ListAgents(ctx context.Context) ([]model.Agent, error) {
	var list []model.Agent
	err := r.db.WithContext(ctx).Order("id ASC").Find(&list).Error
	return list, err
}

func (r *GormRepository) UpdateAgent(ctx context.Context, agent model.Agent) error {
	res := r.db.WithContext(ctx).Model(&model.Agent{}).
		Where("id = ?", agent.ID).
		Updates(map[string]interface{}{
			"agent_name": agent.AgentName,
			"status":     agent.Status,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepository) DeleteAgentCascade(ctx context.Context, id uint) ([]string, error) {
	var released []string

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var agent model.Agent
		if err := tx.First(&agent, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var rooms []model.ChatRoom
		if err := tx.Where("assigned_agent_id = ?", id).Find(&rooms).Error; err != nil {
			return err
		}
		for _, room := range rooms {
			released = append(released, room.ID)
		}

		if len(rooms) > 0 {
			err := tx.Model(&model.ChatRoom{}).
				Where("assigned_agent_id = ?", id).
				Updates(map[string]interface{}{
					"assigned_agent_id": nil,
					"status":            model.RoomStatusWaiting,
				}).Error
			if err != nil {
				return err
			}
		}

		if err := tx.Delete(&model.Agent{}, id).Error; err != nil {
			return err
		}
		return tx.Delete(&model.AgentUser{}, agent.UserID).Error
	})
	if err != nil {
		return nil, err
	}

	return released, nil
}
