package chat

import (
	"context"
	"errors"

	"livechat-backend/internal/database"
	"livechat-backend/internal/model"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("chat repository: not found")

// Repository is the persistence gateway for the relay. Every method is a
// single statement; failures surface to the caller as-is and are logged at
// the handler, never retried.
type Repository interface {
	GetRoom(ctx context.Context, roomID string) (model.ChatRoom, error)
	CreateRoom(ctx context.Context, room model.ChatRoom) error
	// ReopenRoom attaches a (re)connecting visitor and puts the room back to waiting.
	ReopenRoom(ctx context.Context, roomID, userSocketID string) error
	// AssignRoom is the conditional waiting->active transition; it reports
	// false when another agent already holds the room.
	AssignRoom(ctx context.Context, roomID string, agentID uint) (bool, error)
	UnassignRoom(ctx context.Context, roomID string) error
	CloseRoom(ctx context.Context, roomID string) error
	ClearRoomUserSocket(ctx context.Context, roomID string) error
	TouchRoom(ctx context.Context, roomID, lastMessage string) error
	ListOpenRooms(ctx context.Context) ([]model.ChatRoom, error)
	ListAvailableRooms(ctx context.Context) ([]model.ChatRoom, error)

	CreateMessage(ctx context.Context, message *model.ChatMessage) error
	ListMessages(ctx context.Context, roomID string) ([]model.ChatMessage, error)

	GetAgent(ctx context.Context, agentID uint) (model.Agent, error)
	GetAgentByName(ctx context.Context, agentName string) (model.Agent, error)
	UpdateAgentStatus(ctx context.Context, agentID uint, status model.AgentStatus) error
	CountOnlineAgents(ctx context.Context) (int64, error)
}

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *database.Database) Repository {
	return &GormRepository{db: db.Gorm}
}

func (r *GormRepository) GetRoom(ctx context.Context, roomID string) (model.ChatRoom, error) {
	var room model.ChatRoom
	err := r.db.WithContext(ctx).First(&room, "id = ?", roomID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.ChatRoom{}, ErrNotFound
		}
		return model.ChatRoom{}, err
	}
	return room, nil
}

func (r *GormRepository) CreateRoom(ctx context.Context, room model.ChatRoom) error {
	return r.db.WithContext(ctx).Create(&room).Error
}

func (r *GormRepository) ReopenRoom(ctx context.Context, roomID, userSocketID string) error {
	return r.db.WithContext(ctx).Model(&model.ChatRoom{}).
		Where("id = ?", roomID).
		Updates(map[string]interface{}{
			"user_socket_id":    userSocketID,
			"status":            model.RoomStatusWaiting,
			"assigned_agent_id": nil,
		}).Error
}

func (r *GormRepository) AssignRoom(ctx context.Context, roomID string, agentID uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.ChatRoom{}).
		Where("id = ? AND assigned_agent_id IS NULL AND status = ?", roomID, model.RoomStatusWaiting).
		Updates(map[string]interface{}{
			"assigned_agent_id": agentID,
			"status":            model.RoomStatusActive,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *GormRepository) UnassignRoom(ctx context.Context, roomID string) error {
	return r.db.WithContext(ctx).Model(&model.ChatRoom{}).
		Where("id = ?", roomID).
		Updates(map[string]interface{}{
			"assigned_agent_id": nil,
			"status":            model.RoomStatusWaiting,
		}).Error
}

func (r *GormRepository) CloseRoom(ctx context.Context, roomID string) error {
	return r.db.WithContext(ctx).Model(&model.ChatRoom{}).
		Where("id = ?", roomID).
		Updates(map[string]interface{}{
			"assigned_agent_id": nil,
			"status":            model.RoomStatusClosed,
		}).Error
}

func (r *GormRepository) ClearRoomUserSocket(ctx context.Context, roomID string) error {
	return r.db.WithContext(ctx).Model(&model.ChatRoom{}).
		Where("id = ?", roomID).
		Update("user_socket_id", nil).Error
}

func (r *GormRepository) TouchRoom(ctx context.Context, roomID, lastMessage string) error {
	return r.db.WithContext(ctx).Model(&model.ChatRoom{}).
		Where("id = ?", roomID).
		Update("last_message", lastMessage).Error
}

func (r *GormRepository) ListOpenRooms(ctx context.Context) ([]model.ChatRoom, error) {
	var rooms []model.ChatRoom
	err := r.db.WithContext(ctx).
		Where("status <> ?", model.RoomStatusClosed).
		Find(&rooms).Error
	return rooms, err
}

func (r *GormRepository) ListAvailableRooms(ctx context.Context) ([]model.ChatRoom, error) {
	var rooms []model.ChatRoom
	err := r.db.WithContext(ctx).
		Where("status = ? AND assigned_agent_id IS NULL", model.RoomStatusWaiting).
		Order("created_at DESC").
		Find(&rooms).Error
	return rooms, err
}

func (r *GormRepository) CreateMessage(ctx context.Context, message *model.ChatMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *GormRepository) ListMessages(ctx context.Context, roomID string) ([]model.ChatMessage, error) {
	var messages []model.ChatMessage
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	return messages, err
}

func (r *GormRepository) GetAgent(ctx context.Context, agentID uint) (model.Agent, error) {
	var agent model.Agent
	err := r.db.WithContext(ctx).First(&agent, agentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Agent{}, ErrNotFound
		}
		return model.Agent{}, err
	}
	return agent, nil
}

func (r *GormRepository) GetAgentByName(ctx context.Context, agentName string) (model.Agent, error) {
	var agent model.Agent
	err := r.db.WithContext(ctx).First(&agent, "agent_name = ?", agentName).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Agent{}, ErrNotFound
		}
		return model.Agent{}, err
	}
	return agent, nil
}

func (r *GormRepository) UpdateAgentStatus(ctx context.Context, agentID uint, status model.AgentStatus) error {
	return r.db.WithContext(ctx).Model(&model.Agent{}).
		Where("id = ?", agentID).
		Update("status", status).Error
}

func (r *GormRepository) CountOnlineAgents(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Agent{}).
		Where("status = ?", model.AgentStatusOnline).
		Count(&count).Error
	return count, err
}
