package database

import (
	"fmt"
	"time"

	"livechat-backend/internal/env"
	"livechat-backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Database struct {
	Gorm *gorm.DB
}

func NewDatabase() (*Database, error) {
	dsn := env.MustGet(env.DatabaseDSN)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
		Logger:  logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	if err := db.AutoMigrate(
		&model.AgentUser{},
		&model.Agent{},
		&model.ChatRoom{},
		&model.ChatMessage{},
	); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &Database{Gorm: db}, nil
}
