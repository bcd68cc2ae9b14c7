package main

import (
	"context"
	"log"

	"livechat-backend/internal/api"
	"livechat-backend/internal/api/router"
	"livechat-backend/internal/chat"
	"livechat-backend/internal/database"
	"livechat-backend/internal/env"
	"livechat-backend/internal/queue"
	"livechat-backend/internal/registry"
	"livechat-backend/internal/websocket"
)

func main() {
	queueManager := queue.NewRequestQueueManager(10, 10)
	db, err := database.NewDatabase()
	if err != nil {
		log.Fatalf("db init failed: %v", err)
	}

	relay := chat.NewRelay(chat.NewGormRepository(db), registry.New())
	if mirror := websocket.NewRedisMirror(); mirror != nil {
		relay.SetMirror(mirror)
	}

	if err := relay.LoadOpenRooms(context.Background()); err != nil {
		log.Fatalf("room reload failed: %v", err)
	}

	handler := websocket.NewHandler(relay)

	server := api.NewAPIServer(
		env.GetOrDefault(env.ChatAddr, ":83"),
		queueManager,
		db,
		handler,
		router.ChatRoutes("/ws"),
		router.AgentRoutes("/api/chat/v1", relay),
	)

	server.Run()
}
