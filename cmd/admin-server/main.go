package main

import (
	"log"

	"livechat-backend/internal/api"
	"livechat-backend/internal/api/router"
	"livechat-backend/internal/database"
	"livechat-backend/internal/env"
	"livechat-backend/internal/queue"
)

func main() {
	queueManager := queue.NewRequestQueueManager(10, 10)
	db, err := database.NewDatabase()
	if err != nil {
		log.Fatalf("db init failed: %v", err)
	}

	server := api.NewAPIServer(
		env.GetOrDefault(env.AdminAddr, ":84"),
		queueManager,
		db,
		nil,
		router.AgentRoutes("/api/admin/v1", nil),
	)

	server.Run()
}
