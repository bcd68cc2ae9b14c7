package env

import (
	"os"

	"github.com/joho/godotenv"
)

const (
	DatabaseDSN   = "DATABASE_DSN"
	ChatRedisURL  = "CHAT_REDIS_URL"
	ChatRedisPass = "CHAT_REDIS_PASS"
	AgentSecret   = "AGENT_SECRET"
	WebUrl        = "WEB_URL"
	ChatAddr      = "CHAT_ADDR"
	AdminAddr     = "ADMIN_ADDR"
)

func init() {
	// .env is optional; deployments usually set variables directly.
	_ = godotenv.Load()
}

func Get(key string) string {
	return os.Getenv(key)
}

func GetOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func MustGet(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic("env: required environment variable not set: " + key)
	}
	return val
}
