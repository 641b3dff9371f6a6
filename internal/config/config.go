package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Catalog
	TasksFile string

	// Assignment
	AssignTTL      time.Duration // 割り当ての有効期間
	AssignCooldown time.Duration // 再リクエストのクールダウン（0で無効）

	// Completion
	BaseXP int // 完了1回あたりの基礎XP

	// Leaderboard
	LeaderboardSize int

	// Webhook
	WebhookURL     string // 空の場合は通知を無効化
	WebhookTimeout time.Duration
	WebhookRate    int // 通知送信のレート上限（req/sec）

	// Server
	ServerPort string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.TasksFile = getEnvString("TASKS_FILE", "random_tasks.json")
	cfg.AssignTTL = getEnvDuration("SIDEQUEST_ASSIGN_TTL", time.Hour)
	cfg.AssignCooldown = getEnvDuration("SIDEQUEST_ASSIGN_COOLDOWN", 0)
	cfg.BaseXP = getEnvInt("SIDEQUEST_BASE_XP", 10)
	cfg.LeaderboardSize = getEnvInt("SIDEQUEST_LEADERBOARD_SIZE", 10)
	cfg.WebhookURL = getEnvString("WEBHOOK_URL", "")
	cfg.WebhookTimeout = getEnvDuration("WEBHOOK_TIMEOUT", 5*time.Second)
	cfg.WebhookRate = getEnvInt("WEBHOOK_RATE", 5)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
