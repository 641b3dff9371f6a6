package model

import "time"

// CompletionEvent はタスク完了時にWebhookへ送る通知イベント。
type CompletionEvent struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Task      string    `json:"task"`
	XP        int       `json:"xp"`
	Level     int       `json:"level"`
	Timestamp time.Time `json:"timestamp"`
}
