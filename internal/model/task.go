// Package model はドメインモデルを定義する。
package model

import "time"

// Task はタスクカタログの1レコードを表す。
// カタログファイルから起動時に1回読み込まれ、実行中は読み取り専用として扱う。
// カタログ上の位置以外に識別子を持たない。
type Task struct {
	Text     string `json:"text"`
	Category string `json:"category"`
	Duration string `json:"duration"`
}

// ActiveTask はユーザーに割り当て中のタスクを表す。
// ユーザーごとに最大1件のみ存在する（user_idが主キー）。
// 割り当てから完了・期限切れ・削除までの間だけ存在する。
type ActiveTask struct {
	UserID     string
	Task       string
	Category   string
	Duration   string
	AssignedAt time.Time
	ExpiresIn  time.Duration
}

// ExpiresAt は割り当ての有効期限を返す。
func (t *ActiveTask) ExpiresAt() time.Time {
	return t.AssignedAt.Add(t.ExpiresIn)
}

// Expired は指定時刻で割り当てが期限切れかどうかを返す。
// 期限切れ判定は now > assigned_at + expires_in（境界ちょうどは有効）。
func (t *ActiveTask) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt())
}
