package model

import (
	"math"
	"time"
)

// secondsPerDay は日インデックス計算に使う1日の秒数。
// カレンダー日ではなくUTCエポック基準の24時間バケットを表す。
const secondsPerDay = 86400

// UserProgress はユーザーの累積実績を表す。
// 初回のタスク完了時に遅延作成され、以降削除されない。
// XPとTasksCompletedは単調非減少。
type UserProgress struct {
	UserID         string
	XP             int
	TasksCompleted int
	StreakLastDay  int64 // 最後に完了した日インデックス（未完了なら0）
	StreakCount    int   // 連続完了日数
}

// DayIndex は時刻をエポック基準の日インデックスに変換する。
// floor(epochSeconds / 86400)。カレンダー境界とは無関係。
func DayIndex(t time.Time) int64 {
	return t.Unix() / secondsPerDay
}

// LevelForXP はXPからレベルを導出する。
// level = floor(sqrt(xp / 10))。レベルは保存せず、XPのみを真実の源とする。
func LevelForXP(xp int) int {
	if xp <= 0 {
		return 0
	}
	return int(math.Sqrt(float64(xp) / 10))
}
