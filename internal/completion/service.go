// Package completion はタスク完了と実績更新のドメインロジックを提供する。
package completion

import (
	"context"
	"fmt"
	"time"

	"github.com/hitoshi/sidequest/internal/metrics"
	"github.com/hitoshi/sidequest/internal/model"
	"github.com/hitoshi/sidequest/internal/repository"
	"github.com/hitoshi/sidequest/internal/userlock"
)

// Notifier はタスク完了を外部に通知するインターフェース。
type Notifier interface {
	NotifyCompletion(ctx context.Context, event *model.CompletionEvent) error
}

// Result はタスク完了処理の結果。
type Result struct {
	UserID         string
	Task           string
	XPAwarded      int // 今回の完了で加算されたXP（基礎XP + ストリークボーナス）
	TotalXP        int
	Level          int
	StreakCount    int
	TasksCompleted int
	CompletedAt    time.Time
}

// Service はタスク完了のサービス層。
// 期限判定、XP加算、ストリーク更新、実績保存、完了通知を行う。
//
// アクティブタスクと実績は別レコードであり単一トランザクションで守られないため、
// 同一ユーザーの操作はuserlockで直列化する。これにより同時completeの二重加算を防ぐ。
type Service struct {
	activeRepo   repository.ActiveTaskRepository
	progressRepo repository.UserProgressRepository
	locks        *userlock.Keyed
	collector    metrics.MetricsCollector
	notifier     Notifier // nilの場合は通知しない

	baseXP int

	// テストで差し替えるためのフック
	now func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	activeRepo repository.ActiveTaskRepository,
	progressRepo repository.UserProgressRepository,
	locks *userlock.Keyed,
	collector metrics.MetricsCollector,
	notifier Notifier,
	baseXP int,
) *Service {
	return &Service{
		activeRepo:   activeRepo,
		progressRepo: progressRepo,
		locks:        locks,
		collector:    collector,
		notifier:     notifier,
		baseXP:       baseXP,
		now:          time.Now,
	}
}

// Complete は指定ユーザーのアクティブタスクを完了し、実績を更新する。
//
// 期限切れの割り当ては削除した上でエラーを返す（実績は変化しない）。
// 成功時はアクティブタスクが削除され、XP・完了数・ストリークが更新される。
// Webhook通知は非同期のベストエフォートで、通知の失敗は完了の成否に影響しない。
func (s *Service) Complete(ctx context.Context, userID, username string) (*Result, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	active, err := s.activeRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("アクティブタスクの取得に失敗しました: %w", err)
	}
	if active == nil {
		s.collector.RecordCompletionRejected("no_active_task")
		return nil, model.NewNoActiveTaskError()
	}

	now := s.now()

	// 遅延期限判定。期限切れはここで初めて検出され、割り当てを破棄する。
	if active.Expired(now) {
		if err := s.activeRepo.DeleteByUserID(ctx, userID); err != nil {
			return nil, fmt.Errorf("期限切れタスクの削除に失敗しました: %w", err)
		}
		s.collector.RecordCompletionRejected("expired")
		return nil, model.NewTaskExpiredError()
	}

	progress, err := s.progressRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザー実績の取得に失敗しました: %w", err)
	}
	if progress == nil {
		progress = &model.UserProgress{UserID: userID}
	}

	// ストリーク更新。前回完了日の翌日なら継続、同日なら据え置き、それ以外はリセット。
	day := model.DayIndex(now)
	switch {
	case progress.TasksCompleted > 0 && day == progress.StreakLastDay:
		// 同日2回目以降は変化なし
	case progress.TasksCompleted > 0 && day == progress.StreakLastDay+1:
		progress.StreakCount++
	default:
		progress.StreakCount = 1
	}
	progress.StreakLastDay = day

	awarded := s.baseXP + progress.StreakCount
	progress.XP += awarded
	progress.TasksCompleted++

	if err := s.progressRepo.Upsert(ctx, progress); err != nil {
		return nil, fmt.Errorf("ユーザー実績の保存に失敗しました: %w", err)
	}

	if err := s.activeRepo.DeleteByUserID(ctx, userID); err != nil {
		return nil, fmt.Errorf("アクティブタスクの削除に失敗しました: %w", err)
	}

	s.collector.RecordCompletion()

	level := model.LevelForXP(progress.XP)

	if s.notifier != nil {
		event := &model.CompletionEvent{
			UserID:    userID,
			Username:  username,
			Task:      active.Task,
			XP:        progress.XP,
			Level:     level,
			Timestamp: now,
		}
		// 完了応答をWebhookの遅延で待たせない。失敗はNotifier側で記録される。
		go func() {
			_ = s.notifier.NotifyCompletion(context.WithoutCancel(ctx), event)
		}()
	}

	return &Result{
		UserID:         userID,
		Task:           active.Task,
		XPAwarded:      awarded,
		TotalXP:        progress.XP,
		Level:          level,
		StreakCount:    progress.StreakCount,
		TasksCompleted: progress.TasksCompleted,
		CompletedAt:    now,
	}, nil
}
