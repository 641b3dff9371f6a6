// Package assignment はタスク割り当てのドメインロジックを提供する。
package assignment

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/hitoshi/sidequest/internal/catalog"
	"github.com/hitoshi/sidequest/internal/metrics"
	"github.com/hitoshi/sidequest/internal/model"
	"github.com/hitoshi/sidequest/internal/repository"
	"github.com/hitoshi/sidequest/internal/userlock"
)

// Service はタスク割り当てのサービス層。
// カタログからの抽選、クールダウン判定、アクティブタスクの上書き登録を行う。
type Service struct {
	catalog    *catalog.Catalog
	activeRepo repository.ActiveTaskRepository
	locks      *userlock.Keyed
	collector  metrics.MetricsCollector

	ttl      time.Duration
	cooldown time.Duration

	// テストで差し替えるためのフック
	now      func() time.Time
	randIntN func(n int) int
}

// NewService はServiceの新しいインスタンスを生成する。
// cooldownが0の場合、クールダウン判定は行わない。
func NewService(
	cat *catalog.Catalog,
	activeRepo repository.ActiveTaskRepository,
	locks *userlock.Keyed,
	collector metrics.MetricsCollector,
	ttl time.Duration,
	cooldown time.Duration,
) *Service {
	return &Service{
		catalog:    cat,
		activeRepo: activeRepo,
		locks:      locks,
		collector:  collector,
		ttl:        ttl,
		cooldown:   cooldown,
		now:        time.Now,
		randIntN:   rand.IntN,
	}
}

// Assign は指定ユーザーにタスクをランダムに割り当てる。
// 既存の割り当ては上書きされる（ユーザーごとに最大1件）。
// 割り当てはユーザー実績に影響しない。実績が変わるのは完了時のみ。
func (s *Service) Assign(ctx context.Context, userID, category string) (*model.ActiveTask, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	now := s.now()

	if s.cooldown > 0 {
		existing, err := s.activeRepo.FindByUserID(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("アクティブタスクの取得に失敗しました: %w", err)
		}
		if existing != nil {
			elapsed := now.Sub(existing.AssignedAt)
			if elapsed < s.cooldown {
				remaining := int64((s.cooldown - elapsed + time.Second - 1) / time.Second)
				s.collector.RecordAssignmentRejected("cooldown")
				return nil, model.NewCooldownActiveError(remaining)
			}
		}
	}

	if s.catalog.Len() == 0 {
		s.collector.RecordAssignmentRejected("catalog_empty")
		return nil, model.NewCatalogEmptyError()
	}

	pool := s.catalog.Filter(category)
	if len(pool) == 0 {
		s.collector.RecordAssignmentRejected("no_tasks_in_category")
		return nil, model.NewNoTasksInCategoryError(category)
	}

	picked := pool[s.randIntN(len(pool))]

	task := &model.ActiveTask{
		UserID:     userID,
		Task:       picked.Text,
		Category:   picked.Category,
		Duration:   picked.Duration,
		AssignedAt: now,
		ExpiresIn:  s.ttl,
	}

	if err := s.activeRepo.Put(ctx, task); err != nil {
		return nil, fmt.Errorf("アクティブタスクの保存に失敗しました: %w", err)
	}

	s.collector.RecordAssignment(category)
	return task, nil
}
