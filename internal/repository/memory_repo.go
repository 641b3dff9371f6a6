package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/hitoshi/sidequest/internal/model"
)

// MemoryActiveTaskRepo はメモリ上のアクティブタスクリポジトリ。
// テストとローカル開発用。レコード単位の操作はミューテックスで原子性を保証する。
type MemoryActiveTaskRepo struct {
	mu    sync.RWMutex
	tasks map[string]model.ActiveTask
}

// NewMemoryActiveTaskRepo はMemoryActiveTaskRepoを生成する。
func NewMemoryActiveTaskRepo() *MemoryActiveTaskRepo {
	return &MemoryActiveTaskRepo{tasks: make(map[string]model.ActiveTask)}
}

// FindByUserID は指定ユーザーのアクティブタスクを取得する。見つからない場合はnilを返す。
func (r *MemoryActiveTaskRepo) FindByUserID(ctx context.Context, userID string) (*model.ActiveTask, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.tasks[userID]
	if !ok {
		return nil, nil
	}
	return &task, nil
}

// Put はアクティブタスクをUPSERTする。既存の割り当ては上書きされる。
func (r *MemoryActiveTaskRepo) Put(ctx context.Context, task *model.ActiveTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tasks[task.UserID] = *task
	return nil
}

// DeleteByUserID は指定ユーザーのアクティブタスクを削除する。
func (r *MemoryActiveTaskRepo) DeleteByUserID(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.tasks, userID)
	return nil
}

// MemoryUserProgressRepo はメモリ上のユーザー実績リポジトリ。
// 挿入順を保持し、同一XPの順位が安定するようにする。
type MemoryUserProgressRepo struct {
	mu       sync.RWMutex
	progress map[string]model.UserProgress
	order    []string // 挿入順
}

// NewMemoryUserProgressRepo はMemoryUserProgressRepoを生成する。
func NewMemoryUserProgressRepo() *MemoryUserProgressRepo {
	return &MemoryUserProgressRepo{progress: make(map[string]model.UserProgress)}
}

// FindByUserID は指定ユーザーの実績を取得する。見つからない場合はnilを返す。
func (r *MemoryUserProgressRepo) FindByUserID(ctx context.Context, userID string) (*model.UserProgress, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.progress[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// Upsert は実績をuser_idキーで全置換UPSERTする。
func (r *MemoryUserProgressRepo) Upsert(ctx context.Context, progress *model.UserProgress) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.progress[progress.UserID]; !ok {
		r.order = append(r.order, progress.UserID)
	}
	r.progress[progress.UserID] = *progress
	return nil
}

// ListByXPDesc は全ユーザーの実績をXP降順で最大limit件返す。
// 同一XPのユーザーは挿入順で並ぶ（安定ソート）。
func (r *MemoryUserProgressRepo) ListByXPDesc(ctx context.Context, limit int) ([]*model.UserProgress, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]*model.UserProgress, 0, len(r.order))
	for _, userID := range r.order {
		p := r.progress[userID]
		results = append(results, &p)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].XP > results[j].XP
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// compile-time interface checks
var (
	_ ActiveTaskRepository   = (*MemoryActiveTaskRepo)(nil)
	_ UserProgressRepository = (*MemoryUserProgressRepo)(nil)
)
