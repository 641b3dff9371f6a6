package assignment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/sidequest/internal/catalog"
	"github.com/hitoshi/sidequest/internal/metrics"
	"github.com/hitoshi/sidequest/internal/model"
	"github.com/hitoshi/sidequest/internal/userlock"
)

// --- モック ---

type mockActiveTaskRepo struct {
	findByUserIDFn   func(ctx context.Context, userID string) (*model.ActiveTask, error)
	putFn            func(ctx context.Context, task *model.ActiveTask) error
	deleteByUserIDFn func(ctx context.Context, userID string) error
}

func (m *mockActiveTaskRepo) FindByUserID(ctx context.Context, userID string) (*model.ActiveTask, error) {
	if m.findByUserIDFn != nil {
		return m.findByUserIDFn(ctx, userID)
	}
	return nil, nil
}
func (m *mockActiveTaskRepo) Put(ctx context.Context, task *model.ActiveTask) error {
	if m.putFn != nil {
		return m.putFn(ctx, task)
	}
	return nil
}
func (m *mockActiveTaskRepo) DeleteByUserID(ctx context.Context, userID string) error {
	if m.deleteByUserIDFn != nil {
		return m.deleteByUserIDFn(ctx, userID)
	}
	return nil
}

func testCatalog() *catalog.Catalog {
	return catalog.New([]model.Task{
		{Text: "15分散歩する", Category: "fitness", Duration: "15分"},
		{Text: "机を片付ける", Category: "chores", Duration: "10分"},
		{Text: "腕立て20回", Category: "fitness", Duration: "5分"},
	})
}

func newTestService(cat *catalog.Catalog, repo *mockActiveTaskRepo, cooldown time.Duration) *Service {
	return NewService(cat, repo, userlock.NewKeyed(), metrics.Nop{}, time.Hour, cooldown)
}

// TestAssign_StoresActiveTask は割り当てが保存され、結果が返ることを検証する。
func TestAssign_StoresActiveTask(t *testing.T) {
	var stored *model.ActiveTask
	repo := &mockActiveTaskRepo{
		putFn: func(ctx context.Context, task *model.ActiveTask) error {
			stored = task
			return nil
		},
	}
	svc := newTestService(testCatalog(), repo, 0)
	now := time.Unix(1700000000, 0)
	svc.now = func() time.Time { return now }
	svc.randIntN = func(n int) int { return 0 }

	task, err := svc.Assign(context.Background(), "user1", "")
	if err != nil {
		t.Fatalf("Assign returned error: %v", err)
	}

	if stored == nil {
		t.Fatal("active task was not stored")
	}
	if task.UserID != "user1" {
		t.Errorf("UserID = %s, want user1", task.UserID)
	}
	if task.Task != "15分散歩する" {
		t.Errorf("Task = %s, want 15分散歩する", task.Task)
	}
	if !task.AssignedAt.Equal(now) {
		t.Errorf("AssignedAt = %v, want %v", task.AssignedAt, now)
	}
	if task.ExpiresIn != time.Hour {
		t.Errorf("ExpiresIn = %v, want 1h", task.ExpiresIn)
	}
}

// TestAssign_CategoryFilter はカテゴリ指定が抽選対象を絞ることを検証する。
func TestAssign_CategoryFilter(t *testing.T) {
	repo := &mockActiveTaskRepo{}
	svc := newTestService(testCatalog(), repo, 0)
	svc.randIntN = func(n int) int {
		if n != 2 {
			t.Errorf("pool size = %d, want 2", n)
		}
		return 1
	}

	task, err := svc.Assign(context.Background(), "user1", "Fitness")
	if err != nil {
		t.Fatalf("Assign returned error: %v", err)
	}
	if task.Category != "fitness" {
		t.Errorf("Category = %s, want fitness", task.Category)
	}
	if task.Task != "腕立て20回" {
		t.Errorf("Task = %s, want 腕立て20回", task.Task)
	}
}

// TestAssign_NoTasksInCategory は該当タスクなしカテゴリでエラーになることを検証する。
func TestAssign_NoTasksInCategory(t *testing.T) {
	svc := newTestService(testCatalog(), &mockActiveTaskRepo{}, 0)

	_, err := svc.Assign(context.Background(), "user1", "cooking")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeNoTasksInCategory {
		t.Errorf("Code = %s, want %s", apiErr.Code, model.ErrCodeNoTasksInCategory)
	}
}

// TestAssign_CatalogEmpty は空カタログでエラーになることを検証する。
func TestAssign_CatalogEmpty(t *testing.T) {
	svc := newTestService(catalog.New(nil), &mockActiveTaskRepo{}, 0)

	_, err := svc.Assign(context.Background(), "user1", "")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeCatalogEmpty {
		t.Errorf("Code = %s, want %s", apiErr.Code, model.ErrCodeCatalogEmpty)
	}
}

// TestAssign_OverwritesExistingAssignment はクールダウン無効時に既存の割り当てが上書きされることを検証する。
func TestAssign_OverwritesExistingAssignment(t *testing.T) {
	putCalled := false
	repo := &mockActiveTaskRepo{
		findByUserIDFn: func(ctx context.Context, userID string) (*model.ActiveTask, error) {
			t.Error("FindByUserID should not be called when cooldown is disabled")
			return nil, nil
		},
		putFn: func(ctx context.Context, task *model.ActiveTask) error {
			putCalled = true
			return nil
		},
	}
	svc := newTestService(testCatalog(), repo, 0)

	if _, err := svc.Assign(context.Background(), "user1", ""); err != nil {
		t.Fatalf("Assign returned error: %v", err)
	}
	if !putCalled {
		t.Error("Put was not called")
	}
}

// TestAssign_CooldownActive はクールダウン中の再リクエストが拒否されることを検証する。
func TestAssign_CooldownActive(t *testing.T) {
	now := time.Unix(1700000000, 0)
	repo := &mockActiveTaskRepo{
		findByUserIDFn: func(ctx context.Context, userID string) (*model.ActiveTask, error) {
			return &model.ActiveTask{
				UserID:     userID,
				Task:       "15分散歩する",
				AssignedAt: now.Add(-30 * time.Second),
				ExpiresIn:  time.Hour,
			}, nil
		},
		putFn: func(ctx context.Context, task *model.ActiveTask) error {
			t.Error("Put should not be called during cooldown")
			return nil
		},
	}
	svc := newTestService(testCatalog(), repo, 2*time.Minute)
	svc.now = func() time.Time { return now }

	_, err := svc.Assign(context.Background(), "user1", "")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeCooldownActive {
		t.Errorf("Code = %s, want %s", apiErr.Code, model.ErrCodeCooldownActive)
	}
}

// TestAssign_CooldownElapsed はクールダウン経過後のリクエストが成功することを検証する。
func TestAssign_CooldownElapsed(t *testing.T) {
	now := time.Unix(1700000000, 0)
	repo := &mockActiveTaskRepo{
		findByUserIDFn: func(ctx context.Context, userID string) (*model.ActiveTask, error) {
			return &model.ActiveTask{
				UserID:     userID,
				Task:       "15分散歩する",
				AssignedAt: now.Add(-3 * time.Minute),
				ExpiresIn:  time.Hour,
			}, nil
		},
	}
	svc := newTestService(testCatalog(), repo, 2*time.Minute)
	svc.now = func() time.Time { return now }

	if _, err := svc.Assign(context.Background(), "user1", ""); err != nil {
		t.Fatalf("Assign returned error: %v", err)
	}
}

// TestAssign_RepoError はストア障害がラップして返されることを検証する。
func TestAssign_RepoError(t *testing.T) {
	repo := &mockActiveTaskRepo{
		putFn: func(ctx context.Context, task *model.ActiveTask) error {
			return errors.New("connection refused")
		},
	}
	svc := newTestService(testCatalog(), repo, 0)

	_, err := svc.Assign(context.Background(), "user1", "")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
