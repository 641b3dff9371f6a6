// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/sidequest/internal/model"
)

// ActiveTaskRepository はアクティブタスクの永続化インターフェース。
// レコードの作成・削除はAssignment/Completionサービスのみが行う。
type ActiveTaskRepository interface {
	// FindByUserID は指定ユーザーのアクティブタスクを取得する。見つからない場合はnilを返す。
	FindByUserID(ctx context.Context, userID string) (*model.ActiveTask, error)

	// Put はアクティブタスクをUPSERTする。
	// 既存レコードは上書きされるため、ユーザーごとに最大1件の不変条件が構造的に保証される。
	Put(ctx context.Context, task *model.ActiveTask) error

	// DeleteByUserID は指定ユーザーのアクティブタスクを削除する。
	// レコードが存在しない場合もエラーにしない（冪等）。
	DeleteByUserID(ctx context.Context, userID string) error
}

// UserProgressRepository はユーザー実績の永続化インターフェース。
type UserProgressRepository interface {
	// FindByUserID は指定ユーザーの実績を取得する。見つからない場合はnilを返す。
	FindByUserID(ctx context.Context, userID string) (*model.UserProgress, error)

	// Upsert は実績をuser_idキーで全置換UPSERTする。
	Upsert(ctx context.Context, progress *model.UserProgress) error

	// ListByXPDesc は全ユーザーの実績をXP降順で最大limit件返す。
	// limitが0以下の場合は全件返す。レコードがない場合は空スライスを返す。
	ListByXPDesc(ctx context.Context, limit int) ([]*model.UserProgress, error)
}
