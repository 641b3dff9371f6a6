package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/sidequest/internal/model"
)

// PostgresActiveTaskRepo はPostgreSQLを使用したアクティブタスクリポジトリ。
type PostgresActiveTaskRepo struct {
	db *sql.DB
}

// NewPostgresActiveTaskRepo はPostgresActiveTaskRepoを生成する。
func NewPostgresActiveTaskRepo(db *sql.DB) *PostgresActiveTaskRepo {
	return &PostgresActiveTaskRepo{db: db}
}

// FindByUserID は指定ユーザーのアクティブタスクを取得する。見つからない場合はnilを返す。
func (r *PostgresActiveTaskRepo) FindByUserID(ctx context.Context, userID string) (*model.ActiveTask, error) {
	task := &model.ActiveTask{}
	var assignedAt, expiresIn int64

	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, task, category, duration, assigned_at, expires_in
		 FROM active_tasks WHERE user_id = $1`,
		userID,
	).Scan(&task.UserID, &task.Task, &task.Category, &task.Duration, &assignedAt, &expiresIn)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("アクティブタスクの取得に失敗しました: %w", err)
	}

	task.AssignedAt = time.Unix(assignedAt, 0).UTC()
	task.ExpiresIn = time.Duration(expiresIn) * time.Second

	return task, nil
}

// Put はアクティブタスクをUPSERTする。
// user_id主キーのON CONFLICTで既存の割り当てを上書きする。
func (r *PostgresActiveTaskRepo) Put(ctx context.Context, task *model.ActiveTask) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO active_tasks (user_id, task, category, duration, assigned_at, expires_in)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (user_id) DO UPDATE SET
		     task = EXCLUDED.task,
		     category = EXCLUDED.category,
		     duration = EXCLUDED.duration,
		     assigned_at = EXCLUDED.assigned_at,
		     expires_in = EXCLUDED.expires_in`,
		task.UserID, task.Task, task.Category, task.Duration,
		task.AssignedAt.Unix(), int64(task.ExpiresIn.Seconds()),
	)
	if err != nil {
		return fmt.Errorf("アクティブタスクの保存に失敗しました: %w", err)
	}
	return nil
}

// DeleteByUserID は指定ユーザーのアクティブタスクを削除する。
// レコードが存在しない場合もエラーにしない。
func (r *PostgresActiveTaskRepo) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM active_tasks WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("アクティブタスクの削除に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ ActiveTaskRepository = (*PostgresActiveTaskRepo)(nil)
