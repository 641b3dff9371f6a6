package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/sidequest/internal/model"
)

// PostgresUserProgressRepo はPostgreSQLを使用したユーザー実績リポジトリ。
type PostgresUserProgressRepo struct {
	db *sql.DB
}

// NewPostgresUserProgressRepo はPostgresUserProgressRepoを生成する。
func NewPostgresUserProgressRepo(db *sql.DB) *PostgresUserProgressRepo {
	return &PostgresUserProgressRepo{db: db}
}

// FindByUserID は指定ユーザーの実績を取得する。見つからない場合はnilを返す。
func (r *PostgresUserProgressRepo) FindByUserID(ctx context.Context, userID string) (*model.UserProgress, error) {
	progress := &model.UserProgress{}

	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, xp, tasks_completed, streak_last_day, streak_count
		 FROM user_data WHERE user_id = $1`,
		userID,
	).Scan(
		&progress.UserID, &progress.XP, &progress.TasksCompleted,
		&progress.StreakLastDay, &progress.StreakCount,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ユーザー実績の取得に失敗しました: %w", err)
	}

	return progress, nil
}

// Upsert は実績をuser_idキーで全置換UPSERTする。
func (r *PostgresUserProgressRepo) Upsert(ctx context.Context, progress *model.UserProgress) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_data (user_id, xp, tasks_completed, streak_last_day, streak_count)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id) DO UPDATE SET
		     xp = EXCLUDED.xp,
		     tasks_completed = EXCLUDED.tasks_completed,
		     streak_last_day = EXCLUDED.streak_last_day,
		     streak_count = EXCLUDED.streak_count`,
		progress.UserID, progress.XP, progress.TasksCompleted,
		progress.StreakLastDay, progress.StreakCount,
	)
	if err != nil {
		return fmt.Errorf("ユーザー実績の保存に失敗しました: %w", err)
	}
	return nil
}

// ListByXPDesc は全ユーザーの実績をXP降順で最大limit件返す。
// limitが0以下の場合は全件返す。レコードがない場合は空スライスを返す。
func (r *PostgresUserProgressRepo) ListByXPDesc(ctx context.Context, limit int) ([]*model.UserProgress, error) {
	query := `SELECT user_id, xp, tasks_completed, streak_last_day, streak_count
	          FROM user_data ORDER BY xp DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ユーザー実績一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	results := []*model.UserProgress{}
	for rows.Next() {
		progress := &model.UserProgress{}
		if err := rows.Scan(
			&progress.UserID, &progress.XP, &progress.TasksCompleted,
			&progress.StreakLastDay, &progress.StreakCount,
		); err != nil {
			return nil, fmt.Errorf("ユーザー実績の読み取りに失敗しました: %w", err)
		}
		results = append(results, progress)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ユーザー実績一覧の走査に失敗しました: %w", err)
	}

	return results, nil
}

// compile-time interface check
var _ UserProgressRepository = (*PostgresUserProgressRepo)(nil)
