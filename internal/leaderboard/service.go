// Package leaderboard はXPランキングのドメインロジックを提供する。
package leaderboard

import (
	"context"
	"fmt"

	"github.com/hitoshi/sidequest/internal/model"
	"github.com/hitoshi/sidequest/internal/repository"
)

// Entry はランキングの1行。レベルはXPから導出し、保存しない。
type Entry struct {
	Rank           int
	UserID         string
	XP             int
	Level          int
	TasksCompleted int
	StreakCount    int
}

// Service はランキング取得のサービス層。
type Service struct {
	progressRepo repository.UserProgressRepository

	defaultSize int
	maxSize     int
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(progressRepo repository.UserProgressRepository, defaultSize int) *Service {
	return &Service{
		progressRepo: progressRepo,
		defaultSize:  defaultSize,
		maxSize:      100,
	}
}

// Top はXP降順の上位limit件を返す。
// limitが0以下の場合は既定サイズ、上限超過の場合は上限に丸める。
func (s *Service) Top(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = s.defaultSize
	}
	if limit > s.maxSize {
		limit = s.maxSize
	}

	rows, err := s.progressRepo.ListByXPDesc(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("ランキングの取得に失敗しました: %w", err)
	}

	entries := make([]Entry, len(rows))
	for i, row := range rows {
		entries[i] = Entry{
			Rank:           i + 1,
			UserID:         row.UserID,
			XP:             row.XP,
			Level:          model.LevelForXP(row.XP),
			TasksCompleted: row.TasksCompleted,
			StreakCount:    row.StreakCount,
		}
	}

	return entries, nil
}
