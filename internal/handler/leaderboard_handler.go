package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/hitoshi/sidequest/internal/leaderboard"
	"github.com/hitoshi/sidequest/internal/model"
)

// LeaderboardServiceInterface はランキングハンドラーが必要とするサービスインターフェース。
type LeaderboardServiceInterface interface {
	// Top はXP降順の上位limit件を返す。
	Top(ctx context.Context, limit int) ([]leaderboard.Entry, error)
}

// LeaderboardHandler はランキングのHTTPハンドラー。
type LeaderboardHandler struct {
	service LeaderboardServiceInterface
}

// NewLeaderboardHandler はLeaderboardHandlerを生成する。
func NewLeaderboardHandler(service LeaderboardServiceInterface) *LeaderboardHandler {
	return &LeaderboardHandler{service: service}
}

// leaderboardEntryResponse はランキング1行のAPIレスポンス。
type leaderboardEntryResponse struct {
	Rank           int    `json:"rank"`
	UserID         string `json:"user_id"`
	XP             int    `json:"xp"`
	Level          int    `json:"level"`
	TasksCompleted int    `json:"tasks_completed"`
	StreakCount    int    `json:"streak_count"`
}

// GetLeaderboard はXPランキングを取得する。
// GET /api/leaderboard?limit=N
func (h *LeaderboardHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
				Code:     "INVALID_LIMIT",
				Message:  "limitパラメータが数値ではありません。",
				Category: "validation",
				Action:   "limitには正の整数を指定してください。",
			})
			return
		}
		limit = parsed
	}

	entries, err := h.service.Top(r.Context(), limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]leaderboardEntryResponse, len(entries))
	for i, e := range entries {
		resp[i] = leaderboardEntryResponse{
			Rank:           e.Rank,
			UserID:         e.UserID,
			XP:             e.XP,
			Level:          e.Level,
			TasksCompleted: e.TasksCompleted,
			StreakCount:    e.StreakCount,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
