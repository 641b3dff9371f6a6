package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/sidequest/internal/leaderboard"
)

type mockLeaderboardService struct {
	topFn func(ctx context.Context, limit int) ([]leaderboard.Entry, error)
}

func (m *mockLeaderboardService) Top(ctx context.Context, limit int) ([]leaderboard.Entry, error) {
	return m.topFn(ctx, limit)
}

// TestGetLeaderboard_Success はランキングが返ることを検証する。
func TestGetLeaderboard_Success(t *testing.T) {
	svc := &mockLeaderboardService{
		topFn: func(ctx context.Context, limit int) ([]leaderboard.Entry, error) {
			if limit != 5 {
				t.Errorf("limit = %d, want 5", limit)
			}
			return []leaderboard.Entry{
				{Rank: 1, UserID: "user1", XP: 250, Level: 5, TasksCompleted: 20, StreakCount: 3},
				{Rank: 2, UserID: "user2", XP: 40, Level: 2, TasksCompleted: 4, StreakCount: 1},
			}, nil
		},
	}
	h := NewLeaderboardHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/leaderboard?limit=5", nil)
	w := httptest.NewRecorder()

	h.GetLeaderboard(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Result().StatusCode)
	}

	var resp []map[string]any
	if err := json.NewDecoder(w.Result().Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("len(resp) = %d, want 2", len(resp))
	}
	if resp[0]["user_id"] != "user1" || resp[0]["rank"] != float64(1) {
		t.Errorf("resp[0] = %v", resp[0])
	}
	if resp[0]["level"] != float64(5) {
		t.Errorf("level = %v, want 5", resp[0]["level"])
	}
}

// TestGetLeaderboard_NoLimit はlimit未指定で0が渡ることを検証する。
func TestGetLeaderboard_NoLimit(t *testing.T) {
	svc := &mockLeaderboardService{
		topFn: func(ctx context.Context, limit int) ([]leaderboard.Entry, error) {
			if limit != 0 {
				t.Errorf("limit = %d, want 0", limit)
			}
			return []leaderboard.Entry{}, nil
		},
	}
	h := NewLeaderboardHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil)
	w := httptest.NewRecorder()

	h.GetLeaderboard(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Result().StatusCode)
	}

	// 空でもJSON配列が返ること
	var resp []map[string]any
	if err := json.NewDecoder(w.Result().Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 0 {
		t.Errorf("len(resp) = %d, want 0", len(resp))
	}
}

// TestGetLeaderboard_InvalidLimit は数値でないlimitで400が返ることを検証する。
func TestGetLeaderboard_InvalidLimit(t *testing.T) {
	h := NewLeaderboardHandler(&mockLeaderboardService{
		topFn: func(ctx context.Context, limit int) ([]leaderboard.Entry, error) {
			t.Error("Top should not be called")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/leaderboard?limit=abc", nil)
	w := httptest.NewRecorder()

	h.GetLeaderboard(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Result().StatusCode)
	}
}

// TestGetLeaderboard_ServiceError はサービスエラーで500が返ることを検証する。
func TestGetLeaderboard_ServiceError(t *testing.T) {
	svc := &mockLeaderboardService{
		topFn: func(ctx context.Context, limit int) ([]leaderboard.Entry, error) {
			return nil, errors.New("connection refused")
		},
	}
	h := NewLeaderboardHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil)
	w := httptest.NewRecorder()

	h.GetLeaderboard(w, req)

	if w.Result().StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Result().StatusCode)
	}
}
