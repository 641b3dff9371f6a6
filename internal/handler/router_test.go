package handler

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/sidequest/internal/completion"
	"github.com/hitoshi/sidequest/internal/leaderboard"
	"github.com/hitoshi/sidequest/internal/model"
)

type mockHealthChecker struct {
	pingErr error
}

func (m *mockHealthChecker) PingContext(ctx context.Context) error {
	return m.pingErr
}

func newTestRouterDeps() *RouterDeps {
	var buf bytes.Buffer
	return &RouterDeps{
		Logger:        slog.New(slog.NewJSONHandler(&buf, nil)),
		HealthChecker: &mockHealthChecker{},
		AssignmentService: &mockAssignmentService{
			assignFn: func(ctx context.Context, userID, category string) (*model.ActiveTask, error) {
				return &model.ActiveTask{
					UserID:     userID,
					Task:       "15分散歩する",
					AssignedAt: time.Now(),
					ExpiresIn:  time.Hour,
				}, nil
			},
		},
		CompletionService: &mockCompletionService{
			completeFn: func(ctx context.Context, userID, username string) (*completion.Result, error) {
				return &completion.Result{UserID: userID, TotalXP: 11, Level: 1, StreakCount: 1}, nil
			},
		},
		LeaderboardService: &mockLeaderboardService{
			topFn: func(ctx context.Context, limit int) ([]leaderboard.Entry, error) {
				return []leaderboard.Entry{}, nil
			},
		},
		DMProber: &mockDMProber{
			pingDMFn: func(ctx context.Context, userID string) error {
				return nil
			},
		},
	}
}

// TestRouter_Routes は各エンドポイントが配線されていることを検証する。
func TestRouter_Routes(t *testing.T) {
	router := NewRouter(newTestRouterDeps())

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"タスクリクエスト", http.MethodPost, "/api/tasks/request", `{"user_id": "u1"}`, http.StatusCreated},
		{"タスク完了", http.MethodPost, "/api/tasks/complete", `{"user_id": "u1"}`, http.StatusOK},
		{"ランキング", http.MethodGet, "/api/leaderboard", "", http.StatusOK},
		{"DMプローブ", http.MethodPost, "/api/dm/ping", `{"user_id": "u1"}`, http.StatusNoContent},
		{"死活確認", http.MethodGet, "/health", "", http.StatusOK},
		{"未定義ルート", http.MethodGet, "/api/unknown", "", http.StatusNotFound},
		{"メソッド不一致", http.MethodGet, "/api/tasks/request", "", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body *strings.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			} else {
				body = strings.NewReader("")
			}
			req := httptest.NewRequest(tt.method, tt.path, body)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Result().StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Result().StatusCode, tt.wantStatus)
			}
		})
	}
}

// TestRouter_HealthUnavailable はストア障害時に/healthが503を返すことを検証する。
func TestRouter_HealthUnavailable(t *testing.T) {
	deps := newTestRouterDeps()
	deps.HealthChecker = &mockHealthChecker{pingErr: errors.New("connection refused")}
	router := NewRouter(deps)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Result().StatusCode)
	}
}

// TestRouter_RequestIDHeader はレスポンスにX-Request-Idが付与されることを検証する。
func TestRouter_RequestIDHeader(t *testing.T) {
	router := NewRouter(newTestRouterDeps())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().Header.Get("X-Request-Id") == "" {
		t.Error("X-Request-Id header is not set")
	}
}
