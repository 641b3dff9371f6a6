package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/sidequest/internal/middleware"
	"github.com/hitoshi/sidequest/internal/model"
)

// HealthChecker はストアの死活確認インターフェース。*sql.DBが満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	Logger        *slog.Logger
	HealthChecker HealthChecker

	AssignmentService  AssignmentServiceInterface
	CompletionService  CompletionServiceInterface
	LeaderboardService LeaderboardServiceInterface
	DMProber           DMProberInterface

	// MetricsHandler は/metricsのハンドラー。nilの場合はルートを登録しない。
	MetricsHandler http.Handler
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → RequestID → Logging
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))

	taskHandler := NewTaskHandler(deps.AssignmentService, deps.CompletionService)
	lbHandler := NewLeaderboardHandler(deps.LeaderboardService)
	dmHandler := NewDMHandler(deps.DMProber)

	// タスク操作
	r.Route("/api/tasks", func(r chi.Router) {
		r.Post("/request", taskHandler.RequestTask)
		r.Post("/complete", taskHandler.CompleteTask)
	})

	// ランキング
	r.Get("/api/leaderboard", lbHandler.GetLeaderboard)

	// DM到達性プローブ
	r.Post("/api/dm/ping", dmHandler.PingDM)

	// 死活確認
	r.Get("/health", newHealthHandler(deps.HealthChecker))

	// メトリクス公開
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	return r
}

// newHealthHandler はストアの応答を確認する死活確認ハンドラーを返す。
func newHealthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := checker.PingContext(r.Context()); err != nil {
			writeAPIErrorResponse(w, http.StatusServiceUnavailable, model.NewStoreUnavailableError())
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
