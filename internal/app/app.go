// Package app はアプリケーションの起動と依存関係のワイヤリングを行う。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/sidequest/internal/assignment"
	"github.com/hitoshi/sidequest/internal/catalog"
	"github.com/hitoshi/sidequest/internal/completion"
	"github.com/hitoshi/sidequest/internal/config"
	"github.com/hitoshi/sidequest/internal/database"
	"github.com/hitoshi/sidequest/internal/handler"
	"github.com/hitoshi/sidequest/internal/leaderboard"
	"github.com/hitoshi/sidequest/internal/logger"
	"github.com/hitoshi/sidequest/internal/metrics"
	"github.com/hitoshi/sidequest/internal/notify"
	"github.com/hitoshi/sidequest/internal/repository"
	"github.com/hitoshi/sidequest/internal/security"
	"github.com/hitoshi/sidequest/internal/userlock"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("tasks_file", cfg.TasksFile),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. セキュリティサービスの初期化
	sanitizer := security.NewTextSanitizer()
	urlGuard := security.NewURLGuard()

	// 3. タスクカタログの読み込み
	cat, err := catalog.Load(cfg.TasksFile, sanitizer)
	if err != nil {
		return fmt.Errorf("failed to load task catalog: %w", err)
	}
	if cat.Len() == 0 {
		slog.Warn("task catalog is empty", slog.String("tasks_file", cfg.TasksFile))
	}

	slog.Info("task catalog loaded",
		slog.String("tasks_file", cfg.TasksFile),
		slog.Int("task_count", cat.Len()),
	)

	// 4. Webhook通知先の検証
	// 内部ネットワーク宛の設定ミスは起動時に弾く
	if cfg.WebhookURL != "" {
		if err := urlGuard.ValidateURL(cfg.WebhookURL); err != nil {
			return fmt.Errorf("invalid webhook URL: %w", err)
		}
	}

	// 5. リポジトリの初期化
	activeTaskRepo := repository.NewPostgresActiveTaskRepo(db)
	progressRepo := repository.NewPostgresUserProgressRepo(db)

	// 6. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 7. 通知クライアントの初期化
	notifyClient := notify.NewClient(
		urlGuard.NewSafeClient(cfg.WebhookTimeout),
		slog.Default(),
		collector,
		cfg.WebhookURL,
		cfg.WebhookRate,
	)

	// 8. ドメインサービスの初期化
	locks := userlock.NewKeyed()
	assignService := assignment.NewService(
		cat, activeTaskRepo, locks, collector,
		cfg.AssignTTL, cfg.AssignCooldown,
	)
	completeService := completion.NewService(
		activeTaskRepo, progressRepo, locks, collector,
		notifyClient, cfg.BaseXP,
	)
	lbService := leaderboard.NewService(progressRepo, cfg.LeaderboardSize)

	// 9. ルーターの構築
	deps := &handler.RouterDeps{
		Logger:        slog.Default(),
		HealthChecker: db,

		AssignmentService:  assignService,
		CompletionService:  completeService,
		LeaderboardService: lbService,
		DMProber:           notifyClient,

		MetricsHandler: metrics.Handler(registry),
	}

	router := handler.NewRouter(deps)

	// 10. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
