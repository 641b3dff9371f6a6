// Package notify はタスク完了のWebhook通知とDM到達性プローブを提供する。
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/hitoshi/sidequest/internal/metrics"
	"github.com/hitoshi/sidequest/internal/model"
)

// Client はWebhook通知のクライアント。
// 通知はベストエフォートであり、失敗はログとメトリクスに記録するだけで
// 呼び出し元の処理を失敗させない。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	collector  metrics.MetricsCollector
	limiter    *rate.Limiter
	endpoint   string // 空の場合は通知を無効化。テスト用に差し替え可能
}

// NewClient はClientの新しいインスタンスを生成する。
// ratePerSecは送信先保護のための秒間送信上限。
func NewClient(httpClient *http.Client, logger *slog.Logger, collector metrics.MetricsCollector, endpoint string, ratePerSec int) *Client {
	if ratePerSec <= 0 {
		ratePerSec = 1
	}
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		collector:  collector,
		limiter:    rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec),
		endpoint:   endpoint,
	}
}

// NotifyCompletion はタスク完了イベントをWebhookへ送信する。
// エンドポイント未設定の場合は何もしない。
func (c *Client) NotifyCompletion(ctx context.Context, event *model.CompletionEvent) error {
	if c.endpoint == "" {
		return nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("送信レート待機が中断されました: %w", err)
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("通知ペイロードのエンコードに失敗しました: %w", err)
	}

	start := time.Now()
	resp, err := c.post(ctx, c.endpoint, body)
	c.collector.RecordWebhookLatency(time.Since(start))
	if err != nil {
		c.collector.RecordWebhookFailure()
		c.logger.Error("Webhook通知の送信に失敗しました",
			slog.String("error", err.Error()),
			slog.String("user_id", event.UserID),
		)
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.collector.RecordWebhookFailure()
		c.logger.Error("Webhook通知がエラーステータスを返しました",
			slog.Int("http_status", resp.StatusCode),
			slog.String("user_id", event.UserID),
		)
		return fmt.Errorf("Webhookがステータス %d を返しました", resp.StatusCode)
	}

	c.collector.RecordWebhookSuccess()
	return nil
}

// PingDM はDM到達性のプローブを送信する。
// 送信先が403を返した場合はDM拒否とみなしDeliveryForbiddenを返す。
func (c *Client) PingDM(ctx context.Context, userID string) error {
	if c.endpoint == "" {
		return model.NewDeliveryForbiddenError()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("送信レート待機が中断されました: %w", err)
	}

	body, err := json.Marshal(map[string]string{"user_id": userID, "type": "ping"})
	if err != nil {
		return fmt.Errorf("プローブペイロードのエンコードに失敗しました: %w", err)
	}

	resp, err := c.post(ctx, c.endpoint, body)
	if err != nil {
		c.logger.Error("DMプローブの送信に失敗しました",
			slog.String("error", err.Error()),
			slog.String("user_id", userID),
		)
		return fmt.Errorf("DMプローブの送信に失敗しました: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode == http.StatusForbidden {
		return model.NewDeliveryForbiddenError()
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("DMプローブがステータス %d を返しました", resp.StatusCode)
	}

	return nil
}

func (c *Client) post(ctx context.Context, endpoint string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Sidequest/1.0 Task Engine")

	return c.httpClient.Do(req)
}
