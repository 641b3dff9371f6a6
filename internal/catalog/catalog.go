// Package catalog はタスクカタログの読み込みと参照を提供する。
// カタログはJSONファイルから起動時に1回読み込み、実行中は読み取り専用として扱う。
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/hitoshi/sidequest/internal/model"
	"github.com/hitoshi/sidequest/internal/security"
)

// Catalog は読み込み済みのタスクカタログ。
// イミュータブルであり、複数goroutineから同時に参照できる。
type Catalog struct {
	tasks []model.Task
}

// Load はJSONファイルからカタログを読み込む。
// ファイル形式はTaskオブジェクトの配列。textが空のレコードは読み飛ばす。
// タスク文はDMやWebhookへそのまま転送されるため、読み込み時にタグを除去する。
func Load(path string, sanitizer security.TextSanitizerService) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("カタログファイルの読み込みに失敗しました: %w", err)
	}

	var raw []model.Task
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("カタログファイルの解析に失敗しました: %w", err)
	}

	tasks := make([]model.Task, 0, len(raw))
	for _, t := range raw {
		t.Text = sanitizer.Sanitize(t.Text)
		if t.Text == "" {
			continue
		}
		t.Category = strings.TrimSpace(t.Category)
		tasks = append(tasks, t)
	}

	return &Catalog{tasks: tasks}, nil
}

// New は読み込み済みのタスクからカタログを構築する。テスト用。
func New(tasks []model.Task) *Catalog {
	return &Catalog{tasks: tasks}
}

// Len はカタログのタスク数を返す。
func (c *Catalog) Len() int {
	return len(c.tasks)
}

// Filter はカテゴリでタスクを絞り込んで返す。
// categoryが空の場合は全タスクを返す。比較は大文字小文字を区別しない完全一致。
// 該当なしの場合は空スライスを返す（エラー判定は呼び出し元が行う）。
func (c *Catalog) Filter(category string) []model.Task {
	if category == "" {
		return c.tasks
	}

	matched := []model.Task{}
	for _, t := range c.tasks {
		if strings.EqualFold(t.Category, category) {
			matched = append(matched, t)
		}
	}
	return matched
}
