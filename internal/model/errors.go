package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: task, validation, delivery, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeNoActiveTask      = "NO_ACTIVE_TASK"
	ErrCodeTaskExpired       = "TASK_EXPIRED"
	ErrCodeNoTasksInCategory = "NO_TASKS_IN_CATEGORY"
	ErrCodeCatalogEmpty      = "CATALOG_EMPTY"
	ErrCodeCooldownActive    = "COOLDOWN_ACTIVE"
	ErrCodeStoreUnavailable  = "STORE_UNAVAILABLE"
	ErrCodeDeliveryForbidden = "DELIVERY_FORBIDDEN"
)

// NewNoActiveTaskError はアクティブなタスクが存在しない場合のエラーを生成する。
func NewNoActiveTaskError() *APIError {
	return &APIError{
		Code:     ErrCodeNoActiveTask,
		Message:  "アクティブなタスクがありません。",
		Category: "task",
		Action:   "先にタスクをリクエストしてください。",
	}
}

// NewTaskExpiredError はタスクの期限切れエラーを生成する。
func NewTaskExpiredError() *APIError {
	return &APIError{
		Code:     ErrCodeTaskExpired,
		Message:  "タスクの期限が切れました。",
		Category: "task",
		Action:   "新しいタスクをリクエストしてください。",
	}
}

// NewNoTasksInCategoryError は指定カテゴリにタスクが存在しない場合のエラーを生成する。
func NewNoTasksInCategoryError(category string) *APIError {
	return &APIError{
		Code:     ErrCodeNoTasksInCategory,
		Message:  fmt.Sprintf("指定されたカテゴリにタスクがありません: %s", category),
		Category: "task",
		Action:   "別のカテゴリを指定するか、カテゴリなしでリクエストしてください。",
	}
}

// NewCatalogEmptyError はタスクカタログが空の場合のエラーを生成する。
func NewCatalogEmptyError() *APIError {
	return &APIError{
		Code:     ErrCodeCatalogEmpty,
		Message:  "タスクカタログが空です。",
		Category: "system",
		Action:   "カタログファイルの内容を確認してください。",
	}
}

// NewCooldownActiveError はクールダウン中の再リクエストエラーを生成する。
// remainingSecondsは次にリクエスト可能になるまでの残り秒数。
func NewCooldownActiveError(remainingSeconds int64) *APIError {
	return &APIError{
		Code:     ErrCodeCooldownActive,
		Message:  fmt.Sprintf("クールダウン中です。あと%d秒でリクエストできます。", remainingSeconds),
		Category: "task",
		Action:   "しばらく待ってから再度リクエストしてください。",
	}
}

// NewStoreUnavailableError はストアに接続できない場合のエラーを生成する。
func NewStoreUnavailableError() *APIError {
	return &APIError{
		Code:     ErrCodeStoreUnavailable,
		Message:  "データストアに接続できません。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewDeliveryForbiddenError はDM送信が拒否された場合のエラーを生成する。
func NewDeliveryForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeDeliveryForbidden,
		Message:  "DMを送信できませんでした。",
		Category: "delivery",
		Action:   "DMの受信設定を確認してください。",
	}
}
