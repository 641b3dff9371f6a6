package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/hitoshi/sidequest/internal/completion"
	"github.com/hitoshi/sidequest/internal/model"
)

// AssignmentServiceInterface はタスクハンドラーが必要とする割り当てサービスインターフェース。
type AssignmentServiceInterface interface {
	// Assign は指定ユーザーにタスクをランダムに割り当てる。
	Assign(ctx context.Context, userID, category string) (*model.ActiveTask, error)
}

// CompletionServiceInterface はタスクハンドラーが必要とする完了サービスインターフェース。
type CompletionServiceInterface interface {
	// Complete は指定ユーザーのアクティブタスクを完了し、実績を更新する。
	Complete(ctx context.Context, userID, username string) (*completion.Result, error)
}

// TaskHandler はタスク割り当て・完了のHTTPハンドラー。
type TaskHandler struct {
	assignService   AssignmentServiceInterface
	completeService CompletionServiceInterface
}

// NewTaskHandler はTaskHandlerを生成する。
func NewTaskHandler(assignService AssignmentServiceInterface, completeService CompletionServiceInterface) *TaskHandler {
	return &TaskHandler{
		assignService:   assignService,
		completeService: completeService,
	}
}

// taskRequestBody はタスクリクエストのボディ。
type taskRequestBody struct {
	UserID   string `json:"user_id"`
	Category string `json:"category"`
}

// taskResponse は割り当てられたタスクのAPIレスポンス。
type taskResponse struct {
	UserID     string    `json:"user_id"`
	Task       string    `json:"task"`
	Category   string    `json:"category,omitempty"`
	Duration   string    `json:"duration,omitempty"`
	AssignedAt time.Time `json:"assigned_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// completeRequestBody はタスク完了リクエストのボディ。
type completeRequestBody struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// completeResponse はタスク完了のAPIレスポンス。
type completeResponse struct {
	UserID         string `json:"user_id"`
	Task           string `json:"task"`
	XPAwarded      int    `json:"xp_awarded"`
	XP             int    `json:"xp"`
	Level          int    `json:"level"`
	StreakCount    int    `json:"streak_count"`
	TasksCompleted int    `json:"tasks_completed"`
}

// RequestTask は新しいタスクを割り当てる。
// POST /api/tasks/request
func (h *TaskHandler) RequestTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, newInvalidRequestError())
		return
	}

	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, newMissingUserIDError())
		return
	}

	task, err := h.assignService.Assign(r.Context(), req.UserID, strings.TrimSpace(req.Category))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(taskResponse{
		UserID:     task.UserID,
		Task:       task.Task,
		Category:   task.Category,
		Duration:   task.Duration,
		AssignedAt: task.AssignedAt,
		ExpiresAt:  task.ExpiresAt(),
	})
}

// CompleteTask はアクティブタスクを完了し、実績を返す。
// POST /api/tasks/complete
func (h *TaskHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	var req completeRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, newInvalidRequestError())
		return
	}

	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, newMissingUserIDError())
		return
	}

	// usernameは通知にのみ使用する。省略時はuser_idで代用する。
	username := strings.TrimSpace(req.Username)
	if username == "" {
		username = req.UserID
	}

	result, err := h.completeService.Complete(r.Context(), req.UserID, username)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(completeResponse{
		UserID:         result.UserID,
		Task:           result.Task,
		XPAwarded:      result.XPAwarded,
		XP:             result.TotalXP,
		Level:          result.Level,
		StreakCount:    result.StreakCount,
		TasksCompleted: result.TasksCompleted,
	})
}

func newInvalidRequestError() *model.APIError {
	return &model.APIError{
		Code:     "INVALID_REQUEST",
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

func newMissingUserIDError() *model.APIError {
	return &model.APIError{
		Code:     "MISSING_USER_ID",
		Message:  "user_idが指定されていません。",
		Category: "validation",
		Action:   "user_idを指定してください。",
	}
}
