package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// DMProberInterface はDMハンドラーが必要とするプローブインターフェース。
type DMProberInterface interface {
	// PingDM はDM到達性のプローブを送信する。
	PingDM(ctx context.Context, userID string) error
}

// DMHandler はDM到達性プローブのHTTPハンドラー。
type DMHandler struct {
	prober DMProberInterface
}

// NewDMHandler はDMHandlerを生成する。
func NewDMHandler(prober DMProberInterface) *DMHandler {
	return &DMHandler{prober: prober}
}

// dmPingRequestBody はDMプローブリクエストのボディ。
type dmPingRequestBody struct {
	UserID string `json:"user_id"`
}

// PingDM はDM到達性を確認する。
// POST /api/dm/ping
func (h *DMHandler) PingDM(w http.ResponseWriter, r *http.Request) {
	var req dmPingRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, newInvalidRequestError())
		return
	}

	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, newMissingUserIDError())
		return
	}

	if err := h.prober.PingDM(r.Context(), req.UserID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
