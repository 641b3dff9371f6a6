// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizerService はカタログのタスク文をプレーンテキストに正規化し、
// チャットのDMやWebhook先にタグがそのまま流れることを防ぐ。
// URLGuardService は外部通知先URLの事前検証とSSRF防止付きHTTPクライアントを提供する。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizerService はタスク文のサニタイズ機能のインターフェースを定義する。
// カタログ読み込み時に使用される。
type TextSanitizerService interface {
	// Sanitize は入力からHTMLタグをすべて除去したプレーンテキストを返す。
	// 実体参照（&amp;等）は元の文字に戻す。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// textSanitizer はTextSanitizerServiceの実装。
// bluemondayのStrictPolicyを保持し、スレッドセーフにサニタイズ処理を行う。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicyは全タグを除去する。タスク文は表示専用のプレーンテキストであり、
// マークアップを許可する理由がないため許可リストは空にする。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は入力からHTMLタグを除去したプレーンテキストを返す。
func (s *textSanitizer) Sanitize(raw string) string {
	// StrictPolicyはタグ除去後にテキストを実体参照へエスケープするため、
	// プレーンテキストとして扱えるように戻す。
	stripped := s.policy.Sanitize(raw)
	return strings.TrimSpace(html.UnescapeString(stripped))
}

// compile-time interface check
var _ TextSanitizerService = (*textSanitizer)(nil)
