// Package userlock はユーザーIDごとの相互排他を提供する。
//
// アクティブタスクの取得・削除とユーザー実績の更新は複数レコードにまたがり、
// 単一トランザクションで保護されないため、同一ユーザーの操作を直列化して
// 二重加算（同時completeの両方が「割り当てあり」を観測する競合）を防ぐ。
// 異なるユーザーの操作は並行に実行できる。
package userlock

import "sync"

// entry はユーザー1人分のロックと参照カウントを保持する。
// 待機者がいない間だけマップから回収できるよう、参照カウントで管理する。
type entry struct {
	mu   sync.Mutex
	refs int
}

// Keyed はユーザーIDごとのミューテックスを管理する。
type Keyed struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// NewKeyed は新しいKeyedを生成する。
func NewKeyed() *Keyed {
	return &Keyed{entries: make(map[string]*entry)}
}

// Lock は指定ユーザーのロックを獲得し、解放関数を返す。
// 解放関数は必ず1回だけ呼ぶこと（通常はdeferで呼ぶ）。
func (k *Keyed) Lock(userID string) (unlock func()) {
	k.mu.Lock()
	e, ok := k.entries[userID]
	if !ok {
		e = &entry{}
		k.entries[userID] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.entries, userID)
		}
		k.mu.Unlock()
	}
}
