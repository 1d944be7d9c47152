package realtime

import (
	"sync"

	"critterserver/models"
)

// Registry は接続中のWebSocketクライアントの集合です。
// 各接続のハンドラゴルーチンと読み取りゴルーチンから同時に追加・削除されるため、
// ミューテックスで保護します。
type Registry struct {
	mu      sync.Mutex
	clients map[*models.Client]bool
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[*models.Client]bool)}
}

func (r *Registry) Add(c *models.Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c] = true
}

func (r *Registry) Remove(c *models.Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, c)
}

// Len は現在の接続クライアント数を返します。
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}
