package websocket

import (
	"sync"

	"github.com/google/uuid"

	"ai-researcher-be/internal/pkg/logger"
)

// Manager tracks the live session channels so shutdown can flush them and
// health reporting can count them.
type Manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Channel
	log      logger.ILogger
}

func NewManager(log logger.ILogger) *Manager {
	return &Manager{
		sessions: make(map[uuid.UUID]*Channel),
		log:      log,
	}
}

func (m *Manager) Register(id uuid.UUID, ch *Channel) {
	m.mu.Lock()
	m.sessions[id] = ch
	m.mu.Unlock()

	m.log.Info("websocket", "Session registered", map[string]interface{}{"session_id": id})
}

func (m *Manager) Unregister(id uuid.UUID) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()

	m.log.Info("websocket", "Session unregistered", map[string]interface{}{"session_id": id})
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CloseAll closes every registered channel and waits for their writers to
// drain. Used on graceful shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	channels := make([]*Channel, 0, len(m.sessions))
	for id, ch := range m.sessions {
		channels = append(channels, ch)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, ch := range channels {
		ch.Close()
		<-ch.Done()
	}
}
