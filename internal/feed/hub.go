package feed

import (
	"sync"

	"github.com/google/uuid"

	"github.com/UkralStul/blog-api/internal/domain"
)

// Hub хранит каналы подписчиков на опубликованные комментарии.
type Hub struct {
	mu sync.RWMutex
	//          map[postID] map[subscriberID] channel
	subs   map[uint]map[string]chan *domain.Comment
	buffer int
}

// NewHub - конструктор. buffer - размер канала каждого подписчика.
func NewHub(buffer int) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub{
		subs:   make(map[uint]map[string]chan *domain.Comment),
		buffer: buffer,
	}
}

// Subscribe регистрирует подписчика на комментарии поста. cancel удаляет
// подписку и закрывает канал; вызывать его можно несколько раз.
func (h *Hub) Subscribe(postID uint) (<-chan *domain.Comment, func()) {
	ch := make(chan *domain.Comment, h.buffer)
	subID := uuid.NewString()

	h.mu.Lock()
	if h.subs[postID] == nil {
		h.subs[postID] = make(map[string]chan *domain.Comment)
	}
	h.subs[postID][subID] = ch
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			if postSubs, ok := h.subs[postID]; ok {
				delete(postSubs, subID)
				if len(postSubs) == 0 {
					delete(h.subs, postID)
				}
			}
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish рассылает комментарий подписчикам его поста, не блокируясь:
// медленный подписчик пропускает сообщение.
func (h *Hub) Publish(c *domain.Comment) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subs[c.PostID] {
		select {
		case ch <- c:
		default:
		}
	}
}

// Subscribers возвращает число подписчиков поста.
func (h *Hub) Subscribers(postID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[postID])
}
