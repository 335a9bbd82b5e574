// Package realtime re-delivers the full attendance set whenever postgres
// reports a change on the attendance table.
package realtime

import (
	"sync"

	"github.com/google/uuid"

	"github.com/Spok95/attendance-bot/internal/domain/attendance"
)

// Hub fans out full record sets. Each subscriber holds at most one pending
// set; a newer set replaces an unread one, so the last fetch wins.
type Hub struct {
	mu     sync.Mutex
	subs   map[string]chan []attendance.Record
	latest []attendance.Record
	seeded bool
}

func NewHub() *Hub {
	return &Hub{subs: map[string]chan []attendance.Record{}}
}

// Subscribe registers a subscriber. The latest known set, if any, is
// delivered immediately. cancel must be called to release the slot.
func (h *Hub) Subscribe() (id string, sets <-chan []attendance.Record, cancel func()) {
	id = uuid.NewString()
	ch := make(chan []attendance.Record, 1)

	h.mu.Lock()
	h.subs[id] = ch
	if h.seeded {
		ch <- h.latest
	}
	h.mu.Unlock()

	var once sync.Once
	cancel = func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
		})
	}
	return id, ch, cancel
}

func (h *Hub) Publish(set []attendance.Record) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest = set
	h.seeded = true
	for _, ch := range h.subs {
		select {
		case ch <- set:
		default:
			// drop the stale pending set, then deliver the new one
			select {
			case <-ch:
			default:
			}
			ch <- set
		}
	}
}
