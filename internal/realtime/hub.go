package realtime

import (
	"context"
	"sync"
	"time"
)

// Action identifies the row-level mutation carried by a change notification.
type Action string

const (
	ActionInsert Action = "insert"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Change is a row-level change notification for a filtered table scope.
type Change struct {
	Table       string
	Action      Action
	RowID       string
	ScopeColumn string
	ScopeValue  string
	Timestamp   time.Time
}

type channelKey struct {
	table       string
	scopeColumn string
	scopeValue  string
}

type subscriber struct {
	id     int64
	stream chan Change
}

// Hub fans row change notifications out to scoped subscribers. Each open
// screen holds exactly one subscription per (table, parent key) pair; delivery
// is best effort and drops on a full buffer rather than blocking publishers.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[channelKey]map[int64]*subscriber
	nextID      int64
	bufferSize  int
}

// NewHub constructs an empty change hub.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[channelKey]map[int64]*subscriber),
		bufferSize:  16,
	}
}

// Subscribe opens one channel filtered to the given table and parent scope.
// An empty scope column subscribes to every change on the table. The channel
// is closed when the context ends or the returned cancel function runs.
func (h *Hub) Subscribe(ctx context.Context, table, scopeColumn, scopeValue string) (<-chan Change, func()) {
	if table == "" {
		ch := make(chan Change)
		close(ch)
		return ch, func() {}
	}
	key := channelKey{table: table, scopeColumn: scopeColumn, scopeValue: scopeValue}
	sub := &subscriber{
		id:     h.nextSequence(),
		stream: make(chan Change, h.bufferSize),
	}
	h.register(key, sub)
	cleanup := func() {
		h.unregister(key, sub.id)
	}
	go func() {
		<-ctx.Done()
		cleanup()
	}()
	return sub.stream, cleanup
}

// Publish delivers the change to subscribers of the exact scope and to
// table-wide subscribers. Slow consumers lose messages instead of blocking.
func (h *Hub) Publish(change Change) {
	if change.Table == "" || change.Action == "" {
		return
	}
	keys := []channelKey{
		{table: change.Table},
	}
	if change.ScopeColumn != "" {
		keys = append(keys, channelKey{
			table:       change.Table,
			scopeColumn: change.ScopeColumn,
			scopeValue:  change.ScopeValue,
		})
	}

	h.mu.RLock()
	copies := make([]*subscriber, 0)
	for _, key := range keys {
		for _, sub := range h.subscribers[key] {
			copies = append(copies, sub)
		}
	}
	h.mu.RUnlock()

	for _, sub := range copies {
		select {
		case sub.stream <- change:
		default:
		}
	}
}

// Signal coalesces a change stream into bare notifications, the shape the
// sync stores consume. The forwarding goroutine exits with the context.
func Signal(ctx context.Context, changes <-chan Change) <-chan struct{} {
	notify := make(chan struct{}, 1)
	go func() {
		defer close(notify)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
				select {
				case notify <- struct{}{}:
				default:
				}
			}
		}
	}()
	return notify
}

func (h *Hub) nextSequence() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	return h.nextID
}

func (h *Hub) register(key channelKey, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subscribers[key]; !ok {
		h.subscribers[key] = make(map[int64]*subscriber)
	}
	h.subscribers[key][sub.id] = sub
}

func (h *Hub) unregister(key channelKey, subscriberID int64) {
	h.mu.Lock()
	subscribers := h.subscribers[key]
	if subscribers != nil {
		delete(subscribers, subscriberID)
		if len(subscribers) == 0 {
			delete(h.subscribers, key)
		}
	}
	h.mu.Unlock()
}
