// Package events carries "data changed" notifications from the command
// layer to whatever presentation layer is listening.
package events

import (
	"log/slog"
	"sync"
)

// Entity names the kind of record a change touched.
type Entity string

// Entities that produce change notifications.
const (
	EntityUser        Entity = "user"
	EntityAccount     Entity = "account"
	EntityCategory    Entity = "category"
	EntityTransaction Entity = "transaction"
	EntityBudget      Entity = "budget"
	EntityGoal        Entity = "goal"
	EntityAlert       Entity = "alert"
	EntityRecurring   Entity = "recurring"
)

// Op is the kind of mutation.
type Op string

// Mutation kinds.
const (
	OpCreate    Op = "create"
	OpUpdate    Op = "update"
	OpDelete    Op = "delete"
	OpRecompute Op = "recompute"
	OpImport    Op = "import"
)

// Change describes one committed mutation. AccountIDs lists the accounts
// whose balances may have moved.
type Change struct {
	Entity     Entity
	Op         Op
	ID         string
	AccountIDs []string
}

// Notifier is what the command layer publishes to.
type Notifier interface {
	Notify(Change)
}

// Bus fans a change out to every subscriber. Handlers run synchronously
// on the notifying goroutine, in subscription order.
type Bus struct {
	handlers map[int]func(Change)
	order    []int
	next     int
	mu       sync.RWMutex
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[int]func(Change))}
}

// Subscribe registers fn and returns a function that removes it.
func (b *Bus) Subscribe(fn func(Change)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	b.handlers[id] = fn
	b.order = append(b.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.handlers, id)
			for i, v := range b.order {
				if v == id {
					b.order = append(b.order[:i], b.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Notify delivers c to every current subscriber.
func (b *Bus) Notify(c Change) {
	b.mu.RLock()
	handlers := make([]func(Change), 0, len(b.order))
	for _, id := range b.order {
		handlers = append(handlers, b.handlers[id])
	}
	b.mu.RUnlock()

	slog.Debug("data changed", "entity", c.Entity, "op", c.Op, "id", c.ID, "subscribers", len(handlers))
	for _, fn := range handlers {
		fn(c)
	}
}

// Discard drops every notification.
type Discard struct{}

// Notify does nothing.
func (Discard) Notify(Change) {}
