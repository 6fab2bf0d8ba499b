package hooks

import (
	"io"
	"sort"
	"sync"
)

// RenderFunc writes widget markup when its hook fires.
type RenderFunc func(w io.Writer)

type subscriber struct {
	priority int
	seq      int
	fn       RenderFunc
}

// Bus is the deferred-render dispatch point: dispatchers subscribe render
// callbacks during page setup, the page pipeline fires hooks later in the
// same request. Subscribers run in ascending priority, ties broken by
// registration order. Registering the same callback twice renders twice.
type Bus struct {
	mu    sync.Mutex
	seq   int
	subs  map[string][]subscriber
	order []string // hooks in first-registration order
}

func NewBus() *Bus {
	return &Bus{subs: map[string][]subscriber{}}
}

// Register subscribes fn to the named hook.
func (b *Bus) Register(hook string, priority int, fn RenderFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[hook]; !ok {
		b.order = append(b.order, hook)
	}
	b.subs[hook] = append(b.subs[hook], subscriber{priority: priority, seq: b.seq, fn: fn})
	b.seq++
}

// Fire runs every subscriber of the hook against w. Unknown hooks are a
// no-op.
func (b *Bus) Fire(hook string, w io.Writer) {
	b.mu.Lock()
	subs := append([]subscriber(nil), b.subs[hook]...)
	b.mu.Unlock()

	sort.SliceStable(subs, func(i, j int) bool {
		if subs[i].priority != subs[j].priority {
			return subs[i].priority < subs[j].priority
		}
		return subs[i].seq < subs[j].seq
	})
	for _, s := range subs {
		s.fn(w)
	}
}

// Hooks returns the hooks that have subscribers, in first-registration
// order.
func (b *Bus) Hooks() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.order...)
}

// Subscribers returns the subscriber count for a hook.
func (b *Bus) Subscribers(hook string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[hook])
}
