package navigator

import (
	"log/slog"
	"slices"
	"sync"
)

// Observer is told about every effective state change.
type Observer func(prev, next State)

// Controller hosts the current State. Dispatches are serialized and the
// state is replaced as a unit, so readers always see a complete snapshot.
type Controller struct {
	log *slog.Logger

	mu        sync.RWMutex
	state     State
	observers map[int]Observer
	nextID    int

	// serializes Dispatch from step through notification; taken before mu
	dispatchMu sync.Mutex
}

func NewController(log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{log: log, observers: make(map[int]Observer)}
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Dispatch applies cmd and reports whether the state changed. Observers run
// after the state lock is released, in registration order, and changes are
// delivered in the order they were committed. An observer may read State but
// must not call Dispatch.
func (c *Controller) Dispatch(cmd Command) (State, bool) {
	c.dispatchMu.Lock()
	defer c.dispatchMu.Unlock()

	c.mu.Lock()
	prev := c.state
	next, changed := step(prev, cmd)
	if !changed {
		c.mu.Unlock()
		c.log.Debug("navigator no-op", "cmd", commandName(cmd), "phase", prev.Phase().String())
		return prev, false
	}
	c.state = next
	obs := c.snapshotObservers()
	c.mu.Unlock()

	id, _ := next.CurrentID()
	c.log.Info("navigator", "cmd", commandName(cmd), "phase", next.Phase().String(), "node", id, "depth", len(next.history))
	for _, o := range obs {
		o(prev, next)
	}
	return next, true
}

// Subscribe registers o and returns a func that removes it.
func (c *Controller) Subscribe(o Observer) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.observers[id] = o
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.observers, id)
			c.mu.Unlock()
		})
	}
}

// caller holds mu
func (c *Controller) snapshotObservers() []Observer {
	ids := make([]int, 0, len(c.observers))
	for id := range c.observers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]Observer, len(ids))
	for i, id := range ids {
		out[i] = c.observers[id]
	}
	return out
}

func commandName(cmd Command) string {
	if cmd == nil {
		return "<nil>"
	}
	return cmd.String()
}
