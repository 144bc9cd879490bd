package workflow

import (
	"sync"

	"github.com/google/uuid"
)

// Context is the shared, mutable key/value execution state passed through a
// run. It is safe for concurrent read/write when shared across parallel
// branches; the engine itself provides no cross-key coordination, so callers
// sharing a context must use disjoint keys or accept races at the value
// level.
type Context struct {
	data   *contextData
	prefix string
	runID  string
}

// contextData is the store shared by a context and all its scoped views.
type contextData struct {
	mu        sync.RWMutex
	values    map[string]any
	listeners []Listener
}

// NewContext creates an empty execution context with a fresh run ID.
func NewContext() *Context {
	return &Context{
		data: &contextData{
			values: make(map[string]any),
		},
		runID: uuid.NewString(),
	}
}

// RunID returns the identifier assigned to this execution context at
// construction. Scoped views and copies share the same run ID.
func (c *Context) RunID() string { return c.runID }

// key resolves k against the scope prefix.
func (c *Context) key(k string) string {
	if c.prefix == "" {
		return k
	}
	return c.prefix + "." + k
}

// Put stores a value. On a scoped view the value lands in the parent store
// under "<scope>.<key>".
func (c *Context) Put(k string, v any) {
	c.data.mu.Lock()
	defer c.data.mu.Unlock()
	c.data.values[c.key(k)] = v
}

// Get retrieves a value. A scoped view first checks its own namespace and
// then falls back to the top-level key.
func (c *Context) Get(k string) (any, bool) {
	c.data.mu.RLock()
	defer c.data.mu.RUnlock()

	if c.prefix != "" {
		if v, ok := c.data.values[c.key(k)]; ok {
			return v, true
		}
	}
	v, ok := c.data.values[k]
	return v, ok
}

// GetString retrieves a string value.
func (c *Context) GetString(k string) (string, bool) {
	v, ok := c.Get(k)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetInt retrieves an int value.
func (c *Context) GetInt(k string) (int, bool) {
	v, ok := c.Get(k)
	if !ok {
		return 0, false
	}
	i, ok := v.(int)
	return i, ok
}

// GetBool retrieves a bool value.
func (c *Context) GetBool(k string) (bool, bool) {
	v, ok := c.Get(k)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// Has reports whether a key is present.
func (c *Context) Has(k string) bool {
	_, ok := c.Get(k)
	return ok
}

// Delete removes a key.
func (c *Context) Delete(k string) {
	c.data.mu.Lock()
	defer c.data.mu.Unlock()
	delete(c.data.values, c.key(k))
}

// Keys returns a snapshot of every key in the store, scoped keys included.
func (c *Context) Keys() []string {
	c.data.mu.RLock()
	defer c.data.mu.RUnlock()

	keys := make([]string, 0, len(c.data.values))
	for k := range c.data.values {
		keys = append(keys, k)
	}
	return keys
}

// Len returns the number of entries in the store.
func (c *Context) Len() int {
	c.data.mu.RLock()
	defer c.data.mu.RUnlock()
	return len(c.data.values)
}

// Scoped returns a view whose writes land in this context's store under
// "<scope>.<key>". Scopes nest: scoping an already-scoped view joins the
// prefixes with a dot.
func (c *Context) Scoped(scope string) *Context {
	return &Context{
		data:   c.data,
		prefix: c.key(scope),
		runID:  c.runID,
	}
}

// Copy returns an isolated context holding a shallow snapshot of the
// top-level keys. Listeners and the run ID are carried over; later writes on
// either side are not visible to the other.
func (c *Context) Copy() *Context {
	c.data.mu.RLock()
	defer c.data.mu.RUnlock()

	values := make(map[string]any, len(c.data.values))
	for k, v := range c.data.values {
		values[k] = v
	}
	listeners := make([]Listener, len(c.data.listeners))
	copy(listeners, c.data.listeners)

	return &Context{
		data: &contextData{
			values:    values,
			listeners: listeners,
		},
		prefix: c.prefix,
		runID:  c.runID,
	}
}

// AddListener registers a lifecycle listener invoked synchronously around
// every workflow execution driven through this context.
func (c *Context) AddListener(l Listener) {
	if l == nil {
		return
	}
	c.data.mu.Lock()
	defer c.data.mu.Unlock()
	c.data.listeners = append(c.data.listeners, l)
}

// snapshotListeners returns the registered listeners without holding the lock
// during callback invocation.
func (c *Context) snapshotListeners() []Listener {
	c.data.mu.RLock()
	defer c.data.mu.RUnlock()
	if len(c.data.listeners) == 0 {
		return nil
	}
	out := make([]Listener, len(c.data.listeners))
	copy(out, c.data.listeners)
	return out
}

func (c *Context) fireStart(name string) {
	for _, l := range c.snapshotListeners() {
		l.OnStart(name, c)
	}
}

func (c *Context) fireSuccess(name string, res *Result) {
	for _, l := range c.snapshotListeners() {
		l.OnSuccess(name, c, res)
	}
}

func (c *Context) fireFailure(name string, res *Result) {
	for _, l := range c.snapshotListeners() {
		l.OnFailure(name, c, res)
	}
}
