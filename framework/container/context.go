package container

// prototypeMetaKey caches the analyzed blueprint on the context node so one
// resolution never derives it twice.
const prototypeMetaKey = "analysis.prototype"

// Context tracks one in-flight resolution. Each node names the service
// being resolved and back-references its parent, forming a chain from the
// root request down to the dependency currently under construction. The
// chain is walked by identifier for cycle detection and carries namespaced
// metadata for the node.
//
// A Context is request-scoped: created fresh per root resolution, discarded
// when it completes or fails, never persisted.
type Context struct {
	id     string
	parent *Context
	meta   map[string]any
}

// NewContext starts a root resolution context for the given identifier.
func NewContext(id string) *Context {
	return &Context{id: id}
}

// Child produces a new node for id linked to the current one. It is
// nil-receiver safe: a child of no context is a root context.
func (c *Context) Child(id string) *Context {
	if c == nil {
		return NewContext(id)
	}
	return &Context{id: id, parent: c}
}

// ID returns the identifier of the service this node is resolving.
func (c *Context) ID() string {
	if c == nil {
		return ""
	}
	return c.id
}

// Parent returns the requesting node, or nil at the root.
func (c *Context) Parent() *Context {
	if c == nil {
		return nil
	}
	return c.parent
}

// InChain reports whether id is already being resolved anywhere in this
// chain, current node included.
func (c *Context) InChain(id string) bool {
	for node := c; node != nil; node = node.parent {
		if node.id == id {
			return true
		}
	}
	return false
}

// Chain returns the identifiers from the root request down to this node.
func (c *Context) Chain() []string {
	var n int
	for node := c; node != nil; node = node.parent {
		n++
	}
	chain := make([]string, n)
	for node := c; node != nil; node = node.parent {
		n--
		chain[n] = node.id
	}
	return chain
}

// Value returns the metadata stored under key on this node.
func (c *Context) Value(key string) (any, bool) {
	if c == nil || c.meta == nil {
		return nil, false
	}
	v, ok := c.meta[key]
	return v, ok
}

// SetValue stores node-local metadata under a namespaced key.
func (c *Context) SetValue(key string, value any) {
	if c == nil {
		return
	}
	if c.meta == nil {
		c.meta = make(map[string]any)
	}
	c.meta[key] = value
}
