package vm

import "github.com/chazu/rickroll/pkg/lang"

// Context is one frame of variable bindings.
type Context map[string]lang.Value

// Scope is the variable environment visible to the running activation.
// contexts[0] is the process-lifetime global context; the frames above it
// belong to the current activation, innermost last. Calls behead the stack
// down to the global context and restore the caller's frames on return, so
// a callee never sees its caller's locals.
type Scope struct {
	contexts []Context
}

// NewScope creates a scope holding only an empty global context.
func NewScope() *Scope {
	return &Scope{contexts: []Context{{}}}
}

// NewScopeWith creates a scope around an existing global context.
func NewScopeWith(global Context) *Scope {
	if global == nil {
		global = Context{}
	}
	return &Scope{contexts: []Context{global}}
}

// Push adds an empty innermost context.
func (s *Scope) Push() {
	s.contexts = append(s.contexts, Context{})
}

// Pop removes and returns the innermost context. The global context is
// never popped.
func (s *Scope) Pop() Context {
	if len(s.contexts) <= 1 {
		return nil
	}
	top := s.contexts[len(s.contexts)-1]
	s.contexts = s.contexts[:len(s.contexts)-1]
	return top
}

// Depth returns the number of contexts, including the global one.
func (s *Scope) Depth() int {
	return len(s.contexts)
}

// Top returns the innermost context.
func (s *Scope) Top() Context {
	return s.contexts[len(s.contexts)-1]
}

// Global returns the global context.
func (s *Scope) Global() Context {
	return s.contexts[0]
}

// Behead removes and returns every context above the global one.
func (s *Scope) Behead() []Context {
	rest := s.contexts[1:]
	removed := make([]Context, len(rest))
	copy(removed, rest)
	s.contexts = s.contexts[:1]
	return removed
}

// PushAll re-appends previously beheaded contexts in order.
func (s *Scope) PushAll(ctxs []Context) {
	s.contexts = append(s.contexts, ctxs...)
}

// Get resolves a name, innermost context first, falling back to the global
// context.
func (s *Scope) Get(name string) (lang.Value, bool) {
	for i := len(s.contexts) - 1; i >= 0; i-- {
		if v, ok := s.contexts[i][name]; ok {
			return v, true
		}
	}
	return lang.Undefined, false
}

// Set assigns to the innermost context already containing the name, with
// the same global fallback as Get. It never creates a binding; it reports
// whether the name was found.
func (s *Scope) Set(name string, v lang.Value) bool {
	for i := len(s.contexts) - 1; i >= 0; i-- {
		if _, ok := s.contexts[i][name]; ok {
			s.contexts[i][name] = v
			return true
		}
	}
	return false
}
