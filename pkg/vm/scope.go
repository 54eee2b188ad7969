// Package vm provides scope management for the evaluator.
package vm

// Scope is a variable binding environment. It supports hierarchical lookup
// through an optional parent, although a program run uses a single scope:
// every run gets a fresh empty Scope and nothing is shared between runs.
type Scope struct {
	variables map[string]any
	parent    *Scope
}

// NewScope creates a new scope with an optional parent scope.
func NewScope(parent *Scope) *Scope {
	return &Scope{
		variables: make(map[string]any),
		parent:    parent,
	}
}

// Get retrieves a variable value by name, searching the current scope first
// and then parent scopes.
func (s *Scope) Get(name string) (any, bool) {
	if value, ok := s.variables[name]; ok {
		return value, true
	}
	if s.parent != nil {
		return s.parent.Get(name)
	}
	return nil, false
}

// Set assigns a variable. If the name exists in an enclosing scope that
// binding is updated, otherwise the variable is created in the current scope.
func (s *Scope) Set(name string, value any) {
	if _, ok := s.variables[name]; ok {
		s.variables[name] = value
		return
	}
	if s.parent != nil && s.parent.Has(name) {
		s.parent.Set(name, value)
		return
	}
	s.variables[name] = value
}

// SetLocal assigns a variable in the current scope only.
func (s *Scope) SetLocal(name string, value any) {
	s.variables[name] = value
}

// Has checks if a variable exists in this scope or any parent scope.
func (s *Scope) Has(name string) bool {
	_, ok := s.Get(name)
	return ok
}

// Keys returns the variable names bound in the current scope.
func (s *Scope) Keys() []string {
	keys := make([]string, 0, len(s.variables))
	for k := range s.variables {
		keys = append(keys, k)
	}
	return keys
}

// Size returns the number of variables in the current scope.
func (s *Scope) Size() int {
	return len(s.variables)
}
