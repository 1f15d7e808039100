package scripting

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Scope selects one of the bindings of a ScriptContext.
type Scope int

const (
	// EngineScope holds the variables of a single engine.
	EngineScope Scope = 100
	// GlobalScope holds variables shared by the engines of a host.
	GlobalScope Scope = 200
)

func (s Scope) String() string {
	switch s {
	case EngineScope:
		return "engine"
	case GlobalScope:
		return "global"
	default:
		return fmt.Sprintf("scope(%d)", int(s))
	}
}

// ScriptContext connects an engine to its host: the bindings of each scope,
// the streams scripts read and write, and the name of the running script.
type ScriptContext struct {
	mu     sync.RWMutex
	engine Bindings
	global Bindings

	Reader      io.Reader
	Writer      io.Writer
	ErrorWriter io.Writer
	// FileName labels errors raised by the script being evaluated.
	FileName string
}

// NewScriptContext returns a context over engine bindings with the process
// standard streams. The global scope starts unset.
func NewScriptContext(engine Bindings) *ScriptContext {
	return &ScriptContext{
		engine:      engine,
		Reader:      os.Stdin,
		Writer:      os.Stdout,
		ErrorWriter: os.Stderr,
	}
}

// Bindings returns the bindings of scope, or nil when none are set.
func (c *ScriptContext) Bindings(scope Scope) Bindings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	switch scope {
	case EngineScope:
		return c.engine
	case GlobalScope:
		return c.global
	default:
		return nil
	}
}

// SetBindings replaces the bindings of scope. Engine scope bindings cannot be
// nil.
func (c *ScriptContext) SetBindings(b Bindings, scope Scope) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch scope {
	case EngineScope:
		if b == nil {
			return fmt.Errorf("engine scope bindings cannot be nil")
		}
		c.engine = b
	case GlobalScope:
		c.global = b
	default:
		return fmt.Errorf("invalid %s", scope)
	}
	return nil
}

// Attribute looks name up in engine scope, then in global scope.
func (c *ScriptContext) Attribute(name string) (any, Scope, bool) {
	for _, scope := range []Scope{EngineScope, GlobalScope} {
		b := c.Bindings(scope)
		if b != nil && b.ContainsKey(name) {
			return b.Get(name), scope, true
		}
	}
	return nil, 0, false
}
