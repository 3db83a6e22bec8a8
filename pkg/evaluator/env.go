package evaluator

import "fmt"

// Handle identifies a scope frame in an Env.
type Handle int

// Global is the handle of the outermost frame. It is never popped.
const Global Handle = 0

const noParent Handle = -1

type frame struct {
	bindings map[string]Value
	parent   Handle
}

// Env is an arena of scope frames. Frames reference their enclosing frame
// by handle, and frames are released in stack order.
type Env struct {
	frames []frame
}

// NewEnv creates an environment holding only the global frame.
func NewEnv() *Env {
	return &Env{
		frames: []frame{{bindings: make(map[string]Value), parent: noParent}},
	}
}

// Push creates a frame enclosed by parent and returns its handle.
func (e *Env) Push(parent Handle) Handle {
	e.mustExist(parent)
	e.frames = append(e.frames, frame{
		bindings: make(map[string]Value),
		parent:   parent,
	})
	return Handle(len(e.frames) - 1)
}

// Pop releases h, which must be the most recently pushed frame.
func (e *Env) Pop(h Handle) {
	last := Handle(len(e.frames) - 1)
	if h == Global || h != last {
		panic(fmt.Sprintf("evaluator: pop of frame %d out of order (top is %d)", h, last))
	}
	e.frames[last] = frame{}
	e.frames = e.frames[:last]
}

// Define binds name in frame h, replacing any existing binding there.
func (e *Env) Define(h Handle, name string, v Value) {
	e.mustExist(h)
	e.frames[h].bindings[name] = v
}

// Get looks name up in h and its enclosing frames.
func (e *Env) Get(h Handle, name string) (Value, bool) {
	for cur := h; cur != noParent; cur = e.frames[cur].parent {
		if v, ok := e.frames[cur].bindings[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Assign updates the nearest existing binding of name, searching from h
// outward. It reports false, and binds nothing, when no frame defines name.
func (e *Env) Assign(h Handle, name string, v Value) bool {
	for cur := h; cur != noParent; cur = e.frames[cur].parent {
		if _, ok := e.frames[cur].bindings[name]; ok {
			e.frames[cur].bindings[name] = v
			return true
		}
	}
	return false
}

// Len returns the number of live frames, the global frame included.
func (e *Env) Len() int {
	return len(e.frames)
}

// Names lists the bindings defined directly in frame h.
func (e *Env) Names(h Handle) []string {
	e.mustExist(h)
	names := make([]string, 0, len(e.frames[h].bindings))
	for name := range e.frames[h].bindings {
		names = append(names, name)
	}
	return names
}

func (e *Env) mustExist(h Handle) {
	if h < 0 || int(h) >= len(e.frames) {
		panic(fmt.Sprintf("evaluator: frame %d does not exist", h))
	}
}
