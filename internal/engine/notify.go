package engine

// ChangeKind names the part of the state that changed.
type ChangeKind string

const (
	ChangeMenu         ChangeKind = "menu"
	ChangeOrders       ChangeKind = "orders"
	ChangeEvent        ChangeKind = "event"
	ChangeQueue        ChangeKind = "queue"
	ChangeConnectivity ChangeKind = "connectivity"
)

// Change is one state-change notification. Rev increases with every
// notification the engine sends.
type Change struct {
	Kind ChangeKind `json:"kind"`
	Rev  int64      `json:"rev"`
}

// Subscribe registers fn for change notifications and returns a function
// that removes it. fn runs synchronously on the goroutine that made the
// change, after the engine has released its locks; it must not block.
func (e *Engine) Subscribe(fn func(Change)) (unsubscribe func()) {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()

	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	return func() {
		e.subsMu.Lock()
		defer e.subsMu.Unlock()
		delete(e.subs, id)
	}
}

func (e *Engine) emit(kind ChangeKind) {
	change := Change{Kind: kind, Rev: e.clock.Next()}

	e.subsMu.Lock()
	fns := make([]func(Change), 0, len(e.subs))
	for _, fn := range e.subs {
		fns = append(fns, fn)
	}
	e.subsMu.Unlock()

	for _, fn := range fns {
		fn(change)
	}
}
