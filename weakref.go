package reactor

// weakRef abstracts over a platform's ability to reclaim the referent of
// a held listener. makeWeakRef and WeakHoldingSupported are provided per
// platform in weakref_default.go (standard targets) and weakref_js.go
// (js/wasm), the same //go:build split the teacher uses in
// internal/runtime_default.go / internal/runtime_wasm.go to pick a
// per-goroutine runtime lookup versus a single global one.
//
// Design Notes §9 frames this as a capability rather than a guarantee:
// "if the host platform offers observable weak references, hold_weakly
// attaches them; otherwise it documents a degradation to strong holding."
type weakRef[T any] interface {
	// Value returns the referenced object, or nil once it has been
	// reclaimed (on a platform without weak-reference support, Value
	// never returns nil — the fallback degrades to strong holding).
	Value() *T
}
