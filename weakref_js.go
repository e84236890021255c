//go:build js

package reactor

// WeakHoldingSupported is false on js/wasm: this build degrades
// Connection.HoldWeakly to strong holding, as spec.md's non-goals permit
// ("No guarantee that weak holding is available on all host platforms").
const WeakHoldingSupported = false

// strongWeakRef never reclaims; it documents the degradation rather than
// hiding it.
type strongWeakRef[T any] struct {
	v *T
}

func makeWeakRef[T any](v *T) weakRef[T] {
	return strongWeakRef[T]{v: v}
}

func (r strongWeakRef[T]) Value() *T { return r.v }
