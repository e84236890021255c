//go:build !js

package reactor

import "weak"

// WeakHoldingSupported reports whether Connection.HoldWeakly can actually
// reclaim listeners on this platform.
const WeakHoldingSupported = true

type stdWeakRef[T any] struct {
	p weak.Pointer[T]
}

func makeWeakRef[T any](v *T) weakRef[T] {
	return stdWeakRef[T]{p: weak.Make(v)}
}

func (r stdWeakRef[T]) Value() *T { return r.p.Value() }
