package reactor

import "reflect"

// listenerHolder holds a listener either strongly or, after HoldWeakly,
// weakly. The registration node itself is always strongly held by its
// Reactor (spec.md §3: "weak holding refers to the listener, never to
// the registration node itself").
type listenerHolder[L any] struct {
	strong *L
	weak   weakRef[L]
}

func newStrongHolder[L any](fn L) listenerHolder[L] {
	v := fn
	return listenerHolder[L]{strong: &v}
}

// get returns the live listener and true, or the zero value and false if
// a weakly-held listener has been reclaimed.
func (h *listenerHolder[L]) get() (L, bool) {
	if h.weak != nil {
		p := h.weak.Value()
		if p == nil {
			var zero L
			return zero, false
		}
		return *p, true
	}
	return *h.strong, true
}

// makeWeak converts a strong hold into a weak one. Idempotent.
func (h *listenerHolder[L]) makeWeak() {
	if h.weak != nil || h.strong == nil {
		return
	}
	h.weak = makeWeakRef(h.strong)
	h.strong = nil
}

// isNilListener detects an absent listener generically. L is always a
// function type in this package, which reflect reports as nilable.
func isNilListener[L any](fn L) bool {
	v := reflect.ValueOf(fn)
	switch v.Kind() {
	case reflect.Func, reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan:
		return v.IsNil()
	default:
		return false
	}
}
