package reactor

import (
	"iter"
	"sync"
)

// MapOp identifies the kind of mutation a MapChange describes.
type MapOp int

const (
	MapPut MapOp = iota
	MapRemoved
)

// MapChange describes a single mutation of an RMap[K,V].
type MapChange[K comparable, V any] struct {
	Op       MapOp
	Key      K
	New      V
	Old      Option[V]
}

// RMap is a reactive key→value mapping with unique keys, wrapping a
// Reactor[func(MapChange[K,V])] around a plain Go map.
type RMap[K comparable, V any] struct {
	mu        sync.Mutex
	r         *Reactor[func(MapChange[K, V])]
	items     map[K]V
	sizeView  *Value[int]
	keyViews  map[K]*viewRefs[V]
}

// viewRefs tracks the lazily created contains_key_view/get_view pair
// for a single key, so repeated calls return the same Value instances.
type viewRefs[V any] struct {
	contains *Value[bool]
	get      *Value[Option[V]]
}

// NewRMap creates an empty reactive map.
func NewRMap[K comparable, V any]() *RMap[K, V] {
	return &RMap[K, V]{
		r:     NewReactor[func(MapChange[K, V])](func(MapChange[K, V]) {}),
		items: make(map[K]V),
	}
}

// WrapRMap creates a reactive map pre-populated from items. The map is
// copied; subsequent mutation goes only through the returned RMap.
func WrapRMap[K comparable, V any](items map[K]V) *RMap[K, V] {
	m := NewRMap[K, V]()
	for k, v := range items {
		m.items[k] = v
	}
	return m
}

// Len returns the current number of entries.
func (m *RMap[K, V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// ContainsKey reports whether k is present.
func (m *RMap[K, V]) ContainsKey(k K) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.items[k]
	return ok
}

// GetOrElse returns the value at k, or def if absent.
func (m *RMap[K, V]) GetOrElse(k K, def V) V {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.items[k]; ok {
		return v
	}
	return def
}

// Connect registers fn to run on every subsequent change.
func (m *RMap[K, V]) Connect(fn func(MapChange[K, V])) Connection {
	return connectListener(m.r, fn, 0)
}

// ConnectNotify registers fn, then immediately replays the current
// contents as Put events, then behaves like Connect.
func (m *RMap[K, V]) ConnectNotify(fn func(MapChange[K, V])) Connection {
	conn := m.Connect(fn)
	m.mu.Lock()
	snapshot := make(map[K]V, len(m.items))
	for k, v := range m.items {
		snapshot[k] = v
	}
	m.mu.Unlock()
	for k, v := range snapshot {
		fn(MapChange[K, V]{Op: MapPut, Key: k, New: v, Old: None[V]()})
	}
	return conn
}

func (m *RMap[K, V]) emit(ch MapChange[K, V]) error {
	err := m.r.Notify(func(fn func(MapChange[K, V])) error {
		fn(ch)
		return nil
	})
	m.updateSizeView()
	m.updateKeyViews(ch.Key)
	return err
}

func (m *RMap[K, V]) updateSizeView() {
	if m.sizeView == nil {
		return
	}
	m.mu.Lock()
	n := len(m.items)
	m.mu.Unlock()
	_ = m.sizeView.Update(n)
}

func (m *RMap[K, V]) updateKeyViews(k K) {
	m.mu.Lock()
	refs, ok := m.keyViews[k]
	if !ok {
		m.mu.Unlock()
		return
	}
	v, present := m.items[k]
	m.mu.Unlock()

	if refs.contains != nil {
		_ = refs.contains.Update(present)
	}
	if refs.get != nil {
		if present {
			_ = refs.get.Update(Some(v))
		} else {
			_ = refs.get.Update(None[V]())
		}
	}
}

// SizeView returns a lazily initialized Value tracking the map's entry
// count, refreshed after each notify.
func (m *RMap[K, V]) SizeView() *Value[int] {
	m.mu.Lock()
	if m.sizeView == nil {
		m.sizeView = NewValue(len(m.items))
	}
	v := m.sizeView
	m.mu.Unlock()
	return v
}

func (m *RMap[K, V]) viewsFor(k K) *viewRefs[V] {
	if m.keyViews == nil {
		m.keyViews = make(map[K]*viewRefs[V])
	}
	refs, ok := m.keyViews[k]
	if !ok {
		refs = &viewRefs[V]{}
		m.keyViews[k] = refs
	}
	return refs
}

// ContainsKeyView returns a derived Value[bool] for k's presence,
// updated on Put (only when old was absent) and Removed (spec.md §4.6).
func (m *RMap[K, V]) ContainsKeyView(k K) *Value[bool] {
	m.mu.Lock()
	defer m.mu.Unlock()
	refs := m.viewsFor(k)
	if refs.contains == nil {
		_, present := m.items[k]
		refs.contains = NewValue(present)
	}
	return refs.contains
}

// GetView returns a derived Value[Option[V]] for k, updated on every
// Put/Removed for that key.
func (m *RMap[K, V]) GetView(k K) *Value[Option[V]] {
	m.mu.Lock()
	defer m.mu.Unlock()
	refs := m.viewsFor(k)
	if refs.get == nil {
		if v, present := m.items[k]; present {
			refs.get = NewValue(Some(v))
		} else {
			refs.get = NewValue(None[V]())
		}
	}
	return refs.get
}

// Put sets k to v, emitting Put(k, v, old) iff v differs from the
// current value under deep equality. Emits unconditionally if the key
// was absent.
func (m *RMap[K, V]) Put(k K, v V) error {
	m.mu.Lock()
	old, present := m.items[k]
	if present && deepEqual(old, v) {
		m.mu.Unlock()
		return nil
	}
	m.items[k] = v
	m.mu.Unlock()

	oldOpt := None[V]()
	if present {
		oldOpt = Some(old)
	}
	return m.emit(MapChange[K, V]{Op: MapPut, Key: k, New: v, Old: oldOpt})
}

// PutForce sets k to v and always emits Put(k, v, old).
func (m *RMap[K, V]) PutForce(k K, v V) error {
	m.mu.Lock()
	old, present := m.items[k]
	m.items[k] = v
	m.mu.Unlock()

	oldOpt := None[V]()
	if present {
		oldOpt = Some(old)
	}
	return m.emit(MapChange[K, V]{Op: MapPut, Key: k, New: v, Old: oldOpt})
}

// Remove deletes k, emitting Removed(k, old) iff the key was present.
func (m *RMap[K, V]) Remove(k K) error {
	m.mu.Lock()
	old, present := m.items[k]
	if !present {
		m.mu.Unlock()
		return nil
	}
	delete(m.items, k)
	m.mu.Unlock()
	return m.emit(MapChange[K, V]{Op: MapRemoved, Key: k, Old: Some(old)})
}

// RemoveForce deletes k and always emits Removed(k, old), where old is
// None if the key was not present.
func (m *RMap[K, V]) RemoveForce(k K) error {
	m.mu.Lock()
	old, present := m.items[k]
	delete(m.items, k)
	m.mu.Unlock()

	oldOpt := None[V]()
	if present {
		oldOpt = Some(old)
	}
	return m.emit(MapChange[K, V]{Op: MapRemoved, Key: k, Old: oldOpt})
}

// Clear removes every entry, emitting one Removed per entry against an
// already-empty backing store (snapshot-then-clear, per spec.md §4.6).
func (m *RMap[K, V]) Clear() error {
	m.mu.Lock()
	snapshot := make(map[K]V, len(m.items))
	for k, v := range m.items {
		snapshot[k] = v
	}
	m.items = make(map[K]V)
	m.mu.Unlock()

	var errs []error
	for k, v := range snapshot {
		if err := m.emit(MapChange[K, V]{Op: MapRemoved, Key: k, Old: Some(v)}); err != nil {
			errs = append(errs, err)
		}
	}
	return newMultiFailure(errs)
}

// Entries returns an iterator over the map's current contents. Order is
// unspecified, matching Go's own map iteration.
func (m *RMap[K, V]) Entries() iter.Seq2[K, V] {
	m.mu.Lock()
	snapshot := make(map[K]V, len(m.items))
	for k, v := range m.items {
		snapshot[k] = v
	}
	m.mu.Unlock()

	return func(yield func(K, V) bool) {
		for k, v := range snapshot {
			if !yield(k, v) {
				return
			}
		}
	}
}

// HasConnections reports whether any listener is currently connected.
func (m *RMap[K, V]) HasConnections() bool { return m.r.HasConnections() }

// ClearConnections removes every connection.
func (m *RMap[K, V]) ClearConnections() error { return m.r.ClearConnections() }
