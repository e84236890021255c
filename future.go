package reactor

import "sync"

// futureListener is the callback shape invoked once a Future settles,
// carrying the finished Try.
type futureListener[T any] func(Try[T])

// Future represents a value that will be available later, exactly
// once, as a success or a failure (spec.md §2 "Future/Promise"). It is
// read-only; a Promise is the write side that settles it.
//
// Grounded on the teacher pack's monad.future (snowmerak/gofn), but
// built on the same Reactor dispatch core as Signal/Value rather than a
// bespoke sync.Cond waiter, so late subscribers, priority ordering, and
// panics-become-MultiFailure all fall out of shared machinery.
type Future[T any] struct {
	mu        sync.Mutex
	r         *Reactor[futureListener[T]]
	done      bool
	result    Try[T]
	completed *Value[bool]
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{
		r:         NewReactor[futureListener[T]](func(Try[T]) {}),
		completed: NewValue(false),
	}
}

// IsComplete returns a reactive view of completion, per spec.md §4.5's
// `is_complete() → Value<bool>` — useful for composing with Value's own
// combinators (e.g. When) instead of polling.
func (f *Future[T]) IsComplete() *Value[bool] { return f.completed }

// IsCompleteNow is the non-reactive snapshot, `is_complete_now`.
func (f *Future[T]) IsCompleteNow() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.done
}

// Result returns the settled Try as an Option: Some once complete,
// None beforehand (spec.md §4.5's `result() → Option<Try<T>>`).
func (f *Future[T]) Result() Option[Try[T]] {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.done {
		return None[Try[T]]()
	}
	return Some(f.result)
}

// OnComplete registers fn to run once, with the settled Try, as soon as
// the future completes. If it has already completed, fn runs
// immediately. Mirrors spec.md §4.4's "late subscribers still observe
// the outcome".
func (f *Future[T]) OnComplete(fn func(Try[T])) Connection {
	f.mu.Lock()
	if f.done {
		result := f.result
		f.mu.Unlock()
		fn(result)
		return Connection{}
	}
	f.mu.Unlock()

	conn := connectListener(f.r, func(t Try[T]) { fn(t) }, 0)
	conn.Once()
	return conn
}

// OnSuccess registers fn to run with the value if, and when, the future
// completes successfully.
func (f *Future[T]) OnSuccess(fn func(T)) Connection {
	return f.OnComplete(func(t Try[T]) {
		if t.IsSuccess() {
			fn(t.Get())
		}
	})
}

// OnFailure registers fn to run with the error if, and when, the future
// completes with a failure.
func (f *Future[T]) OnFailure(fn func(error)) Connection {
	return f.OnComplete(func(t Try[T]) {
		if t.IsFailure() {
			fn(t.Err())
		}
	})
}

func (f *Future[T]) settle(t Try[T]) error {
	f.mu.Lock()
	if f.done {
		f.mu.Unlock()
		return illegalState("Complete", "future is already complete")
	}
	f.done = true
	f.result = t
	f.mu.Unlock()

	err := f.r.Notify(func(fn futureListener[T]) error {
		fn(t)
		return nil
	})

	// Post-completion cleanup (spec.md §4.5): listeners are retired once
	// delivered so a long-lived future doesn't pin their closures.
	_ = f.r.ClearConnections()
	_ = f.completed.Update(true)

	return err
}

// Promise is the write side of a Future: exactly one of Succeed, Fail,
// or Complete may be called on it.
type Promise[T any] struct {
	future *Future[T]
}

// NewPromise creates a pending promise.
func NewPromise[T any]() *Promise[T] {
	return &Promise[T]{future: newFuture[T]()}
}

// Future returns the read-only view of this promise.
func (p *Promise[T]) Future() *Future[T] { return p.future }

// Succeed settles the promise's future with a successful value.
// Returns IllegalStateError if already settled (spec.md §4.4).
func (p *Promise[T]) Succeed(v T) error {
	return p.future.settle(Success(v))
}

// Fail settles the promise's future with a failure.
func (p *Promise[T]) Fail(err error) error {
	return p.future.settle(Failure[T](err))
}

// Complete settles the promise's future with an already-built Try.
func (p *Promise[T]) Complete(t Try[T]) error {
	return p.future.settle(t)
}

// SucceededFuture returns an already-completed successful future.
func SucceededFuture[T any](v T) *Future[T] {
	p := NewPromise[T]()
	_ = p.Succeed(v)
	return p.Future()
}

// FailedFuture returns an already-completed failed future.
func FailedFuture[T any](err error) *Future[T] {
	p := NewPromise[T]()
	_ = p.Fail(err)
	return p.Future()
}

// MapFuture derives a future that completes with f applied to src's
// successful value, or passes a failure through untouched. A free
// function: Go methods cannot introduce the new type parameter U.
func MapFuture[T, U any](src *Future[T], f func(T) U) *Future[U] {
	p := NewPromise[U]()
	src.OnComplete(func(t Try[T]) {
		_ = p.Complete(MapTry(t, f))
	})
	return p.Future()
}

// FlatMapFuture derives a future that, once src succeeds, chains into
// the future f returns; a failure of src passes through untouched.
func FlatMapFuture[T, U any](src *Future[T], f func(T) *Future[U]) *Future[U] {
	p := NewPromise[U]()
	src.OnComplete(func(t Try[T]) {
		if t.IsFailure() {
			_ = p.Fail(t.Err())
			return
		}
		f(t.Get()).OnComplete(func(inner Try[U]) {
			_ = p.Complete(inner)
		})
	})
	return p.Future()
}

// RecoverFuture derives a future that turns a failure of src into a
// success by applying f to the error; a success passes through
// untouched.
func RecoverFuture[T any](src *Future[T], f func(error) T) *Future[T] {
	p := NewPromise[T]()
	src.OnComplete(func(t Try[T]) {
		_ = p.Complete(Recover(t, f))
	})
	return p.Future()
}

// TransformFuture derives a future by applying f to src's settled Try
// regardless of outcome, the most general of the Future combinators.
func TransformFuture[T, U any](src *Future[T], f func(Try[T]) Try[U]) *Future[U] {
	p := NewPromise[U]()
	src.OnComplete(func(t Try[T]) {
		_ = p.Complete(f(t))
	})
	return p.Future()
}

// Pair holds the results of Sequence2.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Triple holds the results of Sequence3.
type Triple[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

// Sequence combines a slice of futures of the same type into one
// future of a slice, completing once every input has, and failing with
// a MultiFailure if more than one input failed (spec.md §4.4).
func Sequence[T any](futures []*Future[T]) *Future[[]T] {
	p := NewPromise[[]T]()
	n := len(futures)
	if n == 0 {
		_ = p.Succeed(nil)
		return p.Future()
	}

	var mu sync.Mutex
	results := make([]T, n)
	var errs []error
	remaining := n

	for i, fut := range futures {
		i := i
		fut.OnComplete(func(t Try[T]) {
			mu.Lock()
			defer mu.Unlock()
			if t.IsFailure() {
				errs = append(errs, t.Err())
			} else {
				results[i] = t.Get()
			}
			remaining--
			if remaining == 0 {
				_ = p.Complete(sequenceOutcome(results, errs))
			}
		})
	}
	return p.Future()
}

func sequenceOutcome[T any](results []T, errs []error) Try[[]T] {
	if len(errs) > 0 {
		return Failure[[]T](newMultiFailure(errs))
	}
	return Success(results)
}

// Sequence2 combines two differently-typed futures into a future of
// their Pair.
func Sequence2[A, B any](fa *Future[A], fb *Future[B]) *Future[Pair[A, B]] {
	p := NewPromise[Pair[A, B]]()
	var mu sync.Mutex
	var pair Pair[A, B]
	var errs []error
	remaining := 2

	finish := func() {
		remaining--
		if remaining == 0 {
			if len(errs) > 0 {
				_ = p.Fail(newMultiFailure(errs))
				return
			}
			_ = p.Succeed(pair)
		}
	}

	fa.OnComplete(func(t Try[A]) {
		mu.Lock()
		defer mu.Unlock()
		if t.IsFailure() {
			errs = append(errs, t.Err())
		} else {
			pair.First = t.Get()
		}
		finish()
	})
	fb.OnComplete(func(t Try[B]) {
		mu.Lock()
		defer mu.Unlock()
		if t.IsFailure() {
			errs = append(errs, t.Err())
		} else {
			pair.Second = t.Get()
		}
		finish()
	})
	return p.Future()
}

// Sequence3 combines three differently-typed futures into a future of
// their Triple.
func Sequence3[A, B, C any](fa *Future[A], fb *Future[B], fc *Future[C]) *Future[Triple[A, B, C]] {
	p := NewPromise[Triple[A, B, C]]()
	var mu sync.Mutex
	var triple Triple[A, B, C]
	var errs []error
	remaining := 3

	finish := func() {
		remaining--
		if remaining == 0 {
			if len(errs) > 0 {
				_ = p.Fail(newMultiFailure(errs))
				return
			}
			_ = p.Succeed(triple)
		}
	}

	fa.OnComplete(func(t Try[A]) {
		mu.Lock()
		defer mu.Unlock()
		if t.IsFailure() {
			errs = append(errs, t.Err())
		} else {
			triple.First = t.Get()
		}
		finish()
	})
	fb.OnComplete(func(t Try[B]) {
		mu.Lock()
		defer mu.Unlock()
		if t.IsFailure() {
			errs = append(errs, t.Err())
		} else {
			triple.Second = t.Get()
		}
		finish()
	})
	fc.OnComplete(func(t Try[C]) {
		mu.Lock()
		defer mu.Unlock()
		if t.IsFailure() {
			errs = append(errs, t.Err())
		} else {
			triple.Third = t.Get()
		}
		finish()
	})
	return p.Future()
}

// Collect combines a slice of futures into one future of the
// successful results only, in arrival order; failures are silently
// dropped and Collect always succeeds, possibly with an empty slice
// (spec.md §4.5).
func Collect[T any](futures []*Future[T]) *Future[[]T] {
	p := NewPromise[[]T]()
	n := len(futures)
	if n == 0 {
		_ = p.Succeed(nil)
		return p.Future()
	}

	var mu sync.Mutex
	var results []T
	remaining := n

	// Appending in OnComplete, rather than writing into a slot indexed
	// by input position, is what makes this arrival order: each callback
	// fires as its future actually settles, unlike Sequence's
	// input-ordered results.
	for _, fut := range futures {
		fut.OnComplete(func(t Try[T]) {
			mu.Lock()
			defer mu.Unlock()
			if t.IsSuccess() {
				results = append(results, t.Get())
			}
			remaining--
			if remaining == 0 {
				_ = p.Succeed(results)
			}
		})
	}
	return p.Future()
}
