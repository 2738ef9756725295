package schnauzer

// Iterator is a lazy, finite sequence over decoded values. Each call that
// hands out an Iterator starts a fresh walk; nothing is cached between walks.
//
//	it := obj.LoadCommands()
//	for it.Next() {
//		lc := it.Value()
//		...
//	}
//	if err := it.Err(); err != nil {
//		...
//	}
//
// A walk ends either when its declared count or byte range is exhausted or
// at the first item that fails to decode; Err tells the two apart.
type Iterator[T any] struct {
	step func() (T, bool, error)
	cur  T
	err  error
	done bool
}

func newIterator[T any](step func() (T, bool, error)) *Iterator[T] {
	return &Iterator[T]{step: step}
}

// countIterator yields exactly n items produced by at(i).
func countIterator[T any](n uint32, at func(i uint32) (T, error)) *Iterator[T] {
	var i uint32
	return newIterator(func() (T, bool, error) {
		var zero T
		if i >= n {
			return zero, false, nil
		}
		v, err := at(i)
		if err != nil {
			return zero, false, err
		}
		i++
		return v, true, nil
	})
}

// Next advances to the next item and reports whether there is one.
func (it *Iterator[T]) Next() bool {
	if it.done {
		return false
	}
	v, ok, err := it.step()
	if err != nil || !ok {
		var zero T
		it.cur = zero
		it.err = err
		it.done = true
		return false
	}
	it.cur = v
	return true
}

// Value returns the item produced by the last successful Next.
func (it *Iterator[T]) Value() T { return it.cur }

// Err returns the error that stopped the walk early, if any.
func (it *Iterator[T]) Err() error { return it.err }

// Collect drains the iterator. On error the items decoded so far are
// returned along with it.
func (it *Iterator[T]) Collect() ([]T, error) {
	var out []T
	for it.Next() {
		out = append(out, it.Value())
	}
	return out, it.Err()
}
