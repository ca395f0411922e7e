package sheetview

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
)

// Sequence is a fixed-length, index-addressable sequence whose reads may
// need a remote round trip.
type Sequence[T any] interface {
	Len() int
	At(ctx context.Context, i int) (T, error)
	SetAt(i int, v T) error
}

// FixedList rejects every operation that would change the length of a
// sequence. Embed it in types whose length is fixed by their bounds.
type FixedList struct{}

// Append always fails with ErrSizeChangeNotSupported
func (FixedList) Append(...any) error { return ErrSizeChangeNotSupported }

// Insert always fails with ErrSizeChangeNotSupported
func (FixedList) Insert(int, any) error { return ErrSizeChangeNotSupported }

// Delete always fails with ErrSizeChangeNotSupported
func (FixedList) Delete(int) error { return ErrSizeChangeNotSupported }

// Pop always fails with ErrSizeChangeNotSupported
func (FixedList) Pop(int) error { return ErrSizeChangeNotSupported }

// Remove always fails with ErrSizeChangeNotSupported
func (FixedList) Remove(any) error { return ErrSizeChangeNotSupported }

// Collect reads every element of seq in order
func Collect[T any](ctx context.Context, seq Sequence[T]) ([]T, error) {
	out := make([]T, seq.Len())
	for i := range out {
		v, err := seq.At(ctx, i)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// IndexOf returns the position of the first element equal to v, or
// ErrNotFound if there is none.
func IndexOf[T comparable](ctx context.Context, seq Sequence[T], v T) (int, error) {
	for i := 0; i < seq.Len(); i++ {
		got, err := seq.At(ctx, i)
		if err != nil {
			return -1, err
		}
		if got == v {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %v is not in sequence", ErrNotFound, v)
}

// Contains reports whether seq holds an element equal to v
func Contains[T comparable](ctx context.Context, seq Sequence[T], v T) (bool, error) {
	_, err := IndexOf(ctx, seq, v)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return false, err
}

// Count returns the number of elements equal to v
func Count[T comparable](ctx context.Context, seq Sequence[T], v T) (int, error) {
	n := 0
	for i := 0; i < seq.Len(); i++ {
		got, err := seq.At(ctx, i)
		if err != nil {
			return 0, err
		}
		if got == v {
			n++
		}
	}
	return n, nil
}

// Compare compares a and b lexicographically: pairwise first, then by length
func Compare[T cmp.Ordered](ctx context.Context, a, b Sequence[T]) (int, error) {
	n := min(a.Len(), b.Len())
	for i := 0; i < n; i++ {
		x, err := a.At(ctx, i)
		if err != nil {
			return 0, err
		}
		y, err := b.At(ctx, i)
		if err != nil {
			return 0, err
		}
		if c := cmp.Compare(x, y); c != 0 {
			return c, nil
		}
	}
	return cmp.Compare(a.Len(), b.Len()), nil
}

// Equal reports whether a and b have the same length and elements
func Equal[T cmp.Ordered](ctx context.Context, a, b Sequence[T]) (bool, error) {
	if a.Len() != b.Len() {
		return false, nil
	}
	c, err := Compare(ctx, a, b)
	return c == 0, err
}

// Sort orders seq in place using cmpFn. The final order is computed first
// and then written back element by element, since the length can not change.
func Sort[T any](ctx context.Context, seq Sequence[T], cmpFn func(a, b T) int, reverse bool) error {
	values, err := Collect(ctx, seq)
	if err != nil {
		return err
	}
	slices.SortStableFunc(values, func(a, b T) int {
		if reverse {
			return cmpFn(b, a)
		}
		return cmpFn(a, b)
	})
	return writeBack(seq, values)
}

// Reverse reverses seq in place
func Reverse[T any](ctx context.Context, seq Sequence[T]) error {
	values, err := Collect(ctx, seq)
	if err != nil {
		return err
	}
	slices.Reverse(values)
	return writeBack(seq, values)
}

func writeBack[T any](seq Sequence[T], values []T) error {
	for i, v := range values {
		if err := seq.SetAt(i, v); err != nil {
			return err
		}
	}
	return nil
}
