package sheetview

import (
	"context"
	"errors"
	"fmt"
	"reflect"
)

// Entry is a single key/value pair of a LazyMap
type Entry[K comparable, V any] struct {
	Key   K
	Value V
}

// Enumerator lists every entry of a LazyMap in order
type Enumerator[K comparable, V any] func(ctx context.Context) ([]Entry[K, V], error)

// Constructor builds a single value by key without listing everything.
// Any error or a nil result is treated as a miss.
type Constructor[K comparable, V any] func(ctx context.Context, key K) (V, error)

type lazyState int

const (
	unenumerated lazyState = iota
	enumerated
)

// LazyMap is an ordered map addressable by key and by position whose
// contents are listed on first use and cached until Refresh.
//
// A LazyMap is not safe for concurrent use.
type LazyMap[K comparable, V any] struct {
	enumerate Enumerator[K, V]
	construct Constructor[K, V]
	onMiss    func(key K, err error)

	state   lazyState
	entries []Entry[K, V]
	index   map[K]int
}

// NewLazyMap creates a LazyMap. construct may be nil, in which case key
// lookups always fall back to full enumeration.
func NewLazyMap[K comparable, V any](enumerate Enumerator[K, V], construct Constructor[K, V]) *LazyMap[K, V] {
	return &LazyMap[K, V]{
		enumerate: enumerate,
		construct: construct,
		index:     make(map[K]int),
	}
}

// Refresh discards every cached entry. Nothing is fetched until the next access.
func (m *LazyMap[K, V]) Refresh() {
	m.entries = nil
	m.index = make(map[K]int)
	m.state = unenumerated
}

// Enumerated reports whether the full listing has been loaded
func (m *LazyMap[K, V]) Enumerated() bool {
	return m.state == enumerated
}

// Get retrieves a value by key
func (m *LazyMap[K, V]) Get(ctx context.Context, key K) (V, error) {
	if i, ok := m.index[key]; ok {
		return m.entries[i].Value, nil
	}
	if m.construct != nil {
		value, err := m.construct(ctx, key)
		if err == nil && isNil(value) {
			err = errNilValue
		}
		if err == nil {
			m.index[key] = len(m.entries)
			m.entries = append(m.entries, Entry[K, V]{Key: key, Value: value})
			return value, nil
		}
		if m.onMiss != nil {
			m.onMiss(key, err)
		}
	}
	var zero V
	if err := m.ensureEnumerated(ctx); err != nil {
		return zero, err
	}
	i, ok := m.index[key]
	if !ok {
		return zero, fmt.Errorf("%w: %v", ErrKeyNotFound, key)
	}
	return m.entries[i].Value, nil
}

// GetDefault is like Get but returns def when the key does not exist.
// Enumeration errors are still returned.
func (m *LazyMap[K, V]) GetDefault(ctx context.Context, key K, def V) (V, error) {
	v, err := m.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return def, nil
		}
		return def, err
	}
	return v, nil
}

// At retrieves the i-th value. Negative indices count from the end.
func (m *LazyMap[K, V]) At(ctx context.Context, i int) (V, error) {
	var zero V
	if err := m.ensureEnumerated(ctx); err != nil {
		return zero, err
	}
	n := len(m.entries)
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return zero, fmt.Errorf("%w: position %d of %d", ErrIndexOutOfRange, i, n)
	}
	return m.entries[i].Value, nil
}

// Len returns the number of entries
func (m *LazyMap[K, V]) Len(ctx context.Context) (int, error) {
	if err := m.ensureEnumerated(ctx); err != nil {
		return 0, err
	}
	return len(m.entries), nil
}

// Keys returns all keys in order
func (m *LazyMap[K, V]) Keys(ctx context.Context) ([]K, error) {
	if err := m.ensureEnumerated(ctx); err != nil {
		return nil, err
	}
	keys := make([]K, len(m.entries))
	for i, e := range m.entries {
		keys[i] = e.Key
	}
	return keys, nil
}

// Values returns all values in order
func (m *LazyMap[K, V]) Values(ctx context.Context) ([]V, error) {
	if err := m.ensureEnumerated(ctx); err != nil {
		return nil, err
	}
	values := make([]V, len(m.entries))
	for i, e := range m.entries {
		values[i] = e.Value
	}
	return values, nil
}

// Items returns all entries in order
func (m *LazyMap[K, V]) Items(ctx context.Context) ([]Entry[K, V], error) {
	if err := m.ensureEnumerated(ctx); err != nil {
		return nil, err
	}
	items := make([]Entry[K, V], len(m.entries))
	copy(items, m.entries)
	return items, nil
}

// ensureEnumerated loads the full listing once. Entries constructed by key
// before that are kept: a key the listing also returns stays at its listed
// position with the constructed value, unlisted keys are appended after.
func (m *LazyMap[K, V]) ensureEnumerated(ctx context.Context) error {
	if m.state == enumerated {
		return nil
	}
	listed, err := m.enumerate(ctx)
	if err != nil {
		return err
	}

	saved := m.entries
	entries := make([]Entry[K, V], 0, len(listed)+len(saved))
	index := make(map[K]int, len(listed)+len(saved))
	for _, e := range listed {
		if i, dup := index[e.Key]; dup {
			entries[i] = e
			continue
		}
		index[e.Key] = len(entries)
		entries = append(entries, e)
	}
	for _, e := range saved {
		if i, ok := index[e.Key]; ok {
			entries[i].Value = e.Value
			continue
		}
		index[e.Key] = len(entries)
		entries = append(entries, e)
	}

	m.entries = entries
	m.index = index
	m.state = enumerated
	return nil
}

var errNilValue = errors.New("constructor returned nil")

func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
