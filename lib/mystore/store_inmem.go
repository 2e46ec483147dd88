package mystore

import (
	"context"
	"fmt"
	"reflect"
	"sync"
)

type inMemoryStore[T any] struct {
	sync.Mutex
	items map[string]T
}

func newInMemoryStore[T any](c context.Context) (*inMemoryStore[T], func(), error) {
	return &inMemoryStore[T]{
		items: make(map[string]T),
	}, func() {}, nil
}

func (s *inMemoryStore[T]) RunInTransaction(c context.Context, f func(c context.Context) error) error {
	// Start transaction
	s.Lock()
	defer s.Unlock()

	// Within this block everything on THIS store is transactional. The lock
	// bookkeeping is per store: operations on other stores inside f still take
	// their own lock.
	ctx := context.WithValue(c, ctxTransactionKey{}, addHeldLock(c, s))

	err := f(ctx)
	if err != nil {
		// Rollback
		return err
	}

	// Commit
	return nil
}

func heldLocks(c context.Context) map[any]bool {
	held, _ := c.Value(ctxTransactionKey{}).(map[any]bool)
	return held
}

func addHeldLock(c context.Context, s any) map[any]bool {
	held := map[any]bool{s: true}
	for holder := range heldLocks(c) {
		held[holder] = true
	}
	return held
}

func (s *inMemoryStore[T]) Put(c context.Context, uid string, value T) error {
	if !heldLocks(c)[s] {
		s.Lock()
		defer s.Unlock()
	}

	s.items[uid] = value

	return nil
}

func (s *inMemoryStore[T]) Get(c context.Context, uid string) (T, bool, error) {
	if !heldLocks(c)[s] {
		s.Lock()
		defer s.Unlock()
	}

	result, exists := s.items[uid]

	return result, exists, nil
}

func (s *inMemoryStore[T]) Delete(c context.Context, uid string) error {
	if !heldLocks(c)[s] {
		s.Lock()
		defer s.Unlock()
	}

	delete(s.items, uid)

	return nil
}

func (s *inMemoryStore[T]) List(c context.Context) ([]T, error) {
	if !heldLocks(c)[s] {
		s.Lock()
		defer s.Unlock()
	}

	result := make([]T, 0, len(s.items))
	for _, v := range s.items {
		result = append(result, v)
	}

	return result, nil
}

// Query supports equality filters only. Ordering is left to the caller:
// callers sort results themselves so behavior matches across backends.
func (s *inMemoryStore[T]) Query(c context.Context, filters []Filter, orderByField string) ([]T, error) {
	all, err := s.List(c)
	if err != nil {
		return nil, err
	}

	result := make([]T, 0, len(all))
	for _, v := range all {
		matches, err := matchesFilters(v, filters)
		if err != nil {
			return nil, err
		}
		if matches {
			result = append(result, v)
		}
	}

	return result, nil
}

func matchesFilters[T any](value T, filters []Filter) (bool, error) {
	rv := reflect.ValueOf(value)
	for _, f := range filters {
		if f.Compare != "=" {
			return false, fmt.Errorf("unsupported compare operator %q", f.Compare)
		}
		field := rv.FieldByName(f.Field)
		if !field.IsValid() {
			return false, fmt.Errorf("unknown filter field %q", f.Field)
		}
		if field.Interface() != f.Value {
			return false, nil
		}
	}
	return true, nil
}
