package types

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Set keeps unique values in insertion order
type Set[T comparable] struct {
	index   map[T]int
	storage []T
}

func NewSet[T comparable](values ...T) *Set[T] {
	set := &Set[T]{
		index:   make(map[T]int),
		storage: []T{},
	}
	set.Insert(values...)

	return set
}

func (st *Set[T]) init() {
	if st.index == nil {
		st.index = make(map[T]int)
	}
}

func (st *Set[T]) Insert(values ...T) {
	st.init()
	for _, value := range values {
		if _, found := st.index[value]; found {
			continue
		}
		st.index[value] = len(st.storage)
		st.storage = append(st.storage, value)
	}
}

func (st *Set[T]) Exists(value T) bool {
	if st == nil || st.index == nil {
		return false
	}
	_, found := st.index[value]
	return found
}

func (st *Set[T]) Len() int {
	if st == nil {
		return 0
	}
	return len(st.storage)
}

// Array returns a copy of the values in insertion order
func (st *Set[T]) Array() []T {
	if st == nil {
		return []T{}
	}
	arr := make([]T, len(st.storage))
	copy(arr, st.storage)
	return arr
}

func (st *Set[T]) String() string {
	return fmt.Sprintf("%v", st.Array())
}

func (st *Set[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(st.Array())
}

func (st *Set[T]) UnmarshalJSON(data []byte) error {
	var values []T
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}

	st.index = make(map[T]int)
	st.storage = []T{}
	st.Insert(values...)
	return nil
}
