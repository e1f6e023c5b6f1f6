package enum

import (
	"fmt"
	"reflect"
)

var enumManager = map[reflect.Type]map[string]any{}

// New registers value as a member of its enum type and returns it unchanged.
// It is intended to be called from package-level var declarations.
func New[T ~string](value T) T {
	t := reflect.TypeOf(value)
	if _, ok := enumManager[t]; !ok {
		enumManager[t] = make(map[string]any)
	}

	enumManager[t][string(value)] = value
	return value
}

// ToEnum parses s into a registered member of the enum type T.
func ToEnum[T ~string](s string) (T, error) {
	var defaultT T
	members, ok := enumManager[reflect.TypeOf(defaultT)]
	if !ok {
		return defaultT, fmt.Errorf("not found enum type %T", defaultT)
	}

	value, ok := members[s]
	if !ok {
		return defaultT, fmt.Errorf("not found value %s in enum %T", s, defaultT)
	}

	return value.(T), nil
}

// Members returns every registered member of the enum type T.
func Members[T ~string]() []T {
	var defaultT T
	result := []T{}
	for _, value := range enumManager[reflect.TypeOf(defaultT)] {
		result = append(result, value.(T))
	}

	return result
}
