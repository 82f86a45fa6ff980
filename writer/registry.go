package writer

import (
	"reflect"
	"sync"
)

// DependencyRegistry is a typed key->instance store scoped to one
// pipeline build. The manager seeds it, each pipeline stage registers
// what it produces, and later stages resolve what earlier stages (or
// the seed) registered. Once the build completes the registry is
// sealed; registration after Seal fails with ErrSealed while Resolve
// keeps working.
type DependencyRegistry struct {
	mu     sync.Mutex
	sealed bool
	byType map[reflect.Type]any
}

// NewDependencyRegistry creates an empty, unsealed registry.
func NewDependencyRegistry() *DependencyRegistry {
	return &DependencyRegistry{byType: map[reflect.Type]any{}}
}

// Register stores v under the static type T. Registering the same type
// again replaces the previous instance.
func Register[T any](r *DependencyRegistry, v T) error {
	return r.put(reflect.TypeOf((*T)(nil)).Elem(), v)
}

// RegisterValue stores v under its dynamic type. Used by the pipeline
// builder to publish the evolving writer after each stage.
func (r *DependencyRegistry) RegisterValue(v any) error {
	if v == nil {
		return nil
	}
	return r.put(reflect.TypeOf(v), v)
}

func (r *DependencyRegistry) put(key reflect.Type, v any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return ErrSealed
	}
	r.byType[key] = v
	return nil
}

// Seal freezes the registry.
func (r *DependencyRegistry) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

// Sealed reports whether Seal has been called.
func (r *DependencyRegistry) Sealed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sealed
}

// Resolve returns the instance stored under T. An exact key match
// wins; when T is an interface type, the first stored instance
// implementing it is returned as a fallback.
func Resolve[T any](r *DependencyRegistry) (T, bool) {
	var zero T
	want := reflect.TypeOf((*T)(nil)).Elem()

	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.byType[want]; ok {
		return v.(T), true
	}
	if want.Kind() == reflect.Interface {
		for key, v := range r.byType {
			if key.Implements(want) {
				return v.(T), true
			}
		}
	}
	return zero, false
}
