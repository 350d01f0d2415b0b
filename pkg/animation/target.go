package animation

import (
	"fmt"
	"maps"
	"reflect"
	"sync"
)

// Target is an object whose numeric properties a [Tween] animates.
//
// The engine reads a property once when a step starts and writes it on every
// tick of that step. Targets are compared by identity, so implementations
// must be comparable; pointer types are the usual choice.
type Target interface {
	// Property returns the current value of name and whether it exists.
	Property(name string) (float64, bool)
	// SetProperty sets name to v.
	SetProperty(name string, v float64)
}

// Props maps property names to values.
type Props map[string]float64

// Values is a Target backed by a map of named values.
// It is safe for concurrent use.
type Values struct {
	mu   sync.RWMutex
	vals Props
}

// NewValues returns a Values target holding a copy of initial.
func NewValues(initial Props) *Values {
	v := &Values{vals: make(Props, len(initial))}
	maps.Copy(v.vals, initial)
	return v
}

// Property returns the value of name.
func (v *Values) Property(name string) (float64, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	f, ok := v.vals[name]
	return f, ok
}

// SetProperty sets name to f, creating it if needed.
func (v *Values) SetProperty(name string, f float64) {
	v.mu.Lock()
	v.vals[name] = f
	v.mu.Unlock()
}

// Get returns the value of name, or 0 if it is not set.
func (v *Values) Get(name string) float64 {
	f, _ := v.Property(name)
	return f
}

// Snapshot returns a copy of all values.
func (v *Values) Snapshot() Props {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return maps.Clone(v.vals)
}

// StructTarget exposes the numeric fields of a struct as a Target.
// Create one with [Reflect].
type StructTarget struct {
	ptr    any
	elem   reflect.Value
	fields map[string]int
}

// Reflect wraps ptr, which must be a non-nil pointer to a struct, as a
// Target. Every exported field of kind int, uint or float (any size) becomes
// a property under its Go field name. The tween registry identifies the
// target by ptr, so RemoveTweens(ptr) cancels tweens built on the wrapper.
func Reflect(ptr any) (*StructTarget, error) {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return nil, fmt.Errorf("animation: Reflect requires a non-nil pointer to a struct, got %T", ptr)
	}
	elem := rv.Elem()
	if elem.Kind() != reflect.Struct {
		return nil, fmt.Errorf("animation: Reflect requires a pointer to a struct, got %T", ptr)
	}
	fields := make(map[string]int)
	typ := elem.Type()
	for i := range typ.NumField() {
		f := typ.Field(i)
		if !f.IsExported() || !isNumeric(f.Type.Kind()) {
			continue
		}
		fields[f.Name] = i
	}
	return &StructTarget{ptr: ptr, elem: elem, fields: fields}, nil
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// Property returns the value of the named numeric field.
func (s *StructTarget) Property(name string) (float64, bool) {
	i, ok := s.fields[name]
	if !ok {
		return 0, false
	}
	f := s.elem.Field(i)
	switch {
	case f.CanFloat():
		return f.Float(), true
	case f.CanInt():
		return float64(f.Int()), true
	default:
		return float64(f.Uint()), true
	}
}

// SetProperty sets the named numeric field. Integer fields are rounded toward
// zero. Unknown names are ignored.
func (s *StructTarget) SetProperty(name string, v float64) {
	i, ok := s.fields[name]
	if !ok {
		return
	}
	f := s.elem.Field(i)
	switch {
	case f.CanFloat():
		f.SetFloat(v)
	case f.CanInt():
		f.SetInt(int64(v))
	default:
		if v < 0 {
			v = 0
		}
		f.SetUint(uint64(v))
	}
}

// Has reports whether name is an animatable field.
func (s *StructTarget) Has(name string) bool {
	_, ok := s.fields[name]
	return ok
}

// Identity returns the wrapped pointer.
func (s *StructTarget) Identity() any {
	return s.ptr
}

// identifier is implemented by targets that stand in for another object.
type identifier interface {
	Identity() any
}

// identityOf returns the value the registry uses to match target.
func identityOf(target Target) any {
	if id, ok := target.(identifier); ok {
		return id.Identity()
	}
	return target
}
