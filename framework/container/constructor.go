package container

import (
	"reflect"
	"strconv"

	"github.com/pkg/errors"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// ── Signature ─────────────────────────────────────────────────────────────────

// Signature declares the parameter names and default values of a constructor
// or method. Go reflection does not expose parameter names, so they are
// declared with Params; undeclared parameters are named arg0, arg1, ...
type Signature struct {
	names    []string
	defaults map[string]any
}

// Option configures a Signature.
type Option func(*Signature)

// Params names parameters in declaration order.
//
//	c.Constructor(NewReporter, container.Params("logger", "prefix"))
func Params(names ...string) Option {
	return func(s *Signature) { s.names = names }
}

// Default supplies the value used for a parameter that has no service type
// (a string, a number, any, ...).
//
//	c.Constructor(NewReporter, container.Params("logger", "prefix"), container.Default("prefix", "lms"))
func Default(name string, value any) Option {
	return func(s *Signature) { s.defaults[name] = value }
}

func newSignature(opts []Option) *Signature {
	s := &Signature{defaults: make(map[string]any)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the declared name of parameter i.
func (s *Signature) Name(i int) string {
	if s != nil && i < len(s.names) && s.names[i] != "" {
		return s.names[i]
	}
	return "arg" + strconv.Itoa(i)
}

// DefaultFor returns the declared default of the named parameter.
func (s *Signature) DefaultFor(name string) (any, bool) {
	if s == nil {
		return nil, false
	}
	v, ok := s.defaults[name]
	return v, ok
}

// ── Constructor ───────────────────────────────────────────────────────────────

// constructor holds an analyzed constructor function.
type constructor struct {
	fn       reflect.Value
	result   reflect.Type
	params   []reflect.Type
	sig      *Signature
	hasError bool
}

// Constructor registers fn as the way to build its result type. fn must
// return T or (T, error); its parameters are auto-wired by Make.
//
//	c.Constructor(analytics.NewRecorder, container.Params("store", "settings", "logger"))
//	rec, err := c.Make(container.Key[*analytics.Recorder]())
func (c *Container) Constructor(fn any, opts ...Option) error {
	info, err := analyzeConstructor(fn, newSignature(opts))
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.constructors[typeKey(info.result)] = info
	return nil
}

// ConstructorAs is Constructor registered under an extra identifier, so that
// Make(id) works with a short name as well as with the type key.
func (c *Container) ConstructorAs(id string, fn any, opts ...Option) error {
	info, err := analyzeConstructor(fn, newSignature(opts))
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.constructors[typeKey(info.result)] = info
	c.constructors[id] = info
	return nil
}

// Method declares the signature of a method that will be invoked with Call.
// target is a value (or typed nil pointer) of the receiver type.
//
//	c.Method((*analytics.Retention)(nil), "Run", container.Params("ctx", "days"))
func (c *Container) Method(target any, method string, opts ...Option) error {
	t := reflect.TypeOf(target)
	if t == nil {
		return errors.New("method: nil target")
	}
	if _, ok := t.MethodByName(method); !ok {
		if _, ok := reflect.PointerTo(t).MethodByName(method); !ok {
			return errors.Errorf("method: %s has no method %s", t, method)
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.methods[typeKey(t)+"."+method] = newSignature(opts)
	return nil
}

func (c *Container) methodSignature(key, method string) *Signature {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.methods[key+"."+method]
}

func (c *Container) constructorFor(id string) (*constructor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if info, ok := c.constructors[id]; ok {
		return info, true
	}
	info, ok := c.constructors[c.canonical(id)]
	return info, ok
}

// analyzeConstructor inspects a constructor function and extracts what Make
// needs to call it.
func analyzeConstructor(fn any, sig *Signature) (*constructor, error) {
	if fn == nil {
		return nil, errors.New("constructor must be a function, got nil")
	}
	fnValue := reflect.ValueOf(fn)
	fnType := fnValue.Type()

	if fnType.Kind() != reflect.Func {
		return nil, errors.Errorf("constructor must be a function, got %s", fnType)
	}
	if fnType.IsVariadic() {
		return nil, errors.Errorf("constructor %s must not be variadic", fnType)
	}
	if len(sig.names) > fnType.NumIn() {
		return nil, errors.Errorf("constructor %s has %d parameters, %d names given", fnType, fnType.NumIn(), len(sig.names))
	}

	info := &constructor{fn: fnValue, sig: sig}

	switch fnType.NumOut() {
	case 1:
	case 2:
		if fnType.Out(1) != errorType {
			return nil, errors.Errorf("constructor %s: second result must be error", fnType)
		}
		info.hasError = true
	default:
		return nil, errors.Errorf("constructor %s must return T or (T, error)", fnType)
	}
	if fnType.Out(0) == errorType {
		return nil, errors.Errorf("constructor %s must return a non-error value", fnType)
	}
	info.result = fnType.Out(0)

	for i := 0; i < fnType.NumIn(); i++ {
		info.params = append(info.params, fnType.In(i))
	}
	return info, nil
}

// isServiceType reports whether t can be satisfied by the container. Basic
// kinds, the empty interface and unnamed composites can only come from a
// default or an explicit argument.
func isServiceType(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface:
		return t.NumMethod() > 0
	case reflect.Ptr:
		return isServiceType(t.Elem())
	case reflect.Struct:
		return true
	case reflect.Func, reflect.Map, reflect.Slice, reflect.Array, reflect.Chan:
		return t.Name() != ""
	default:
		return false
	}
}

// assign converts v to a value of type t.
func assign(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		switch t.Kind() {
		case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, errors.Errorf("cannot use nil as %s", t)
	}

	rv := reflect.ValueOf(v)
	switch {
	case rv.Type().AssignableTo(t):
		return rv, nil
	case rv.Kind() == reflect.Ptr && !rv.IsNil() && rv.Elem().Type().AssignableTo(t):
		return rv.Elem(), nil
	case isNumber(rv.Kind()) && isNumber(t.Kind()), rv.Kind() == t.Kind() && rv.Type().ConvertibleTo(t):
		return rv.Convert(t), nil
	}
	return reflect.Value{}, errors.Errorf("cannot use %T as %s", v, t)
}

func isNumber(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Float64
}
