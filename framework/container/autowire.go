package container

import (
	"reflect"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Args are explicit Call arguments keyed by parameter name. They take
// precedence over auto-wiring.
type Args map[string]any

// resolution is one link of the chain of services under construction: a
// registration being resolved by Get (get) or a type being built by Make.
// Links are never modified, so a chain may be shared by nested factories.
type resolution struct {
	key    string
	get    bool
	parent *resolution
}

// enter extends r with key, failing when key is already on the chain.
// A nil r is the empty chain.
func (r *resolution) enter(key string, get bool) (*resolution, error) {
	next := &resolution{key: key, get: get, parent: r}
	for p := r; p != nil; p = p.parent {
		if p.key == key && p.get == get {
			return nil, errors.Wrap(ErrCircularDependency, strings.Join(next.path(), " -> "))
		}
	}
	return next, nil
}

// path lists the chain from the outermost service, collapsing a Get and the
// Make it delegates to for the same key.
func (r *resolution) path() []string {
	var keys []string
	for p := r; p != nil; p = p.parent {
		keys = append([]string{p.key}, keys...)
	}
	return lo.Filter(keys, func(k string, i int) bool { return i == 0 || keys[i-1] != k })
}

// ── Make ──────────────────────────────────────────────────────────────────────

// Make builds a fresh instance of the type registered under id with
// Constructor, auto-wiring every constructor parameter:
//
//   - parameters without a service type use their declared Default;
//   - parameters whose type key is registered are resolved with Get;
//   - anything else is built recursively with Make.
//
// Explicit registrations for id itself are ignored and the result is never
// cached. All failures are returned as *ResolutionError.
func (c *Container) Make(id string) (any, error) {
	return c.make(c.rc, id)
}

// MakeT is the generic form of Make, keyed by the type key of T.
//
//	reporter, err := container.MakeT[*Reporter](c)
func MakeT[T any](c *Container) (T, error) {
	var zero T
	instance, err := c.Make(Key[T]())
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, resolutionError(Key[T](), "", "", errors.Errorf("constructor returned %T", instance))
	}
	return typed, nil
}

func (c *Container) make(rc *resolution, id string) (any, error) {
	info, ok := c.constructorFor(id)
	if !ok {
		return nil, resolutionError(id, "", "", errors.New("no constructor registered for type"))
	}

	key := typeKey(info.result)
	rc, err := rc.enter(key, false)
	if err != nil {
		return nil, resolutionError(id, "", "", err)
	}

	in := make([]reflect.Value, len(info.params))
	for i, pt := range info.params {
		v, err := c.resolveParam(rc, info.sig, i, pt, nil)
		if err != nil {
			return nil, resolutionError(id, "", info.sig.Name(i), err)
		}
		in[i] = v
	}

	out, err := invoke("constructor", info.fn, in)
	if err != nil {
		return nil, resolutionError(id, "", "", err)
	}
	if info.hasError && !out[1].IsNil() {
		return nil, resolutionError(id, "", "", out[1].Interface().(error))
	}

	instance := out[0].Interface()
	c.fireAfterResolving(key, instance)
	return instance, nil
}

// resolveParam binds parameter i of type t. Explicit args win, then defaults
// for non-service types, then registrations, then recursive construction.
func (c *Container) resolveParam(rc *resolution, sig *Signature, i int, t reflect.Type, args Args) (reflect.Value, error) {
	name := sig.Name(i)
	if v, ok := args[name]; ok {
		return assign(v, t)
	}

	if !isServiceType(t) {
		if v, ok := sig.DefaultFor(name); ok {
			return assign(v, t)
		}
		return reflect.Value{}, errors.Errorf("unresolvable %s parameter without default", t)
	}

	key := typeKey(t)
	if c.Has(key) {
		instance, err := c.in(rc).Get(key)
		if err != nil {
			return reflect.Value{}, err
		}
		return assign(instance, t)
	}

	instance, err := c.make(rc, key)
	if err != nil {
		return reflect.Value{}, err
	}
	return assign(instance, t)
}

// invoke calls fn, turning a panic into an error.
func invoke(what string, fn reflect.Value, in []reflect.Value) (out []reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("%s panicked: %v", what, r)
		}
	}()
	return fn.Call(in), nil
}

// ── Call ──────────────────────────────────────────────────────────────────────

// Call invokes method on target, auto-wiring its parameters like Make. A
// value in args whose key equals a parameter's name is passed verbatim
// instead. When target is a string, the receiver is first built with
// Make(target).
//
// Call returns every result of the method. If the method's last result is a
// non-nil error it is returned unchanged as err; binding failures and a
// panicking method are returned as *ResolutionError.
//
//	out, err := c.Call(retention, "Run", container.Args{"days": 30})
func (c *Container) Call(target any, method string, args Args) ([]any, error) {
	rc := c.rc

	if id, ok := target.(string); ok {
		instance, err := c.make(rc, id)
		if err != nil {
			return nil, err
		}
		target = instance
	}

	rv := reflect.ValueOf(target)
	if !rv.IsValid() {
		return nil, resolutionError("<nil>", method, "", errors.New("nil target"))
	}
	key := typeKey(rv.Type())

	m := rv.MethodByName(method)
	if !m.IsValid() {
		return nil, resolutionError(key, method, "", errors.Errorf("%s has no method %s", rv.Type(), method))
	}
	mt := m.Type()
	if mt.IsVariadic() {
		return nil, resolutionError(key, method, "", errors.New("variadic methods are not supported"))
	}

	sig := c.methodSignature(key, method)
	in := make([]reflect.Value, mt.NumIn())
	for i := 0; i < mt.NumIn(); i++ {
		v, err := c.resolveParam(rc, sig, i, mt.In(i), args)
		if err != nil {
			return nil, resolutionError(key, method, sig.Name(i), err)
		}
		in[i] = v
	}

	out, err := invoke("method", m, in)
	if err != nil {
		return nil, resolutionError(key, method, "", err)
	}
	results := make([]any, len(out))
	for i, v := range out {
		results[i] = v.Interface()
	}

	if n := mt.NumOut(); n > 0 && mt.Out(n-1) == errorType && !out[n-1].IsNil() {
		return results, out[n-1].Interface().(error)
	}
	return results, nil
}
