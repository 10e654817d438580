package container

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/pkg/errors"
)

// ── Binding types ─────────────────────────────────────────────────────────────

// Factory builds a service from the container.
type Factory func(c *Container) (any, error)

// binding holds a registered factory and whether its result is shared.
type binding struct {
	factory Factory
	shared  bool
}

// ── Container ─────────────────────────────────────────────────────────────────

// Container is the dependency resolver.
//
// It supports:
//   - Register / Singleton / Factory / Instance / Bind / Alias
//   - Get (explicit registrations) and Make / Call (constructor auto-wiring)
//   - Tags (group several identifiers under one name)
//   - Resolved callbacks
//
// All methods are safe for concurrent use. Factories and constructors run
// without the container lock held, so they may resolve other services.
//
// The *Container handed to a factory shares every registration with the
// container that called it, and also carries the chain of services being
// resolved, so a factory that resolves back into its own chain fails with
// ErrCircularDependency instead of recursing forever.
type Container struct {
	*state

	// services under construction when this handle was passed to a factory;
	// nil on the container returned by New
	rc *resolution
}

type state struct {
	mu sync.RWMutex

	// id → binding
	bindings map[string]*binding

	// ids in first-registration order
	order []string

	// id → cached shared instance
	instances map[string]any

	// alias → id (canonical key)
	aliases map[string]string

	// tag → []id
	tags map[string][]string

	// type key → constructor
	constructors map[string]*constructor

	// type key + "." + method → declared signature
	methods map[string]*Signature

	afterResolving []func(string, any)
}

// New creates an empty container. The container registers itself so that
// constructors may depend on *Container.
func New() *Container {
	c := &Container{state: &state{
		bindings:     make(map[string]*binding),
		instances:    make(map[string]any),
		aliases:      make(map[string]string),
		tags:         make(map[string][]string),
		constructors: make(map[string]*constructor),
		methods:      make(map[string]*Signature),
	}}
	c.Instance(TypeKey(c), c)
	c.Alias(TypeKey(c), "container")
	return c
}

// ── Registration ──────────────────────────────────────────────────────────────

// Register stores factory under id. Any cached instance for id is dropped so
// that the next Get runs the new factory.
//
//	c.Register("mailer", func(c *container.Container) (any, error) {
//	    return mail.NewSMTP(container.Resolve[*config.Config](c, "config").Mail), nil
//	}, true)
func (c *Container) Register(id string, factory Factory, shared bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.register(id, factory, shared)
}

// register is the internal registration helper (must hold mu.Lock).
func (c *Container) register(id string, factory Factory, shared bool) {
	key := c.canonical(id)
	if _, exists := c.bindings[key]; !exists {
		c.order = append(c.order, key)
	}
	delete(c.instances, key)
	c.bindings[key] = &binding{factory: factory, shared: shared}
}

// Singleton registers a factory whose result is cached after first resolution.
func (c *Container) Singleton(id string, factory Factory) {
	c.Register(id, factory, true)
}

// Factory registers a transient factory: every Get invokes it again.
func (c *Container) Factory(id string, factory Factory) {
	c.Register(id, factory, false)
}

// Instance registers a pre-built value as a shared service. Get returns
// exactly value, even after Clear.
//
//	c.Instance("config", cfg)
func (c *Container) Instance(id string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.register(id, func(*Container) (any, error) { return value, nil }, true)
	c.instances[c.canonical(id)] = value
}

// Bind registers abstract so that it resolves to a zero-constructed value of
// concrete's type. concrete is only a type witness:
//
//	c.Bind("cache", (*MemoryCache)(nil), true)   // resolves to new(MemoryCache)
//
// The concrete type is not auto-wired; use Make for that.
func (c *Container) Bind(abstract string, concrete any, shared bool) {
	t := reflect.TypeOf(concrete)
	c.Register(abstract, func(*Container) (any, error) {
		if t == nil {
			return nil, errors.New("bind: nil concrete type")
		}
		if t.Kind() == reflect.Ptr {
			return reflect.New(t.Elem()).Interface(), nil
		}
		return reflect.Zero(t).Interface(), nil
	}, shared)
}

// Alias registers an alternative name for id.
//
//	c.Alias(container.TypeKey((*slog.Logger)(nil)), "Logger")
func (c *Container) Alias(id, alias string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id == alias {
		panic(fmt.Sprintf("container: [%s] is aliased to itself", id))
	}
	c.aliases[alias] = c.canonical(id)
}

// ── Tags ──────────────────────────────────────────────────────────────────────

// Tag associates several identifiers under a named group.
//
//	c.Tag([]string{"courseType", "lessonType"}, "content-types")
func (c *Container) Tag(ids []string, tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tags[tag] = append(c.tags[tag], ids...)
}

// Tagged resolves every identifier registered under tag, in tagging order.
func (c *Container) Tagged(tag string) ([]any, error) {
	c.mu.RLock()
	ids := append([]string(nil), c.tags[tag]...)
	c.mu.RUnlock()

	result := make([]any, 0, len(ids))
	for _, id := range ids {
		inst, err := c.Get(id)
		if err != nil {
			return nil, err
		}
		result = append(result, inst)
	}
	return result, nil
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Get resolves id from its explicit registration.
//
// It returns a *NotFoundError when id was never registered, and a
// *ResolutionError when the factory fails or panics. Shared services are
// built once and cached; transient ones are rebuilt on every call.
// A factory that resolves back into its own chain fails with
// ErrCircularDependency.
func (c *Container) Get(id string) (any, error) {
	c.mu.RLock()
	key := c.canonical(id)
	b, ok := c.bindings[key]
	inst, cached := c.instances[key]
	c.mu.RUnlock()

	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	if b.shared && cached {
		return inst, nil
	}

	rc, err := c.rc.enter(key, true)
	if err != nil {
		return nil, resolutionError(id, "", "", err)
	}
	instance, err := runFactory(c.in(rc), b.factory)
	if err != nil {
		return nil, resolutionError(id, "", "", err)
	}

	if b.shared {
		c.mu.Lock()
		// Cache only if the registration was not replaced meanwhile; a
		// concurrent first resolution that won the race is returned instead.
		if c.bindings[key] == b {
			if prev, ok := c.instances[key]; ok {
				instance = prev
			} else {
				c.instances[key] = instance
			}
		}
		c.mu.Unlock()
	}

	c.fireAfterResolving(key, instance)
	return instance, nil
}

// in returns a handle on the same registrations that resolves within rc.
func (c *Container) in(rc *resolution) *Container {
	return &Container{state: c.state, rc: rc}
}

// runFactory executes a factory, turning a panic into an error.
func runFactory(c *Container, f Factory) (instance any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("factory panicked: %v", r)
		}
	}()
	return f(c)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// Has reports whether id (or an alias of it) has an explicit registration.
// Types that are only reachable through Make are not reported.
func (c *Container) Has(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.bindings[c.canonical(id)]
	return ok
}

// IsResolved reports whether a shared instance is currently cached for id.
func (c *Container) IsResolved(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.instances[c.canonical(id)]
	return ok
}

// Clear discards every cached shared instance. Registrations persist, so the
// next Get of a shared service runs its factory again.
func (c *Container) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.instances = make(map[string]any)
}

// ServiceIDs returns all registered identifiers in registration order.
func (c *Container) ServiceIDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.order...)
}

// canonical resolves an alias to its canonical key.
func (c *Container) canonical(id string) string {
	if target, ok := c.aliases[id]; ok {
		return target
	}
	return id
}

// ── Callbacks ─────────────────────────────────────────────────────────────────

// AfterResolving registers a callback fired after every successful Get or Make.
func (c *Container) AfterResolving(cb func(id string, instance any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.afterResolving = append(c.afterResolving, cb)
}

func (c *Container) fireAfterResolving(id string, instance any) {
	c.mu.RLock()
	cbs := c.afterResolving
	c.mu.RUnlock()
	for _, cb := range cbs {
		cb(id, instance)
	}
}

// ── Reflect helpers ───────────────────────────────────────────────────────────

// TypeKey returns the package-qualified type name of v with one pointer level
// stripped. It is the identifier Make and the auto-wirer use for a type.
//
//	key := container.TypeKey((*UserRepository)(nil))  // "example.com/app.UserRepository"
//	c.Singleton(key, factory)
func TypeKey(v any) string {
	return typeKey(reflect.TypeOf(v))
}

// Key is the generic form of TypeKey.
func Key[T any]() string {
	return typeKey(reflect.TypeOf((*T)(nil)).Elem())
}

func typeKey(t reflect.Type) string {
	if t == nil {
		return ""
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Name() == "" || t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// ── Generics helpers ──────────────────────────────────────────────────────────

// Get is a generic helper that resolves id and type-asserts the result.
func Get[T any](c *Container, id string) (T, error) {
	var zero T
	instance, err := c.Get(id)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, resolutionError(id, "", "", errors.Errorf("resolved to %T, want %T", instance, zero))
	}
	return typed, nil
}

// Resolve is like Get but panics on failure. Use it at the composition root,
// where a missing service is a configuration defect.
//
//	db := container.Resolve[*gorm.DB](c, "db")
func Resolve[T any](c *Container, id string) T {
	typed, err := Get[T](c, id)
	if err != nil {
		panic(err)
	}
	return typed
}

// MustGet resolves id and panics on failure.
func (c *Container) MustGet(id string) any {
	instance, err := c.Get(id)
	if err != nil {
		panic(err)
	}
	return instance
}
