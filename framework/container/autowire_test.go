package container_test

import (
	"context"
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/simple-lms/framework/container"
	"github.com/km-arc/simple-lms/framework/logging"
)

// ── fixtures ──────────────────────────────────────────────────────────────────

type leaf struct{}

func newLeaf() *leaf { return &leaf{} }

type middle struct{ Leaf *leaf }

func newMiddle(l *leaf) *middle { return &middle{Leaf: l} }

type root struct{ Middle *middle }

func newRoot(m *middle) *root { return &root{Middle: m} }

type greeter struct {
	Prefix  string
	Retries int64
}

func newGreeter(prefix string, retries int64) *greeter {
	return &greeter{Prefix: prefix, Retries: retries}
}

type reporter struct {
	Logger *logging.Logger
}

func newReporter(l *logging.Logger) *reporter { return &reporter{Logger: l} }

type ping struct{ Pong *pong }
type pong struct{ Ping *ping }

func newPing(p *pong) *ping { return &ping{Pong: p} }
func newPong(p *ping) *pong { return &pong{Ping: p} }

type store interface{ Name() string }

type needsStore struct{ Store store }

func newNeedsStore(s store) *needsStore { return &needsStore{Store: s} }

type sqlStore struct{}

func (sqlStore) Name() string { return "sql" }

type handler struct{}

func (h *handler) Handle(foo *leaf, count int) (*leaf, int) { return foo, count }

func (h *handler) Fail() (string, error) { return "", errors.New("handler failed") }

func (h *handler) Explode() string { panic("method blew up") }

func (h *handler) Greet(g *greeter, name string) string { return g.Prefix + " " + name }

func newAutowired(t *testing.T) *container.Container {
	t.Helper()
	c := container.New()
	require.NoError(t, c.Constructor(newLeaf))
	require.NoError(t, c.Constructor(newMiddle, container.Params("leaf")))
	require.NoError(t, c.Constructor(newRoot, container.Params("middle")))
	return c
}

// ── Make ──────────────────────────────────────────────────────────────────────

func TestMake_RecursiveAutowiring(t *testing.T) {
	c := newAutowired(t)

	got, err := c.Make(container.Key[*root]())
	require.NoError(t, err)

	r, ok := got.(*root)
	require.True(t, ok)
	require.NotNil(t, r.Middle)
	require.NotNil(t, r.Middle.Leaf)

	assert.False(t, c.Has(container.Key[*root]()), "constructors are not registrations")
	assert.False(t, c.IsResolved(container.Key[*root]()))
}

func TestMake_FreshInstanceEveryCall(t *testing.T) {
	c := newAutowired(t)

	a, err := container.MakeT[*root](c)
	require.NoError(t, err)
	b, err := container.MakeT[*root](c)
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	assert.NotSame(t, a.Middle.Leaf, b.Middle.Leaf)
}

func TestMake_UsesRegisteredDependency(t *testing.T) {
	c := newAutowired(t)
	shared := &leaf{}
	c.Instance(container.Key[*leaf](), shared)

	m, err := container.MakeT[*middle](c)
	require.NoError(t, err)
	assert.Same(t, shared, m.Leaf)
}

func TestMake_IgnoresRegistrationForRequestedType(t *testing.T) {
	c := newAutowired(t)
	registered := &leaf{}
	c.Instance(container.Key[*leaf](), registered)

	got, err := container.MakeT[*leaf](c)
	require.NoError(t, err)
	assert.NotSame(t, registered, got)
}

func TestMake_DefaultValueFallback(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Constructor(newGreeter,
		container.Params("prefix", "retries"),
		container.Default("prefix", "hello"),
		container.Default("retries", 3),
	))

	g, err := container.MakeT[*greeter](c)
	require.NoError(t, err)
	assert.Equal(t, "hello", g.Prefix)
	assert.Equal(t, int64(3), g.Retries)
}

func TestMake_MissingDefaultNamesParameter(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Constructor(newGreeter, container.Params("prefix", "retries"), container.Default("retries", 1)))

	_, err := c.Make(container.Key[*greeter]())
	require.Error(t, err)
	assert.ErrorIs(t, err, container.ErrResolution)

	var re *container.ResolutionError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "prefix", re.Param)
	assert.Contains(t, err.Error(), "$prefix")
}

func TestMake_UnnamedParameters(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Constructor(newGreeter, container.Default("arg0", "hi"), container.Default("arg1", 0)))

	g, err := container.MakeT[*greeter](c)
	require.NoError(t, err)
	assert.Equal(t, "hi", g.Prefix)
}

func TestMake_UnknownType(t *testing.T) {
	c := container.New()

	_, err := c.Make("NoSuchType")
	require.Error(t, err)
	assert.ErrorIs(t, err, container.ErrResolution)
	assert.NotErrorIs(t, err, container.ErrServiceNotFound)
}

func TestMake_UnregisteredInterfaceParameter(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Constructor(newNeedsStore, container.Params("store")))

	_, err := container.MakeT[*needsStore](c)
	assert.ErrorIs(t, err, container.ErrResolution)

	c.Instance(container.Key[store](), sqlStore{})
	n, err := container.MakeT[*needsStore](c)
	require.NoError(t, err)
	assert.Equal(t, "sql", n.Store.Name())
}

func TestMake_CircularDependency(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Constructor(newPing))
	require.NoError(t, c.Constructor(newPong))

	_, err := container.MakeT[*ping](c)
	require.Error(t, err)
	assert.ErrorIs(t, err, container.ErrResolution)
	assert.ErrorIs(t, err, container.ErrCircularDependency)
}

func TestMake_CircularDependencyThroughSharedServices(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Constructor(newPing))
	require.NoError(t, c.Constructor(newPong))
	for _, key := range []string{container.Key[*ping](), container.Key[*pong]()} {
		key := key
		c.Singleton(key, func(c *container.Container) (any, error) {
			return c.Make(key)
		})
	}

	_, err := c.Make(container.Key[*ping]())
	require.Error(t, err)
	assert.ErrorIs(t, err, container.ErrResolution)
	assert.ErrorIs(t, err, container.ErrCircularDependency)

	_, err = c.Get(container.Key[*pong]())
	assert.ErrorIs(t, err, container.ErrCircularDependency)
	assert.False(t, c.IsResolved(container.Key[*pong]()))
}

func TestGet_CircularDependencyBetweenFactories(t *testing.T) {
	c := container.New()
	c.Singleton("a", func(c *container.Container) (any, error) { return c.Get("b") })
	c.Singleton("b", func(c *container.Container) (any, error) { return c.Get("a") })

	_, err := c.Get("a")
	assert.ErrorIs(t, err, container.ErrResolution)
	assert.ErrorIs(t, err, container.ErrCircularDependency)
	assert.Contains(t, err.Error(), "a -> b -> a")
}

func TestGet_SameServiceTwiceIsNotACycle(t *testing.T) {
	c := newAutowired(t)
	c.Singleton(container.Key[*leaf](), func(c *container.Container) (any, error) { return c.Make(container.Key[*leaf]()) })
	c.Factory("pair", func(c *container.Container) (any, error) {
		first, err := c.Make(container.Key[*middle]())
		if err != nil {
			return nil, err
		}
		second, err := c.Make(container.Key[*middle]())
		if err != nil {
			return nil, err
		}
		return []any{first, second}, nil
	})

	pair, err := c.Get("pair")
	require.NoError(t, err)
	assert.Len(t, pair, 2)
}

func TestMake_ConstructorErrorAndPanic(t *testing.T) {
	c := container.New()
	boom := errors.New("no database")
	require.NoError(t, c.ConstructorAs("failing", func() (*leaf, error) { return nil, boom }))

	_, err := c.Make("failing")
	assert.ErrorIs(t, err, container.ErrResolution)
	assert.ErrorIs(t, err, boom)

	require.NoError(t, c.ConstructorAs("panicking", func() *middle { panic("bad wiring") }))
	_, err = c.Make("panicking")
	assert.ErrorIs(t, err, container.ErrResolution)
	assert.Contains(t, err.Error(), "bad wiring")
}

func TestConstructor_Validation(t *testing.T) {
	c := container.New()

	assert.Error(t, c.Constructor(nil))
	assert.Error(t, c.Constructor("not a func"))
	assert.Error(t, c.Constructor(func() {}))
	assert.Error(t, c.Constructor(func() (int, int) { return 0, 0 }))
	assert.Error(t, c.Constructor(func() error { return nil }))
	assert.Error(t, c.Constructor(func(...int) int { return 0 }))
	assert.Error(t, c.Constructor(newLeaf, container.Params("too", "many")))
}

// ── Call ──────────────────────────────────────────────────────────────────────

func TestCall_ExplicitArgumentWins(t *testing.T) {
	c := newAutowired(t)
	registered := &leaf{}
	explicit := &leaf{}
	c.Instance(container.Key[*leaf](), registered)
	require.NoError(t, c.Method((*handler)(nil), "Handle", container.Params("foo", "count")))

	out, err := c.Call(&handler{}, "Handle", container.Args{"foo": explicit, "count": 42})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Same(t, explicit, out[0])
	assert.Equal(t, 42, out[1])

	out, err = c.Call(&handler{}, "Handle", container.Args{"count": 1})
	require.NoError(t, err)
	assert.Same(t, registered, out[0])
}

func TestCall_MissingArgumentNamesParameter(t *testing.T) {
	c := newAutowired(t)
	require.NoError(t, c.Method((*handler)(nil), "Handle", container.Params("foo", "count")))

	_, err := c.Call(&handler{}, "Handle", nil)
	var re *container.ResolutionError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "Handle", re.Method)
	assert.Equal(t, "count", re.Param)
}

func TestCall_StringTargetIsMade(t *testing.T) {
	c := container.New()
	require.NoError(t, c.ConstructorAs("Handler", func() *handler { return &handler{} }))
	require.NoError(t, c.Constructor(newGreeter, container.Params("prefix", "retries"),
		container.Default("prefix", "hello"), container.Default("retries", 0)))
	require.NoError(t, c.Method((*handler)(nil), "Greet", container.Params("g", "name")))

	out, err := c.Call("Handler", "Greet", container.Args{"name": "ada"})
	require.NoError(t, err)
	assert.Equal(t, []any{"hello ada"}, out)
}

func TestCall_UnknownMethod(t *testing.T) {
	c := container.New()

	_, err := c.Call(&handler{}, "Missing", nil)
	assert.ErrorIs(t, err, container.ErrResolution)
	assert.Contains(t, err.Error(), "Missing")

	_, err = c.Call(nil, "Handle", nil)
	assert.ErrorIs(t, err, container.ErrResolution)

	_, err = c.Call("NoSuchType", "Handle", nil)
	assert.ErrorIs(t, err, container.ErrResolution)
}

func TestCall_MethodErrorReturnedUnchanged(t *testing.T) {
	c := container.New()

	out, err := c.Call(&handler{}, "Fail", nil)
	require.Error(t, err)
	assert.EqualError(t, err, "handler failed")
	assert.NotErrorIs(t, err, container.ErrResolution)
	assert.Len(t, out, 2)
}

func TestCall_MethodPanicIsResolutionError(t *testing.T) {
	c := container.New()

	var out []any
	var err error
	require.NotPanics(t, func() { out, err = c.Call(&handler{}, "Explode", nil) })
	assert.Nil(t, out)
	assert.ErrorIs(t, err, container.ErrResolution)
	assert.Contains(t, err.Error(), "method blew up")
}

func TestCall_ContextArgument(t *testing.T) {
	c := container.New()
	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "v")

	fn := &ctxHolder{}
	require.NoError(t, c.Method(fn, "Run", container.Params("ctx")))
	_, err := c.Call(fn, "Run", container.Args{"ctx": ctx})
	require.NoError(t, err)
	assert.Equal(t, "v", fn.got.Value(ctxKey{}))
}

type ctxHolder struct{ got context.Context }

func (h *ctxHolder) Run(ctx context.Context) { h.got = ctx }

func TestMethod_Validation(t *testing.T) {
	c := container.New()
	assert.Error(t, c.Method(nil, "Run"))
	assert.Error(t, c.Method(&handler{}, "Nope"))
	assert.NoError(t, c.Method(handler{}, "Handle"))
}

// ── End to end ────────────────────────────────────────────────────────────────

func TestMake_ReporterReceivesSharedLogger(t *testing.T) {
	c := container.New()
	c.Singleton(container.Key[*logging.Logger](), func(*container.Container) (any, error) {
		return logging.New(logging.Options{Channel: "simple-lms", Writer: io.Discard}), nil
	})
	c.Alias(container.Key[*logging.Logger](), "Logger")
	require.NoError(t, c.ConstructorAs("Reporter", newReporter, container.Params("logger")))

	assert.False(t, c.Has("Reporter"))

	got, err := c.Make("Reporter")
	require.NoError(t, err)
	r := got.(*reporter)

	logger, err := c.Get("Logger")
	require.NoError(t, err)
	assert.Same(t, logger, r.Logger)
	assert.Equal(t, "simple-lms", r.Logger.Channel())
}
