package container

import (
	"bytes"
	"fmt"
	"reflect"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// ── Container ─────────────────────────────────────────────────────────────────

// Container is the IoC container. It maps capability types to the
// implementations that satisfy them and builds object graphs on demand.
//
// It supports:
//   - AddTransient / AddScoped / AddSingleton registration
//   - RequestRequired resolution (untyped and generic)
//   - Validate / Warm for up-front graph checks and eager singletons
//
// A single mutex guards the registry, memoized plans and the singleton cache.
// Each root RequestRequired holds it for the whole walk, so concurrent root
// requests are serialized. A call made from inside a constructor on the
// goroutine that holds the mutex fails with ErrReentrantRequest.
type Container struct {
	mu sync.Mutex
	// goroutine currently holding mu in enter, 0 when none
	owner atomic.Int64

	// capability → dependency record
	registered map[reflect.Type]*Dependency

	// capabilities in registration order
	order []reflect.Type

	// capability → singleton instance
	singletons map[reflect.Type]any

	log *zap.Logger
}

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger used for registration and resolution events.
func WithLogger(log *zap.Logger) Option {
	return func(c *Container) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates an empty container.
func New(opts ...Option) *Container {
	c := &Container{
		registered: make(map[reflect.Type]*Dependency),
		singletons: make(map[reflect.Type]any),
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.Named("container")
	return c
}

// ── Registration ──────────────────────────────────────────────────────────────

// Register binds capability to the implementation built by ctors.
//
// Each ctor is a function returning a value assignable to capability,
// optionally followed by an error, or a Constructor. When several are given
// they are alternative constructors of the same implementation; exactly one
// of them must take only registered capabilities when the capability is
// first resolved.
//
//	c.Register(container.TypeOf[Notifier](), container.Scoped, NewMailNotifier)
func (c *Container) Register(capability reflect.Type, lifetime Lifetime, ctors ...any) error {
	if capability == nil {
		return newError(CodeInvalidConstructor, nil, "nil capability type")
	}
	if !lifetime.Valid() {
		return newError(CodeInvalidConstructor, capability, "invalid %s", lifetime)
	}

	if err := c.enter(capability); err != nil {
		return err
	}
	defer c.leave()

	if _, exists := c.registered[capability]; exists {
		return newError(CodeDuplicateRegistration, capability, "already registered")
	}

	dep, err := newDependency(capability, lifetime, ctors)
	if err != nil {
		return err
	}
	c.registered[capability] = dep
	c.order = append(c.order, capability)

	c.log.Debug("registered",
		zap.Stringer("capability", capability),
		zap.Stringer("implementation", dep.Implementation),
		zap.Stringer("lifetime", lifetime),
		zap.Int("constructors", len(dep.candidates)),
	)
	return nil
}

// AddTransient registers a capability built anew every time it is needed.
func (c *Container) AddTransient(capability reflect.Type, ctors ...any) error {
	return c.Register(capability, Transient, ctors...)
}

// AddScoped registers a capability built once per root request.
func (c *Container) AddScoped(capability reflect.Type, ctors ...any) error {
	return c.Register(capability, Scoped, ctors...)
}

// AddSingleton registers a capability built once per container.
func (c *Container) AddSingleton(capability reflect.Type, ctors ...any) error {
	return c.Register(capability, Singleton, ctors...)
}

// ── Lookup ────────────────────────────────────────────────────────────────────

// Lookup returns a copy of the dependency record of capability.
func (c *Container) Lookup(capability reflect.Type) (*Dependency, error) {
	if err := c.enter(capability); err != nil {
		return nil, err
	}
	defer c.leave()
	dep, err := c.lookup(capability)
	if err != nil {
		return nil, err
	}
	cp := *dep
	return &cp, nil
}

func (c *Container) lookup(capability reflect.Type) (*Dependency, error) {
	dep, ok := c.registered[capability]
	if !ok {
		return nil, newError(CodeNotRegistered, capability, "not registered")
	}
	return dep, nil
}

// Has reports whether capability is registered.
func (c *Container) Has(capability reflect.Type) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.registered[capability]
	return ok
}

// Resolved reports whether a singleton instance of capability exists.
func (c *Container) Resolved(capability reflect.Type) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.singletons[capability]
	return ok
}

// Capabilities returns all registered capabilities sorted by type name.
func (c *Container) Capabilities() []reflect.Type {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := slices.Clone(c.order)
	slices.SortFunc(out, func(a, b reflect.Type) int {
		return strings.Compare(a.String(), b.String())
	})
	return out
}

// ── Constructor plans ─────────────────────────────────────────────────────────

// planFor returns the memoized plan of dep, choosing it on first use.
// Caller must hold mu.
func (c *Container) planFor(dep *Dependency) (*ConstructorPlan, error) {
	if dep.plan != nil {
		return dep.plan, nil
	}

	var valid []candidate
	var missing []reflect.Type
	for _, cand := range dep.candidates {
		ok := true
		for _, p := range cand.params {
			if _, registered := c.registered[p]; !registered {
				ok = false
				if !slices.Contains(missing, p) {
					missing = append(missing, p)
				}
			}
		}
		if ok {
			valid = append(valid, cand)
		}
	}

	switch len(valid) {
	case 0:
		return nil, newError(CodeNoUsableConstructor, dep.Capability,
			"no constructor of %s takes only registered capabilities (unregistered: %s)",
			dep.Implementation, formatList(missing))
	case 1:
		dep.plan = &ConstructorPlan{Params: valid[0].params, construct: valid[0].call}
		return dep.plan, nil
	default:
		return nil, newError(CodeAmbiguousConstructor, dep.Capability,
			"%d constructors of %s take only registered capabilities", len(valid), dep.Implementation)
	}
}

// ── Resolution ────────────────────────────────────────────────────────────────

// RequestRequired resolves capability with a fresh scope. Any fault aborts
// the whole request and is returned wrapped in ErrResolutionFailed.
//
//	raw, err := c.RequestRequired(container.TypeOf[Router]())
func (c *Container) RequestRequired(capability reflect.Type) (any, error) {
	if err := c.enter(capability); err != nil {
		return nil, &Error{
			Code:       CodeResolutionFailed,
			Capability: capability,
			Message:    "could not resolve",
			Cause:      err,
		}
	}
	defer c.leave()

	instance, err := c.resolve(capability, nil, make(map[reflect.Type]any))
	if err != nil {
		c.log.Warn("resolution failed", zap.Stringer("capability", capability), zap.Error(err))
		return nil, &Error{
			Code:       CodeResolutionFailed,
			Capability: capability,
			Message:    "could not resolve",
			Cause:      err,
		}
	}
	return instance, nil
}

// resolve returns an instance of capability, consulting the singleton cache
// or the request's scoped cache according to its lifetime.
func (c *Container) resolve(capability reflect.Type, path []reflect.Type, scoped map[reflect.Type]any) (any, error) {
	dep, err := c.lookup(capability)
	if err != nil {
		return nil, err
	}

	switch dep.Lifetime {
	case Singleton:
		if inst, ok := c.singletons[capability]; ok {
			return inst, nil
		}
		inst, err := c.build(capability, path, scoped)
		if err != nil {
			return nil, err
		}
		c.singletons[capability] = inst
		return inst, nil

	case Scoped:
		if inst, ok := scoped[capability]; ok {
			return inst, nil
		}
		inst, err := c.build(capability, path, scoped)
		if err != nil {
			return nil, err
		}
		scoped[capability] = inst
		return inst, nil

	default:
		return c.build(capability, path, scoped)
	}
}

// build constructs a new instance of capability after resolving its
// constructor arguments. path holds the capabilities being built above it.
func (c *Container) build(capability reflect.Type, path []reflect.Type, scoped map[reflect.Type]any) (any, error) {
	if slices.Contains(path, capability) {
		return nil, &Error{
			Code:       CodeCircularDependency,
			Capability: capability,
			Message:    "circular dependency",
			Path:       append(slices.Clone(path), capability),
		}
	}
	// each branch gets its own copy so siblings never see each other
	path = append(slices.Clone(path), capability)

	dep, err := c.lookup(capability)
	if err != nil {
		return nil, err
	}
	plan, err := c.planFor(dep)
	if err != nil {
		return nil, err
	}

	args := make([]any, len(plan.Params))
	for i, param := range plan.Params {
		sub, err := c.lookup(param)
		if err != nil {
			return nil, err
		}
		if dep.Lifetime == Singleton && sub.Lifetime != Singleton {
			return nil, &Error{
				Code:       CodeLifetimeViolation,
				Capability: capability,
				Dependency: param,
				Message: fmt.Sprintf("singleton cannot depend on %s %s",
					sub.Lifetime, typeName(param)),
			}
		}
		arg, err := c.resolve(param, path, scoped)
		if err != nil {
			return nil, err
		}
		args[i] = arg
	}

	return c.construct(dep, plan, args)
}

// construct invokes the planned constructor and checks its result.
func (c *Container) construct(dep *Dependency, plan *ConstructorPlan, args []any) (instance any, err error) {
	defer func() {
		if r := recover(); r != nil {
			instance = nil
			err = &Error{
				Code:       CodeInstantiationFailed,
				Capability: dep.Capability,
				Message:    fmt.Sprintf("constructor of %s panicked", typeName(dep.Implementation)),
				Cause:      panicCause(r),
			}
		}
	}()

	instance, err = plan.construct(args)
	if err != nil {
		return nil, &Error{
			Code:       CodeInstantiationFailed,
			Capability: dep.Capability,
			Message:    fmt.Sprintf("constructor of %s failed", typeName(dep.Implementation)),
			Cause:      err,
		}
	}
	if isNil(instance) {
		return nil, newError(CodeInstantiationFailed, dep.Capability,
			"constructor of %s returned nil", typeName(dep.Implementation))
	}
	if !reflect.TypeOf(instance).AssignableTo(dep.Capability) {
		return nil, newError(CodeInstantiationFailed, dep.Capability,
			"constructor returned %T, which does not implement %s", instance, typeName(dep.Capability))
	}

	c.log.Debug("constructed",
		zap.Stringer("capability", dep.Capability),
		zap.Stringer("implementation", dep.Implementation),
		zap.Stringer("lifetime", dep.Lifetime),
	)
	return instance, nil
}

// ── Locking ───────────────────────────────────────────────────────────────────

// enter acquires mu for an operation that may run constructors. It fails
// instead of blocking when the calling goroutine already holds mu, which
// happens when a constructor calls back into the container.
func (c *Container) enter(capability reflect.Type) error {
	id := goroutineID()
	if c.owner.Load() == id {
		return newError(CodeReentrantRequest, capability,
			"container called from inside a constructor")
	}
	c.mu.Lock()
	c.owner.Store(id)
	return nil
}

func (c *Container) leave() {
	c.owner.Store(0)
	c.mu.Unlock()
}

// goroutineID parses the id from the "goroutine N [running]:" stack header.
func goroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	field := bytes.TrimPrefix(buf[:n], []byte("goroutine "))
	if i := bytes.IndexByte(field, ' '); i >= 0 {
		field = field[:i]
	}
	id, _ := strconv.ParseInt(string(field), 10, 64)
	return id
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func panicCause(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("%v", r)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func formatList(types []reflect.Type) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = typeName(t)
	}
	return strings.Join(names, ", ")
}

// ── Generics helpers ──────────────────────────────────────────────────────────

// AddTransient registers I as a transient capability.
//
//	container.AddTransient[Controller](c, NewController)
func AddTransient[I any](c *Container, ctors ...any) error {
	return c.Register(TypeOf[I](), Transient, ctors...)
}

// AddScoped registers I as a scoped capability.
func AddScoped[I any](c *Container, ctors ...any) error {
	return c.Register(TypeOf[I](), Scoped, ctors...)
}

// AddSingleton registers I as a singleton capability.
func AddSingleton[I any](c *Container, ctors ...any) error {
	return c.Register(TypeOf[I](), Singleton, ctors...)
}

// RequestRequired resolves I and type-asserts the result.
//
//	// Instead of: raw, err := c.RequestRequired(container.TypeOf[Router]())
//	// Write:      router, err := container.RequestRequired[Router](c)
func RequestRequired[I any](c *Container) (I, error) {
	var zero I
	instance, err := c.RequestRequired(TypeOf[I]())
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(I)
	if !ok {
		return zero, newError(CodeResolutionFailed, TypeOf[I](), "resolved to %T", instance)
	}
	return typed, nil
}

// MustRequest is like RequestRequired but panics on failure. Use it only
// during startup.
func MustRequest[I any](c *Container) I {
	instance, err := RequestRequired[I](c)
	if err != nil {
		panic(err)
	}
	return instance
}
