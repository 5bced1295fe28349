package container

import (
	"fmt"
	"reflect"
)

var errorType = reflect.TypeFor[error]()

// TypeOf returns the capability key for I.
//
//	key := container.TypeOf[UserRepository]()
func TypeOf[I any]() reflect.Type {
	return reflect.TypeFor[I]()
}

// ── Constructors ──────────────────────────────────────────────────────────────

// Constructor is an explicitly declared factory, for implementations that
// cannot be expressed as a plain Go function or that are assembled from
// configuration. Params lists the capabilities passed to New, in order.
//
//	container.Constructor{
//	    Implementation: reflect.TypeFor[*Mailer](),
//	    Params:         []reflect.Type{container.TypeOf[Transport]()},
//	    New: func(args []any) (any, error) {
//	        return &Mailer{transport: args[0].(Transport)}, nil
//	    },
//	}
type Constructor struct {
	Implementation reflect.Type
	Params         []reflect.Type
	New            func(args []any) (any, error)
}

// candidate is one constructor of an implementation, normalized from either a
// Go function or a Constructor.
type candidate struct {
	impl   reflect.Type
	params []reflect.Type
	call   func(args []any) (any, error)
}

// newCandidate checks the shape of ctor against capability. Whether its
// parameters are registered is decided later, when the plan is computed.
func newCandidate(capability reflect.Type, ctor any) (candidate, error) {
	switch c := ctor.(type) {
	case Constructor:
		return explicitCandidate(capability, &c)
	case *Constructor:
		if c == nil {
			return candidate{}, newError(CodeInvalidConstructor, capability, "nil constructor")
		}
		return explicitCandidate(capability, c)
	}

	if ctor == nil {
		return candidate{}, newError(CodeInvalidConstructor, capability, "nil constructor")
	}
	fn := reflect.ValueOf(ctor)
	ft := fn.Type()
	if ft.Kind() != reflect.Func {
		return candidate{}, newError(CodeInvalidConstructor, capability, "constructor must be a function, got %s", ft)
	}
	if fn.IsNil() {
		return candidate{}, newError(CodeInvalidConstructor, capability, "nil constructor")
	}
	if ft.IsVariadic() {
		return candidate{}, newError(CodeInvalidConstructor, capability, "variadic constructor %s", ft)
	}
	switch {
	case ft.NumOut() == 1:
	case ft.NumOut() == 2 && ft.Out(1) == errorType:
	default:
		return candidate{}, newError(CodeInvalidConstructor, capability,
			"constructor %s must return (T) or (T, error)", ft)
	}
	impl := ft.Out(0)
	if !impl.AssignableTo(capability) {
		return candidate{}, newError(CodeInvalidConstructor, capability,
			"%s does not implement %s", impl, capability)
	}

	params := make([]reflect.Type, ft.NumIn())
	for i := range params {
		params[i] = ft.In(i)
	}

	return candidate{
		impl:   impl,
		params: params,
		call: func(args []any) (any, error) {
			in := make([]reflect.Value, len(args))
			for i, arg := range args {
				if arg == nil {
					in[i] = reflect.Zero(params[i])
					continue
				}
				in[i] = reflect.ValueOf(arg)
			}
			out := fn.Call(in)
			if len(out) == 2 && !out[1].IsNil() {
				return nil, out[1].Interface().(error)
			}
			return out[0].Interface(), nil
		},
	}, nil
}

func explicitCandidate(capability reflect.Type, c *Constructor) (candidate, error) {
	if c.Implementation == nil {
		return candidate{}, newError(CodeInvalidConstructor, capability, "constructor has no implementation type")
	}
	if c.New == nil {
		return candidate{}, newError(CodeInvalidConstructor, capability, "constructor for %s has no New func", c.Implementation)
	}
	if !c.Implementation.AssignableTo(capability) {
		return candidate{}, newError(CodeInvalidConstructor, capability,
			"%s does not implement %s", c.Implementation, capability)
	}
	for i, p := range c.Params {
		if p == nil {
			return candidate{}, newError(CodeInvalidConstructor, capability,
				"constructor for %s has nil parameter type at %d", c.Implementation, i)
		}
	}
	params := append([]reflect.Type(nil), c.Params...)
	return candidate{impl: c.Implementation, params: params, call: c.New}, nil
}

// ── Dependency record ─────────────────────────────────────────────────────────

// ConstructorPlan is the single constructor the container uses to build an
// implementation.
type ConstructorPlan struct {
	// Params are the capabilities passed to the constructor, in order.
	Params    []reflect.Type
	construct func(args []any) (any, error)
}

// Dependency is the registry record of one capability.
type Dependency struct {
	Capability     reflect.Type
	Implementation reflect.Type
	Lifetime       Lifetime

	candidates []candidate

	// memoized on first resolution, guarded by Container.mu
	plan *ConstructorPlan
}

// Plan returns the memoized constructor plan, or nil if the capability has
// not been resolved or validated yet.
func (d *Dependency) Plan() *ConstructorPlan {
	return d.plan
}

// Constructors returns the number of candidate constructors registered.
func (d *Dependency) Constructors() int {
	return len(d.candidates)
}

func (d *Dependency) String() string {
	return fmt.Sprintf("%s => %s (%s)", typeName(d.Capability), typeName(d.Implementation), d.Lifetime)
}

func newDependency(capability reflect.Type, lifetime Lifetime, ctors []any) (*Dependency, error) {
	if len(ctors) == 0 {
		return nil, newError(CodeInvalidConstructor, capability, "no constructor given")
	}
	dep := &Dependency{
		Capability: capability,
		Lifetime:   lifetime,
		candidates: make([]candidate, 0, len(ctors)),
	}
	for _, ctor := range ctors {
		cand, err := newCandidate(capability, ctor)
		if err != nil {
			return nil, err
		}
		if dep.Implementation == nil {
			dep.Implementation = cand.impl
		} else if dep.Implementation != cand.impl {
			return nil, newError(CodeInvalidConstructor, capability,
				"constructors build different implementations: %s and %s", dep.Implementation, cand.impl)
		}
		dep.candidates = append(dep.candidates, cand)
	}
	return dep, nil
}
