package container

import (
	"errors"
	"fmt"
	"reflect"

	"go.uber.org/zap"
	"ocm.software/open-component-model/bindings/go/dag"
)

// depGraph is the capability graph of a container. Edges point from a
// capability to the capabilities its constructor takes.
type depGraph struct {
	dag   *dag.DirectedAcyclicGraph[string]
	types map[string]reflect.Type
}

// Validate chooses the constructor of every registered capability and checks
// the whole graph for lifetime violations and cycles, without building
// anything. It reports the same faults RequestRequired would, but at boot.
func (c *Container) Validate() error {
	if err := c.enter(nil); err != nil {
		return err
	}
	defer c.leave()
	_, err := c.graph()
	return err
}

// Warm validates the container and then builds every singleton, dependencies
// first. Call it once at startup, before the container is shared between
// goroutines.
func (c *Container) Warm() error {
	if err := c.enter(nil); err != nil {
		return err
	}
	defer c.leave()

	g, err := c.graph()
	if err != nil {
		return err
	}
	order, err := g.dag.TopologicalSort()
	if err != nil {
		return err
	}

	warmed := 0
	for _, name := range order {
		capability := g.types[name]
		if c.registered[capability].Lifetime != Singleton {
			continue
		}
		if _, ok := c.singletons[capability]; ok {
			continue
		}
		if _, err := c.resolve(capability, nil, make(map[reflect.Type]any)); err != nil {
			return &Error{
				Code:       CodeResolutionFailed,
				Capability: capability,
				Message:    "could not warm singleton",
				Cause:      err,
			}
		}
		warmed++
	}
	c.log.Info("singletons warmed", zap.Int("count", warmed))
	return nil
}

// graph builds the capability graph, computing every plan on the way.
// Caller must hold mu.
func (c *Container) graph() (*depGraph, error) {
	g := &depGraph{
		dag:   dag.NewDirectedAcyclicGraph[string](),
		types: make(map[string]reflect.Type, len(c.order)),
	}
	names := make(map[reflect.Type]string, len(c.order))

	for i, capability := range c.order {
		name := typeName(capability)
		if _, taken := g.types[name]; taken {
			name = fmt.Sprintf("%s#%d", name, i)
		}
		names[capability] = name
		g.types[name] = capability
		dep := c.registered[capability]
		if err := g.dag.AddVertex(name, map[string]any{
			"implementation": typeName(dep.Implementation),
			"lifetime":       dep.Lifetime.String(),
		}); err != nil {
			return nil, err
		}
	}

	for _, capability := range c.order {
		dep := c.registered[capability]
		plan, err := c.planFor(dep)
		if err != nil {
			return nil, err
		}
		for _, param := range plan.Params {
			sub := c.registered[param]
			if dep.Lifetime == Singleton && sub.Lifetime != Singleton {
				return nil, &Error{
					Code:       CodeLifetimeViolation,
					Capability: capability,
					Dependency: param,
					Message: fmt.Sprintf("singleton cannot depend on %s %s",
						sub.Lifetime, typeName(param)),
				}
			}
			if param == capability {
				return nil, &Error{
					Code:       CodeCircularDependency,
					Capability: capability,
					Message:    "circular dependency",
					Path:       []reflect.Type{capability, capability},
				}
			}
			if err := g.dag.AddEdge(names[capability], names[param]); err != nil {
				var cycle *dag.CycleError
				if errors.As(err, &cycle) {
					return nil, &Error{
						Code:       CodeCircularDependency,
						Capability: capability,
						Message:    "circular dependency",
						Cause:      err,
					}
				}
				return nil, err
			}
		}
	}
	return g, nil
}
