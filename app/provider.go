package app

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/km-arc/go-inject/framework/container"
	gohttp "github.com/km-arc/go-inject/framework/http"
	"github.com/km-arc/go-inject/framework/routing"
)

// ── Provider ──────────────────────────────────────────────────────────────────

// Provider registers the demo collaborators.
//
// Registered capabilities:
//   - INotify      → *Notify      (scoped)
//   - IController  → *Controller  (transient)
//   - IRouter      → *Router      (RouterLifetime, transient by default)
type Provider struct {
	container.BaseProvider
	RouterLifetime container.Lifetime
}

func (p *Provider) Register(c *container.Container) error {
	if err := container.AddScoped[INotify](c, NewNotify); err != nil {
		return err
	}
	if err := container.AddTransient[IController](c, NewController); err != nil {
		return err
	}
	return c.Register(container.TypeOf[IRouter](), p.RouterLifetime, NewRouter)
}

// ── RouteProvider ─────────────────────────────────────────────────────────────

// RouteProvider mounts the demo endpoints on *routing.Router:
//
//	GET /route/{path}  → {"data": {"path": ..., "result": ...}}
//	GET /container     → {"data": [{"capability": ..., ...}]}
//
// Every HTTP request resolves IRouter as its own root request, so scoped
// capabilities are shared within one HTTP request only. Responses are marked
// uncacheable.
type RouteProvider struct {
	container.BaseProvider
}

func (p *RouteProvider) Register(*container.Container) error { return nil }

func (p *RouteProvider) Boot(c *container.Container) error {
	router, err := container.RequestRequired[*routing.Router](c)
	if err != nil {
		return err
	}

	router.Group(func(g *routing.Router) {
		g.Middleware(middleware.NoCache)

		g.Get("/route/{path}", func(w http.ResponseWriter, r *http.Request) {
			res := gohttp.NewResponse(w)
			ir, err := container.RequestRequired[IRouter](c)
			if err != nil {
				res.ServerError(err.Error())
				return
			}
			path := routing.Param(r, "path")
			res.Success(map[string]string{"path": path, "result": ir.Route(path)})
		})

		g.Get("/container", func(w http.ResponseWriter, _ *http.Request) {
			res := gohttp.NewResponse(w)
			regs, err := Registrations(c)
			if err != nil {
				res.ServerError(err.Error())
				return
			}
			res.Success(regs)
		})
	})
	return nil
}

// Registration describes one entry of the container.
type Registration struct {
	Capability     string `json:"capability"`
	Implementation string `json:"implementation"`
	Lifetime       string `json:"lifetime"`
	Constructors   int    `json:"constructors"`
	Resolved       bool   `json:"resolved"`
}

// Registrations lists the container's entries ordered by capability name.
func Registrations(c *container.Container) ([]Registration, error) {
	caps := c.Capabilities()
	out := make([]Registration, 0, len(caps))
	for _, capability := range caps {
		dep, err := c.Lookup(capability)
		if err != nil {
			return nil, err
		}
		out = append(out, Registration{
			Capability:     capability.String(),
			Implementation: dep.Implementation.String(),
			Lifetime:       dep.Lifetime.String(),
			Constructors:   dep.Constructors(),
			Resolved:       c.Resolved(capability),
		})
	}
	return out, nil
}
