package app

// IRouter routes a path to a controller result.
type IRouter interface {
	Route(path string) string
}

type Router struct {
	controller IController
	notify     INotify
}

func NewRouter(controller IController, notify INotify) *Router {
	notify.Send("Router was instantiated")
	return &Router{controller: controller, notify: notify}
}

// Route announces the path and returns the controller's result for it.
func (r *Router) Route(path string) string {
	r.notify.Send("Routing " + path)
	return r.controller.GetResult(path)
}
