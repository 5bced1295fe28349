package app

// IController maps a method name to its result.
type IController interface {
	GetResult(method string) string
}

// Controller answers path1, path2 and path3. Unknown methods yield "".
type Controller struct {
	notify INotify
}

func NewController(notify INotify) *Controller {
	notify.Send("Controller was instantiated")
	return &Controller{notify: notify}
}

func (c *Controller) GetResult(method string) string {
	switch method {
	case "path1":
		return c.Path1()
	case "path2":
		return c.Path2()
	case "path3":
		return c.Path3()
	default:
		return ""
	}
}

func (c *Controller) Path1() string {
	c.notify.Send("Path1()")
	return "path1 result"
}

func (c *Controller) Path2() string {
	c.notify.Send("Path2()")
	return "path2 result"
}

func (c *Controller) Path3() string {
	c.notify.Send("Path3()")
	return "path3 results"
}
