package router

import (
	"sort"

	"github.com/Brownie44l1/staticd/internal/request"
	"github.com/Brownie44l1/staticd/internal/response"
)

// Handler turns a parsed request into a response
type Handler func(req *request.Request) response.Response

// Middleware wraps a Handler
type Middleware func(Handler) Handler

// Dispatcher maps request methods to handlers. Methods without a handler
// go to the fallback, which answers 400 unless replaced.
type Dispatcher struct {
	handlers    map[string]Handler
	middlewares []Middleware
	fallback    Handler
}

// New creates an empty dispatcher
func New() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string]Handler),
		fallback: func(*request.Request) response.Response {
			return response.BadRequest(nil)
		},
	}
}

// Handle registers handler for method. Method names are case sensitive.
func (d *Dispatcher) Handle(method string, handler Handler) {
	d.handlers[method] = handler
}

// GET is a shortcut for Handle("GET", ...)
func (d *Dispatcher) GET(handler Handler) {
	d.Handle("GET", handler)
}

// HEAD is a shortcut for Handle("HEAD", ...)
func (d *Dispatcher) HEAD(handler Handler) {
	d.Handle("HEAD", handler)
}

// POST is a shortcut for Handle("POST", ...)
func (d *Dispatcher) POST(handler Handler) {
	d.Handle("POST", handler)
}

// Fallback replaces the handler used for unsupported methods.
func (d *Dispatcher) Fallback(handler Handler) {
	d.fallback = handler
}

// Use appends middleware. Middleware registered first runs outermost.
func (d *Dispatcher) Use(mw ...Middleware) {
	d.middlewares = append(d.middlewares, mw...)
}

// Methods lists the registered methods in sorted order.
func (d *Dispatcher) Methods() []string {
	methods := make([]string, 0, len(d.handlers))
	for m := range d.handlers {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	return methods
}

// Dispatch runs the handler registered for req.Method through the
// middleware chain.
func (d *Dispatcher) Dispatch(req *request.Request) response.Response {
	handler, ok := d.handlers[req.Method]
	if !ok {
		handler = d.fallback
	}

	for i := len(d.middlewares) - 1; i >= 0; i-- {
		handler = d.middlewares[i](handler)
	}
	return handler(req)
}
