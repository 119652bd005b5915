package web

import "github.com/gin-gonic/gin"

// Handler and Router alias gin's types so route registration does not
// leak gin into every caller signature.
type Handler = gin.HandlerFunc
type Router = gin.IRouter

// Options collects route and middleware registration for the web
// provider.
type Options struct {
	// Routes are called during Init to register handlers.
	Routes []func(r Router)
	// Middlewares are installed after the built-in ones.
	Middlewares []Handler
}

// Option configures the web provider.
type Option func(*Options)

// WithRoutes registers a route-registration callback.
func WithRoutes(f func(r Router)) Option {
	return func(o *Options) { o.Routes = append(o.Routes, f) }
}

// WithMiddlewares installs additional middlewares.
func WithMiddlewares(m ...Handler) Option {
	return func(o *Options) { o.Middlewares = append(o.Middlewares, m...) }
}
