// Package module wires image generation into the API using modkit
package module

import (
	"net/http"

	modkit "ablo/internal/modkit"
	"ablo/internal/modkit/httpkit"

	"ablo/internal/services/api/images/domain"
	imghttp "ablo/internal/services/api/images/http"
	imgsvc "ablo/internal/services/api/images/service"
)

// Module implements the images API module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws       []func(http.Handler) http.Handler
	ports     any
	swaggerOn bool

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc imgsvc.Service
}

// Ports declares the injected inference port for this module
type Ports struct {
	Inference domain.InferencePort
}

// New constructs the images module
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("images"),
		modkit.WithPrefix("/images"),
	}, opts...)...)

	var injected Ports
	if p, ok := b.Ports.(Ports); ok {
		injected = p
	}
	if injected.Inference == nil {
		panic("images module requires Inference port")
	}

	svc := imgsvc.New(injected.Inference)

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		ports:     injected,
		swaggerOn: b.SwaggerOn,
		subrouter: b.Subrouter,
		svc:       svc,
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		imghttp.Register(r, m.svc)
		if external != nil {
			external(r)
		}
	}
	return m
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.subrouter != nil {
			rr = m.subrouter(rr)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Name returns the module name
func (m *Module) Name() string { return m.name }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return m.prefix }

// Ports returns the module's injected ports
func (m *Module) Ports() any { return m.ports }
