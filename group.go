package muxschema

import (
	"github.com/gorilla/mux"

	"github.com/vitalvas/muxschema/openapi"
)

// groupDefaults holds the metadata a Group applies to every route it
// registers.
type groupDefaults struct {
	tags        []string
	security    []openapi.SecurityRequirement
	securitySet bool
	deprecated  bool

	responses map[int]*responseMeta
}

// Group registers routes with shared metadata defaults. Tags and security
// requirements are unioned with per-route values, deprecation is a one-way
// latch, and shared responses apply unless the route declares the same
// status itself.
type Group struct {
	spec     *Spec
	defaults groupDefaults
}

// Tags appends tags to the group defaults.
func (g *Group) Tags(tags ...string) *Group {
	g.defaults.tags = appendMissing(g.defaults.tags, tags...)
	return g
}

// Security adds named security requirements to the group defaults. Call
// with no arguments to mark the whole group public.
func (g *Group) Security(names ...string) *Group {
	g.defaults.securitySet = true
	for _, name := range names {
		g.defaults.security = append(g.defaults.security, openapi.SecurityRequirement{name: {}})
	}
	return g
}

// Deprecated marks every route in the group as deprecated. Routes cannot
// undo it.
func (g *Group) Deprecated() *Group {
	g.defaults.deprecated = true
	return g
}

// Response adds a shared response declaration for the given status code,
// with an optional response headers model. A route-level Response call for
// the same status wins.
func (g *Group) Response(statusCode int, body any, headers ...any) *Group {
	if g.defaults.responses == nil {
		g.defaults.responses = make(map[int]*responseMeta)
	}
	rm := &responseMeta{model: typeOf(body)}
	if len(headers) > 0 {
		rm.headersModel = typeOf(headers[0])
	}
	g.defaults.responses[statusCode] = rm
	return g
}

// Route attaches a metadata builder to a mux route, pre-populated with the
// group defaults.
func (g *Group) Route(route *mux.Route) *RouteBuilder {
	b := g.spec.Route(route)

	b.meta.tags = appendMissing(b.meta.tags, g.defaults.tags...)
	if g.defaults.securitySet {
		b.meta.securitySet = true
		b.meta.security = append(b.meta.security, g.defaults.security...)
	}
	if g.defaults.deprecated {
		b.meta.deprecated = true
	}
	for status, rm := range g.defaults.responses {
		if _, ok := b.meta.responses[status]; !ok {
			b.meta.responses[status] = &responseMeta{
				model:        rm.model,
				headersModel: rm.headersModel,
				description:  rm.description,
			}
		}
	}

	return b
}
