package muxschema

import (
	"reflect"

	"github.com/vitalvas/muxschema/openapi"
)

// RouteBuilder provides a fluent API for declaring the models and
// documentation markers of a route. Model arguments are given as zero
// values; only their types matter:
//
//	s.Route(r.HandleFunc("/pets", create).Methods("POST")).
//	        Summary("Create a pet").
//	        Request(CreatePet{}).
//	        Querystring(PetQuery{}).
//	        Response(201, Pet{}, PetHeaders{}).
//	        Tags("pets")
//
// Declarations are verified once, at Build or first middleware use, not per
// request.
type RouteBuilder struct {
	meta *RouteMeta
}

// Summary sets the operation summary.
func (b *RouteBuilder) Summary(s string) *RouteBuilder {
	b.meta.summary = s
	return b
}

// Description sets the operation description (Markdown).
func (b *RouteBuilder) Description(d string) *RouteBuilder {
	b.meta.description = d
	return b
}

// Request declares the request body model. The body is loaded from JSON
// unless RequestSource changes the namespace.
func (b *RouteBuilder) Request(m any) *RouteBuilder {
	b.meta.requestModel = typeOf(m)
	return b
}

// RequestSource changes the namespace the request model is loaded from.
func (b *RouteBuilder) RequestSource(src DataSource) *RouteBuilder {
	b.meta.requestSource = src
	return b
}

// Querystring declares the querystring model. Every field must be
// optional: absent query keys are normal, not an error.
func (b *RouteBuilder) Querystring(m any) *RouteBuilder {
	b.meta.querystring = typeOf(m)
	return b
}

// Headers declares the request headers model. Declared fields are matched
// against headers case-insensitively with "-" treated as "_"; undeclared
// headers pass through unvalidated.
func (b *RouteBuilder) Headers(m any) *RouteBuilder {
	b.meta.headers = typeOf(m)
	return b
}

// Response declares the response model for a status code, with an optional
// response headers model. Pass a nil body for responses with no content.
// Repeat per status code.
func (b *RouteBuilder) Response(statusCode int, body any, headers ...any) *RouteBuilder {
	rm := b.meta.responses[statusCode]
	if rm == nil {
		rm = &responseMeta{}
		b.meta.responses[statusCode] = rm
	}
	rm.model = typeOf(body)
	if len(headers) > 0 {
		rm.headersModel = typeOf(headers[0])
	}
	return b
}

// ResponseDescription overrides the description derived from the HTTP
// status text.
func (b *RouteBuilder) ResponseDescription(statusCode int, desc string) *RouteBuilder {
	rm := b.meta.responses[statusCode]
	if rm == nil {
		rm = &responseMeta{}
		b.meta.responses[statusCode] = rm
	}
	rm.description = desc
	return b
}

// Tags adds tags to the operation. Group tags are kept; the sets union.
func (b *RouteBuilder) Tags(tags ...string) *RouteBuilder {
	b.meta.tags = appendMissing(b.meta.tags, tags...)
	return b
}

// Security adds named security requirements to the operation, unioned with
// any group requirements. Call with no arguments to mark the operation
// public, overriding document-level security.
func (b *RouteBuilder) Security(names ...string) *RouteBuilder {
	b.meta.securitySet = true
	for _, name := range names {
		b.meta.security = append(b.meta.security, openapi.SecurityRequirement{name: {}})
	}
	return b
}

// Deprecated marks the operation as deprecated.
func (b *RouteBuilder) Deprecated() *RouteBuilder {
	b.meta.deprecated = true
	return b
}

// OperationID sets an explicit operation ID. The emitted ID is
// "{method}_{id}", lowercased.
func (b *RouteBuilder) OperationID(id string) *RouteBuilder {
	b.meta.operationID = id
	return b
}

// Hide excludes the route from generated documents. Validation still runs.
func (b *RouteBuilder) Hide() *RouteBuilder {
	b.meta.hidden = true
	return b
}

// typeOf resolves a model argument to its type. Accepts zero values,
// pointers to zero values, or a reflect.Type directly; nil declares the
// absence of a model.
func typeOf(m any) reflect.Type {
	if m == nil {
		return nil
	}
	if t, ok := m.(reflect.Type); ok {
		return t
	}
	return reflect.TypeOf(m)
}

func appendMissing(dst []string, values ...string) []string {
	for _, v := range values {
		found := false
		for _, have := range dst {
			if have == v {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, v)
		}
	}
	return dst
}
