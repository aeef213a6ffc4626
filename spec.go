package muxschema

import (
	"reflect"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/vitalvas/muxschema/model"
	"github.com/vitalvas/muxschema/openapi"
)

// DataSource names the request namespace a request model is loaded from.
type DataSource int

const (
	// SourceJSON loads the model from an application/json body.
	SourceJSON DataSource = iota
	// SourceForm loads the model from an urlencoded form body.
	SourceForm
	// SourceFormMultipart loads the model from a multipart form body.
	SourceFormMultipart
)

// mediaType returns the media type an operation advertises for the source.
func (s DataSource) mediaType() string {
	switch s {
	case SourceForm:
		return "application/x-www-form-urlencoded"
	case SourceFormMultipart:
		return "multipart/form-data"
	default:
		return "application/json"
	}
}

// Config configures a Spec. Values are read on every conversion and every
// Build; nothing derived from them is cached.
type Config struct {
	// Title and Version fill the document's info object.
	Title   string
	Version string
	// Description is the optional info description (Markdown).
	Description string

	// SpecVersion is the reported OpenAPI version. Defaults to "3.1.0";
	// set "3.0.3" for UIs that reject 3.1 documents.
	SpecVersion string

	// ConvertCasing enables snake_case models over camelCase wire keys:
	// request keys decamelize before loading, response keys camelize
	// after dumping, and generated schemas are rewritten to match.
	ConvertCasing bool

	// Preference picks the JSON engine for conversions.
	Preference model.Preference

	// OperationIDs derives "{method}_{route name}" operation IDs for
	// named routes. Explicit RouteBuilder.OperationID always wins.
	OperationIDs bool

	Servers         []openapi.Server
	Tags            []openapi.Tag
	Security        []openapi.SecurityRequirement
	SecuritySchemes map[string]*openapi.SecurityScheme
	ExternalDocs    *openapi.ExternalDocs
}

// Spec attaches request/response models to gorilla/mux routes and builds
// OpenAPI documents from them. Route metadata lives in a side table keyed
// by the route pointer; the router itself is never touched beyond Walk and
// CurrentRoute. Register every route before serving: the side table is not
// guarded for concurrent mutation.
type Spec struct {
	cfg    Config
	routes map[*mux.Route]*RouteMeta
}

// New creates a Spec with the given configuration.
func New(cfg Config) *Spec {
	return &Spec{
		cfg:    cfg,
		routes: make(map[*mux.Route]*RouteMeta),
	}
}

// Options returns the conversion options derived from the configuration.
func (s *Spec) Options() model.Options {
	return model.Options{
		ConvertCasing: s.cfg.ConvertCasing,
		Preference:    s.cfg.Preference,
	}
}

// Route attaches a metadata builder to an existing mux route. The route can
// be configured with any mux features (Methods, Queries, and so on).
func (s *Spec) Route(route *mux.Route) *RouteBuilder {
	meta := newRouteMeta()
	if route != nil {
		s.routes[route] = meta
	}
	return &RouteBuilder{meta: meta}
}

// Group creates a group whose tags, security, deprecation and shared
// responses are applied to every route registered through it.
func (s *Spec) Group() *Group {
	return &Group{spec: s}
}

// metaFor returns the metadata registered for the route, or nil.
func (s *Spec) metaFor(route *mux.Route) *RouteMeta {
	if route == nil {
		return nil
	}
	return s.routes[route]
}

// responseMeta describes one declared response status.
type responseMeta struct {
	model        reflect.Type // nil means no content
	headersModel reflect.Type
	description  string
}

// RouteMeta holds the declared models and documentation markers of a single
// route. Instances are created through Spec.Route and mutated only by the
// builder; after registration they are read-only.
type RouteMeta struct {
	summary     string
	description string
	tags        []string
	security    []openapi.SecurityRequirement
	securitySet bool
	deprecated  bool
	operationID string
	hidden      bool

	requestModel  reflect.Type
	requestSource DataSource
	querystring   reflect.Type
	headers       reflect.Type
	responses     map[int]*responseMeta

	checkOnce sync.Once
	checkErr  error
}

func newRouteMeta() *RouteMeta {
	return &RouteMeta{
		responses: make(map[int]*responseMeta),
	}
}

// check verifies every declared model once: models must classify,
// querystring models must be fully optional, and form request models must
// be flat. Failures surface as SchemaInvalidError from Build and from the
// middleware, before any request is judged.
func (m *RouteMeta) check() error {
	m.checkOnce.Do(func() {
		m.checkErr = m.runChecks()
	})
	return m.checkErr
}

func (m *RouteMeta) runChecks() error {
	if m.requestModel != nil {
		if _, err := model.KindOf(m.requestModel); err != nil {
			return &SchemaInvalidError{Reason: "request model: " + err.Error()}
		}
		if m.requestSource == SourceForm || m.requestSource == SourceFormMultipart {
			if err := checkFlat(m.requestModel); err != nil {
				return err
			}
		}
	}

	if m.querystring != nil {
		fields, err := model.Fields(m.querystring)
		if err != nil {
			return &SchemaInvalidError{Reason: "querystring model: " + err.Error()}
		}
		for _, f := range fields {
			if f.Required {
				return &SchemaInvalidError{
					Reason: "querystring model field " + f.Name + " must be optional",
				}
			}
		}
	}

	if m.headers != nil {
		if _, err := model.Fields(m.headers); err != nil {
			return &SchemaInvalidError{Reason: "headers model: " + err.Error()}
		}
	}

	for _, rm := range m.responses {
		if rm.model != nil {
			if _, err := model.KindOf(rm.model); err != nil {
				return &SchemaInvalidError{Reason: "response model: " + err.Error()}
			}
		}
		if rm.headersModel != nil {
			if _, err := model.Fields(rm.headersModel); err != nil {
				return &SchemaInvalidError{Reason: "response headers model: " + err.Error()}
			}
		}
	}

	return nil
}

// checkFlat rejects form request models with nested object fields: form
// encodings carry no nesting.
func checkFlat(t reflect.Type) error {
	fields, err := model.Fields(t)
	if err != nil {
		return &SchemaInvalidError{Reason: "form request model: " + err.Error()}
	}
	for _, f := range fields {
		if isObjectLike(f.Type) {
			return &SchemaInvalidError{
				Reason: "form request model field " + f.Name + " nests an object",
			}
		}
	}
	return nil
}

var timeType = reflect.TypeOf(time.Time{})

func isObjectLike(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Struct:
		return t != timeType
	case reflect.Map:
		return true
	case reflect.Slice:
		return t.Elem().Kind() != reflect.Uint8 && isObjectLike(t.Elem())
	}
	return false
}

// hide marks the route as excluded from generated documents. Used for the
// extension's own endpoints.
func (s *Spec) hide(route *mux.Route) {
	if route == nil {
		return
	}
	meta := s.routes[route]
	if meta == nil {
		meta = newRouteMeta()
		s.routes[route] = meta
	}
	meta.hidden = true
}
