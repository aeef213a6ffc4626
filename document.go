package muxschema

import (
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/vitalvas/muxschema/model"
	"github.com/vitalvas/muxschema/openapi"
)

// pathVarRegexp matches route variables in the form {name} or {name:pattern}.
var pathVarRegexp = regexp.MustCompile(`\{([^}]+)\}`)

// macroTypeMap maps well-known pattern names to OpenAPI type and format,
// for routers that register named patterns instead of raw expressions.
var macroTypeMap = map[string][2]string{
	"uuid":     {"string", "uuid"},
	"int":      {"integer", ""},
	"float":    {"number", ""},
	"slug":     {"string", ""},
	"alpha":    {"string", ""},
	"alphanum": {"string", ""},
	"date":     {"string", "date"},
	"hex":      {"string", ""},
	"domain":   {"string", "hostname"},
}

var (
	integerPatternRegexp = regexp.MustCompile(`^(\[0-9\]|\\d|[0-9{},+*?])+$`)
	numberPatternRegexp  = regexp.MustCompile(`^(\[0-9\]|\\d|\\\.|[0-9{},+*?.])+$`)
	alternationRegexp    = regexp.MustCompile(`^[A-Za-z0-9_.-]+(\|[A-Za-z0-9_.-]+)+$`)
)

// Build walks the router and assembles a complete OpenAPI document. The
// document is built fresh on every call: no caching, per the rule that
// conversion settings and route metadata are read when used. Routes without
// a path template or methods are skipped; hidden routes and the layer's own
// endpoints never appear. A misdeclared model surfaces here as a
// SchemaInvalidError.
func (s *Spec) Build(r *mux.Router) (*openapi.Document, error) {
	valGen, serGen := openapi.NewGeneratorPair()

	specVersion := s.cfg.SpecVersion
	if specVersion == "" {
		specVersion = "3.1.0"
	}

	doc := &openapi.Document{
		OpenAPI: specVersion,
		Info: openapi.Info{
			Title:       s.cfg.Title,
			Version:     s.cfg.Version,
			Description: s.cfg.Description,
		},
		Servers:      s.cfg.Servers,
		Paths:        make(map[string]*openapi.PathItem),
		Security:     s.cfg.Security,
		ExternalDocs: s.cfg.ExternalDocs,
	}

	err := r.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTpl, err := route.GetPathTemplate()
		if err != nil {
			return nil
		}
		methods, err := route.GetMethods()
		if err != nil {
			return nil
		}

		meta := s.metaFor(route)
		if meta == nil {
			meta = newRouteMeta()
		}
		if meta.hidden {
			return nil
		}
		if err := meta.check(); err != nil {
			return err
		}

		openAPIPath, pathParams := parsePath(pathTpl)

		for _, method := range methods {
			// HEAD mirrors GET and never documents anything extra.
			if method == http.MethodHead {
				continue
			}
			op, err := s.buildOperation(meta, route, method, pathParams, valGen, serGen)
			if err != nil {
				return err
			}

			pathItem, ok := doc.Paths[openAPIPath]
			if !ok {
				pathItem = &openapi.PathItem{}
				doc.Paths[openAPIPath] = pathItem
			}
			assignOperation(pathItem, method, op)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Merge the generator pools. The shared name registry guarantees a
	// name maps to one type across both pools, so a type appearing on both
	// sides keeps its serialization schema, which is a superset (computed
	// fields included).
	schemas := valGen.Schemas()
	for name, schema := range serGen.Schemas() {
		schemas[name] = schema
	}
	if s.cfg.ConvertCasing {
		openapi.CamelizeSchemas(schemas)
	}

	if len(schemas) > 0 || len(s.cfg.SecuritySchemes) > 0 {
		doc.Components = &openapi.Components{}
		if len(schemas) > 0 {
			doc.Components.Schemas = schemas
		}
		if len(s.cfg.SecuritySchemes) > 0 {
			doc.Components.SecuritySchemes = s.cfg.SecuritySchemes
		}
	}

	doc.Tags = s.mergeTags(doc.Paths)

	return doc, nil
}

// buildOperation renders one route+method into an Operation Object.
func (s *Spec) buildOperation(meta *RouteMeta, route *mux.Route, method string,
	pathParams []*openapi.Parameter, valGen, serGen *openapi.Generator) (*openapi.Operation, error) {

	op := &openapi.Operation{
		Summary:     meta.summary,
		Description: meta.description,
		Tags:        meta.tags,
		Deprecated:  meta.deprecated,
	}
	if meta.securitySet {
		op.Security = meta.security
	}

	id := meta.operationID
	if id == "" && s.cfg.OperationIDs {
		id = route.GetName()
	}
	if id != "" {
		op.OperationID = strings.ToLower(method + "_" + id)
	}

	op.Parameters = append(op.Parameters, pathParams...)

	if meta.querystring != nil {
		fields, err := model.Fields(meta.querystring)
		if err != nil {
			return nil, err
		}
		for _, f := range fields {
			name := f.Name
			if s.cfg.ConvertCasing {
				name = model.Camelize(name)
			}
			op.Parameters = append(op.Parameters, &openapi.Parameter{
				Name:   name,
				In:     "query",
				Schema: fieldSchema(valGen, f),
			})
		}
	}

	if meta.headers != nil {
		fields, err := model.Fields(meta.headers)
		if err != nil {
			return nil, err
		}
		for _, f := range fields {
			op.Parameters = append(op.Parameters, &openapi.Parameter{
				Name:     model.Kebabize(f.Name),
				In:       "header",
				Required: f.Required,
				Schema:   fieldSchema(valGen, f),
			})
		}
	}

	if meta.requestModel != nil {
		schema, err := valGen.Generate(meta.requestModel)
		if err != nil {
			return nil, err
		}
		if s.cfg.ConvertCasing {
			openapi.CamelizeSchema(schema)
		}
		op.RequestBody = &openapi.RequestBody{
			Required: true,
			Content: map[string]*openapi.MediaType{
				meta.requestSource.mediaType(): {Schema: schema},
			},
		}
	}

	if len(meta.responses) > 0 {
		op.Responses = make(map[string]*openapi.Response, len(meta.responses))
		for status, rm := range meta.responses {
			key := strconv.Itoa(status)
			desc := rm.description
			if desc == "" {
				desc = http.StatusText(status)
				if desc == "" {
					desc = key
				}
			}
			resp := &openapi.Response{Description: desc}

			if rm.model != nil {
				schema, err := serGen.Generate(rm.model)
				if err != nil {
					return nil, err
				}
				if s.cfg.ConvertCasing {
					openapi.CamelizeSchema(schema)
				}
				resp.Content = map[string]*openapi.MediaType{
					"application/json": {Schema: schema},
				}
			}

			if rm.headersModel != nil {
				fields, err := model.Fields(rm.headersModel)
				if err != nil {
					return nil, err
				}
				resp.Headers = make(map[string]*openapi.Header, len(fields))
				for _, f := range fields {
					resp.Headers[model.Kebabize(f.Name)] = &openapi.Header{
						Required: f.Required,
						Schema:   fieldSchema(serGen, f),
					}
				}
			}

			op.Responses[key] = resp
		}
	}

	return op, nil
}

// fieldSchema renders the schema of a single parameter-like field.
func fieldSchema(gen *openapi.Generator, f model.Field) *openapi.Schema {
	schema := gen.TypeSchema(f.Type)
	if schema == nil {
		schema = &openapi.Schema{}
	}
	if f.HasDefault && schema.Ref == "" {
		schema.Default = defaultValue(schema, f.Default)
	}
	return schema
}

// defaultValue converts a declared default to the Go type matching the
// schema, so integers do not document as strings.
func defaultValue(schema *openapi.Schema, value string) any {
	types := schema.Type.Values()
	if len(types) == 0 {
		return value
	}
	switch types[0] {
	case "integer":
		if v, err := strconv.ParseInt(value, 10, 64); err == nil {
			return v
		}
	case "number":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			return v
		}
	case "boolean":
		if v, err := strconv.ParseBool(value); err == nil {
			return v
		}
	}
	return value
}

// assignOperation assigns an operation to the method field of a path item.
func assignOperation(pathItem *openapi.PathItem, method string, op *openapi.Operation) {
	switch method {
	case http.MethodGet:
		pathItem.Get = op
	case http.MethodPost:
		pathItem.Post = op
	case http.MethodPut:
		pathItem.Put = op
	case http.MethodDelete:
		pathItem.Delete = op
	case http.MethodPatch:
		pathItem.Patch = op
	case http.MethodOptions:
		pathItem.Options = op
	case http.MethodTrace:
		pathItem.Trace = op
	}
}

// parsePath extracts variables from a mux path template, converts it to
// OpenAPI format, and generates parameter objects typed from the variable
// patterns.
func parsePath(tpl string) (string, []*openapi.Parameter) {
	var params []*openapi.Parameter

	openAPIPath := pathVarRegexp.ReplaceAllStringFunc(tpl, func(match string) string {
		inner := match[1 : len(match)-1]
		varName, pattern, _ := strings.Cut(inner, ":")

		params = append(params, &openapi.Parameter{
			Name:     varName,
			In:       "path",
			Required: true,
			Schema:   patternSchema(pattern),
		})
		return "{" + varName + "}"
	})

	return openAPIPath, params
}

// patternSchema types a path variable from its route pattern: digit-only
// expressions map to integer, digit expressions with a dot to number, pure
// literal alternations to a string enum. Anything else stays a string with
// the pattern attached.
func patternSchema(pattern string) *openapi.Schema {
	if pattern == "" {
		return &openapi.Schema{Type: openapi.TypeString("string")}
	}

	if typeInfo, ok := macroTypeMap[pattern]; ok {
		schema := &openapi.Schema{Type: openapi.TypeString(typeInfo[0])}
		if typeInfo[1] != "" {
			schema.Format = typeInfo[1]
		}
		return schema
	}

	if integerPatternRegexp.MatchString(pattern) {
		return &openapi.Schema{Type: openapi.TypeString("integer")}
	}
	if numberPatternRegexp.MatchString(pattern) && strings.Contains(pattern, ".") {
		return &openapi.Schema{Type: openapi.TypeString("number")}
	}
	if alternationRegexp.MatchString(pattern) {
		values := strings.Split(pattern, "|")
		enum := make([]any, len(values))
		for i, v := range values {
			enum[i] = v
		}
		return &openapi.Schema{Type: openapi.TypeString("string"), Enum: enum}
	}

	return &openapi.Schema{Type: openapi.TypeString("string"), Pattern: pattern}
}

// mergeTags combines tags collected from operations with the configured
// tags. Configured tags keep their description; tags only configured but
// never used are still included. The result is sorted alphabetically.
func (s *Spec) mergeTags(paths map[string]*openapi.PathItem) []openapi.Tag {
	userTags := make(map[string]openapi.Tag, len(s.cfg.Tags))
	for _, tag := range s.cfg.Tags {
		userTags[tag.Name] = tag
	}

	seen := make(map[string]bool)
	var tags []openapi.Tag

	for _, pathItem := range paths {
		for _, op := range []*openapi.Operation{
			pathItem.Get, pathItem.Post, pathItem.Put,
			pathItem.Delete, pathItem.Patch,
			pathItem.Options, pathItem.Trace,
		} {
			if op == nil {
				continue
			}
			for _, tagName := range op.Tags {
				if seen[tagName] {
					continue
				}
				seen[tagName] = true
				if userTag, ok := userTags[tagName]; ok {
					tags = append(tags, userTag)
				} else {
					tags = append(tags, openapi.Tag{Name: tagName})
				}
			}
		}
	}

	for _, tag := range s.cfg.Tags {
		if !seen[tag.Name] {
			seen[tag.Name] = true
			tags = append(tags, tag)
		}
	}

	sort.Slice(tags, func(i, j int) bool {
		return tags[i].Name < tags[j].Name
	})

	return tags
}
