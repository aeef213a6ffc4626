package openapi

import (
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/vitalvas/muxschema/model"
)

// Mode selects which side of the wire a generated schema describes.
type Mode int

const (
	// ModeValidation describes request payloads: computed fields are
	// omitted because clients never send them.
	ModeValidation Mode = iota
	// ModeSerialization describes response payloads: computed fields are
	// included and marked readOnly.
	ModeSerialization
)

// Exampler can be implemented by types to provide an example value
// for the generated JSON Schema. The returned value is set as the "example"
// field on the component schema.
//
//	func (u User) OpenAPIExample() any {
//	    return User{ID: "550e8400-e29b-41d4-a716-446655440000", Name: "Alice"}
//	}
type Exampler interface {
	OpenAPIExample() any
}

// Generator converts model types to JSON Schema objects and collects named
// types into a component schemas map for $ref deduplication: a named struct
// is generated once and referenced as #/components/schemas/<Name> from then
// on, no matter how often or how deeply it appears.
//
// See: https://spec.openapis.org/oas/v3.1.0#components-object (schemas)
type Generator struct {
	mode      Mode
	schemas   map[string]*Schema
	visited   map[reflect.Type]bool
	typeNames map[reflect.Type]string // type -> chosen schema name
	nameTypes map[string]reflect.Type // schema name -> type that claimed it
}

// NewGenerator creates a schema generator for the given mode.
func NewGenerator(mode Mode) *Generator {
	return &Generator{
		mode:      mode,
		schemas:   make(map[string]*Schema),
		visited:   make(map[reflect.Type]bool),
		typeNames: make(map[reflect.Type]string),
		nameTypes: make(map[string]reflect.Type),
	}
}

// NewGeneratorPair creates a validation and a serialization generator that
// share one name registry: a type claims the same component name on both
// sides of the wire, so schemas generated for one side can be pooled with
// the other side's by name without a same-name type from another package
// stealing the key.
func NewGeneratorPair() (validation, serialization *Generator) {
	validation = NewGenerator(ModeValidation)
	serialization = NewGenerator(ModeSerialization)
	serialization.typeNames = validation.typeNames
	serialization.nameTypes = validation.nameTypes
	return validation, serialization
}

// Schemas returns the collected component schemas.
func (g *Generator) Schemas() map[string]*Schema {
	return g.schemas
}

// Generate produces a JSON Schema for the given model type. The type must
// classify as a model; anything else returns a SchemaBuildError.
func (g *Generator) Generate(t reflect.Type) (*Schema, error) {
	if _, err := model.KindOf(t); err != nil {
		return nil, &SchemaBuildError{Type: t, Cause: err}
	}
	return g.generateType(t), nil
}

// TypeSchema returns the inline-or-ref schema for a bare Go type without
// the model classification gate. Used for parameter and header schemas,
// where scalar types are the norm.
func (g *Generator) TypeSchema(t reflect.Type) *Schema {
	return g.generateType(t)
}

var jsonMarshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()

// generateType produces a Schema for the given Go type, using $ref for named
// struct types and inline schemas for primitives, slices, maps, and
// anonymous structs.
func (g *Generator) generateType(t reflect.Type) *Schema {
	// Unwrap pointer and mark nullable.
	nullable := false
	if t.Kind() == reflect.Pointer {
		nullable = true
		t = t.Elem()
	}

	// Types with their own wire codec have no introspectable shape.
	if t != timeType && t.Kind() == reflect.Struct && t.Implements(jsonMarshalerType) {
		return &Schema{}
	}

	// Named struct types go to the pool (except time.Time).
	if t.Kind() == reflect.Struct && t != timeType {
		name := g.schemaName(t)
		if name != "" {
			if !g.visited[t] {
				g.visited[t] = true
				schema := g.generateStructSchema(t)

				if ex, ok := reflect.New(t).Interface().(Exampler); ok {
					schema.Example = ex.OpenAPIExample()
				}

				g.schemas[name] = schema
			}

			ref := &Schema{Ref: "#/components/schemas/" + name}
			if nullable {
				return &Schema{
					AnyOf: []*Schema{
						ref,
						{Type: TypeString("null")},
					},
				}
			}
			return ref
		}
	}

	schema := g.generateInlineType(t)
	if nullable && schema != nil {
		applyNullable(schema)
	}
	return schema
}

var timeType = reflect.TypeOf(time.Time{})

// generateInlineType maps Go primitive and composite types to JSON Schema types.
//
// See: https://spec.openapis.org/oas/v3.1.0#data-types
func (g *Generator) generateInlineType(t reflect.Type) *Schema {
	if t == timeType {
		return &Schema{Type: TypeString("string"), Format: "date-time"}
	}

	switch t.Kind() {
	case reflect.Bool:
		return &Schema{Type: TypeString("boolean")}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return &Schema{Type: TypeString("integer")}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: TypeString("integer")}

	case reflect.Float32, reflect.Float64:
		return &Schema{Type: TypeString("number")}

	case reflect.String:
		return &Schema{Type: TypeString("string")}

	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return &Schema{Type: TypeString("string"), Format: "byte"}
		}
		return &Schema{
			Type:  TypeString("array"),
			Items: g.generateType(t.Elem()),
		}

	case reflect.Array:
		return &Schema{
			Type:  TypeString("array"),
			Items: g.generateType(t.Elem()),
		}

	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return &Schema{Type: TypeString("object")}
		}
		return &Schema{
			Type:                 TypeString("object"),
			AdditionalProperties: g.generateType(t.Elem()),
		}

	case reflect.Struct:
		return g.generateStructSchema(t)

	case reflect.Interface:
		return &Schema{}
	}

	return nil
}

// generateStructSchema builds an object schema from the wire field set of
// the struct: properties are keyed by wire name (untagged fields come out
// snake_cased), requiredness follows the field metadata, defaults surface
// as "default", and computed fields follow the generator's mode.
func (g *Generator) generateStructSchema(t reflect.Type) *Schema {
	schema := &Schema{
		Type:       TypeString("object"),
		Properties: make(map[string]*Schema),
	}

	fields, err := model.Fields(t)
	if err != nil {
		return schema
	}

	for _, f := range fields {
		if f.Computed && g.mode == ModeValidation {
			continue
		}

		fieldSchema := g.generateType(f.Type)
		if fieldSchema == nil {
			continue
		}

		sf := t.FieldByIndex(f.Index)
		applyOpenAPITag(fieldSchema, sf.Tag.Get("openapi"))

		// The encoding/json ",string" option encodes numeric and boolean
		// values as JSON strings. Override the schema type accordingly.
		if jsonTagStringEncoded(sf.Tag.Get("json")) && fieldSchema.Ref == "" && len(fieldSchema.AnyOf) == 0 {
			applyStringEncoding(fieldSchema)
		}

		if f.HasDefault && fieldSchema.Ref == "" {
			fieldSchema.Default = parseTagValue(fieldSchema, f.Default)
		}
		if f.Computed && fieldSchema.Ref == "" {
			fieldSchema.ReadOnly = true
		}

		schema.Properties[f.Name] = fieldSchema

		if f.Required {
			schema.Required = append(schema.Required, f.Name)
		}
	}

	if len(schema.Properties) == 0 {
		schema.Properties = nil
	}

	return schema
}

func jsonTagStringEncoded(tag string) bool {
	_, rest, ok := strings.Cut(tag, ",")
	if !ok {
		return false
	}
	for _, opt := range strings.Split(rest, ",") {
		if opt == "string" {
			return true
		}
	}
	return false
}

// applyOpenAPITag parses the `openapi` struct tag and applies constraints to
// the schema. Tag keys map to JSON Schema and OpenAPI Schema Object keywords.
//
// See: https://spec.openapis.org/oas/v3.1.0#schema-object
func applyOpenAPITag(schema *Schema, tag string) {
	if tag == "" {
		return
	}

	for part := range strings.SplitSeq(tag, ",") {
		key, value, hasValue := strings.Cut(part, "=")
		key = strings.TrimSpace(key)
		if hasValue {
			value = strings.TrimSpace(value)
		}

		switch key {
		case "description":
			schema.Description = value
		case "example":
			schema.Example = parseTagValue(schema, value)
		case "format":
			schema.Format = value
		case "minimum":
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				schema.Minimum = &v
			}
		case "maximum":
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				schema.Maximum = &v
			}
		case "exclusiveMinimum":
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				schema.ExclusiveMinimum = &v
			}
		case "exclusiveMaximum":
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				schema.ExclusiveMaximum = &v
			}
		case "minLength":
			if v, err := strconv.Atoi(value); err == nil {
				schema.MinLength = &v
			}
		case "maxLength":
			if v, err := strconv.Atoi(value); err == nil {
				schema.MaxLength = &v
			}
		case "pattern":
			schema.Pattern = value
		case "enum":
			values := strings.Split(value, "|")
			schema.Enum = make([]any, len(values))
			for i, v := range values {
				schema.Enum[i] = v
			}
		case "deprecated":
			schema.Deprecated = true
		case "readOnly":
			schema.ReadOnly = true
		case "writeOnly":
			schema.WriteOnly = true
		case "title":
			schema.Title = value
		case "multipleOf":
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				schema.MultipleOf = &v
			}
		case "minItems":
			if v, err := strconv.Atoi(value); err == nil {
				schema.MinItems = &v
			}
		case "maxItems":
			if v, err := strconv.Atoi(value); err == nil {
				schema.MaxItems = &v
			}
		case "uniqueItems":
			schema.UniqueItems = true
		case "minProperties":
			if v, err := strconv.Atoi(value); err == nil {
				schema.MinProperties = &v
			}
		case "maxProperties":
			if v, err := strconv.Atoi(value); err == nil {
				schema.MaxProperties = &v
			}
		case "const":
			schema.Const = parseTagValue(schema, value)
		}
	}
}

// parseTagValue converts a string tag value to the Go type matching the
// schema's type field.
func parseTagValue(schema *Schema, value string) any {
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

// schemaName returns a unique schema name for the given type. If two types
// from different packages share the same simple name (e.g., models.User and
// api.User), the second type gets a qualified name using its package's last
// path segment as a prefix (e.g., "ApiUser"). When the prefixed name still
// collides, a numeric suffix is appended (e.g., "ApiUser2"). Names are used
// as keys in the Components Object schemas map and in $ref URIs.
func (g *Generator) schemaName(t reflect.Type) string {
	simple := sanitizeSchemaName(t.Name())
	if simple == "" || t.PkgPath() == "" {
		return ""
	}

	if name, ok := g.typeNames[t]; ok {
		return name
	}

	name := simple
	if existing, ok := g.nameTypes[name]; ok && existing != t {
		name = pkgPrefix(t.PkgPath()) + simple
		if existing, ok := g.nameTypes[name]; ok && existing != t {
			base := name
			for i := 2; ; i++ {
				candidate := base + strconv.Itoa(i)
				if _, ok := g.nameTypes[candidate]; !ok {
					name = candidate
					break
				}
			}
		}
	}

	g.typeNames[t] = name
	g.nameTypes[name] = t
	return name
}

// pkgPrefix extracts the last segment of a Go package path and capitalizes
// it for use as a schema name prefix (e.g., "net/http" -> "Http").
func pkgPrefix(pkgPath string) string {
	if idx := strings.LastIndexByte(pkgPath, '/'); idx >= 0 {
		pkgPath = pkgPath[idx+1:]
	}
	if len(pkgPath) == 0 {
		return ""
	}
	pkgPath = strings.ReplaceAll(pkgPath, "-", "_")
	pkgPath = strings.ReplaceAll(pkgPath, ".", "_")
	return strings.ToUpper(pkgPath[:1]) + pkgPath[1:]
}

// sanitizeSchemaName cleans up Go type names for use as OpenAPI component
// schema keys. Generic type names like "ResponseData[User]" are converted
// to "ResponseDataUser", and "ResponseData[[]User]" becomes
// "ResponseDataUserList". Package paths in type parameters are stripped.
func sanitizeSchemaName(name string) string {
	idx := strings.IndexByte(name, '[')
	if idx < 0 {
		return name
	}

	base := name[:idx]
	inner := name[idx+1 : len(name)-1]

	isList := strings.HasPrefix(inner, "[]")
	inner = strings.TrimPrefix(inner, "[]")

	// Strip package path: "github.com/foo/bar.User" → "User".
	if dot := strings.LastIndexByte(inner, '.'); dot >= 0 {
		inner = inner[dot+1:]
	}

	result := base + inner
	if isList {
		result += "List"
	}

	return result
}

// applyNullable modifies a schema to allow null values by converting
// the type to an array (e.g., "string" becomes ["string", "null"]).
// In JSON Schema Draft 2020-12, nullable is expressed via type arrays
// rather than the OpenAPI 3.0 "nullable" keyword.
func applyNullable(schema *Schema) {
	if schema.Ref != "" {
		return
	}
	types := schema.Type.Values()
	if len(types) > 0 {
		schema.Type = TypeArray(append(types, "null")...)
	}
}

// applyStringEncoding overrides the schema type to "string" to match the
// encoding/json ",string" tag option. Nullable types preserve the "null"
// variant.
func applyStringEncoding(schema *Schema) {
	types := schema.Type.Values()
	if len(types) == 0 {
		return
	}
	var hasNull bool
	for _, t := range types {
		if t == "null" {
			hasNull = true
			break
		}
	}
	if hasNull {
		schema.Type = TypeArray("string", "null")
	} else {
		schema.Type = TypeString("string")
	}
}
