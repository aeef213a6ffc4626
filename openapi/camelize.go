package openapi

import (
	"github.com/vitalvas/muxschema/model"
)

// CamelizeSchema rewrites every property key and required entry of s to
// camelCase, at every nesting level. Schemas referenced by $ref are not
// followed; camelize the pool with CamelizeSchemas to cover them.
func CamelizeSchema(s *Schema) {
	if s == nil {
		return
	}

	if len(s.Properties) > 0 {
		props := make(map[string]*Schema, len(s.Properties))
		for key, prop := range s.Properties {
			CamelizeSchema(prop)
			props[model.Camelize(key)] = prop
		}
		s.Properties = props
	}
	for i, key := range s.Required {
		s.Required[i] = model.Camelize(key)
	}

	CamelizeSchema(s.Items)
	CamelizeSchema(s.AdditionalProperties)
	CamelizeSchema(s.Not)
	for _, sub := range s.AllOf {
		CamelizeSchema(sub)
	}
	for _, sub := range s.OneOf {
		CamelizeSchema(sub)
	}
	for _, sub := range s.AnyOf {
		CamelizeSchema(sub)
	}
}

// CamelizeSchemas rewrites every schema in a components pool.
func CamelizeSchemas(pool map[string]*Schema) {
	for _, s := range pool {
		CamelizeSchema(s)
	}
}
