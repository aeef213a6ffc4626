package model

import (
	"reflect"
	"strings"
	"sync"
)

// Field describes one wire-visible field of a struct backend.
type Field struct {
	// Name is the wire name: the json tag name, or the snake_cased Go
	// name when untagged.
	Name   string
	GoName string
	Index  []int
	Type   reflect.Type

	// Required reports whether the Loader rejects input missing this key:
	// not omitempty/omitzero, not a pointer, no default, not computed.
	Required bool
	// OmitEmpty mirrors the json tag option.
	OmitEmpty bool
	// Computed marks a serialization-only field (`schema:"computed"`).
	Computed bool
	// HasDefault and Default carry `schema:"default=..."`; the Loader
	// fills the default when the key is absent.
	HasDefault bool
	Default    string

	// tagged records whether Name came from a json tag. Untagged fields
	// keep their Go name on the codec side, so conversions translate
	// between Name and GoName for them.
	tagged bool
}

// codecKey is the key the JSON codec reads and writes for this field.
func (f Field) codecKey() string {
	if f.tagged {
		return f.Name
	}
	return f.GoName
}

type fieldsResult struct {
	fields []Field
	err    error
}

var fieldsCache sync.Map // reflect.Type -> fieldsResult

// Fields returns the wire field set of a struct backend, embedded structs
// flattened the way encoding/json flattens them. Results are memoized.
func Fields(t reflect.Type) ([]Field, error) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if cached, ok := fieldsCache.Load(t); ok {
		res := cached.(fieldsResult)
		return res.fields, res.err
	}
	if t.Kind() != reflect.Struct || t == timeType {
		err := &UnsupportedModelError{Type: t}
		fieldsCache.Store(t, fieldsResult{err: err})
		return nil, err
	}

	var raw []taggedField
	collectFields(t, nil, 0, false, &raw)
	fields := resolveFields(raw)
	fieldsCache.Store(t, fieldsResult{fields: fields})
	return fields, nil
}

type taggedField struct {
	Field
	depth int
}

func collectFields(t reflect.Type, index []int, depth int, forceOptional bool, out *[]taggedField) {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.PkgPath != "" && !sf.Anonymous {
			continue
		}
		jsonTag := sf.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}
		name, opts := parseTag(jsonTag)

		if sf.Anonymous && name == "" {
			ft := sf.Type
			optional := forceOptional
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
				optional = true
			}
			if ft.Kind() == reflect.Struct && ft != timeType {
				collectFields(ft, append(append([]int{}, index...), i), depth+1, optional, out)
				continue
			}
		}
		if sf.PkgPath != "" {
			continue
		}

		f := Field{
			GoName:    sf.Name,
			Index:     append(append([]int{}, index...), i),
			Type:      sf.Type,
			OmitEmpty: opts.contains("omitempty"),
		}
		if name != "" {
			f.Name = name
			f.tagged = true
		} else {
			f.Name = toSnake(sf.Name)
		}
		applySchemaTag(&f, sf.Tag.Get("schema"))

		optional := forceOptional || f.OmitEmpty || opts.contains("omitzero") ||
			sf.Type.Kind() == reflect.Pointer || f.HasDefault || f.Computed
		f.Required = !optional

		*out = append(*out, taggedField{Field: f, depth: depth})
	}
}

// resolveFields keeps declaration order and, on a name conflict, the
// shallowest occurrence.
func resolveFields(raw []taggedField) []Field {
	byName := make(map[string]int, len(raw))
	fields := make([]Field, 0, len(raw))
	for _, tf := range raw {
		if at, ok := byName[tf.Name]; ok {
			if tf.depth < at {
				for i := range fields {
					if fields[i].Name == tf.Name {
						fields[i] = tf.Field
						break
					}
				}
				byName[tf.Name] = tf.depth
			}
			continue
		}
		byName[tf.Name] = tf.depth
		fields = append(fields, tf.Field)
	}
	return fields
}

type tagOptions string

func parseTag(tag string) (string, tagOptions) {
	if idx := strings.Index(tag, ","); idx != -1 {
		return tag[:idx], tagOptions(tag[idx+1:])
	}
	return tag, ""
}

func (o tagOptions) contains(option string) bool {
	s := string(o)
	for s != "" {
		var next string
		if idx := strings.Index(s, ","); idx != -1 {
			s, next = s[:idx], s[idx+1:]
		}
		if s == option {
			return true
		}
		s = next
	}
	return false
}

func applySchemaTag(f *Field, tag string) {
	if tag == "" {
		return
	}
	for _, part := range strings.Split(tag, ",") {
		switch {
		case part == "computed":
			f.Computed = true
		case strings.HasPrefix(part, "default="):
			f.HasDefault = true
			f.Default = strings.TrimPrefix(part, "default=")
		}
	}
}
