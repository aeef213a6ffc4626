package model

import (
	"reflect"
)

// Dump converts a model instance (or a list/map of instances) into plain
// JSON-safe values: map[string]any, []any and scalars. Values that do not
// classify as models pass through unchanged. Untagged struct fields come
// out under their snake_cased wire names; key casing is rewritten after
// flattening when Camelize or Kebabize is set.
func Dump(v any, opts DumpOptions) (any, error) {
	if opts.Camelize && opts.Kebabize {
		return nil, convErr(KindInvalid, "camelize and kebabize are mutually exclusive")
	}
	if v == nil {
		return nil, nil
	}

	t := reflect.TypeOf(v)
	kind, err := KindOf(t)
	if err != nil {
		return v, nil
	}

	codec := codecFor(opts.Preference)
	encoded, err := codec.marshal(v)
	if err != nil {
		return nil, &ConversionError{Kind: kind, Cause: err}
	}
	var flat any
	if err := codec.unmarshal(encoded, &flat); err != nil {
		return nil, &ConversionError{Kind: kind, Cause: err}
	}

	flat = normalize(flat, t, opts.OmitComputed)
	switch {
	case opts.Camelize:
		flat = CamelizeKeys(flat)
	case opts.Kebabize:
		flat = KebabizeKeys(flat)
	}
	return flat, nil
}

// normalize walks the flattened tree guided by the field metadata of the
// source type: codec keys of untagged fields are renamed to their wire
// names, and computed fields dropped when requested.
func normalize(data any, t reflect.Type, omitComputed bool) any {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	kind, err := KindOf(t)
	if err != nil {
		return data
	}

	switch kind {
	case KindList:
		items, ok := data.([]any)
		if !ok {
			return data
		}
		for i, item := range items {
			items[i] = normalize(item, t.Elem(), omitComputed)
		}
		return items

	case KindMap:
		values, ok := data.(map[string]any)
		if !ok {
			return data
		}
		for key, value := range values {
			values[key] = normalize(value, t.Elem(), omitComputed)
		}
		return values

	case KindSchemaRecord, KindAttrStruct, KindPlainStruct:
		values, ok := data.(map[string]any)
		if !ok {
			return data
		}
		fields, err := Fields(t)
		if err != nil {
			return data
		}
		for _, f := range fields {
			key := f.codecKey()
			value, present := values[key]
			if !present {
				continue
			}
			if omitComputed && f.Computed {
				delete(values, key)
				continue
			}
			value = normalize(value, f.Type, omitComputed)
			if key != f.Name {
				delete(values, key)
				values[f.Name] = value
			} else {
				values[key] = value
			}
		}
		return values
	}
	return data
}
