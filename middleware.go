package muxschema

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/elnormous/contenttype"
	gojson "github.com/goccy/go-json"
	"github.com/gorilla/mux"

	"github.com/vitalvas/muxschema/model"
)

type requestModelKey struct{}
type queryModelKey struct{}
type headerModelKey struct{}

// maxMultipartMemory bounds the in-memory part of multipart parsing;
// larger file parts spill to disk.
const maxMultipartMemory = 32 << 20

// Middleware validates incoming requests against the models declared for
// the matched route. Querystring, headers and body are loaded in that
// order; the first failure answers 400 and the handler never runs.
// Validated instances are stored on the request context; read them with
// RequestModel, QueryModel and HeaderModel. Routes without declarations
// pass through untouched.
func (s *Spec) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		meta := s.metaFor(mux.CurrentRoute(r))
		if meta == nil {
			next.ServeHTTP(w, r)
			return
		}
		if err := meta.check(); err != nil {
			s.writeJSON(w, http.StatusInternalServerError, s.errorBody("invalid schema declaration", err.Error()))
			return
		}

		ctx := r.Context()

		if meta.querystring != nil {
			opts := model.LoadOptions{
				Coerce:     true,
				Decamelize: s.cfg.ConvertCasing,
				Preference: s.cfg.Preference,
			}
			value, err := model.Load(valuesToMap(r.URL.Query()), meta.querystring, opts)
			if err != nil {
				s.writeRequestError(w, &RequestValidationError{In: "querystring", Cause: err})
				return
			}
			ctx = context.WithValue(ctx, queryModelKey{}, value)
		}

		if meta.headers != nil {
			opts := model.LoadOptions{Preference: s.cfg.Preference}
			value, err := model.ConvertHeaders(r.Header, meta.headers, opts)
			if err != nil {
				s.writeRequestError(w, &RequestValidationError{In: "headers", Cause: err})
				return
			}
			ctx = context.WithValue(ctx, headerModelKey{}, value)
		}

		if meta.requestModel != nil {
			value, err := s.loadBody(r, meta)
			if err != nil {
				s.writeRequestError(w, &RequestValidationError{In: "body", Cause: err})
				return
			}
			ctx = context.WithValue(ctx, requestModelKey{}, value)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// loadBody loads the request model from the namespace declared by the
// route's DataSource.
func (s *Spec) loadBody(r *http.Request, meta *RouteMeta) (any, error) {
	opts := model.LoadOptions{
		Decamelize: s.cfg.ConvertCasing,
		Preference: s.cfg.Preference,
	}

	switch meta.requestSource {
	case SourceForm:
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
		opts.Coerce = true
		return model.Load(valuesToMap(r.PostForm), meta.requestModel, opts)

	case SourceFormMultipart:
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			return nil, err
		}
		opts.Coerce = true
		return model.Load(valuesToMap(url.Values(r.MultipartForm.Value)), meta.requestModel, opts)

	default:
		mt, err := contenttype.GetMediaType(r)
		if err != nil {
			return nil, fmt.Errorf("unparsable content type: %w", err)
		}
		if !isJSONMediaType(mt) {
			return nil, fmt.Errorf("unexpected content type %s", mt.String())
		}
		var raw any
		if err := gojson.NewDecoder(r.Body).Decode(&raw); err != nil {
			return nil, fmt.Errorf("malformed JSON body: %w", err)
		}
		return model.Load(raw, meta.requestModel, opts)
	}
}

var jsonMediaType = contenttype.NewMediaType("application/json")

// isJSONMediaType accepts application/json and any +json suffix type, per
// RFC 6839.
func isJSONMediaType(mt contenttype.MediaType) bool {
	return mt.Matches(jsonMediaType) || strings.HasSuffix(mt.Subtype, "+json")
}

// valuesToMap converts url.Values into the mapping shape the loader
// expects: single values stay scalar, repeated keys become lists.
func valuesToMap(values url.Values) map[string]any {
	out := make(map[string]any, len(values))
	for key, vs := range values {
		if len(vs) == 1 {
			out[key] = vs[0]
		} else {
			out[key] = vs
		}
	}
	return out
}

// RequestValue returns the validated request body model, or nil.
func RequestValue(r *http.Request) any {
	return r.Context().Value(requestModelKey{})
}

// QueryValue returns the validated querystring model, or nil.
func QueryValue(r *http.Request) any {
	return r.Context().Value(queryModelKey{})
}

// HeaderValue returns the validated request headers model, or nil.
func HeaderValue(r *http.Request) any {
	return r.Context().Value(headerModelKey{})
}

// RequestModel returns the validated request body model as T.
func RequestModel[T any](r *http.Request) (T, bool) {
	v, ok := RequestValue(r).(T)
	return v, ok
}

// QueryModel returns the validated querystring model as T.
func QueryModel[T any](r *http.Request) (T, bool) {
	v, ok := QueryValue(r).(T)
	return v, ok
}

// HeaderModel returns the validated request headers model as T.
func HeaderModel[T any](r *http.Request) (T, bool) {
	v, ok := HeaderValue(r).(T)
	return v, ok
}
