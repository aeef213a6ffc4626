package muxschema

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/vitalvas/muxschema/model"
)

// Result is the normalized handler return value: a body value, an optional
// status (default 200) and optional headers. Headers accepts either an
// http.Header or a header model instance; model instances are validated
// against the declared response headers model and emitted kebab-cased.
type Result struct {
	Value   any
	Status  int
	Headers any
}

// JSON writes value as the response for the given status. Shortcut for
// Respond without headers.
func (s *Spec) JSON(w http.ResponseWriter, r *http.Request, status int, value any) error {
	return s.Respond(w, r, Result{Value: value, Status: status})
}

// Respond validates res against the response contract declared for the
// matched route and status, then writes it as JSON. A value that fails the
// contract is never sent: the client gets a 500 carrying only an incident
// ID, and the ResponseValidationError is returned for the host to log.
// Statuses without a declared contract are written as-is.
func (s *Spec) Respond(w http.ResponseWriter, r *http.Request, res Result) error {
	status := res.Status
	if status == 0 {
		status = http.StatusOK
	}

	meta := s.metaFor(mux.CurrentRoute(r))
	var rm *responseMeta
	if meta != nil {
		rm = meta.responses[status]
	}

	value := res.Value
	if rm != nil && rm.model != nil {
		loaded, err := model.Load(value, rm.model, model.LoadOptions{Preference: s.cfg.Preference})
		if err != nil {
			return s.writeIncident(w, &ResponseValidationError{In: "body", Cause: err})
		}
		value = loaded
	}

	if err := s.applyHeaders(w, rm, res.Headers); err != nil {
		return s.writeIncident(w, err)
	}

	dumped, err := model.Dump(value, model.DumpOptions{
		Camelize:   s.cfg.ConvertCasing,
		Preference: s.cfg.Preference,
	})
	if err != nil {
		return s.writeIncident(w, &ResponseValidationError{In: "body", Cause: err})
	}

	if dumped == nil {
		w.WriteHeader(status)
		return nil
	}

	s.writeJSON(w, status, dumped)
	return nil
}

// applyHeaders copies raw headers through and converts header model
// instances into kebab-cased wire headers.
func (s *Spec) applyHeaders(w http.ResponseWriter, rm *responseMeta, headers any) error {
	switch h := headers.(type) {
	case nil:
		return nil

	case http.Header:
		for key, values := range h {
			for _, v := range values {
				w.Header().Add(key, v)
			}
		}
		return nil

	default:
		value := headers
		if rm != nil && rm.headersModel != nil {
			loaded, err := model.Load(value, rm.headersModel, model.LoadOptions{Preference: s.cfg.Preference})
			if err != nil {
				return &ResponseValidationError{In: "headers", Cause: err}
			}
			value = loaded
		}
		dumped, err := model.Dump(value, model.DumpOptions{
			Kebabize:   true,
			Preference: s.cfg.Preference,
		})
		if err != nil {
			return &ResponseValidationError{In: "headers", Cause: err}
		}
		fields, ok := dumped.(map[string]any)
		if !ok {
			return &ResponseValidationError{
				In:    "headers",
				Cause: fmt.Errorf("header value %T does not dump to a mapping", headers),
			}
		}
		for key, v := range fields {
			if v == nil {
				continue
			}
			w.Header().Set(http.CanonicalHeaderKey(key), headerString(v))
		}
		return nil
	}
}

func headerString(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case []any:
		parts := make([]string, len(value))
		for i, item := range value {
			parts[i] = headerString(item)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(value)
	}
}

// writeRequestError answers a 400 for client input that failed validation.
func (s *Spec) writeRequestError(w http.ResponseWriter, err *RequestValidationError) {
	detail := ""
	if err.Cause != nil {
		detail = err.Cause.Error()
	}
	s.writeJSON(w, http.StatusBadRequest, s.errorBody("request "+err.In+" validation failed", detail))
}

// writeIncident answers a 500 for a broken response contract. The payload
// carries only an incident ID; the cause is returned to the caller.
func (s *Spec) writeIncident(w http.ResponseWriter, err error) error {
	body := map[string]any{
		"error":       "response validation failed",
		"incident_id": uuid.New().String(),
	}
	if s.cfg.ConvertCasing {
		body = model.CamelizeKeys(body).(map[string]any)
	}
	s.writeJSON(w, http.StatusInternalServerError, body)
	return err
}

func (s *Spec) errorBody(message, detail string) map[string]any {
	body := map[string]any{"error": message}
	if detail != "" {
		body["detail"] = detail
	}
	return body
}

// writeJSON encodes v into a buffer first so a failed encode never
// produces a half-written body.
func (s *Spec) writeJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := gojson.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(buf.Bytes())
}
