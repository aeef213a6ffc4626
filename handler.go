package muxschema

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"sort"
	"strings"

	"github.com/gorilla/mux"
	"gopkg.in/yaml.v3"
)

// DocsUI selects which interactive documentation UI the docs endpoint
// serves.
type DocsUI int

const (
	DocsSwaggerUI DocsUI = iota
	DocsRapiDoc
)

// HandleConfig configures the endpoints registered by Handle.
type HandleConfig struct {
	// UI selects the docs UI (default: DocsSwaggerUI).
	UI DocsUI

	// Title overrides the HTML page title (default: Config.Title).
	Title string

	// JSONPath is the path serving the document as JSON
	// (default: "/openapi.json"). Set to "-" to disable.
	JSONPath string

	// YAMLPath is the path serving the document as YAML. Empty disables
	// it; set e.g. "/openapi.yaml" to enable.
	YAMLPath string

	// DocsPath is the path serving the docs UI (default: "/docs").
	// Set to "-" to disable.
	DocsPath string

	// RedocPath is the path serving the Redoc UI (default: "/redocs").
	// Set to "-" to disable.
	RedocPath string

	// SwaggerUIConfig provides additional SwaggerUIBundle configuration
	// options, rendered as JavaScript object properties alongside the url
	// and dom_id defaults. Only used when UI is DocsSwaggerUI.
	SwaggerUIConfig map[string]any
}

func (cfg HandleConfig) jsonPath() string {
	if cfg.JSONPath == "" {
		return "/openapi.json"
	}
	return cfg.JSONPath
}

func (cfg HandleConfig) docsPath() string {
	if cfg.DocsPath == "" {
		return "/docs"
	}
	return cfg.DocsPath
}

func (cfg HandleConfig) redocPath() string {
	if cfg.RedocPath == "" {
		return "/redocs"
	}
	return cfg.RedocPath
}

// Handle registers the documentation endpoints on the router:
//
//	/openapi.json  - the document as JSON
//	/openapi.yaml  - the document as YAML (only when YAMLPath is set)
//	/docs          - SwaggerUI or RapiDoc
//	/redocs        - Redoc
//
// All paths are configurable through cfg. The registered routes are hidden
// from the generated document, and the document is rebuilt on every
// request so late metadata and casing changes are always reflected.
func (s *Spec) Handle(r *mux.Router, cfg HandleConfig) {
	jsonPath := cfg.jsonPath()

	if jsonPath != "-" {
		s.hide(r.HandleFunc(jsonPath, func(w http.ResponseWriter, _ *http.Request) {
			doc, err := s.Build(r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			// encoding/json, not the conversion codec: Schema omission
			// relies on omitzero, which goccy does not implement.
			data, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				http.Error(w, "failed to serialize document as JSON", http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(data)
		}).Methods(http.MethodGet))
	}

	if cfg.YAMLPath != "" && cfg.YAMLPath != "-" {
		s.hide(r.HandleFunc(cfg.YAMLPath, func(w http.ResponseWriter, _ *http.Request) {
			doc, err := s.Build(r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			data, err := yaml.Marshal(doc)
			if err != nil {
				http.Error(w, "failed to serialize document as YAML", http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/x-yaml")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(data)
		}).Methods(http.MethodGet))
	}

	// The UIs point at the JSON endpoint; without one there is nothing to
	// render.
	if jsonPath == "-" {
		return
	}

	title := cfg.Title
	if title == "" {
		title = s.cfg.Title
	}

	if docsPath := cfg.docsPath(); docsPath != "-" {
		s.hide(r.HandleFunc(docsPath, func(w http.ResponseWriter, _ *http.Request) {
			var page string
			switch cfg.UI {
			case DocsRapiDoc:
				page = rapidocTemplate(title, jsonPath)
			default:
				page = swaggerUITemplate(title, jsonPath, cfg.SwaggerUIConfig)
			}
			writeHTML(w, page)
		}).Methods(http.MethodGet))
	}

	if redocPath := cfg.redocPath(); redocPath != "-" {
		s.hide(r.HandleFunc(redocPath, func(w http.ResponseWriter, _ *http.Request) {
			writeHTML(w, redocTemplate(title, jsonPath))
		}).Methods(http.MethodGet))
	}
}

func writeHTML(w http.ResponseWriter, page string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(page))
}

func swaggerUITemplate(title, specPath string, config map[string]any) string {
	var extra string
	if len(config) > 0 {
		keys := make([]string, 0, len(config))
		for k := range config {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var buf strings.Builder
		for _, k := range keys {
			v, err := json.Marshal(config[k])
			if err != nil {
				continue
			}
			fmt.Fprintf(&buf, ", %s: %s", k, v)
		}
		extra = buf.String()
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s</title>
<link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist/swagger-ui.css">
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist/swagger-ui-bundle.js"></script>
<script>
SwaggerUIBundle({url: %q, dom_id: "#swagger-ui"%s});
</script>
</body>
</html>`, html.EscapeString(title), specPath, extra)
}

func rapidocTemplate(title, specPath string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s</title>
<script type="module" src="https://unpkg.com/rapidoc/dist/rapidoc-min.js"></script>
</head>
<body>
<rapi-doc spec-url=%q></rapi-doc>
</body>
</html>`, html.EscapeString(title), specPath)
}

func redocTemplate(title, specPath string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s</title>
</head>
<body>
<redoc spec-url=%q></redoc>
<script src="https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"></script>
</body>
</html>`, html.EscapeString(title), specPath)
}
