package muxschema

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareJSON(t *testing.T) {
	s := New(Config{})
	r := mux.NewRouter()
	r.Use(s.Middleware)

	var gotBody createPet
	var gotQuery petQuery
	var gotHeaders apiHeaders
	route := r.HandleFunc("/pets", func(w http.ResponseWriter, req *http.Request) {
		gotBody, _ = RequestModel[createPet](req)
		gotQuery, _ = QueryModel[petQuery](req)
		gotHeaders, _ = HeaderModel[apiHeaders](req)
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodPost)
	s.Route(route).Request(createPet{}).Querystring(petQuery{}).Headers(apiHeaders{})

	do := func(target, body string, mutate func(*http.Request)) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Api-Key", "secret")
		if mutate != nil {
			mutate(req)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	t.Run("valid request populates all models", func(t *testing.T) {
		rec := do("/pets?limit=5&tags=a&tags=b", `{"name":"rex","age":3}`, nil)

		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, createPet{Name: "rex", Age: 3}, gotBody)
		assert.Equal(t, petQuery{Limit: 5, Tags: []string{"a", "b"}}, gotQuery)
		assert.Equal(t, apiHeaders{XAPIKey: "secret"}, gotHeaders)
	})

	t.Run("absent query keys take defaults", func(t *testing.T) {
		rec := do("/pets", `{"name":"rex"}`, nil)

		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, 10, gotQuery.Limit)
	})

	t.Run("uncoercible query value answers 400", func(t *testing.T) {
		rec := do("/pets?limit=abc", `{"name":"rex"}`, nil)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "querystring")
	})

	t.Run("missing required header answers 400", func(t *testing.T) {
		rec := do("/pets", `{"name":"rex"}`, func(req *http.Request) {
			req.Header.Del("X-Api-Key")
		})

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "headers")
	})

	t.Run("missing required body field answers 400", func(t *testing.T) {
		rec := do("/pets", `{"age":1}`, nil)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "name")
	})

	t.Run("malformed JSON answers 400", func(t *testing.T) {
		rec := do("/pets", `{"name":`, nil)

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("wrong content type answers 400", func(t *testing.T) {
		rec := do("/pets", `{"name":"rex"}`, func(req *http.Request) {
			req.Header.Set("Content-Type", "text/plain")
		})

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "content type")
	})

	t.Run("json suffix media types accepted", func(t *testing.T) {
		rec := do("/pets", `{"name":"rex"}`, func(req *http.Request) {
			req.Header.Set("Content-Type", "application/problem+json")
		})

		require.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestMiddlewareForm(t *testing.T) {
	s := New(Config{})
	r := mux.NewRouter()
	r.Use(s.Middleware)

	var gotBody createPet
	route := r.HandleFunc("/pets", func(w http.ResponseWriter, req *http.Request) {
		gotBody, _ = RequestModel[createPet](req)
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodPost)
	s.Route(route).Request(createPet{}).RequestSource(SourceForm)

	t.Run("urlencoded values load with coercion", func(t *testing.T) {
		form := url.Values{"name": {"rex"}, "age": {"4"}}
		req := httptest.NewRequest(http.MethodPost, "/pets", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, createPet{Name: "rex", Age: 4}, gotBody)
	})

	t.Run("missing required form field answers 400", func(t *testing.T) {
		form := url.Values{"age": {"4"}}
		req := httptest.NewRequest(http.MethodPost, "/pets", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestMiddlewareMultipart(t *testing.T) {
	s := New(Config{})
	r := mux.NewRouter()
	r.Use(s.Middleware)

	var gotBody createPet
	route := r.HandleFunc("/pets", func(w http.ResponseWriter, req *http.Request) {
		gotBody, _ = RequestModel[createPet](req)
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodPost)
	s.Route(route).Request(createPet{}).RequestSource(SourceFormMultipart)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("name", "maya"))
	require.NoError(t, mw.WriteField("age", "2"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/pets", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, createPet{Name: "maya", Age: 2}, gotBody)
}

func TestMiddlewareCasing(t *testing.T) {
	s := New(Config{ConvertCasing: true})
	r := mux.NewRouter()
	r.Use(s.Middleware)

	var gotBody casedBody
	var gotQuery casedQuery
	route := r.HandleFunc("/reports", func(w http.ResponseWriter, req *http.Request) {
		gotBody, _ = RequestModel[casedBody](req)
		gotQuery, _ = QueryModel[casedQuery](req)
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodPost)
	s.Route(route).Request(casedBody{}).Querystring(casedQuery{})

	req := httptest.NewRequest(http.MethodPost, "/reports?pageSize=3", strings.NewReader(`{"displayName":"Rex"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, casedBody{DisplayName: "Rex"}, gotBody)
	assert.Equal(t, casedQuery{PageSize: 3}, gotQuery)
}

func TestMiddlewarePassthrough(t *testing.T) {
	s := New(Config{})
	r := mux.NewRouter()
	r.Use(s.Middleware)

	called := false
	r.HandleFunc("/plain", func(w http.ResponseWriter, req *http.Request) {
		called = true
		assert.Nil(t, RequestValue(req))
		assert.Nil(t, QueryValue(req))
		assert.Nil(t, HeaderValue(req))
	}).Methods(http.MethodGet)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plain", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}

func TestMiddlewareInvalidDeclaration(t *testing.T) {
	s := New(Config{})
	r := mux.NewRouter()
	r.Use(s.Middleware)

	route := r.HandleFunc("/broken", noopHandler).Methods(http.MethodGet)
	s.Route(route).Querystring(requiredQuery{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/broken", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid schema declaration")
}
