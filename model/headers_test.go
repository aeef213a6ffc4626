package model

import (
	"net/http"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authHeaders struct {
	XAPIKey    string `json:"x_api_key"`
	RetryAfter int    `json:"retry_after,omitempty"`
	Accept     string `json:"accept,omitempty"`
}

func TestConvertHeaders(t *testing.T) {
	t.Run("subset match with coercion", func(t *testing.T) {
		h := http.Header{}
		h.Set("X-Api-Key", "secret")
		h.Set("Retry-After", "30")
		h.Set("X-Unrelated", "dropped")

		got, err := ConvertHeaders(h, reflect.TypeOf(authHeaders{}), LoadOptions{})
		require.NoError(t, err)
		assert.Equal(t, authHeaders{XAPIKey: "secret", RetryAfter: 30}, got)
	})

	t.Run("repeated headers join with comma", func(t *testing.T) {
		h := http.Header{}
		h.Set("X-Api-Key", "secret")
		h.Add("Accept", "application/json")
		h.Add("Accept", "text/html")

		got, err := ConvertHeaders(h, reflect.TypeOf(authHeaders{}), LoadOptions{})
		require.NoError(t, err)
		assert.Equal(t, "application/json,text/html", got.(authHeaders).Accept)
	})

	t.Run("missing required header", func(t *testing.T) {
		_, err := ConvertHeaders(http.Header{}, reflect.TypeOf(authHeaders{}), LoadOptions{})
		require.Error(t, err)
		assert.ErrorContains(t, err, `missing required field "x_api_key"`)
	})

	t.Run("non-struct target", func(t *testing.T) {
		_, err := ConvertHeaders(http.Header{}, reflect.TypeOf(labelSet{}), LoadOptions{})
		assert.ErrorIs(t, err, ErrUnsupportedModel)
	})
}
