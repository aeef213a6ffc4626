package model

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profile struct {
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url" schema:"computed"`
}

func TestDump(t *testing.T) {
	t.Run("struct flattens to plain mapping", func(t *testing.T) {
		got, err := Dump(petRecord{Name: "rex", Age: 3}, DumpOptions{})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"name": "rex", "age": float64(3)}, got)
	})

	t.Run("untagged fields come out snake_cased", func(t *testing.T) {
		got, err := Dump(plainPair{Left: "a", Right: "b"}, DumpOptions{})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"left": "a", "right": "b"}, got)
	})

	t.Run("camelize after flattening", func(t *testing.T) {
		got, err := Dump(profile{DisplayName: "Rex", AvatarURL: "http://x"}, DumpOptions{Camelize: true})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"displayName": "Rex", "avatarUrl": "http://x"}, got)
	})

	t.Run("kebabize for header models", func(t *testing.T) {
		got, err := Dump(profile{DisplayName: "Rex", AvatarURL: "http://x"}, DumpOptions{Kebabize: true})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"display-name": "Rex", "avatar-url": "http://x"}, got)
	})

	t.Run("camelize and kebabize are exclusive", func(t *testing.T) {
		_, err := Dump(profile{}, DumpOptions{Camelize: true, Kebabize: true})
		var convErr *ConversionError
		require.ErrorAs(t, err, &convErr)
	})

	t.Run("omit computed", func(t *testing.T) {
		got, err := Dump(profile{DisplayName: "Rex", AvatarURL: "http://x"}, DumpOptions{OmitComputed: true})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"display_name": "Rex"}, got)
	})

	t.Run("list of records", func(t *testing.T) {
		got, err := Dump([]petRecord{{Name: "rex", Age: 3}}, DumpOptions{})
		require.NoError(t, err)
		assert.Equal(t, []any{map[string]any{"name": "rex", "age": float64(3)}}, got)
	})

	t.Run("wire struct uses its own codec", func(t *testing.T) {
		got, err := Dump(wirePoint{X: 3, Y: 4}, DumpOptions{})
		require.NoError(t, err)
		assert.Equal(t, "3,4", got)
	})

	t.Run("non-models pass through unchanged", func(t *testing.T) {
		for _, v := range []any{"plain", 42, map[string]any{"k": "v"}, []int{1, 2}} {
			got, err := Dump(v, DumpOptions{})
			require.NoError(t, err)
			assert.Equal(t, v, got)
		}
	})

	t.Run("nil passes through", func(t *testing.T) {
		got, err := Dump(nil, DumpOptions{})
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestDumpLoadRoundTrip(t *testing.T) {
	t.Run("plain casing", func(t *testing.T) {
		original := petDetails{
			Name:   "rex",
			Visits: []vetVisit{{Date: "2024-01-01", Reason: "checkup"}},
		}
		dumped, err := Dump(original, DumpOptions{})
		require.NoError(t, err)
		loaded, err := Load(dumped, reflect.TypeOf(petDetails{}), LoadOptions{})
		require.NoError(t, err)
		assert.Equal(t, original, loaded)
	})

	t.Run("camel casing on both sides", func(t *testing.T) {
		original := petDetails{
			Name:   "rex",
			Visits: []vetVisit{{Date: "2024-01-01"}},
		}
		dumped, err := Dump(original, DumpOptions{Camelize: true})
		require.NoError(t, err)
		loaded, err := Load(dumped, reflect.TypeOf(petDetails{}), LoadOptions{Decamelize: true})
		require.NoError(t, err)
		assert.Equal(t, original, loaded)
	})
}
