package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		opts, err := OptionsFromEnv()
		require.NoError(t, err)
		assert.False(t, opts.ConvertCasing)
		assert.Equal(t, PreferJSONCodec, opts.Preference)
	})

	t.Run("reads environment", func(t *testing.T) {
		t.Setenv("MUXSCHEMA_CONVERT_CASING", "true")
		t.Setenv("MUXSCHEMA_PREFERENCE", "std-json")

		opts, err := OptionsFromEnv()
		require.NoError(t, err)
		assert.True(t, opts.ConvertCasing)
		assert.Equal(t, PreferStdCodec, opts.Preference)
	})
}
