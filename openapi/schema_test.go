package openapi

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalvas/muxschema/model"
)

type ownerInfo struct {
	FullName string `json:"full_name"`
}

type petProfile struct {
	Name     string    `json:"name"`
	Nickname *string   `json:"nickname,omitempty"`
	Age      int       `json:"age,omitempty" openapi:"minimum=0,description=Age in years"`
	Slug     string    `json:"slug" schema:"computed"`
	Owner    ownerInfo `json:"owner"`
}

type untaggedShape struct {
	PetName  string
	MaxCount int `json:"max_count,omitempty"`
}

type csvPoint struct {
	X, Y int
}

func (p csvPoint) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", fmt.Sprintf("%d,%d", p.X, p.Y))), nil
}

func (p *csvPoint) UnmarshalJSON(data []byte) error {
	_, err := fmt.Sscanf(string(data), `"%d,%d"`, &p.X, &p.Y)
	return err
}

type sampledUser struct {
	ID string `json:"id"`
}

func (u sampledUser) OpenAPIExample() any {
	return sampledUser{ID: "550e8400-e29b-41d4-a716-446655440000"}
}

type mixedBag struct {
	CreatedAt time.Time      `json:"created_at"`
	Payload   []byte         `json:"payload,omitempty"`
	Counts    map[string]int `json:"counts,omitempty"`
	Total     int            `json:"total,string"`
	Limit     int            `json:"limit,omitempty" schema:"default=20"`
}

func TestGenerateNamedStruct(t *testing.T) {
	gen := NewGenerator(ModeValidation)

	schema, err := gen.Generate(reflect.TypeOf(petProfile{}))
	require.NoError(t, err)
	require.NotNil(t, schema)

	t.Run("returns ref into the pool", func(t *testing.T) {
		assert.Equal(t, "#/components/schemas/PetProfile", schema.Ref)
		require.Contains(t, gen.Schemas(), "PetProfile")
	})

	pooled := gen.Schemas()["PetProfile"]

	t.Run("object with wire-named properties", func(t *testing.T) {
		assert.Equal(t, []string{"object"}, pooled.Type.Values())
		assert.Contains(t, pooled.Properties, "name")
		assert.Contains(t, pooled.Properties, "nickname")
		assert.Contains(t, pooled.Properties, "age")
	})

	t.Run("required follows field metadata", func(t *testing.T) {
		assert.Contains(t, pooled.Required, "name")
		assert.Contains(t, pooled.Required, "owner")
		assert.NotContains(t, pooled.Required, "nickname")
		assert.NotContains(t, pooled.Required, "age")
	})

	t.Run("pointer field is nullable", func(t *testing.T) {
		assert.Equal(t, []string{"string", "null"}, pooled.Properties["nickname"].Type.Values())
	})

	t.Run("openapi tag constraints", func(t *testing.T) {
		age := pooled.Properties["age"]
		require.NotNil(t, age.Minimum)
		assert.Equal(t, float64(0), *age.Minimum)
		assert.Equal(t, "Age in years", age.Description)
	})

	t.Run("nested named struct becomes its own component", func(t *testing.T) {
		assert.Equal(t, "#/components/schemas/OwnerInfo", pooled.Properties["owner"].Ref)
		require.Contains(t, gen.Schemas(), "OwnerInfo")
		assert.Contains(t, gen.Schemas()["OwnerInfo"].Properties, "full_name")
	})

	t.Run("repeated generation reuses the pool entry", func(t *testing.T) {
		again, err := gen.Generate(reflect.TypeOf(petProfile{}))
		require.NoError(t, err)
		assert.Equal(t, schema.Ref, again.Ref)
		assert.Len(t, gen.Schemas(), 2)
	})
}

func TestGenerateModes(t *testing.T) {
	t.Run("validation omits computed fields", func(t *testing.T) {
		gen := NewGenerator(ModeValidation)
		_, err := gen.Generate(reflect.TypeOf(petProfile{}))
		require.NoError(t, err)
		assert.NotContains(t, gen.Schemas()["PetProfile"].Properties, "slug")
	})

	t.Run("serialization marks computed fields readOnly", func(t *testing.T) {
		gen := NewGenerator(ModeSerialization)
		_, err := gen.Generate(reflect.TypeOf(petProfile{}))
		require.NoError(t, err)
		slug := gen.Schemas()["PetProfile"].Properties["slug"]
		require.NotNil(t, slug)
		assert.True(t, slug.ReadOnly)
	})
}

func TestGenerateUntaggedFields(t *testing.T) {
	gen := NewGenerator(ModeValidation)
	_, err := gen.Generate(reflect.TypeOf(untaggedShape{}))
	require.NoError(t, err)

	pooled := gen.Schemas()["UntaggedShape"]
	assert.Contains(t, pooled.Properties, "pet_name")
	assert.Contains(t, pooled.Properties, "max_count")
	assert.Equal(t, []string{"pet_name"}, pooled.Required)
}

func TestGenerateSpecialTypes(t *testing.T) {
	gen := NewGenerator(ModeValidation)
	_, err := gen.Generate(reflect.TypeOf(mixedBag{}))
	require.NoError(t, err)

	pooled := gen.Schemas()["MixedBag"]

	t.Run("time is date-time string", func(t *testing.T) {
		created := pooled.Properties["created_at"]
		assert.Equal(t, []string{"string"}, created.Type.Values())
		assert.Equal(t, "date-time", created.Format)
	})

	t.Run("byte slice is base64 string", func(t *testing.T) {
		payload := pooled.Properties["payload"]
		assert.Equal(t, []string{"string"}, payload.Type.Values())
		assert.Equal(t, "byte", payload.Format)
	})

	t.Run("string-keyed map uses additionalProperties", func(t *testing.T) {
		counts := pooled.Properties["counts"]
		assert.Equal(t, []string{"object"}, counts.Type.Values())
		require.NotNil(t, counts.AdditionalProperties)
		assert.Equal(t, []string{"integer"}, counts.AdditionalProperties.Type.Values())
	})

	t.Run("json string option overrides type", func(t *testing.T) {
		assert.Equal(t, []string{"string"}, pooled.Properties["total"].Type.Values())
	})

	t.Run("declared default surfaces", func(t *testing.T) {
		assert.Equal(t, int64(20), pooled.Properties["limit"].Default)
	})
}

func TestGenerateWireStruct(t *testing.T) {
	gen := NewGenerator(ModeValidation)

	schema, err := gen.Generate(reflect.TypeOf(csvPoint{}))
	require.NoError(t, err)

	// The codec owns the wire shape, so nothing can be promised about it.
	assert.Equal(t, &Schema{}, schema)
	assert.Empty(t, gen.Schemas())
}

func TestGenerateExample(t *testing.T) {
	gen := NewGenerator(ModeSerialization)
	_, err := gen.Generate(reflect.TypeOf(sampledUser{}))
	require.NoError(t, err)

	pooled := gen.Schemas()["SampledUser"]
	require.NotNil(t, pooled.Example)
	assert.Equal(t, sampledUser{ID: "550e8400-e29b-41d4-a716-446655440000"}, pooled.Example)
}

func TestGenerateUnsupported(t *testing.T) {
	gen := NewGenerator(ModeValidation)

	_, err := gen.Generate(reflect.TypeOf(0))
	require.Error(t, err)

	var buildErr *SchemaBuildError
	require.ErrorAs(t, err, &buildErr)
	assert.ErrorIs(t, err, model.ErrUnsupportedModel)
}

func TestGeneratorPairSharedNames(t *testing.T) {
	valGen, serGen := NewGeneratorPair()

	_, err := valGen.Generate(reflect.TypeOf(ownerInfo{}))
	require.NoError(t, err)
	_, err = serGen.Generate(reflect.TypeOf(ownerInfo{}))
	require.NoError(t, err)

	t.Run("same type keeps one name on both sides", func(t *testing.T) {
		assert.Contains(t, valGen.Schemas(), "OwnerInfo")
		assert.Contains(t, serGen.Schemas(), "OwnerInfo")
	})

	t.Run("each side keeps its own pool", func(t *testing.T) {
		assert.Len(t, valGen.Schemas(), 1)
		assert.Len(t, serGen.Schemas(), 1)
	})
}

func TestTypeSchema(t *testing.T) {
	gen := NewGenerator(ModeValidation)

	t.Run("scalar", func(t *testing.T) {
		schema := gen.TypeSchema(reflect.TypeOf(""))
		assert.Equal(t, []string{"string"}, schema.Type.Values())
	})

	t.Run("slice of scalars", func(t *testing.T) {
		schema := gen.TypeSchema(reflect.TypeOf([]int{}))
		assert.Equal(t, []string{"array"}, schema.Type.Values())
		require.NotNil(t, schema.Items)
		assert.Equal(t, []string{"integer"}, schema.Items.Type.Values())
	})

	t.Run("pointer scalar is nullable", func(t *testing.T) {
		schema := gen.TypeSchema(reflect.TypeOf((*bool)(nil)))
		assert.Equal(t, []string{"boolean", "null"}, schema.Type.Values())
	})
}
