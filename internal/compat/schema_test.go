package compat

import (
	"testing"

	"github.com/duetapp/duet-backend/internal/domain"
	"github.com/stretchr/testify/assert"
)

func testSchema() *Schema {
	return NewSchema([]Module{
		{Key: "color", Options: []string{"red", "green", "blue"}},
		{Key: "pet", Options: []string{"dog", "cat"}},
	})
}

func TestSchemaEncode(t *testing.T) {
	schema := testSchema()
	assert.Equal(t, 5, schema.TotalOptions())

	t.Run("sets one bit per filled module", func(t *testing.T) {
		vec := schema.Encode(domain.ModuleSelections{"color": "green", "pet": "dog"})
		assert.Equal(t, []float64{0, 1, 0, 1, 0}, vec)
	})

	t.Run("unfilled modules stay zero", func(t *testing.T) {
		vec := schema.Encode(domain.ModuleSelections{"pet": "cat"})
		assert.Equal(t, []float64{0, 0, 0, 0, 1}, vec)
	})

	t.Run("unknown keys and options are ignored", func(t *testing.T) {
		vec := schema.Encode(domain.ModuleSelections{
			"color":  "purple",
			"zodiac": "leo",
			"pet":    "dog",
		})
		assert.Equal(t, []float64{0, 0, 0, 1, 0}, vec)
	})

	t.Run("layout is stable regardless of map order", func(t *testing.T) {
		a := schema.Encode(domain.ModuleSelections{"color": "red", "pet": "cat"})
		b := schema.Encode(domain.ModuleSelections{"pet": "cat", "color": "red"})
		assert.Equal(t, a, b)
	})
}

func TestSchemaHasOption(t *testing.T) {
	schema := testSchema()
	assert.True(t, schema.HasOption("color", "blue"))
	assert.False(t, schema.HasOption("color", "purple"))
	assert.False(t, schema.HasOption("zodiac", "leo"))
}

func TestDefaultSchemaWidth(t *testing.T) {
	schema := DefaultSchema()
	total := 0
	for _, m := range schema.Modules() {
		total += len(m.Options)
	}
	assert.Equal(t, total, schema.TotalOptions())
}
