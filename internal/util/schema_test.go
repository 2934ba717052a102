package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type weatherQuery struct {
	Location string  `json:"location" description:"City name"`
	Unit     *string `json:"unit,omitempty" description:"Temperature unit"`
	Days     int     `json:"days" description:"Forecast days"`
}

func TestCreateSchema(t *testing.T) {
	schema := CreateSchema(weatherQuery{})

	assert.Equal(t, "object", schema["type"])

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	require.Contains(t, props, "location")
	require.Contains(t, props, "unit")
	require.Contains(t, props, "days")

	location, ok := props["location"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "string", location["type"])
	assert.Equal(t, "City name", location["description"])

	days, ok := props["days"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "integer", days["type"])

	required, ok := schema["required"].([]string)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"location", "days"}, required)
}

func TestCreateSchema_Pointer(t *testing.T) {
	schema := CreateSchema(&weatherQuery{})
	assert.Equal(t, "object", schema["type"])
}

func TestValidateParameters_MissingRequired(t *testing.T) {
	schema := CreateSchema(weatherQuery{})

	err := ValidateParameters(map[string]any{"days": 3}, schema)
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "location", verr.Field)
}

func TestValidateParameters_WrongType(t *testing.T) {
	schema := CreateSchema(weatherQuery{})

	err := ValidateParameters(map[string]any{"location": 42, "days": 3}, schema)
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "location", verr.Field)
}

func TestValidateParameters_OK(t *testing.T) {
	schema := CreateSchema(weatherQuery{})

	// JSON numbers always decode as float64.
	err := ValidateParameters(map[string]any{"location": "Berlin", "days": float64(3)}, schema)
	assert.NoError(t, err)
}

func TestValidateParameters_RequiredFromJSON(t *testing.T) {
	// A schema round-tripped through JSON carries required as []any.
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name": map[string]any{"type": "string"},
		},
		"required": []any{"name"},
	}

	err := ValidateParameters(map[string]any{}, schema)
	require.Error(t, err)

	err = ValidateParameters(map[string]any{"name": "x"}, schema)
	assert.NoError(t, err)
}
