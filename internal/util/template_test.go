package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTemplate_NoMarkers(t *testing.T) {
	got, err := RenderTemplate("plain text", map[string]any{"key": "value"})
	require.NoError(t, err)
	assert.Equal(t, "plain text", got)
}

func TestRenderTemplate_Substitution(t *testing.T) {
	got, err := RenderTemplate("Hello {{.name}}, tier {{.tier}}", map[string]any{
		"name": "Sam",
		"tier": "gold",
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello Sam, tier gold", got)
}

func TestRenderTemplate_MissingKeyIsZero(t *testing.T) {
	got, err := RenderTemplate("Hello {{.missing}}!", map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "Hello <no value>!", got)
}

func TestRenderTemplate_Funcs(t *testing.T) {
	got, err := RenderTemplate(`{{upper .name}} / {{default "guest" .nick}}`, map[string]any{
		"name": "sam",
	})
	require.NoError(t, err)
	assert.Equal(t, "SAM / guest", got)
}

func TestRenderTemplate_ParseError(t *testing.T) {
	_, err := RenderTemplate("{{.unterminated", map[string]any{})
	assert.Error(t, err)
}

func TestDeepCopyMap(t *testing.T) {
	src := map[string]any{
		"list":   []any{1, 2, map[string]any{"a": "b"}},
		"nested": map[string]any{"x": "y"},
	}

	dst := DeepCopyMap(src)
	require.Equal(t, src, dst)

	dst["nested"].(map[string]any)["x"] = "mutated"
	assert.Equal(t, "y", src["nested"].(map[string]any)["x"])

	dst["list"].([]any)[2].(map[string]any)["a"] = "mutated"
	assert.Equal(t, "b", src["list"].([]any)[2].(map[string]any)["a"])
}
