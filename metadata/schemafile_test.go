package metadata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSchemaYAML = `schemas:
  - name: model
    required: [type]
    optional: [notes]
    types:
      type: string
      accuracy: number
    rules:
      type:
        - enum: [ranker, embedder, classifier]
      accuracy:
        - min: 0
        - max: 1
      notes:
        - max_length: 64
  - name: dataset
    required: [source]
    types:
      source: string
    rules:
      source:
        - pattern: "^s3://"
`

func writeSchemaFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSchemaDefCompile(t *testing.T) {
	t.Run("enum rule", func(t *testing.T) {
		def := SchemaDef{
			Name:  "s",
			Rules: map[string][]RuleDef{"type": {{Enum: []string{"ranker"}}}},
		}
		schema, err := def.Compile()
		require.NoError(t, err)
		assert.True(t, schema.check(map[string]any{"type": "ranker"}))
		assert.False(t, schema.check(map[string]any{"type": "other"}))
	})

	t.Run("numeric bounds", func(t *testing.T) {
		low, high := 0.0, 1.0
		def := SchemaDef{
			Name: "s",
			Rules: map[string][]RuleDef{
				"accuracy": {{Min: &low}, {Max: &high}},
			},
		}
		schema, err := def.Compile()
		require.NoError(t, err)
		assert.True(t, schema.check(map[string]any{"accuracy": 0.93}))
		assert.False(t, schema.check(map[string]any{"accuracy": -0.1}))
		assert.False(t, schema.check(map[string]any{"accuracy": 1.5}))
		assert.False(t, schema.check(map[string]any{"accuracy": "high"}))
	})

	t.Run("length bounds", func(t *testing.T) {
		minLen, maxLen := 2, 4
		def := SchemaDef{
			Name: "s",
			Rules: map[string][]RuleDef{
				"code": {{MinLength: &minLen}, {MaxLength: &maxLen}},
			},
		}
		schema, err := def.Compile()
		require.NoError(t, err)
		assert.True(t, schema.check(map[string]any{"code": "abc"}))
		assert.False(t, schema.check(map[string]any{"code": "a"}))
		assert.False(t, schema.check(map[string]any{"code": "abcde"}))
	})

	t.Run("rejects unknown field type", func(t *testing.T) {
		def := SchemaDef{
			Name:  "s",
			Types: map[string]FieldType{"f": "decimal"},
		}
		_, err := def.Compile()
		assert.ErrorContains(t, err, "unknown field type")
	})

	t.Run("rejects empty rule", func(t *testing.T) {
		def := SchemaDef{
			Name:  "s",
			Rules: map[string][]RuleDef{"f": {{}}},
		}
		_, err := def.Compile()
		assert.ErrorContains(t, err, "empty rule")
	})

	t.Run("rejects bad pattern", func(t *testing.T) {
		def := SchemaDef{
			Name:  "s",
			Rules: map[string][]RuleDef{"f": {{Pattern: "("}}},
		}
		_, err := def.Compile()
		assert.ErrorContains(t, err, "invalid pattern")
	})

	t.Run("rejects missing name", func(t *testing.T) {
		_, err := SchemaDef{}.Compile()
		assert.ErrorContains(t, err, "missing name")
	})
}

func TestLoadSchemaFile(t *testing.T) {
	dir := t.TempDir()
	path := writeSchemaFile(t, dir, "schemas.yaml", sampleSchemaYAML)

	schemas, err := LoadSchemaFile(path)
	require.NoError(t, err)
	require.Len(t, schemas, 2)

	model := schemas["model"]
	assert.True(t, model.check(map[string]any{
		"type":     "embedder",
		"accuracy": 0.88,
	}))
	assert.False(t, model.check(map[string]any{"type": "unknown-kind"}))

	dataset := schemas["dataset"]
	assert.True(t, dataset.check(map[string]any{"source": "s3://bucket/train"}))
	assert.False(t, dataset.check(map[string]any{"source": "file:///tmp/x"}))
}

func TestValidatorLoadDir(t *testing.T) {
	t.Run("loads sorted yaml files", func(t *testing.T) {
		dir := t.TempDir()
		writeSchemaFile(t, dir, "10-base.yaml", `schemas:
  - name: base
    required: [kind]
`)
		writeSchemaFile(t, dir, "20-override.yml", `schemas:
  - name: base
    required: [kind, owner]
`)
		writeSchemaFile(t, dir, "ignore.txt", "not yaml")

		v := NewValidator()
		count, err := v.LoadDir(dir)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		// The later file wins the name collision.
		ok, err := v.Validate("base", map[string]any{"kind": "model"})
		require.NoError(t, err)
		assert.False(t, ok)
		ok, err = v.Validate("base", map[string]any{"kind": "model", "owner": "search"})
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("missing directory errors", func(t *testing.T) {
		v := NewValidator()
		_, err := v.LoadDir(filepath.Join(t.TempDir(), "absent"))
		assert.Error(t, err)
	})

	t.Run("malformed file errors", func(t *testing.T) {
		dir := t.TempDir()
		writeSchemaFile(t, dir, "bad.yaml", "schemas: [not a mapping")
		v := NewValidator()
		_, err := v.LoadDir(dir)
		assert.Error(t, err)
	})
}
