package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseManifest(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name     string
		content  string
		expected []map[string]any
		wantErr  bool
	}{
		{
			name: "two entity documents",
			content: `---
kind: Entity
metadata:
  name: acme
spec:
  type: BUSINESS
---
kind: Entity
metadata:
  name: meridian
spec:
  type: BUSINESS`,
			expected: []map[string]any{
				{
					"kind":     "Entity",
					"metadata": map[string]any{"name": "acme"},
					"spec":     map[string]any{"type": "BUSINESS"},
				},
				{
					"kind":     "Entity",
					"metadata": map[string]any{"name": "meridian"},
					"spec":     map[string]any{"type": "BUSINESS"},
				},
			},
		},
		{
			name: "leading separator is optional",
			content: `kind: Entity
metadata:
  name: acme
---
kind: Entity
metadata:
  name: meridian`,
			expected: []map[string]any{
				{"kind": "Entity", "metadata": map[string]any{"name": "acme"}},
				{"kind": "Entity", "metadata": map[string]any{"name": "meridian"}},
			},
		},
		{
			name: "single document with nested spec",
			content: `kind: Entity
spec:
  type: INDIVIDUAL
  legalName: Dana Osei
  website: https://osei.example`,
			expected: []map[string]any{
				{
					"kind": "Entity",
					"spec": map[string]any{
						"type":      "INDIVIDUAL",
						"legalName": "Dana Osei",
						"website":   "https://osei.example",
					},
				},
			},
		},
		{
			name: "empty documents between separators are dropped",
			content: `---
kind: Entity
---
---
kind: Entity`,
			expected: []map[string]any{
				{"kind": "Entity"},
				{"kind": "Entity"},
			},
		},
		{
			name:     "empty file",
			content:  ``,
			expected: []map[string]any{},
		},
		{
			name:     "only whitespace",
			content:  "   \n\t  \n",
			expected: []map[string]any{},
		},
		{
			name:     "only separators",
			content:  "---\n---\n---",
			expected: []map[string]any{},
		},
		{
			name: "one broken document fails the whole manifest",
			content: `---
kind: Entity
---
kind: Entity: with: stray: colons
---
kind: Entity`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpFile := filepath.Join(tmpDir, "manifest.yaml")
			require.NoError(t, os.WriteFile(tmpFile, []byte(tt.content), 0644))

			result, err := ParseManifest(tmpFile)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, result)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}

	t.Run("missing manifest file", func(t *testing.T) {
		result, err := ParseManifest(filepath.Join(tmpDir, "absent.yaml"))
		assert.Error(t, err)
		assert.Nil(t, result)
	})
}

func TestParseManifestExpandsEnv(t *testing.T) {
	t.Setenv("BLOCKTRUST_LEGAL_NAME", "Acme Corp SA")

	tmpFile := filepath.Join(t.TempDir(), "entity.yaml")
	content := "kind: Entity\nspec:\n  legalName: {{ .ENV.BLOCKTRUST_LEGAL_NAME }}"
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

	result, err := ParseManifest(tmpFile)
	require.NoError(t, err)
	require.Len(t, result, 1)
	spec, ok := result[0]["spec"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Acme Corp SA", spec["legalName"])
}
