package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandManifestEnv(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		envVars  map[string]string
		expected string
		wantErr  string
	}{
		{
			name:     "registration email from the environment",
			input:    "email: {{ .ENV.BLOCKTRUST_REG_EMAIL }}",
			envVars:  map[string]string{"BLOCKTRUST_REG_EMAIL": "compliance@acme.example"},
			expected: "email: compliance@acme.example",
		},
		{
			name: "several placeholders in one entity spec",
			input: "spec:\n" +
				"  legalName: {{ .ENV.BLOCKTRUST_LEGAL_NAME }}\n" +
				"  taxId: {{ .ENV.BLOCKTRUST_TAX_ID }}",
			envVars: map[string]string{
				"BLOCKTRUST_LEGAL_NAME": "Acme Corp SA",
				"BLOCKTRUST_TAX_ID":     "FR-8842-117",
			},
			expected: "spec:\n  legalName: Acme Corp SA\n  taxId: FR-8842-117",
		},
		{
			name:     "values with special characters survive expansion",
			input:    "website: {{ .ENV.BLOCKTRUST_WEBSITE }}",
			envVars:  map[string]string{"BLOCKTRUST_WEBSITE": "https://acme.example/?ref=kyc&lang=fr"},
			expected: "website: https://acme.example/?ref=kyc&lang=fr",
		},
		{
			name:     "manifest without placeholders passes through",
			input:    "kind: Entity\nmetadata:\n  name: acme",
			expected: "kind: Entity\nmetadata:\n  name: acme",
		},
		{
			name:     "empty manifest stays empty",
			input:    "",
			expected: "",
		},
		{
			name:    "unset variable is an error, not a blank",
			input:   "taxId: {{ .ENV.BLOCKTRUST_UNSET_TAX_ID }}",
			wantErr: "missing environment variable: BLOCKTRUST_UNSET_TAX_ID",
		},
		{
			name:    "unterminated placeholder",
			input:   "email: {{ .ENV.BLOCKTRUST_REG_EMAIL }",
			envVars: map[string]string{"BLOCKTRUST_REG_EMAIL": "compliance@acme.example"},
			wantErr: "template",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			result, err := ExpandManifestEnv([]byte(tt.input))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestExpandManifestEnvFromDotEnv(t *testing.T) {
	tmpDir := t.TempDir()
	envFile := "BLOCKTRUST_REG_EMAIL=ops@meridianfreight.example\n" +
		"BLOCKTRUST_LEGAL_NAME=Meridian Freight Ltd\n"
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".env"), []byte(envFile), 0644))

	originalWd, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(originalWd)
	require.NoError(t, os.Chdir(tmpDir))

	input := "legalName: {{ .ENV.BLOCKTRUST_LEGAL_NAME }}\n" +
		"email: {{ .ENV.BLOCKTRUST_REG_EMAIL }}"
	result, err := ExpandManifestEnv([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, "legalName: Meridian Freight Ltd\nemail: ops@meridianfreight.example",
		string(result))
}

func TestExpandManifestEnvShellWinsOverDotEnv(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".env"),
		[]byte("BLOCKTRUST_REG_EMAIL=stale@acme.example\n"), 0644))

	originalWd, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(originalWd)
	require.NoError(t, os.Chdir(tmpDir))

	t.Setenv("BLOCKTRUST_REG_EMAIL", "current@acme.example")

	result, err := ExpandManifestEnv([]byte("email: {{ .ENV.BLOCKTRUST_REG_EMAIL }}"))
	require.NoError(t, err)
	assert.Equal(t, "email: current@acme.example", string(result))
}

func TestExpandManifestEnvMissingDotEnvIsFine(t *testing.T) {
	originalWd, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(originalWd)
	require.NoError(t, os.Chdir(t.TempDir()))

	t.Setenv("BLOCKTRUST_TAX_ID", "US-77-4411889")
	result, err := ExpandManifestEnv([]byte("taxId: {{ .ENV.BLOCKTRUST_TAX_ID }}"))
	require.NoError(t, err)
	assert.Equal(t, "taxId: US-77-4411889", string(result))
}
