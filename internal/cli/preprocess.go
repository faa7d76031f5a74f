package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"github.com/joho/godotenv"
)

// templateEnv is the data exposed to manifest templates as {{ .ENV.NAME }}.
type templateEnv struct {
	ENV map[string]string
}

var missingEnvKey = regexp.MustCompile(`map has no entry for key "(.*?)"`)

// ExpandManifestEnv expands {{ .ENV.NAME }} placeholders in a trustctl
// manifest from the process environment, topped up from a .env file in the
// working directory when one exists. Entity manifests reference registration
// emails and tax ids this way instead of committing them. An unset variable
// is an error, not an empty string.
func ExpandManifestEnv(raw []byte) ([]byte, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	_ = godotenv.Load(filepath.Join(cwd, ".env")) // absent .env is fine

	env := map[string]string{}
	for _, kv := range os.Environ() {
		if name, value, ok := strings.Cut(kv, "="); ok {
			env[name] = value
		}
	}

	tmpl, err := template.New("manifest").Option("missingkey=error").Parse(string(raw))
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := tmpl.Execute(&out, templateEnv{ENV: env}); err != nil {
		if m := missingEnvKey.FindStringSubmatch(err.Error()); len(m) == 2 {
			return nil, fmt.Errorf("missing environment variable: %s (set it in your shell or .env file)", m[1])
		}
		return nil, fmt.Errorf("template error: %w", err)
	}
	return out.Bytes(), nil
}
