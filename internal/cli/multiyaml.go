package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseManifest reads a trustctl manifest file and returns its YAML
// documents. A manifest may hold several Entity documents separated by
// `---`; env placeholders are expanded before decoding.
func ParseManifest(filename string) ([]map[string]any, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	data = replaceTabsWithSpaces(data)

	data, err = ExpandManifestEnv(data)
	if err != nil {
		return nil, err
	}

	return ParseManifestBytes(data)
}

// ParseManifestBytes decodes a multi-document YAML stream into one map per
// document. Empty documents and stray `---` separators are dropped rather
// than reported, so a trailing separator does not produce a phantom entity.
func ParseManifestBytes(data []byte) ([]map[string]any, error) {
	content := strings.TrimSpace(string(data))
	if len(content) == 0 || strings.Trim(content, "- \n\t") == "" {
		return []map[string]any{}, nil
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	var docs []map[string]any
	for {
		var doc map[string]any
		if err := decoder.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to decode YAML: %w", err)
		}
		if len(doc) > 0 {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}
