package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestLoadResourceFromMultiYAMLFile(t *testing.T) {
	yamlData := []byte(`
kind: Entity
metadata:
  name: meridian
spec:
  type: BUSINESS
  legalName: Meridian Freight Ltd
  email: ops@meridianfreight.example
---
kind: Entity
metadata:
  name: jdoe
spec:
  type: INDIVIDUAL
  firstName: Jane
  lastName: Doe
  email: jane@example.com
`)

	resources, err := LoadResourceFromMultiYAMLFile("dummy.yaml", yamlData)
	require.NoError(t, err)
	require.Len(t, resources[KindEntity], 2)

	first := resources[KindEntity][0]
	assert.Equal(t, "meridian", first.Metadata.Metadata["name"])
	assert.Equal(t, "BUSINESS", gjson.GetBytes(first.JSON, "spec.type").String())
	assert.Equal(t, "Meridian Freight Ltd", gjson.GetBytes(first.JSON, "spec.legalName").String())

	second := resources[KindEntity][1]
	assert.Equal(t, "jdoe", second.Metadata.Metadata["name"])
	assert.Equal(t, "INDIVIDUAL", gjson.GetBytes(second.JSON, "spec.type").String())
}

func TestLoadResourceRejectsUnknownKind(t *testing.T) {
	yamlData := []byte(`
kind: Widget
metadata:
  name: nope
`)
	_, err := LoadResourceFromMultiYAMLFile("dummy.yaml", yamlData)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid resource kind")
}

func TestGetResourceType(t *testing.T) {
	rt, err := GetResourceType(KindEntity)
	require.NoError(t, err)
	assert.Equal(t, "entities", rt)

	_, err = GetResourceType("Widget")
	assert.Error(t, err)
}

func TestMapResourceTypeToURL(t *testing.T) {
	tests := []struct {
		in   string
		out  string
		fail bool
	}{
		{in: "entity", out: "entities"},
		{in: "ent", out: "entities"},
		{in: "entities", out: "entities"},
		{in: "cert", out: "certificates"},
		{in: "certificates", out: "certificates"},
		{in: "sig", out: "signatures"},
		{in: "widgets", fail: true},
	}
	for _, tt := range tests {
		got, err := MapResourceTypeToURL(tt.in)
		if tt.fail {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.out, got)
	}
}
