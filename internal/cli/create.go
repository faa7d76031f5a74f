package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/brnbtech770/blocktrust/internal/common/httpclient"
)

var (
	// Create command flags
	ignoreErrors bool
)

// createCmd represents the create command
var createCmd = &cobra.Command{
	Use:   "create -f FILENAME [flags]",
	Short: "Create a resource from a file",
	Long: `Create a resource from a file. The resource type is determined by the 'kind' field in the YAML file.
Supported resource types include:
  - Entities

Each onboarded entity is created with a pending trust certificate. Activate the
certificate with "trustctl activate" to mint the entity's identity badge.

Examples:
  # Onboard a new entity
  trustctl create -f entity.yaml

  # Onboard several entities from one file, continuing past failures
  trustctl create -f entities.yaml -i`,
	RunE: createResource,
}

// createResource handles the creation of a resource from a file
// It validates the input, loads the resource, and sends it to the server
func createResource(cmd *cobra.Command, args []string) error {
	filename, err := cmd.Flags().GetString("filename")
	if err != nil {
		return err
	}
	if filename == "" {
		return fmt.Errorf("filename is required")
	}

	resources, err := LoadResourceFromMultiYAMLFile(filename)
	if err != nil {
		return err
	}

	orderedResourceList := []string{
		KindEntity,
	}

	var statusValues []map[string]any
	defer func() {
		if len(statusValues) > 0 {
			if jsonOutput {
				printJSON(statusValues)
			} else {
				for _, status := range statusValues {
					created, exists := status["created"]
					if !exists {
						created = false
					}
					location, ok := status["location"].(string)
					if !ok {
						location = ""
					}
					if created.(bool) {
						okLabel.Fprintf(os.Stdout, "[OK] ")
						fmt.Fprintf(os.Stdout, "Created: %s (certificate: %s)\n", location, status["certificate_id"])
					} else {
						if !ignoreErrors {
							errorLabel.Fprintf(os.Stderr, "[ERROR] ")
							fmt.Fprintf(os.Stderr, "%s: %s: %s\n", status["kind"], status["name"], status["error"])
						} else {
							errorLabel.Fprintf(os.Stdout, "[ERROR] ")
							fmt.Fprintf(os.Stdout, "%s: %s: %s\n", status["kind"], status["name"], status["error"])
						}
					}
				}
			}
		}
	}()

	for _, kind := range orderedResourceList {
		resources, ok := resources[kind]
		if !ok {
			continue
		}
		for _, resource := range resources {
			kv, err := handleCreateResource(resource.Metadata, resource.JSON)
			if err != nil {
				statusValues = append(statusValues, map[string]any{
					"kind":    resource.Metadata.Kind,
					"name":    resource.Metadata.Metadata["name"],
					"created": false,
					"error":   err.Error(),
				})
				if !ignoreErrors {
					return ErrAlreadyHandled
				}
				continue
			}
			statusValues = append(statusValues, kv)
		}
	}
	return nil
}

func handleCreateResource(resource ResourceMetadata, jsonData []byte) (map[string]any, error) {
	resourceType, err := GetResourceType(resource.Kind)
	if err != nil {
		return nil, err
	}

	// The API takes the spec body; kind and metadata are CLI-side wrapping.
	spec := gjson.GetBytes(jsonData, "spec")
	if !spec.Exists() {
		return nil, fmt.Errorf("resource %s has no spec", resource.Metadata["name"])
	}

	client := httpclient.NewClient(GetConfig())

	body, location, err := client.CreateResource(resourceType, []byte(spec.Raw), nil)
	if err != nil {
		return nil, err
	}

	kv := map[string]any{
		"kind":           resource.Kind,
		"created":        true,
		"location":       location,
		"name":           resource.Metadata["name"],
		"entity_id":      gjson.GetBytes(body, "entity.entityId").String(),
		"certificate_id": gjson.GetBytes(body, "certificate.certificateId").String(),
	}
	return kv, nil
}

// init initializes the create command with its flags and adds it to the root command
func init() {
	// Add flags to the create command
	createCmd.Flags().StringP("filename", "f", "", "Filename to use to create the resource")
	createCmd.MarkFlagRequired("filename")

	createCmd.Flags().BoolVarP(&ignoreErrors, "ignore-errors", "i", false, "Ignore errors and continue with the next resource")

	// Add the create command to the root command
	rootCmd.AddCommand(createCmd)
}
