package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/brnbtech770/blocktrust/internal/common/httpclient"
)

// getCmd represents the get command
var getCmd = &cobra.Command{
	Use:   "get RESOURCE_PATH [flags]",
	Short: "Get a resource by type and id",
	Long: `Get a resource by type and id. The format is <resourceType>/<id>.

Examples:
  # Get an entity
  trustctl get entities/9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d

  # Get a certificate
  trustctl get certificates/9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d

  # Get an entity in JSON format
  trustctl get entities/9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d -j`,
	Args: cobra.ExactArgs(1),
	RunE: getResourceValue,
}

// getResourceValue handles retrieving a resource by type and id
// It validates the input and formats the output in YAML or JSON
func getResourceValue(cmd *cobra.Command, args []string) error {
	// Split the argument into resource type and id
	parts := strings.SplitN(args[0], "/", 2)
	if len(parts) != 2 {
		return fmt.Errorf("invalid resource format. Expected <resourceType>/<id>")
	}

	resourceType := parts[0]
	resourceID := parts[1]

	// Map the resource type to its URL format
	urlResourceType, err := MapResourceTypeToURL(resourceType)
	if err != nil {
		return err
	}
	if urlResourceType == "signatures" {
		return fmt.Errorf("signatures are checked with \"trustctl verify\" or \"trustctl events\"")
	}

	client := httpclient.NewClient(GetConfig())

	response, err := client.GetResource(urlResourceType, resourceID, nil, "")
	if err != nil {
		return err
	}

	var responseData map[string]any
	if err := json.Unmarshal(response, &responseData); err != nil {
		return fmt.Errorf("failed to parse response: %v", err)
	}

	if jsonOutput {
		// Format as JSON with result and value
		output := map[string]any{
			"result": 1,
			"value":  responseData,
		}

		jsonBytes, err := json.MarshalIndent(output, "", "    ")
		if err != nil {
			return fmt.Errorf("failed to format JSON output: %v", err)
		}
		fmt.Println(string(jsonBytes))
	} else {
		// Convert to YAML
		yamlBytes, err := yaml.Marshal(responseData)
		if err != nil {
			return fmt.Errorf("failed to convert to YAML: %v", err)
		}
		fmt.Println(string(yamlBytes))
	}
	return nil
}

// init initializes the get command and adds it to the root command
func init() {
	rootCmd.AddCommand(getCmd)
}
