package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/brnbtech770/blocktrust/internal/common/httpclient"
)

var (
	// List command flags
	listEntityID string
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list RESOURCE_TYPE [flags]",
	Short: "List resources of a specific type",
	Long: `List resources of a specific type. Supported resource types include:
  - entities
  - certificates

Examples:
  # List all entities
  trustctl list entities

  # List certificates of an entity
  trustctl list certificates --entity 9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d

  # List entities in JSON format
  trustctl list entities -j`,
	Args: cobra.ExactArgs(1),
	RunE: listResources,
}

// listResources handles listing resources of a specific type
// It retrieves the resources and formats the output based on the resource type
func listResources(cmd *cobra.Command, args []string) error {
	resourceType := args[0]

	// Map the resource type to its URL format
	urlResourceType, err := MapResourceTypeToURL(resourceType)
	if err != nil {
		return err
	}

	client := httpclient.NewClient(GetConfig())

	var response []byte
	switch urlResourceType {
	case "entities":
		response, err = client.ListResources("entities", nil)
	case "certificates":
		if listEntityID == "" {
			return fmt.Errorf("certificates are listed per entity. Use --entity <id>")
		}
		response, err = client.ListResources("entities/"+listEntityID+"/certificates", nil)
	default:
		return fmt.Errorf("cannot list resource type: %s", resourceType)
	}
	if err != nil {
		return err
	}

	return printResourceList(urlResourceType, response)
}

// init initializes the list command with its flags and adds it to the root command
func init() {
	rootCmd.AddCommand(listCmd)

	// Add flags
	listCmd.Flags().StringVarP(&listEntityID, "entity", "e", "", "Entity id")
}

// printResourceList formats and prints resources in either JSON or human-readable format
func printResourceList(resourceType string, response []byte) error {
	if jsonOutput {
		return printResourceListJSON(response)
	}
	return printResourceListHumanReadable(resourceType, response)
}

// printResourceListJSON wraps the server response in a result envelope
func printResourceListJSON(response []byte) error {
	var responseData []map[string]any
	if err := json.Unmarshal(response, &responseData); err != nil {
		return fmt.Errorf("failed to parse response: %v", err)
	}

	output := map[string]any{
		"result": 1,
		"value":  responseData,
	}

	jsonBytes, err := json.MarshalIndent(output, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to format JSON output: %v", err)
	}
	fmt.Println(string(jsonBytes))
	return nil
}

// printResourceListHumanReadable prints one line per resource
func printResourceListHumanReadable(resourceType string, response []byte) error {
	fmt.Printf("%s:\n", cases.Title(language.English).String(resourceType))

	for _, item := range gjson.ParseBytes(response).Array() {
		switch resourceType {
		case "entities":
			fmt.Printf("- %s  %s  [%s/%s]\n",
				item.Get("entityId").String(),
				item.Get("displayName").String(),
				item.Get("validationLevel").String(),
				item.Get("kycStatus").String())
		case "certificates":
			fmt.Printf("- %s  %s  [%s]\n",
				item.Get("certificateId").String(),
				item.Get("status").String(),
				item.Get("level").String())
		}
	}
	return nil
}
