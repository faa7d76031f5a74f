package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brnbtech770/blocktrust/internal/common/httpclient"
)

// StatusResponse represents the response from the /version endpoint
type StatusResponse struct {
	ServerVersion string `json:"serverVersion"`
	ApiVersion    string `json:"apiVersion"`
}

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Get server status information",
	Long: `Get server status information. This command returns the server build version
and the API version it serves.

Examples:
  # Get server status
  trustctl status

  # Get server status in JSON format
  trustctl status -j`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	// Status works without credentials, but still needs a server configured.
	if err := LoadConfig(configFile); err != nil {
		return fmt.Errorf("unable to load config: %w", err)
	}

	client := httpclient.NewClient(GetConfig())

	body, _, err := client.DoRequest(httpclient.RequestOptions{
		Method: "GET",
		Path:   "version",
	})
	if err != nil {
		return err
	}

	var status StatusResponse
	if err := json.Unmarshal(body, &status); err != nil {
		return fmt.Errorf("failed to parse status response: %v", err)
	}

	if jsonOutput {
		printJSON(status)
	} else {
		fmt.Printf("Server version: %s\n", status.ServerVersion)
		fmt.Printf("API version:    %s\n", status.ApiVersion)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
