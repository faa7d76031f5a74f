package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/brnbtech770/blocktrust/internal/common/httpclient"
)

var activateDays int

// activateCmd represents the activate command
var activateCmd = &cobra.Command{
	Use:   "activate CERTIFICATE_ID [flags]",
	Short: "Activate a pending certificate and mint its identity badge",
	Long: `Activate a pending certificate. Activation marks the entity's KYC as verified
and mints a reusable identity-badge signature for the entity.

Examples:
  # Activate a certificate with no expiry
  trustctl activate 9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d

  # Activate a certificate valid for one year
  trustctl activate 9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d --days 365`,
	Args: cobra.ExactArgs(1),
	RunE: runActivate,
}

func runActivate(cmd *cobra.Command, args []string) error {
	certID := args[0]

	reqBody, err := json.Marshal(map[string]any{
		"validityDays": activateDays,
	})
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	client := httpclient.NewClient(GetConfig())
	body, _, err := client.DoRequest(httpclient.RequestOptions{
		Method: "POST",
		Path:   "certificates/" + certID + "/activate",
		Body:   reqBody,
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		var responseData map[string]any
		if err := json.Unmarshal(body, &responseData); err != nil {
			return fmt.Errorf("failed to parse response: %v", err)
		}
		printJSON(responseData)
	} else {
		okLabel.Println("✓ Certificate activated")
		fmt.Printf("Badge jti:  %s\n", gjson.GetBytes(body, "badge.jti").String())
		fmt.Printf("Badge link: %s\n", gjson.GetBytes(body, "badge.verifyUrl").String())
	}
	return nil
}

func init() {
	activateCmd.Flags().IntVar(&activateDays, "days", 0, "Certificate validity in days (0 means no expiry)")
	rootCmd.AddCommand(activateCmd)
}
