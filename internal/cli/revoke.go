package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/brnbtech770/blocktrust/internal/common/httpclient"
)

var revokeReason string

// revokeCmd represents the revoke command
var revokeCmd = &cobra.Command{
	Use:   "revoke RESOURCE_PATH [flags]",
	Short: "Revoke a certificate or a signature",
	Long: `Revoke a certificate or a signature. The format is <resourceType>/<id>.
Revoking a certificate also revokes every signature issued under it.

Examples:
  # Revoke a certificate
  trustctl revoke certificates/9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d --reason "entity offboarded"

  # Revoke a single signature
  trustctl revoke signatures/3F2B8C... --reason "sender compromise"`,
	Args: cobra.ExactArgs(1),
	RunE: runRevoke,
}

func runRevoke(cmd *cobra.Command, args []string) error {
	parts := strings.SplitN(args[0], "/", 2)
	if len(parts) != 2 {
		return fmt.Errorf("invalid resource format. Expected <resourceType>/<id>")
	}

	urlResourceType, err := MapResourceTypeToURL(parts[0])
	if err != nil {
		return err
	}
	if urlResourceType == "entities" {
		return fmt.Errorf("entities are not revoked directly. Revoke the entity's certificate instead")
	}

	reqBody, err := json.Marshal(map[string]string{
		"reason": revokeReason,
	})
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	client := httpclient.NewClient(GetConfig())
	_, _, err = client.DoRequest(httpclient.RequestOptions{
		Method: "POST",
		Path:   urlResourceType + "/" + parts[1] + "/revoke",
		Body:   reqBody,
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(map[string]any{"result": 1, "revoked": args[0]})
	} else {
		okLabel.Println("✓ Revoked " + args[0])
	}
	return nil
}

func init() {
	revokeCmd.Flags().StringVar(&revokeReason, "reason", "", "Reason for the revocation")
	rootCmd.AddCommand(revokeCmd)
}
