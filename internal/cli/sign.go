package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"sigs.k8s.io/yaml"

	"github.com/brnbtech770/blocktrust/internal/common/httpclient"
)

var (
	signCertID   string
	signCtxType  string
	signValidity int64
)

// signCmd represents the sign command
var signCmd = &cobra.Command{
	Use:   "sign -f FILENAME [flags]",
	Short: "Sign a piece of content under a certificate",
	Long: `Sign a piece of content under an active certificate. The file content is the
signed payload; its context hash binds the resulting token to that exact content.

Examples:
  # Sign a document
  trustctl sign -f contract.pdf --cert 9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d --type document

  # Sign an invoice payload with a one-week validity
  trustctl sign -f invoice.json --cert 9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d --type invoice --validity 604800`,
	RunE: runSign,
}

func runSign(cmd *cobra.Command, args []string) error {
	filename, err := cmd.Flags().GetString("filename")
	if err != nil {
		return err
	}
	if filename == "" {
		return fmt.Errorf("filename is required")
	}

	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	reqBody, err := json.Marshal(map[string]any{
		"certificateId":   signCertID,
		"contextType":     signCtxType,
		"content":         string(content),
		"validitySeconds": signValidity,
	})
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	client := httpclient.NewClient(GetConfig())
	body, _, err := client.DoRequest(httpclient.RequestOptions{
		Method: "POST",
		Path:   "v2/sign",
		Body:   reqBody,
	})
	if err != nil {
		return err
	}

	return printSignatureResult(body)
}

// issueCmd represents the issue command
var issueCmd = &cobra.Command{
	Use:   "issue -f FILENAME [flags]",
	Short: "Issue an email signature from a context file",
	Long: `Issue an email signature under an active certificate. The YAML file holds the
email context fields (from, to, subject, date) that the signature is bound to.

Example:
  trustctl issue -f email.yaml --cert 9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d`,
	RunE: runIssue,
}

func runIssue(cmd *cobra.Command, args []string) error {
	filename, err := cmd.Flags().GetString("filename")
	if err != nil {
		return err
	}
	if filename == "" {
		return fmt.Errorf("filename is required")
	}

	context, err := loadContextFile(filename)
	if err != nil {
		return err
	}

	reqBody, err := json.Marshal(map[string]any{
		"certificateId":   signCertID,
		"context":         context,
		"validitySeconds": signValidity,
	})
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	client := httpclient.NewClient(GetConfig())
	body, _, err := client.DoRequest(httpclient.RequestOptions{
		Method: "POST",
		Path:   "v2/issue",
		Body:   reqBody,
	})
	if err != nil {
		return err
	}

	return printSignatureResult(body)
}

// loadContextFile reads a YAML or JSON context file into a generic map
func loadContextFile(filename string) (map[string]any, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	data = replaceTabsWithSpaces(data)
	data, err = ExpandManifestEnv(data)
	if err != nil {
		return nil, err
	}

	var context map[string]any
	if err := yaml.Unmarshal(data, &context); err != nil {
		return nil, fmt.Errorf("unable to parse context file: %w", err)
	}
	return context, nil
}

func printSignatureResult(body []byte) error {
	if jsonOutput {
		var responseData map[string]any
		if err := json.Unmarshal(body, &responseData); err != nil {
			return fmt.Errorf("failed to parse response: %v", err)
		}
		printJSON(responseData)
		return nil
	}

	okLabel.Println("✓ Signature issued")
	fmt.Printf("jti:        %s\n", gjson.GetBytes(body, "jti").String())
	fmt.Printf("Verify URL: %s\n", gjson.GetBytes(body, "verifyUrl").String())
	fmt.Printf("Token:      %s\n", gjson.GetBytes(body, "token").String())
	return nil
}

func init() {
	for _, cmd := range []*cobra.Command{signCmd, issueCmd} {
		cmd.Flags().StringP("filename", "f", "", "File holding the content or context")
		cmd.MarkFlagRequired("filename")
		cmd.Flags().StringVar(&signCertID, "cert", "", "Certificate id to sign under")
		cmd.MarkFlagRequired("cert")
		cmd.Flags().Int64Var(&signValidity, "validity", 0, "Signature validity in seconds (0 uses the server default)")
	}
	signCmd.Flags().StringVar(&signCtxType, "type", "document", "Context type of the content")

	rootCmd.AddCommand(signCmd)
	rootCmd.AddCommand(issueCmd)
}
