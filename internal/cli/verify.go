package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/brnbtech770/blocktrust/internal/common/httpclient"
)

var (
	verifyHash    string
	verifyToken   string
	verifyCtxType string
	verifyContent string
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify [JTI] [flags]",
	Short: "Check a signature and print the verdict",
	Long: `Check a signature and print the verdict. With only a jti and hash prefix this
performs the badge check a verification link resolves to. With a context file
the server recomputes the context hash and compares it against the stored one.
Holders of the issued token can verify with --token instead of a jti.

Examples:
  # Check a badge link
  trustctl verify 3F2B8C1D9A4E7F02 --hash a1b2c3d4e5f60718

  # Re-verify an email signature against its context
  trustctl verify 3F2B8C1D9A4E7F02 -f email.yaml --type email

  # Verify by token alone
  trustctl verify --token "$TOKEN" -f email.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	jti := ""
	if len(args) == 1 {
		jti = args[0]
	}
	if jti == "" && verifyToken == "" {
		return fmt.Errorf("either a JTI argument or --token is required")
	}

	filename, err := cmd.Flags().GetString("filename")
	if err != nil {
		return err
	}

	client := httpclient.NewClient(GetConfig())

	var body []byte
	if filename != "" || verifyToken != "" {
		var context map[string]any
		if filename != "" {
			context, err = loadContextFile(filename)
			if err != nil {
				return err
			}
		}
		reqBody, err := json.Marshal(map[string]any{
			"jti":         jti,
			"token":       verifyToken,
			"hash":        verifyHash,
			"contextType": verifyCtxType,
			"context":     context,
			"content":     verifyContent,
		})
		if err != nil {
			return fmt.Errorf("failed to build request: %w", err)
		}
		body, _, err = client.DoRequest(httpclient.RequestOptions{
			Method: "POST",
			Path:   "v2/verify",
			Body:   reqBody,
		})
		if err != nil {
			return err
		}
	} else {
		queryParams := map[string]string{}
		if verifyHash != "" {
			queryParams["h"] = verifyHash
		}
		body, _, err = client.DoRequest(httpclient.RequestOptions{
			Method:      "GET",
			Path:        "v2/verify/" + jti,
			QueryParams: queryParams,
		})
		if err != nil {
			return err
		}
	}

	return printVerdict(body)
}

// printVerdict renders a verification verdict
func printVerdict(body []byte) error {
	if jsonOutput {
		var responseData map[string]any
		if err := json.Unmarshal(body, &responseData); err != nil {
			return fmt.Errorf("failed to parse response: %v", err)
		}
		printJSON(responseData)
		return nil
	}

	verdict := gjson.GetBytes(body, "verdict").String()
	switch verdict {
	case "VALID", "VALID_WITH_WARNING":
		okLabel.Printf("✓ %s\n", verdict)
	default:
		errorLabel.Printf("✗ %s\n", verdict)
	}
	if reason := gjson.GetBytes(body, "reason").String(); reason != "" {
		fmt.Printf("Reason:  %s\n", reason)
	}
	if msg := gjson.GetBytes(body, "message").String(); msg != "" {
		fmt.Printf("Message: %s\n", msg)
	}
	if badge := gjson.GetBytes(body, "badge"); badge.Exists() {
		fmt.Printf("Entity:  %s (%s, %s)\n",
			badge.Get("entityName").String(),
			badge.Get("entityType").String(),
			badge.Get("validationLevel").String())
	}
	return nil
}

func init() {
	verifyCmd.Flags().StringP("filename", "f", "", "Context file to verify against")
	verifyCmd.Flags().StringVar(&verifyHash, "hash", "", "Hash prefix from the verification link")
	verifyCmd.Flags().StringVar(&verifyToken, "token", "", "Issued signature token, in place of a JTI")
	verifyCmd.Flags().StringVar(&verifyCtxType, "type", "email", "Context type of the signature")
	verifyCmd.Flags().StringVar(&verifyContent, "content", "", "Raw content for content-bound signatures")

	rootCmd.AddCommand(verifyCmd)
}
