package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/brnbtech770/blocktrust/internal/common/httpclient"
)

// eventsCmd represents the events command
var eventsCmd = &cobra.Command{
	Use:   "events JTI [flags]",
	Short: "Show the verification trail of a signature",
	Long: `Show the verification trail of a signature: every check the server has seen
for the jti, newest first, with its verdict and requester fingerprint.

Example:
  trustctl events 3F2B8C1D9A4E7F02`,
	Args: cobra.ExactArgs(1),
	RunE: runEvents,
}

func runEvents(cmd *cobra.Command, args []string) error {
	client := httpclient.NewClient(GetConfig())

	body, err := client.ListResources("signatures/"+args[0]+"/events", nil)
	if err != nil {
		return err
	}

	if jsonOutput {
		var responseData []map[string]any
		if err := json.Unmarshal(body, &responseData); err != nil {
			return fmt.Errorf("failed to parse response: %v", err)
		}
		printJSON(map[string]any{"result": 1, "value": responseData})
		return nil
	}

	events := gjson.ParseBytes(body).Array()
	if len(events) == 0 {
		fmt.Println("No verification events")
		return nil
	}
	for _, ev := range events {
		line := fmt.Sprintf("%s  %s", ev.Get("createdAt").String(), ev.Get("verdict").String())
		if reason := ev.Get("reason").String(); reason != "" {
			line += "/" + reason
		}
		if ipHash := ev.Get("ipHash").String(); ipHash != "" {
			line += "  ip:" + ipHash
		}
		fmt.Println(line)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(eventsCmd)
}
