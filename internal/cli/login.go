package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/brnbtech770/blocktrust/internal/common/httpclient"
)

// loginResponse represents the response from the token endpoint
type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// newLoginCmd creates and returns a new login command
func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with the BlockTrust trust server",
		Long: `Login to the trust server to obtain an operator access token.
This command will authenticate with the server and store the token in your configuration file.

The login process requires:
- A valid server configuration
- Single operator mode enabled on the server
- A username and password (provided via flags or stored in config)

Example:
  trustctl login --user=operator --passwd=mypassword
  trustctl login  # uses credentials from config file`,
		RunE: runLogin,
	}

	cmd.Flags().String("user", "", "Operator login name")
	cmd.Flags().String("passwd", "", "Password for authentication")
	return cmd
}

// runLogin handles the login command execution
func runLogin(cmd *cobra.Command, args []string) error {
	// Get the current configuration
	cfg := GetConfig()
	if cfg == nil {
		return fmt.Errorf("no configuration loaded")
	}

	user, _ := cmd.Flags().GetString("user")
	if user == "" {
		user = cfg.Username
		if user == "" {
			return fmt.Errorf("no username provided. Use --user flag or set username in config file")
		}
	}
	passwd, _ := cmd.Flags().GetString("passwd")
	if passwd == "" {
		passwd = cfg.Password
		if passwd == "" {
			return fmt.Errorf("no password provided. Use --passwd flag or set password in config file")
		}
	}

	client := httpclient.NewClient(cfg)

	reqBody, err := json.Marshal(map[string]string{
		"username": user,
		"password": passwd,
	})
	if err != nil {
		return fmt.Errorf("failed to build login request: %w", err)
	}

	opts := httpclient.RequestOptions{
		Method: "POST",
		Path:   "auth/token",
		Body:   reqBody,
	}

	body, _, err := client.DoRequest(opts)
	if err != nil {
		return fmt.Errorf("login request failed: %w", err)
	}

	// Parse response
	var loginResp loginResponse
	if err := json.Unmarshal(body, &loginResp); err != nil {
		return fmt.Errorf("failed to parse login response: %w", err)
	}

	cfg.Username = user
	cfg.Password = passwd
	cfg.Token = loginResp.Token
	cfg.TokenExpiry = loginResp.ExpiresAt.Format(time.RFC3339)

	// Save updated configuration
	configPath, err := GetDefaultConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	if err := cfg.WriteConfig(configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	// Print success message
	if jsonOutput {
		kv := map[string]interface{}{
			"status":     "success",
			"message":    "Login successful",
			"expires_at": loginResp.ExpiresAt.Format(time.RFC3339),
		}
		printJSON(kv)
	} else {
		okLabel.Println("✓ Login successful")
		fmt.Printf("Token expires at: %s\n", loginResp.ExpiresAt.Format(time.RFC3339))
	}

	return nil
}
