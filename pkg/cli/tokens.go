package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var serverURL string

// clientForFlags resolves the target server from --server, HOOKCATCH_SERVER
// or the default.
func clientForFlags() *Client {
	target := serverURL
	if target == "" {
		target = os.Getenv("HOOKCATCH_SERVER")
	}
	if target == "" {
		target = DefaultServerURL
	}
	return NewClient(target)
}

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "Manage tokens on a running server",
}

var tokensCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new token",
	RunE: func(cmd *cobra.Command, args []string) error {
		tok, err := clientForFlags().CreateToken()
		if err != nil {
			return err
		}
		fmt.Println(tok.WebhookURL)
		return nil
	},
}

var tokensListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		tokens, err := clientForFlags().ListTokens()
		if err != nil {
			return err
		}
		if len(tokens) == 0 {
			fmt.Println("No tokens.")
			return nil
		}
		for _, tok := range tokens {
			fmt.Printf("%s\t%s\t%s\n", tok.Value, tok.CreatedAt.Format("2006-01-02 15:04:05"), tok.WebhookURL)
		}
		return nil
	},
}

var tokensDeleteCmd = &cobra.Command{
	Use:   "delete <token>",
	Short: "Delete a token and its capture log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := clientForFlags().DeleteToken(args[0]); err != nil {
			return err
		}
		fmt.Println("Deleted", args[0])
		return nil
	},
}

func initTokensCmd() {
	rootCmd.AddCommand(tokensCmd)
	tokensCmd.AddCommand(tokensCreateCmd, tokensListCmd, tokensDeleteCmd)
	tokensCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "", "Server URL (default "+DefaultServerURL+")")
}
