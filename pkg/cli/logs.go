package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var logsFlags struct {
	count  int
	asJSON bool
}

var logsCmd = &cobra.Command{
	Use:   "logs <token>",
	Short: "Show the latest captured requests for a token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := clientForFlags().Logs(args[0], logsFlags.count)
		if err != nil {
			return err
		}

		if logsFlags.asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		}

		if len(records) == 0 {
			fmt.Println("No captures.")
			return nil
		}
		for _, rec := range records {
			fmt.Printf("#%d  %s  %s %s\n", rec.ID, rec.Date.Format("2006-01-02 15:04:05"), rec.Object.Method, rec.Object.Value)
			if rec.Object.Body != nil {
				fmt.Println(*rec.Object.Body)
			}
		}
		return nil
	},
}

func initLogsCmd() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.Flags().IntVarP(&logsFlags.count, "count", "n", 50, "Number of captures to show")
	logsCmd.Flags().BoolVar(&logsFlags.asJSON, "json", false, "Output raw JSON")
	logsCmd.Flags().StringVarP(&serverURL, "server", "s", "", "Server URL (default "+DefaultServerURL+")")
}
