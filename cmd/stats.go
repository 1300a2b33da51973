package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Scalingo/github-profile-mcp/controller"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the portfolio summary of the profile as JSON",
	Long:  `Runs one tool, get_portfolio_summary by default, and writes its envelope to stdout.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		tool, _ := cmd.Flags().GetString("tool")
		envelope := a.toolController.Call(commandContext(cmd), tool, nil)

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(envelope); err != nil {
			return fmt.Errorf("unable to encode result: %w", err)
		}

		if !envelope.Success {
			return fmt.Errorf("%s failed: %s", tool, envelope.Error.Code)
		}

		return nil
	},
}

func init() {
	statsCmd.Flags().StringP("tool", "t", controller.ToolGetPortfolioSummary, "Tool to run")
	rootCmd.AddCommand(statsCmd)
}
