package cmd

import (
	"fmt"

	"github.com/Scalingo/github-profile-mcp/mcpserver"
	"github.com/Scalingo/github-profile-mcp/prompts"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the MCP protocol on stdin/stdout",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		library, err := prompts.Load()
		if err != nil {
			return fmt.Errorf("unable to load prompts: %w", err)
		}

		server := mcpserver.New(a.toolController, library, a.githubService.Username())
		if err := server.ServeStdio(); err != nil {
			return fmt.Errorf("mcp server stopped: %w", err)
		}

		log.Info("mcp server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
