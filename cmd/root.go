// Package cmd contains the CLI commands of the server, built with cobra.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/Scalingo/github-profile-mcp/cache"
	"github.com/Scalingo/github-profile-mcp/config"
	"github.com/Scalingo/github-profile-mcp/controller"
	"github.com/Scalingo/github-profile-mcp/logger"
	"github.com/Scalingo/github-profile-mcp/service"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   config.AppName,
	Short: "MCP server exposing a GitHub profile to AI assistants",
	Long: `github-profile-mcp serves the repositories, commits and statistics of one
GitHub profile to AI assistants over the Model Context Protocol.
Results are cached in memory to spare the GitHub rate limit.`,
	SilenceUsage: true,
}

// Execute is called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
}

// app holds the collaborators shared by every command
type app struct {
	config         config.Config
	cache          *cache.Store
	githubService  service.GithubService
	toolController controller.ToolController
	closeLogs      func() error
}

// bootstrap loads the configuration and wires the fetcher and the tool facade.
// The cache sweep is started, callers must call app.close.
func bootstrap(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		// logger is not configured yet, keep the default stderr output
		log.WithError(err).Error("unable to load configuration")
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.Logs.Level = "debug"
	}

	closeLogs, err := logger.Setup(*cfg)
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	githubClient, graphqlClient, err := service.NewGithubClients(*cfg)
	if err != nil {
		closeLogs()
		return nil, err
	}

	rateLimiter := service.NewRateLimiter(commandContext(cmd), *cfg, githubClient)

	store := cache.New(cfg.Cache.TTL(), cfg.Cache.CheckPeriod())
	if err := store.Start(); err != nil {
		closeLogs()
		return nil, fmt.Errorf("unable to schedule the cache sweep: %w", err)
	}

	githubService := service.NewGithubService(*cfg, githubClient, graphqlClient, rateLimiter, store)

	log.WithFields(log.Fields{
		"username": cfg.Github.Username,
		"cacheTTL": cfg.Cache.TTL().String(),
	}).Info("github profile server configured")

	return &app{
		config:         *cfg,
		cache:          store,
		githubService:  githubService,
		toolController: controller.NewToolController(*cfg, githubService, store),
		closeLogs:      closeLogs,
	}, nil
}

func (a *app) close() {
	a.cache.Stop()
	if err := a.closeLogs(); err != nil {
		fmt.Fprintf(os.Stderr, "unable to close log file: %v\n", err)
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
