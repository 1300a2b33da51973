package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Scalingo/github-profile-mcp/controller"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var httpCmd = &cobra.Command{
	Use:   "http",
	Short: "Serve the tools as a JSON HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		if port, _ := cmd.Flags().GetString("port"); port != "" {
			a.config.API.ListenPort = port
		}

		gin.SetMode(gin.ReleaseMode)
		router := controller.NewRouter(controller.NewAPIController(a.toolController))

		server := &http.Server{
			Addr:    ":" + a.config.API.ListenPort,
			Handler: router,
		}

		go func() {
			log.Info("server listening on port " + a.config.API.ListenPort)

			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("error while starting server")
			}
		}()

		// wait for interrupt signal to gracefully shut down the server
		// kill default send syscall.SIGTERM, kill -2 is syscall.SIGINT
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Info("SIGINT, SIGTERM received, will shut down server ...")

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.WithError(err).Error("Server forced to shutdown")
			return err
		}

		log.Info("Application stopped gracefully !")
		return nil
	},
}

func init() {
	httpCmd.Flags().StringP("port", "p", "", "Listen port, overrides the configuration")
	rootCmd.AddCommand(httpCmd)
}
