package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vvka-141/hellodb/internal/config"
	"github.com/vvka-141/hellodb/internal/server"
	"github.com/vvka-141/hellodb/pkg/hellodb"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the greeting page over HTTP",
	Long: `Start the HTTP server.

Endpoints:
  /        HTML page with the newest greeting
  /health  JSON liveness check (does not touch the database)
  /debug   JSON dump of non-sensitive configuration

The server stops gracefully on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Int("port", 0, "Listen port (overrides CONTAINER_PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		settings.HTTPPort = port
	}

	logger, closeLog, err := newLogger(cmd, true)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	flow, err := newGreeter(ctx, settings, logger)
	if err != nil {
		return err
	}

	srv := server.New(flow, serverInfo(settings), logger)
	printBanner(logger, settings)

	return srv.Run(ctx, fmt.Sprintf(":%d", settings.HTTPPort), hellodb.DefaultShutdownTimeout)
}

func serverInfo(s *config.Settings) server.Info {
	return server.Info{
		Environment:       s.Environment,
		AWSRegion:         s.AWSRegion,
		DBHost:            s.DBHost,
		DBPort:            s.DBPort,
		DBName:            s.DBName,
		UsernameParameter: s.UsernameParameter,
		PasswordParameter: s.PasswordParameter,
		HTTPPort:          s.HTTPPort,
	}
}

func printBanner(logger hellodb.Logger, s *config.Settings) {
	logger.Info("Server running on port %d (%s)", s.HTTPPort, s.Environment)
	logger.Info("Database: %s:%d/%s (TLS %s)", s.DBHost, s.DBPort, s.DBName, s.TLSPolicy())
	logger.Info("AWS region: %s", s.AWSRegion)
	logger.Info("Username parameter: %s", s.UsernameParameter)
	if s.AuthMethod == config.AuthMethodAWSIAM {
		logger.Info("Password: RDS IAM auth token")
	} else {
		logger.Info("Password parameter: %s", s.PasswordParameter)
	}
	logger.Info("Endpoints: / (greeting), /health, /debug")
}
