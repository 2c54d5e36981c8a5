package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vvka-141/hellodb/internal/config"
	"github.com/vvka-141/hellodb/internal/db"
	"github.com/vvka-141/hellodb/internal/greeting"
	"github.com/vvka-141/hellodb/internal/logging"
	"github.com/vvka-141/hellodb/internal/secrets"
	"github.com/vvka-141/hellodb/pkg/hellodb"
)

// defaultEnvFile is loaded when present and --env-file is not given.
const defaultEnvFile = ".env"

// newGreeter builds the greeting flow from resolved settings.
// Tests replace it to avoid AWS and PostgreSQL.
var newGreeter = buildFlow

// loadSettings applies .env files and the optional YAML file, resolves the
// environment on top and validates the result.
func loadSettings(cmd *cobra.Command) (*config.Settings, error) {
	envFiles, _ := cmd.Flags().GetStringSlice("env-file")
	if len(envFiles) == 0 {
		if err := config.LoadEnvFiles(true, defaultEnvFile); err != nil {
			return nil, fmt.Errorf("%w: %w", hellodb.ErrInvalidConfig, err)
		}
	} else if err := config.LoadEnvFiles(false, envFiles...); err != nil {
		return nil, fmt.Errorf("%w: %w", hellodb.ErrInvalidConfig, err)
	}

	file, err := loadConfigFile(getStringFlag(cmd, "config"))
	if err != nil {
		return nil, err
	}

	settings, err := config.Resolve(file, os.LookupEnv)
	if err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// loadConfigFile reads path, or hellodb.yaml from the working directory when
// path is empty. Only an explicitly named file is required to exist.
func loadConfigFile(path string) (*config.FileConfig, error) {
	explicit := path != ""
	if !explicit {
		path = config.ConfigFileName
	}

	file, err := config.Load(path)
	switch {
	case err == nil:
		return file, nil
	case errors.Is(err, config.ErrConfigNotFound) && !explicit:
		return nil, nil
	default:
		return nil, fmt.Errorf("config %s: %w: %w", path, hellodb.ErrInvalidConfig, err)
	}
}

// newLogger writes to the command's stderr and, with --log-file, to a
// rotated file as well. The returned func closes the file.
func newLogger(cmd *cobra.Command, timestamps bool) (hellodb.Logger, func(), error) {
	var w io.Writer = cmd.ErrOrStderr()
	closeFn := func() {}

	if path := getStringFlag(cmd, "log-file"); path != "" {
		fw, err := logging.NewFileWriter(path)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", hellodb.ErrInvalidConfig, err)
		}
		w = io.MultiWriter(w, fw)
		closeFn = func() { _ = fw.Close() }
	}

	opts := []logging.Option{logging.WithWriter(w)}
	if timestamps {
		opts = append(opts, logging.WithTimestamps())
	}
	return logging.NewConsoleLogger(getVerboseFlag(cmd), opts...), closeFn, nil
}

func buildFlow(ctx context.Context, s *config.Settings, logger hellodb.Logger, opts ...greeting.Option) (*greeting.Flow, error) {
	awsCfg, err := secrets.LoadAWSConfig(ctx, s.AWSRegion, s.SecretMaxAttempts, s.SecretTimeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", hellodb.ErrInvalidConfig, err)
	}
	resolver := secrets.NewSSMResolver(secrets.NewSSMClient(awsCfg), logger)
	session := db.NewSession(logger)

	if s.AuthMethod == config.AuthMethodAWSIAM {
		endpoint := net.JoinHostPort(s.DBHost, strconv.Itoa(s.DBPort))
		tokens, err := db.NewAWSIAMTokenProvider(endpoint, s.AWSRegion, awsCfg.Credentials)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", hellodb.ErrInvalidConfig, err)
		}
		logger.Verbose("Database passwords come from %s", tokens)
		opts = append(opts, greeting.WithTokenProvider(tokens))
	}

	return greeting.NewFlow(s.FlowConfig(), resolver, session, logger, opts...), nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
