package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/storefront/internal/api"
	"github.com/mesh-intelligence/storefront/internal/config"
	"github.com/mesh-intelligence/storefront/internal/log"
	"github.com/mesh-intelligence/storefront/internal/paths"
	"github.com/mesh-intelligence/storefront/internal/session"
	"github.com/mesh-intelligence/storefront/pkg/sqlite"
	"github.com/mesh-intelligence/storefront/pkg/types"
)

// app is everything a command needs once configuration is resolved: the
// logger, the attached credential store, the session built on it, and the API
// client reading its credential from the session.
type app struct {
	cfg     types.Config
	logger  *zap.Logger
	store   types.CredentialStore
	session *session.Holder
	client  *api.Client
	out     io.Writer
	json    bool
}

// resolveConfig finds the config directory, loads config.yaml and resolves
// the data directory into the returned Config.
func resolveConfig(cmd *cobra.Command) (string, types.Config, error) {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return "", types.Config{}, exitError(exitSysError, fmt.Errorf("resolve config dir: %w", err))
	}
	cfg, err := config.Load(configDir, cmd.Root().PersistentFlags())
	if err != nil {
		return "", types.Config{}, exitError(exitUserError, err)
	}
	dataDir, err := paths.ResolveDataDir(flags.dataDir, cfg.DataDir)
	if err != nil {
		return "", types.Config{}, exitError(exitSysError, fmt.Errorf("resolve data dir: %w", err))
	}
	cfg.DataDir = dataDir
	return configDir, cfg, nil
}

// openApp wires the app for cmd. The caller must defer app.Close().
func openApp(cmd *cobra.Command) (*app, error) {
	_, cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger := log.New(cfg.Log)

	store := sqlite.NewCredentialStore()
	if err := store.Attach(cfg.DataDir); err != nil {
		return nil, exitError(exitSysError, fmt.Errorf("attach credential store: %w", err))
	}

	holder, err := session.Open(cmd.Context(), store, session.WithLogger(logger))
	if err != nil {
		store.Detach()
		return nil, exitError(exitSysError, err)
	}

	client, err := api.New(cfg, holder, api.WithLogger(logger))
	if err != nil {
		store.Detach()
		return nil, exitError(exitUserError, err)
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		session: holder,
		client:  client,
		out:     cmd.OutOrStdout(),
		json:    flags.jsonMode,
	}, nil
}

// Close detaches the credential store and flushes the logger.
func (a *app) Close() error {
	_ = a.logger.Sync()
	return a.store.Detach()
}

// withApp adapts a command body that needs an app into a cobra RunE.
func withApp(fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := fn(cmd.Context(), a, args); err != nil {
			a.logFailure(cmd, err)
			return err
		}
		return nil
	}
}

// logFailure records a failed command. Failures the user can fix stay at
// debug; the rest are info.
func (a *app) logFailure(cmd *cobra.Command, err error) {
	fields := []zap.Field{zap.String("command", cmd.CommandPath()), zap.Error(err)}
	if exitCode(err) == exitUserError {
		a.logger.Debug("command rejected", fields...)
		return
	}
	a.logger.Info("command failed", fields...)
}
