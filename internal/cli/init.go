package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/storefront/internal/config"
	"github.com/mesh-intelligence/storefront/pkg/sqlite"
)

// configFile holds the structure written to config.yaml.
type configFile struct {
	APIURL  string       `yaml:"api_url"`
	DataDir string       `yaml:"data_dir,omitempty"`
	Log     configLogKey `yaml:"log"`
}

type configLogKey struct {
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"`
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize storefront configuration and storage",
		Long:  "Create the configuration and data directories, write a default config.yaml\nif none exists, then initialize the credential store.",
		Args:  cobra.NoArgs,
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	configDir, cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return exitError(exitSysError, fmt.Errorf("create config directory: %w", err))
	}

	// Only an explicit data directory is pinned in the file.
	var pinnedDataDir string
	if flags.dataDir != "" {
		pinnedDataDir = cfg.DataDir
	}

	configPath := filepath.Join(configDir, config.FileName)
	written, err := writeConfigIfMissing(configPath, configFile{
		APIURL:  cfg.APIURL,
		DataDir: pinnedDataDir,
		Log:     configLogKey{Level: cfg.Log.Level, File: cfg.Log.File},
	})
	if err != nil {
		return exitError(exitSysError, fmt.Errorf("write config: %w", err))
	}

	store := sqlite.NewCredentialStore()
	if err := store.Attach(cfg.DataDir); err != nil {
		return exitError(exitSysError, fmt.Errorf("initialize storage: %w", err))
	}
	if err := store.Detach(); err != nil {
		return exitError(exitSysError, fmt.Errorf("finalize storage: %w", err))
	}

	out := cmd.OutOrStdout()
	if flags.jsonMode {
		return printJSON(out, map[string]any{
			"config_file":    configPath,
			"config_written": written,
			"data_dir":       cfg.DataDir,
			"api_url":        cfg.APIURL,
		})
	}
	if written {
		fmt.Fprintf(out, "Wrote %s\n", configPath)
	}
	fmt.Fprintf(out, "Storefront initialized (data: %s, api: %s)\n", cfg.DataDir, cfg.APIURL)
	return nil
}

// writeConfigIfMissing creates config.yaml from cfg if the file does not
// exist. It reports whether it wrote the file.
func writeConfigIfMissing(path string, cfg configFile) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, err
	}
	return true, nil
}
