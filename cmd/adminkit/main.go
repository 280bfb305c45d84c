// ABOUTME: Entry point for the adminkit console and demo API.
// ABOUTME: Cobra root command, shared flags and configuration loading.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/2389/adminkit/internal/config"
)

// options are the persistent flags shared by every command. Set flags win
// over values from the environment and .env files.
type options struct {
	dbPath      string
	apiURL      string
	apiToken    string
	entitiesDir string

	cfg *config.Config
}

func (o *options) load() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if o.dbPath != "" {
		cfg.DBPath = o.dbPath
	}
	if o.apiURL != "" {
		cfg.APIURL = o.apiURL
	}
	if o.apiToken != "" {
		cfg.APIToken = o.apiToken
	}
	if o.entitiesDir != "" {
		cfg.EntitiesDir = o.entitiesDir
	}

	cfg.DBPath, err = validateAndCleanDBPath(cfg.DBPath)
	if err != nil {
		return err
	}
	o.cfg = cfg
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "adminkit",
		Short: "adminkit - generic entity admin console",
		Long: `adminkit turns entity configurations into working CRUD pages: a searchable,
sortable, paged table plus generated create/edit forms, persisted against a
REST API.

Without ADMINKIT_API_URL the console talks to an embedded demo API served
under /api and backed by SQLite.

Quick Start:
  adminkit seed          # Generate demo records
  adminkit serve         # Start the console on port 9100
  adminkit reset         # Clear and reseed the demo collections`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.dbPath, "db", "d", "", "Database path (default $ADMINKIT_DB_PATH or ./adminkit.db)")
	flags.StringVar(&opts.apiURL, "api-url", "", "External REST API base URL (default: embedded demo API)")
	flags.StringVar(&opts.apiToken, "token", "", "Bearer token for the REST API")
	flags.StringVar(&opts.entitiesDir, "entities", "", "Directory of YAML entity configurations")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newSeedCmd(opts),
		newResetCmd(opts),
		newListCmd(opts),
		newDeleteCmd(opts),
	)
	return rootCmd
}

// validateAndCleanDBPath validates and cleans a database path.
func validateAndCleanDBPath(path string) (string, error) {
	if strings.TrimSpace(path) == ":memory:" {
		return ":memory:", nil
	}

	cleanPath := filepath.Clean(strings.TrimSpace(path))
	if cleanPath == "" || cleanPath == "." || cleanPath == "/" {
		return "", fmt.Errorf("database path cannot be empty, '.', or '/'")
	}
	if strings.Contains(cleanPath, "..") {
		return "", fmt.Errorf("database path cannot contain '..'")
	}

	lowerPath := strings.ToLower(cleanPath)
	for _, pattern := range []string{".git", ".svn", "node_modules", ".env", "credentials", "secret"} {
		if strings.Contains(lowerPath, pattern) {
			return "", fmt.Errorf("database path cannot contain '%s' directory", pattern)
		}
	}
	return cleanPath, nil
}
