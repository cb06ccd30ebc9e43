// Command blog runs the blog server and its maintenance tasks.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"blog/internal/config"
	"blog/internal/logging"
)

var Version = "dev"

const defaultConfigFile = "blog.toml"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "blog",
		Short:         "A small blog: posts, categories and authors",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", defaultConfigFile, "path to the TOML configuration file")
	rootCmd.PersistentFlags().String("dsn", "", "SQLite database file (overrides database.path)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(categoryCmd())

	return rootCmd
}

// loadConfig reads --config and applies --dsn. The default config file may
// be absent; an explicitly named one must exist.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()

	path, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(path, !flags.Changed("config"))
	if err != nil {
		return nil, err
	}

	if flags.Changed("dsn") {
		cfg.Database.Path, _ = flags.GetString("dsn")
	}

	return cfg, cfg.Validate()
}

func newLogger(cmd *cobra.Command, cfg *config.Config) (zerolog.Logger, error) {
	return logging.New(cfg.Log, cmd.ErrOrStderr())
}
