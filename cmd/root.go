// Package cmd implements the veracity command-line interface.
package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	infralogger "github.com/jonesrussell/veracity/infrastructure/logger"
	"github.com/jonesrussell/veracity/internal/bootstrap"
	"github.com/jonesrussell/veracity/internal/config"
)

// Version is set at build time with -ldflags.
var Version = "dev"

// Output formats for analysis commands.
const (
	outputJSON  = "json"
	outputTable = "table"
)

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// debug enables debug logging for all commands
	debug bool

	// rootCmd represents the root command for the veracity CLI.
	rootCmd = &cobra.Command{
		Use:   "veracity",
		Short: "Authenticity scoring for text and images",
		Long: `Veracity scores text for likely fabrication and images for likely
manipulation, and explains each score.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	_ = godotenv.Load()
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yml or $CONFIG_PATH)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("output", outputJSON, "output format for analysis commands: json or table")

	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(analyzeCommand())
	rootCmd.AddCommand(batchCommand())
	rootCmd.AddCommand(versionCommand())
}

// initConfig binds flags and VERACITY_* environment variables into viper.
func initConfig(cmd *cobra.Command) error {
	viper.SetEnvPrefix("veracity")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	for _, name := range []string{"config", "debug", "output"} {
		if err := viper.BindPFlag(name, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("bind %s flag: %w", name, err)
		}
	}

	switch viper.GetString("output") {
	case outputJSON, outputTable:
		return nil
	default:
		return fmt.Errorf("unknown output format %q", viper.GetString("output"))
	}
}

// loadConfig loads the service configuration with CLI overrides applied.
func loadConfig() (*config.Config, error) {
	cfg, err := bootstrap.LoadConfig(viper.GetString("config"))
	if err != nil {
		return nil, err
	}
	if viper.GetBool("debug") {
		cfg.Service.Debug = true
	}
	if cfg.Service.Version == "" || Version != "dev" {
		cfg.Service.Version = Version
	}
	return cfg, nil
}

// newCLIComponents builds components for one-shot commands. Logs go to
// stderr so stdout carries only results.
func newCLIComponents() (*bootstrap.Components, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	cfg.Logging.OutputPaths = []string{"stderr"}
	if !cfg.Service.Debug {
		cfg.Logging.Level = "warn"
	}

	logger, err := bootstrap.CreateLogger(cfg)
	if err != nil {
		return nil, err
	}

	comps, err := bootstrap.NewComponents(cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	return comps, nil
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "veracity version %s\n", Version)
		},
	}
}

func syncLogger(logger infralogger.Logger) {
	_ = logger.Sync()
}
