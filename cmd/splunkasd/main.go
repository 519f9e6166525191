package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/splunkasd/splunkasd/internal/common/logger"
	"github.com/splunkasd/splunkasd/internal/common/output"
	"github.com/splunkasd/splunkasd/internal/config"
)

// envPrefix is the prefix for the application's environment variables
// (SPLUNK_ASD_USERNAME, SPLUNK_ASD_PASSWORD, SPLUNK_ASD_FILE,
// SPLUNK_ASD_OUTPUT).
const envPrefix = "SPLUNK_ASD"

// settings is the full configuration schema, declared as data: every key,
// where it appears in each source, and its constraints.
var settings = []config.Setting{
	{Key: "username", Section: "splunkbase", Shorthand: "u",
		Help: "Splunkbase username"},
	{Key: "password", Section: "splunkbase", Shorthand: "p",
		Help: "Splunkbase password"},
	{Key: "file", Section: "apps", Flag: "apps_file", Shorthand: "a",
		Help: "Path to the apps list file"},
	{Key: "output", Section: "apps", Shorthand: "o", Default: "./",
		Help: "Output directory for downloaded archives"},
	{Key: "log.level", EnvKey: "SPLUNK_ASD_LOG_LEVEL", Default: "info",
		Choices: []string{"debug", "info", "warn", "error"},
		Help:    "Log level"},
}

var (
	configFile string
	verbose    bool
	quiet      bool
	noColor    bool
	logToFile  bool

	resolver *config.Resolver
)

var rootCmd = &cobra.Command{
	Use:   "splunkasd",
	Short: "Splunkbase app downloader",
	Long: `Keeps a local collection of Splunkbase apps current: checks each tracked
app for a newer release, downloads updated archives, and records the new
version back into the apps file.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Values from a .env file participate as ordinary environment variables
		_ = godotenv.Load()

		if verbose {
			logger.SetVerbose(true)
		}
		if quiet {
			logger.SetQuiet(true)
		}
		if noColor {
			output.NoColor()
		}
		if logToFile {
			if err := logger.Default().EnableFileLogging(); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to the configuration file (INI, YAML or TOML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&logToFile, "log-file", false, "Also write logs to the state directory")

	resolver = config.New(settings)
	resolver.Bind(rootCmd.PersistentFlags())

	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(listCmd)
}

// resolveSettings loads the configuration file and resolves the whole schema
// into the effective configuration.
func resolveSettings() error {
	if err := resolver.LoadFile(configFile); err != nil {
		return err
	}

	if _, err := resolver.ResolveGroup("splunkbase", []string{"username", "password"}, envPrefix); err != nil {
		return err
	}
	if _, err := resolver.ResolveGroup("apps", []string{"file", "output"}, envPrefix); err != nil {
		return err
	}

	levelName, err := resolver.Resolve("", "log.level")
	if err != nil {
		return err
	}
	if level, ok := logger.ParseLevel(levelName); ok {
		logger.Default().SetLevel(level)
	}
	// -v and -q still win over the resolved level
	logger.SetVerbose(verbose)
	logger.SetQuiet(quiet)

	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
