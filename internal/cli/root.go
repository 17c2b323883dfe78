package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/ppiankov/arrests/internal/model"
	"github.com/ppiankov/arrests/internal/pipeline"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is the release version printed by `arrests version`
const Version = "0.1.0"

var (
	cfgFile   string
	verbose   bool
	arrestURL string
	dbPath    string
)

// rootCmd loads one arrest summary report into the arrests table
var rootCmd = &cobra.Command{
	Use:   "arrests --arrests <url>",
	Short: "Load a police arrest summary PDF into a SQLite table",
	Long: `arrests downloads a single-page arrest summary PDF, extracts one row per
arrest and loads the rows into a freshly recreated "arrests" table.

The first stored row is printed with its fields joined by "þ".

Example:
  arrests --arrests http://normanpd.normanok.gov/filebrowser_download/657/2019-02-25%20Daily%20Arrest%20Summary.pdf
  arrests --arrests file:///data/arrests.pdf --db /tmp/arrests.db`,
	Args:              cobra.NoArgs,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
	RunE:              runLoad,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "arrests v%s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.arrests/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.Flags().StringVar(&arrestURL, "arrests", "", "the arrest summary url (http, https or file)")
	rootCmd.Flags().StringVar(&dbPath, "db", "", "database file (default: store.path, arrests.db)")
	_ = rootCmd.MarkFlagRequired("arrests")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("store.path", rootCmd.Flags().Lookup("db"))
	registerDefaults(viper.GetViper(), model.DefaultConfig())

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	// A missing .env is the normal case
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home + "/.arrests")
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// ARRESTS_STORE_PATH, ARRESTS_HTTP_TIMEOUT, ...
	viper.SetEnvPrefix("ARRESTS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

func setupLogging(cmd *cobra.Command, args []string) error {
	if viper.GetBool("output.verbose") {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	return nil
}

func runLoad(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	ok := color.New(color.FgGreen)

	if cfg.Output.Verbose {
		fmt.Fprintf(stderr, "Report:   %s\n", arrestURL)
		fmt.Fprintf(stderr, "Database: %s\n", cfg.Store.Path)
		fmt.Fprintf(stderr, "Cache:    %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(stderr)
	}

	p := pipeline.NewPipeline(cfg, pipeline.WithOutput(cmd.OutOrStdout()))

	result, err := p.Run(context.Background(), arrestURL)
	if err != nil {
		return fmt.Errorf("load failed: %w", err)
	}

	if cfg.Output.Verbose {
		ok.Fprintf(stderr, "✓ Loaded %d arrests into %s\n", result.Records, result.DBPath)
		if result.Meta.FromCache {
			ok.Fprintf(stderr, "✓ Report served from cache\n")
		}
	}

	return nil
}
