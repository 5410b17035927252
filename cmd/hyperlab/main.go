package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/san-kum/hyperlab/internal/catalog"
	"github.com/san-kum/hyperlab/internal/logging"
	"github.com/san-kum/hyperlab/internal/store"
	"github.com/san-kum/hyperlab/internal/telemetry"
	"github.com/san-kum/hyperlab/internal/xgidata"
)

var (
	logger = zap.NewNop()
	telem  = telemetry.NewRegistry()
)

var rootCmd = &cobra.Command{
	Use:          "hyperlab",
	Short:        "hypergraph analysis and higher-order kuramoto lab",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(viper.GetString("log_level"), viper.GetString("log_format"))
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		_ = logger.Sync()
		return telem.WriteTextfile(viper.GetString("metrics_file"))
	},
	// With no subcommand, open the preset picker.
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPicker(cmd.Context())
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./hyperlab.yaml or ~/.config/hyperlab/hyperlab.yaml)")
	pf.String("data", ".hyperlab", "data directory for runs and the dataset catalog")
	pf.String("log-level", "warn", "log level (debug, info, warn, error)")
	pf.String("log-format", "console", "log format (console, json)")
	pf.String("metrics-file", "", "write prometheus metrics to this textfile on exit")

	_ = viper.BindPFlag("data_dir", pf.Lookup("data"))
	_ = viper.BindPFlag("log_level", pf.Lookup("log-level"))
	_ = viper.BindPFlag("log_format", pf.Lookup("log-format"))
	_ = viper.BindPFlag("metrics_file", pf.Lookup("metrics-file"))
	viper.SetDefault("cache_dir", "")
	viper.SetDefault("index_url", "")

	rootCmd.AddCommand(
		infoCmd(), dataCmd(),
		statsCmd(), cleanupCmd(), dualCmd(), generateCmd(),
		nullModelCmd(), assortativityCmd(), drawCmd(),
		simulateCmd(), liveCmd(), sweepCmd(),
		runsCmd(), scenarioCmd(), presetsCmd(),
	)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("hyperlab")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "hyperlab"))
		}
	}

	viper.SetEnvPrefix("HYPERLAB")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "using config file:", viper.ConfigFileUsed())
	}
}

func dataDir() string { return viper.GetString("data_dir") }

// cacheDir holds downloaded datasets.
func cacheDir() string {
	if dir := viper.GetString("cache_dir"); dir != "" {
		return dir
	}
	return filepath.Join(dataDir(), "datasets")
}

func runStore() *store.Store { return store.New(filepath.Join(dataDir(), "runs")) }

// dataClient opens the catalog and returns a dataset client that records
// downloads in it. The caller closes the catalog.
func dataClient() (*xgidata.Client, *catalog.Catalog, error) {
	cat, err := catalog.Open(dataDir())
	if err != nil {
		return nil, nil, err
	}
	opts := []xgidata.Option{xgidata.WithLogger(logger), xgidata.WithCatalog(cat)}
	if url := viper.GetString("index_url"); url != "" {
		opts = append(opts, xgidata.WithIndexURL(url))
	}
	return xgidata.New(opts...), cat, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
