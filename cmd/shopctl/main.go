package main

import (
	"fmt"
	"os"

	"github.com/example/foodshop/pkg/config"
	"github.com/example/foodshop/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var Version = "dev"

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:     "shopctl",
		Short:   "shopctl - operator tool for the foodshop backend",
		Version: Version,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config/config.yaml", "path to the config file")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(ordersCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the config and a logger that writes to stderr so tables on
// stdout stay clean.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logCfg := cfg.Log
	logCfg.OutputPaths = []string{"stderr"}
	if logCfg.Level == "" || logCfg.Level == "info" {
		logCfg.Level = "warn"
	}
	log, err := logger.New(&logCfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
