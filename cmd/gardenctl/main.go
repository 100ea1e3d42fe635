// Package main implements gardenctl, a CLI for tending local gardens and
// inspecting the constellation view.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/constellation/internal/config"
	"github.com/fyrsmithlabs/constellation/internal/constellation"
	"github.com/fyrsmithlabs/constellation/internal/garden"
	"github.com/fyrsmithlabs/constellation/internal/letters"
)

var (
	// configPath points at an optional config file
	configPath string
	// gardensDir and lettersPath override the configured stores
	gardensDir  string
	lettersPath string
	// serverURL is the base URL for the constellation HTTP server
	serverURL string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "gardenctl",
	Short: "Tend gardens and inspect the constellation",
	Long: `gardenctl works directly on the garden and letters files used by the
constellation server. It can plant and tend questions, sit with them, leave
letters, and print the aggregated view.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/constellation/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&gardensDir, "gardens-dir", "", "gardens directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&lettersPath, "letters", "", "letters file (overrides config)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:3333", "constellation server URL")
}

// stores resolves the garden and letters stores from config and flags.
type stores struct {
	cfg     *config.Config
	gardens *garden.FileStore
	letters *letters.FileStore
}

func openStores() (*stores, error) {
	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return nil, err
	}
	if gardensDir != "" {
		cfg.Gardens.Dir = gardensDir
	}
	if lettersPath != "" {
		cfg.Letters.Path = lettersPath
	}
	return &stores{
		cfg:     cfg,
		gardens: garden.NewFileStore(cfg.Gardens.Dir),
		letters: letters.NewFileStore(cfg.Letters.Path, zap.NewNop()),
	}, nil
}

func (s *stores) aggregator() *constellation.Aggregator {
	return constellation.NewAggregator(s.gardens, s.letters, zap.NewNop(), constellation.Options{
		Concurrency: s.cfg.Aggregation.Concurrency,
		LoadTimeout: s.cfg.Aggregation.LoadTimeout.Duration(),
	})
}
