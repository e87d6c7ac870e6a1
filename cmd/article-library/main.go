// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the article-library CLI.
// Implements: prd005-library-facade, prd006-sync-engine,
//             prd007-local-server (CLI surface).
// See docs/ARCHITECTURE § Client Interface, § Project Structure.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/article-library/internal/library"
	"github.com/pdiddy/article-library/internal/secrets"
	"github.com/pdiddy/article-library/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API tokens loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback when set, else the secret value for key.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the article-library CLI.
var rootCmd = &cobra.Command{
	Use:   "article-library",
	Short: "Offline-first client for a personal article library",
	Long: `article-library is an offline-first client for a remote article collection.
Reads and writes go to the backend while it is reachable; when it is not, they
are served from a local cache and mutations are recorded in a pending-operation
log that is replayed against the backend once connectivity returns.

Browse with list, search, and get; mutate with add, update, and delete; inspect
with status; drain the pending log with sync; or run serve for a local HTTP
mirror of the collection with background connectivity polling.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./article-library.yaml or ~/.config/article-library/config.yaml)")
	rootCmd.PersistentFlags().String("base-url", "", "base URL of the remote article API")
	rootCmd.PersistentFlags().String("token", "", "bearer token for the remote article API (default: .secrets/library-token)")
	rootCmd.PersistentFlags().String("cache-path", "", "path of the local cache database (empty = in-memory only)")
	rootCmd.PersistentFlags().Bool("verbose", false, "log internal activity to stderr")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("article-library")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "article-library"))
		}
	}

	viper.SetDefault("base_url", "http://localhost:8000")
	viper.SetDefault("http_timeout", "30s")
	viper.SetDefault("cache_path", "article-library.db")
	viper.SetDefault("seed_offline_cache", true)
	viper.SetDefault("ping_interval", "10s")
	viper.SetDefault("health_timeout", "5s")
	viper.SetDefault("listen", "127.0.0.1:8600")

	viper.SetEnvPrefix("ARTICLE_LIBRARY")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// libraryConfig resolves the full client config from flags, config file
// and loaded secrets, in that order of precedence.
func libraryConfig(cmd *cobra.Command) types.LibraryConfig {
	baseURL, _ := cmd.Flags().GetString("base-url")
	if baseURL == "" {
		baseURL = viper.GetString("base_url")
	}
	token, _ := cmd.Flags().GetString("token")
	cachePath, _ := cmd.Flags().GetString("cache-path")
	if cachePath == "" && !cmd.Flags().Changed("cache-path") {
		cachePath = viper.GetString("cache_path")
	}

	return types.LibraryConfig{
		Remote: types.RemoteConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("http_timeout"),
				UserAgent: "article-library/" + version,
			},
			BaseURL: baseURL,
			Token:   secretDefault(secrets.TokenKey, token),
		},
		Cache: types.CacheConfig{
			Path: cachePath,
			Seed: viper.GetBool("seed_offline_cache"),
		},
		Connectivity: types.ConnectivityConfig{
			PingInterval:  viper.GetDuration("ping_interval"),
			HealthTimeout: viper.GetDuration("health_timeout"),
		},
		Serve: types.ServeConfig{
			Listen: viper.GetString("listen"),
		},
	}
}

// newLogger builds the CLI logger: silent by default, development output
// with --verbose.
func newLogger(cmd *cobra.Command) *zap.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if !verbose {
		return zap.NewNop()
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// openLibrary builds the client and runs one connectivity check so the
// first command already knows whether the backend is reachable.
func openLibrary(cmd *cobra.Command) (*library.Library, error) {
	lib, err := library.Open(libraryConfig(cmd), newLogger(cmd))
	if err != nil {
		return nil, err
	}
	lib.Monitor().Check(cmd.Context())
	return lib, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Format(time.RFC3339)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
