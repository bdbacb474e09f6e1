package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sgrant/p4view/internal/auth"
	"github.com/sgrant/p4view/internal/discovery"
	"github.com/sgrant/p4view/internal/logger"
	"github.com/sgrant/p4view/internal/provider"
	"github.com/sgrant/p4view/internal/store"
)

var (
	cfgFile               string
	debugMode             bool
	version, commit, date string
)

// SetVersionInfo sets version information from ldflags
func SetVersionInfo(v, c, d string) {
	version, commit, date = v, c, d
}

var rootCmd = &cobra.Command{
	Use:   "p4view",
	Short: "Backend for browsing Perforce changelists, servers, and workspaces",
	Long: `p4view talks to a Perforce server through the p4 command-line client.
It parses the client's tagged output into structured records, manages the
single sign-in session across multiple configured servers, discovers
servers from the environment and ticket files, and explores the
workspace directory tree.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.p4view/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		viper.AddConfigPath(filepath.Join(home, ".p4view"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("backend", "cli")
	viper.SetDefault("p4.binary", "p4")
	viper.SetDefault("env.port_var", "P4PORT")
	viper.SetDefault("env.user_var", "P4USER")

	viper.ReadInConfig()

	if debugMode {
		logger.SetDebug(true)
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(versionTemplate())
	return rootCmd.Execute()
}

func versionTemplate() string {
	if commit != "none" && commit != "" {
		return fmt.Sprintf("p4view %s\n  commit: %s\n  built:  %s\n", version, commit, date)
	}
	return fmt.Sprintf("p4view %s\n", version)
}

// appContext bundles the collaborators the subcommands share. Built per
// invocation rather than held in package state so tests stay isolated.
type appContext struct {
	Provider  provider.Provider
	Servers   *store.ServerStore
	Sessions  *store.SessionStore
	Auth      *auth.Manager
	Discovery *discovery.Engine
}

func newAppContext() (*appContext, error) {
	kv, err := store.OpenDefaultFileKV()
	if err != nil {
		return nil, fmt.Errorf("error opening state store: %w", err)
	}

	p := provider.Get()
	servers := store.NewServerStore(kv)
	sessions := store.NewSessionStore(kv)
	manager := auth.NewManager(p, servers, sessions)

	return &appContext{
		Provider:  p,
		Servers:   servers,
		Sessions:  sessions,
		Auth:      manager,
		Discovery: discovery.NewEngine(p, servers, manager),
	}, nil
}
