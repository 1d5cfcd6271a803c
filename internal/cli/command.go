package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"wikitrans/internal/bootstrap"
	"wikitrans/internal/config"
)

// Version is set at build time.
var Version = "dev"

// LaunchFunc starts the desktop editor on top of the wired services.
type LaunchFunc func(ctx context.Context, svc *bootstrap.Services) error

// env builds the services once per process, after flags and config are
// resolved.
type env struct {
	flags *Flags

	once sync.Once
	svc  *bootstrap.Services
	err  error
}

func (e *env) services(ctx context.Context) (*bootstrap.Services, error) {
	e.once.Do(func() {
		InitConfig(e.flags.CfgFile)
		cfg, err := config.Load(viper.GetViper())
		if err != nil {
			e.err = err
			return
		}
		level := slog.LevelInfo
		if e.flags.Verbose {
			level = slog.LevelDebug
		}
		log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		e.svc, e.err = bootstrap.New(ctx, cfg, log)
	})
	return e.svc, e.err
}

// with runs fn on the wired services and closes them afterwards.
func (e *env) with(fn func(cmd *cobra.Command, args []string, svc *bootstrap.Services) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		svc, err := e.services(cmd.Context())
		if err != nil {
			return err
		}
		defer svc.Close()
		return fn(cmd, args, svc)
	}
}

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags, launch LaunchFunc) *cobra.Command {
	e := &env{flags: flags}
	rootCmd := &cobra.Command{
		Use:   "wikitrans",
		Short: "Bilingual sentence editor for Wikipedia translation projects",
		Long: `wikitrans edits the translated side of a project's sentence pairs and
commits the changes back to the translation backend.

Examples:
  wikitrans                                   # Launch the desktop editor (default)
  wikitrans login --username ana              # Sign in and store the token
  wikitrans push hi_Tea --file edits.csv      # Apply edits from a file and commit
  wikitrans export hi_Tea --format json       # Export the sentence pairs
  wikitrans history                           # Recent commits`,
		Args:          cobra.NoArgs,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		if launch == nil {
			return cmd.Help()
		}
		return e.with(func(cmd *cobra.Command, args []string, svc *bootstrap.Services) error {
			return launch(cmd.Context(), svc)
		})(cmd, args)
	}

	setupFlags(rootCmd, flags)
	rootCmd.AddCommand(
		newLoginCommand(e),
		newLogoutCommand(e),
		newPushCommand(e),
		newExportCommand(e),
		newHistoryCommand(e),
	)
	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.wikitrans.yaml)")
	cmd.PersistentFlags().StringVar(&flags.BaseURL, "base-url", "", "Translation backend base URL")
	cmd.PersistentFlags().StringVar(&flags.Token, "token", "", "Bearer token (overrides the stored session)")
	cmd.PersistentFlags().StringVar(&flags.DataDir, "data-dir", "", "Directory for the local journal and caches")
	cmd.PersistentFlags().StringVar(&flags.Locale, "locale", "", "Locale for user-facing messages")
	cmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Debug logging")

	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("store.base_url", cmd.PersistentFlags().Lookup("base-url"))
	viper.BindPFlag("session.token", cmd.PersistentFlags().Lookup("token"))
	viper.BindPFlag("data.dir", cmd.PersistentFlags().Lookup("data-dir"))
	viper.BindPFlag("editor.locale", cmd.PersistentFlags().Lookup("locale"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".wikitrans")
	}

	viper.SetEnvPrefix("WIKITRANS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
