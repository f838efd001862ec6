package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"

	"noteminder/internal/app"
	"noteminder/internal/config"
	"noteminder/internal/logger"
)

var (
	cfgFile string
	verbose bool

	cfg         *config.Config
	log         *slog.Logger
	application *app.App
)

var rootCmd = &cobra.Command{
	Use:   "notes",
	Short: "noteminder - notes with desktop reminders",
	Long: `noteminder keeps per-user notes in a local SQLite database and raises a
desktop notification once a note's reminder time has passed.

Run "notes daemon" in the background to deliver reminders.`,
	PersistentPreRunE: setupApp,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func Execute() {
	err := rootCmd.Execute()
	closeApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, failure("Error: %v", err))
		os.Exit(1)
	}
}

func setupApp(cmd *cobra.Command, _ []string) error {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFile(cfgFile)
	} else {
		cfg, err = config.LoadWithDefaults()
		if err == nil && cfg.IsProd() {
			cfg, err = config.Load()
		}
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log = logger.New(cfg.Env)
	if !verbose && !cfg.IsProd() && cmd.Name() != daemonCmd.Name() {
		log = logger.Discard()
	}
	log.Debug("configuration loaded", "config", cfg.String())

	application, err = app.New(cmd.Context(), cfg, log)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	return nil
}

// closeApp releases the database. It runs after failed commands too.
func closeApp() {
	if application == nil {
		return
	}
	if err := application.Close(); err != nil {
		log.Warn("close", "error", err)
	}
	application = nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default <config dir>/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr")

	rootCmd.AddCommand(registerCmd, loginCmd, logoutCmd, whoamiCmd)
	rootCmd.AddCommand(noteCmd, categoryCmd, userCmd)
	rootCmd.AddCommand(scanCmd, daemonCmd, statusCmd)
}
