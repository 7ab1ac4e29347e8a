package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/treediff/treediff/internal/cli"
	"github.com/treediff/treediff/internal/utils"
	"github.com/treediff/treediff/internal/version"
)

var (
	home, _        = os.UserHomeDir()
	configFileName = "config"
)

var logLevel = new(slog.LevelVar)

var rootCmd = &cobra.Command{
	Use:   "treediff DIR1 DIR2",
	Short: "Compare two directory trees at a fixed depth",
	Long: `treediff walks two directory trees and pairs up the names found at a
fixed depth (default 1). Each name is classified: MATCHES when both
subtrees hold identical contents, DIFFERS when they do not, ONLY IN when
the name exists on a single side.

Typical use: a backup directory next to a live copy of the same projects,
to see at a glance which projects changed and which exist on one side
only.`,
	Version: version.Detailed(),
	Args:    cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			logLevel.Set(slog.LevelDebug)
		}
		slog.Debug("starting", "app", version.ShortWithApp())

		// create & validate config
		cfg := &cli.Config{
			Left:     args[0],
			Right:    args[1],
			Depth:    viper.GetInt("depth"),
			Excludes: viper.GetStringSlice("excludes"),
			JSON:     viper.GetBool("json"),
			NoColor:  viper.GetBool("no_color"),
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		cmd.SilenceUsage = true
		return cli.Run(cmd.Context(), cfg, os.Stdout)
	},
}

func init() {
	rootCmd.Flags().SortFlags = false
	rootCmd.Flags().IntP("depth", "d", 1, "depth at which entries pair up")
	rootCmd.Flags().StringSliceP("exclude", "x", nil, "glob patterns skipped on both sides")
	rootCmd.Flags().Bool("json", false, "write one JSON object per result instead of the table")
	rootCmd.Flags().Bool("no-color", false, "disable colored markers")
	rootCmd.Flags().BoolP("verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file")
}

func main() {
	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      logLevel,
		TimeFormat: time.Kitchen,
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})
	slog.SetDefault(slog.New(handler))

	// Setup root context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) error {
	// config path
	if cmd.Flag("config").Changed {
		configFilePath, _ := cmd.Flags().GetString("config")
		if !utils.FileExists(configFilePath) {
			return fmt.Errorf("config file %q does not exist", configFilePath)
		}
		viper.SetConfigFile(configFilePath)
	} else {
		viper.AddConfigPath(filepath.Join(home, ".treediff"))
		viper.AddConfigPath(filepath.Join(home, ".config/treediff"))
		viper.SetConfigName(configFileName)
		viper.SetConfigType("json")
	}

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		enoent := errors.Is(err, os.ErrNotExist)
		_, ok := err.(viper.ConfigFileNotFoundError)
		if !enoent && !ok {
			return fmt.Errorf("config read '%s': %w", viper.ConfigFileUsed(), err)
		}
	}

	// Bind flags to viper
	viper.BindPFlag("depth", cmd.Flags().Lookup("depth"))
	viper.BindPFlag("excludes", cmd.Flags().Lookup("exclude"))
	viper.BindPFlag("json", cmd.Flags().Lookup("json"))
	viper.BindPFlag("no_color", cmd.Flags().Lookup("no-color"))

	// Set up environment variables
	viper.SetEnvPrefix("TREEDIFF")
	viper.AutomaticEnv()

	return nil
}
