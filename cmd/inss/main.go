package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/rgehrsitz/inss-calc/internal/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// initializeLogger creates a zap logger from the configuration, with the
// flag/environment settings taking precedence
func initializeLogger(loggingConfig domain.LoggingConfig, settings *viper.Viper) (*zap.Logger, error) {
	level := loggingConfig.Level
	if override := settings.GetString("log-level"); override != "" {
		level = override
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if override := settings.GetString("log-format"); override != "" {
		format = override
	}
	if format == "" {
		format = "console"
	}

	var config zap.Config
	switch format {
	case "console":
		config = zap.NewDevelopmentConfig()
	case "json":
		config = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)
	config.OutputPaths = []string{"stderr"}

	return config.Build()
}

// newSettings binds the persistent flags of root to INSS_* environment
// variables
func newSettings(root *cobra.Command) *viper.Viper {
	settings := viper.New()
	settings.SetEnvPrefix("INSS")
	settings.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	settings.AutomaticEnv()
	_ = settings.BindPFlag("log-level", root.PersistentFlags().Lookup("log-level"))
	_ = settings.BindPFlag("log-format", root.PersistentFlags().Lookup("log-format"))
	return settings
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "inss %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(cmd.OutOrStdout(), info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.Main.Path + " " + bi.GoVersion
	}
	return ""
}

// app carries what every command needs
type app struct {
	settings *viper.Viper
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "inss",
		Short: "INSS salary history and benefit calculator",
		Long: "Normalizes salary histories from CNIS extracts and benefit letters, " +
			"selects the highest salaries, reconciles excluded ones and computes " +
			"the pension factor and final benefit.",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("log-level", "", "Log level override (debug, info, warn, error) [INSS_LOG_LEVEL]")
	root.PersistentFlags().String("log-format", "", "Log format override (console, json) [INSS_LOG_FORMAT]")

	a := &app{settings: newSettings(root)}

	root.AddCommand(
		a.calculateCmd(),
		a.extractCmd(),
		a.factorCmd(),
		a.simulateCmd(),
		a.compareCmd(),
		a.validateCmd(),
		a.serveCmd(),
		versionCmd(),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
