package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"merek-automation/internal/captcha"
	"merek-automation/internal/components/telemetry"
	"merek-automation/internal/config"
	"merek-automation/internal/scrapers/merek"

	"github.com/spf13/cobra"
)

var (
	configPath  string
	sessionPath string
	verbose     bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.json5", "The config file, looked up from the working directory upwards.")
	rootCmd.PersistentFlags().StringVar(&sessionPath, "session", "session.json", "The file the portal session is read from and written to.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output and dump every http message.")
}

type contextKey struct{}

type globals struct {
	engine    *merek.Engine
	telemetry telemetry.Telemetry
}

func engineFrom(cmd *cobra.Command) *merek.Engine {
	return cmd.Context().Value(contextKey{}).(*globals).engine
}

var rootCmd = &cobra.Command{
	Use:          "merek-cli",
	Short:        "merek-cli files trademark applications on the DGIP merek portal one stage at a time.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(verbose)

		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		otel, err := telemetry.Setup(cmd.Context(), "merek-cli", cfg.Otlp)
		if err != nil {
			return fmt.Errorf("setup telemetry: %w", err)
		}

		opts := merek.EngineOptions{
			Portal:    cfg.Portal,
			Telemetry: telemetry.SlogAPI{},
		}
		if verbose {
			output, err := telemetry.NewFilesystemOutput(cfg.DumpDirectory)
			if err != nil {
				return fmt.Errorf("create dump directory: %w", err)
			}
			opts.DumpOutput = output
		}

		recognizer, err := captcha.NewOpenAIRecognizer(cfg.Captcha)
		switch {
		case err == nil:
			opts.Recognizer = recognizer
		case errors.Is(err, captcha.ErrNoApiKey):
			slog.Debug("no captcha api key configured, captchas must be solved by hand")
		default:
			return err
		}

		engine, err := merek.NewEngine(opts)
		if err != nil {
			return fmt.Errorf("create engine: %w", err)
		}

		cmd.SetContext(context.WithValue(cmd.Context(), contextKey{}, &globals{
			engine:    engine,
			telemetry: otel,
		}))
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		g, ok := cmd.Context().Value(contextKey{}).(*globals)
		if !ok {
			return nil
		}
		return g.telemetry.Shutdown(context.Background())
	},
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
