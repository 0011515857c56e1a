// Package cli implements the feescope command line: fee parsing and
// evaluation, schedule lookups and currency conversion.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/amirasaad/feescope/infra/initializer"
	"github.com/amirasaad/feescope/pkg/app"
	"github.com/amirasaad/feescope/pkg/config"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

type options struct {
	offline bool
	json    bool
	envFile string
	timeout time.Duration
}

// NewRootCmd returns the feescope command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "feescope",
		Short: "Estimate fees and convert currencies",
		Long: `feescope evaluates published fee strings such as "1.5% ($1 – $5)" for an
amount, looks fees up in the schedule and converts amounts between currencies.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&opts.offline, "offline", false, "Use the embedded schedule and rate table")
	root.PersistentFlags().BoolVar(&opts.json, "json", false, "Output in JSON format")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Environment file to load")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 15*time.Second, "Timeout for upstream requests")

	root.AddCommand(
		newParseCmd(opts),
		newEvaluateCmd(opts),
		newEstimateCmd(opts),
		newScheduleCmd(opts),
		newConvertCmd(opts),
	)
	return root
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// offlineConfig reads everything from the embedded fixtures.
func offlineConfig() *config.App {
	return &config.App{
		Env:       "cli",
		Log:       &config.Log{Format: "text"},
		Redis:     &config.Redis{},
		FeeSource: &config.FeeSource{Path: initializer.EmbeddedSource},
		ExchangeRate: &config.ExchangeRate{
			Provider: "file",
			FilePath: initializer.EmbeddedSource,
		},
		RateWatch: &config.RateWatch{},
	}
}

// build wires the services for one command run. Only warnings reach stderr.
func (o *options) build(cmd *cobra.Command) (*app.App, context.Context, context.CancelFunc, error) {
	logger := slog.New(log.NewWithOptions(cmd.ErrOrStderr(), log.Options{
		Level:  log.WarnLevel,
		Prefix: "[feescope]",
	}))
	slog.SetDefault(logger)

	cfg := offlineConfig()
	if !o.offline {
		loaded, err := config.Load(o.envFile)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		cfg = loaded
	}
	cfg.RateWatch.Enabled = false

	ctx, cancel := context.WithTimeout(cmd.Context(), o.timeout)
	deps, err := initializer.Build(ctx, cfg, logger)
	if err != nil {
		cancel()
		return nil, nil, nil, fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	return app.New(deps, cfg), ctx, func() {
		cancel()
		if closer, ok := deps.Cache.(io.Closer); ok {
			_ = closer.Close()
		}
	}, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
