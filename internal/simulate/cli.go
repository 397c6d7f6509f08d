package simulate

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/crease/pkg/logger"
)

// Defaults for the simulate command.
const (
	DefaultBaseURL = "http://localhost:9080"
	DefaultMatches = 20
	DefaultOvers   = 5
	DefaultTimeout = 30 * time.Second
	DefaultReplay  = 0.05
	defaultRunTime = 10 * time.Minute
)

// NewCommand builds the simulate CLI.
func NewCommand() *cobra.Command {
	cfg := &Config{}
	var (
		logFormat string
		runTime   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play random matches against a crease server and verify them",
		Long: `Plays random limited-overs matches through the crease HTTP API.

Every finished match is read back and checked: runs must add up across the
batting, bowling and extras columns and the result must follow from the two
innings totals. A share of balls is sent twice to check that replays are
answered as duplicates.

Example:
  simulate --matches 100 --overs 20 --workers 16
  simulate --url http://localhost:8080 --watch --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(*cobra.Command, []string) error {
			return cfg.validate()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.Init(logger.WithFormat(logFormat), logger.WithOutput(cmd.OutOrStdout())); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			if cfg.Verbose {
				_ = logger.SetLevelString("debug")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), runTime)
			defer cancel()
			_, err := Run(ctx, cfg)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", DefaultBaseURL, "base URL of the service")
	f.IntVar(&cfg.Matches, "matches", DefaultMatches, "number of matches to play")
	f.IntVar(&cfg.Overs, "overs", DefaultOvers, "overs per innings")
	f.IntVar(&cfg.Workers, "workers", runtime.NumCPU(), "matches played concurrently")
	f.DurationVar(&cfg.Timeout, "timeout", DefaultTimeout, "HTTP request timeout")
	f.Uint64Var(&cfg.Seed, "seed", 0, "ball generator seed (0 picks one)")
	f.Float64Var(&cfg.Replay, "replay", DefaultReplay, "share of balls sent twice")
	f.BoolVar(&cfg.Watch, "watch", false, "follow each match on its live websocket")
	f.BoolVarP(&cfg.Verbose, "verbose", "v", false, "log every match result")
	f.StringVar(&logFormat, "log-format", "text", "log format (text|json)")
	f.DurationVar(&runTime, "deadline", defaultRunTime, "overall run deadline")
	return cmd
}

func (c *Config) validate() error {
	switch {
	case c.Matches < 1:
		return fmt.Errorf("%w: --matches must be positive", ErrInvalidFlag)
	case c.Overs < 1:
		return fmt.Errorf("%w: --overs must be positive", ErrInvalidFlag)
	case c.Replay < 0 || c.Replay > 1:
		return fmt.Errorf("%w: --replay must be between 0 and 1", ErrInvalidFlag)
	}
	return nil
}
