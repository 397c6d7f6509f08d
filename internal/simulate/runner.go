package simulate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/crease/pkg/logger"
)

// Run plays cfg.Matches matches with cfg.Workers in flight and verifies each
// one. It returns an error when any match fails to finish or to add up.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	log := logger.Get().Named("simulate")
	stats := &Stats{StartTime: time.Now()}
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(stats.StartTime.UnixNano())
	}

	log.Info(ctx, "starting crease simulation",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("matches", cfg.Matches),
		logger.Int("overs", cfg.Overs),
		logger.Int("workers", cfg.Workers),
		logger.Uint64("seed", seed),
		logger.Bool("watch", cfg.Watch))

	c := newClient(cfg.BaseURL, cfg.Timeout)
	if err := c.health(ctx); err != nil {
		return stats, err
	}

	jobs := make(chan int)
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for w := 0; w < max(cfg.Workers, 1); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := range jobs {
				if err := playOne(ctx, cfg, c, seed, n, stats, log); err != nil {
					stats.MatchesFailed.Add(1)
					mu.Lock()
					errs = append(errs, err)
					mu.Unlock()
				}
			}
		}()
	}

feed:
	for n := 0; n < cfg.Matches; n++ {
		select {
		case jobs <- n:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	stats.Duration = time.Since(stats.StartTime)
	displayFinalStats(ctx, log, stats)
	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}
	return stats, errors.Join(errs...)
}

func playOne(ctx context.Context, cfg *Config, c *client, seed uint64, n int, stats *Stats, log logger.Logger) error {
	p := newPlayer(cfg, c, seed, n, stats)
	snap, err := p.play(ctx)
	if err != nil {
		return fmt.Errorf("match %d: %w", n, err)
	}
	stats.MatchesPlayed.Add(1)

	final, err := c.match(ctx, snap.ID)
	if err != nil {
		return fmt.Errorf("match %d: %w", n, err)
	}
	card, err := c.scorecard(ctx, snap.ID)
	if err != nil {
		return fmt.Errorf("match %d: %w", n, err)
	}
	if final.Version != snap.Version {
		return fmt.Errorf("%w: %s read version %d after final version %d", ErrMismatch, snap.ID, final.Version, snap.Version)
	}
	if err := verifyMatch(&final, &card); err != nil {
		return err
	}
	stats.MatchesVerified.Add(1)

	if cfg.Verbose {
		log.Info(ctx, "match verified",
			logger.String("match_id", final.ID),
			logger.String("result", final.Result.Summary),
			logger.Uint64("version", final.Version))
	}
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var ballsPerSecond float64
	if stats.Duration > 0 {
		ballsPerSecond = float64(stats.BallsSent.Load()) / stats.Duration.Seconds()
	}
	log.Info(ctx, "final statistics",
		logger.Int64("matchesPlayed", stats.MatchesPlayed.Load()),
		logger.Int64("matchesVerified", stats.MatchesVerified.Load()),
		logger.Int64("matchesFailed", stats.MatchesFailed.Load()),
		logger.Int64("ballsSent", stats.BallsSent.Load()),
		logger.Int64("duplicates", stats.Duplicates.Load()),
		logger.Int64("commands", stats.Commands.Load()),
		logger.Int64("framesReceived", stats.FramesReceived.Load()),
		logger.Duration("duration", stats.Duration),
		logger.Float64("ballsPerSecond", ballsPerSecond))
}
