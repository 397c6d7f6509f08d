// Package service wires match engines, the shard worker pool, persistence
// and the live hub behind the operations the HTTP API exposes.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/crease/internal/adapters/broadcast"
	"github.com/okian/crease/internal/adapters/mq/queue"
	"github.com/okian/crease/internal/adapters/mq/worker"
	"github.com/okian/crease/internal/adapters/repository"
	"github.com/okian/crease/internal/domain/dedupe"
	"github.com/okian/crease/internal/domain/model"
	"github.com/okian/crease/internal/domain/scoring"
	"github.com/okian/crease/internal/domain/types"
	"github.com/okian/crease/pkg/logger"
	"github.com/okian/crease/pkg/metrics"
)

const (
	defaultQueueSize  = 1024
	defaultDedupeSize = 100_000
	defaultMaxOvers   = 50

	// CommandCreateMatch labels the log entry written when a match is created.
	CommandCreateMatch = "create_match"
)

// matchEntry is the service's handle on one match. closed and final are
// only touched by the match's shard worker.
type matchEntry struct {
	engine *scoring.Engine
	closed int
	live   bool
	final  bool
}

// Service implements the API dependencies for live scoring.
type Service struct {
	mu      sync.RWMutex
	matches map[string]*matchEntry

	// Core components
	store   repository.Store
	deduper dedupe.Deduper
	pool    *worker.Pool
	hub     *broadcast.Hub

	// Configuration
	workerCount int
	queueSize   int
	dedupeSize  int
	maxOvers    int
	enforceRest bool
	now         func() time.Time
	newID       func() string

	// State
	started atomic.Bool
	active  atomic.Int64

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		matches:     make(map[string]*matchEntry),
		workerCount: runtime.NumCPU(),
		queueSize:   defaultQueueSize,
		dedupeSize:  defaultDedupeSize,
		maxOvers:    defaultMaxOvers,
		enforceRest: true,
		now:         time.Now,
		newID:       uuid.NewString,
		logger:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	if s.hub == nil {
		s.hub = broadcast.NewHub(broadcast.WithLogger(s.logger))
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.pool = worker.NewPool(s.workerCount, s.queueSize, s, s, worker.WithLogger(s.logger))
	return s
}

// Start loads stored matches and starts the shard workers.
func (s *Service) Start(ctx context.Context) error {
	if s.started.Load() {
		return nil
	}
	s.logger.Info(ctx, "starting scoring service...")

	if err := s.rehydrate(ctx); err != nil {
		return fmt.Errorf("rehydrate matches: %w", err)
	}
	// Workers stop with Stop, not with the caller's context, so commands
	// accepted before shutdown are still applied.
	s.pool.Start(context.WithoutCancel(ctx))
	s.started.Store(true)

	s.logger.Info(ctx, "scoring service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("matches", s.count()),
	)
	return nil
}

// Stop drains the workers, disconnects live subscribers and closes the store.
func (s *Service) Stop(ctx context.Context) error {
	if !s.started.CompareAndSwap(true, false) {
		return nil
	}
	s.logger.Info(ctx, "stopping scoring service...")

	var errs []error
	if err := s.pool.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.hub.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.store.Close(); err != nil {
		errs = append(errs, err)
	}
	s.logger.Info(ctx, "scoring service stopped")
	return errors.Join(errs...)
}

// rehydrate rebuilds an engine for every stored match. Ball event IDs of
// live matches are fed back into the deduper so retries stay idempotent
// across restarts.
func (s *Service) rehydrate(ctx context.Context) error {
	snaps, err := s.store.List(ctx)
	if err != nil {
		return err
	}
	for i := range snaps {
		snap := &snaps[i]
		entry := s.register(snap.Clone())
		for _, in := range snap.Innings {
			if !in.Closed {
				break
			}
			entry.closed++
		}
		entry.final = snap.IsFinal()
		if snap.Status == model.StatusLive {
			entry.live = true
			s.active.Add(1)
			if err := s.replayEventIDs(ctx, snap.ID); err != nil {
				s.logger.Warn(ctx, "failed to restore event ids",
					logger.String("match_id", snap.ID), logger.Error(err))
			}
		}
	}
	metrics.UpdateMatchesActive(int(s.active.Load()))
	if len(snaps) > 0 {
		s.logger.Info(ctx, "matches restored", logger.Int("count", len(snaps)))
	}
	return nil
}

func (s *Service) replayEventIDs(ctx context.Context, matchID string) error {
	log, err := s.store.Log(ctx, matchID)
	if err != nil {
		return err
	}
	for _, e := range log {
		if e.Kind != string(queue.CommandApplyBall) {
			continue
		}
		var cmd queue.Command
		if err := json.Unmarshal(e.Payload, &cmd); err != nil {
			return fmt.Errorf("decode command %d: %w", e.Version, err)
		}
		if cmd.Ball != nil && cmd.Ball.EventID != "" {
			s.deduper.SeenAndRecord(ctx, dedupe.Key(matchID, cmd.Ball.EventID))
		}
	}
	return nil
}

// register wraps m in an engine and makes it addressable.
func (s *Service) register(m *model.Match) *matchEntry {
	entry := &matchEntry{
		engine: scoring.New(m,
			scoring.WithObserver(s.hub),
			scoring.WithClock(s.now),
			scoring.WithBowlerRest(s.enforceRest),
			scoring.WithLogger(s.logger.Named("engine")),
		),
	}
	s.mu.Lock()
	s.matches[m.ID] = entry
	s.mu.Unlock()
	return entry
}

func (s *Service) entry(op, matchID string) (*matchEntry, error) {
	s.mu.RLock()
	e, ok := s.matches[matchID]
	s.mu.RUnlock()
	if !ok {
		return nil, &scoring.Error{Kind: scoring.KindMatchNotFound, Op: op, Msg: "no match " + matchID}
	}
	return e, nil
}

func (s *Service) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matches)
}

// CreateMatch schedules a new match and persists it.
func (s *Service) CreateMatch(ctx context.Context, in types.CreateMatchInput) (model.Snapshot, error) {
	const op = "service.create_match"
	a, b := strings.TrimSpace(in.Teams[0]), strings.TrimSpace(in.Teams[1])
	switch {
	case a == "" || b == "":
		return model.Snapshot{}, fmt.Errorf("%s: %w: both teams are required", op, types.ErrInvalidMatch)
	case a == b:
		return model.Snapshot{}, fmt.Errorf("%s: %w: teams must differ", op, types.ErrInvalidMatch)
	case in.Overs < 1 || in.Overs > s.maxOvers:
		return model.Snapshot{}, fmt.Errorf("%s: %w: overs must be between 1 and %d", op, types.ErrInvalidMatch, s.maxOvers)
	}

	m := model.NewMatch(s.newID(), a, b, in.Overs, s.now().UTC())
	snap := m.Snapshot()
	payload, err := json.Marshal(in)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("%s: %w", op, err)
	}
	entry := repository.LogEntry{Version: 0, Kind: CommandCreateMatch, Payload: payload, AppliedAt: s.now()}
	if err := s.store.Save(ctx, snap, entry); err != nil {
		return model.Snapshot{}, fmt.Errorf("%s: persist: %w", op, err)
	}
	s.register(m)
	s.logger.Info(ctx, "match created",
		logger.String("match_id", m.ID),
		logger.String("teams", a+" v "+b),
		logger.Int("overs", in.Overs))
	return snap, nil
}

// StartMatch records toss and elevens and opens the first innings.
func (s *Service) StartMatch(ctx context.Context, matchID string, in scoring.StartInput) (model.Snapshot, error) { //nolint:gocritic // hugeParam: input is a request value
	cmd := queue.NewCommand(queue.CommandStartMatch, matchID)
	cmd.Start = &in
	return s.do(ctx, "service.start_match", cmd)
}

// ApplyBall scores one delivery. A ball whose event ID was already accepted
// for this match is not applied again: the current snapshot is returned and
// duplicate is true.
func (s *Service) ApplyBall(ctx context.Context, matchID string, in scoring.BallInput) (snap model.Snapshot, duplicate bool, err error) {
	const op = "service.apply_ball"
	e, err := s.entry(op, matchID)
	if err != nil {
		return model.Snapshot{}, false, err
	}

	key := ""
	if id := strings.TrimSpace(in.EventID); id != "" {
		key = dedupe.Key(matchID, id)
		if s.deduper.SeenAndRecord(ctx, key) {
			metrics.RecordBallDuplicate()
			s.logger.Debug(ctx, "duplicate ball skipped",
				logger.String("match_id", matchID), logger.String("event_id", id))
			// A duplicate of a ball still queued sees the snapshot from
			// before that ball is applied.
			return e.engine.Snapshot(), true, nil
		}
	}

	cmd := queue.NewCommand(queue.CommandApplyBall, matchID)
	cmd.Ball = &in
	snap, err = s.do(ctx, op, cmd)
	if err != nil && key != "" && !maybeApplied(err) {
		s.deduper.Unrecord(ctx, key)
	}
	return snap, false, err
}

// maybeApplied reports whether a failed wait could still hide an applied
// command: the caller gave up after the command was queued.
func maybeApplied(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// AssignBowler names the bowler of the next over.
func (s *Service) AssignBowler(ctx context.Context, matchID, playerID string) (model.Snapshot, error) {
	cmd := queue.NewCommand(queue.CommandAssignBowler, matchID)
	cmd.PlayerID = playerID
	return s.do(ctx, "service.assign_bowler", cmd)
}

// AssignBatsman sends a batter to the vacant end.
func (s *Service) AssignBatsman(ctx context.Context, matchID, playerID string) (model.Snapshot, error) {
	cmd := queue.NewCommand(queue.CommandAssignBatsman, matchID)
	cmd.PlayerID = playerID
	return s.do(ctx, "service.assign_batsman", cmd)
}

// StartInnings closes the first innings and opens the second.
func (s *Service) StartInnings(ctx context.Context, matchID string) (model.Snapshot, error) {
	return s.do(ctx, "service.start_innings", queue.NewCommand(queue.CommandStartInnings, matchID))
}

// Abandon ends the match without a result.
func (s *Service) Abandon(ctx context.Context, matchID, reason string) (model.Snapshot, error) {
	cmd := queue.NewCommand(queue.CommandAbandon, matchID)
	cmd.Reason = reason
	return s.do(ctx, "service.abandon", cmd)
}

// do checks the match exists and runs cmd on its shard.
func (s *Service) do(ctx context.Context, op string, cmd queue.Command) (model.Snapshot, error) { //nolint:gocritic // hugeParam: Command is passed by value for channel semantics
	if !s.started.Load() {
		return model.Snapshot{}, types.ErrNotStarted
	}
	if _, err := s.entry(op, cmd.MatchID); err != nil {
		return model.Snapshot{}, err
	}
	snap, err := s.pool.Do(ctx, cmd)
	if errors.Is(err, queue.ErrFull) {
		metrics.RecordQueueEnqueueError()
		s.logger.Warn(ctx, "shard queue full",
			logger.String("match_id", cmd.MatchID),
			logger.Int("shard", s.pool.Shard(cmd.MatchID)))
	}
	return snap, err
}

// Match returns the full snapshot of a match.
func (s *Service) Match(_ context.Context, matchID string) (model.Snapshot, error) {
	e, err := s.entry("service.match", matchID)
	if err != nil {
		return model.Snapshot{}, err
	}
	return e.engine.Snapshot(), nil
}

// Matches lists every match, oldest first.
func (s *Service) Matches(_ context.Context) []model.Summary {
	s.mu.RLock()
	engines := make([]*scoring.Engine, 0, len(s.matches))
	for _, e := range s.matches {
		engines = append(engines, e.engine)
	}
	s.mu.RUnlock()

	snaps := make([]model.Snapshot, len(engines))
	for i, e := range engines {
		snaps[i] = e.Snapshot()
	}
	sort.SliceStable(snaps, func(i, j int) bool {
		if snaps[i].CreatedAt.Equal(snaps[j].CreatedAt) {
			return snaps[i].ID < snaps[j].ID
		}
		return snaps[i].CreatedAt.Before(snaps[j].CreatedAt)
	})
	out := make([]model.Summary, len(snaps))
	for i := range snaps {
		out[i] = snaps[i].Summarize()
	}
	return out
}

// Scorecard returns the read projection of a match.
func (s *Service) Scorecard(ctx context.Context, matchID string) (types.Scorecard, error) {
	snap, err := s.Match(ctx, matchID)
	if err != nil {
		return types.Scorecard{}, err
	}
	return types.BuildScorecard(&snap), nil
}

// Subscribe upgrades the request to a websocket that first receives the
// current snapshot of the match, then every later one. Errors returned
// before the upgrade have not written a response.
func (s *Service) Subscribe(w http.ResponseWriter, r *http.Request, matchID string) error {
	e, err := s.entry("service.subscribe", matchID)
	if err != nil {
		return err
	}
	conn, err := s.hub.Upgrade(w, r)
	if err != nil {
		// The upgrader already answered the request.
		s.logger.Debug(r.Context(), "websocket upgrade failed",
			logger.String("match_id", matchID), logger.Error(err))
		return nil
	}
	// A service stopping between the upgrade and the join has no
	// snapshot to offer.
	if err := s.hub.Join(r.Context(), matchID, conn, func() (model.Snapshot, bool) {
		if !s.started.Load() {
			return model.Snapshot{}, false
		}
		return e.engine.Snapshot(), true
	}); err != nil {
		s.logger.Warn(r.Context(), "failed to join live stream",
			logger.String("match_id", matchID), logger.Error(err))
	}
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started.Load(),
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"maxOvers":    s.maxOvers,
	}
	if s.started.Load() {
		stats["queueLength"] = s.pool.Len(ctx)
		stats["processed"] = s.pool.Processed()
		stats["matches"] = s.count()
		stats["activeMatches"] = s.active.Load()
		stats["liveSubscribers"] = s.hub.Total()
		stats["dedupeEntries"] = s.deduper.Size()
	}
	return stats
}
