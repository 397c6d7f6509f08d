package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/okian/crease/internal/adapters/mq/queue"
	"github.com/okian/crease/internal/adapters/repository"
	"github.com/okian/crease/internal/domain/model"
	"github.com/okian/crease/internal/domain/scoring"
	"github.com/okian/crease/pkg/logger"
	"github.com/okian/crease/pkg/metrics"
)

// Apply runs cmd against its match engine. It is called from the match's
// shard worker only.
func (s *Service) Apply(ctx context.Context, cmd queue.Command) (model.Snapshot, error) { //nolint:gocritic // hugeParam: Command is passed by value for channel semantics
	const op = "service.apply"
	e, err := s.entry(op, cmd.MatchID)
	if err != nil {
		return model.Snapshot{}, err
	}

	var snap model.Snapshot
	switch cmd.Kind {
	case queue.CommandStartMatch:
		if cmd.Start == nil {
			return model.Snapshot{}, fmt.Errorf("%s: start command without input", op)
		}
		snap, err = e.engine.StartMatch(ctx, *cmd.Start)
	case queue.CommandApplyBall:
		if cmd.Ball == nil {
			return model.Snapshot{}, fmt.Errorf("%s: ball command without input", op)
		}
		snap, err = e.engine.ApplyBall(ctx, *cmd.Ball)
		if err == nil {
			metrics.RecordBall(ballLabel(*cmd.Ball))
		}
	case queue.CommandAssignBowler:
		snap, err = e.engine.AssignBowler(ctx, cmd.PlayerID)
	case queue.CommandAssignBatsman:
		snap, err = e.engine.AssignBatsman(ctx, cmd.PlayerID)
	case queue.CommandStartInnings:
		snap, err = e.engine.StartInnings(ctx)
	case queue.CommandAbandon:
		snap, err = e.engine.Abandon(ctx, cmd.Reason)
	default:
		return model.Snapshot{}, fmt.Errorf("%s: unknown command %q", op, cmd.Kind)
	}
	if err != nil {
		return model.Snapshot{}, err
	}
	s.track(ctx, e, &snap)
	return snap, nil
}

// Record persists the snapshot cmd produced together with its log entry.
func (s *Service) Record(ctx context.Context, cmd queue.Command, snap model.Snapshot) error { //nolint:gocritic // hugeParam: mirrors the worker Recorder contract
	payload, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("encode command: %w", err)
	}
	return s.store.Save(ctx, snap, repository.LogEntry{
		Version:   snap.Version,
		Kind:      string(cmd.Kind),
		Payload:   payload,
		AppliedAt: s.now(),
	})
}

// track updates lifecycle metrics from the snapshot a command produced.
func (s *Service) track(ctx context.Context, e *matchEntry, snap *model.Snapshot) {
	for _, in := range snap.Innings[e.closed:] {
		if !in.Closed {
			break
		}
		e.closed++
		metrics.RecordInningsClosed(string(in.ClosedReason))
	}
	if snap.Status == model.StatusLive && !e.live {
		e.live = true
		metrics.UpdateMatchesActive(int(s.active.Add(1)))
	}
	if snap.IsFinal() && !e.final {
		e.final = true
		if e.live {
			metrics.UpdateMatchesActive(int(s.active.Add(-1)))
		}
		metrics.RecordMatchFinished(string(snap.Status))
		s.deduper.Forget(ctx, snap.ID)
		summary := ""
		if snap.Result != nil {
			summary = snap.Result.Summary
		}
		s.logger.Info(ctx, "match finished",
			logger.String("match_id", snap.ID),
			logger.String("status", string(snap.Status)),
			logger.String("result", summary))
	}
}

// ballLabel classifies an accepted ball for metrics.
func ballLabel(in scoring.BallInput) string { //nolint:gocritic // hugeParam: request value
	ev, err := scoring.Parse(in)
	if err != nil {
		return "unknown"
	}
	switch ev := ev.(type) {
	case scoring.ExtraEvent:
		return string(ev.Kind)
	case scoring.DismissalEvent:
		return "wicket"
	case scoring.RunsEvent:
		if b := ev.Boundary(); b != model.BoundaryNone {
			return string(b)
		}
		return "runs"
	default:
		return "unknown"
	}
}
