package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/securegate/securegate/internal/auth"
	jobmetrics "github.com/securegate/securegate/internal/jobs"
)

// SessionPurgeJob removes session audit rows whose credential has expired.
type SessionPurgeJob struct {
	Sessions auth.SessionRepository
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
	clock    func() time.Time
}

// NewSessionPurgeJob wires dependencies for the purge handler.
func NewSessionPurgeJob(sessions auth.SessionRepository, logger *slog.Logger, metrics *jobmetrics.Metrics) *SessionPurgeJob {
	return &SessionPurgeJob{
		Sessions: sessions,
		Logger:   logger,
		Metrics:  metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes TaskSessionPurge tasks.
func (j *SessionPurgeJob) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := j.Metrics.Track("session_purge")

	var payload SessionPurgePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		_ = tracker.End(err)
		return asynq.SkipRetry
	}

	cutoff := j.clock().Add(-payload.OlderThan)
	removed, err := j.Sessions.PurgeExpired(ctx, cutoff)
	if err != nil {
		if j.Logger != nil {
			j.Logger.Error("purge sessions", slog.Any("error", err))
		}
		return tracker.End(err)
	}

	j.Metrics.AddPurgedSessions(removed)
	if j.Logger != nil {
		j.Logger.Info("purged expired sessions", slog.Int64("removed", removed), slog.Time("cutoff", cutoff))
	}
	return tracker.End(nil)
}
