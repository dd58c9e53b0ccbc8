// Package jobs contains background maintenance tasks executed by the
// asynq worker.
package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSessionPurge is the task type for purging expired session
	// audit records.
	TaskSessionPurge = "sessions:purge"
)

// SessionPurgePayload describes which rows the purge run removes.
type SessionPurgePayload struct {
	// OlderThan keeps rows whose expiry is within this grace duration of
	// now. Zero means purge everything already expired.
	OlderThan time.Duration `json:"older_than"`
}

// NewSessionPurgeTask constructs an asynq task for a purge run.
func NewSessionPurgeTask(payload SessionPurgePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSessionPurge, data), nil
}
