// Package events publishes task lifecycle events over NATS.
//
// Collaborating tools (nudge evaluators, approval gates, dashboards)
// subscribe to workflow.> subjects to react to orchestration progress.
// Publishing is fire-and-forget: a broken event bus never affects
// orchestration results, failures are only logged.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Subjects for task lifecycle events.
const (
	SubjectTaskStarted   = "workflow.task.started"
	SubjectTaskCompleted = "workflow.task.completed"
	SubjectTaskFailed    = "workflow.task.failed"
	SubjectReset         = "workflow.reset"
	SubjectStateLoaded   = "workflow.state.loaded"
)

// Event is the JSON payload published on every subject.
type Event struct {
	ID       string    `json:"id"`
	Workflow string    `json:"workflow,omitempty"`
	TaskID   string    `json:"task_id,omitempty"`
	Blocked  int       `json:"blocked,omitempty"`
	Progress int       `json:"progress"`
	At       time.Time `json:"at"`
}

// Publisher publishes lifecycle events to a NATS connection.
type Publisher struct {
	nc       *nats.Conn
	workflow string
	logger   *zap.Logger
}

// NewPublisher connects to the NATS server at url. The workflow name is
// stamped on every event.
func NewPublisher(url, workflow string, logger *zap.Logger) (*Publisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	nc, err := nats.Connect(url,
		nats.Name("workflowd"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}

	return &Publisher{nc: nc, workflow: workflow, logger: logger}, nil
}

// Publish sends an event on subject. Errors are logged, never returned:
// event delivery is best-effort by design.
func (p *Publisher) Publish(subject, taskID string, progress, blocked int) {
	if p == nil {
		return
	}

	event := Event{
		ID:       uuid.NewString(),
		Workflow: p.workflow,
		TaskID:   taskID,
		Blocked:  blocked,
		Progress: progress,
		At:       time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn("failed to encode event", zap.Error(err))
		return
	}
	if err := p.nc.Publish(subject, payload); err != nil {
		p.logger.Warn("failed to publish event",
			zap.String("subject", subject),
			zap.Error(err))
		return
	}

	p.logger.Debug("event published",
		zap.String("subject", subject),
		zap.String("task", taskID))
}

// Close flushes and closes the connection.
func (p *Publisher) Close() {
	if p == nil || p.nc == nil {
		return
	}
	_ = p.nc.Flush()
	p.nc.Close()
}
