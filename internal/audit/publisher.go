package audit

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/stagepass/trust-safety/pkg/logger"
)

// Event describes a single status transition on a trust entity.
type Event struct {
	EntityKind string    `json:"entity_kind"`
	EntityID   uuid.UUID `json:"entity_id"`
	OldStatus  string    `json:"old_status"`
	NewStatus  string    `json:"new_status"`
	ActorID    uuid.UUID `json:"actor_id"`
	At         time.Time `json:"at"`
}

// Publisher delivers transition events to the platform's audit sink.
// Delivery is best-effort: Emit never fails the operation that produced the
// transition.
type Publisher interface {
	Emit(event Event)
}

// NATSPublisher publishes transition events to NATS subjects of the form
// <prefix>.<entity-kind>.transition.
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
}

// NewNATSPublisher connects to the NATS server at the given URL.
func NewNATSPublisher(url, subjectPrefix string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to nats: %w", err)
	}
	return &NATSPublisher{conn: conn, prefix: subjectPrefix}, nil
}

// Emit publishes the event, logging and swallowing any failure.
func (p *NATSPublisher) Emit(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error("failed to encode audit event", zap.Error(err))
		return
	}

	subject := fmt.Sprintf("%s.%s.transition", p.prefix, event.EntityKind)
	if err := p.conn.Publish(subject, payload); err != nil {
		logger.Warn("failed to publish audit event",
			zap.String("subject", subject),
			zap.String("entity_id", event.EntityID.String()),
			zap.Error(err),
		)
	}
}

// Close drains the NATS connection.
func (p *NATSPublisher) Close() {
	if p.conn != nil {
		_ = p.conn.Drain()
	}
}

// NopPublisher discards events. Used when the sink is disabled.
type NopPublisher struct{}

func (NopPublisher) Emit(Event) {}

// Recorder captures events in memory for tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Emit(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of the captured events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}
