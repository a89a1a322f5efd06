package audit

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/indieauth-client-discovery/internal/clock/system"
	"github.com/JakeFAU/indieauth-client-discovery/internal/discovery"
	"github.com/JakeFAU/indieauth-client-discovery/internal/id/uuid"
)

// Store persists audit records.
type Store interface {
	InsertDiscovery(ctx context.Context, rec Record) error
}

// Publisher emits audit records as events.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// IDGenerator mints record identifiers.
type IDGenerator interface {
	NewID() (string, error)
}

// Clock supplies record timestamps.
type Clock interface {
	Now() time.Time
}

// Options configures a Recorder. Nil sinks are skipped.
type Options struct {
	Store     Store
	Publisher Publisher
	Topic     string
	IDs       IDGenerator
	Clock     Clock
	Logger    *zap.Logger
}

// Recorder fans each discovery outcome out to the configured sinks.
type Recorder struct {
	store     Store
	publisher Publisher
	topic     string
	ids       IDGenerator
	clock     Clock
	logger    *zap.Logger
}

// NewRecorder builds a Recorder, defaulting to UUIDv7 identifiers and the UTC system clock.
func NewRecorder(opts Options) *Recorder {
	if opts.IDs == nil {
		opts.IDs = uuid.NewUUIDGenerator()
	}
	if opts.Clock == nil {
		opts.Clock = system.New()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Recorder{
		store:     opts.Store,
		publisher: opts.Publisher,
		topic:     opts.Topic,
		ids:       opts.IDs,
		clock:     opts.Clock,
		logger:    opts.Logger,
	}
}

// Record builds the audit row for out and hands it to every sink. Sink failures are logged
// and otherwise ignored; the returned Record is what the sinks were given.
func (r *Recorder) Record(ctx context.Context, clientID string, out discovery.Outcome, elapsed time.Duration) Record {
	id, err := r.ids.NewID()
	if err != nil {
		r.logger.Warn("Failed to generate audit record id", zap.Error(err))
	}
	rec := newRecord(id, clientID, out, elapsed, r.clock.Now())
	if id == "" {
		return rec
	}

	if r.store != nil {
		if err := r.store.InsertDiscovery(ctx, rec); err != nil {
			r.logger.Warn("Failed to store audit record",
				zap.String("record_id", rec.ID),
				zap.String("client_id", clientID),
				zap.Error(err),
			)
		}
	}
	if r.publisher != nil {
		msgID, err := r.publisher.Publish(ctx, r.topic, rec)
		if err != nil {
			r.logger.Warn("Failed to publish audit record",
				zap.String("record_id", rec.ID),
				zap.String("topic", r.topic),
				zap.Error(err),
			)
		} else {
			r.logger.Debug("Published audit record",
				zap.String("record_id", rec.ID),
				zap.String("message_id", msgID),
			)
		}
	}
	return rec
}
