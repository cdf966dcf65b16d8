package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/geooffset/internal/core/domain"
)

const (
	SubjectOffsetComputed = "offset.computed"
	SubjectZoneEvents     = "offset.zones"
)

// streams are created or updated on startup. Computed events are telemetry and expire
// quickly; zone events are kept for a day for late relays.
var streams = []nats.StreamConfig{
	{
		Name:      "OFFSET_COMPUTED",
		Subjects:  []string{SubjectOffsetComputed + ".>"},
		Retention: nats.LimitsPolicy,
		MaxAge:    time.Hour,
		Storage:   nats.FileStorage,
	},
	{
		Name:      "OFFSET_ZONES",
		Subjects:  []string{SubjectZoneEvents + ".>"},
		Retention: nats.InterestPolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
	},
}

// Publisher implements ports.EventPublisher on JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects, enables JetStream and ensures the event streams exist.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := connect(url)
	if err != nil {
		return nil, err
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	if err := ensureStreams(js); err != nil {
		conn.Close()
		return nil, err
	}
	return &Publisher{conn: conn, js: js}, nil
}

func ensureStreams(js nats.JetStreamContext) error {
	for i := range streams {
		cfg := streams[i]
		if _, err := js.AddStream(&cfg); err == nil {
			continue
		}
		if _, err := js.UpdateStream(&cfg); err != nil {
			return fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}
	return nil
}

// PublishOffsetComputed publishes on offset.computed.z<zoom>.
func (p *Publisher) PublishOffsetComputed(ctx context.Context, event *domain.OffsetComputedEvent) error {
	return p.publishJSON(ctx, computedSubject(event.Zoom), event)
}

// PublishZoneEvent publishes on offset.zones.<type>.
func (p *Publisher) PublishZoneEvent(ctx context.Context, event *domain.ZoneEvent) error {
	return p.publishJSON(ctx, SubjectZoneEvents+"."+event.Type, event)
}

func (p *Publisher) publishJSON(ctx context.Context, subject string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", subject, err)
	}
	if _, err := p.js.Publish(subject, data, nats.Context(ctx)); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// Conn exposes the connection for readiness checks, the responder and relays.
func (p *Publisher) Conn() *nats.Conn {
	return p.conn
}

func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// connect opens a NATS connection that retries forever and logs connection changes.
func connect(url string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name("geooffset"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			slog.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return conn, nil
}

// computedSubject buckets events by integer zoom so consumers can filter cheaply.
func computedSubject(zoom float64) string {
	return SubjectOffsetComputed + ".z" + strconv.Itoa(int(math.Floor(zoom)))
}
