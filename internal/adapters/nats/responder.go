package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/geooffset/internal/core/domain"
	"github.com/samirrijal/geooffset/internal/pkg/metrics"
)

const (
	SubjectCompute = "offset.compute"
	QueueWorkers   = "offset-workers"
)

// OffsetComputer is the slice of the offset service the responder needs.
type OffsetComputer interface {
	Compute(ctx context.Context, req domain.OffsetRequest) (*domain.OffsetResult, error)
}

// Reply is the payload sent back on offset.compute.
type Reply struct {
	Result  *domain.OffsetResult `json:"result,omitempty"`
	Error   string               `json:"error,omitempty"`
	Message string               `json:"message,omitempty"`
}

// Responder serves offset requests over NATS request/reply in a queue group,
// so several workers share the load.
type Responder struct {
	conn    *nats.Conn
	svc     OffsetComputer
	timeout time.Duration
	sub     *nats.Subscription
}

// NewResponder creates a responder on an existing connection.
func NewResponder(conn *nats.Conn, svc OffsetComputer, timeout time.Duration) *Responder {
	return &Responder{conn: conn, svc: svc, timeout: timeout}
}

// Start subscribes to offset.compute. Replies are sent until Close.
func (r *Responder) Start(ctx context.Context) error {
	sub, err := r.conn.QueueSubscribe(SubjectCompute, QueueWorkers, func(msg *nats.Msg) {
		reply := r.handle(ctx, msg.Data)
		if err := msg.Respond(reply); err != nil {
			slog.Warn("nats respond", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", SubjectCompute, err)
	}
	r.sub = sub
	return nil
}

// handle decodes one request and encodes the reply. It never fails; errors travel
// in the reply body.
func (r *Responder) handle(ctx context.Context, data []byte) []byte {
	var req domain.OffsetRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return encodeReply(nil, fmt.Errorf("%w: decode request: %v", domain.ErrInvalidRequest, err))
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	res, err := r.svc.Compute(ctx, req)
	return encodeReply(res, err)
}

func encodeReply(res *domain.OffsetResult, err error) []byte {
	var reply Reply
	if err != nil {
		reply.Error = domain.ErrorCode(err)
		reply.Message = err.Error()
		metrics.NATSRequests.WithLabelValues(reply.Error).Inc()
	} else {
		reply.Result = res
		metrics.NATSRequests.WithLabelValues("ok").Inc()
	}
	data, mErr := json.Marshal(reply)
	if mErr != nil {
		return []byte(`{"error":"internal_error","message":"encode reply"}`)
	}
	return data
}

// Close unsubscribes, letting in-flight handlers finish.
func (r *Responder) Close() {
	if r.sub != nil {
		_ = r.sub.Drain()
	}
}
