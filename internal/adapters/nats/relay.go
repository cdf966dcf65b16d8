package natsadapter

import (
	"fmt"

	"github.com/nats-io/nats.go"
)

// SubscribeZoneEvents forwards raw zone event payloads to fn until the returned
// subscription is unsubscribed. Core NATS is used, so only live events are seen.
func SubscribeZoneEvents(conn *nats.Conn, fn func(data []byte)) (*nats.Subscription, error) {
	sub, err := conn.Subscribe(SubjectZoneEvents+".>", func(msg *nats.Msg) {
		fn(msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe zone events: %w", err)
	}
	return sub, nil
}
