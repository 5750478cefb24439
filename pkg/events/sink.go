// Package events forwards the events of committed ledger operations to a
// message broker.
package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cosmossdk.io/log"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// DefaultTopicPrefix is the root topic events are published under.
const DefaultTopicPrefix = "fluxagg/events"

// Publisher delivers one message to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, msg any) error
	Disconnect(ctx context.Context) error
}

// Message is the payload published for one committed event.
type Message struct {
	Operation  string            `json:"operation"`
	Height     int64             `json:"height"`
	Time       time.Time         `json:"time"`
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}

// Messages converts the events of one committed operation.
func Messages(operation string, height int64, blockTime time.Time, evs []sdk.Event) []Message {
	msgs := make([]Message, 0, len(evs))
	for _, ev := range evs {
		attrs := make(map[string]string, len(ev.Attributes))
		for _, attr := range ev.Attributes {
			attrs[attr.Key] = attr.Value
		}
		msgs = append(msgs, Message{
			Operation:  operation,
			Height:     height,
			Time:       blockTime,
			Type:       ev.Type,
			Attributes: attrs,
		})
	}
	return msgs
}

// Topic returns the topic of events of eventType.
func Topic(prefix, eventType string) string {
	return fmt.Sprintf("%s/%s", strings.TrimSuffix(prefix, "/"), eventType)
}

// Sink publishes committed events. A nil Sink or one without a publisher
// drops everything.
type Sink struct {
	pub    Publisher
	prefix string
	logger log.Logger
}

// NewSink returns a sink publishing through pub under prefix.
func NewSink(pub Publisher, prefix string, logger log.Logger) *Sink {
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return &Sink{pub: pub, prefix: prefix, logger: logger}
}

// Publish forwards every event of a committed operation. Delivery failures
// are joined; the ledger state is already committed at this point.
func (s *Sink) Publish(ctx context.Context, operation string, height int64, blockTime time.Time, evs []sdk.Event) error {
	if s == nil || s.pub == nil {
		return nil
	}

	var errs []error
	for _, msg := range Messages(operation, height, blockTime, evs) {
		if err := s.pub.Publish(ctx, Topic(s.prefix, msg.Type), msg); err != nil {
			errs = append(errs, fmt.Errorf("publish %s: %w", msg.Type, err))
		}
	}
	if len(errs) > 0 {
		s.logger.Error("failed to publish events", "operation", operation, "height", height, "failed", len(errs))
	}
	return errors.Join(errs...)
}

// Close disconnects the publisher.
func (s *Sink) Close(ctx context.Context) error {
	if s == nil || s.pub == nil {
		return nil
	}
	return s.pub.Disconnect(ctx)
}
