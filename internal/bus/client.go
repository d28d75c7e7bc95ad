// Package bus wraps the NATS connection sift uses to receive conversation
// batches and announce completed extraction runs.
package bus

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	// SubjectBatchStored announces a stored batch of normalized
	// conversations ready for extraction.
	SubjectBatchStored = "sift.conversations.stored"

	// SubjectRunCompleted announces a finished extraction run.
	SubjectRunCompleted = "sift.extraction.completed"
)

// BatchStoredEvent is the payload on SubjectBatchStored. Conversations are
// carried raw; ingestion normalizes them.
type BatchStoredEvent struct {
	BatchID       string            `json:"batch_id"`
	Source        string            `json:"source"`
	Conversations []json.RawMessage `json:"conversations"`
}

// RunCompletedEvent is the payload on SubjectRunCompleted.
type RunCompletedEvent struct {
	RunID         string `json:"run_id"`
	BatchID       string `json:"batch_id"`
	Conversations int    `json:"conversations"`
	Features      int    `json:"features"`
	Targets       int    `json:"targets"`
	Failures      int    `json:"failures"`
}

type Client struct {
	conn   *nats.Conn
	subs   []*nats.Subscription
	logger *slog.Logger
}

func NewClient(url, token string, logger *slog.Logger) (*Client, error) {
	opts := []nats.Option{
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Client{conn: nc, logger: logger}, nil
}

func (c *Client) Publish(subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return c.conn.Publish(subject, payload)
}

func (c *Client) Subscribe(subject string, handler func(subject string, data []byte)) error {
	sub, err := c.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Subject, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	c.subs = append(c.subs, sub)
	c.logger.Info("subscribed", "subject", subject)
	return nil
}

func (c *Client) Close() {
	for _, sub := range c.subs {
		_ = sub.Unsubscribe()
	}
	c.conn.Close()
}
