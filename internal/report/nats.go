package report

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/GoSim-25-26J-441/platform-dse/internal/exploration"
)

// Publisher is the part of *nats.Conn the sink needs
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATSSink publishes every exported record as JSON on a subject
type NATSSink struct {
	conn    *nats.Conn
	pub     Publisher
	subject string
}

// NewNATSSink connects to the NATS server at url
func NewNATSSink(url, subject string) (*NATSSink, error) {
	conn, err := nats.Connect(url, nats.Name("platform-dse"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS server %s: %w", url, err)
	}
	return &NATSSink{conn: conn, pub: conn, subject: subject}, nil
}

// NewPublisherSink wraps an existing publisher
func NewPublisherSink(pub Publisher, subject string) *NATSSink {
	return &NATSSink{pub: pub, subject: subject}
}

// Publish sends one record
func (s *NATSSink) Publish(r Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode record %s: %w", r.Config, err)
	}
	if err := s.pub.Publish(s.subject, data); err != nil {
		return fmt.Errorf("failed to publish record %s: %w", r.Config, err)
	}
	return nil
}

// Export implements search.Exporter
func (s *NATSSink) Export(n *exploration.Node) error {
	r, err := NewRecord(n)
	if err != nil {
		return err
	}
	return s.Publish(r)
}

// Close flushes pending messages and closes the connection it owns
func (s *NATSSink) Close() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Flush()
	s.conn.Close()
	return err
}
