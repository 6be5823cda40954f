package kafka

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// HealthCheck implements ports.HealthChecker by dialing the first reachable broker.
type HealthCheck struct {
	brokers []string
	dial    func(ctx context.Context, network, address string) (*kafka.Conn, error)
}

// NewHealthCheck creates a Kafka health checker.
func NewHealthCheck(brokers []string) *HealthCheck {
	return &HealthCheck{brokers: brokers, dial: kafka.DialContext}
}

// Ping succeeds if any broker accepts a connection.
func (h *HealthCheck) Ping(ctx context.Context) error {
	var lastErr error
	for _, b := range h.brokers {
		conn, err := h.dial(ctx, "tcp", b)
		if err != nil {
			lastErr = err
			continue
		}
		return conn.Close()
	}
	if lastErr == nil {
		return fmt.Errorf("no kafka brokers configured")
	}
	return fmt.Errorf("kafka unreachable: %w", lastErr)
}

// Name returns the dependency name.
func (h *HealthCheck) Name() string {
	return "kafka"
}
