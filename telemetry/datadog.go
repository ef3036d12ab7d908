package telemetry

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DatadogConfig holds DogStatsD agent connection settings.
type DatadogConfig struct {
	Address   string
	Namespace string
	Tags      []string
	Enabled   bool
}

func DefaultDatadogConfig() DatadogConfig {
	return DatadogConfig{Address: "127.0.0.1:8125", Namespace: "eoladvisor", Enabled: false}
}

// DatadogSink forwards telemetry Events to a DogStatsD agent over UDP
// as counters tagged by kind, provider, and risk.
type DatadogSink struct {
	cfg    DatadogConfig
	conn   net.Conn
	logger zerolog.Logger
	mu     sync.Mutex
}

func NewDatadogSink(cfg DatadogConfig, logger zerolog.Logger) (*DatadogSink, error) {
	s := &DatadogSink{cfg: cfg, logger: logger.With().Str("component", "datadog").Logger()}
	if !cfg.Enabled {
		return s, nil
	}
	conn, err := net.Dial("udp", cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("datadog: cannot connect to %s: %w", cfg.Address, err)
	}
	s.conn = conn
	return s, nil
}

func (s *DatadogSink) Record(e Event) {
	if !s.cfg.Enabled || s.conn == nil {
		return
	}
	tags := append([]string{}, s.cfg.Tags...)
	tags = append(tags, "kind:"+string(e.Kind))
	if e.Provider != "" {
		tags = append(tags, "provider:"+e.Provider)
	}
	if e.Risk != "" {
		tags = append(tags, "risk:"+string(e.Risk))
	}
	line := fmt.Sprintf("%s.events:1|c|#%s", s.cfg.Namespace, joinTags(tags))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(500 * time.Millisecond))
	_, _ = s.conn.Write([]byte(line))
}

func (s *DatadogSink) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func joinTags(tags []string) string {
	out := ""
	for i, t := range tags {
		if i > 0 {
			out += ","
		}
		out += t
	}
	return out
}
