package telemetry

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// SplunkConfig holds Splunk HTTP Event Collector connection settings.
type SplunkConfig struct {
	HECURL        string
	Token         string
	Index         string
	Source        string
	BatchSize     int
	FlushInterval time.Duration
	Enabled       bool
}

func DefaultSplunkConfig() SplunkConfig {
	return SplunkConfig{
		Index:         "eoladvisor",
		Source:        "eoladvisor",
		BatchSize:     50,
		FlushInterval: 5 * time.Second,
		Enabled:       false,
	}
}

type splunkEvent struct {
	Time   float64        `json:"time"`
	Source string         `json:"source,omitempty"`
	Index  string         `json:"index,omitempty"`
	Event  Event          `json:"event"`
}

// SplunkSink batches Events and POSTs them to a Splunk HEC endpoint.
// A background goroutine flushes on BatchSize or FlushInterval,
// whichever comes first.
type SplunkSink struct {
	cfg    SplunkConfig
	client *http.Client
	logger zerolog.Logger

	mu     sync.Mutex
	buffer []splunkEvent
	stop   chan struct{}
	done   chan struct{}
}

func NewSplunkSink(cfg SplunkConfig, logger zerolog.Logger) *SplunkSink {
	s := &SplunkSink{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger.With().Str("component", "splunk").Logger(),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	if cfg.Enabled {
		go s.flushLoop()
	} else {
		close(s.done)
	}
	return s
}

func (s *SplunkSink) Record(e Event) {
	if !s.cfg.Enabled {
		return
	}
	s.mu.Lock()
	s.buffer = append(s.buffer, splunkEvent{
		Time:   float64(e.Timestamp.Unix()),
		Source: s.cfg.Source,
		Index:  s.cfg.Index,
		Event:  e,
	})
	full := len(s.buffer) >= s.cfg.BatchSize
	s.mu.Unlock()
	if full {
		s.flush()
	}
}

func (s *SplunkSink) flushLoop() {
	defer close(s.done)
	ticker := time.NewTicker(s.cfg.FlushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			s.flush()
			return
		case <-ticker.C:
			s.flush()
		}
	}
}

func (s *SplunkSink) flush() {
	s.mu.Lock()
	if len(s.buffer) == 0 {
		s.mu.Unlock()
		return
	}
	batch := s.buffer
	s.buffer = nil
	s.mu.Unlock()

	var body bytes.Buffer
	for _, ev := range batch {
		if err := json.NewEncoder(&body).Encode(ev); err != nil {
			s.logger.Error().Err(err).Msg("encode splunk event failed")
			return
		}
	}

	req, err := http.NewRequest(http.MethodPost, s.cfg.HECURL, bytes.NewReader(body.Bytes()))
	if err != nil {
		s.logger.Error().Err(err).Msg("build splunk request failed")
		return
	}
	req.Header.Set("Authorization", "Splunk "+s.cfg.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error().Err(err).Msg("splunk HEC request failed")
		return
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 400 {
		s.logger.Error().Int("status", resp.StatusCode).Msg("splunk HEC rejected batch")
	}
}

func (s *SplunkSink) Close() error {
	if !s.cfg.Enabled {
		return nil
	}
	close(s.stop)
	<-s.done
	return nil
}
