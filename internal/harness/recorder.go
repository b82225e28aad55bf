package harness

import (
	"context"
	"errors"
	"sync"

	log "github.com/sirupsen/logrus"
)

var ErrEmptyMetricName = errors.New("metric name cannot be empty")

// Recorder is the metric sink of one iteration. Later values for the same
// metric replace earlier ones.
type Recorder struct {
	mu      sync.Mutex
	metrics map[string]float64
}

func NewRecorder() *Recorder {
	return &Recorder{metrics: map[string]float64{}}
}

// AddObject records every entry of metrics.
func (r *Recorder) AddObject(_ context.Context, metrics map[string]float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name := range metrics {
		if name == "" {
			return ErrEmptyMetricName
		}
	}

	for name, value := range metrics {
		r.metrics[name] = value
		log.Debugf("recorded metric %s=%v", name, value)
	}

	return nil
}

// Metrics returns a copy of the recorded metrics.
func (r *Recorder) Metrics() map[string]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make(map[string]float64, len(r.metrics))
	for name, value := range r.metrics {
		result[name] = value
	}

	return result
}

// Reset drops all recorded metrics.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.metrics = map[string]float64{}
}
