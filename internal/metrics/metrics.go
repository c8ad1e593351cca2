package metrics

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"aivisibility/internal/models"
)

var (
	wizardStepDesc = prometheus.NewDesc(
		"aivis_wizard_domains",
		"Number of domains currently at each wizard step",
		[]string{"step", "step_name"},
		nil,
	)

	cipherFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "aivis_token_cipher_failures_total",
		Help: "Token encryption and decryption failures by operation",
	}, []string{"op"})

	streamEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "aivis_stream_events_total",
		Help: "Analysis engine events relayed to clients by stream and event name",
	}, []string{"stream", "event"})

	upstreamFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "aivis_upstream_request_failures_total",
		Help: "Failed analysis engine requests and streams by stream",
	}, []string{"stream"})
)

// StepCounter reports how many domains sit at each wizard step.
type StepCounter interface {
	CountDomainsByStep(ctx context.Context) (map[int]int, error)
}

// StepCollector is a custom Prometheus collector that reads wizard step
// counts from the database on each scrape.
type StepCollector struct {
	counter StepCounter
}

func NewStepCollector(counter StepCounter) *StepCollector {
	return &StepCollector{counter: counter}
}

// Describe sends the metric descriptor to the channel.
func (c *StepCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- wizardStepDesc
}

// Collect emits one gauge per wizard step, including empty steps.
func (c *StepCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	counts, err := c.counter.CountDomainsByStep(ctx)
	if err != nil {
		slog.Error("failed to collect wizard step metrics", "error", err)
		return
	}
	for step := models.StepDomainSubmission; step <= models.StepReport; step++ {
		ch <- prometheus.MustNewConstMetric(
			wizardStepDesc,
			prometheus.GaugeValue,
			float64(counts[step]),
			strconv.Itoa(step),
			models.StepName(step),
		)
	}
}

var initOnce sync.Once

// Init registers the collectors with the default registry.
// Must be called once at startup.
func Init(counter StepCounter) {
	initOnce.Do(func() {
		prometheus.MustRegister(NewStepCollector(counter), cipherFailures, streamEvents, upstreamFailures)
	})
}

// RecordCipherFailure counts a failed encrypt or decrypt.
func RecordCipherFailure(op string) {
	cipherFailures.WithLabelValues(op).Inc()
}

// RecordStreamEvent counts an event relayed on a stream.
func RecordStreamEvent(stream, event string) {
	streamEvents.WithLabelValues(stream, event).Inc()
}

// RecordUpstreamFailure counts a failed engine request or stream.
func RecordUpstreamFailure(stream string) {
	upstreamFailures.WithLabelValues(stream).Inc()
}
