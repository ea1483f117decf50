// Package metrics exposes Prometheus metrics for completion calls.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"seo-assistant/internal/domain"
)

const namespace = "seo_assistant"

type Completer interface {
	Complete(ctx context.Context, req domain.CompletionRequest) (domain.Completion, error)
}

type Collector struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	tokens   *prometheus.CounterVec
}

// NewCollector registers the completion metrics on reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "completion_requests_total",
				Help:      "Total number of completion calls",
			},
			[]string{"model", "status"}, // status: success, error
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "completion_duration_seconds",
				Help:      "Duration of completion calls in seconds",
				Buckets:   []float64{.25, .5, 1, 2.5, 5, 10, 20, 30, 60, 120},
			},
			[]string{"model"},
		),
		tokens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "completion_tokens_total",
				Help:      "Total tokens reported by completion calls",
			},
			[]string{"model", "type"}, // type: input, output
		),
	}
	for _, col := range []prometheus.Collector{c.requests, c.duration, c.tokens} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Instrument wraps next so every call is counted and timed.
func (c *Collector) Instrument(next Completer) *InstrumentedClient {
	return &InstrumentedClient{next: next, collector: c, now: time.Now}
}

type InstrumentedClient struct {
	next      Completer
	collector *Collector
	now       func() time.Time
}

func (i *InstrumentedClient) Complete(ctx context.Context, req domain.CompletionRequest) (domain.Completion, error) {
	start := i.now()
	out, err := i.next.Complete(ctx, req)
	i.collector.duration.WithLabelValues(req.Model).Observe(i.now().Sub(start).Seconds())

	if err != nil {
		i.collector.requests.WithLabelValues(req.Model, "error").Inc()
		return out, err
	}
	i.collector.requests.WithLabelValues(req.Model, "success").Inc()
	i.collector.tokens.WithLabelValues(req.Model, "input").Add(float64(out.Usage.PromptTokens))
	i.collector.tokens.WithLabelValues(req.Model, "output").Add(float64(out.Usage.CompletionTokens))
	return out, nil
}
