package metrics

import (
	"sync"
	"time"
)

const retainedObservations = 100

type observation struct {
	value float64
	at    time.Time
}

// Collector is an in-memory metrics sink: labeled counters plus rolling
// windows of latency and size observations. Good enough for the /metrics
// endpoint; nothing here survives a restart.
type Collector struct {
	counters  map[string]map[string]int64
	latencies map[string][]time.Duration
	sizes     map[string][]observation
	mu        sync.RWMutex
}

func NewCollector() *Collector {
	return &Collector{
		counters:  make(map[string]map[string]int64),
		latencies: make(map[string][]time.Duration),
		sizes:     make(map[string][]observation),
	}
}

func (c *Collector) IncrementCounter(name string, labels map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	labelKey := "default"
	for k, v := range labels {
		labelKey = k + ":" + v
		break
	}

	if _, exists := c.counters[name]; !exists {
		c.counters[name] = make(map[string]int64)
	}
	c.counters[name][labelKey]++
}

func (c *Collector) ObserveLatency(name string, d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	window := append(c.latencies[name], d)
	if len(window) > retainedObservations {
		window = window[len(window)-retainedObservations:]
	}
	c.latencies[name] = window
}

func (c *Collector) ObserveSize(name string, size float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	window := append(c.sizes[name], observation{value: size, at: time.Now()})
	if len(window) > retainedObservations {
		window = window[len(window)-retainedObservations:]
	}
	c.sizes[name] = window
}

func (c *Collector) GetCounters() map[string]map[string]int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]map[string]int64, len(c.counters))
	for name, byLabel := range c.counters {
		out[name] = make(map[string]int64, len(byLabel))
		for label, v := range byLabel {
			out[name][label] = v
		}
	}
	return out
}

func (c *Collector) GetLatencies() map[string]map[string]float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]map[string]float64)
	for name, window := range c.latencies {
		if len(window) == 0 {
			continue
		}
		var sum time.Duration
		for _, d := range window {
			sum += d
		}
		out[name] = map[string]float64{
			"avg_ms": float64(sum) / float64(len(window)) / float64(time.Millisecond),
		}
	}
	return out
}

func (c *Collector) GetSizes() map[string]map[string]float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]map[string]float64)
	for name, window := range c.sizes {
		if len(window) == 0 {
			continue
		}
		var sum, max float64
		for _, obs := range window {
			sum += obs.value
			if obs.value > max {
				max = obs.value
			}
		}
		out[name] = map[string]float64{
			"avg_bytes": sum / float64(len(window)),
			"max_bytes": max,
		}
	}
	return out
}
