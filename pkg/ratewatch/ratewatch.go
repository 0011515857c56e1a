// Package ratewatch polls a currency pair and keeps a short rolling history
// of its rate.
package ratewatch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/amirasaad/feescope/pkg/currency"
	"github.com/amirasaad/feescope/pkg/provider"
	"github.com/shopspring/decimal"
)

const (
	DefaultInterval   = 5 * time.Second
	DefaultWindow     = 60 * time.Second
	DefaultMaxSamples = 18
)

// Sample is one observed rate.
type Sample struct {
	At   time.Time `json:"at"`
	Rate float64   `json:"rate"`
}

// Snapshot is the watcher state at a point in time.
type Snapshot struct {
	Pair        string     `json:"pair"`
	Rate        *float64   `json:"rate"`
	PrevRate    *float64   `json:"prev_rate"`
	ChangePct   *float64   `json:"change_pct"`
	Direction   string     `json:"direction,omitempty"`
	Samples     []Sample   `json:"samples"`
	Stats       *Stats     `json:"stats,omitempty"`
	LastUpdated *time.Time `json:"last_updated"`
	Source      string     `json:"source,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// Options tune a Watcher. Zero values take the defaults.
type Options struct {
	Interval   time.Duration
	Window     time.Duration
	MaxSamples int
	Logger     *slog.Logger
	Now        func() time.Time
}

// Watcher polls one pair.
type Watcher struct {
	src      provider.PairSource
	from, to currency.Code
	opts     Options
	logger   *slog.Logger

	mu    sync.RWMutex
	state Snapshot
}

// New returns a watcher for from/to. Call Run to start polling.
func New(src provider.PairSource, from, to currency.Code, opts Options) *Watcher {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	if opts.MaxSamples <= 0 {
		opts.MaxSamples = DefaultMaxSamples
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	pair := from.String() + "/" + to.String()
	return &Watcher{
		src:    src,
		from:   from,
		to:     to,
		opts:   opts,
		logger: logger.With("component", "ratewatch", "pair", pair),
		state:  Snapshot{Pair: pair, Samples: []Sample{}},
	}
}

// Run polls immediately and then every interval until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Info("Rate watcher started", "interval", w.opts.Interval)
	_ = w.Refresh(ctx)

	ticker := time.NewTicker(w.opts.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Rate watcher stopped")
			return ctx.Err()
		case <-ticker.C:
			_ = w.Refresh(ctx)
		}
	}
}

// Refresh fetches the pair once. A failure is kept in the snapshot and the
// last good rate is left in place.
func (w *Watcher) Refresh(ctx context.Context) error {
	q, err := w.src.FetchQuote(ctx, w.from, w.to)
	if err != nil {
		w.logger.Warn("Rate poll failed", "error", err)
		w.mu.Lock()
		w.state.Error = err.Error()
		w.mu.Unlock()
		return err
	}
	w.record(q.Rate, q.Source)
	return nil
}

// record stamps samples with the poll time, not the quote time.
func (w *Watcher) record(rate float64, source string) {
	now := w.opts.Now()

	w.mu.Lock()
	defer w.mu.Unlock()

	samples := make([]Sample, 0, len(w.state.Samples)+1)
	for _, s := range w.state.Samples {
		if now.Sub(s.At) < w.opts.Window {
			samples = append(samples, s)
		}
	}
	samples = append(samples, Sample{At: now, Rate: rate})
	if len(samples) > w.opts.MaxSamples {
		samples = samples[len(samples)-w.opts.MaxSamples:]
	}

	prev := w.state.Rate
	if prev != nil && *prev != 0 {
		pct, _ := decimal.NewFromFloat((rate - *prev) / *prev * 100).Round(2).Float64()
		w.state.ChangePct = &pct
	}
	w.state.Direction = ""
	if prev != nil {
		switch {
		case rate > *prev:
			w.state.Direction = "up"
		case rate < *prev:
			w.state.Direction = "down"
		}
	}
	w.state.PrevRate = prev
	w.state.Rate = &rate
	w.state.Samples = samples
	w.state.LastUpdated = &now
	w.state.Source = source
	w.state.Error = ""
}

// Snapshot returns a copy of the current state.
func (w *Watcher) Snapshot() Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	s := w.state
	s.Samples = make([]Sample, len(w.state.Samples))
	copy(s.Samples, w.state.Samples)
	s.Stats = CalculateStats(s.Samples)
	return s
}

// Stats summarises the samples in the window.
type Stats struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// CalculateStats returns nil for an empty window.
func CalculateStats(samples []Sample) *Stats {
	if len(samples) == 0 {
		return nil
	}
	st := &Stats{Min: samples[0].Rate, Max: samples[0].Rate, Count: len(samples)}
	sum := decimal.Zero
	for _, s := range samples {
		st.Min = min(st.Min, s.Rate)
		st.Max = max(st.Max, s.Rate)
		sum = sum.Add(decimal.NewFromFloat(s.Rate))
	}
	st.Average, _ = sum.Div(decimal.NewFromInt(int64(len(samples)))).Round(4).Float64()
	return st
}
