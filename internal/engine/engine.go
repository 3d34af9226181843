// Package engine drives the samplers on a fixed cadence and publishes
// immutable snapshots to subscribers.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/hoststat/internal/metrics"
	"github.com/labstack/gommon/log"
)

// ErrInvalidInterval is returned for non-positive refresh intervals.
var ErrInvalidInterval = errors.New("refresh interval must be positive")

// RefreshPresets are the intervals offered by the interface. Any positive
// interval is accepted.
var RefreshPresets = []time.Duration{
	500 * time.Millisecond,
	time.Second,
	2 * time.Second,
	5 * time.Second,
}

// Config carries the engine inputs.
type Config struct {
	RefreshInterval   time.Duration
	Visibility        metrics.Visibility
	InterfacePrefixes []string
}

// Engine owns one sampler per domain. Samplers run only on the engine's
// loop goroutine, or on the caller's goroutine during Start.
type Engine struct {
	cpu     *metrics.CPUSampler
	memory  *metrics.MemorySampler
	network *metrics.NetworkSampler
	disk    *metrics.DiskSampler
	battery *metrics.BatterySampler
	sensors *metrics.SensorSampler
	uptime  func() (uint64, error)

	interval atomic.Int64 // nanoseconds
	reset    chan struct{}
	latest   atomic.Pointer[metrics.Snapshot]
	sequence uint64 // guarded by cycleMu

	lifecycle sync.Mutex // serialises Start, Stop and Close
	cycleMu   sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
	closed    bool

	mu         sync.Mutex
	visibility metrics.Visibility
	subs       []*subscription
}

type subscription struct {
	fn     func(metrics.Snapshot)
	active atomic.Bool
}

// New builds an engine over src.
func New(src metrics.Sources, cfg Config) (*Engine, error) {
	if cfg.RefreshInterval <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInterval, cfg.RefreshInterval)
	}
	e := &Engine{
		cpu:        metrics.NewCPUSampler(src.CPU),
		memory:     metrics.NewMemorySampler(src.Memory),
		network:    metrics.NewNetworkSampler(src.Network, cfg.InterfacePrefixes),
		disk:       metrics.NewDiskSampler(src.Volumes, src.Throughput),
		battery:    metrics.NewBatterySampler(src.Power),
		sensors:    metrics.NewSensorSampler(src.Controller, nil),
		uptime:     src.Uptime,
		reset:      make(chan struct{}, 1),
		visibility: cfg.Visibility,
	}
	e.interval.Store(int64(cfg.RefreshInterval))
	return e, nil
}

// Start runs one collection cycle synchronously, publishes it, and then
// schedules recurring cycles. Starting a running engine is a no-op.
func (e *Engine) Start() error {
	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()

	if e.closed {
		return errors.New("engine is closed")
	}
	if e.cancel != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.collect(ctx)

	e.cancel = cancel
	e.done = make(chan struct{})
	go e.run(ctx, e.done)
	log.Infof("engine: started, refresh interval %v", e.RefreshInterval())
	return nil
}

// Stop cancels the schedule and waits for the loop to exit. When Stop
// returns no further collection or publication happens. Stop must not be
// called from a subscriber callback.
func (e *Engine) Stop() {
	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()
	e.stopLocked()
}

func (e *Engine) stopLocked() {
	if e.cancel == nil {
		return
	}
	e.cancel()
	<-e.done
	e.cancel, e.done = nil, nil
	log.Infof("engine: stopped")
}

// Close stops the engine and releases the sensor connection.
func (e *Engine) Close() error {
	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()

	if e.closed {
		return nil
	}
	e.stopLocked()
	e.closed = true
	return e.sensors.Close()
}

// Running reports whether the recurring schedule is active.
func (e *Engine) Running() bool {
	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()
	return e.cancel != nil
}

// RefreshInterval returns the current interval.
func (e *Engine) RefreshInterval() time.Duration {
	return time.Duration(e.interval.Load())
}

// SetRefreshInterval changes the interval. A running schedule is reset so
// the next cycle fires one new interval from now.
func (e *Engine) SetRefreshInterval(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidInterval, d)
	}
	if time.Duration(e.interval.Swap(int64(d))) == d {
		return nil
	}
	select {
	case e.reset <- struct{}{}:
	default:
	}
	log.Debugf("engine: refresh interval set to %v", d)
	return nil
}

// SetVisibility replaces the display toggles carried by later snapshots.
func (e *Engine) SetVisibility(v metrics.Visibility) {
	e.mu.Lock()
	e.visibility = v
	e.mu.Unlock()
}

// Visibility returns the current display toggles.
func (e *Engine) Visibility() metrics.Visibility {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.visibility
}

// Subscribe registers fn to receive every published snapshot. The returned
// function unsubscribes; once it returns fn is not invoked again. It is
// safe to call from within fn.
func (e *Engine) Subscribe(fn func(metrics.Snapshot)) (unsubscribe func()) {
	sub := &subscription{fn: fn}
	sub.active.Store(true)

	e.mu.Lock()
	e.subs = append(e.subs, sub)
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			sub.active.Store(false)
			e.mu.Lock()
			defer e.mu.Unlock()
			for i, s := range e.subs {
				if s == sub {
					e.subs = append(e.subs[:i:i], e.subs[i+1:]...)
					break
				}
			}
		})
	}
}

// Latest returns the most recently published snapshot.
func (e *Engine) Latest() (metrics.Snapshot, bool) {
	s := e.latest.Load()
	if s == nil {
		return metrics.Snapshot{}, false
	}
	return *s, true
}

// SensorConnState reports the hardware controller connection state.
func (e *Engine) SensorConnState() metrics.ConnState {
	return e.sensors.ConnState()
}

func (e *Engine) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(e.RefreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.reset:
			ticker.Reset(e.RefreshInterval())
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			e.collect(ctx)
		}
	}
}

// collect runs every sampler once, in a fixed order, then publishes.
func (e *Engine) collect(ctx context.Context) {
	e.cycleMu.Lock()
	defer e.cycleMu.Unlock()

	start := time.Now()
	snap := metrics.Snapshot{
		Timestamp: start,
		Interval:  e.RefreshInterval(),
		CPU:       e.cpu.Update(),
		Memory:    e.memory.Update(),
		Network:   e.network.Update(),
		Disk:      e.disk.Update(),
		Battery:   e.battery.Update(),
		Sensors:   e.sensors.Update(),
	}
	if e.uptime != nil {
		if up, err := e.uptime(); err == nil {
			snap.Uptime = up
		}
	}
	e.sequence++
	snap.Sequence = e.sequence

	e.mu.Lock()
	snap.Visibility = e.visibility
	subs := append([]*subscription(nil), e.subs...)
	e.mu.Unlock()

	if ctx.Err() != nil {
		return
	}
	e.latest.Store(&snap)
	log.Debugf("engine: cycle %d collected in %v", snap.Sequence, time.Since(start))

	for _, s := range subs {
		if ctx.Err() != nil {
			return
		}
		if s.active.Load() {
			s.fn(snap)
		}
	}
}
