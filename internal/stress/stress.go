// File: internal/stress/stress.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package stress drives concurrent writers against one ring and checks the
// reservation invariants afterwards.
package stress

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/momentics/hioload-ring/api"
	"github.com/momentics/hioload-ring/control"
	"github.com/momentics/hioload-ring/core/concurrency"
	hconc "github.com/momentics/hioload-ring/internal/concurrency"
	"github.com/momentics/hioload-ring/pool"
)

// cancelCheckEvery is how many adds a writer performs between context checks.
const cancelCheckEvery = 1024

// ErrInvariant marks a run whose counters disagree.
var ErrInvariant = errors.New("ring invariant violated")

// Options selects the ring, allocator and load shape for one run.
type Options struct {
	Name          string
	Capacity      int
	Writers       int
	AddsPerWriter int
	Workers       int
	Pin           bool
	Allocator     string
	Budget        int
	SnapshotHead  int

	// Registerer receives ring metrics when set.
	Registerer prometheus.Registerer
	// Probes receives ring and allocator probes when set.
	Probes *control.DebugProbes
}

// OptionsFromConfig maps a run configuration onto Options.
func OptionsFromConfig(cfg *control.Config) Options {
	return Options{
		Name:          "stress",
		Capacity:      cfg.Capacity,
		Writers:       cfg.Writers,
		AddsPerWriter: cfg.AddsPerWriter,
		Workers:       cfg.Workers,
		Pin:           cfg.Pin,
		Allocator:     cfg.Allocator,
		Budget:        cfg.Budget,
		SnapshotHead:  cfg.SnapshotHead,
	}
}

// Result summarizes one run.
type Result struct {
	Adds           int64
	Reservations   int64
	Retries        int64
	Cursor         uint64
	ExpectedCursor uint64
	Head           []int64
	Allocator      api.AllocatorStats
	Executor       map[string]int64
	Duration       time.Duration
	Canceled       bool
}

// Verify checks that every completed Add advanced the cursor exactly once and
// that all backing arrays were returned.
func (r Result) Verify() error {
	var errs []error
	if r.Reservations != r.Adds {
		errs = append(errs, fmt.Errorf("%w: %d reservations for %d adds", ErrInvariant, r.Reservations, r.Adds))
	}
	if r.Cursor != r.ExpectedCursor {
		errs = append(errs, fmt.Errorf("%w: cursor %d, expected %d", ErrInvariant, r.Cursor, r.ExpectedCursor))
	}
	if !r.Allocator.Balanced() {
		errs = append(errs, fmt.Errorf("%w: allocator unbalanced %+v", ErrInvariant, r.Allocator))
	}
	return errors.Join(errs...)
}

// counter is the observer the driver always installs.
type counter struct {
	reservations atomic.Int64
	retries      atomic.Int64
}

func (c *counter) OnReserve(uint64) { c.reservations.Add(1) }
func (c *counter) OnContention()    { c.retries.Add(1) }

func newAllocator(o Options, log *zap.Logger) (*pool.Counting[int64], error) {
	var base api.Allocator[int64]
	switch o.Allocator {
	case "", control.AllocatorHeap:
		base = pool.Heap[int64]{}
	case control.AllocatorSlab:
		base = pool.NewSlab[int64](nil, 0)
	default:
		return nil, fmt.Errorf("allocator %q: %w", o.Allocator, api.ErrInvalidArgument)
	}
	if o.Budget > 0 {
		base = pool.NewBudget(base, o.Budget, pool.WithBudgetLogger(log))
	}
	return pool.NewCounting(base), nil
}

// Run executes the load described by o. Writers stop early when ctx is done;
// an Add already started always completes.
func Run(ctx context.Context, o Options, log *zap.Logger) (Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if o.Name == "" {
		o.Name = "stress"
	}
	log = log.With(zap.String("ring", o.Name))

	alloc, err := newAllocator(o, log)
	if err != nil {
		return Result{}, err
	}

	obs := &counter{}
	observers := concurrency.MultiObserver{obs}
	var metrics *control.RingMetrics
	if o.Registerer != nil {
		metrics, err = control.NewRingMetrics(o.Registerer, o.Name)
		if err != nil {
			return Result{}, fmt.Errorf("register metrics: %w", err)
		}
		observers = append(observers, metrics)
	}

	ring, err := concurrency.NewRingBuffer[int64](o.Capacity, alloc, concurrency.WithObserver(observers))
	if err != nil {
		if metrics != nil {
			metrics.Unregister()
		}
		return Result{Allocator: alloc.Stats()}, fmt.Errorf("construct ring: %w", err)
	}
	if metrics != nil {
		if err := metrics.TrackCursor(ring); err != nil {
			log.Warn("cursor gauge not registered", zap.Error(err))
		}
	}
	if o.Probes != nil {
		control.RegisterRingProbes(o.Probes, o.Name, ring)
		control.RegisterAllocatorProbe(o.Probes, o.Name+".allocator", alloc.Stats)
	}

	exec := hconc.NewExecutor(
		hconc.WithWorkers(o.Workers),
		hconc.WithPinning(o.Pin),
		hconc.WithLogger(log),
	)
	defer exec.Close()

	log.Info("stress run starting",
		zap.Int("capacity", o.Capacity),
		zap.Int("writers", o.Writers),
		zap.Int("adds_per_writer", o.AddsPerWriter),
		zap.Int("workers", exec.NumWorkers()),
		zap.String("allocator", o.Allocator))

	var adds atomic.Int64
	start := time.Now()
	for w := 0; w < o.Writers; w++ {
		base := int64(w) * int64(o.AddsPerWriter)
		err := exec.Submit(func() {
			for i := 0; i < o.AddsPerWriter; i++ {
				if i%cancelCheckEvery == 0 && ctx.Err() != nil {
					return
				}
				ring.Add(base + int64(i) + 1)
				adds.Add(1)
			}
		})
		if err != nil {
			return Result{}, fmt.Errorf("submit writer %d: %w", w, err)
		}
	}
	exec.Wait()

	res := Result{
		Adds:         adds.Load(),
		Reservations: obs.reservations.Load(),
		Retries:      obs.retries.Load(),
		Cursor:       ring.Cursor(),
		Executor:     exec.Stats(),
		Duration:     time.Since(start),
		Canceled:     ctx.Err() != nil,
	}
	res.ExpectedCursor = uint64(res.Adds % int64(o.Capacity))

	snapErr := takeHead(ring, o.SnapshotHead, &res)
	ring.Destroy()
	if metrics != nil {
		metrics.Unregister()
	}
	res.Allocator = alloc.Stats()

	log.Info("stress run finished",
		zap.Int64("adds", res.Adds),
		zap.Int64("cas_retries", res.Retries),
		zap.Uint64("cursor", res.Cursor),
		zap.Duration("elapsed", res.Duration),
		zap.Bool("canceled", res.Canceled))

	if snapErr != nil {
		return res, fmt.Errorf("snapshot: %w", snapErr)
	}
	return res, nil
}

// takeHead records the n smallest slot values from a sorted snapshot.
func takeHead(ring *concurrency.RingBuffer[int64], n int, res *Result) error {
	if n <= 0 {
		return nil
	}
	snap, err := concurrency.NewSortedSnapshot(ring, func(a, b int64) bool { return a < b })
	if err != nil {
		return err
	}
	defer snap.Release()
	n = min(n, snap.Len())
	res.Head = append([]int64(nil), snap.Values()[:n]...)
	return nil
}
