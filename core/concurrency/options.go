// File: core/concurrency/options.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package concurrency

import "github.com/momentics/hioload-ring/api"

// Option configures a RingBuffer at construction.
type Option func(*options)

type options struct {
	observer api.RingObserver
}

func defaultOptions() options {
	return options{observer: nopObserver{}}
}

// WithObserver installs a reservation observer. A nil observer is ignored.
func WithObserver(obs api.RingObserver) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

type nopObserver struct{}

func (nopObserver) OnReserve(uint64) {}
func (nopObserver) OnContention()    {}

// MultiObserver fans reservation events out to several observers in order.
type MultiObserver []api.RingObserver

// OnReserve implements api.RingObserver.
func (m MultiObserver) OnReserve(index uint64) {
	for _, o := range m {
		o.OnReserve(index)
	}
}

// OnContention implements api.RingObserver.
func (m MultiObserver) OnContention() {
	for _, o := range m {
		o.OnContention()
	}
}
