// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Error definitions for concurrency module.

package concurrency

import (
	"errors"

	"github.com/momentics/hioload-ring/api"
)

var (
	// ErrExecutorClosed indicates the executor has been shut down
	ErrExecutorClosed = api.ErrExecutorClosed

	// ErrAffinityNotSupported indicates CPU affinity is not supported on this platform
	ErrAffinityNotSupported = errors.New("CPU affinity not supported")
)
