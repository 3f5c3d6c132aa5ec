// Package api
// Author: momentics
//
// Executor contract used to drive parallel writers.

package api

// Executor abstracts parallel task execution.
type Executor interface {
    // Submit schedules task for execution.
    Submit(task func()) error

    // NumWorkers returns current number of active worker routines.
    NumWorkers() int

    // Wait blocks until every task submitted so far has finished.
    Wait()

    // Close stops accepting tasks, drains the backlog and joins the workers.
    Close()
}
