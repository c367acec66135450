// Package athena implements the query execution engine: statement
// submission with result reuse, completion polling, and paginated result
// collection into a columnar table.
package athena

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNoDatabase           = errors.New("database is required")
	ErrEmptyStatement       = errors.New("query statement is required")
	ErrWaitDeadlineExceeded = errors.New("wait deadline exceeded")
)

// State is the execution state reported by the query service.
type State string

const (
	StateQueued    State = "QUEUED"
	StateRunning   State = "RUNNING"
	StateSucceeded State = "SUCCEEDED"
	StateFailed    State = "FAILED"
	StateCancelled State = "CANCELLED"
)

func (s State) Terminal() bool {
	switch s {
	case StateSucceeded, StateFailed, StateCancelled:
		return true
	default:
		return false
	}
}

// Submission describes one query to execute. It is consumed once.
type Submission struct {
	SQL            string
	Database       string
	Catalog        string
	Workgroup      string
	OutputLocation string
	// ReuseTime is how long previously computed results may be reused.
	// The reuse policy is always marked enabled; a zero duration lets
	// the service disable reuse on its side.
	ReuseTime time.Duration
}

// Statistics is attached to a status once the execution succeeded.
type Statistics struct {
	ScannedBytes int64
	EngineTime   time.Duration
	QueueTime    time.Duration
	PlanningTime time.Duration
	TotalTime    time.Duration
}

// CacheHit reports whether the service served the result from its cache.
// The service exposes no explicit flag; a zero byte scan is the only
// signal it gives.
func (s Statistics) CacheHit() bool {
	return s.ScannedBytes == 0
}

// Status is a snapshot of one execution.
type Status struct {
	QueryID        string
	State          State
	Reason         string
	OutputLocation string
	Statistics     *Statistics
}

// QueryFailedError reports an execution that reached a failure terminal
// state. It is distinct from transport errors: the service answered, the
// query itself did not succeed.
type QueryFailedError struct {
	QueryID string
	State   State
	Reason  string
}

func (e *QueryFailedError) Error() string {
	verb := "failed"
	if e.State == StateCancelled {
		verb = "was cancelled"
	}
	if e.Reason == "" {
		return fmt.Sprintf("query %s %s", e.QueryID, verb)
	}
	return fmt.Sprintf("query %s %s: %s", e.QueryID, verb, e.Reason)
}
