package athena

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/athenactl/athenactl/internal/observability"
	"github.com/athenactl/athenactl/internal/table"
)

// Progress receives free-text progress lines (submission id, cache
// status, page counts). It is a side channel, never part of a result.
type Progress func(line string)

// Engine runs queries end to end: submit, await terminal state, collect
// pages. The zero value is not usable; Client must be set. The engine
// never writes its own fields, so one Engine may serve concurrent
// executions without locking.
type Engine struct {
	Client Client

	// PollInterval separates status polls. Defaults to 1s.
	PollInterval time.Duration
	// PageSize caps rows per result page. Defaults to 100.
	PageSize int32
	// WaitDeadline bounds AwaitTerminal when > 0. Zero polls until the
	// service itself gives up.
	WaitDeadline time.Duration
	// Progress receives execution progress lines. Optional.
	Progress Progress
}

const (
	defaultPollInterval = time.Second
	defaultPageSize     = 100
)

// Execute runs one submission to completion and materializes the result.
// The terminal status is returned alongside the table so callers can
// report statistics. A Failed or Cancelled execution yields a
// *QueryFailedError; transport errors are returned as-is with the query
// id attached.
func (e *Engine) Execute(ctx context.Context, sub Submission) (*table.Table, Status, error) {
	queryID, err := e.Submit(ctx, sub)
	if err != nil {
		return nil, Status{}, err
	}
	e.emit("query execution id: %s", queryID)

	status, err := e.AwaitTerminal(ctx, queryID)
	if err != nil {
		return nil, Status{}, err
	}
	if status.State != StateSucceeded {
		return nil, status, &QueryFailedError{QueryID: queryID, State: status.State, Reason: status.Reason}
	}

	if status.Statistics != nil {
		if status.Statistics.CacheHit() {
			e.emit("results served from cache")
		} else {
			observability.ObserveScannedBytes(status.Statistics.ScannedBytes)
			e.emit("fresh execution, scanned %s", humanize.Bytes(uint64(status.Statistics.ScannedBytes)))
		}
	}
	if status.OutputLocation != "" {
		e.emit("result location: %s", status.OutputLocation)
	}

	tbl, err := e.Collect(ctx, queryID)
	if err != nil {
		return nil, status, err
	}
	return tbl, status, nil
}

func (e *Engine) pollInterval() time.Duration {
	if e.PollInterval <= 0 {
		return defaultPollInterval
	}
	return e.PollInterval
}

func (e *Engine) pageSize() int32 {
	if e.PageSize <= 0 {
		return defaultPageSize
	}
	return e.PageSize
}

func (e *Engine) emit(format string, args ...any) {
	if e.Progress != nil {
		e.Progress(fmt.Sprintf(format, args...))
	}
}
