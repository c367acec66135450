package athena

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/athena/types"

	"github.com/athenactl/athenactl/internal/observability"
)

// Submit starts an execution and returns its id. The result reuse policy
// is always enabled with the max age floored to whole minutes.
func (e *Engine) Submit(ctx context.Context, sub Submission) (string, error) {
	if strings.TrimSpace(sub.SQL) == "" {
		return "", ErrEmptyStatement
	}
	if strings.TrimSpace(sub.Database) == "" {
		return "", ErrNoDatabase
	}

	execCtx := &types.QueryExecutionContext{Database: aws.String(sub.Database)}
	if sub.Catalog != "" {
		execCtx.Catalog = aws.String(sub.Catalog)
	}

	in := &athena.StartQueryExecutionInput{
		QueryString:           aws.String(sub.SQL),
		QueryExecutionContext: execCtx,
		ResultConfiguration: &types.ResultConfiguration{
			OutputLocation: aws.String(sub.OutputLocation),
		},
		ResultReuseConfiguration: &types.ResultReuseConfiguration{
			ResultReuseByAgeConfiguration: &types.ResultReuseByAgeConfiguration{
				Enabled:         true,
				MaxAgeInMinutes: aws.Int32(int32(sub.ReuseTime.Seconds() / 60)),
			},
		},
	}
	if sub.Workgroup != "" {
		in.WorkGroup = aws.String(sub.Workgroup)
	}

	out, err := e.Client.StartQueryExecution(ctx, in)
	if err != nil {
		return "", fmt.Errorf("start query execution: %w", err)
	}
	observability.ObserveQuerySubmitted()
	return aws.ToString(out.QueryExecutionId), nil
}

// AwaitTerminal polls the execution until it reaches a terminal state.
// Transient states wait out PollInterval without blocking the thread;
// transport errors propagate immediately. Cancelling ctx, or exceeding
// WaitDeadline when one is set, stops the wait, issues a best-effort
// remote cancel, and returns the corresponding error. There is no
// attempt cap: the service's own execution limits bound the wait.
func (e *Engine) AwaitTerminal(ctx context.Context, queryID string) (Status, error) {
	var deadlineCh <-chan time.Time
	if e.WaitDeadline > 0 {
		deadline := time.NewTimer(e.WaitDeadline)
		defer deadline.Stop()
		deadlineCh = deadline.C
	}

	for {
		status, err := e.Inspect(ctx, queryID)
		if err != nil {
			return Status{}, err
		}
		observability.ObservePollCycle()
		if status.State.Terminal() {
			return status, nil
		}

		timer := time.NewTimer(e.pollInterval())
		select {
		case <-ctx.Done():
			timer.Stop()
			e.stopExecution(queryID)
			return Status{}, fmt.Errorf("query %s: %w", queryID, ctx.Err())
		case <-deadlineCh:
			timer.Stop()
			e.stopExecution(queryID)
			return Status{}, fmt.Errorf("query %s: %w", queryID, ErrWaitDeadlineExceeded)
		case <-timer.C:
		}
	}
}

// Inspect fetches a point-in-time status snapshot of one execution.
func (e *Engine) Inspect(ctx context.Context, queryID string) (Status, error) {
	out, err := e.Client.GetQueryExecution(ctx, &athena.GetQueryExecutionInput{
		QueryExecutionId: aws.String(queryID),
	})
	if err != nil {
		return Status{}, fmt.Errorf("get query status for %s: %w", queryID, err)
	}
	if out.QueryExecution == nil {
		return Status{}, fmt.Errorf("get query status for %s: empty response", queryID)
	}
	return statusFromExecution(out.QueryExecution), nil
}

// Cancel asks the service to stop a running execution.
func (e *Engine) Cancel(ctx context.Context, queryID string) error {
	_, err := e.Client.StopQueryExecution(ctx, &athena.StopQueryExecutionInput{
		QueryExecutionId: aws.String(queryID),
	})
	if err != nil {
		return fmt.Errorf("stop query execution %s: %w", queryID, err)
	}
	return nil
}

// stopExecution is the best-effort cancel used when the local wait is
// abandoned. It runs on a fresh context: the caller's is already done.
func (e *Engine) stopExecution(queryID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Cancel(ctx, queryID); err != nil {
		e.emit("could not cancel query %s: %v", queryID, err)
	}
}

func statusFromExecution(exec *types.QueryExecution) Status {
	status := Status{QueryID: aws.ToString(exec.QueryExecutionId)}
	if exec.Status != nil {
		status.State = State(exec.Status.State)
		status.Reason = aws.ToString(exec.Status.StateChangeReason)
	}
	if exec.ResultConfiguration != nil {
		status.OutputLocation = aws.ToString(exec.ResultConfiguration.OutputLocation)
	}
	if status.State == StateSucceeded && exec.Statistics != nil {
		status.Statistics = statisticsFromExecution(exec.Statistics)
	}
	return status
}

func statisticsFromExecution(stats *types.QueryExecutionStatistics) *Statistics {
	return &Statistics{
		ScannedBytes: aws.ToInt64(stats.DataScannedInBytes),
		EngineTime:   time.Duration(aws.ToInt64(stats.EngineExecutionTimeInMillis)) * time.Millisecond,
		QueueTime:    time.Duration(aws.ToInt64(stats.QueryQueueTimeInMillis)) * time.Millisecond,
		PlanningTime: time.Duration(aws.ToInt64(stats.QueryPlanningTimeInMillis)) * time.Millisecond,
		TotalTime:    time.Duration(aws.ToInt64(stats.TotalExecutionTimeInMillis)) * time.Millisecond,
	}
}
