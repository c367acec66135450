package athena

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
)

// HistoryEntry summarizes one past execution in a workgroup.
type HistoryEntry struct {
	QueryID      string
	SQL          string
	State        State
	SubmittedAt  time.Time
	Runtime      time.Duration
	ScannedBytes int64
	CacheHit     bool
}

// History lists recent executions in a workgroup, newest first as
// reported by the service. A non-empty stateFilter keeps only matching
// terminal or transient states.
func (e *Engine) History(ctx context.Context, workgroup string, limit int32, stateFilter State) ([]HistoryEntry, error) {
	in := &athena.ListQueryExecutionsInput{}
	if workgroup != "" {
		in.WorkGroup = aws.String(workgroup)
	}
	if limit > 0 {
		in.MaxResults = aws.Int32(limit)
	}
	listed, err := e.Client.ListQueryExecutions(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("list query executions: %w", err)
	}
	if len(listed.QueryExecutionIds) == 0 {
		return nil, nil
	}

	batch, err := e.Client.BatchGetQueryExecution(ctx, &athena.BatchGetQueryExecutionInput{
		QueryExecutionIds: listed.QueryExecutionIds,
	})
	if err != nil {
		return nil, fmt.Errorf("batch get query executions: %w", err)
	}

	entries := make([]HistoryEntry, 0, len(batch.QueryExecutions))
	for _, exec := range batch.QueryExecutions {
		entry := HistoryEntry{
			QueryID: aws.ToString(exec.QueryExecutionId),
			SQL:     aws.ToString(exec.Query),
		}
		if exec.Status != nil {
			entry.State = State(exec.Status.State)
			entry.SubmittedAt = aws.ToTime(exec.Status.SubmissionDateTime)
			if exec.Status.CompletionDateTime != nil && exec.Status.SubmissionDateTime != nil {
				entry.Runtime = exec.Status.CompletionDateTime.Sub(*exec.Status.SubmissionDateTime)
			}
		}
		if exec.Statistics != nil {
			entry.ScannedBytes = aws.ToInt64(exec.Statistics.DataScannedInBytes)
			entry.CacheHit = entry.ScannedBytes == 0
		}
		if stateFilter != "" && entry.State != stateFilter {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
