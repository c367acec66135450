package athena

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena/types"
)

func TestSubmitBuildsReuseConfiguration(t *testing.T) {
	cases := []struct {
		name  string
		reuse time.Duration
		want  int32
	}{
		{"one hour", time.Hour, 60},
		{"ninety seconds floors", 90 * time.Second, 1},
		{"sub-minute floors to zero", 30 * time.Second, 0},
		{"zero stays enabled", 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fake := &fakeClient{}
			e := testEngine(fake)
			id, err := e.Submit(context.Background(), Submission{
				SQL:            "SELECT 1",
				Database:       "sales",
				OutputLocation: "s3://out/",
				ReuseTime:      tc.reuse,
			})
			if err != nil {
				t.Fatalf("Submit() error = %v", err)
			}
			if id != "qid-1" {
				t.Fatalf("Submit() id = %q, want qid-1", id)
			}
			reuse := fake.startIn.ResultReuseConfiguration.ResultReuseByAgeConfiguration
			if !reuse.Enabled {
				t.Fatalf("reuse not enabled")
			}
			if got := aws.ToInt32(reuse.MaxAgeInMinutes); got != tc.want {
				t.Fatalf("MaxAgeInMinutes = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestSubmitValidatesInput(t *testing.T) {
	e := testEngine(&fakeClient{})
	if _, err := e.Submit(context.Background(), Submission{SQL: "  ", Database: "sales"}); !errors.Is(err, ErrEmptyStatement) {
		t.Fatalf("Submit() error = %v, want ErrEmptyStatement", err)
	}
	if _, err := e.Submit(context.Background(), Submission{SQL: "SELECT 1"}); !errors.Is(err, ErrNoDatabase) {
		t.Fatalf("Submit() error = %v, want ErrNoDatabase", err)
	}
}

func TestSubmitOptionalFields(t *testing.T) {
	fake := &fakeClient{}
	e := testEngine(fake)
	_, err := e.Submit(context.Background(), Submission{
		SQL:            "SELECT 1",
		Database:       "sales",
		Catalog:        "AwsDataCatalog",
		Workgroup:      "primary",
		OutputLocation: "s3://out/",
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if got := aws.ToString(fake.startIn.QueryExecutionContext.Catalog); got != "AwsDataCatalog" {
		t.Fatalf("catalog = %q", got)
	}
	if got := aws.ToString(fake.startIn.WorkGroup); got != "primary" {
		t.Fatalf("workgroup = %q", got)
	}
}

func TestSubmitWrapsTransportError(t *testing.T) {
	boom := errors.New("throttled")
	e := testEngine(&fakeClient{startErr: boom})
	_, err := e.Submit(context.Background(), Submission{SQL: "SELECT 1", Database: "sales"})
	if !errors.Is(err, boom) {
		t.Fatalf("Submit() error = %v, want wrapped %v", err, boom)
	}
}

func TestAwaitTerminalPollsUntilSucceeded(t *testing.T) {
	fake := &fakeClient{statuses: []types.QueryExecution{
		runningExecution(),
		runningExecution(),
		succeededExecution(4096),
	}}
	e := testEngine(fake)
	status, err := e.AwaitTerminal(context.Background(), "qid-1")
	if err != nil {
		t.Fatalf("AwaitTerminal() error = %v", err)
	}
	if status.State != StateSucceeded {
		t.Fatalf("state = %s, want SUCCEEDED", status.State)
	}
	if fake.polls != 3 {
		t.Fatalf("polls = %d, want 3", fake.polls)
	}
	if status.Statistics == nil || status.Statistics.ScannedBytes != 4096 {
		t.Fatalf("statistics = %+v, want 4096 scanned bytes", status.Statistics)
	}
	if status.OutputLocation != "s3://results-bucket/prefix/qid-1.csv" {
		t.Fatalf("output location = %q", status.OutputLocation)
	}
}

func TestAwaitTerminalReturnsFailureReason(t *testing.T) {
	fake := &fakeClient{statuses: []types.QueryExecution{{
		Status: &types.QueryExecutionStatus{
			State:             types.QueryExecutionStateFailed,
			StateChangeReason: aws.String("SYNTAX_ERROR: line 1"),
		},
	}}}
	e := testEngine(fake)
	status, err := e.AwaitTerminal(context.Background(), "qid-1")
	if err != nil {
		t.Fatalf("AwaitTerminal() error = %v", err)
	}
	if status.State != StateFailed {
		t.Fatalf("state = %s, want FAILED", status.State)
	}
	if status.Reason != "SYNTAX_ERROR: line 1" {
		t.Fatalf("reason = %q", status.Reason)
	}
	if status.Statistics != nil {
		t.Fatalf("failed execution carries statistics")
	}
}

func TestAwaitTerminalPropagatesTransportError(t *testing.T) {
	boom := errors.New("connection reset")
	e := testEngine(&fakeClient{statusErr: boom})
	if _, err := e.AwaitTerminal(context.Background(), "qid-1"); !errors.Is(err, boom) {
		t.Fatalf("AwaitTerminal() error = %v, want wrapped %v", err, boom)
	}
}

func TestAwaitTerminalCancelStopsRemoteExecution(t *testing.T) {
	fake := &fakeClient{statuses: []types.QueryExecution{runningExecution()}}
	e := testEngine(fake)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.AwaitTerminal(ctx, "qid-1")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("AwaitTerminal() error = %v, want context.Canceled", err)
	}
	if !fake.stopCalled {
		t.Fatalf("remote execution was not stopped")
	}
}

func TestAwaitTerminalWaitDeadline(t *testing.T) {
	fake := &fakeClient{statuses: []types.QueryExecution{runningExecution()}}
	e := testEngine(fake)
	e.PollInterval = 50 * time.Millisecond
	e.WaitDeadline = 5 * time.Millisecond
	_, err := e.AwaitTerminal(context.Background(), "qid-1")
	if !errors.Is(err, ErrWaitDeadlineExceeded) {
		t.Fatalf("AwaitTerminal() error = %v, want ErrWaitDeadlineExceeded", err)
	}
	if !fake.stopCalled {
		t.Fatalf("remote execution was not stopped")
	}
}

func TestInspectEmptyResponse(t *testing.T) {
	fake := &fakeClient{statuses: []types.QueryExecution{{}}}
	e := testEngine(fake)
	status, err := e.Inspect(context.Background(), "qid-9")
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if status.QueryID != "qid-9" {
		t.Fatalf("query id = %q, want qid-9", status.QueryID)
	}
}
