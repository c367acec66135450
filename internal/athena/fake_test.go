package athena

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/athena/types"
)

type fakeClient struct {
	queryID  string
	startIn  *athena.StartQueryExecutionInput
	startErr error

	// statuses are returned in order; the last repeats.
	statuses  []types.QueryExecution
	statusErr error
	polls     int

	pages    []*athena.GetQueryResultsOutput
	pageErr  error
	pageIn   []*athena.GetQueryResultsInput
	pageCall int

	stopCalled bool

	databases  []types.Database
	tables     []types.TableMetadata
	tableMeta  *types.TableMetadata
	workgroups []types.WorkGroupSummary
	historyIDs []string
	executions []types.QueryExecution
}

func (f *fakeClient) StartQueryExecution(_ context.Context, in *athena.StartQueryExecutionInput, _ ...func(*athena.Options)) (*athena.StartQueryExecutionOutput, error) {
	f.startIn = in
	if f.startErr != nil {
		return nil, f.startErr
	}
	id := f.queryID
	if id == "" {
		id = "qid-1"
	}
	return &athena.StartQueryExecutionOutput{QueryExecutionId: aws.String(id)}, nil
}

func (f *fakeClient) GetQueryExecution(_ context.Context, in *athena.GetQueryExecutionInput, _ ...func(*athena.Options)) (*athena.GetQueryExecutionOutput, error) {
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	idx := f.polls
	if idx >= len(f.statuses) {
		idx = len(f.statuses) - 1
	}
	f.polls++
	exec := f.statuses[idx]
	if exec.QueryExecutionId == nil {
		exec.QueryExecutionId = in.QueryExecutionId
	}
	return &athena.GetQueryExecutionOutput{QueryExecution: &exec}, nil
}

func (f *fakeClient) GetQueryResults(_ context.Context, in *athena.GetQueryResultsInput, _ ...func(*athena.Options)) (*athena.GetQueryResultsOutput, error) {
	f.pageIn = append(f.pageIn, in)
	if f.pageErr != nil {
		return nil, f.pageErr
	}
	out := f.pages[f.pageCall]
	f.pageCall++
	return out, nil
}

func (f *fakeClient) StopQueryExecution(_ context.Context, _ *athena.StopQueryExecutionInput, _ ...func(*athena.Options)) (*athena.StopQueryExecutionOutput, error) {
	f.stopCalled = true
	return &athena.StopQueryExecutionOutput{}, nil
}

func (f *fakeClient) ListDatabases(_ context.Context, _ *athena.ListDatabasesInput, _ ...func(*athena.Options)) (*athena.ListDatabasesOutput, error) {
	return &athena.ListDatabasesOutput{DatabaseList: f.databases}, nil
}

func (f *fakeClient) ListTableMetadata(_ context.Context, _ *athena.ListTableMetadataInput, _ ...func(*athena.Options)) (*athena.ListTableMetadataOutput, error) {
	return &athena.ListTableMetadataOutput{TableMetadataList: f.tables}, nil
}

func (f *fakeClient) GetTableMetadata(_ context.Context, _ *athena.GetTableMetadataInput, _ ...func(*athena.Options)) (*athena.GetTableMetadataOutput, error) {
	return &athena.GetTableMetadataOutput{TableMetadata: f.tableMeta}, nil
}

func (f *fakeClient) ListWorkGroups(_ context.Context, _ *athena.ListWorkGroupsInput, _ ...func(*athena.Options)) (*athena.ListWorkGroupsOutput, error) {
	return &athena.ListWorkGroupsOutput{WorkGroups: f.workgroups}, nil
}

func (f *fakeClient) ListQueryExecutions(_ context.Context, _ *athena.ListQueryExecutionsInput, _ ...func(*athena.Options)) (*athena.ListQueryExecutionsOutput, error) {
	return &athena.ListQueryExecutionsOutput{QueryExecutionIds: f.historyIDs}, nil
}

func (f *fakeClient) BatchGetQueryExecution(_ context.Context, _ *athena.BatchGetQueryExecutionInput, _ ...func(*athena.Options)) (*athena.BatchGetQueryExecutionOutput, error) {
	return &athena.BatchGetQueryExecutionOutput{QueryExecutions: f.executions}, nil
}

func succeededExecution(scanned int64) types.QueryExecution {
	return types.QueryExecution{
		Status: &types.QueryExecutionStatus{State: types.QueryExecutionStateSucceeded},
		Statistics: &types.QueryExecutionStatistics{
			DataScannedInBytes:          aws.Int64(scanned),
			EngineExecutionTimeInMillis: aws.Int64(1200),
			QueryQueueTimeInMillis:      aws.Int64(40),
			QueryPlanningTimeInMillis:   aws.Int64(100),
			TotalExecutionTimeInMillis:  aws.Int64(1500),
		},
		ResultConfiguration: &types.ResultConfiguration{
			OutputLocation: aws.String("s3://results-bucket/prefix/qid-1.csv"),
		},
	}
}

func runningExecution() types.QueryExecution {
	return types.QueryExecution{
		Status: &types.QueryExecutionStatus{State: types.QueryExecutionStateRunning},
	}
}

func resultPage(next string, rows ...[]string) *athena.GetQueryResultsOutput {
	out := &athena.GetQueryResultsOutput{ResultSet: &types.ResultSet{}}
	for _, cells := range rows {
		row := types.Row{}
		for _, cell := range cells {
			row.Data = append(row.Data, types.Datum{VarCharValue: aws.String(cell)})
		}
		out.ResultSet.Rows = append(out.ResultSet.Rows, row)
	}
	if next != "" {
		out.NextToken = aws.String(next)
	}
	return out
}

func testEngine(c Client) *Engine {
	return &Engine{Client: c, PollInterval: time.Millisecond, PageSize: 100}
}
