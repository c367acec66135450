package athenactl

import (
	"context"
	"fmt"
	"strings"

	"github.com/athenactl/athenactl/internal/athena"
	"github.com/athenactl/athenactl/internal/export"
	"github.com/athenactl/athenactl/internal/observability"
	"github.com/athenactl/athenactl/internal/results"
	"github.com/athenactl/athenactl/internal/sqlcheck"
)

func (a *app) runQuery(ctx context.Context, args []string) error {
	fs := a.flagSet("query")
	reuse := fs.Duration("reuse", a.cfg.Query.ReuseTime, "result reuse max age (e.g. 30m, 2h)")
	exportPath := fs.String("export", "", "write the result to a local parquet file")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("query: SQL statement is required")
	}
	sql := strings.Join(fs.Args(), " ")

	if err := sqlcheck.Validate(sql); err != nil {
		return fmt.Errorf("query rejected before submission: %w", err)
	}

	client, err := a.newClient(ctx, a.cfg)
	if err != nil {
		return err
	}
	engine := a.engine(client)

	tbl, status, err := engine.Execute(ctx, athena.Submission{
		SQL:            sql,
		Database:       a.cfg.AWS.Database,
		Catalog:        a.cfg.AWS.Catalog,
		Workgroup:      a.cfg.AWS.Workgroup,
		OutputLocation: a.cfg.AWS.OutputLocation,
		ReuseTime:      *reuse,
	})
	if err != nil {
		return err
	}
	a.logger.Debug("query finished",
		"query_id", status.QueryID,
		"rows", tbl.RowCount(),
	)

	if err := a.renderResult(tbl); err != nil {
		return err
	}
	if *exportPath != "" {
		if err := export.WriteParquet(*exportPath, tbl); err != nil {
			return err
		}
		if !a.quiet {
			_, _ = fmt.Fprintf(a.stderr, "exported %d rows to %s\n", tbl.RowCount(), *exportPath)
		}
	}
	return nil
}

func (a *app) runDatabases(ctx context.Context, args []string) error {
	fs := a.flagSet("databases")
	filter := fs.String("filter", "", "filter database names (supports * wildcards)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	client, err := a.newClient(ctx, a.cfg)
	if err != nil {
		return err
	}
	catalog := &athena.Catalog{Client: client}

	databases, err := catalog.ListDatabases(ctx, a.cfg.AWS.Catalog)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(databases))
	for _, db := range databases {
		if !matchesPattern(db.Name, *filter) {
			continue
		}
		rows = append(rows, []string{db.Name, db.Description})
	}
	if len(rows) == 0 {
		_, _ = fmt.Fprintf(a.stdout, "no databases found in catalog %s\n", a.cfg.AWS.Catalog)
		return nil
	}
	return a.renderRows([]string{"NAME", "DESCRIPTION"}, rows)
}

func (a *app) runTables(ctx context.Context, args []string) error {
	fs := a.flagSet("tables")
	db := fs.String("db", "", "database name (overrides the global database)")
	filter := fs.String("filter", "", "table name prefix filter")
	limit := fs.Int("limit", 50, "maximum number of tables to list")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	database := a.cfg.AWS.Database
	if *db != "" {
		database = *db
	}

	client, err := a.newClient(ctx, a.cfg)
	if err != nil {
		return err
	}
	catalog := &athena.Catalog{Client: client}

	tables, err := catalog.ListTables(ctx, a.cfg.AWS.Catalog, database, *filter, int32(*limit))
	if err != nil {
		return err
	}
	if len(tables) == 0 {
		_, _ = fmt.Fprintf(a.stdout, "no tables found in database %s\n", database)
		return nil
	}
	rows := make([][]string, 0, len(tables))
	for _, t := range tables {
		rows = append(rows, []string{t.Name, t.Type, fmt.Sprintf("%d", t.ColumnCount)})
	}
	return a.renderRows([]string{"NAME", "TYPE", "COLUMNS"}, rows)
}

func (a *app) runDescribe(ctx context.Context, args []string) error {
	fs := a.flagSet("describe")
	db := fs.String("db", "", "database name (alternative to db.table)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("describe: table name is required")
	}

	database, tableName := a.cfg.AWS.Database, fs.Arg(0)
	if before, after, found := strings.Cut(tableName, "."); found {
		database, tableName = before, after
	} else if *db != "" {
		database = *db
	}

	client, err := a.newClient(ctx, a.cfg)
	if err != nil {
		return err
	}
	catalog := &athena.Catalog{Client: client}

	detail, err := catalog.DescribeTable(ctx, a.cfg.AWS.Catalog, database, tableName)
	if err != nil {
		return err
	}
	return a.renderTableDetail(detail)
}

func (a *app) runWorkgroups(ctx context.Context, args []string) error {
	fs := a.flagSet("workgroups")
	filter := fs.String("filter", "", "filter workgroup names (supports * wildcards)")
	limit := fs.Int("limit", 50, "maximum number of workgroups to list")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	client, err := a.newClient(ctx, a.cfg)
	if err != nil {
		return err
	}
	catalog := &athena.Catalog{Client: client}

	workgroups, err := catalog.ListWorkgroups(ctx, int32(*limit))
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(workgroups))
	for _, wg := range workgroups {
		if !matchesPattern(wg.Name, *filter) {
			continue
		}
		rows = append(rows, []string{wg.Name, wg.State, wg.Description})
	}
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(a.stdout, "no workgroups found")
		return nil
	}
	return a.renderRows([]string{"NAME", "STATE", "DESCRIPTION"}, rows)
}

func (a *app) runHistory(ctx context.Context, args []string) error {
	fs := a.flagSet("history")
	limit := fs.Int("limit", a.cfg.Query.HistorySize, "maximum number of executions to show")
	state := fs.String("state", "", "only executions in this state (SUCCEEDED, FAILED, CANCELLED)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	client, err := a.newClient(ctx, a.cfg)
	if err != nil {
		return err
	}
	engine := a.engine(client)

	entries, err := engine.History(ctx, a.cfg.AWS.Workgroup, int32(*limit), athena.State(strings.ToUpper(*state)))
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		_, _ = fmt.Fprintf(a.stdout, "no queries found in workgroup %s\n", a.cfg.AWS.Workgroup)
		return nil
	}
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, []string{
			entry.QueryID,
			truncate(entry.SQL, 50),
			formatTime(entry.SubmittedAt),
			string(entry.State),
			formatRuntime(entry.Runtime),
			cacheLabel(entry.CacheHit, entry.State),
			formatScanned(entry.ScannedBytes, entry.CacheHit),
		})
	}
	return a.renderRows([]string{"ID", "QUERY", "SUBMITTED", "STATE", "RUNTIME", "CACHE", "SCANNED"}, rows)
}

func (a *app) runInspect(ctx context.Context, args []string) error {
	fs := a.flagSet("inspect")
	dir := fs.String("output-dir", "", "download the result object into this directory")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("inspect: query execution id is required")
	}
	queryID := fs.Arg(0)

	client, err := a.newClient(ctx, a.cfg)
	if err != nil {
		return err
	}
	engine := a.engine(client)

	status, err := engine.Inspect(ctx, queryID)
	if err != nil {
		return err
	}
	if err := a.renderStatus(status); err != nil {
		return err
	}
	if *dir == "" {
		return nil
	}
	if status.State != athena.StateSucceeded {
		return fmt.Errorf("query %s is %s; results can only be downloaded for succeeded executions", queryID, status.State)
	}
	path, err := a.downloadResult(ctx, status, *dir)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(a.stdout, path)
	return nil
}

func (a *app) runDownload(ctx context.Context, args []string) error {
	fs := a.flagSet("download")
	dir := fs.String("dir", a.cfg.Download.Dir, "output directory for the result object")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("download: query execution id is required")
	}
	queryID := fs.Arg(0)

	client, err := a.newClient(ctx, a.cfg)
	if err != nil {
		return err
	}
	engine := a.engine(client)

	status, err := engine.Inspect(ctx, queryID)
	if err != nil {
		return err
	}
	if status.State != athena.StateSucceeded {
		return fmt.Errorf("query %s is %s; results can only be downloaded for succeeded executions", queryID, status.State)
	}
	path, err := a.downloadResult(ctx, status, *dir)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(a.stdout, path)
	return nil
}

func (a *app) downloadResult(ctx context.Context, status athena.Status, dir string) (string, error) {
	if status.OutputLocation == "" {
		return "", fmt.Errorf("query %s has no result location", status.QueryID)
	}
	addr, err := results.ParseResultURI(status.OutputLocation)
	if err != nil {
		return "", err
	}
	downloader, err := a.newDownloader(a.cfg)
	if err != nil {
		return "", err
	}
	if !a.quiet {
		_, _ = fmt.Fprintf(a.stderr, "downloading %s/%s\n", addr.Bucket, addr.Key)
	}
	path, err := downloader.Download(ctx, addr, dir)
	if err != nil {
		return "", err
	}
	observability.ObserveDownload()
	return path, nil
}
