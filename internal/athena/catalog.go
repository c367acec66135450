package athena

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/athena/types"
)

// Catalog exposes the metadata listings of the query service. These are
// thin pass-through calls; the service owns all the data.
type Catalog struct {
	Client Client
}

type Database struct {
	Name        string
	Description string
}

type TableSummary struct {
	Name        string
	Type        string
	ColumnCount int
}

type ColumnInfo struct {
	Name    string
	Type    string
	Comment string
}

type TableDetail struct {
	Database      string
	Name          string
	Type          string
	CreateTime    time.Time
	Columns       []ColumnInfo
	PartitionKeys []ColumnInfo
	Parameters    map[string]string
}

type Workgroup struct {
	Name        string
	State       string
	Description string
}

func (c *Catalog) ListDatabases(ctx context.Context, catalogName string) ([]Database, error) {
	out, err := c.Client.ListDatabases(ctx, &athena.ListDatabasesInput{
		CatalogName: aws.String(catalogName),
	})
	if err != nil {
		return nil, fmt.Errorf("list databases in catalog %s: %w", catalogName, err)
	}
	databases := make([]Database, 0, len(out.DatabaseList))
	for _, db := range out.DatabaseList {
		databases = append(databases, Database{
			Name:        aws.ToString(db.Name),
			Description: aws.ToString(db.Description),
		})
	}
	return databases, nil
}

// ListTables lists table metadata for one database. A non-empty prefix
// becomes a server-side TableName LIKE expression.
func (c *Catalog) ListTables(ctx context.Context, catalogName, database, prefix string, limit int32) ([]TableSummary, error) {
	if strings.TrimSpace(database) == "" {
		return nil, ErrNoDatabase
	}
	in := &athena.ListTableMetadataInput{
		CatalogName:  aws.String(catalogName),
		DatabaseName: aws.String(database),
	}
	if limit > 0 {
		in.MaxResults = aws.Int32(limit)
	}
	if prefix != "" {
		in.Expression = aws.String(fmt.Sprintf("TableName LIKE '%s%%'", prefix))
	}
	out, err := c.Client.ListTableMetadata(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("list tables in %s: %w", database, err)
	}
	tables := make([]TableSummary, 0, len(out.TableMetadataList))
	for _, meta := range out.TableMetadataList {
		summary := TableSummary{
			Name:        aws.ToString(meta.Name),
			Type:        aws.ToString(meta.TableType),
			ColumnCount: len(meta.Columns),
		}
		if summary.Type == "" {
			summary.Type = "UNKNOWN"
		}
		tables = append(tables, summary)
	}
	return tables, nil
}

func (c *Catalog) DescribeTable(ctx context.Context, catalogName, database, tableName string) (TableDetail, error) {
	if strings.TrimSpace(database) == "" {
		return TableDetail{}, ErrNoDatabase
	}
	out, err := c.Client.GetTableMetadata(ctx, &athena.GetTableMetadataInput{
		CatalogName:  aws.String(catalogName),
		DatabaseName: aws.String(database),
		TableName:    aws.String(tableName),
	})
	if err != nil {
		return TableDetail{}, fmt.Errorf("get metadata for %s.%s: %w", database, tableName, err)
	}
	if out.TableMetadata == nil {
		return TableDetail{}, fmt.Errorf("no metadata for table %s.%s", database, tableName)
	}
	meta := out.TableMetadata
	detail := TableDetail{
		Database:      database,
		Name:          aws.ToString(meta.Name),
		Type:          aws.ToString(meta.TableType),
		CreateTime:    aws.ToTime(meta.CreateTime),
		Columns:       columnInfos(meta.Columns),
		PartitionKeys: columnInfos(meta.PartitionKeys),
		Parameters:    meta.Parameters,
	}
	return detail, nil
}

func (c *Catalog) ListWorkgroups(ctx context.Context, limit int32) ([]Workgroup, error) {
	in := &athena.ListWorkGroupsInput{}
	if limit > 0 {
		in.MaxResults = aws.Int32(limit)
	}
	out, err := c.Client.ListWorkGroups(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("list workgroups: %w", err)
	}
	workgroups := make([]Workgroup, 0, len(out.WorkGroups))
	for _, wg := range out.WorkGroups {
		workgroups = append(workgroups, Workgroup{
			Name:        aws.ToString(wg.Name),
			State:       string(wg.State),
			Description: aws.ToString(wg.Description),
		})
	}
	return workgroups, nil
}

func columnInfos(columns []types.Column) []ColumnInfo {
	infos := make([]ColumnInfo, 0, len(columns))
	for _, col := range columns {
		infos = append(infos, ColumnInfo{
			Name:    aws.ToString(col.Name),
			Type:    aws.ToString(col.Type),
			Comment: aws.ToString(col.Comment),
		})
	}
	return infos
}
