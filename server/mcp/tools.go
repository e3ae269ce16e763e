package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/arcdb/datamerge/pkg/config"
	"github.com/arcdb/datamerge/pkg/dataset"
	"github.com/arcdb/datamerge/pkg/merge"
	"github.com/arcdb/datamerge/pkg/security"
	"github.com/arcdb/datamerge/pkg/types"
)

type contextKey string

const ctxKeyMCPClient contextKey = "mcp_client"

// ToolDeps holds shared dependencies for MCP tool handlers.
type ToolDeps struct {
	Registry    *dataset.Registry
	MergeCfg    *config.MergeConfig
	AuditLogger *security.AuditLogger
}

// HandleMergeDatasets joins two registered datasets and renders the result.
func (d *ToolDeps) HandleMergeDatasets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	leftID := request.GetString("left_id", "")
	rightID := request.GetString("right_id", "")
	leftKey := request.GetString("left_key", "")
	rightKey := request.GetString("right_key", "")
	mergeType := request.GetString("merge_type", "")
	maxRows := request.GetInt("max_rows", d.defaultMaxRows())

	args := map[string]interface{}{
		"left_id": leftID, "right_id": rightID,
		"left_key": leftKey, "right_key": rightKey,
		"merge_type": mergeType,
	}
	start := time.Now()
	clientName := getClientName(ctx)

	if leftID == "" || rightID == "" {
		return mcp.NewToolResultError("left_id and right_id parameters are required"), nil
	}
	if leftKey == "" || rightKey == "" {
		return mcp.NewToolResultError("left_key and right_key parameters are required"), nil
	}

	left, ok := d.Registry.Get(leftID)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("left dataset %q not found in registry", leftID)), nil
	}
	right, ok := d.Registry.Get(rightID)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("right dataset %q not found in registry", rightID)), nil
	}

	joinType, err := merge.ParseJoinType(mergeType)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if limit := d.maxRowsCap(); maxRows > limit {
		maxRows = limit
	}

	result := merge.Merge(merge.Request{
		Left:        left,
		Right:       right,
		LeftKey:     leftKey,
		RightKey:    rightKey,
		Type:        joinType,
		LeftPrefix:  request.GetString("left_prefix", ""),
		RightPrefix: request.GetString("right_prefix", ""),
		MaxRows:     maxRows,
		Title:       request.GetString("title", ""),
	})

	if result.Error != "" {
		d.logToolCall(clientName, "merge_datasets", args, time.Since(start).Milliseconds(), false)
		return mcp.NewToolResultError(result.Error), nil
	}

	d.logToolCall(clientName, "merge_datasets", args, time.Since(start).Milliseconds(), true)
	return mcp.NewToolResultText(renderMergeResult(result)), nil
}

// HandleLoadDataset loads a dataset file into the registry.
func (d *ToolDeps) HandleLoadDataset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := request.GetString("path", "")
	formatName := request.GetString("format", "")
	label := request.GetString("label", "")
	sheet := request.GetString("sheet", "")

	if path == "" {
		return mcp.NewToolResultError("path parameter is required"), nil
	}

	start := time.Now()
	clientName := getClientName(ctx)
	args := map[string]interface{}{"path": path, "format": formatName, "label": label}

	var format dataset.Format
	if formatName != "" {
		f, err := dataset.ParseFormat(formatName)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		format = f
	}

	var (
		ds  *types.Dataset
		err error
	)
	if format == dataset.FormatXLSX && sheet != "" {
		ds, err = dataset.LoadExcel(path, sheet)
		if err == nil && label != "" {
			ds.Label = label
		}
	} else {
		ds, err = dataset.LoadFile(path, format, label)
	}
	if err != nil {
		d.logToolCall(clientName, "load_dataset", args, time.Since(start).Milliseconds(), false)
		return mcp.NewToolResultError(fmt.Sprintf("failed to load dataset: %v", err)), nil
	}

	id, err := d.Registry.Put(ds)
	if err != nil {
		d.logToolCall(clientName, "load_dataset", args, time.Since(start).Milliseconds(), false)
		return mcp.NewToolResultError(err.Error()), nil
	}

	d.logToolCall(clientName, "load_dataset", args, time.Since(start).Milliseconds(), true)
	return mcp.NewToolResultText(fmt.Sprintf("Loaded dataset %s (%d rows, %d columns)", id, len(ds.Rows), len(ds.ColumnUnion()))), nil
}

// HandleListDatasets lists the datasets in the registry.
func (d *ToolDeps) HandleListDatasets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	infos := d.Registry.List()
	if len(infos) == 0 {
		return mcp.NewToolResultText("No datasets loaded."), nil
	}

	var sb strings.Builder
	sb.WriteString("Datasets:\n")
	for _, info := range infos {
		label := info.Label
		if label == "" {
			label = "(unlabeled)"
		}
		sb.WriteString(fmt.Sprintf("- %s  %s  %d rows, %d columns\n", info.ID, label, info.RowCount, info.ColumnCount))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// HandlePreviewDataset shows the first rows of a registered dataset.
func (d *ToolDeps) HandlePreviewDataset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetString("id", "")
	limit := request.GetInt("limit", 10)

	if id == "" {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	if limit < 1 {
		limit = 10
	}

	ds, ok := d.Registry.Get(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("dataset %q not found in registry", id)), nil
	}

	cols := ds.ColumnUnion()
	var sb strings.Builder
	sb.WriteString(strings.Join(cols, "\t"))
	sb.WriteString("\n")

	shown := 0
	for _, row := range ds.Rows {
		if shown >= limit {
			break
		}
		vals := make([]string, len(cols))
		for i, col := range cols {
			v, ok := row.Get(col)
			if !ok {
				vals[i] = "NULL"
				continue
			}
			vals[i] = types.CellFromAny(v).String()
		}
		sb.WriteString(strings.Join(vals, "\t"))
		sb.WriteString("\n")
		shown++
	}
	sb.WriteString(fmt.Sprintf("\n(%d of %d rows)", shown, len(ds.Rows)))
	return mcp.NewToolResultText(sb.String()), nil
}

// renderMergeResult formats a merge result as a tab-separated text block with
// a statistics trailer.
func renderMergeResult(result *merge.Result) string {
	var sb strings.Builder
	if result.Title != "" {
		sb.WriteString(result.Title)
		sb.WriteString("\n\n")
	}

	sb.WriteString(strings.Join(result.Columns, "\t"))
	sb.WriteString("\n")
	for _, row := range result.Rows {
		vals := make([]string, len(row))
		for i, cell := range row {
			vals[i] = cell.String()
		}
		sb.WriteString(strings.Join(vals, "\t"))
		sb.WriteString("\n")
	}

	if result.Truncated {
		sb.WriteString(fmt.Sprintf("\n(%d of %d rows, truncated)", result.RowCount, result.TotalRowCount))
	} else {
		sb.WriteString(fmt.Sprintf("\n(%d rows)", result.RowCount))
	}
	sb.WriteString(fmt.Sprintf("\nstats: left=%d right=%d matched=%d unmatched_left=%d unmatched_right=%d",
		result.Stats.LeftRows, result.Stats.RightRows, result.Stats.MatchedPairs,
		result.Stats.UnmatchedLeft, result.Stats.UnmatchedRight))
	return sb.String()
}

func (d *ToolDeps) defaultMaxRows() int {
	if d.MergeCfg != nil && d.MergeCfg.DefaultMaxRows > 0 {
		return d.MergeCfg.DefaultMaxRows
	}
	return merge.DefaultMaxRows
}

func (d *ToolDeps) maxRowsCap() int {
	if d.MergeCfg != nil && d.MergeCfg.MaxRowsCap > 0 {
		return d.MergeCfg.MaxRowsCap
	}
	return merge.MaxRowsCap
}

func (d *ToolDeps) logToolCall(clientName, toolName string, args map[string]interface{}, duration int64, success bool) {
	if d.AuditLogger != nil {
		d.AuditLogger.LogMCPToolCall(clientName, "", toolName, args, duration, success)
	}
}

func getClientName(ctx context.Context) string {
	client, _ := ctx.Value(ctxKeyMCPClient).(*config.APIClient)
	if client == nil {
		return ""
	}
	return client.Name
}
