package merge

import (
	"fmt"

	"github.com/arcdb/datamerge/pkg/types"
)

const (
	// DefaultMaxRows is the display cap applied when the caller does not set one.
	DefaultMaxRows = 500
	// MaxRowsCap is the hard upper bound on the display cap.
	MaxRowsCap = 5000
)

// Request describes one merge invocation over two previously fetched,
// independently shaped datasets.
type Request struct {
	Left        *types.Dataset
	Right       *types.Dataset
	LeftKey     string
	RightKey    string
	Type        JoinType
	LeftPrefix  string
	RightPrefix string
	MaxRows     int
	Title       string
}

// Result is the structured merge outcome. Failures are reported through the
// Error field rather than a Go error, so callers render success and failure
// with the same shape.
type Result struct {
	Title         string              `json:"title,omitempty"`
	Columns       []string            `json:"columns"`
	Rows          [][]types.CellValue `json:"rows"`
	RowCount      int                 `json:"rowCount"`
	TotalRowCount int                 `json:"totalRowCount"`
	Truncated     bool                `json:"truncated"`
	Stats         Stats               `json:"stats"`
	Error         string              `json:"error,omitempty"`
}

// Merge joins two datasets by key and returns the combined tabular result plus
// match statistics. The computation is pure: no state survives the call, and
// concurrent invocations over independent inputs are safe.
func Merge(req Request) *Result {
	leftPrefix := req.LeftPrefix
	if leftPrefix == "" {
		leftPrefix = "left"
	}
	rightPrefix := req.RightPrefix
	if rightPrefix == "" {
		rightPrefix = "right"
	}
	maxRows := req.MaxRows
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	if maxRows > MaxRowsCap {
		maxRows = MaxRowsCap
	}

	if msg := validate(req); msg != "" {
		return &Result{
			Title:   req.Title,
			Columns: []string{},
			Rows:    [][]types.CellValue{},
			Stats: Stats{
				LeftRows:  req.Left.RowCount(),
				RightRows: req.Right.RowCount(),
			},
			Error: msg,
		}
	}

	rightIndex := buildIndex(req.Right.Rows, req.RightKey)
	pairs, stats := executeJoin(req.Left.Rows, req.Right.Rows, rightIndex, req.LeftKey, req.Type)

	leftCols := req.Left.ColumnUnion()
	rightCols := req.Right.ColumnUnion()
	columns := prefixedColumns(leftCols, rightCols, leftPrefix, rightPrefix)

	totalRowCount := len(pairs)
	rendered := pairs
	if len(rendered) > maxRows {
		rendered = rendered[:maxRows]
	}

	rows := make([][]types.CellValue, 0, len(rendered))
	for _, pair := range rendered {
		rows = append(rows, projectPair(pair.left, pair.right, leftCols, rightCols))
	}

	return &Result{
		Title:         req.Title,
		Columns:       columns,
		Rows:          rows,
		RowCount:      len(rows),
		TotalRowCount: totalRowCount,
		Truncated:     totalRowCount > len(rows),
		Stats:         stats,
	}
}

// validate checks the request before any join computation. The join-key column
// must appear on at least one row of each side.
func validate(req Request) string {
	if req.Left == nil || req.Right == nil {
		return "both left and right datasets are required"
	}
	if req.LeftKey == "" || req.RightKey == "" {
		return "join key columns are required for both sides"
	}

	leftMissing := !req.Left.HasColumn(req.LeftKey)
	rightMissing := !req.Right.HasColumn(req.RightKey)

	switch {
	case leftMissing && rightMissing:
		return fmt.Sprintf("join key %q not found in any row of the left dataset and join key %q not found in any row of the right dataset", req.LeftKey, req.RightKey)
	case leftMissing:
		return fmt.Sprintf("join key %q not found in any row of the left dataset", req.LeftKey)
	case rightMissing:
		return fmt.Sprintf("join key %q not found in any row of the right dataset", req.RightKey)
	}
	return ""
}
