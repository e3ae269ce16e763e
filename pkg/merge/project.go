package merge

import "github.com/arcdb/datamerge/pkg/types"

// prefixedColumns builds the merged output header: every left-side column
// prefixed with the left prefix, followed by every right-side column prefixed
// with the right prefix. Prefixing keeps the two namespaces from colliding.
func prefixedColumns(leftCols, rightCols []string, leftPrefix, rightPrefix string) []string {
	out := make([]string, 0, len(leftCols)+len(rightCols))
	for _, col := range leftCols {
		out = append(out, leftPrefix+"."+col)
	}
	for _, col := range rightCols {
		out = append(out, rightPrefix+"."+col)
	}
	return out
}

// projectPair assembles one merged row aligned to the prefixed column order.
// An absent side, or an absent column on a present side, yields a null cell.
func projectPair(left, right *types.Row, leftCols, rightCols []string) []types.CellValue {
	out := make([]types.CellValue, 0, len(leftCols)+len(rightCols))
	out = appendSide(out, left, leftCols)
	out = appendSide(out, right, rightCols)
	return out
}

func appendSide(out []types.CellValue, row *types.Row, cols []string) []types.CellValue {
	for _, col := range cols {
		if row == nil {
			out = append(out, types.NullCell())
			continue
		}
		v, ok := row.Get(col)
		if !ok {
			out = append(out, types.NullCell())
			continue
		}
		out = append(out, types.CellFromAny(v))
	}
	return out
}
