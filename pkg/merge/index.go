package merge

import "github.com/arcdb/datamerge/pkg/types"

// indexEntry records a row together with its position in the source dataset.
// The original index is what the join executor marks as consumed, so that a
// right row matched by several left rows is never re-emitted as unmatched.
type indexEntry struct {
	row           *types.Row
	originalIndex int
}

// buildIndex builds a multi-valued lookup from normalized join-key values to
// rows. Rows whose key value is unkeyable are skipped entirely; bucket order
// preserves input order.
func buildIndex(rows []*types.Row, keyColumn string) map[string][]indexEntry {
	index := make(map[string][]indexEntry)
	for i, row := range rows {
		v, _ := row.Get(keyColumn)
		key, ok := NormalizeKey(v)
		if !ok {
			continue
		}
		index[key] = append(index[key], indexEntry{row: row, originalIndex: i})
	}
	return index
}
