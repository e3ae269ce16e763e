package types

// Dataset is an ordered sequence of rows plus optional descriptive metadata.
// Label and ConnectionID are used only for titling and error messages; they
// carry no join semantics.
type Dataset struct {
	Rows         []*Row `json:"rows"`
	Label        string `json:"label,omitempty"`
	ConnectionID string `json:"connectionId,omitempty"`
}

// RowCount returns the number of rows in the dataset.
func (d *Dataset) RowCount() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// ColumnUnion returns the union of all column names observed across the
// dataset's rows, in first-seen order.
func (d *Dataset) ColumnUnion() []string {
	if d == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var cols []string
	for _, row := range d.Rows {
		for _, col := range row.Columns() {
			if _, ok := seen[col]; !ok {
				seen[col] = struct{}{}
				cols = append(cols, col)
			}
		}
	}
	return cols
}

// HasColumn reports whether any row in the dataset carries the column.
func (d *Dataset) HasColumn(col string) bool {
	if d == nil {
		return false
	}
	for _, row := range d.Rows {
		if row.Has(col) {
			return true
		}
	}
	return false
}
