package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRow_SetGet(t *testing.T) {
	r := NewRow()
	r.Set("a", 1).Set("b", "x").Set("a", 2)

	v, ok := r.Get("a")
	require.True(t, ok)
	assert.Equal(t, 2, v)

	_, ok = r.Get("missing")
	assert.False(t, ok)

	// Re-setting a column does not duplicate it in the order.
	assert.Equal(t, []string{"a", "b"}, r.Columns())
	assert.Equal(t, 2, r.Len())
}

func TestRow_NilSafe(t *testing.T) {
	var r *Row
	_, ok := r.Get("a")
	assert.False(t, ok)
	assert.Nil(t, r.Columns())
	assert.Equal(t, 0, r.Len())
}

func TestRow_UnmarshalPreservesOrder(t *testing.T) {
	var r Row
	require.NoError(t, json.Unmarshal([]byte(`{"z":1,"a":"two","m":null}`), &r))

	assert.Equal(t, []string{"z", "a", "m"}, r.Columns())

	v, ok := r.Get("z")
	require.True(t, ok)
	assert.Equal(t, json.Number("1"), v)

	v, ok = r.Get("m")
	require.True(t, ok)
	assert.Nil(t, v)
}

func TestRow_JSONRoundTrip(t *testing.T) {
	original := `{"id":42,"name":"a","nested":{"x":1},"list":[1,2]}`
	var r Row
	require.NoError(t, json.Unmarshal([]byte(original), &r))

	data, err := json.Marshal(&r)
	require.NoError(t, err)
	assert.JSONEq(t, original, string(data))
	assert.Equal(t, []string{"id", "name", "nested", "list"}, r.Columns())
}

func TestRow_UnmarshalRejectsNonObjects(t *testing.T) {
	var r Row
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &r))
	assert.Error(t, json.Unmarshal([]byte(`"str"`), &r))
}

func TestDataset_ColumnUnion(t *testing.T) {
	d := &Dataset{Rows: []*Row{
		NewRow().Set("a", 1).Set("b", 2),
		NewRow().Set("b", 3).Set("c", 4),
		NewRow().Set("d", 5),
	}}

	assert.Equal(t, []string{"a", "b", "c", "d"}, d.ColumnUnion())
	assert.True(t, d.HasColumn("c"))
	assert.False(t, d.HasColumn("z"))
	assert.Equal(t, 3, d.RowCount())
}

func TestDataset_NilSafe(t *testing.T) {
	var d *Dataset
	assert.Nil(t, d.ColumnUnion())
	assert.False(t, d.HasColumn("a"))
	assert.Equal(t, 0, d.RowCount())
}
