package dataset

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadCSV(t *testing.T) {
	ds, err := ReadCSV(strings.NewReader("id,name\n1,alice\n2,bob\n"))
	require.NoError(t, err)
	require.Len(t, ds.Rows, 2)

	assert.Equal(t, []string{"id", "name"}, ds.ColumnUnion())

	v, ok := ds.Rows[0].Get("id")
	require.True(t, ok)
	assert.Equal(t, "1", v)

	v, ok = ds.Rows[1].Get("name")
	require.True(t, ok)
	assert.Equal(t, "bob", v)
}

func TestReadCSV_UTF8BOM(t *testing.T) {
	ds, err := ReadCSV(strings.NewReader("\xef\xbb\xbfid,name\n1,a\n"))
	require.NoError(t, err)
	require.Len(t, ds.Rows, 1)
	// The BOM must not leak into the first header.
	assert.Equal(t, []string{"id", "name"}, ds.ColumnUnion())
}

func TestReadCSV_RaggedRecords(t *testing.T) {
	ds, err := ReadCSV(strings.NewReader("a,b,c\n1,2\n3,4,5,6\n"))
	require.NoError(t, err)
	require.Len(t, ds.Rows, 2)

	// Short records simply omit trailing columns; extra fields are dropped.
	assert.False(t, ds.Rows[0].Has("c"))
	assert.Equal(t, 3, ds.Rows[1].Len())
}

func TestReadCSV_Empty(t *testing.T) {
	ds, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, ds.Rows)
}

func TestLoadCSV_File(t *testing.T) {
	path := writeFile(t, "data.csv", "k,v\n7,x\n")
	ds, err := LoadCSV(path)
	require.NoError(t, err)
	require.Len(t, ds.Rows, 1)
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "data.json", `[{"id":1,"name":"a"},{"name":"b","extra":true}]`)
	ds, err := LoadJSON(path)
	require.NoError(t, err)
	require.Len(t, ds.Rows, 2)

	// Column union honors per-document key order.
	assert.Equal(t, []string{"id", "name", "extra"}, ds.ColumnUnion())

	v, ok := ds.Rows[0].Get("id")
	require.True(t, ok)
	assert.Equal(t, json.Number("1"), v)
}

func TestLoadJSON_Invalid(t *testing.T) {
	path := writeFile(t, "bad.json", `{"not":"an array"}`)
	_, err := LoadJSON(path)
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"csv", FormatCSV},
		{".CSV", FormatCSV},
		{"json", FormatJSON},
		{"xlsx", FormatXLSX},
		{"excel", FormatXLSX},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseFormat("parquet")
	assert.Error(t, err)
}

func TestLoadFile_InfersFormatAndSetsLabel(t *testing.T) {
	path := writeFile(t, "inferred.csv", "a\n1\n")
	ds, err := LoadFile(path, "", "my label")
	require.NoError(t, err)
	assert.Equal(t, "my label", ds.Label)
	require.Len(t, ds.Rows, 1)

	_, err = LoadFile("noextension", "", "")
	assert.Error(t, err)
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.csv"), FormatCSV, "")
	assert.Error(t, err)
}
