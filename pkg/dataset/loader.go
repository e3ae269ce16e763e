package dataset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/arcdb/datamerge/pkg/types"
)

// Format names a supported dataset file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// ParseFormat maps a format name or file extension to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "xlsx", "xls", "excel":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported dataset format %q (expected csv, json or xlsx)", s)
	}
}

// LoadFile loads a dataset from a file, dispatching on format. An empty
// format is inferred from the file extension.
func LoadFile(path string, format Format, label string) (*types.Dataset, error) {
	if format == "" {
		idx := strings.LastIndex(path, ".")
		if idx < 0 {
			return nil, fmt.Errorf("cannot infer format of %s; pass one explicitly", path)
		}
		f, err := ParseFormat(path[idx:])
		if err != nil {
			return nil, err
		}
		format = f
	}

	var (
		ds  *types.Dataset
		err error
	)
	switch format {
	case FormatCSV:
		ds, err = LoadCSV(path)
	case FormatJSON:
		ds, err = LoadJSON(path)
	case FormatXLSX:
		ds, err = LoadExcel(path, "")
	default:
		return nil, fmt.Errorf("unsupported dataset format %q", format)
	}
	if err != nil {
		return nil, err
	}
	if label != "" {
		ds.Label = label
	}
	return ds, nil
}

// LoadCSV loads a CSV file whose first record is the header row. Cells stay
// strings; numeric-looking strings are unified with numbers later, at key
// normalization. The reader tolerates UTF-8/UTF-16 byte order marks.
func LoadCSV(path string) (*types.Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv file: %w", err)
	}
	defer file.Close()

	ds, err := ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ds, nil
}

// ReadCSV reads CSV data from a reader, first record as header.
func ReadCSV(r io.Reader) (*types.Dataset, error) {
	// BOMOverride switches decoding when the stream starts with a UTF-8 or
	// UTF-16 byte order mark and passes plain input through untouched.
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err == io.EOF {
		return &types.Dataset{}, nil
	}
	if err != nil {
		return nil, err
	}

	ds := &types.Dataset{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		row := types.NewRow()
		for i, value := range record {
			if i >= len(headers) {
				break
			}
			row.Set(headers[i], value)
		}
		ds.Rows = append(ds.Rows, row)
	}

	return ds, nil
}

// LoadJSON loads a JSON file holding an array of objects. Column order within
// each row follows the document's key order.
func LoadJSON(path string) (*types.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read json file: %w", err)
	}

	var rows []*types.Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return &types.Dataset{Rows: rows}, nil
}
