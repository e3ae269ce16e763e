package dataset

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/arcdb/datamerge/pkg/types"
)

// LoadExcel loads a worksheet from an XLSX file, first row as header. An empty
// sheet name selects the first sheet in the workbook.
func LoadExcel(path, sheetName string) (*types.Dataset, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel file: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in %s", path)
	}

	if sheetName == "" {
		sheetName = sheets[0]
	} else {
		found := false
		for _, sheet := range sheets {
			if sheet == sheetName {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("sheet %q not found in %s", sheetName, path)
		}
	}

	records, err := file.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheetName, err)
	}
	if len(records) == 0 {
		return &types.Dataset{Label: sheetName}, nil
	}

	headers := records[0]
	ds := &types.Dataset{Label: sheetName}
	for _, record := range records[1:] {
		row := types.NewRow()
		for i, value := range record {
			if i >= len(headers) || headers[i] == "" {
				continue
			}
			row.Set(headers[i], value)
		}
		ds.Rows = append(ds.Rows, row)
	}

	return ds, nil
}
