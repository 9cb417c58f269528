package ingest

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// parseXLSX 读取工作簿的第一个工作表，第一行非空行为表头
func parseXLSX(payload []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("打开XLSX失败: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyPayload
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("读取工作表 %s 失败: %w", sheets[0], err)
	}

	var table *Table
	for _, row := range rows {
		// 跳过空行
		if len(row) == 0 {
			continue
		}
		if table == nil {
			table = &Table{Columns: row}
			continue
		}
		table.Rows = append(table.Rows, row)
	}
	if table == nil {
		return nil, ErrEmptyPayload
	}
	return table, nil
}
