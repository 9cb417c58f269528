// Package ingest 解析上传的表格数据并校验必需列
package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"equip-go/internal/models"
)

// ErrEmptyPayload 数据无法解析出表头
var ErrEmptyPayload = errors.New("文件为空或缺少表头")

// SchemaError 缺少必需列，Missing 按必需列顺序列出全部缺失列
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return "缺少必需列: " + strings.Join(e.Missing, ", ")
}

// RaggedRowError 记录的非空单元格超出表头列数，Record 从第1条数据记录开始计数
type RaggedRowError struct {
	Record  int
	Cells   int
	Columns int
}

func (e *RaggedRowError) Error() string {
	return fmt.Sprintf("第%d条记录有%d个单元格，超出表头的%d列", e.Record, e.Cells, e.Columns)
}

// Table 原始表格：表头与未转换的单元格
type Table struct {
	Columns []string
	Rows    [][]string
}

// nullTokens 视为空值的单元格内容
var nullTokens = map[string]bool{
	"":     true,
	"NA":   true,
	"N/A":  true,
	"NaN":  true,
	"nan":  true,
	"null": true,
	"NULL": true,
	"None": true,
	"#N/A": true,
}

// Parse 按文件扩展名解析表格，默认按CSV处理
func Parse(filename string, payload []byte) (*Table, error) {
	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		return parseXLSX(payload)
	}
	return parseCSV(payload)
}

func parseCSV(payload []byte) (*Table, error) {
	payload = bytes.TrimPrefix(payload, []byte("\xEF\xBB\xBF"))

	reader := csv.NewReader(bytes.NewReader(payload))
	reader.FieldsPerRecord = -1

	// 读取列名
	headers, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyPayload
	}
	if err != nil {
		return nil, fmt.Errorf("读取CSV表头失败: %w", err)
	}

	table := &Table{Columns: headers}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("读取CSV行失败: %w", err)
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// Validate 校验必需列并把单元格转换为数值、字符串或空值
func Validate(t *Table) (models.EquipmentRows, error) {
	if t == nil || len(t.Columns) == 0 {
		return nil, ErrEmptyPayload
	}

	present := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		present[c] = true
	}
	var missing []string
	for _, c := range models.RequiredColumns {
		if !present[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}

	rows := make(models.EquipmentRows, 0, len(t.Rows))
	for n, raw := range t.Rows {
		if width := trimmedWidth(raw); width > len(t.Columns) {
			return nil, &RaggedRowError{Record: n + 1, Cells: width, Columns: len(t.Columns)}
		}
		row := make(models.EquipmentRow, len(t.Columns))
		for i, col := range t.Columns {
			cell := ""
			if i < len(raw) {
				cell = raw[i]
			}
			row[i] = models.Field{Column: col, Value: Coerce(cell)}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// trimmedWidth 去掉行尾空白单元格后的宽度，导出工具常在行尾补空列
func trimmedWidth(raw []string) int {
	n := len(raw)
	for n > 0 && strings.TrimSpace(raw[n-1]) == "" {
		n--
	}
	return n
}

// Ingest 解析并校验，返回表头和转换后的记录
func Ingest(filename string, payload []byte) ([]string, models.EquipmentRows, error) {
	table, err := Parse(filename, payload)
	if err != nil {
		return nil, nil, err
	}
	rows, err := Validate(table)
	if err != nil {
		return nil, nil, err
	}
	return table.Columns, rows, nil
}

// Coerce 空单元格为nil，数值形式为float64，其余保留原字符串
func Coerce(cell string) interface{} {
	trimmed := strings.TrimSpace(cell)
	if nullTokens[trimmed] {
		return nil
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	return cell
}
