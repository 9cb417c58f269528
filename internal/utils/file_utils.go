package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strconv"
	"strings"

	"equip-go/internal/models"
)

// WriteRowsCSV 按列顺序把记录写为CSV，空值写为空单元格
func WriteRowsCSV(w io.Writer, columns []string, rows models.EquipmentRows) error {
	writer := csv.NewWriter(w)

	// 写入标题
	if err := writer.Write(columns); err != nil {
		return fmt.Errorf("写入CSV标题失败: %w", err)
	}

	record := make([]string, len(columns))
	for _, row := range rows {
		for i, col := range columns {
			v, _ := row.Get(col)
			record[i] = FormatCell(v)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("写入CSV行失败: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// FormatCell 单元格值转为文本
func FormatCell(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// AttachmentHeader 生成下载用的Content-Disposition
func AttachmentHeader(filename string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": filename})
}

// BaseName 去掉扩展名的文件名，用于派生下载文件名
func BaseName(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// IsSupportedUpload 是否为支持的上传格式
func IsSupportedUpload(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".xlsx", ".txt", "":
		return true
	}
	return false
}
