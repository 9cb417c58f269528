package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// 必需列名(区分大小写)
const (
	ColumnEquipmentName = "Equipment Name"
	ColumnType          = "Type"
	ColumnFlowrate      = "Flowrate"
	ColumnPressure      = "Pressure"
	ColumnTemperature   = "Temperature"
)

// RequiredColumns 上传数据必须包含的列，按校验报告顺序排列
var RequiredColumns = []string{
	ColumnEquipmentName,
	ColumnType,
	ColumnFlowrate,
	ColumnPressure,
	ColumnTemperature,
}

// Dataset 上传的设备数据集，创建后不再修改
type Dataset struct {
	ID               uint                              `gorm:"primarykey" json:"id"`
	OwnerID          uint                              `gorm:"not null;index:idx_owner_uploaded,priority:1" json:"owner_id"`
	Filename         string                            `gorm:"size:255;not null" json:"filename"`
	UploadedAt       time.Time                         `gorm:"not null;index:idx_owner_uploaded,priority:2" json:"uploaded_at"`
	TotalCount       int                               `gorm:"not null" json:"total_count"`
	AvgFlowrate      *float64                          `json:"avg_flowrate"`
	AvgPressure      *float64                          `json:"avg_pressure"`
	AvgTemperature   *float64                          `json:"avg_temperature"`
	TypeDistribution TypeDistribution                  `gorm:"type:text;not null" json:"equipment_type_distribution"`
	Columns          datatypes.JSONType[[]string]      `json:"columns"`
	Rows             datatypes.JSONType[EquipmentRows] `json:"raw_data"`
}

// TableName 指定表名
func (Dataset) TableName() string {
	return "equipment_datasets"
}

// Field 单元格，Value 为 string、float64 或 nil
type Field struct {
	Column string
	Value  interface{}
}

// EquipmentRow 一条测量记录，按表头顺序保存列
type EquipmentRow []Field

// Get 按列名取值
func (r EquipmentRow) Get(column string) (interface{}, bool) {
	for _, f := range r {
		if f.Column == column {
			return f.Value, true
		}
	}
	return nil, false
}

// MarshalJSON 输出保持列顺序的JSON对象
func (r EquipmentRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Column)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("序列化列 %q 失败: %w", f.Column, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON 解析JSON对象并保留键顺序
func (r *EquipmentRow) UnmarshalJSON(b []byte) error {
	row := EquipmentRow{}
	err := decodeOrderedObject(b, func(key string, dec *json.Decoder) error {
		var v interface{}
		if err := dec.Decode(&v); err != nil {
			return err
		}
		row = append(row, Field{Column: key, Value: v})
		return nil
	})
	if err != nil {
		return err
	}
	*r = row
	return nil
}

// EquipmentRows 数据集的全部记录
type EquipmentRows []EquipmentRow

// TypeCount 设备类型及其出现次数
type TypeCount struct {
	Type  string
	Count int
}

// TypeDistribution 设备类型分布，按首次出现顺序排列
type TypeDistribution []TypeCount

// Total 分布计数之和
func (d TypeDistribution) Total() int {
	total := 0
	for _, tc := range d {
		total += tc.Count
	}
	return total
}

// MarshalJSON 输出 {"类型": 次数} 形式且保持顺序
func (d TypeDistribution) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, tc := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(tc.Type)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		fmt.Fprintf(&buf, ":%d", tc.Count)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON 解析分布对象并保留键顺序
func (d *TypeDistribution) UnmarshalJSON(b []byte) error {
	dist := TypeDistribution{}
	err := decodeOrderedObject(b, func(key string, dec *json.Decoder) error {
		var n int
		if err := dec.Decode(&n); err != nil {
			return err
		}
		dist = append(dist, TypeCount{Type: key, Count: n})
		return nil
	})
	if err != nil {
		return err
	}
	*d = dist
	return nil
}

// Scan 实现sql.Scanner接口
func (d *TypeDistribution) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*d = TypeDistribution{}
		return nil
	case []byte:
		return d.UnmarshalJSON(v)
	case string:
		return d.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("无法解析类型分布: %T", value)
	}
}

// Value 实现driver.Valuer接口
func (d TypeDistribution) Value() (driver.Value, error) {
	b, err := d.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// decodeOrderedObject 逐个读取JSON对象的键值对
func decodeOrderedObject(b []byte, each func(key string, dec *json.Decoder) error) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("期望JSON对象，得到 %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("无效的JSON键: %v", tok)
		}
		if err := each(key, dec); err != nil {
			return fmt.Errorf("解析键 %q 失败: %w", key, err)
		}
	}
	_, err = dec.Token()
	return err
}
