// Package stats 计算数据集的汇总统计
package stats

import (
	"fmt"
	"strconv"

	"equip-go/internal/models"
)

// Summary 汇总统计结果
type Summary struct {
	TotalCount       int
	AvgFlowrate      *float64
	AvgPressure      *float64
	AvgTemperature   *float64
	TypeDistribution models.TypeDistribution
}

// Summarize 计算记录数、三个数值列的均值和设备类型分布
// 数值列中的空值和非数值单元格不参与求均值
func Summarize(rows models.EquipmentRows) Summary {
	s := Summary{
		TotalCount:       len(rows),
		AvgFlowrate:      Mean(rows, models.ColumnFlowrate),
		AvgPressure:      Mean(rows, models.ColumnPressure),
		AvgTemperature:   Mean(rows, models.ColumnTemperature),
		TypeDistribution: Distribution(rows, models.ColumnType),
	}
	return s
}

// Mean 列中数值的算术平均值，没有数值时返回nil
func Mean(rows models.EquipmentRows, column string) *float64 {
	var sum float64
	n := 0
	for _, row := range rows {
		v, _ := row.Get(column)
		if f, ok := v.(float64); ok {
			sum += f
			n++
		}
	}
	if n == 0 {
		return nil
	}
	mean := sum / float64(n)
	return &mean
}

// Distribution 按列值分组计数，保持首次出现顺序
// 空值归入空字符串分组
func Distribution(rows models.EquipmentRows, column string) models.TypeDistribution {
	dist := models.TypeDistribution{}
	index := make(map[string]int)
	for _, row := range rows {
		v, _ := row.Get(column)
		key := categoryKey(v)
		if i, ok := index[key]; ok {
			dist[i].Count++
			continue
		}
		index[key] = len(dist)
		dist = append(dist, models.TypeCount{Type: key, Count: 1})
	}
	return dist
}

func categoryKey(v interface{}) string {
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
