// Package report 生成数据集的固定格式报告
package report

import (
	"fmt"
	"strconv"
	"time"

	"equip-go/internal/models"
)

// 报告中的固定文本
const (
	TitlePrefix         = "Equipment Data Report: "
	SummaryHeading      = "Summary Statistics"
	DistributionHeading = "Equipment Type Distribution"
	FooterPrefix        = "Generated on: "
	NotAvailable        = "N/A"

	// FooterLayout 页脚时间格式
	FooterLayout = "2006-01-02 15:04:05"
)

// Table 带表头的二维表
type Table struct {
	Header []string
	Rows   [][]string
}

// Document 与输出格式无关的报告内容
type Document struct {
	Title        string
	Summary      Table
	Distribution Table
	Footer       string
}

// Build 由数据集和生成时间构建报告内容，不访问存储也不读取时钟
func Build(ds *models.Dataset, now time.Time) Document {
	doc := Document{
		Title: TitlePrefix + ds.Filename,
		Summary: Table{
			Header: []string{"Metric", "Value"},
			Rows: [][]string{
				{"Total Equipment Count", strconv.Itoa(ds.TotalCount)},
				{"Average Flowrate", FormatAverage(ds.AvgFlowrate)},
				{"Average Pressure", FormatAverage(ds.AvgPressure)},
				{"Average Temperature", FormatAverage(ds.AvgTemperature)},
			},
		},
		Distribution: Table{
			Header: []string{"Equipment Type", "Count"},
			Rows:   [][]string{},
		},
		Footer: FooterPrefix + now.Format(FooterLayout),
	}

	for _, tc := range ds.TypeDistribution {
		doc.Distribution.Rows = append(doc.Distribution.Rows, []string{tc.Type, strconv.Itoa(tc.Count)})
	}
	return doc
}

// FormatAverage 保留两位小数，空值显示N/A
func FormatAverage(v *float64) string {
	if v == nil {
		return NotAvailable
	}
	return fmt.Sprintf("%.2f", *v)
}
