package dto

import (
	"equip-go/internal/models"
)

// SummaryStats 汇总统计
type SummaryStats struct {
	TotalCount       int                     `json:"total_count"`
	AvgFlowrate      *float64                `json:"avg_flowrate"`
	AvgPressure      *float64                `json:"avg_pressure"`
	AvgTemperature   *float64                `json:"avg_temperature"`
	TypeDistribution models.TypeDistribution `json:"equipment_type_distribution"`
}

// SummaryResponse 数据集汇总响应
type SummaryResponse struct {
	ID         uint         `json:"id"`
	Filename   string       `json:"filename"`
	UploadedAt string       `json:"uploaded_at"`
	Summary    SummaryStats `json:"summary"`
}

// UploadResponse 上传响应，附带解析后的记录
type UploadResponse struct {
	SummaryResponse
	Data models.EquipmentRows `json:"data"`
}

// DatasetListItem 历史列表项(不含记录)
type DatasetListItem struct {
	ID         uint   `json:"id"`
	Filename   string `json:"filename"`
	UploadedAt string `json:"uploaded_at"`
	TotalCount int    `json:"total_count"`
}

// DatasetDetailResponse 数据集完整内容
type DatasetDetailResponse struct {
	ID               uint                    `json:"id"`
	Filename         string                  `json:"filename"`
	UploadedAt       string                  `json:"uploaded_at"`
	TotalCount       int                     `json:"total_count"`
	AvgFlowrate      *float64                `json:"avg_flowrate"`
	AvgPressure      *float64                `json:"avg_pressure"`
	AvgTemperature   *float64                `json:"avg_temperature"`
	TypeDistribution models.TypeDistribution `json:"equipment_type_distribution"`
	Columns          []string                `json:"columns"`
	RawData          models.EquipmentRows    `json:"raw_data"`
}

// NewSummaryResponse 构建汇总响应
func NewSummaryResponse(ds *models.Dataset) SummaryResponse {
	return SummaryResponse{
		ID:         ds.ID,
		Filename:   ds.Filename,
		UploadedAt: ds.UploadedAt.UTC().Format(TimeLayout),
		Summary: SummaryStats{
			TotalCount:       ds.TotalCount,
			AvgFlowrate:      ds.AvgFlowrate,
			AvgPressure:      ds.AvgPressure,
			AvgTemperature:   ds.AvgTemperature,
			TypeDistribution: ds.TypeDistribution,
		},
	}
}

// NewUploadResponse 构建上传响应
func NewUploadResponse(ds *models.Dataset) UploadResponse {
	return UploadResponse{
		SummaryResponse: NewSummaryResponse(ds),
		Data:            ds.Rows.Data(),
	}
}

// NewDatasetListItems 构建历史列表
func NewDatasetListItems(datasets []models.Dataset) []DatasetListItem {
	items := make([]DatasetListItem, len(datasets))
	for i, ds := range datasets {
		items[i] = DatasetListItem{
			ID:         ds.ID,
			Filename:   ds.Filename,
			UploadedAt: ds.UploadedAt.UTC().Format(TimeLayout),
			TotalCount: ds.TotalCount,
		}
	}
	return items
}

// NewDatasetDetailResponse 构建完整数据集响应
func NewDatasetDetailResponse(ds *models.Dataset) DatasetDetailResponse {
	return DatasetDetailResponse{
		ID:               ds.ID,
		Filename:         ds.Filename,
		UploadedAt:       ds.UploadedAt.UTC().Format(TimeLayout),
		TotalCount:       ds.TotalCount,
		AvgFlowrate:      ds.AvgFlowrate,
		AvgPressure:      ds.AvgPressure,
		AvgTemperature:   ds.AvgTemperature,
		TypeDistribution: ds.TypeDistribution,
		Columns:          ds.Columns.Data(),
		RawData:          ds.Rows.Data(),
	}
}
