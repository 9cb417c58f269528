package influxdb

import (
	"context"
	"fmt"
	"strconv"

	"equip-go/internal/config"
	"equip-go/internal/models"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/sirupsen/logrus"
)

// Measurement 名称
const (
	MeasurementSummary      = "equipment_dataset_summary"
	MeasurementDistribution = "equipment_type_distribution"
)

// 空类型的标签值，行协议不允许空标签
const blankType = "(blank)"

// Exporter 把数据集统计结果写入InfluxDB v2
type Exporter struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	logger   logrus.FieldLogger
}

// NewExporter 创建InfluxDB客户端并检查连通性
func NewExporter(ctx context.Context, cfg config.InfluxDBConfig, logger logrus.FieldLogger) (*Exporter, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	client := influxdb2.NewClient(cfg.URL, cfg.Token)

	if _, err := client.Health(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("连接InfluxDB失败: %w", err)
	}

	return &Exporter{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		logger:   logger,
	}, nil
}

// Points 数据集汇总与类型分布对应的数据点，时间戳为上传时间
func Points(ds *models.Dataset) []*write.Point {
	owner := strconv.FormatUint(uint64(ds.OwnerID), 10)
	dataset := strconv.FormatUint(uint64(ds.ID), 10)

	fields := map[string]interface{}{
		"total_count": ds.TotalCount,
	}
	// 空均值不写入字段
	if ds.AvgFlowrate != nil {
		fields["avg_flowrate"] = *ds.AvgFlowrate
	}
	if ds.AvgPressure != nil {
		fields["avg_pressure"] = *ds.AvgPressure
	}
	if ds.AvgTemperature != nil {
		fields["avg_temperature"] = *ds.AvgTemperature
	}

	points := []*write.Point{
		write.NewPoint(
			MeasurementSummary,
			map[string]string{
				"owner_id":   owner,
				"dataset_id": dataset,
				"filename":   ds.Filename,
			},
			fields,
			ds.UploadedAt,
		),
	}

	for _, tc := range ds.TypeDistribution {
		typ := tc.Type
		if typ == "" {
			typ = blankType
		}
		points = append(points, write.NewPoint(
			MeasurementDistribution,
			map[string]string{
				"owner_id":       owner,
				"dataset_id":     dataset,
				"equipment_type": typ,
			},
			map[string]interface{}{
				"count": tc.Count,
			},
			ds.UploadedAt,
		))
	}
	return points
}

// OnCreated 写入新数据集的统计结果
func (e *Exporter) OnCreated(ctx context.Context, ds *models.Dataset, evicted []uint) error {
	points := Points(ds)
	if err := e.writeAPI.WritePoint(ctx, points...); err != nil {
		return fmt.Errorf("写入InfluxDB失败: %w", err)
	}
	e.logger.WithFields(logrus.Fields{
		"dataset_id": ds.ID,
		"points":     len(points),
	}).Debug("统计结果已写入InfluxDB")
	return nil
}

// OnDeleted 时序数据保留历史，删除时不处理
func (e *Exporter) OnDeleted(ctx context.Context, ownerID, datasetID uint) error {
	return nil
}

// Close 关闭客户端
func (e *Exporter) Close() {
	e.client.Close()
}
