package service

import (
	"context"

	"equip-go/internal/models"
)

// DatasetEventSink 接收数据集变更通知(Kafka、InfluxDB等)
type DatasetEventSink interface {
	OnCreated(ctx context.Context, ds *models.Dataset, evicted []uint) error
	OnDeleted(ctx context.Context, ownerID, datasetID uint) error
}

// SinkFunc 以函数实现DatasetEventSink，删除通知被忽略
type SinkFunc func(ctx context.Context, ds *models.Dataset, evicted []uint) error

// OnCreated 调用函数本身
func (f SinkFunc) OnCreated(ctx context.Context, ds *models.Dataset, evicted []uint) error {
	return f(ctx, ds, evicted)
}

// OnDeleted 不处理
func (f SinkFunc) OnDeleted(ctx context.Context, ownerID, datasetID uint) error {
	return nil
}
