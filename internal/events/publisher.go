// Package events 把数据集的创建和删除推送到Kafka
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"equip-go/internal/config"
	"equip-go/internal/models"

	"github.com/Shopify/sarama"
	"github.com/sirupsen/logrus"
)

// 事件类型
const (
	TypeDatasetCreated = "dataset.created"
	TypeDatasetDeleted = "dataset.deleted"
)

// DatasetEvent 推送到Kafka的消息体
type DatasetEvent struct {
	Type      string `json:"type"`
	DatasetID uint   `json:"dataset_id"`
	OwnerID   uint   `json:"owner_id"`
	Filename  string `json:"filename,omitempty"`
	// UploadedAt 仅创建事件携带
	UploadedAt *time.Time `json:"uploaded_at,omitempty"`
	TotalCount int        `json:"total_count,omitempty"`
	// Evicted 因保留上限被删除的数据集
	Evicted []uint    `json:"evicted,omitempty"`
	SentAt  time.Time `json:"sent_at"`
}

// Publisher Kafka事件发布者
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   logrus.FieldLogger
	now      func() time.Time
}

// NewPublisher 连接Kafka并创建同步生产者
func NewPublisher(cfg config.KafkaConfig, logger logrus.FieldLogger) (*Publisher, error) {
	producer, err := sarama.NewSyncProducer(cfg.Brokers, NewSaramaConfig())
	if err != nil {
		return nil, fmt.Errorf("创建Kafka生产者失败: %w", err)
	}
	return NewPublisherWithProducer(producer, cfg.Topic, logger), nil
}

// NewSaramaConfig 生产者配置
func NewSaramaConfig() *sarama.Config {
	c := sarama.NewConfig()
	c.Producer.RequiredAcks = sarama.WaitForAll
	c.Producer.Retry.Max = 3
	c.Producer.Return.Successes = true
	c.Producer.Partitioner = sarama.NewHashPartitioner
	return c
}

// NewPublisherWithProducer 使用已有的生产者创建发布者
func NewPublisherWithProducer(producer sarama.SyncProducer, topic string, logger logrus.FieldLogger) *Publisher {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Publisher{
		producer: producer,
		topic:    topic,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// OnCreated 发布数据集创建事件
func (p *Publisher) OnCreated(ctx context.Context, ds *models.Dataset, evicted []uint) error {
	uploadedAt := ds.UploadedAt
	return p.publish(ctx, DatasetEvent{
		Type:       TypeDatasetCreated,
		DatasetID:  ds.ID,
		OwnerID:    ds.OwnerID,
		Filename:   ds.Filename,
		UploadedAt: &uploadedAt,
		TotalCount: ds.TotalCount,
		Evicted:    evicted,
	})
}

// OnDeleted 发布数据集删除事件
func (p *Publisher) OnDeleted(ctx context.Context, ownerID, datasetID uint) error {
	return p.publish(ctx, DatasetEvent{
		Type:      TypeDatasetDeleted,
		DatasetID: datasetID,
		OwnerID:   ownerID,
	})
}

func (p *Publisher) publish(ctx context.Context, ev DatasetEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ev.SentAt = p.now()
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("序列化事件失败: %w", err)
	}

	// 同一用户的事件进入同一分区以保持顺序
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(strconv.FormatUint(uint64(ev.OwnerID), 10)),
		Value: sarama.ByteEncoder(body),
	}
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("发送Kafka消息失败: %w", err)
	}

	p.logger.WithFields(logrus.Fields{
		"type":       ev.Type,
		"dataset_id": ev.DatasetID,
		"partition":  partition,
		"offset":     offset,
	}).Debug("数据集事件已发送")
	return nil
}

// Close 关闭生产者
func (p *Publisher) Close() error {
	return p.producer.Close()
}
