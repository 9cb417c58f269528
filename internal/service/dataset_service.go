package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"equip-go/internal/ingest"
	"equip-go/internal/metrics"
	"equip-go/internal/models"
	"equip-go/internal/repository"
	"equip-go/internal/stats"
	"equip-go/internal/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrNotFound 数据集不存在或不属于当前用户
var ErrNotFound = errors.New("数据集不存在")

// DefaultRetentionCap 每个用户默认保留的数据集数量
const DefaultRetentionCap = 5

// DatasetService 数据集服务
type DatasetService struct {
	repo         *repository.DatasetRepository
	retentionCap int
	locker       OwnerLocker
	sinks        []DatasetEventSink
	metrics      *metrics.Metrics
	logger       logrus.FieldLogger
	now          func() time.Time
}

// NewDatasetService 创建数据集服务
func NewDatasetService(repo *repository.DatasetRepository, retentionCap int, logger logrus.FieldLogger) *DatasetService {
	if retentionCap < 1 {
		retentionCap = DefaultRetentionCap
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &DatasetService{
		repo:         repo,
		retentionCap: retentionCap,
		locker:       NewLocalLocker(),
		logger:       logger,
		now:          time.Now,
	}
}

// WithLocker 替换用户锁(多实例部署时使用Redis锁)
func (s *DatasetService) WithLocker(locker OwnerLocker) *DatasetService {
	s.locker = locker
	return s
}

// WithSink 增加变更通知接收者
func (s *DatasetService) WithSink(sink DatasetEventSink) *DatasetService {
	s.sinks = append(s.sinks, sink)
	return s
}

// WithMetrics 设置指标
func (s *DatasetService) WithMetrics(m *metrics.Metrics) *DatasetService {
	s.metrics = m
	return s
}

// WithClock 设置时钟
func (s *DatasetService) WithClock(now func() time.Time) *DatasetService {
	s.now = now
	return s
}

// RetentionCap 每个用户保留的数据集数量
func (s *DatasetService) RetentionCap() int {
	return s.retentionCap
}

// Upload 解析、校验并统计上传内容，然后保存为新数据集
// 校验失败时不写入任何数据
func (s *DatasetService) Upload(ctx context.Context, ownerID uint, filename string, content []byte) (*models.Dataset, error) {
	start := time.Now()

	columns, rows, err := ingest.Ingest(filename, content)
	if err != nil {
		s.metrics.ObserveUpload(uploadResult(err), 0, 0)
		s.logger.WithFields(logrus.Fields{
			"owner_id": ownerID,
			"filename": filename,
		}).WithError(err).Warn("上传数据校验失败")
		return nil, err
	}

	summary := stats.Summarize(rows)
	ds, err := s.Create(ctx, ownerID, filename, columns, rows, summary)
	if err != nil {
		s.metrics.ObserveUpload(metrics.ResultError, 0, 0)
		return nil, err
	}

	s.metrics.ObserveUpload(metrics.ResultOK, len(rows), time.Since(start).Seconds())
	return ds, nil
}

// Create 保存数据集并执行保留策略，插入与淘汰在同一事务内完成
func (s *DatasetService) Create(ctx context.Context, ownerID uint, filename string, columns []string, rows models.EquipmentRows, summary stats.Summary) (*models.Dataset, error) {
	if columns == nil {
		columns = []string{}
	}
	if rows == nil {
		rows = models.EquipmentRows{}
	}
	dist := summary.TypeDistribution
	if dist == nil {
		dist = models.TypeDistribution{}
	}

	ds := &models.Dataset{
		OwnerID:          ownerID,
		Filename:         filename,
		TotalCount:       summary.TotalCount,
		AvgFlowrate:      summary.AvgFlowrate,
		AvgPressure:      summary.AvgPressure,
		AvgTemperature:   summary.AvgTemperature,
		TypeDistribution: dist,
		Columns:          datatypes.NewJSONType(columns),
		Rows:             datatypes.NewJSONType(rows),
	}

	evicted, err := s.save(ctx, ds)
	if err != nil {
		return nil, err
	}

	s.metrics.AddEvicted(len(evicted))
	s.logger.WithFields(logrus.Fields{
		"owner_id":   ownerID,
		"dataset_id": ds.ID,
		"filename":   filename,
		"rows":       ds.TotalCount,
		"evicted":    evicted,
	}).Info("数据集已保存")

	for _, sink := range s.sinks {
		if err := sink.OnCreated(ctx, ds, evicted); err != nil {
			s.logger.WithError(err).WithField("dataset_id", ds.ID).Error("推送数据集创建通知失败")
		}
	}
	return ds, nil
}

// save 持有用户锁写入数据集并淘汰超出上限的旧数据集，提交后即释放锁
func (s *DatasetService) save(ctx context.Context, ds *models.Dataset) ([]uint, error) {
	unlock, err := s.locker.Lock(ctx, ownerKey(ds.OwnerID))
	if err != nil {
		return nil, fmt.Errorf("获取用户锁失败: %w", err)
	}
	defer unlock()

	// 加锁后取时间，保证同一用户的上传时间与写入顺序一致
	ds.UploadedAt = s.now().UTC()

	var evicted []uint
	err = s.repo.Transaction(func(tx *repository.DatasetRepository) error {
		if err := tx.Create(ds); err != nil {
			return fmt.Errorf("保存数据集失败: %w", err)
		}
		ids, err := tx.DeleteOverflow(ds.OwnerID, s.retentionCap)
		if err != nil {
			return fmt.Errorf("清理历史数据集失败: %w", err)
		}
		evicted = ids
		return nil
	})
	return evicted, err
}

// ListByOwner 按上传时间倒序列出用户的数据集，limit<=0时返回全部
func (s *DatasetService) ListByOwner(ctx context.Context, ownerID uint, limit int) ([]models.Dataset, error) {
	datasets, _, err := s.repo.ListByUserID(ownerID, 0, limit)
	if err != nil {
		return nil, fmt.Errorf("查询数据集列表失败: %w", err)
	}
	return datasets, nil
}

// GetByID 获取用户的数据集，不存在和无权访问返回相同的ErrNotFound
func (s *DatasetService) GetByID(ctx context.Context, ownerID, id uint) (*models.Dataset, error) {
	ds, err := s.repo.GetByIDAndUserID(id, ownerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询数据集失败: %w", err)
	}
	return ds, nil
}

// GetLatest 获取用户最新的数据集
func (s *DatasetService) GetLatest(ctx context.Context, ownerID uint) (*models.Dataset, error) {
	ds, err := s.repo.GetLatestByUserID(ownerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询最新数据集失败: %w", err)
	}
	return ds, nil
}

// Delete 删除用户的数据集
func (s *DatasetService) Delete(ctx context.Context, ownerID, id uint) error {
	if err := s.remove(ctx, ownerID, id); err != nil {
		return err
	}

	s.metrics.IncDeleted()
	s.logger.WithFields(logrus.Fields{
		"owner_id":   ownerID,
		"dataset_id": id,
	}).Info("数据集已删除")

	for _, sink := range s.sinks {
		if err := sink.OnDeleted(ctx, ownerID, id); err != nil {
			s.logger.WithError(err).WithField("dataset_id", id).Error("推送数据集删除通知失败")
		}
	}
	return nil
}

func (s *DatasetService) remove(ctx context.Context, ownerID, id uint) error {
	unlock, err := s.locker.Lock(ctx, ownerKey(ownerID))
	if err != nil {
		return fmt.Errorf("获取用户锁失败: %w", err)
	}
	defer unlock()

	deleted, err := s.repo.Delete(id, ownerID)
	if err != nil {
		return fmt.Errorf("删除数据集失败: %w", err)
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

// ExportCSV 把数据集的原始记录按存储的列顺序导出为CSV
func (s *DatasetService) ExportCSV(ctx context.Context, ownerID, id uint, w io.Writer) (*models.Dataset, error) {
	ds, err := s.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if err := utils.WriteRowsCSV(w, ds.Columns.Data(), ds.Rows.Data()); err != nil {
		return nil, err
	}
	return ds, nil
}

func uploadResult(err error) string {
	var (
		schemaErr *ingest.SchemaError
		raggedErr *ingest.RaggedRowError
	)
	switch {
	case errors.As(err, &schemaErr), errors.As(err, &raggedErr):
		return metrics.ResultSchemaError
	case errors.Is(err, ingest.ErrEmptyPayload):
		return metrics.ResultEmptyPayload
	default:
		return metrics.ResultError
	}
}
