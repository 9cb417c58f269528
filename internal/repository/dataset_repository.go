package repository

import (
	"equip-go/internal/models"

	"gorm.io/gorm"
)

// 列表按上传时间倒序，同一时间时较大的ID视为较新
const datasetOrder = "uploaded_at DESC, id DESC"

// DatasetRepository 数据集数据访问层
type DatasetRepository struct {
	db *gorm.DB
}

// NewDatasetRepository 创建数据集Repository
func NewDatasetRepository(db *gorm.DB) *DatasetRepository {
	return &DatasetRepository{db: db}
}

// WithTx 返回绑定到事务的Repository
func (r *DatasetRepository) WithTx(tx *gorm.DB) *DatasetRepository {
	return &DatasetRepository{db: tx}
}

// Transaction 在事务中执行fn
func (r *DatasetRepository) Transaction(fn func(repo *DatasetRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}

// Create 创建数据集
func (r *DatasetRepository) Create(ds *models.Dataset) error {
	return r.db.Create(ds).Error
}

// GetByIDAndUserID 根据ID和所有者获取数据集
func (r *DatasetRepository) GetByIDAndUserID(id uint, userID uint) (*models.Dataset, error) {
	var ds models.Dataset
	err := r.db.Where("id = ? AND owner_id = ?", id, userID).First(&ds).Error
	if err != nil {
		return nil, err
	}
	return &ds, nil
}

// GetLatestByUserID 获取用户最新的数据集
func (r *DatasetRepository) GetLatestByUserID(userID uint) (*models.Dataset, error) {
	var ds models.Dataset
	err := r.db.Where("owner_id = ?", userID).Order(datasetOrder).First(&ds).Error
	if err != nil {
		return nil, err
	}
	return &ds, nil
}

// ListByUserID 获取用户的数据集列表(不含原始记录)，limit<=0时不分页
func (r *DatasetRepository) ListByUserID(userID uint, offset, limit int) ([]models.Dataset, int64, error) {
	var datasets []models.Dataset
	var total int64

	query := r.db.Model(&models.Dataset{}).Where("owner_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Omit("rows").Order(datasetOrder)
	if limit > 0 {
		query = query.Offset(offset).Limit(limit)
	}
	err := query.Find(&datasets).Error
	return datasets, total, err
}

// DeleteOverflow 只保留用户最新的keep条数据集，返回被删除的ID(从旧到新)
func (r *DatasetRepository) DeleteOverflow(userID uint, keep int) ([]uint, error) {
	var all []uint
	err := r.db.Model(&models.Dataset{}).
		Where("owner_id = ?", userID).
		Order(datasetOrder).
		Pluck("id", &all).Error
	if err != nil {
		return nil, err
	}
	if keep < 0 {
		keep = 0
	}
	if len(all) <= keep {
		return nil, nil
	}
	ids := append([]uint(nil), all[keep:]...)

	if err := r.db.Delete(&models.Dataset{}, ids).Error; err != nil {
		return nil, err
	}

	// 倒序查询得到的ID，反转为从旧到新
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
	return ids, nil
}

// Delete 删除用户的数据集，返回是否删除了记录
func (r *DatasetRepository) Delete(id uint, userID uint) (bool, error) {
	result := r.db.Where("id = ? AND owner_id = ?", id, userID).Delete(&models.Dataset{})
	return result.RowsAffected > 0, result.Error
}

// DeleteByUserID 删除用户的全部数据集
func (r *DatasetRepository) DeleteByUserID(userID uint) error {
	return r.db.Where("owner_id = ?", userID).Delete(&models.Dataset{}).Error
}
