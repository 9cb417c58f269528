package models

import (
	"equip-go/internal/config"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB 全局数据库实例
var DB *gorm.DB

// InitDB 初始化数据库并迁移表结构
func InitDB(cfg *config.Config) error {
	db, err := OpenDB(cfg.Database.Path)
	if err != nil {
		return err
	}
	DB = db
	return AutoMigrate(DB)
}

// OpenDB 打开SQLite数据库
func OpenDB(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // 使用静默模式
	})
	if err != nil {
		return nil, err
	}

	// SQLite 只允许单个写连接
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

// AutoMigrate 自动迁移数据库表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Dataset{},
	)
}

// GetDB 获取数据库实例
func GetDB() *gorm.DB {
	return DB
}
