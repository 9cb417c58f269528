package config

import (
	"fmt"
	"time"
)

// Config 应用配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Redis    RedisConfig    `mapstructure:"redis_service" yaml:"redis_service"`
	JWT      JWTConfig      `mapstructure:"jwt" yaml:"jwt"`
	Admin    AdminConfig    `mapstructure:"admin" yaml:"admin"`
	CORS     CORSConfig     `mapstructure:"cors" yaml:"cors"`
	Dataset  DatasetConfig  `mapstructure:"dataset" yaml:"dataset"`
	Report   ReportConfig   `mapstructure:"report" yaml:"report"`
	Kafka    KafkaConfig    `mapstructure:"kafka" yaml:"kafka"`
	InfluxDB InfluxDBConfig `mapstructure:"influxdb" yaml:"influxdb"`
	Metrics  MetricsConfig  `mapstructure:"metrics" yaml:"metrics"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host           string `mapstructure:"host" yaml:"host"`
	Port           int    `mapstructure:"port" yaml:"port" validate:"min=1,max=65535"`
	ProductionMode bool   `mapstructure:"production_mode" yaml:"production_mode"`
}

// GetAddress 获取服务器地址
func (s *ServerConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=trace debug info warn warning error fatal panic"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=json text"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path" validate:"required"`
}

// RedisConfig Redis配置，未启用时使用进程内的用户锁
type RedisConfig struct {
	Enabled     bool   `mapstructure:"enabled" yaml:"enabled"`
	Host        string `mapstructure:"host" yaml:"host" validate:"required_if=Enabled true"`
	Port        int    `mapstructure:"port" yaml:"port"`
	DB          int    `mapstructure:"db" yaml:"db"`
	Password    string `mapstructure:"password" yaml:"password"`
	MaxWaitTime int    `mapstructure:"max_wait_time" yaml:"max_wait_time"`
	LockTTL     int    `mapstructure:"lock_ttl" yaml:"lock_ttl"`
}

// GetAddress 获取Redis地址
func (r *RedisConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// GetMaxWaitDuration 获取最大等待时间
func (r *RedisConfig) GetMaxWaitDuration() time.Duration {
	return time.Duration(r.MaxWaitTime) * time.Second
}

// GetLockTTL 获取锁过期时间
func (r *RedisConfig) GetLockTTL() time.Duration {
	return time.Duration(r.LockTTL) * time.Second
}

// JWTConfig JWT配置
type JWTConfig struct {
	SecretKey     string `mapstructure:"secret_key" yaml:"secret_key" validate:"required"`
	Algorithm     string `mapstructure:"algorithm" yaml:"algorithm"`
	ExpireMinutes int    `mapstructure:"expire_minutes" yaml:"expire_minutes"`
}

// GetExpireDuration 获取过期时间
func (j *JWTConfig) GetExpireDuration() time.Duration {
	return time.Duration(j.ExpireMinutes) * time.Minute
}

// AdminConfig 管理员配置
type AdminConfig struct {
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password" validate:"required"`
}

// CORSConfig CORS配置
type CORSConfig struct {
	Origins          []string `mapstructure:"origins" yaml:"origins"`
	AllowCredentials bool     `mapstructure:"allow_credentials" yaml:"allow_credentials"`
	AllowMethods     []string `mapstructure:"allow_methods" yaml:"allow_methods"`
	AllowHeaders     []string `mapstructure:"allow_headers" yaml:"allow_headers"`
}

// DatasetConfig 数据集配置
type DatasetConfig struct {
	// RetentionCap 每个用户保留的数据集数量
	RetentionCap int `mapstructure:"retention_cap" yaml:"retention_cap" validate:"min=1"`
	// MaxUploadMB 上传文件大小上限
	MaxUploadMB int `mapstructure:"max_upload_mb" yaml:"max_upload_mb" validate:"min=1"`
}

// MaxUploadBytes 上传大小上限(字节)
func (d *DatasetConfig) MaxUploadBytes() int64 {
	return int64(d.MaxUploadMB) << 20
}

// ReportConfig 报告配置
type ReportConfig struct {
	// Compress 是否压缩PDF内容流
	Compress bool `mapstructure:"compress" yaml:"compress"`
	// FontPath TrueType字体，为空时使用内置Go字体
	FontPath     string `mapstructure:"font_path" yaml:"font_path"`
	BoldFontPath string `mapstructure:"bold_font_path" yaml:"bold_font_path" validate:"excluded_without=FontPath"`
}

// KafkaConfig 数据集事件推送配置
type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled" yaml:"enabled"`
	Brokers []string `mapstructure:"brokers" yaml:"brokers" validate:"required_if=Enabled true"`
	Topic   string   `mapstructure:"topic" yaml:"topic"`
}

// InfluxDBConfig 统计结果导出配置
type InfluxDBConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	URL     string `mapstructure:"url" yaml:"url" validate:"required_if=Enabled true"`
	Token   string `mapstructure:"token" yaml:"token"`
	Org     string `mapstructure:"org" yaml:"org"`
	Bucket  string `mapstructure:"bucket" yaml:"bucket"`
}

// MetricsConfig Prometheus指标配置
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
}
