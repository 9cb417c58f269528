package cli

import (
	"context"
	"fmt"
	"io"

	"equip-go/internal/config"
	"equip-go/internal/events"
	"equip-go/internal/influxdb"
	"equip-go/internal/metrics"
	"equip-go/internal/models"
	"equip-go/internal/report"
	"equip-go/internal/repository"
	"equip-go/internal/service"
	"equip-go/internal/utils"
	"equip-go/pkg/redis_lock"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// lockKeyPrefix Redis中用户锁的键前缀
const lockKeyPrefix = "equip:lock:"

// NewLogger 按日志配置创建logrus实例
func NewLogger(cfg config.LogConfig, out io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("无效的日志级别: %w", err)
	}

	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(level)
	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger, nil
}

// app 组装好的服务依赖
type app struct {
	cfg      *config.Config
	logger   *logrus.Logger
	db       *gorm.DB
	users    *repository.UserRepository
	auth     *service.AuthService
	jwt      *utils.JWTManager
	datasets *service.DatasetService
	metrics  *metrics.Metrics
	renderer *report.Renderer

	closers []func()
}

// newApp 打开数据库并按配置接入锁与事件下游
func newApp(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*app, error) {
	renderer := report.NewRenderer(cfg.Report.Compress)
	if cfg.Report.FontPath != "" {
		fonts, err := report.LoadFonts(cfg.Report.FontPath, cfg.Report.BoldFontPath)
		if err != nil {
			return nil, err
		}
		renderer.WithFonts(fonts)
	}

	if err := models.InitDB(cfg); err != nil {
		return nil, fmt.Errorf("初始化数据库失败: %w", err)
	}
	db := models.GetDB()

	a := &app{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		users:    repository.NewUserRepository(db),
		metrics:  metrics.New(),
		renderer: renderer,
	}
	a.closers = append(a.closers, func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	a.jwt = utils.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Algorithm, cfg.JWT.GetExpireDuration())
	a.auth = service.NewAuthService(a.users, a.jwt, cfg)
	a.datasets = service.NewDatasetService(repository.NewDatasetRepository(db), cfg.Dataset.RetentionCap, logger).
		WithMetrics(a.metrics)

	if err := a.wireOptional(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// wireOptional 接入Redis锁、Kafka事件和InfluxDB导出
func (a *app) wireOptional(ctx context.Context) error {
	cfg := a.cfg

	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.GetAddress(),
			DB:       cfg.Redis.DB,
			Password: cfg.Redis.Password,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return fmt.Errorf("连接Redis失败: %w", err)
		}
		a.closers = append(a.closers, func() { client.Close() })
		lock := redis_lock.NewRedisLock(client, lockKeyPrefix, cfg.Redis.GetLockTTL(), cfg.Redis.GetMaxWaitDuration(), a.logger)
		a.datasets.WithLocker(lock)
		a.logger.WithField("addr", cfg.Redis.GetAddress()).Info("已启用Redis用户锁")
	}

	if cfg.Kafka.Enabled {
		pub, err := events.NewPublisher(cfg.Kafka, a.logger)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func() { pub.Close() })
		a.datasets.WithSink(pub)
		a.logger.WithField("topic", cfg.Kafka.Topic).Info("已启用Kafka数据集事件")
	}

	if cfg.InfluxDB.Enabled {
		exp, err := influxdb.NewExporter(ctx, cfg.InfluxDB, a.logger)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, exp.Close)
		a.datasets.WithSink(exp)
		a.logger.WithField("bucket", cfg.InfluxDB.Bucket).Info("已启用InfluxDB统计导出")
	}

	return nil
}

// ownerID 按用户名查找数据集所有者
func (a *app) ownerID(username string) (uint, error) {
	user, err := a.users.GetByUsername(username)
	if err != nil {
		return 0, fmt.Errorf("用户不存在: %s", username)
	}
	return user.ID, nil
}

// Close 按接入的逆序释放资源
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
