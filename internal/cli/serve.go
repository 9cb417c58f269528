package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"equip-go/internal/router"

	"github.com/spf13/cobra"
)

// shutdownTimeout 优雅退出等待时间
const shutdownTimeout = 10 * time.Second

func newServeCmd(o *options) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动HTTP服务",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.config()
			if err != nil {
				return err
			}
			logger, err := o.logger()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			// 初始化管理员账户
			if err := a.auth.InitAdmin(); err != nil {
				logger.Warnf("初始化管理员失败: %v", err)
			}

			r := router.SetupRouter(router.Deps{
				Config:         cfg,
				JWTManager:     a.jwt,
				Logger:         logger,
				DB:             a.db,
				DatasetService: a.datasets,
				Renderer:       a.renderer,
				Metrics:        a.metrics,
			})

			if addr == "" {
				addr = cfg.Server.GetAddress()
			}
			srv := &http.Server{
				Addr:              addr,
				Handler:           r,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Infof("服务器启动在 %s", addr)
				if cfg.Server.ProductionMode {
					logger.Info("生产模式")
				} else {
					logger.Infof("开发模式, 管理员账号: %s", cfg.Admin.Username)
				}
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			logger.Info("正在关闭服务器")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			return <-errCh
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "监听地址，覆盖 server.host/server.port")
	return cmd
}
