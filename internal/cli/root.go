package cli

import (
	"fmt"
	"io"
	"os"

	"equip-go/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// options 全局命令行参数
type options struct {
	cfgFile  string
	logLevel string

	cfg *config.Config
	out io.Writer
}

// config 按需加载配置，config init 等命令不需要有效配置
func (o *options) config() (*config.Config, error) {
	if o.cfg != nil {
		return o.cfg, nil
	}
	cfg, err := config.Load(o.cfgFile)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	o.cfg = cfg
	return cfg, nil
}

// logger 根据配置创建日志器
func (o *options) logger() (*logrus.Logger, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}
	return NewLogger(cfg.Log, os.Stderr)
}

// NewRootCmd 创建 equipctl 根命令
func NewRootCmd() *cobra.Command {
	o := &options{}

	root := &cobra.Command{
		Use:           "equipctl",
		Short:         "设备数据分析服务",
		Long:          "equipctl 提供设备CSV/XLSX数据的上传、汇总统计和PDF报告服务，并包含离线导入与报告生成命令。",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			o.out = cmd.OutOrStdout()
		},
	}

	root.PersistentFlags().StringVar(&o.cfgFile, "config", "", "配置文件路径 (默认 ./config.yaml 或 ./config/config.yaml)")
	root.PersistentFlags().StringVar(&o.logLevel, "log-level", "", "覆盖配置中的日志级别")

	root.AddCommand(
		newServeCmd(o),
		newMigrateCmd(o),
		newIngestCmd(o),
		newReportCmd(o),
		newConfigCmd(o),
	)
	return root
}

// Execute 供 main 调用
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "错误:", err)
		os.Exit(1)
	}
}
