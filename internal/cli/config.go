package cli

import (
	"fmt"
	"os"

	"equip-go/internal/config"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "查看或生成配置文件",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "写入默认配置文件",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "config/config.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("配置文件已存在: %s (使用 --force 覆盖)", path)
			}
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			fmt.Fprintf(o.out, "已写入默认配置 %s，请设置 jwt.secret_key 和 admin.password\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "覆盖已存在的文件")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "输出生效的配置",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.config()
			if err != nil {
				return err
			}
			masked := *cfg
			masked.JWT.SecretKey = mask(cfg.JWT.SecretKey)
			masked.Admin.Password = mask(cfg.Admin.Password)
			masked.Redis.Password = mask(cfg.Redis.Password)
			masked.InfluxDB.Token = mask(cfg.InfluxDB.Token)

			enc := yaml.NewEncoder(o.out)
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(&masked)
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "****"
}
