package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "迁移数据库表结构并创建管理员账户",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.config()
			if err != nil {
				return err
			}
			logger, err := o.logger()
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.auth.InitAdmin(); err != nil {
				return err
			}
			fmt.Fprintf(o.out, "数据库已就绪: %s\n", cfg.Database.Path)
			return nil
		},
	}
}
