package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"equip-go/internal/dto"
	"equip-go/internal/utils"

	"github.com/spf13/cobra"
)

func newIngestCmd(o *options) *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: "离线导入CSV/XLSX文件并输出汇总",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if !utils.IsSupportedUpload(path) {
				return fmt.Errorf("不支持的文件格式: %s", filepath.Ext(path))
			}
			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("读取文件失败: %w", err)
			}

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

			ownerID, err := a.ownerID(owner)
			if err != nil {
				return err
			}
			ds, err := a.datasets.Upload(cmd.Context(), ownerID, filepath.Base(path), content)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(o.out)
			enc.SetIndent("", "  ")
			return enc.Encode(dto.NewSummaryResponse(ds))
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "admin", "数据集所属用户名")
	return cmd
}
