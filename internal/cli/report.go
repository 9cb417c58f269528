package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

func newReportCmd(o *options) *cobra.Command {
	var (
		owner  string
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "report <dataset-id>",
		Short: "为已保存的数据集生成报告",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil || id == 0 {
				return fmt.Errorf("无效的数据集ID: %s", args[0])
			}
			if format != "pdf" && format != "text" {
				return fmt.Errorf("不支持的报告格式: %s (可选 pdf, text)", format)
			}
			if output == "" {
				if format == "pdf" {
					output = fmt.Sprintf("report_%d.pdf", id)
				} else {
					output = "-"
				}
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
			ds, err := a.datasets.GetByID(cmd.Context(), ownerID, uint(id))
			if err != nil {
				return err
			}

			var w io.Writer = o.out
			if output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("创建报告文件失败: %w", err)
				}
				defer f.Close()
				w = f
			}

			if format == "pdf" {
				err = a.renderer.Render(w, ds)
			} else {
				err = a.renderer.RenderText(w, ds)
			}
			if err != nil {
				return err
			}
			a.metrics.IncReport(format)

			if output != "-" {
				fmt.Fprintf(o.out, "报告已写入 %s\n", output)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "admin", "数据集所属用户名")
	cmd.Flags().StringVarP(&format, "format", "f", "pdf", "报告格式: pdf 或 text")
	cmd.Flags().StringVarP(&output, "output", "o", "", "输出文件，- 表示标准输出")
	return cmd
}
