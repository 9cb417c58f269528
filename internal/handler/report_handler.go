package handler

import (
	"bytes"
	"fmt"

	"equip-go/internal/metrics"
	"equip-go/internal/middleware"
	"equip-go/internal/report"
	"equip-go/internal/service"
	"equip-go/internal/utils"

	"github.com/gin-gonic/gin"
)

// ReportHandler 报告处理器
type ReportHandler struct {
	datasetService *service.DatasetService
	renderer       *report.Renderer
	metrics        *metrics.Metrics
}

// NewReportHandler 创建报告处理器
func NewReportHandler(datasetService *service.DatasetService, renderer *report.Renderer, m *metrics.Metrics) *ReportHandler {
	return &ReportHandler{
		datasetService: datasetService,
		renderer:       renderer,
		metrics:        m,
	}
}

// DownloadPDF 生成并下载PDF报告
// @Summary 下载数据集PDF报告
// @Tags 报告
// @Produce application/pdf
// @Security BearerAuth
// @Param id path int true "数据集ID"
// @Router /api/dataset/{id}/pdf [get]
func (h *ReportHandler) DownloadPDF(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	ds, err := h.datasetService.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		writeDatasetError(c, err)
		return
	}

	// 先写入缓冲，渲染失败时仍可返回JSON错误
	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, ds); err != nil {
		utils.InternalError(c, err)
		return
	}
	h.metrics.IncReport("pdf")

	c.Header("Content-Disposition", utils.AttachmentHeader(fmt.Sprintf("report_%d.pdf", ds.ID)))
	c.Data(200, "application/pdf", buf.Bytes())
}
