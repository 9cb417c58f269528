package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"equip-go/internal/dto"
	"equip-go/internal/ingest"
	"equip-go/internal/middleware"
	"equip-go/internal/service"
	"equip-go/internal/utils"

	"github.com/gin-gonic/gin"
)

// DatasetHandler 数据集处理器
type DatasetHandler struct {
	datasetService *service.DatasetService
	maxUpload      int64
}

// NewDatasetHandler 创建数据集处理器
func NewDatasetHandler(datasetService *service.DatasetService, maxUpload int64) *DatasetHandler {
	return &DatasetHandler{
		datasetService: datasetService,
		maxUpload:      maxUpload,
	}
}

// Upload 上传设备数据文件
// @Summary 上传CSV/XLSX并生成汇总
// @Tags 数据集
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "数据文件"
// @Success 201 {object} utils.Response{data=dto.UploadResponse}
// @Router /api/upload [post]
func (h *DatasetHandler) Upload(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	file, err := c.FormFile("file")
	if err != nil {
		utils.BadRequest(c, "未提供文件")
		return
	}
	if !utils.IsSupportedUpload(file.Filename) {
		utils.BadRequest(c, "不支持的文件格式，仅支持CSV和XLSX")
		return
	}
	if h.maxUpload > 0 && file.Size > h.maxUpload {
		utils.TooLarge(c, fmt.Sprintf("文件大小超过限制: %d 字节", h.maxUpload))
		return
	}

	// 读取文件内容
	src, err := file.Open()
	if err != nil {
		utils.BadRequest(c, "打开文件失败: "+err.Error())
		return
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		utils.BadRequest(c, "读取文件失败: "+err.Error())
		return
	}

	ds, err := h.datasetService.Upload(c.Request.Context(), userID, file.Filename, content)
	if err != nil {
		writeDatasetError(c, err)
		return
	}

	utils.Created(c, "上传成功", dto.NewUploadResponse(ds))
}

// GetSummary 获取指定数据集或最新数据集的汇总
func (h *DatasetHandler) GetSummary(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	ctx := c.Request.Context()

	if c.Param("id") == "" {
		ds, err := h.datasetService.GetLatest(ctx, userID)
		if errors.Is(err, service.ErrNotFound) {
			utils.NotFound(c, "暂无数据集")
			return
		}
		if err != nil {
			writeDatasetError(c, err)
			return
		}
		utils.SuccessResponse(c, dto.NewSummaryResponse(ds))
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}
	ds, err := h.datasetService.GetByID(ctx, userID, id)
	if err != nil {
		writeDatasetError(c, err)
		return
	}
	utils.SuccessResponse(c, dto.NewSummaryResponse(ds))
}

// History 最近上传的数据集列表
func (h *DatasetHandler) History(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	datasets, err := h.datasetService.ListByOwner(c.Request.Context(), userID, h.datasetService.RetentionCap())
	if err != nil {
		utils.InternalError(c, err)
		return
	}

	utils.SuccessResponse(c, dto.NewDatasetListItems(datasets))
}

// GetDataset 获取数据集完整内容
func (h *DatasetHandler) GetDataset(c *gin.Context) {
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

	utils.SuccessResponse(c, dto.NewDatasetDetailResponse(ds))
}

// DownloadCSV 以CSV格式下载原始记录
func (h *DatasetHandler) DownloadCSV(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	ds, err := h.datasetService.ExportCSV(c.Request.Context(), userID, id, &buf)
	if err != nil {
		writeDatasetError(c, err)
		return
	}

	c.Header("Content-Disposition", utils.AttachmentHeader(utils.BaseName(ds.Filename)+".csv"))
	c.Data(200, "text/csv; charset=utf-8", buf.Bytes())
}

// DeleteDataset 删除数据集
func (h *DatasetHandler) DeleteDataset(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.datasetService.Delete(c.Request.Context(), userID, id); err != nil {
		writeDatasetError(c, err)
		return
	}

	utils.SuccessWithMessage(c, "数据集已删除", gin.H{"success": true})
}

// parseID 解析路径中的数据集ID，失败时已写入响应
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		utils.BadRequest(c, "无效的数据集ID")
		return 0, false
	}
	return uint(id), true
}

// writeDatasetError 把服务层错误映射为HTTP响应
func writeDatasetError(c *gin.Context, err error) {
	var (
		schemaErr *ingest.SchemaError
		raggedErr *ingest.RaggedRowError
	)
	switch {
	case errors.As(err, &schemaErr):
		utils.BadRequest(c, schemaErr.Error())
	case errors.As(err, &raggedErr):
		utils.BadRequest(c, raggedErr.Error())
	case errors.Is(err, ingest.ErrEmptyPayload):
		utils.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrNotFound):
		utils.NotFound(c, err.Error())
	default:
		utils.InternalError(c, err)
	}
}
