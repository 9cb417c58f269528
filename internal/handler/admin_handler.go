package handler

import (
	"errors"
	"strconv"

	"equip-go/internal/dto"
	"equip-go/internal/middleware"
	"equip-go/internal/service"
	"equip-go/internal/utils"

	"github.com/gin-gonic/gin"
)

// AdminHandler 管理员处理器
type AdminHandler struct {
	authService *service.AuthService
}

// NewAdminHandler 创建管理员处理器
func NewAdminHandler(authService *service.AuthService) *AdminHandler {
	return &AdminHandler{
		authService: authService,
	}
}

// ListUsers 获取所有用户
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}
	q.Normalize()

	result, err := h.authService.ListUsers(q.Page, q.PerPage)
	if err != nil {
		utils.InternalError(c, err)
		return
	}

	utils.PaginatedResponse(c, result.Items, result.Total, result.Page, result.PerPage)
}

// DeleteUser 删除用户及其数据集
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "无效的用户ID")
		return
	}
	if current, _ := middleware.GetUserID(c); current == uint(id) {
		utils.BadRequest(c, "不能删除当前登录的账户")
		return
	}

	if err := h.authService.DeleteUser(uint(id)); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			utils.NotFound(c, err.Error())
			return
		}
		utils.BadRequest(c, err.Error())
		return
	}

	utils.SuccessWithMessage(c, "用户已删除", gin.H{"success": true})
}
