package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const msgOK = "成功"

// Response 统一响应格式 {code, message, data}，分页时附带 total/page/per_page
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	*Page
}

// Page 分页信息
type Page struct {
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
}

// SuccessResponse 成功响应
func SuccessResponse(c *gin.Context, data interface{}) {
	SuccessWithMessage(c, msgOK, data)
}

// SuccessWithMessage 成功响应(带消息)
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: message,
		Data:    data,
	})
}

// Created 201响应
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: message,
		Data:    data,
	})
}

// PaginatedResponse 分页响应
func PaginatedResponse(c *gin.Context, data interface{}, total int64, page int, perPage int) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: msgOK,
		Data:    data,
		Page:    &Page{Total: total, Page: page, PerPage: perPage},
	})
}

// ErrorResponse 错误响应
func ErrorResponse(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

// Abort 写入错误响应并终止后续处理器
func Abort(c *gin.Context, code int, message string) {
	ErrorResponse(c, code, message)
	c.Abort()
}

// BadRequest 400错误
func BadRequest(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusBadRequest, message)
}

// Unauthorized 401错误
func Unauthorized(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusUnauthorized, message)
}

// Forbidden 403错误
func Forbidden(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusForbidden, message)
}

// NotFound 404错误
func NotFound(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusNotFound, message)
}

// TooLarge 413错误
func TooLarge(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusRequestEntityTooLarge, message)
}

// InternalError 500错误，原始错误记入 c.Errors 供访问日志输出
func InternalError(c *gin.Context, err error) {
	c.Error(err)
	ErrorResponse(c, http.StatusInternalServerError, "服务器内部错误: "+err.Error())
}
