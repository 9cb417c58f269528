package dto

import (
	"equip-go/internal/models"
)

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string `json:"username" binding:"required" validate:"username"`
	Password string `json:"password" binding:"required,min=6" validate:"min=6,max=72"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	User        UserInfo `json:"user"`
}

// UserInfo 用户信息
type UserInfo struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	IsActive    bool   `json:"is_active"`
	IsAdmin     bool   `json:"is_admin"`
	CreatedAt   string `json:"created_at,omitempty"`
	LastLoginAt string `json:"last_login_at,omitempty"`
}

// NewUserInfo 从用户模型构建响应
func NewUserInfo(u *models.User) UserInfo {
	info := UserInfo{
		ID:       u.ID,
		Username: u.Username,
		IsActive: u.IsActive,
		IsAdmin:  u.IsAdmin,
	}
	if !u.CreatedAt.IsZero() {
		info.CreatedAt = u.CreatedAt.UTC().Format(TimeLayout)
	}
	if u.LastLoginAt != nil {
		info.LastLoginAt = u.LastLoginAt.UTC().Format(TimeLayout)
	}
	return info
}
