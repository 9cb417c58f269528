package middleware

import (
	"net/http"
	"strings"

	"equip-go/internal/utils"

	"github.com/gin-gonic/gin"
)

// 上下文中的认证信息键
const (
	ctxUserID   = "user_id"
	ctxUsername = "username"
	ctxIsAdmin  = "is_admin"
)

// AuthMiddleware JWT认证中间件，写入用户ID、用户名和管理员标记
func AuthMiddleware(jwtManager *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, msg := bearerToken(c.GetHeader("Authorization"))
		if msg != "" {
			utils.Abort(c, http.StatusUnauthorized, msg)
			return
		}

		claims, err := jwtManager.ValidateToken(tokenString)
		if err != nil {
			c.Error(err)
			utils.Abort(c, http.StatusUnauthorized, utils.ErrInvalidToken.Error())
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxUsername, claims.Username)
		c.Set(ctxIsAdmin, claims.IsAdmin)

		c.Next()
	}
}

// AdminMiddleware 管理员权限中间件，需挂在 AuthMiddleware 之后
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c) {
			utils.Abort(c, http.StatusForbidden, "需要管理员权限")
			return
		}
		c.Next()
	}
}

// bearerToken 从Authorization头取出令牌，失败时返回错误提示
func bearerToken(header string) (string, string) {
	if header == "" {
		return "", "未认证"
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", "无效的认证格式"
	}
	return token, ""
}

// GetUserID 从上下文获取用户ID
func GetUserID(c *gin.Context) (uint, bool) {
	userID, ok := c.Get(ctxUserID)
	if !ok {
		return 0, false
	}
	id, ok := userID.(uint)
	return id, ok
}

// GetUsername 从上下文获取用户名
func GetUsername(c *gin.Context) (string, bool) {
	return c.GetString(ctxUsername), c.GetString(ctxUsername) != ""
}

// IsAdmin 从上下文判断是否为管理员
func IsAdmin(c *gin.Context) bool {
	return c.GetBool(ctxIsAdmin)
}
