package middleware

import (
	"strings"

	"energy-server/internal/config"
	"energy-server/internal/model"
	"energy-server/internal/pkg/crypto"
	"energy-server/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware JWT 认证中间件
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "缺少认证信息")
			c.Abort()
			return
		}

		// Bearer token
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "认证格式错误")
			c.Abort()
			return
		}

		token := parts[1]
		claims, err := crypto.ParseToken(token, config.Get().JWT.Secret)
		if err != nil {
			response.Unauthorized(c, "无效的认证信息")
			c.Abort()
			return
		}

		// 校验账号状态
		var user model.User
		if err := model.DB.First(&user, "id = ?", claims.UserID).Error; err != nil {
			response.Unauthorized(c, "账号不存在")
			c.Abort()
			return
		}
		if user.Status != model.UserStatusActive {
			response.Forbidden(c, "账号已被禁用")
			c.Abort()
			return
		}

		// 将用户信息存入上下文
		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)

		c.Next()
	}
}

// OrganizationMiddleware 组织上下文中间件
// 解析路径中的 org_id，校验组织状态与成员身份，并把角色放入上下文。
func OrganizationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID := c.Param("org_id")
		if orgID == "" {
			response.Forbidden(c, "缺少组织信息")
			c.Abort()
			return
		}

		// 验证组织状态
		var org model.Organization
		if err := model.DB.First(&org, "id = ?", orgID).Error; err != nil {
			response.NotFound(c, "组织不存在")
			c.Abort()
			return
		}
		if org.Status != model.OrgStatusActive {
			response.Forbidden(c, "组织已被暂停")
			c.Abort()
			return
		}

		// 校验成员身份并加载角色
		userID := GetUserID(c)
		var membership model.UserOrganizationRole
		if err := model.DB.Preload("Role").
			Where("user_id = ? AND org_id = ?", userID, orgID).
			First(&membership).Error; err != nil {
			response.Forbidden(c, "不是该组织成员")
			c.Abort()
			return
		}
		if membership.Role == nil {
			response.Forbidden(c, "成员角色缺失")
			c.Abort()
			return
		}

		c.Set("org_id", orgID)
		c.Set("org_role", string(membership.Role.Slug))

		c.Next()
	}
}

// PermissionMiddleware 权限检查中间件
// 必须位于 OrganizationMiddleware 之后。
func PermissionMiddleware(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := GetOrgRole(c)
		if role == "" {
			response.Forbidden(c, "没有操作权限")
			c.Abort()
			return
		}

		if !model.RolePermissions[model.RoleSlug(role)][permission] {
			response.Forbidden(c, "没有操作权限")
			c.Abort()
			return
		}

		c.Next()
	}
}

// OwnerMiddleware 所有者权限中间件
func OwnerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetOrgRole(c) != string(model.RoleOwner) {
			response.Forbidden(c, "需要所有者权限")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserID 从上下文获取用户 ID
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// GetOrgID 从上下文获取组织 ID
func GetOrgID(c *gin.Context) string {
	orgID, _ := c.Get("org_id")
	if id, ok := orgID.(string); ok {
		return id
	}
	return ""
}

// GetUserEmail 从上下文获取用户邮箱
func GetUserEmail(c *gin.Context) string {
	email, _ := c.Get("email")
	if e, ok := email.(string); ok {
		return e
	}
	return ""
}

// GetOrgRole 从上下文获取当前组织角色
func GetOrgRole(c *gin.Context) string {
	role, _ := c.Get("org_role")
	if r, ok := role.(string); ok {
		return r
	}
	return ""
}
