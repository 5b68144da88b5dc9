package handler

import (
	"fmt"
	"time"

	"energy-server/internal/config"
	"energy-server/internal/model"
	"energy-server/internal/pkg/crypto"
	"energy-server/internal/pkg/response"
	"energy-server/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register 注册平台账号
// 账号本身不隶属任何组织，组织归属在创建组织或接受邀请时建立。
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	// 检查邮箱是否已存在
	var existing model.User
	if err := model.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		response.Error(c, 400, "邮箱已被注册")
		return
	}

	user := model.User{
		Email:  req.Email,
		Name:   req.Name,
		Status: model.UserStatusActive,
	}
	if err := user.SetPassword(req.Password); err != nil {
		response.ServerError(c, "密码加密失败")
		return
	}

	if err := model.DB.Create(&user).Error; err != nil {
		response.ServerError(c, "创建用户失败")
		return
	}

	token, err := crypto.GenerateToken(user.ID, user.Email, config.Get().JWT.Secret, config.Get().JWT.ExpireHours)
	if err != nil {
		response.ServerError(c, "生成Token失败")
		return
	}

	response.Success(c, gin.H{
		"token": token,
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
		},
	})
}

// Login 登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	clientIP := c.ClientIP()
	loginLimiter := service.GetLoginLimiter()
	ipLimiter := service.GetIPLoginLimiter()

	// 检查 IP 是否被锁定
	if locked, remaining := ipLimiter.IsLocked(clientIP); locked {
		response.Error(c, 429, fmt.Sprintf("IP 已被临时锁定，请 %d 分钟后再试", int(remaining.Minutes())+1))
		return
	}

	// 检查账号是否被锁定
	if locked, remaining := loginLimiter.IsLocked(req.Email); locked {
		response.Error(c, 429, fmt.Sprintf("账号已被临时锁定，请 %d 分钟后再试", int(remaining.Minutes())+1))
		return
	}

	var user model.User
	if err := model.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		// 记录失败
		loginLimiter.RecordFailure(req.Email)
		ipLimiter.RecordFailure(clientIP)
		remainingAttempts := loginLimiter.GetRemainingAttempts(req.Email)
		if remainingAttempts > 0 {
			response.Error(c, 401, fmt.Sprintf("邮箱或密码错误，还剩 %d 次尝试机会", remainingAttempts))
		} else {
			response.Error(c, 401, "邮箱或密码错误")
		}
		return
	}

	// 验证密码
	if !user.CheckPassword(req.Password) {
		locked, lockDuration := loginLimiter.RecordFailure(req.Email)
		ipLimiter.RecordFailure(clientIP)
		if locked {
			response.Error(c, 429, fmt.Sprintf("登录失败次数过多，账号已被锁定 %d 分钟", int(lockDuration.Minutes())))
		} else {
			remainingAttempts := loginLimiter.GetRemainingAttempts(req.Email)
			response.Error(c, 401, fmt.Sprintf("邮箱或密码错误，还剩 %d 次尝试机会", remainingAttempts))
		}
		return
	}

	// 检查账号状态
	if user.Status != model.UserStatusActive {
		response.Error(c, 403, "账号已被禁用")
		return
	}

	// 登录成功，清除失败记录
	loginLimiter.RecordSuccess(req.Email)
	ipLimiter.RecordSuccess(clientIP)

	// 更新最后登录时间和IP
	now := time.Now()
	model.DB.Model(&user).Updates(map[string]interface{}{
		"last_login_at": now,
		"last_login_ip": clientIP,
	})

	token, err := crypto.GenerateToken(user.ID, user.Email, config.Get().JWT.Secret, config.Get().JWT.ExpireHours)
	if err != nil {
		response.ServerError(c, "生成Token失败")
		return
	}

	response.Success(c, gin.H{
		"token": token,
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
		},
	})
}

// GetProfile 获取当前用户信息
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, _ := c.Get("user_id")

	var user model.User
	if err := model.DB.Preload("Memberships.Organization").Preload("Memberships.Role").First(&user, "id = ?", userID).Error; err != nil {
		response.NotFound(c, "用户不存在")
		return
	}

	// 汇总组织归属
	orgs := make([]gin.H, 0, len(user.Memberships))
	for _, m := range user.Memberships {
		item := gin.H{"org_id": m.OrgID}
		if m.Organization != nil {
			item["name"] = m.Organization.Name
			item["slug"] = m.Organization.Slug
		}
		if m.Role != nil {
			item["role"] = m.Role.Slug
		}
		orgs = append(orgs, item)
	}

	response.Success(c, gin.H{
		"user": gin.H{
			"id":            user.ID,
			"email":         user.Email,
			"name":          user.Name,
			"phone":         user.Phone,
			"avatar":        user.Avatar,
			"created_at":    user.CreatedAt,
			"last_login_at": user.LastLoginAt,
		},
		"organizations": orgs,
	})
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// ChangePassword 修改密码
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, _ := c.Get("user_id")

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	var user model.User
	if err := model.DB.First(&user, "id = ?", userID).Error; err != nil {
		response.NotFound(c, "用户不存在")
		return
	}

	// 验证旧密码
	if !user.CheckPassword(req.OldPassword) {
		response.Error(c, 400, "原密码错误")
		return
	}

	// 设置新密码
	if err := user.SetPassword(req.NewPassword); err != nil {
		response.ServerError(c, "密码加密失败")
		return
	}

	if err := model.DB.Save(&user).Error; err != nil {
		response.ServerError(c, "修改密码失败")
		return
	}

	response.SuccessWithMessage(c, "密码修改成功", nil)
}
