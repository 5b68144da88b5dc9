package handler

import (
	"time"

	"energy-server/internal/config"
	"energy-server/internal/middleware"
	"energy-server/internal/model"
	"energy-server/internal/pkg/crypto"
	"energy-server/internal/pkg/response"
	"energy-server/internal/pkg/utils"
	"energy-server/internal/service"

	"github.com/gin-gonic/gin"
)

type InvitationHandler struct {
	emailService   *service.EmailService
	webhookService *service.WebhookService
}

func NewInvitationHandler() *InvitationHandler {
	return &InvitationHandler{
		emailService:   service.NewEmailService(),
		webhookService: service.NewWebhookService(),
	}
}

// CreateInvitationRequest 创建邀请请求
type CreateInvitationRequest struct {
	RoleID     string     `json:"role_id" binding:"required"`
	Email      string     `json:"email" binding:"omitempty,email"` // 可选，限定被邀请邮箱
	ExpiresAt  *time.Time `json:"expires_at"`                      // 可选，显式失效时间
	ExpireDays int        `json:"expire_days"`                     // 可选，默认取配置
}

// Create 签发邀请
// Token 明文只在创建响应中返回一次，列表接口不再暴露。
func (h *InvitationHandler) Create(c *gin.Context) {
	orgID := middleware.GetOrgID(c)
	userID := middleware.GetUserID(c)

	var req CreateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	// 角色必须属于本组织
	var role model.OrganizationRole
	if err := model.DB.Where("id = ? AND org_id = ?", req.RoleID, orgID).First(&role).Error; err != nil {
		response.BadRequest(c, "角色不存在")
		return
	}

	// 不允许通过邀请授予 owner 角色
	if role.Slug == model.RoleOwner {
		response.Forbidden(c, "不能通过邀请授予所有者角色")
		return
	}

	var expiresAt time.Time
	if req.ExpiresAt != nil {
		if !req.ExpiresAt.After(time.Now()) {
			response.BadRequest(c, "失效时间必须晚于当前时间")
			return
		}
		expiresAt = *req.ExpiresAt
	} else {
		expireDays := req.ExpireDays
		if expireDays <= 0 {
			expireDays = config.Get().Invitation.ExpireDays
		}
		expiresAt = time.Now().AddDate(0, 0, expireDays)
	}

	invite := model.InvitationToken{
		OrgID:     orgID,
		RoleID:    role.ID,
		Email:     req.Email,
		Token:     utils.GenerateInviteToken(),
		InvitedBy: userID,
		Status:    model.InviteStatusPending,
		ExpiresAt: expiresAt,
	}

	if err := model.DB.Create(&invite).Error; err != nil {
		response.ServerError(c, "创建邀请失败")
		return
	}

	// 指定了邮箱时异步发送邀请邮件
	if req.Email != "" && config.Get().Email.Enabled {
		go h.sendInvitationEmail(&invite, role.Name)
	}

	response.Success(c, gin.H{
		"id":         invite.ID,
		"token":      invite.Token,
		"email":      invite.Email,
		"role":       role.Slug,
		"expires_at": invite.ExpiresAt,
	})
}

// sendInvitationEmail 发送邀请邮件
func (h *InvitationHandler) sendInvitationEmail(invite *model.InvitationToken, roleName string) {
	var org model.Organization
	if err := model.DB.First(&org, "id = ?", invite.OrgID).Error; err != nil {
		return
	}
	var inviter model.User
	model.DB.First(&inviter, "id = ?", invite.InvitedBy)

	h.emailService.SendInvitation(invite.Email, invite.Token, service.InvitationEmailData{
		InviterName: inviter.Name,
		OrgName:     org.Name,
		RoleName:    roleName,
		ExpiresAt:   invite.ExpiresAt.Format("2006-01-02 15:04"),
	})
}

// List 列出组织的邀请
func (h *InvitationHandler) List(c *gin.Context) {
	orgID := middleware.GetOrgID(c)
	status := c.Query("status")

	query := model.DB.Preload("Role").Where("org_id = ?", orgID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var invites []model.InvitationToken
	if err := query.Order("created_at DESC").Find(&invites).Error; err != nil {
		response.ServerError(c, "查询邀请失败")
		return
	}

	list := make([]gin.H, 0, len(invites))
	for _, inv := range invites {
		// 过期状态惰性呈现，不回写数据库
		st := inv.Status
		if st == model.InviteStatusPending && inv.IsExpired() {
			st = model.InviteStatusExpired
		}
		item := gin.H{
			"id":         inv.ID,
			"email":      inv.Email,
			"status":     st,
			"invited_by": inv.InvitedBy,
			"expires_at": inv.ExpiresAt,
			"used_at":    inv.UsedAt,
			"created_at": inv.CreatedAt,
		}
		if inv.Role != nil {
			item["role"] = inv.Role.Slug
		}
		list = append(list, item)
	}

	response.Success(c, list)
}

// Validate 校验邀请 Token（公开接口）
// 不要求登录，供接受邀请页面预检使用。
func (h *InvitationHandler) Validate(c *gin.Context) {
	token := c.Param("token")

	var invite model.InvitationToken
	if err := model.DB.Preload("Organization").Preload("Role").
		Where("token = ?", token).First(&invite).Error; err != nil {
		response.Success(c, gin.H{"valid": false, "message": "邀请不存在"})
		return
	}

	if invite.Status != model.InviteStatusPending {
		response.Success(c, gin.H{"valid": false, "message": "邀请已失效"})
		return
	}

	if invite.IsExpired() {
		// 惰性落库为过期
		now := time.Now()
		model.DB.Model(&model.InvitationToken{}).
			Where("id = ? AND status = ?", invite.ID, model.InviteStatusPending).
			Updates(map[string]interface{}{"status": model.InviteStatusExpired, "updated_at": now})
		response.Success(c, gin.H{"valid": false, "message": "邀请已过期"})
		return
	}

	data := gin.H{
		"email":      invite.Email,
		"expires_at": invite.ExpiresAt,
	}
	if invite.Organization != nil {
		data["organization"] = gin.H{
			"name": invite.Organization.Name,
			"logo": invite.Organization.Logo,
		}
	}
	if invite.Role != nil {
		data["role"] = invite.Role.Slug
	}

	response.Success(c, gin.H{"valid": true, "data": data})
}

// Revoke 撤销邀请
// 仅 pending 状态可撤销，并发兑换时先到者生效。
func (h *InvitationHandler) Revoke(c *gin.Context) {
	orgID := middleware.GetOrgID(c)
	inviteID := c.Param("id")

	var invite model.InvitationToken
	if err := model.DB.Where("id = ? AND org_id = ?", inviteID, orgID).First(&invite).Error; err != nil {
		response.NotFound(c, "邀请不存在")
		return
	}

	if invite.Status != model.InviteStatusPending {
		response.BadRequest(c, "邀请已不在待兑换状态")
		return
	}

	now := time.Now()
	result := model.DB.Model(&model.InvitationToken{}).
		Where("id = ? AND status = ?", invite.ID, model.InviteStatusPending).
		Updates(map[string]interface{}{"status": model.InviteStatusRevoked, "revoked_at": now})
	if result.Error != nil {
		response.ServerError(c, "撤销邀请失败")
		return
	}
	if result.RowsAffected == 0 {
		response.Conflict(c, "邀请状态已变更，撤销失败")
		return
	}

	response.SuccessWithMessage(c, "邀请已撤销", nil)
}

// Resend 重发邀请
// 轮换 Token 并重置有效期，旧 Token 随之失效。
func (h *InvitationHandler) Resend(c *gin.Context) {
	orgID := middleware.GetOrgID(c)
	inviteID := c.Param("id")

	var invite model.InvitationToken
	if err := model.DB.Preload("Role").Where("id = ? AND org_id = ?", inviteID, orgID).First(&invite).Error; err != nil {
		response.NotFound(c, "邀请不存在")
		return
	}

	if invite.Status != model.InviteStatusPending {
		response.BadRequest(c, "邀请已不在待兑换状态")
		return
	}

	newToken := utils.GenerateInviteToken()
	newExpiry := time.Now().AddDate(0, 0, config.Get().Invitation.ExpireDays)

	result := model.DB.Model(&model.InvitationToken{}).
		Where("id = ? AND status = ?", invite.ID, model.InviteStatusPending).
		Updates(map[string]interface{}{"token": newToken, "expires_at": newExpiry})
	if result.Error != nil {
		response.ServerError(c, "重发邀请失败")
		return
	}
	if result.RowsAffected == 0 {
		response.Conflict(c, "邀请状态已变更，重发失败")
		return
	}

	invite.Token = newToken
	invite.ExpiresAt = newExpiry

	roleName := ""
	if invite.Role != nil {
		roleName = invite.Role.Name
	}
	if invite.Email != "" && config.Get().Email.Enabled {
		go h.sendInvitationEmail(&invite, roleName)
	}

	response.Success(c, gin.H{
		"id":         invite.ID,
		"token":      newToken,
		"expires_at": newExpiry,
	})
}

// AcceptInviteRequest 接受邀请请求
type AcceptInviteRequest struct {
	Token    string `json:"token" binding:"required"`
	Email    string `json:"email" binding:"omitempty,email"` // 邀请未限定邮箱时必填
	Name     string `json:"name"`
	Password string `json:"password"` // 新用户必填，已有用户用于验证身份
}

// AcceptInvite 接受邀请（公开接口）
// 按邮箱找到或创建账号，兑换 Token 并授予组织角色。
// 兑换采用条件更新，并发兑换只有一个成功。
func (h *InvitationHandler) AcceptInvite(c *gin.Context) {
	var req AcceptInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	var invite model.InvitationToken
	if err := model.DB.Where("token = ?", req.Token).First(&invite).Error; err != nil {
		response.NotFound(c, "邀请不存在")
		return
	}

	if invite.Status != model.InviteStatusPending {
		response.BadRequest(c, "邀请已失效")
		return
	}

	if invite.IsExpired() {
		now := time.Now()
		model.DB.Model(&model.InvitationToken{}).
			Where("id = ? AND status = ?", invite.ID, model.InviteStatusPending).
			Updates(map[string]interface{}{"status": model.InviteStatusExpired, "updated_at": now})
		response.BadRequest(c, "邀请已过期")
		return
	}

	// 确定兑换邮箱：邀请限定了邮箱时以邀请为准
	email := invite.Email
	if email == "" {
		if req.Email == "" {
			response.BadRequest(c, "缺少邮箱")
			return
		}
		email = req.Email
	} else if req.Email != "" && req.Email != email {
		response.Forbidden(c, "邮箱与邀请不匹配")
		return
	}

	// 查找或创建账号
	var user model.User
	isNewUser := false
	if err := model.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if req.Password == "" {
			response.BadRequest(c, "新用户需要设置密码")
			return
		}
		if len(req.Password) < config.Get().Security.PasswordMinLength {
			response.BadRequest(c, "密码长度不足")
			return
		}
		user = model.User{
			Email:  email,
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
		isNewUser = true
	} else {
		// 已有账号需要验证密码，防止凭邀请链接冒用他人账号
		if !user.CheckPassword(req.Password) {
			response.Unauthorized(c, "密码错误")
			return
		}
		if user.Status != model.UserStatusActive {
			response.Forbidden(c, "账号已被禁用")
			return
		}
	}

	// 已是组织成员时直接拒绝
	var existing model.UserOrganizationRole
	if err := model.DB.Where("org_id = ? AND user_id = ?", invite.OrgID, user.ID).First(&existing).Error; err == nil {
		response.Conflict(c, "已是该组织成员")
		return
	}

	// 成员配额检查
	var org model.Organization
	if err := model.DB.First(&org, "id = ?", invite.OrgID).Error; err != nil {
		response.ServerError(c, "查询组织失败")
		return
	}
	var memberCount int64
	model.DB.Model(&model.UserOrganizationRole{}).Where("org_id = ?", invite.OrgID).Count(&memberCount)
	if !org.CanAddMember(memberCount) {
		response.Error(c, 403, "已达组织成员数量上限")
		return
	}

	tx := model.DB.Begin()

	// 条件更新兑换 Token，并发时只有一个请求生效
	now := time.Now()
	result := tx.Model(&model.InvitationToken{}).
		Where("id = ? AND status = ?", invite.ID, model.InviteStatusPending).
		Updates(map[string]interface{}{"status": model.InviteStatusUsed, "used_at": now})
	if result.Error != nil {
		tx.Rollback()
		response.ServerError(c, "兑换邀请失败")
		return
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		response.Conflict(c, "邀请已被兑换或撤销")
		return
	}

	membership := model.UserOrganizationRole{
		UserID:     user.ID,
		OrgID:      invite.OrgID,
		RoleID:     invite.RoleID,
		AssignedAt: now,
	}
	if err := tx.Create(&membership).Error; err != nil {
		tx.Rollback()
		response.ServerError(c, "创建成员关系失败")
		return
	}

	tx.Commit()

	go h.webhookService.TriggerInvitationAccepted(&invite, user.ID)

	token, err := crypto.GenerateToken(user.ID, user.Email, config.Get().JWT.Secret, config.Get().JWT.ExpireHours)
	if err != nil {
		response.ServerError(c, "生成Token失败")
		return
	}

	response.Success(c, gin.H{
		"token":    token,
		"org_id":   invite.OrgID,
		"new_user": isNewUser,
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
		},
	})
}
