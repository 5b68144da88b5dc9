package handler

import (
	"strings"
	"time"

	"energy-server/internal/middleware"
	"energy-server/internal/model"
	"energy-server/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrganizationHandler struct{}

func NewOrganizationHandler() *OrganizationHandler {
	return &OrganizationHandler{}
}

// CreateOrganizationRequest 创建组织请求
type CreateOrganizationRequest struct {
	Name    string `json:"name" binding:"required"`
	Slug    string `json:"slug"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Website string `json:"website"`
	Address string `json:"address"`
}

// Create 创建组织
// 创建者自动成为 owner，预置四个默认角色。
func (h *OrganizationHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	slug := req.Slug
	if slug == "" {
		slug = generateSlug(req.Name)
	}

	// 检查 slug 是否已存在
	var existing model.Organization
	if err := model.DB.Where("slug = ?", slug).First(&existing).Error; err == nil {
		slug = slug + "-" + uuid.New().String()[:8]
	}

	tx := model.DB.Begin()

	org := model.Organization{
		Name:    req.Name,
		Slug:    slug,
		Email:   req.Email,
		Phone:   req.Phone,
		Website: req.Website,
		Address: req.Address,
		Status:  model.OrgStatusActive,
	}
	if err := tx.Create(&org).Error; err != nil {
		tx.Rollback()
		response.ServerError(c, "创建组织失败")
		return
	}

	// 预置默认角色
	roles := model.DefaultRoles(org.ID)
	if err := tx.Create(&roles).Error; err != nil {
		tx.Rollback()
		response.ServerError(c, "创建默认角色失败")
		return
	}

	// 创建者成为所有者
	var ownerRoleID string
	for _, r := range roles {
		if r.Slug == model.RoleOwner {
			ownerRoleID = r.ID
			break
		}
	}

	membership := model.UserOrganizationRole{
		UserID:     userID,
		OrgID:      org.ID,
		RoleID:     ownerRoleID,
		AssignedAt: time.Now(),
	}
	if err := tx.Create(&membership).Error; err != nil {
		tx.Rollback()
		response.ServerError(c, "创建成员关系失败")
		return
	}

	tx.Commit()

	response.Success(c, gin.H{
		"organization": org,
		"role":         model.RoleOwner,
	})
}

// List 列出当前用户所属的组织
func (h *OrganizationHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var memberships []model.UserOrganizationRole
	if err := model.DB.Preload("Organization").Preload("Role").
		Where("user_id = ?", userID).Find(&memberships).Error; err != nil {
		response.ServerError(c, "查询组织失败")
		return
	}

	list := make([]gin.H, 0, len(memberships))
	for _, m := range memberships {
		if m.Organization == nil || m.Organization.Status == model.OrgStatusDeleted {
			continue
		}
		item := gin.H{
			"organization": m.Organization,
			"assigned_at":  m.AssignedAt,
		}
		if m.Role != nil {
			item["role"] = m.Role.Slug
		}
		list = append(list, item)
	}

	response.Success(c, list)
}

// Get 获取组织详情
func (h *OrganizationHandler) Get(c *gin.Context) {
	orgID := middleware.GetOrgID(c)

	var org model.Organization
	if err := model.DB.First(&org, "id = ?", orgID).Error; err != nil {
		response.NotFound(c, "组织不存在")
		return
	}

	var memberCount int64
	model.DB.Model(&model.UserOrganizationRole{}).Where("org_id = ?", orgID).Count(&memberCount)

	response.Success(c, gin.H{
		"organization": org,
		"member_count": memberCount,
	})
}

// UpdateOrganizationRequest 更新组织请求
type UpdateOrganizationRequest struct {
	Name    string `json:"name"`
	Logo    string `json:"logo"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Website string `json:"website"`
	Address string `json:"address"`
}

// Update 更新组织信息
func (h *OrganizationHandler) Update(c *gin.Context) {
	orgID := middleware.GetOrgID(c)

	var req UpdateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	var org model.Organization
	if err := model.DB.First(&org, "id = ?", orgID).Error; err != nil {
		response.NotFound(c, "组织不存在")
		return
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Logo != "" {
		updates["logo"] = req.Logo
	}
	if req.Email != "" {
		updates["email"] = req.Email
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if req.Website != "" {
		updates["website"] = req.Website
	}
	if req.Address != "" {
		updates["address"] = req.Address
	}

	if len(updates) > 0 {
		if err := model.DB.Model(&org).Updates(updates).Error; err != nil {
			response.ServerError(c, "更新组织失败")
			return
		}
	}

	response.SuccessWithMessage(c, "更新成功", org)
}

// Delete 删除组织（仅 owner）
// 仍有其他成员时拒绝删除。
func (h *OrganizationHandler) Delete(c *gin.Context) {
	orgID := middleware.GetOrgID(c)
	userID := middleware.GetUserID(c)

	var org model.Organization
	if err := model.DB.First(&org, "id = ?", orgID).Error; err != nil {
		response.NotFound(c, "组织不存在")
		return
	}

	// 还有其他成员存在时不允许删除
	var otherCount int64
	model.DB.Model(&model.UserOrganizationRole{}).
		Where("org_id = ? AND user_id != ?", orgID, userID).Count(&otherCount)
	if otherCount > 0 {
		response.Conflict(c, "组织仍有其他成员，无法删除")
		return
	}

	tx := model.DB.Begin()

	if err := tx.Model(&org).Update("status", model.OrgStatusDeleted).Error; err != nil {
		tx.Rollback()
		response.ServerError(c, "删除组织失败")
		return
	}
	if err := tx.Where("org_id = ?", orgID).Delete(&model.UserOrganizationRole{}).Error; err != nil {
		tx.Rollback()
		response.ServerError(c, "删除成员关系失败")
		return
	}
	// 未兑换的邀请随组织一并撤销
	now := time.Now()
	tx.Model(&model.InvitationToken{}).
		Where("org_id = ? AND status = ?", orgID, model.InviteStatusPending).
		Updates(map[string]interface{}{"status": model.InviteStatusRevoked, "revoked_at": now})

	tx.Commit()

	response.SuccessWithMessage(c, "组织已删除", nil)
}

// generateSlug 生成 URL 友好的 slug
func generateSlug(name string) string {
	slug := strings.ToLower(name)
	slug = strings.ReplaceAll(slug, " ", "-")
	var result strings.Builder
	for _, r := range slug {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r > 127 {
			result.WriteRune(r)
		}
	}
	return result.String()
}
