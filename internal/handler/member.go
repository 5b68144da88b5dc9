package handler

import (
	"energy-server/internal/middleware"
	"energy-server/internal/model"
	"energy-server/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type MemberHandler struct{}

func NewMemberHandler() *MemberHandler {
	return &MemberHandler{}
}

// List 列出组织成员
func (h *MemberHandler) List(c *gin.Context) {
	orgID := middleware.GetOrgID(c)

	var memberships []model.UserOrganizationRole
	if err := model.DB.Preload("User").Preload("Role").
		Where("org_id = ?", orgID).Find(&memberships).Error; err != nil {
		response.ServerError(c, "查询成员失败")
		return
	}

	list := make([]gin.H, 0, len(memberships))
	for _, m := range memberships {
		item := gin.H{
			"membership_id": m.ID,
			"user_id":       m.UserID,
			"assigned_at":   m.AssignedAt,
		}
		if m.User != nil {
			item["email"] = m.User.Email
			item["name"] = m.User.Name
			item["avatar"] = m.User.Avatar
		}
		if m.Role != nil {
			item["role"] = m.Role.Slug
			item["role_name"] = m.Role.Name
		}
		list = append(list, item)
	}

	response.Success(c, list)
}

// ListRoles 列出组织角色定义
func (h *MemberHandler) ListRoles(c *gin.Context) {
	orgID := middleware.GetOrgID(c)

	var roles []model.OrganizationRole
	if err := model.DB.Where("org_id = ?", orgID).Find(&roles).Error; err != nil {
		response.ServerError(c, "查询角色失败")
		return
	}

	response.Success(c, roles)
}

// UpdateRoleRequest 变更成员角色请求
type UpdateRoleRequest struct {
	RoleID string `json:"role_id" binding:"required"`
}

// UpdateRole 变更成员角色
func (h *MemberHandler) UpdateRole(c *gin.Context) {
	orgID := middleware.GetOrgID(c)
	operatorRole := middleware.GetOrgRole(c)
	targetUserID := c.Param("user_id")

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	// 目标角色必须属于本组织
	var role model.OrganizationRole
	if err := model.DB.Where("id = ? AND org_id = ?", req.RoleID, orgID).First(&role).Error; err != nil {
		response.BadRequest(c, "角色不存在")
		return
	}

	// 只有 owner 能授予 owner 角色
	if role.Slug == model.RoleOwner && operatorRole != string(model.RoleOwner) {
		response.Forbidden(c, "只有所有者可以转移所有者角色")
		return
	}

	var membership model.UserOrganizationRole
	if err := model.DB.Preload("Role").
		Where("org_id = ? AND user_id = ?", orgID, targetUserID).First(&membership).Error; err != nil {
		response.NotFound(c, "成员不存在")
		return
	}

	// 不允许降级最后一个 owner
	if membership.Role != nil && membership.Role.IsOwner() && role.Slug != model.RoleOwner {
		var ownerCount int64
		model.DB.Model(&model.UserOrganizationRole{}).
			Joins("JOIN organization_roles ON organization_roles.id = user_organization_roles.role_id").
			Where("user_organization_roles.org_id = ? AND organization_roles.slug = ?", orgID, model.RoleOwner).
			Count(&ownerCount)
		if ownerCount <= 1 {
			response.Conflict(c, "组织至少需要保留一个所有者")
			return
		}
	}

	if err := model.DB.Model(&membership).Update("role_id", role.ID).Error; err != nil {
		response.ServerError(c, "变更角色失败")
		return
	}

	response.SuccessWithMessage(c, "角色已变更", gin.H{
		"user_id": targetUserID,
		"role":    role.Slug,
	})
}

// Remove 移除组织成员
func (h *MemberHandler) Remove(c *gin.Context) {
	orgID := middleware.GetOrgID(c)
	targetUserID := c.Param("user_id")

	var membership model.UserOrganizationRole
	if err := model.DB.Preload("Role").
		Where("org_id = ? AND user_id = ?", orgID, targetUserID).First(&membership).Error; err != nil {
		response.NotFound(c, "成员不存在")
		return
	}

	// 不允许移除最后一个 owner
	if membership.Role != nil && membership.Role.IsOwner() {
		var ownerCount int64
		model.DB.Model(&model.UserOrganizationRole{}).
			Joins("JOIN organization_roles ON organization_roles.id = user_organization_roles.role_id").
			Where("user_organization_roles.org_id = ? AND organization_roles.slug = ?", orgID, model.RoleOwner).
			Count(&ownerCount)
		if ownerCount <= 1 {
			response.Conflict(c, "组织至少需要保留一个所有者")
			return
		}
	}

	if err := model.DB.Delete(&membership).Error; err != nil {
		response.ServerError(c, "移除成员失败")
		return
	}

	response.SuccessWithMessage(c, "成员已移除", nil)
}
