package handler

import (
	"errors"
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type RoleHandler struct {
	roleService service.RoleService
}

func NewRoleHandler(roleService service.RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

func (h *RoleHandler) RegisterRoutes(router *gin.RouterGroup) {
	roles := router.Group("/api/admin/roles")
	roles.Use(middleware.RequireAdmin())
	{
		roles.GET("", h.ListRoles)
		roles.GET("/:name", h.GetRole)
		roles.POST("", h.CreateRole)
		roles.DELETE("/:name", h.DeleteRole)
		roles.PUT("/:name/permissions", h.UpdateRolePermissions)
	}

	// Feature catalog the console edits access levels against
	perms := router.Group("/api/admin/permissions")
	perms.Use(middleware.RequireAdmin())
	{
		perms.GET("", h.ListFeatures)
	}
}

// ListRoles returns all roles, Admin first, then User, then custom roles
// @Summary      List roles
// @Description  Returns all roles with user counts, Admin and User first
// @Tags         roles
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.RoleSummary}
// @Failure      500  {object}  response.Response
// @Router       /api/admin/roles [get]
func (h *RoleHandler) ListRoles(c *gin.Context) {
	roles, err := h.roleService.ListRoles(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, roles))
}

// GetRole returns a single role with its permission rows
func (h *RoleHandler) GetRole(c *gin.Context) {
	role, err := h.roleService.GetRole(c.Request.Context(), c.Param("name"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Role not found"))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, role))
}

// CreateRole creates a custom role with all features defaulted to "none"
// @Summary      Create role
// @Description  Creates a custom role provisioned with a no-access row for every feature
// @Tags         roles
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateRoleRequest  true  "Create Role Payload"
// @Success      201      {object}  response.Response{data=service.RoleDetail}
// @Failure      400      {object}  response.Response
// @Router       /api/admin/roles [post]
func (h *RoleHandler) CreateRole(c *gin.Context) {
	var req service.CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	role, err := h.roleService.CreateRole(c.Request.Context(), req)
	if err != nil {
		// Duplicate names and blank names are both client errors
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, role))
}

// DeleteRole removes a custom role and all of its permission rows
func (h *RoleHandler) DeleteRole(c *gin.Context) {
	name := c.Param("name")
	if err := h.roleService.DeleteRole(c.Request.Context(), name); err != nil {
		switch {
		case errors.Is(err, service.ErrSystemRole):
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "System roles cannot be deleted"))
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Role not found"))
		default:
			c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		}
		return
	}

	middleware.ClearPermissionCache(name)

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Role deleted successfully"}))
}

// UpdateRolePermissions applies a batch of access-level changes for a role
// @Summary      Update role permissions
// @Description  Upserts access levels keyed on (role, feature); malformed entries are skipped
// @Tags         roles
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        name     path      string                                true  "Role name"
// @Param        payload  body      service.UpdateRolePermissionsRequest  true  "Permission Entries"
// @Success      200      {object}  response.Response{data=service.PermissionUpdateResult}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/admin/roles/{name}/permissions [put]
func (h *RoleHandler) UpdateRolePermissions(c *gin.Context) {
	name := c.Param("name")

	var req service.UpdateRolePermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.roleService.UpdateRolePermissions(c.Request.Context(), name, req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Role not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	// Invalidate the cached snapshot so the gate picks up new levels immediately
	middleware.ClearPermissionCache(name)

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// ListFeatures returns the fixed feature catalog
func (h *RoleHandler) ListFeatures(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.roleService.ListFeatures()))
}
