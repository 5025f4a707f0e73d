package handler

import (
	"errors"
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type VendorHandler struct {
	vendorService service.VendorService
}

func NewVendorHandler(vendorService service.VendorService) *VendorHandler {
	return &VendorHandler{vendorService: vendorService}
}

func (h *VendorHandler) RegisterRoutes(router *gin.RouterGroup) {
	vendors := router.Group("/api/vendors")
	{
		vendors.GET("", middleware.RequireFeature("/dashboard/vendors", model.AccessView), h.ListVendors)
		vendors.GET("/:id", middleware.RequireFeature("/dashboard/vendors", model.AccessView), h.GetVendor)
		vendors.POST("", middleware.RequireFeature("/dashboard/vendors", model.AccessEdit), h.CreateVendor)
		vendors.PUT("/:id", middleware.RequireFeature("/dashboard/vendors", model.AccessEdit), h.UpdateVendor)
		vendors.DELETE("/:id", middleware.RequireFeature("/dashboard/vendors", model.AccessEdit), h.DeleteVendor)
	}
}

// ListVendors returns all vendors
func (h *VendorHandler) ListVendors(c *gin.Context) {
	vendors, err := h.vendorService.ListVendors(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch vendors"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, vendors))
}

// GetVendor returns a single vendor by ID
func (h *VendorHandler) GetVendor(c *gin.Context) {
	vendor, err := h.vendorService.GetVendor(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Vendor not found"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, vendor))
}

// CreateVendor creates a new vendor
// @Summary      Create vendor
// @Description  Creates a new vendor record
// @Tags         vendors
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.VendorInput  true  "Create Vendor Payload"
// @Success      201      {object}  response.Response{data=model.Vendor}
// @Failure      400      {object}  response.Response
// @Router       /api/vendors [post]
func (h *VendorHandler) CreateVendor(c *gin.Context) {
	var req service.VendorInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	vendor, err := h.vendorService.CreateVendor(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, vendor))
}

// UpdateVendor updates an existing vendor
func (h *VendorHandler) UpdateVendor(c *gin.Context) {
	var req service.VendorInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	vendor, err := h.vendorService.UpdateVendor(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Vendor not found"))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, vendor))
}

// DeleteVendor removes a vendor by ID
func (h *VendorHandler) DeleteVendor(c *gin.Context) {
	if err := h.vendorService.DeleteVendor(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Vendor not found"))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Vendor deleted successfully"))
}
