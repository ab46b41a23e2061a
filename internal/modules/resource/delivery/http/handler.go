package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"newera.app/reentry/internal/modules/resource/dto"
	resource "newera.app/reentry/internal/modules/resource/service"
	commonDto "newera.app/reentry/pkg/dto"
	"newera.app/reentry/pkg/response"
	"newera.app/reentry/pkg/validator"
)

// AccessRecorder marks the referral behind a deep link key as accessed.
type AccessRecorder interface {
	MarkAccessed(ctx context.Context, resourceID uint, key string) (bool, error)
}

type ResourceHandler struct {
	service resource.ResourceService
	access  AccessRecorder
}

func NewResourceHandler(service resource.ResourceService, access AccessRecorder) *ResourceHandler {
	return &ResourceHandler{service: service, access: access}
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid resource id"})
		return 0, false
	}
	return uint(id), true
}

func (h *ResourceHandler) CreateResource(c *gin.Context) {
	var req dto.CreateResourceRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	var image *commonDto.ImageFile
	if fileHeader, err := c.FormFile("image"); err == nil && fileHeader != nil {
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read image"})
			return
		}
		defer file.Close()

		image = &commonDto.ImageFile{Reader: file, FileName: fileHeader.Filename}
	}

	res, err := h.service.CreateResource(c.Request.Context(), req, image)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *ResourceHandler) UpdateResource(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req dto.UpdateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.service.UpdateResource(c.Request.Context(), id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *ResourceHandler) UploadImage(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read image"})
		return
	}
	defer file.Close()

	res, err := h.service.UploadImage(c.Request.Context(), id, commonDto.ImageFile{Reader: file, FileName: fileHeader.Filename})
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// GetResource serves the resource detail page data. A "key" query parameter marks the referral
// that produced the link as accessed once the resource is known to be visible; a bad key never
// blocks the page.
func (h *ResourceHandler) GetResource(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	res, err := h.service.GetResource(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if key := c.Query("key"); key != "" && h.access != nil {
		marked, err := h.access.MarkAccessed(c.Request.Context(), id, key)
		if err != nil {
			zap.L().Warn("failed to record referral access",
				zap.Uint("resource_id", id),
				zap.String("key", key),
				zap.Error(err),
			)
		} else if marked {
			zap.L().Info("referral accessed", zap.Uint("resource_id", id))
		}
	}

	c.JSON(http.StatusOK, res)
}

func (h *ResourceHandler) GetResourceImage(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	url, err := h.service.GetImageURL(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.Redirect(http.StatusFound, url)
}

func (h *ResourceHandler) ListResources(c *gin.Context) {
	var filter dto.ResourceFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	resources, meta, err := h.service.ListResources(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resources, "meta": meta})
}

func (h *ResourceHandler) SearchResources(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	resources, err := h.service.SearchResources(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resources})
}
