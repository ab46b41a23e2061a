package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"newera.app/reentry/internal/modules/caseload/dto"
	caseload "newera.app/reentry/internal/modules/caseload/service"
	"newera.app/reentry/pkg/response"
	"newera.app/reentry/pkg/validator"
)

type CaseLoadHandler struct {
	service caseload.CaseLoadService
}

func NewCaseLoadHandler(service caseload.CaseLoadService) *CaseLoadHandler {
	return &CaseLoadHandler{service: service}
}

func (h *CaseLoadHandler) ListCaseLoad(c *gin.Context) {
	user, err := response.GetUser(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	clients, err := h.service.ListCaseLoad(c.Request.Context(), user)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": clients})
}

func (h *CaseLoadHandler) AddClient(c *gin.Context) {
	var req dto.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	user, err := response.GetUser(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	client, err := h.service.AddClient(c.Request.Context(), user, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, client)
}

func (h *CaseLoadHandler) UpdateClient(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
		return
	}

	var req dto.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	user, err := response.GetUser(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	client, err := h.service.UpdateClient(c.Request.Context(), user, uint(id), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, client)
}

func (h *CaseLoadHandler) RemoveClient(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
		return
	}

	user, err := response.GetUser(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.RemoveClient(c.Request.Context(), user, uint(id)); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "client removed from case load"})
}

func (h *CaseLoadHandler) ListRecipients(c *gin.Context) {
	user, err := response.GetUser(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	recipients, err := h.service.ListRecipients(c.Request.Context(), user)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": recipients})
}
