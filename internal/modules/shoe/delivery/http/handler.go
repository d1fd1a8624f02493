package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	shoeDto "paceline.app/community/internal/modules/shoe/dto"
	shoeService "paceline.app/community/internal/modules/shoe/service"
	"paceline.app/community/pkg/response"
)

type ShoeHandler struct {
	service shoeService.ShoeService
}

func NewShoeHandler(service shoeService.ShoeService) *ShoeHandler {
	return &ShoeHandler{service: service}
}

func parseShoeID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("shoe_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid shoe id"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *ShoeHandler) ListShoes(c *gin.Context) {
	var query shoeDto.ListShoesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BindError(c, err)
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	shoes, err := h.service.List(c.Request.Context(), userID, query.IncludeRetired)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": shoes})
}

func (h *ShoeHandler) CreateShoe(c *gin.Context) {
	var req shoeDto.CreateShoeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	shoe, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, shoe)
}

func (h *ShoeHandler) UpdateShoe(c *gin.Context) {
	shoeID, ok := parseShoeID(c)
	if !ok {
		return
	}

	var req shoeDto.UpdateShoeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	shoe, err := h.service.Update(c.Request.Context(), userID, shoeID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, shoe)
}

func (h *ShoeHandler) DeleteShoe(c *gin.Context) {
	shoeID, ok := parseShoeID(c)
	if !ok {
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID, shoeID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ShoeHandler) UploadPhoto(c *gin.Context) {
	shoeID, ok := parseShoeID(c)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	shoe, err := h.service.UploadPhoto(c.Request.Context(), userID, shoeID, file)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, shoe)
}
