package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	achievementDto "paceline.app/community/internal/modules/achievement/dto"
	achievementService "paceline.app/community/internal/modules/achievement/service"
	"paceline.app/community/pkg/response"
)

type AchievementHandler struct {
	service achievementService.AchievementService
}

func NewAchievementHandler(service achievementService.AchievementService) *AchievementHandler {
	return &AchievementHandler{service: service}
}

func (h *AchievementHandler) GetCatalog(c *gin.Context) {
	defs, err := h.service.Catalog(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": defs})
}

func (h *AchievementHandler) GetMine(c *gin.Context) {
	h.listMine(c, false)
}

func (h *AchievementHandler) GetUnnotified(c *gin.Context) {
	h.listMine(c, true)
}

func (h *AchievementHandler) listMine(c *gin.Context, unnotifiedOnly bool) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	items, err := h.service.ListMine(c.Request.Context(), userID, unnotifiedOnly)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (h *AchievementHandler) MarkNotified(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req achievementDto.MarkNotifiedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.MarkNotified(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
