package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	pbService "paceline.app/community/internal/modules/personalbest/service"
	"paceline.app/community/pkg/response"
)

type PersonalBestHandler struct {
	service pbService.PersonalBestService
}

func NewPersonalBestHandler(service pbService.PersonalBestService) *PersonalBestHandler {
	return &PersonalBestHandler{service: service}
}

func (h *PersonalBestHandler) GetMine(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	pbs, err := h.service.ListForUser(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": pbs})
}
