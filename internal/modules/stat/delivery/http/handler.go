package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	statService "paceline.app/community/internal/modules/stat/service"
	"paceline.app/community/pkg/response"
)

type StatHandler struct {
	statService statService.StatService
}

func NewStatHandler(statService statService.StatService) *StatHandler {
	return &StatHandler{
		statService: statService,
	}
}

func (h *StatHandler) GetCommunityStats(c *gin.Context) {
	stats, err := h.statService.Community(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
