package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	leaderboardDto "paceline.app/community/internal/modules/leaderboard/dto"
	leaderboardService "paceline.app/community/internal/modules/leaderboard/service"
	"paceline.app/community/pkg/response"
)

type LeaderboardHandler struct {
	service leaderboardService.LeaderboardService
}

func NewLeaderboardHandler(service leaderboardService.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{service: service}
}

func (h *LeaderboardHandler) GetYearlyDistance(c *gin.Context) {
	var query leaderboardDto.YearlyDistanceQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BindError(c, err)
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	board, err := h.service.YearlyDistance(c.Request.Context(), userID, query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, board)
}

func (h *LeaderboardHandler) GetBestTime(c *gin.Context) {
	var query leaderboardDto.BestTimeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BindError(c, err)
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	board, err := h.service.BestTime(c.Request.Context(), userID, query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, board)
}
