package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	runDto "paceline.app/community/internal/modules/run/dto"
	runService "paceline.app/community/internal/modules/run/service"
	"paceline.app/community/pkg/response"
)

type RunHandler struct {
	service runService.RunService
}

func NewRunHandler(service runService.RunService) *RunHandler {
	return &RunHandler{service: service}
}

func (h *RunHandler) SyncRuns(c *gin.Context) {
	var req runDto.SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	result, err := h.service.SyncRuns(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *RunHandler) ListRuns(c *gin.Context) {
	var query runDto.ListRunsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BindError(c, err)
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	runs, err := h.service.List(c.Request.Context(), userID, query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": runs})
}
