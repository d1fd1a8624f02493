package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	activityDto "paceline.app/community/internal/modules/activity/dto"
	activityService "paceline.app/community/internal/modules/activity/service"
	"paceline.app/community/pkg/response"
)

type ActivityHandler struct {
	service activityService.ActivityService
}

func NewActivityHandler(service activityService.ActivityService) *ActivityHandler {
	return &ActivityHandler{service: service}
}

// GetFeed returns the caller's activity, or another athlete's when user_id is given.
func (h *ActivityHandler) GetFeed(c *gin.Context) {
	var query activityDto.FeedQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BindError(c, err)
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	if query.UserID != "" {
		userID = uuid.MustParse(query.UserID)
	}

	feed, err := h.service.Feed(c.Request.Context(), userID, query.PageQuery)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, feed)
}
