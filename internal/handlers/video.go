package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/learning-admin-api/internal/constants"
	"github.com/yukikurage/learning-admin-api/internal/dto"
	"github.com/yukikurage/learning-admin-api/internal/queries"
	"github.com/yukikurage/learning-admin-api/internal/services"
)

type VideoHandler struct {
	queries *queries.Queries
}

func NewVideoHandler(q *queries.Queries) *VideoHandler {
	return &VideoHandler{queries: q}
}

// ListVideos returns a page of videos. Filters: courseId.
func (h *VideoHandler) ListVideos(c *gin.Context) {
	page, err := h.queries.VideoList.Fetch(c.Request.Context(), dto.ListParams(c, constants.DefaultPageSize))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *VideoHandler) GetVideo(c *gin.Context) {
	video, err := h.queries.Video(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	dto.OK(c, video)
}

func (h *VideoHandler) CreateVideo(c *gin.Context) {
	var req services.CreateVideoInput
	if !bindJSON(c, &req) {
		return
	}

	video, err := h.queries.CreateVideo(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Created(c, video)
}

func (h *VideoHandler) UpdateVideo(c *gin.Context) {
	var req services.UpdateVideoInput
	if !bindJSON(c, &req) {
		return
	}

	video, err := h.queries.UpdateVideo(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	dto.OK(c, video)
}

func (h *VideoHandler) DeleteVideo(c *gin.Context) {
	if err := h.queries.DeleteVideo(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	dto.Message(c, "Video deleted successfully")
}

// GetPlayback resolves the video's media locator to a playable URL
func (h *VideoHandler) GetPlayback(c *gin.Context) {
	playback, err := h.queries.Playback(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	dto.OK(c, playback)
}
